package sema

// TypeKind classifies a structured type term.
type TypeKind int

const (
	TypeInvalid  TypeKind = iota
	TypePath              // Name with optional generic Args: i32, Vec<String>, std::io::Result<()>
	TypeRefTo             // &T / &'a mut T
	TypePointer           // *const T / *mut T
	TypeTuple             // (A, B); zero Args is the unit type
	TypeArray             // [T; Len]
	TypeSlice             // [T]
	TypeFn                // [unsafe] [extern "abi"] fn(A, B) -> R
	TypeImpl              // impl A + B
	TypeDyn               // dyn A + B
	TypeNever             // !
	TypeLifetime          // 'a, only as a generic argument
	TypeBinding           // Name = T, only as a generic argument (Item = u8)
	TypeConst             // const generic argument or array length expression, kept verbatim
	TypeInfer             // _ ; an inference hole
	TypeVerbatim          // fully spelled construct kept as collapsed source text
)

// Type is a structured, frontend-independent type term.
type Type struct {
	Kind TypeKind

	// Name is the path for TypePath and TypeBinding, the lifetime for
	// TypeLifetime, the qualifiers (unsafe, extern "C") for TypeFn and the
	// text for TypeConst and TypeVerbatim.
	Name string

	// Args holds generic arguments (TypePath), elements (TypeTuple), bounds
	// (TypeImpl, TypeDyn) or parameter types (TypeFn).
	Args []Type

	// Elem is the referent (TypeRefTo, TypePointer), the element (TypeArray,
	// TypeSlice), the return type (TypeFn) or the bound type (TypeBinding).
	Elem *Type

	Mutable  bool   // &mut / *mut
	Lifetime string // reference lifetime, including the leading quote
	Len      string // array length expression
}
