// Package sema defines the read-only semantic model that an extraction run
// queries. A frontend (such as the tree-sitter backed rustsema package)
// implements Model; the extraction engine depends only on this package.
package sema

import "errors"

// ErrFileUnresolved reports that a project file could not be mapped into the
// semantic model. Callers omit the file and keep going.
var ErrFileUnresolved = errors.New("file not resolved in semantic model")

// Kind is the structural kind of an item.
type Kind string

const (
	KindFunction  Kind = "function"
	KindStruct    Kind = "struct"
	KindEnum      Kind = "enum"
	KindTrait     Kind = "trait"
	KindTypeAlias Kind = "type_alias"
	KindConst     Kind = "const"
	KindStatic    Kind = "static"
	KindModule    Kind = "module"
)

// Crate describes one crate known to the loaded workspace.
type Crate struct {
	Name     string
	RootFile string // project-relative, slash separated; empty for external crates
	Edition  string
	Local    bool
}

// Item is an opaque handle to a semantic item produced by a Model.
type Item interface {
	Kind() Kind
	Name() string
	// EntityID returns the model's numeric identity for the item. A handle
	// the model produced must always have one; false means the model is broken.
	EntityID() (uint32, bool)
}

// TypeRef is an opaque handle to a type annotation. A nil TypeRef means no
// type was written.
type TypeRef interface {
	// Syntax returns the annotation as written, for diagnostics.
	Syntax() string
}

// Field is a struct or variant field. Tuple fields carry their positional
// index as Name.
type Field struct {
	Name string
	Type TypeRef
}

// Variant is an enum variant with its (possibly empty) fields.
type Variant struct {
	Name   string
	Fields []Field
}

// Param is a function or closure parameter.
type Param struct {
	Name string
	Type TypeRef
}

// Signature is a function-like item's parameter list and return annotation.
// HasRet is false when no return type was written at all.
type Signature struct {
	Params []Param
	Ret    TypeRef
	HasRet bool
}

// Model is the queryable semantic model of one loaded workspace snapshot.
// Implementations must be safe for read-only use for the duration of a run.
type Model interface {
	// Crates lists the crates of the workspace, local and external.
	Crates() []Crate

	// Files lists the project files, in the order they should be emitted.
	Files() []string

	// FileItems returns the top-level items of a file in declaration order.
	// It returns an error wrapping ErrFileUnresolved when the file is not
	// part of the model.
	FileItems(path string) ([]Item, error)

	// Children returns the members of a trait or module item.
	Children(item Item) []Item

	// Fields returns the fields of a struct item.
	Fields(item Item) []Field

	// Variants returns the variants of an enum item.
	Variants(item Item) []Variant

	// Signature returns the parameters and return annotation of a function.
	Signature(item Item) Signature

	// DeclaredType returns the target of a type alias or the declared type
	// of a const or static. It is nil when none was written.
	DeclaredType(item Item) TypeRef

	// ResolveType turns an annotation into a structured type, or reports
	// false when the frontend cannot fully resolve it.
	ResolveType(ref TypeRef) (Type, bool)

	// Body returns the lexical scope tree of a function's body. It reports
	// false for items without a body (signatures, trait methods without a
	// default).
	Body(item Item) (*Scope, bool)
}
