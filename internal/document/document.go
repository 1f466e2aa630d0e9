// Package document holds the output records of an extraction run and their
// minimized JSON encoding.
//
// Every optional field carries omitempty, so empty lists and unresolved types
// never reach the output. Booleans are encoded as 0/1 through Flag.
package document

// Document is the whole artifact of one run.
type Document struct {
	Crates []Crate `json:"crates,omitempty"`
	Files  []File  `json:"files,omitempty"`
}

// Crate describes one crate of the workspace or one of its dependencies.
type Crate struct {
	Name     string `json:"name"`
	RootFile string `json:"root_file,omitempty"`
	Edition  string `json:"edition,omitempty"`
	IsLocal  Flag   `json:"is_local"`
}

// File is one source file and its top-level items in declaration order.
type File struct {
	Path  string `json:"path"`
	Items []Item `json:"items,omitempty"`
}

// Item is the tagged record of any item kind. Which optional fields may be
// set depends on Kind.
type Item struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`

	// function
	Params []Param `json:"params,omitempty"`
	Ret    string  `json:"ret,omitempty"`
	Body   *Body   `json:"body,omitempty"`

	// struct
	Fields []Field `json:"fields,omitempty"`

	// enum
	Variants []Variant `json:"variants,omitempty"`

	// trait, module
	Items []Item `json:"items,omitempty"`

	// type_alias, const, static
	Ty string `json:"ty,omitempty"`
}

// Field is a named or positional field with its rendered type.
type Field struct {
	Name string `json:"name"`
	Ty   string `json:"ty,omitempty"`
}

// Variant is an enum variant.
type Variant struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields,omitempty"`
}

// Param is a function or closure parameter.
type Param struct {
	Name string `json:"name"`
	Ty   string `json:"ty,omitempty"`
}

// Body lists the bindings and closures of one function body.
type Body struct {
	Locals   []Local   `json:"locals,omitempty"`
	Closures []Closure `json:"closures,omitempty"`
}

// Empty reports whether the body has nothing worth emitting.
func (b *Body) Empty() bool {
	return b == nil || (len(b.Locals) == 0 && len(b.Closures) == 0)
}

// Local is a binding declared in a body. ID is unique within the body.
type Local struct {
	Name string `json:"name"`
	Ty   string `json:"ty,omitempty"`
	ID   uint32 `json:"id"`
	Mut  Flag   `json:"mut"`
}

// Closure is a closure expression in a body. Closure ids are numbered
// independently of local ids.
type Closure struct {
	ID     uint32  `json:"id"`
	Params []Param `json:"params,omitempty"`
	Ret    string  `json:"ret,omitempty"`
}
