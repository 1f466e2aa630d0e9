package sema

// EntryKind tags a Scope entry.
type EntryKind int

const (
	EntryBinding EntryKind = iota
	EntryClosure
	EntryBlock
)

// Scope is one lexical block of a body. Entries appear in source order.
type Scope struct {
	Entries []Entry
}

// Entry is one element of a scope: a binding declaration, a closure
// expression, or a nested block. Exactly the field matching Kind is set.
type Entry struct {
	Kind    EntryKind
	Binding *Binding
	Closure *Closure
	Block   *Scope
}

// Binding is a name introduced by a declaration in a body.
type Binding struct {
	Name    string
	Type    TypeRef
	Mutable bool
}

// Closure is a closure expression. Body holds the declarations made inside
// the closure; they belong to the enclosing function body.
type Closure struct {
	Params []Param
	Ret    TypeRef
	Body   *Scope
}

// AddBinding appends a binding entry.
func (s *Scope) AddBinding(b Binding) {
	s.Entries = append(s.Entries, Entry{Kind: EntryBinding, Binding: &b})
}

// AddClosure appends a closure entry.
func (s *Scope) AddClosure(c *Closure) {
	s.Entries = append(s.Entries, Entry{Kind: EntryClosure, Closure: c})
}

// AddBlock appends a nested block and returns it.
func (s *Scope) AddBlock() *Scope {
	child := &Scope{}
	s.Entries = append(s.Entries, Entry{Kind: EntryBlock, Block: child})
	return child
}
