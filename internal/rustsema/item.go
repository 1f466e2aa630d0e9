package rustsema

import (
	"github.com/jward/forgen/internal/sema"
)

// item is the frontend's handle for every item kind. Only the fields that
// belong to kind are set.
type item struct {
	kind sema.Kind
	name string

	num   uint32
	hasID bool
	key   string // crate-relative path used for interning

	children []*item // trait members or inline module items
	fields   []sema.Field
	variants []sema.Variant
	sig      sema.Signature
	declared sema.TypeRef
	body     *sema.Scope

	// Out-of-line module declaration (`mod name;`).
	external bool
	pathAttr string
}

func (it *item) Kind() sema.Kind          { return it.kind }
func (it *item) Name() string             { return it.name }
func (it *item) EntityID() (uint32, bool) { return it.num, it.hasID }

// modDecl is an out-of-line module declaration found in a file, with the
// inline modules enclosing it.
type modDecl struct {
	item   *item
	inline []string
}
