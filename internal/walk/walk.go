// Package walk converts a semantic model into document records. The item
// walker follows the item tree of each file; the body walker numbers the
// bindings and closures of each function body.
package walk

import (
	"github.com/jward/forgen/internal/identity"
	"github.com/jward/forgen/internal/sema"
	"github.com/jward/forgen/internal/typerender"
)

// ItemInfo describes an item offered to a Filter.
type ItemInfo struct {
	Kind  sema.Kind
	Name  string
	ID    identity.StableID
	Path  string // file the item was declared in
	Crate string
	Local bool
	Depth int // 0 for top-level items
}

// Filter decides whether an item, and everything nested in it, is emitted.
// An error aborts the file being walked.
type Filter func(ItemInfo) (bool, error)

// Option configures a Walker.
type Option func(*Walker)

// WithFilter installs an item filter. Items the filter rejects are dropped
// together with their nested items.
func WithFilter(f Filter) Option {
	return func(w *Walker) {
		w.filter = f
	}
}

// WithCrate records the crate the walked files belong to, for filters.
func WithCrate(c sema.Crate) Option {
	return func(w *Walker) {
		w.crate = c
	}
}

// Walker produces item records for files of one model. A Walker shares its
// Registry with every file of the run; it must not be used concurrently.
type Walker struct {
	model  sema.Model
	ids    *identity.Registry
	filter Filter
	crate  sema.Crate
}

// New returns a Walker over m that mints ids through ids.
func New(m sema.Model, ids *identity.Registry, opts ...Option) *Walker {
	w := &Walker{model: m, ids: ids}
	for _, o := range opts {
		o(w)
	}
	return w
}

// SetCrate changes the crate reported to filters for subsequent files.
func (w *Walker) SetCrate(c sema.Crate) {
	w.crate = c
}

func (w *Walker) resolve(ref sema.TypeRef) string {
	s, _ := typerender.Resolve(w.model, ref)
	return s
}
