// Package rustsema is a tree-sitter backed implementation of sema.Model for
// Cargo projects. It reads every crate of a workspace, follows the module
// tree from each crate root and converts the syntax it finds into items,
// signatures and body scope trees. Annotations are converted as written;
// nothing is inferred.
package rustsema

import (
	"fmt"

	"github.com/jward/forgen/internal/sema"
)

// Diagnostic is a non-fatal problem found while loading.
type Diagnostic struct {
	Path string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Path, d.Err)
}

// fileState is what the model knows about one source file.
type fileState struct {
	syntax fileSyntax
	err    error // read or parse failure
	crate  int   // index into Model.crates; -1 when no crate reaches the file
	module string
}

// Model is a loaded workspace snapshot. It is immutable after Load and safe
// for concurrent readers.
type Model struct {
	root   string
	crates []sema.Crate
	files  []string
	order  []string // owned files in module tree order
	state  map[string]*fileState
	diags  []Diagnostic
}

var _ sema.Model = (*Model)(nil)

// Root returns the absolute project directory.
func (m *Model) Root() string { return m.root }

// Diagnostics returns the problems found while loading, in discovery order.
func (m *Model) Diagnostics() []Diagnostic { return m.diags }

func (m *Model) Crates() []sema.Crate { return m.crates }

func (m *Model) Files() []string { return m.files }

// FileCrate returns the crate whose module tree contains path.
func (m *Model) FileCrate(path string) (sema.Crate, bool) {
	st, ok := m.state[path]
	if !ok || st.crate < 0 {
		return sema.Crate{}, false
	}
	return m.crates[st.crate], true
}

func (m *Model) FileItems(path string) ([]sema.Item, error) {
	st, ok := m.state[path]
	switch {
	case !ok:
		return nil, fmt.Errorf("rustsema: %s: unknown file: %w", path, sema.ErrFileUnresolved)
	case st.err != nil:
		return nil, fmt.Errorf("rustsema: %s: %v: %w", path, st.err, sema.ErrFileUnresolved)
	case st.crate < 0:
		return nil, fmt.Errorf("rustsema: %s: not in any crate's module tree: %w", path, sema.ErrFileUnresolved)
	}
	return handles(st.syntax.items), nil
}

func (m *Model) Children(it sema.Item) []sema.Item {
	if x, ok := it.(*item); ok {
		return handles(x.children)
	}
	return nil
}

func (m *Model) Fields(it sema.Item) []sema.Field {
	if x, ok := it.(*item); ok {
		return x.fields
	}
	return nil
}

func (m *Model) Variants(it sema.Item) []sema.Variant {
	if x, ok := it.(*item); ok {
		return x.variants
	}
	return nil
}

func (m *Model) Signature(it sema.Item) sema.Signature {
	if x, ok := it.(*item); ok {
		return x.sig
	}
	return sema.Signature{}
}

func (m *Model) DeclaredType(it sema.Item) sema.TypeRef {
	if x, ok := it.(*item); ok && x.declared != nil {
		return x.declared
	}
	return nil
}

func (m *Model) ResolveType(ref sema.TypeRef) (sema.Type, bool) {
	r, ok := ref.(*typeRef)
	if !ok || r == nil || !r.ok {
		return sema.Type{}, false
	}
	return r.t, true
}

func (m *Model) Body(it sema.Item) (*sema.Scope, bool) {
	x, ok := it.(*item)
	if !ok || x.body == nil {
		return nil, false
	}
	return x.body, true
}

func handles(items []*item) []sema.Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]sema.Item, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}
