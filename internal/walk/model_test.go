package walk

import (
	"fmt"

	"github.com/jward/forgen/internal/sema"
)

// fakeModel is an in-memory sema.Model assembled by tests.
type fakeModel struct {
	files    map[string][]sema.Item
	children map[*fakeItem][]sema.Item
	fields   map[*fakeItem][]sema.Field
	variants map[*fakeItem][]sema.Variant
	sigs     map[*fakeItem]sema.Signature
	declared map[*fakeItem]sema.TypeRef
	bodies   map[*fakeItem]*sema.Scope
}

func newFakeModel() *fakeModel {
	return &fakeModel{
		files:    map[string][]sema.Item{},
		children: map[*fakeItem][]sema.Item{},
		fields:   map[*fakeItem][]sema.Field{},
		variants: map[*fakeItem][]sema.Variant{},
		sigs:     map[*fakeItem]sema.Signature{},
		declared: map[*fakeItem]sema.TypeRef{},
		bodies:   map[*fakeItem]*sema.Scope{},
	}
}

type fakeItem struct {
	kind sema.Kind
	name string
	id   uint32
	noID bool
}

func (f *fakeItem) Kind() sema.Kind          { return f.kind }
func (f *fakeItem) Name() string             { return f.name }
func (f *fakeItem) EntityID() (uint32, bool) { return f.id, !f.noID }

// fakeType is a TypeRef carrying its resolution.
type fakeType struct{ t sema.Type }

func (f fakeType) Syntax() string { return fmt.Sprint(f.t) }

func ty(name string) sema.TypeRef {
	return fakeType{sema.Type{Kind: sema.TypePath, Name: name}}
}

func inferred() sema.TypeRef {
	return fakeType{sema.Type{Kind: sema.TypeInfer}}
}

func (m *fakeModel) add(path string, it *fakeItem) *fakeItem {
	m.files[path] = append(m.files[path], it)
	return it
}

func (m *fakeModel) Crates() []sema.Crate { return nil }

func (m *fakeModel) Files() []string {
	var out []string
	for p := range m.files {
		out = append(out, p)
	}
	return out
}

func (m *fakeModel) FileItems(path string) ([]sema.Item, error) {
	items, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("fake: %s: %w", path, sema.ErrFileUnresolved)
	}
	return items, nil
}

func (m *fakeModel) Children(it sema.Item) []sema.Item      { return m.children[it.(*fakeItem)] }
func (m *fakeModel) Fields(it sema.Item) []sema.Field       { return m.fields[it.(*fakeItem)] }
func (m *fakeModel) Variants(it sema.Item) []sema.Variant   { return m.variants[it.(*fakeItem)] }
func (m *fakeModel) Signature(it sema.Item) sema.Signature  { return m.sigs[it.(*fakeItem)] }
func (m *fakeModel) DeclaredType(it sema.Item) sema.TypeRef { return m.declared[it.(*fakeItem)] }

func (m *fakeModel) ResolveType(ref sema.TypeRef) (sema.Type, bool) {
	f, ok := ref.(fakeType)
	if !ok {
		return sema.Type{}, false
	}
	return f.t, true
}

func (m *fakeModel) Body(it sema.Item) (*sema.Scope, bool) {
	s, ok := m.bodies[it.(*fakeItem)]
	return s, ok
}
