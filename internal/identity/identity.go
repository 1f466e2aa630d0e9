// Package identity mints the stable identifiers attached to extracted items.
package identity

import (
	"errors"
	"fmt"

	"github.com/jward/forgen/internal/sema"
)

// ErrInvariant reports that the semantic model violated its own contract,
// such as producing a handle without a numeric identity.
var ErrInvariant = errors.New("semantic model invariant violated")

// StableID is the printable identity token of a semantic entity, for example
// "Struct{id:StructId(7)}".
type StableID string

// kindTags maps item kinds to the type names used in tokens.
var kindTags = map[sema.Kind]string{
	sema.KindFunction:  "Function",
	sema.KindStruct:    "Struct",
	sema.KindEnum:      "Enum",
	sema.KindTrait:     "Trait",
	sema.KindTypeAlias: "TypeAlias",
	sema.KindConst:     "Const",
	sema.KindStatic:    "Static",
	sema.KindModule:    "Module",
}

// Format renders the token for a kind and numeric id. It is a pure function:
// equal inputs always give equal tokens, and the kind tag keeps ids of
// different kinds apart.
func Format(kind sema.Kind, n uint32) (StableID, error) {
	tag, ok := kindTags[kind]
	if !ok {
		return "", fmt.Errorf("identity: unknown item kind %q: %w", kind, ErrInvariant)
	}
	return StableID(fmt.Sprintf("%s{id:%sId(%d)}", tag, tag, n)), nil
}

// Registry hands out StableIDs for one extraction run and remembers which
// entity each token was issued to.
type Registry struct {
	issued map[StableID]entity
}

type entity struct {
	kind sema.Kind
	name string
}

// NewRegistry returns an empty registry. Registries must not be shared
// between runs.
func NewRegistry() *Registry {
	return &Registry{issued: make(map[StableID]entity)}
}

// ID returns the StableID of item. Asking twice for the same entity returns
// the same token. It fails with ErrInvariant when the model cannot supply a
// numeric id for a handle it produced, or when two different entities claim
// the same token.
func (r *Registry) ID(item sema.Item) (StableID, error) {
	n, ok := item.EntityID()
	if !ok {
		return "", fmt.Errorf("identity: %s %q has no entity id: %w", item.Kind(), item.Name(), ErrInvariant)
	}
	id, err := Format(item.Kind(), n)
	if err != nil {
		return "", err
	}
	e := entity{kind: item.Kind(), name: item.Name()}
	if prev, seen := r.issued[id]; seen && prev != e {
		return "", fmt.Errorf("identity: %s issued to both %q and %q: %w", id, prev.name, e.name, ErrInvariant)
	}
	r.issued[id] = e
	return id, nil
}

// Len returns how many distinct tokens have been issued.
func (r *Registry) Len() int {
	return len(r.issued)
}
