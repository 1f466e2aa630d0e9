package rustsema

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/forgen/internal/sema"
)

// typeRef is a converted annotation. Conversion happens at load time so the
// syntax tree can be released; ok is false when the annotation holds an
// inference hole or a construct this frontend does not classify.
type typeRef struct {
	syntax string
	t      sema.Type
	ok     bool
}

func (r *typeRef) Syntax() string { return r.syntax }

// typeRef converts an annotation node. A nil node gives a nil TypeRef.
func (s source) typeRef(n *sitter.Node) sema.TypeRef {
	if n == nil {
		return nil
	}
	t, ok := s.typeOf(n)
	return &typeRef{syntax: s.text(n), t: t, ok: ok}
}

// typeOf converts a type node into a structured term.
func (s source) typeOf(n *sitter.Node) (sema.Type, bool) {
	if broken(n) {
		return sema.Type{}, false
	}
	if s.text(n) == "_" {
		return sema.Type{Kind: sema.TypeInfer}, false
	}

	switch n.Type() {
	case "primitive_type", "type_identifier", "scoped_type_identifier":
		return sema.Type{Kind: sema.TypePath, Name: s.text(n)}, true

	case "generic_type":
		base := n.ChildByFieldName("type")
		if base == nil {
			return sema.Type{}, false
		}
		t := sema.Type{Kind: sema.TypePath, Name: s.text(base)}
		// elements keeps anonymous `_` holes so they fail the whole type.
		for _, arg := range elements(n.ChildByFieldName("type_arguments")) {
			a, ok := s.typeArg(arg)
			if !ok {
				return sema.Type{}, false
			}
			t.Args = append(t.Args, a)
		}
		return t, true

	case "reference_type":
		elem, ok := s.typeOf(n.ChildByFieldName("type"))
		if !ok {
			return sema.Type{}, false
		}
		t := sema.Type{Kind: sema.TypeRefTo, Elem: &elem}
		if lt := childOfType(n, "lifetime"); lt != nil {
			t.Lifetime = s.text(lt)
		}
		t.Mutable = childOfType(n, "mutable_specifier") != nil
		return t, true

	case "pointer_type":
		elem, ok := s.typeOf(n.ChildByFieldName("type"))
		if !ok {
			return sema.Type{}, false
		}
		return sema.Type{Kind: sema.TypePointer, Elem: &elem, Mutable: childOfType(n, "mutable_specifier") != nil}, true

	case "unit_type":
		return sema.Type{Kind: sema.TypeTuple}, true

	case "tuple_type":
		t := sema.Type{Kind: sema.TypeTuple}
		for _, el := range elements(n) {
			e, ok := s.typeOf(el)
			if !ok {
				return sema.Type{}, false
			}
			t.Args = append(t.Args, e)
		}
		return t, true

	case "array_type":
		elem, ok := s.typeOf(n.ChildByFieldName("element"))
		if !ok {
			return sema.Type{}, false
		}
		length := n.ChildByFieldName("length")
		if length == nil {
			return sema.Type{Kind: sema.TypeSlice, Elem: &elem}, true
		}
		if broken(length) || s.text(length) == "_" {
			return sema.Type{}, false
		}
		return sema.Type{Kind: sema.TypeArray, Elem: &elem, Len: s.text(length)}, true

	case "function_type":
		// Fn(A) -> B and friends are trait sugar; keep them as written.
		if n.ChildByFieldName("trait") != nil || childOfType(n, "for_lifetimes") != nil {
			return sema.Type{Kind: sema.TypeVerbatim, Name: s.text(n)}, true
		}
		t := sema.Type{Kind: sema.TypeFn}
		if mods := childOfType(n, "function_modifiers"); mods != nil {
			t.Name = s.text(mods)
		}
		for _, p := range namedChildren(n.ChildByFieldName("parameters")) {
			if p.Type() == "parameter" {
				p = p.ChildByFieldName("type")
			}
			a, ok := s.typeOf(p)
			if !ok {
				return sema.Type{}, false
			}
			t.Args = append(t.Args, a)
		}
		if ret := n.ChildByFieldName("return_type"); ret != nil {
			r, ok := s.typeOf(ret)
			if !ok {
				return sema.Type{}, false
			}
			t.Elem = &r
		}
		return t, true

	case "abstract_type", "dynamic_type":
		kind := sema.TypeImpl
		if n.Type() == "dynamic_type" {
			kind = sema.TypeDyn
		}
		bounds, ok := s.bounds(n.ChildByFieldName("trait"))
		if !ok {
			return sema.Type{}, false
		}
		return sema.Type{Kind: kind, Args: bounds}, true

	case "bounded_type":
		return sema.Type{Kind: sema.TypeVerbatim, Name: s.text(n)}, true

	case "never_type":
		return sema.Type{Kind: sema.TypeNever}, true

	case "lifetime":
		return sema.Type{Kind: sema.TypeLifetime, Name: s.text(n)}, true
	}
	return sema.Type{}, false
}

// typeArg converts one generic argument.
func (s source) typeArg(n *sitter.Node) (sema.Type, bool) {
	switch n.Type() {
	case "type_binding":
		name := n.ChildByFieldName("name")
		val, ok := s.typeOf(n.ChildByFieldName("type"))
		if name == nil || !ok {
			return sema.Type{}, false
		}
		return sema.Type{Kind: sema.TypeBinding, Name: s.text(name), Elem: &val}, true
	case "integer_literal", "string_literal", "char_literal", "boolean_literal",
		"float_literal", "negative_literal", "block":
		if broken(n) {
			return sema.Type{}, false
		}
		return sema.Type{Kind: sema.TypeConst, Name: s.text(n)}, true
	}
	return s.typeOf(n)
}

// bounds flattens A + B + 'a into a list.
func (s source) bounds(n *sitter.Node) ([]sema.Type, bool) {
	if n == nil {
		return nil, false
	}
	if n.Type() != "bounded_type" && n.Type() != "trait_bounds" {
		t, ok := s.bound(n)
		if !ok {
			return nil, false
		}
		return []sema.Type{t}, true
	}
	var out []sema.Type
	for _, c := range namedChildren(n) {
		bs, ok := s.bounds(c)
		if !ok {
			return nil, false
		}
		out = append(out, bs...)
	}
	return out, true
}

func (s source) bound(n *sitter.Node) (sema.Type, bool) {
	switch n.Type() {
	case "removed_trait_bound", "higher_ranked_trait_bound":
		if broken(n) {
			return sema.Type{}, false
		}
		return sema.Type{Kind: sema.TypeVerbatim, Name: s.text(n)}, true
	}
	return s.typeOf(n)
}
