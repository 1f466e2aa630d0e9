package rustsema

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/forgen/internal/sema"
)

// nestedItems are declarations whose bodies are separate from the body they
// appear in.
var nestedItems = map[string]bool{
	"function_item":    true,
	"impl_item":        true,
	"trait_item":       true,
	"mod_item":         true,
	"struct_item":      true,
	"enum_item":        true,
	"union_item":       true,
	"const_item":       true,
	"static_item":      true,
	"macro_definition": true,
	"foreign_mod_item": true,
}

// body builds the scope tree of a function body block.
func (c *converter) body(block *sitter.Node) *sema.Scope {
	root := &sema.Scope{}
	c.scanChildren(block, root)
	return root
}

// scan visits n in source order, recording let bindings and closures into
// sc. Nested blocks open nested scopes.
func (c *converter) scan(n *sitter.Node, sc *sema.Scope) {
	if n == nil || nestedItems[n.Type()] {
		return
	}
	switch n.Type() {
	case "let_declaration":
		c.let(n, sc)
	case "closure_expression":
		c.closure(n, sc)
	case "block":
		c.scanChildren(n, sc.AddBlock())
	default:
		c.scanChildren(n, sc)
	}
}

func (c *converter) scanChildren(n *sitter.Node, sc *sema.Scope) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c.scan(n.NamedChild(i), sc)
	}
}

// let records one binding per identifier of the pattern, then scans the
// initializer and the else block.
func (c *converter) let(n *sitter.Node, sc *sema.Scope) {
	mutable := childOfType(n, "mutable_specifier") != nil
	c.bind(n.ChildByFieldName("pattern"), n.ChildByFieldName("type"), mutable, sc)
	c.scan(n.ChildByFieldName("value"), sc)
	c.scan(n.ChildByFieldName("alternative"), sc)
}

// bind walks a pattern. ty is the annotation node matching pat, or nil when
// no annotation applies to this part of the pattern.
func (c *converter) bind(pat, ty *sitter.Node, mutable bool, sc *sema.Scope) {
	if pat == nil {
		return
	}
	switch pat.Type() {
	case "identifier":
		sc.AddBinding(sema.Binding{Name: c.src.text(pat), Type: c.src.typeRef(ty), Mutable: mutable})

	case "mut_pattern":
		c.bind(lastNamed(pat), ty, true, sc)

	case "ref_pattern":
		c.bind(lastNamed(pat), nil, false, sc)

	case "reference_pattern":
		var inner *sitter.Node
		if ty != nil && ty.Type() == "reference_type" {
			inner = ty.ChildByFieldName("type")
		}
		c.bind(lastNamed(pat), inner, mutable, sc)

	case "captured_pattern":
		parts := namedChildren(pat)
		if len(parts) == 0 {
			return
		}
		c.bind(parts[0], ty, mutable, sc)
		for _, p := range parts[1:] {
			c.bind(p, nil, false, sc)
		}

	case "tuple_pattern":
		elems := elements(pat)
		var types []*sitter.Node
		if ty != nil && ty.Type() == "tuple_type" {
			types = elements(ty)
		}
		split := len(types) == len(elems)
		for i, e := range elems {
			if e.Type() == "remaining_field_pattern" {
				split = false
			}
			var et *sitter.Node
			if split {
				et = types[i]
			}
			c.bind(e, et, mutable, sc)
		}

	case "tuple_struct_pattern":
		for i := 0; i < int(pat.ChildCount()); i++ {
			ch := pat.Child(i)
			if !ch.IsNamed() || pat.FieldNameForChild(i) == "type" {
				continue
			}
			c.bind(ch, nil, mutable, sc)
		}

	case "struct_pattern":
		for _, f := range namedChildren(pat) {
			if f.Type() != "field_pattern" {
				continue
			}
			fieldMut := mutable || childOfType(f, "mutable_specifier") != nil
			if sub := f.ChildByFieldName("pattern"); sub != nil {
				c.bind(sub, nil, fieldMut, sc)
				continue
			}
			if name := f.ChildByFieldName("name"); name != nil {
				ref := childOfType(f, "ref") != nil
				sc.AddBinding(sema.Binding{Name: c.src.text(name), Mutable: fieldMut && !ref})
			}
		}

	case "slice_pattern":
		for _, e := range namedChildren(pat) {
			c.bind(e, nil, mutable, sc)
		}

	case "or_pattern":
		// Every alternative binds the same names.
		if alts := namedChildren(pat); len(alts) > 0 {
			c.bind(alts[0], ty, mutable, sc)
		}
	}
}

// closure records a closure and scans its body into the closure's own scope.
func (c *converter) closure(n *sitter.Node, sc *sema.Scope) {
	cl := &sema.Closure{Body: &sema.Scope{}}
	for idx, p := range elements(n.ChildByFieldName("parameters")) {
		pat, ty := p, (*sitter.Node)(nil)
		if p.Type() == "parameter" {
			pat, ty = p.ChildByFieldName("pattern"), p.ChildByFieldName("type")
		}
		cl.Params = append(cl.Params, sema.Param{Name: c.paramName(pat, idx), Type: c.src.typeRef(ty)})
	}
	cl.Ret = c.src.typeRef(n.ChildByFieldName("return_type"))
	sc.AddClosure(cl)
	c.scan(n.ChildByFieldName("body"), cl.Body)
}
