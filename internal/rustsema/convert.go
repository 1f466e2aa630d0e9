package rustsema

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/forgen/internal/sema"
)

// converter turns one file's syntax tree into items.
type converter struct {
	src  source
	mods []modDecl
}

// fileSyntax is the converted content of one file.
type fileSyntax struct {
	items     []*item
	mods      []modDecl
	hasErrors bool
}

func convertFile(src []byte, root *sitter.Node) fileSyntax {
	c := &converter{src: source(src)}
	items := c.items(root, nil)
	return fileSyntax{items: items, mods: c.mods, hasErrors: root.HasError()}
}

// items converts the item declarations directly under n. inline is the
// chain of inline modules n is nested in.
func (c *converter) items(n *sitter.Node, inline []string) []*item {
	var out []*item
	var attrs []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "attribute_item":
			attrs = append(attrs, child)
			continue
		case "line_comment", "block_comment", "inner_attribute_item":
			continue
		}
		if it := c.item(child, attrs, inline); it != nil {
			out = append(out, it)
		}
		attrs = nil
	}
	return out
}

func (c *converter) item(n *sitter.Node, attrs []*sitter.Node, inline []string) *item {
	name := c.src.text(n.ChildByFieldName("name"))

	switch n.Type() {
	case "function_item", "function_signature_item":
		it := &item{kind: sema.KindFunction, name: name, sig: c.signature(n)}
		if body := n.ChildByFieldName("body"); body != nil {
			it.body = c.body(body)
		}
		return it

	case "struct_item":
		return &item{kind: sema.KindStruct, name: name, fields: c.fields(n.ChildByFieldName("body"))}

	case "enum_item":
		it := &item{kind: sema.KindEnum, name: name}
		for _, v := range namedChildren(n.ChildByFieldName("body")) {
			if v.Type() != "enum_variant" {
				continue
			}
			it.variants = append(it.variants, sema.Variant{
				Name:   c.src.text(v.ChildByFieldName("name")),
				Fields: c.fields(v.ChildByFieldName("body")),
			})
		}
		return it

	case "trait_item":
		it := &item{kind: sema.KindTrait, name: name}
		it.children = c.traitMembers(n.ChildByFieldName("body"))
		return it

	case "type_item":
		return &item{kind: sema.KindTypeAlias, name: name, declared: c.src.typeRef(n.ChildByFieldName("type"))}

	case "const_item":
		if name == "" {
			name = "_"
		}
		return &item{kind: sema.KindConst, name: name, declared: c.src.typeRef(n.ChildByFieldName("type"))}

	case "static_item":
		return &item{kind: sema.KindStatic, name: name, declared: c.src.typeRef(n.ChildByFieldName("type"))}

	case "mod_item":
		it := &item{kind: sema.KindModule, name: name}
		body := n.ChildByFieldName("body")
		if body == nil {
			it.external = true
			it.pathAttr = c.pathAttr(attrs)
			c.mods = append(c.mods, modDecl{item: it, inline: append([]string(nil), inline...)})
			return it
		}
		it.children = c.items(body, append(append([]string(nil), inline...), name))
		return it
	}

	// impl blocks, unions, macros, uses and extern crates are not items of
	// interest.
	return nil
}

// traitMembers converts the associated items of a trait body.
func (c *converter) traitMembers(body *sitter.Node) []*item {
	var out []*item
	for _, m := range namedChildren(body) {
		name := c.src.text(m.ChildByFieldName("name"))
		switch m.Type() {
		case "function_item", "function_signature_item":
			out = append(out, &item{kind: sema.KindFunction, name: name, sig: c.signature(m)})
		case "associated_type":
			out = append(out, &item{kind: sema.KindTypeAlias, name: name})
		case "type_item":
			out = append(out, &item{kind: sema.KindTypeAlias, name: name, declared: c.src.typeRef(m.ChildByFieldName("type"))})
		case "const_item":
			if name == "" {
				name = "_"
			}
			out = append(out, &item{kind: sema.KindConst, name: name, declared: c.src.typeRef(m.ChildByFieldName("type"))})
		}
	}
	return out
}

// fields converts a field_declaration_list or ordered_field_declaration_list.
// Tuple fields are named by position.
func (c *converter) fields(list *sitter.Node) []sema.Field {
	if list == nil {
		return nil
	}
	var out []sema.Field
	switch list.Type() {
	case "field_declaration_list":
		for _, f := range namedChildren(list) {
			if f.Type() != "field_declaration" {
				continue
			}
			out = append(out, sema.Field{
				Name: c.src.text(f.ChildByFieldName("name")),
				Type: c.src.typeRef(f.ChildByFieldName("type")),
			})
		}
	case "ordered_field_declaration_list":
		idx := 0
		for i := 0; i < int(list.ChildCount()); i++ {
			if list.FieldNameForChild(i) != "type" {
				continue
			}
			out = append(out, sema.Field{
				Name: fmt.Sprint(idx),
				Type: c.src.typeRef(list.Child(i)),
			})
			idx++
		}
	}
	return out
}

// signature converts a function's parameters and return annotation. The
// self parameter is dropped; parameters bound by a pattern other than a
// plain identifier are named _<index>.
func (c *converter) signature(fn *sitter.Node) sema.Signature {
	var sig sema.Signature
	idx := 0
	for _, p := range namedChildren(fn.ChildByFieldName("parameters")) {
		switch p.Type() {
		case "self_parameter":
			continue
		case "parameter":
			sig.Params = append(sig.Params, sema.Param{
				Name: c.paramName(p.ChildByFieldName("pattern"), idx),
				Type: c.src.typeRef(p.ChildByFieldName("type")),
			})
		case "variadic_parameter":
			continue
		default:
			// A bare type, as in trait methods of the 2015 edition.
			sig.Params = append(sig.Params, sema.Param{Name: fmt.Sprintf("_%d", idx), Type: c.src.typeRef(p)})
		}
		idx++
	}
	if ret := fn.ChildByFieldName("return_type"); ret != nil {
		sig.Ret = c.src.typeRef(ret)
		sig.HasRet = true
	}
	return sig
}

// paramName returns the identifier a parameter pattern binds, or _<idx>.
func (c *converter) paramName(pat *sitter.Node, idx int) string {
	if pat != nil {
		if pat.Type() == "mut_pattern" {
			pat = lastNamed(pat)
		}
		if pat != nil && pat.Type() == "identifier" {
			return c.src.text(pat)
		}
	}
	return fmt.Sprintf("_%d", idx)
}

// pathAttr returns the value of a #[path = "..."] attribute, if any.
func (c *converter) pathAttr(attrs []*sitter.Node) string {
	for _, a := range attrs {
		text := c.src.text(a)
		inner := strings.TrimSuffix(strings.TrimPrefix(text, "#["), "]")
		key, val, ok := strings.Cut(inner, "=")
		if !ok || strings.TrimSpace(key) != "path" {
			continue
		}
		val = strings.TrimSpace(val)
		if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
			return val[1 : len(val)-1]
		}
	}
	return ""
}

func lastNamed(n *sitter.Node) *sitter.Node {
	if n == nil || n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(int(n.NamedChildCount()) - 1)
}
