// Package typerender turns structured type terms into canonical Rust source
// text. Rendering is all or nothing: a term containing an inference hole or
// an unclassified node is reported unresolved instead of printed partially.
package typerender

import (
	"strings"

	"github.com/jward/forgen/internal/sema"
)

// Render returns the canonical text of t, or false when any part of t is
// unresolved.
func Render(t sema.Type) (string, bool) {
	var b strings.Builder
	if !write(&b, t) {
		return "", false
	}
	return b.String(), true
}

// Resolve renders an annotation through the model. A nil ref, a ref the
// model cannot resolve, or a term that does not render all report false.
func Resolve(m sema.Model, ref sema.TypeRef) (string, bool) {
	if ref == nil {
		return "", false
	}
	t, ok := m.ResolveType(ref)
	if !ok {
		return "", false
	}
	return Render(t)
}

func write(b *strings.Builder, t sema.Type) bool {
	switch t.Kind {
	case sema.TypePath:
		if t.Name == "" {
			return false
		}
		b.WriteString(t.Name)
		if len(t.Args) > 0 {
			b.WriteByte('<')
			if !writeList(b, t.Args, ", ") {
				return false
			}
			b.WriteByte('>')
		}
		return true

	case sema.TypeRefTo:
		b.WriteByte('&')
		if t.Lifetime != "" {
			b.WriteString(t.Lifetime)
			b.WriteByte(' ')
		}
		if t.Mutable {
			b.WriteString("mut ")
		}
		return writeElem(b, t.Elem)

	case sema.TypePointer:
		if t.Mutable {
			b.WriteString("*mut ")
		} else {
			b.WriteString("*const ")
		}
		return writeElem(b, t.Elem)

	case sema.TypeTuple:
		b.WriteByte('(')
		if !writeList(b, t.Args, ", ") {
			return false
		}
		if len(t.Args) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
		return true

	case sema.TypeArray:
		if t.Len == "" {
			return false
		}
		b.WriteByte('[')
		if !writeElem(b, t.Elem) {
			return false
		}
		b.WriteString("; ")
		b.WriteString(t.Len)
		b.WriteByte(']')
		return true

	case sema.TypeSlice:
		b.WriteByte('[')
		if !writeElem(b, t.Elem) {
			return false
		}
		b.WriteByte(']')
		return true

	case sema.TypeFn:
		if t.Name != "" {
			b.WriteString(t.Name)
			b.WriteByte(' ')
		}
		b.WriteString("fn(")
		if !writeList(b, t.Args, ", ") {
			return false
		}
		b.WriteByte(')')
		if t.Elem != nil {
			b.WriteString(" -> ")
			return write(b, *t.Elem)
		}
		return true

	case sema.TypeImpl, sema.TypeDyn:
		if len(t.Args) == 0 {
			return false
		}
		if t.Kind == sema.TypeImpl {
			b.WriteString("impl ")
		} else {
			b.WriteString("dyn ")
		}
		return writeList(b, t.Args, " + ")

	case sema.TypeNever:
		b.WriteByte('!')
		return true

	case sema.TypeBinding:
		if t.Name == "" {
			return false
		}
		b.WriteString(t.Name)
		b.WriteString(" = ")
		return writeElem(b, t.Elem)

	case sema.TypeLifetime, sema.TypeConst, sema.TypeVerbatim:
		if t.Name == "" {
			return false
		}
		b.WriteString(t.Name)
		return true
	}

	// TypeInfer, TypeInvalid and anything unknown.
	return false
}

func writeElem(b *strings.Builder, elem *sema.Type) bool {
	if elem == nil {
		return false
	}
	return write(b, *elem)
}

func writeList(b *strings.Builder, ts []sema.Type, sep string) bool {
	for i, t := range ts {
		if i > 0 {
			b.WriteString(sep)
		}
		if !write(b, t) {
			return false
		}
	}
	return true
}
