package walk

import (
	"github.com/jward/forgen/internal/document"
	"github.com/jward/forgen/internal/sema"
	"github.com/jward/forgen/internal/typerender"
)

// bodyState is the numbering state of one function body. Locals and
// closures have separate counters; both span the whole body, not a block.
type bodyState struct {
	model       sema.Model
	nextLocal   uint32
	nextClosure uint32
	out         document.Body
}

// Body walks a function body's scope tree in source order and returns its
// record, or nil when the body declares no locals and no closures.
//
// Every binding gets a fresh id even when it shadows an earlier one of the
// same name. Locals declared inside closures belong to the enclosing body.
func Body(m sema.Model, scope *sema.Scope) *document.Body {
	if scope == nil {
		return nil
	}
	s := &bodyState{model: m}
	s.scope(scope)
	if s.out.Empty() {
		return nil
	}
	return &s.out
}

func (s *bodyState) scope(sc *sema.Scope) {
	for _, e := range sc.Entries {
		switch e.Kind {
		case sema.EntryBinding:
			s.local(e.Binding)
		case sema.EntryClosure:
			s.closure(e.Closure)
		case sema.EntryBlock:
			if e.Block != nil {
				s.scope(e.Block)
			}
		}
	}
}

func (s *bodyState) local(b *sema.Binding) {
	if b == nil {
		return
	}
	ty, _ := typerender.Resolve(s.model, b.Type)
	s.out.Locals = append(s.out.Locals, document.Local{
		Name: b.Name,
		Ty:   ty,
		ID:   s.nextLocal,
		Mut:  document.Flag(b.Mutable),
	})
	s.nextLocal++
}

func (s *bodyState) closure(c *sema.Closure) {
	if c == nil {
		return
	}
	rec := document.Closure{ID: s.nextClosure}
	s.nextClosure++
	for _, p := range c.Params {
		ty, _ := typerender.Resolve(s.model, p.Type)
		rec.Params = append(rec.Params, document.Param{Name: p.Name, Ty: ty})
	}
	rec.Ret, _ = typerender.Resolve(s.model, c.Ret)

	// Recorded before its body so that closure ids stay in source order.
	s.out.Closures = append(s.out.Closures, rec)
	if c.Body != nil {
		s.scope(c.Body)
	}
}
