package walk

import (
	"fmt"

	"github.com/jward/forgen/internal/document"
	"github.com/jward/forgen/internal/sema"
)

// unitType is the return type of a function declared without one.
const unitType = "()"

// File returns the record of one file. Errors from the model's FileItems
// (wrapping sema.ErrFileUnresolved) and from filters are returned as is;
// identity errors are fatal to the whole run.
func (w *Walker) File(path string) (document.File, error) {
	items, err := w.model.FileItems(path)
	if err != nil {
		return document.File{}, err
	}
	recs, err := w.items(path, items, 0, false)
	if err != nil {
		return document.File{}, err
	}
	return document.File{Path: path, Items: recs}, nil
}

// items converts a sibling list in declaration order. Inside a trait,
// functions get signatures only and nothing recurses further.
func (w *Walker) items(path string, items []sema.Item, depth int, inTrait bool) ([]document.Item, error) {
	var out []document.Item
	for _, it := range items {
		rec, keep, err := w.item(path, it, depth, inTrait)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (w *Walker) item(path string, it sema.Item, depth int, inTrait bool) (document.Item, bool, error) {
	id, err := w.ids.ID(it)
	if err != nil {
		return document.Item{}, false, err
	}
	if w.filter != nil {
		keep, err := w.filter(ItemInfo{
			Kind:  it.Kind(),
			Name:  it.Name(),
			ID:    id,
			Path:  path,
			Crate: w.crate.Name,
			Local: w.crate.Local,
			Depth: depth,
		})
		if err != nil {
			return document.Item{}, false, fmt.Errorf("walk: filter %s %q: %w", it.Kind(), it.Name(), err)
		}
		if !keep {
			return document.Item{}, false, nil
		}
	}

	rec := document.Item{Kind: string(it.Kind()), Name: it.Name(), ID: string(id)}

	switch it.Kind() {
	case sema.KindFunction:
		sig := w.model.Signature(it)
		rec.Params = w.params(sig.Params)
		if sig.HasRet {
			rec.Ret = w.resolve(sig.Ret)
		} else {
			rec.Ret = unitType
		}
		if !inTrait {
			if scope, ok := w.model.Body(it); ok {
				rec.Body = Body(w.model, scope)
			}
		}

	case sema.KindStruct:
		rec.Fields = w.fields(w.model.Fields(it))

	case sema.KindEnum:
		for _, v := range w.model.Variants(it) {
			rec.Variants = append(rec.Variants, document.Variant{
				Name:   v.Name,
				Fields: w.fields(v.Fields),
			})
		}

	case sema.KindTrait:
		if !inTrait {
			rec.Items, err = w.items(path, w.model.Children(it), depth+1, true)
		}

	case sema.KindModule:
		if !inTrait {
			rec.Items, err = w.items(path, w.model.Children(it), depth+1, false)
		}

	case sema.KindTypeAlias, sema.KindConst, sema.KindStatic:
		rec.Ty = w.resolve(w.model.DeclaredType(it))
	}
	if err != nil {
		return document.Item{}, false, err
	}
	return rec, true, nil
}

func (w *Walker) params(ps []sema.Param) []document.Param {
	var out []document.Param
	for _, p := range ps {
		out = append(out, document.Param{Name: p.Name, Ty: w.resolve(p.Type)})
	}
	return out
}

// fields maps fields positionally. Fields without a name are skipped; the
// model names tuple fields by index.
func (w *Walker) fields(fs []sema.Field) []document.Field {
	var out []document.Field
	for _, f := range fs {
		if f.Name == "" {
			continue
		}
		out = append(out, document.Field{Name: f.Name, Ty: w.resolve(f.Type)})
	}
	return out
}
