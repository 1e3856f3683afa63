package store

import (
	"context"
	"fmt"
)

// Ref points a document path at another model. The stored value (or each
// element of a stored array) is looked up in Model by Field, "_id" when
// empty.
type Ref struct {
	Model Model
	Field string
}

// Refs maps populatable paths to their referenced models.
type Refs map[string]Ref

// Populate replaces referenced ids at the given paths with the referenced
// documents. Paths without a Ref are skipped, and ids that resolve to
// nothing are left as they are.
func Populate(ctx context.Context, docs []Document, refs Refs, paths []string) error {
	for _, path := range paths {
		ref, ok := refs[path]
		if !ok || ref.Model == nil {
			continue
		}
		field := ref.Field
		if field == "" {
			field = "_id"
		}
		for _, doc := range docs {
			v, ok := doc.Get(path)
			if !ok || v == nil {
				continue
			}
			resolved, err := resolveRef(ctx, ref.Model, field, v)
			if err != nil {
				return fmt.Errorf("populate %s: %w", path, err)
			}
			doc.Set(path, resolved)
		}
	}
	return nil
}

func resolveRef(ctx context.Context, m Model, field string, v any) (any, error) {
	if ids, ok := v.([]any); ok {
		out := make([]any, len(ids))
		for i, id := range ids {
			r, err := resolveRef(ctx, m, field, id)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	if _, ok := asDocument(v); ok {
		return v, nil
	}
	rec, err := m.FindOne(Where(Eq{Field: field, Value: v})).One(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return v, nil
	}
	return rec.Object(), nil
}
