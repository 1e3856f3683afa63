package mongostore

import (
	"fmt"
	"time"

	"jsonapi/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// matchNothing is a filter no document satisfies.
var matchNothing = bson.M{"$nor": bson.A{bson.M{}}}

// filter compiles criteria into a query document.
func filter(c store.Criteria, idField string) (bson.M, error) {
	return compileAll(c.Predicates(), "$and", idField)
}

func compileAll(preds []store.Predicate, op, idField string) (bson.M, error) {
	if len(preds) == 0 {
		if op == "$or" {
			return matchNothing, nil
		}
		return bson.M{}, nil
	}
	parts := make(bson.A, 0, len(preds))
	for _, p := range preds {
		f, err := compile(p, idField)
		if err != nil {
			return nil, err
		}
		parts = append(parts, f)
	}
	if len(parts) == 1 {
		return parts[0].(bson.M), nil
	}
	return bson.M{op: parts}, nil
}

func compile(p store.Predicate, idField string) (bson.M, error) {
	switch t := p.(type) {
	case store.Eq:
		if t.Field == idField {
			return bson.M{t.Field: bson.M{"$in": idValues(t.Value)}}, nil
		}
		return bson.M{t.Field: t.Value}, nil
	case store.In:
		values := make(bson.A, 0, len(t.Values))
		for _, v := range t.Values {
			if t.Field == idField {
				values = append(values, idValues(v)...)
				continue
			}
			values = append(values, v)
		}
		return bson.M{t.Field: bson.M{"$in": values}}, nil
	case store.Match:
		res := make(bson.A, 0, len(t.Patterns))
		for _, pattern := range t.Patterns {
			res = append(res, primitive.Regex{Pattern: pattern, Options: "i"})
		}
		return bson.M{t.Field: bson.M{"$in": res}}, nil
	case store.Or:
		return compileAll(t, "$or", idField)
	case store.And:
		return compileAll(t, "$and", idField)
	default:
		return nil, fmt.Errorf("unsupported predicate %T", p)
	}
}

// idValues matches an identifier given as a string against both string
// and ObjectID storage.
func idValues(v any) bson.A {
	s, ok := v.(string)
	if !ok {
		return bson.A{v}
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return bson.A{s}
	}
	return bson.A{s, oid}
}

// normalize converts decoded bson values into plain document values.
// ObjectIDs are kept so saved documents keep their identifier type.
func normalize(v any) any {
	switch t := v.(type) {
	case bson.M:
		return toDocument(t)
	case map[string]any:
		return toDocument(t)
	case bson.D:
		doc := make(store.Document, len(t))
		for _, e := range t {
			doc[e.Key] = normalize(e.Value)
		}
		return doc
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	default:
		return v
	}
}

func toDocument(m map[string]any) store.Document {
	doc := make(store.Document, len(m))
	for k, v := range m {
		doc[k] = normalize(v)
	}
	return doc
}
