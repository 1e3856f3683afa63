package mysqlstore

import (
	"encoding/json"
	"fmt"
	"strings"

	"jsonapi/store"
)

// jsonPath turns a dotted document path into a MySQL JSON path. Keys are
// always quoted so names like "first-name" survive.
func jsonPath(field string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, part := range strings.Split(field, ".") {
		b.WriteString(`."`)
		b.WriteString(strings.ReplaceAll(part, `"`, `\"`))
		b.WriteString(`"`)
	}
	return b.String()
}

// where compiles criteria into a WHERE clause body and its arguments.
// The zero criteria compiles to "TRUE".
func where(c store.Criteria) (string, []any, error) {
	return compileAll(c.Predicates(), " AND ", "TRUE")
}

func compileAll(preds []store.Predicate, sep, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}
	parts := make([]string, 0, len(preds))
	var args []any
	for _, p := range preds {
		clause, a, err := compile(p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, clause)
		args = append(args, a...)
	}
	if len(parts) == 1 {
		return parts[0], args, nil
	}
	return "(" + strings.Join(parts, sep) + ")", args, nil
}

// Eq and In compile to JSON_OVERLAPS so a stored array matches when any of
// its elements does.
func compile(p store.Predicate) (string, []any, error) {
	switch t := p.(type) {
	case store.Eq:
		raw, err := json.Marshal(t.Value)
		if err != nil {
			return "", nil, fmt.Errorf("encode %s: %w", t.Field, err)
		}
		return "JSON_OVERLAPS(JSON_EXTRACT(doc, ?), CAST(? AS JSON))", []any{jsonPath(t.Field), string(raw)}, nil
	case store.In:
		values := t.Values
		if values == nil {
			values = []any{}
		}
		raw, err := json.Marshal(values)
		if err != nil {
			return "", nil, fmt.Errorf("encode %s: %w", t.Field, err)
		}
		return "JSON_OVERLAPS(JSON_EXTRACT(doc, ?), CAST(? AS JSON))", []any{jsonPath(t.Field), string(raw)}, nil
	case store.Match:
		if len(t.Patterns) == 0 {
			return "FALSE", nil, nil
		}
		parts := make([]string, 0, len(t.Patterns))
		args := make([]any, 0, 2*len(t.Patterns))
		for _, pattern := range t.Patterns {
			parts = append(parts, "REGEXP_LIKE(JSON_UNQUOTE(JSON_EXTRACT(doc, ?)), ?, 'i')")
			args = append(args, jsonPath(t.Field), pattern)
		}
		if len(parts) == 1 {
			return parts[0], args, nil
		}
		return "(" + strings.Join(parts, " OR ") + ")", args, nil
	case store.Or:
		return compileAll(t, " OR ", "FALSE")
	case store.And:
		return compileAll(t, " AND ", "TRUE")
	default:
		return "", nil, fmt.Errorf("unsupported predicate %T", p)
	}
}
