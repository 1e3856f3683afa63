package store

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Document is the plain representation of a stored record.
type Document map[string]any

// Get resolves a dotted path such as "address.city".
func (d Document) Get(path string) (any, bool) {
	if d == nil {
		return nil, false
	}
	if v, ok := d[path]; ok {
		return v, true
	}
	head, rest, found := strings.Cut(path, ".")
	if !found {
		return nil, false
	}
	child, ok := asDocument(d[head])
	if !ok {
		return nil, false
	}
	return child.Get(rest)
}

// Set writes v at a dotted path, creating intermediate documents.
func (d Document) Set(path string, v any) {
	head, rest, found := strings.Cut(path, ".")
	if !found {
		d[path] = v
		return
	}
	child, ok := asDocument(d[head])
	if !ok {
		child = Document{}
	}
	child.Set(rest, v)
	d[head] = child
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// Keys returns the top level keys in sorted order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Clone()
	case map[string]any:
		return Document(t).Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func asDocument(v any) (Document, bool) {
	switch t := v.(type) {
	case Document:
		return t, true
	case map[string]any:
		return Document(t), true
	default:
		return nil, false
	}
}

// Merge deep merges src into dst. Nested documents are merged key by key,
// every other value in src replaces the one in dst, arrays included.
func Merge(dst, src Document) Document {
	if dst == nil {
		dst = Document{}
	}
	for k, sv := range src {
		sdoc, sok := asDocument(sv)
		ddoc, dok := asDocument(dst[k])
		if sok && dok {
			dst[k] = Merge(ddoc, sdoc)
			continue
		}
		dst[k] = cloneValue(sv)
	}
	return dst
}

// Equal reports whether a stored value equals a criteria value. Values of
// different dynamic types compare by their string form so that "30" from a
// query string matches a stored 30.
func Equal(stored, want any) bool {
	if reflect.DeepEqual(stored, want) {
		return true
	}
	if stored == nil || want == nil {
		return false
	}
	return fmt.Sprint(stored) == fmt.Sprint(want)
}

// Compare orders two stored values. nil sorts first, numbers numerically,
// times chronologically and everything else by string form.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
