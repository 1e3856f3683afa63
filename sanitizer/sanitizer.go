// Package sanitizer escapes submitted attribute values before they are
// persisted.
package sanitizer

import (
	"strings"

	"jsonapi/store"
)

// Sanitizer transforms a submitted value into a safe one.
type Sanitizer interface {
	Sanitize(v any) any
}

// Func adapts a func to [Sanitizer].
type Func func(v any) any

func (f Func) Sanitize(v any) any { return f(v) }

// HTML makes strings safe to place in HTML text by escaping "<", so no tag
// can open. Other characters are kept, which keeps the escaping idempotent.
// Objects and arrays are walked recursively and sanitized in place;
// booleans, numbers and nil are returned unchanged.
var HTML Sanitizer = Func(sanitizeHTML)

func sanitizeHTML(v any) any {
	switch t := v.(type) {
	case nil, bool:
		return v
	case string:
		return escapeText(t)
	case store.Document:
		for k, e := range t {
			t[k] = sanitizeHTML(e)
		}
		return t
	case map[string]any:
		for k, e := range t {
			t[k] = sanitizeHTML(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = sanitizeHTML(e)
		}
		return t
	case []string:
		for i, e := range t {
			t[i] = escapeText(e)
		}
		return t
	default:
		return v
	}
}

func escapeText(s string) string {
	return strings.ReplaceAll(s, "<", "&lt;")
}
