package pipeline

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"jsonapi/store"
)

// Renderer writes a JSON response. *gin.Context satisfies it.
type Renderer interface {
	JSON(code int, obj any)
}

// ResourceObject is the data member of a mutation body.
type ResourceObject struct {
	ID         any            `json:"id,omitempty"`
	Type       string         `json:"type,omitempty"`
	Attributes store.Document `json:"attributes"`
}

// Payload is a mutation request body: {"data": {"id", "attributes"}}.
type Payload struct {
	Data *ResourceObject `json:"data"`
}

// Request is the inbound input a pipeline reads.
type Request struct {
	Params   map[string]string
	Query    url.Values
	Body     *Payload
	Renderer Renderer
}

// Param returns a path parameter.
func (r *Request) Param(name string) string {
	if r == nil || r.Params == nil {
		return ""
	}
	return r.Params[name]
}

// SearchTerm returns the q query parameter.
func (r *Request) SearchTerm() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Query.Get("q"))
}

// FilterParam is one filter[field]=value query parameter.
type FilterParam struct {
	Field string
	Value string
}

// Filters returns the filter[field] parameters ordered by field name.
// Repeated parameters for one field are joined with commas.
func (r *Request) Filters() []FilterParam {
	if r == nil {
		return nil
	}
	var out []FilterParam
	for key, values := range r.Query {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		field := key[len("filter[") : len(key)-1]
		if field == "" || len(values) == 0 {
			continue
		}
		out = append(out, FilterParam{Field: field, Value: strings.Join(values, ",")})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// SortTokens returns the comma separated sort parameter, blanks dropped.
func (r *Request) SortTokens() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(r.Query.Get("sort"), ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// PageParam returns page[name] as a non-negative int. ok is false when
// the parameter is missing or unusable.
func (r *Request) PageParam(name string) (n int, ok bool) {
	if r == nil {
		return 0, false
	}
	raw := strings.TrimSpace(r.Query.Get("page[" + name + "]"))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Attributes returns the submitted attributes, nil when absent.
func (r *Request) Attributes() store.Document {
	if r == nil || r.Body == nil || r.Body.Data == nil {
		return nil
	}
	return r.Body.Data.Attributes
}
