package pipeline

import (
	"jsonapi/sanitizer"
	"jsonapi/store"
)

// SearchConfig enables the q query parameter over Fields.
type SearchConfig struct {
	Active bool
	Fields []string
}

// SanitizeConfig controls escaping of submitted attributes. A nil Fields
// sanitizes every attribute; a nil Sanitizer uses [sanitizer.HTML].
type SanitizeConfig struct {
	Active    bool
	Fields    []string
	Sanitizer sanitizer.Sanitizer
}

// Mapper turns a stored document into its response shape.
type Mapper interface {
	Serialize(doc store.Document) any
}

// MapperFunc adapts a func to [Mapper].
type MapperFunc func(doc store.Document) any

func (f MapperFunc) Serialize(doc store.Document) any { return f(doc) }

// Page is the pagination block of a response.
type Page struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Meta is the meta block of a response.
type Meta struct {
	Page *Page `json:"page"`
}

// Response is the body written on success.
type Response struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// State is the per-request context threaded through every stage. The
// route fields are copied from configuration when the request starts and
// are only read by stages.
type State struct {
	Archetype Archetype
	ID        string
	Model     store.Model
	Limit     int
	Populate  []string
	Mapper    Mapper
	Search    SearchConfig
	Sanitize  SanitizeConfig
	Lean      bool
	Metadata  map[string]any

	// Criteria only grows: search and filter add predicates to it.
	Criteria store.Criteria

	// Query is established by the query stage and consumed by execute.
	Query store.Query

	// Record and Records hold what execute, find, update or create fetched.
	Record  *store.Record
	Records []*store.Record

	// Resource and Resources hold the serialized output render writes.
	Resource  any
	Resources []any

	Page *Page
}
