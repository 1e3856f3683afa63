// Package route binds declarative resource configurations to gin routers.
//
// Each Config names an endpoint, a model and the archetypes it serves.
// Binding registers one handler per archetype; every request gets a fresh
// pipeline state seeded from the config and runs the archetype's pipeline.
package route

import (
	"maps"
	"slices"

	"jsonapi/pipeline"
	"jsonapi/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// DefaultLimit caps list pages when a config sets no limit.
	DefaultLimit = 20

	// DefaultID is the path parameter and document field used to address
	// one resource when a config sets none.
	DefaultID = "_id"
)

// Config declares one resource endpoint.
type Config struct {
	Endpoint string
	ID       string
	Model    store.Model
	Mapper   pipeline.Mapper
	Limit    int
	Populate []string
	Search   pipeline.SearchConfig
	Sanitize pipeline.SanitizeConfig
	Lean     bool
	Metadata map[string]any

	// Methods lists the archetypes to serve. A nil pipeline means the
	// default one; a non-nil pipeline replaces it. Keys that are not a
	// known archetype are ignored.
	Methods map[pipeline.Archetype]pipeline.Pipeline
}

// Methods enables the default pipeline for each archetype.
func Methods(archetypes ...pipeline.Archetype) map[pipeline.Archetype]pipeline.Pipeline {
	out := make(map[pipeline.Archetype]pipeline.Pipeline, len(archetypes))
	for _, a := range archetypes {
		out[a] = nil
	}
	return out
}

// state seeds a fresh pipeline state. Slices and maps are copied so a
// request cannot alter the route configuration.
func (cfg Config) state(a pipeline.Archetype) *pipeline.State {
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	search := cfg.Search
	search.Fields = slices.Clone(search.Fields)
	sanitize := cfg.Sanitize
	sanitize.Fields = slices.Clone(sanitize.Fields)

	return &pipeline.State{
		Archetype: a,
		ID:        cfg.idField(),
		Model:     cfg.Model,
		Limit:     limit,
		Populate:  slices.Clone(cfg.Populate),
		Mapper:    cfg.Mapper,
		Search:    search,
		Sanitize:  sanitize,
		Lean:      cfg.Lean,
		Metadata:  maps.Clone(cfg.Metadata),
	}
}

func (cfg Config) idField() string {
	if cfg.ID == "" {
		return DefaultID
	}
	return cfg.ID
}

// ErrorHandler writes the response for a halted pipeline.
type ErrorHandler func(c *gin.Context, err error)

// Binder registers resource configs on gin routers.
type Binder struct {
	runner  pipeline.Runner
	onError ErrorHandler
}

type Option func(*Binder)

// WithObserver reports every stage run to o.
func WithObserver(o pipeline.Observer) Option {
	return func(b *Binder) { b.runner.Observer = o }
}

// WithErrorHandler replaces RespondError.
func WithErrorHandler(h ErrorHandler) Option {
	return func(b *Binder) { b.onError = h }
}

func New(opts ...Option) *Binder {
	b := &Binder{onError: RespondError}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bind registers configs with a default binder.
func Bind(r gin.IRouter, configs ...Config) {
	New().Bind(r, configs...)
}

// Bind registers a handler per served archetype of every config:
//
//	getList  GET    endpoint
//	get      GET    endpoint/:id
//	patch    PATCH  endpoint/:id
//	post     POST   endpoint
func (b *Binder) Bind(r gin.IRouter, configs ...Config) {
	for _, cfg := range configs {
		g := r.Group(cfg.Endpoint)
		one := "/:" + cfg.idField()

		for _, a := range pipeline.Archetypes() {
			p, ok := cfg.Methods[a]
			if !ok {
				continue
			}
			if p == nil {
				p, _ = pipeline.Lookup(a)
			}
			h := b.handler(cfg, a, p)

			switch a {
			case pipeline.GetList:
				g.GET("", h)
			case pipeline.Get:
				g.GET(one, h)
			case pipeline.Patch:
				g.PATCH(one, h)
			case pipeline.Post:
				g.POST("", h)
			}
		}
	}
}

func (b *Binder) handler(cfg Config, a pipeline.Archetype, p pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		req := &pipeline.Request{
			Params:   params(c),
			Query:    c.Request.URL.Query(),
			Renderer: c,
		}
		if a == pipeline.Patch || a == pipeline.Post {
			var body pipeline.Payload
			if err := c.ShouldBindJSON(&body); err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Msg("unreadable request body")
			} else {
				req.Body = &body
			}
		}

		if err := b.runner.Run(ctx, p, cfg.state(a), req); err != nil {
			_ = c.Error(err)
			b.onError(c, err)
		}
	}
}

func params(c *gin.Context) map[string]string {
	out := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		out[p.Key] = p.Value
	}
	return out
}
