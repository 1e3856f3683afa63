package api

import (
	stdhttp "net/http"

	intconfig "jsonapi/internal/config"
	h "jsonapi/internal/http/handlers"
	"jsonapi/internal/models"
	"jsonapi/middleware"
	"jsonapi/pipeline"
	"jsonapi/route"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the router wires together.
type Deps struct {
	Models   models.Set
	Logger   zerolog.Logger
	Observer pipeline.Observer
	Gatherer prometheus.Gatherer
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(deps.Logger), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		deps.Logger.Warn().Err(err).Msg("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck(env.StoreDriver, intconfig.Ping))
		api.GET("/routes", h.Routes)

		var opts []route.Option
		if deps.Observer != nil {
			opts = append(opts, route.WithObserver(deps.Observer))
		}
		route.New(opts...).Bind(api, h.Resources(deps.Models, env.RouteLimit)...)
	}

	h.SetRouter(r)
	return r
}
