package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/mongoapi/mongoapi/internal/collection/service"
	"github.com/mongoapi/mongoapi/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the process-wide values the HTTP layer needs. They are built once
// in main and never mutated.
type Deps struct {
	Keys    middleware.KeyVerifier
	Service *service.Service
}

// NewRouter assembles the gin engine: logging and recovery, the public
// health/docs/metrics endpoints, and the API-key protected collection routes.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	RegisterHealth(r, deps.Service)
	RegisterSwagger(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := NewCollectionHandler(deps.Service)
	h.Register(r.Group("/", middleware.APIKeyMiddleware(deps.Keys)))
	return r
}
