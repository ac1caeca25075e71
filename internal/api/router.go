package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/apex-platform/tf-forge/internal/api/handlers"
	mw "github.com/apex-platform/tf-forge/internal/api/middleware"
)

type Dependencies struct {
	AuthSecret       []byte
	TerraformHandler *handlers.TerraformHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(chimid.Compress(5))

	// Health endpoints
	hh := handlers.NewHealthHandler()
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.AuthSecret))

			protected.Route("/terraform", func(tr chi.Router) {
				tr.Post("/generate", dep.TerraformHandler.Generate)
				tr.Get("/status/{username}", dep.TerraformHandler.History)
			})
		})
	})

	return r
}
