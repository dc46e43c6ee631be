package api

import (
	"github.com/go-chi/chi"
)

func (a *Server) SetupRoutes(r *chi.Mux) {
	handlers := a.handlers
	r.Get("/healthcheck", registerHandler(handlers.HealthCheck))

	r.Get("/v1/state", registerHandler(handlers.GetState))
	r.Get("/v1/operations", registerHandler(handlers.GetOperations))
}
