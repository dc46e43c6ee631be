package middlewares

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/parallel-finance/staking-agent/internal/config"
)

const (
	maxAge = 300
)

// CorsMiddleware allows read-only access from the configured origins.
func CorsMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         maxAge,
	})
	return c.Handler
}
