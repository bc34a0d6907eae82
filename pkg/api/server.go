// Package api is the read-only HTTP surface over a loaded flag store.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the HTTP routes for a server.
func NewRouter(server *Server, metrics *Metrics) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(server.config.APIKey))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))
		r.Get("/packages/{name}", metrics.InstrumentHandler("GET", "/api/v1/packages/{name}", server.handleGetPackage))
		r.Get("/flags/{package}/{flag}", metrics.InstrumentHandler("GET", "/api/v1/flags/{package}/{flag}", server.handleGetFlag))
		r.Get("/stats", metrics.InstrumentHandler("GET", "/api/v1/stats", server.handleStats))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured
func StartServer(reader FlagReader, config ServerConfig) error {
	metrics := NewMetrics()
	server := NewServer(reader, config, metrics)

	stats := reader.Stats()
	metrics.UpdateTableStats(stats.NumPackages, stats.NumFlags)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	return http.ListenAndServe(addr, NewRouter(server, metrics))
}
