package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/text-utility/app"
	"github.com/upb/text-utility/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(deps.Config.Server.WriteTimeout))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID", "X-Report-Location", "X-Report-Persisted"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	// Prometheus scrape endpoint
	if deps.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", deps.Collector.Handler())
	}

	askHandler := handlers.NewAskHandler(deps.TextGen, deps.Logger)
	metricsHandler := handlers.NewMetricsHandler(deps.Tracker, deps.Logger)
	reportsHandler := handlers.NewReportsHandler(deps.Tracker, deps.Reports,
		deps.Config.Reports.PersistDefault, deps.Logger)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ask", askHandler.HandleAsk)
		r.Get("/models", askHandler.HandleModels)
		r.Get("/task-types", askHandler.HandleTaskTypes)

		r.Route("/metrics", func(r chi.Router) {
			r.Get("/summary", metricsHandler.HandleSummary)
			r.Post("/reset", metricsHandler.HandleReset)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Post("/generate", reportsHandler.HandleGenerate)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"The requested resource was not found"}`))
	})

	// 405 handler
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"error":"method_not_allowed","message":"The requested method is not allowed"}`))
	})

	return r
}
