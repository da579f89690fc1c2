package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/gods-bracket/handlers"
	"github.com/Dosada05/gods-bracket/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

const readTimeout = 30 * time.Second

type Handlers struct {
	Snapshots *handlers.SnapshotHandler
	Seeds     *handlers.SeedHandler
	Health    *handlers.HealthHandler
}

func SetupRoutes(router chi.Router, logger *logrus.Logger, corsOrigins []string, h Handlers) {
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	router.Get("/healthz", h.Health.Health)

	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(readTimeout))
			r.Get("/snapshots/{year}", h.Snapshots.GetSnapshot)
			r.Get("/seeds/{year}", h.Seeds.GetSeeds)
			r.Put("/seeds/{year}/leagues/{leagueID}", h.Seeds.SetLeagueSeeds)
		})

		// Rebuilds are bounded by the build itself, not the request timeout.
		r.Post("/snapshots/{year}/rebuild", h.Snapshots.RebuildSnapshot)
	})
}
