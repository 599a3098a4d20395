// Package api provides the HTTP API server and routing.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rahilsk203/islamicai-sub002/config"
	"github.com/rahilsk203/islamicai-sub002/pkg/api/handlers"
	"github.com/rahilsk203/islamicai-sub002/pkg/api/middleware"
	"github.com/rahilsk203/islamicai-sub002/pkg/logger"
	"github.com/rahilsk203/islamicai-sub002/pkg/memory"
	"github.com/rahilsk203/islamicai-sub002/pkg/storage"
)

// RouterConfig holds the dependencies for building the router.
type RouterConfig struct {
	Config  *config.Config
	Logger  logger.Logger
	Engine  *memory.Engine
	Store   storage.KVStore
	Metrics middleware.MetricsRecorder
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(rc RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(rc.Logger))
	r.Use(middleware.Recovery(rc.Logger))
	if rc.Metrics != nil {
		r.Use(middleware.Metrics(rc.Metrics))
	}
	r.Use(middleware.CORS(&rc.Config.Server.CORS))
	r.Use(middleware.Timeout(rc.Config.Server.HTTP.ReadTimeout))

	healthHandler := handlers.NewHealthHandler(rc.Store, rc.Config.Storage.Type)
	memoryHandler := handlers.NewMemoryHandler(rc.Engine, rc.Logger)

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/status", healthHandler.Status)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Put("/owner", memoryHandler.LinkOwner)
			r.Get("/owner", memoryHandler.GetOwner)
			r.Post("/turns", memoryHandler.RecordTurn)
			r.Get("/turns", memoryHandler.SessionHistory)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/profile", memoryHandler.GetProfile)
			r.Put("/profile", memoryHandler.PutProfile)
			r.Put("/opt-out", memoryHandler.SetOptOut)
			r.Post("/facts", memoryHandler.SaveFact)
			r.Get("/facts", memoryHandler.SearchFacts)
			r.Post("/summaries", memoryHandler.AddSummary)
			r.Post("/recall", memoryHandler.Recall)
			r.Delete("/memories/last", memoryHandler.ForgetLast)
			r.Delete("/memories", memoryHandler.DeleteAll)

			r.Group(func(r chi.Router) {
				if rl := rc.Config.Server.RateLimit; rl.Enabled {
					r.Use(middleware.RateLimit(rl.RequestsPerSecond, rl.Burst))
				}
				r.Post("/maintenance", memoryHandler.Maintain)
			})
		})
	})

	return r
}
