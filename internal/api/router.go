package api

import (
	"net/http"

	"github.com/fleetconfig/channelhub/internal/engine"
	"github.com/fleetconfig/channelhub/internal/service"
	"github.com/fleetconfig/channelhub/internal/store"
	"github.com/fleetconfig/channelhub/internal/stream"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures the HTTP router. The optional pingers
// back the readiness endpoint; with none, readiness always passes.
func NewRouter(svc *service.Service, s store.Store, hub *stream.Hub, limiter *engine.RateLimiter, resolveRateLimit int, pingers ...Pinger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	subHandler := NewSubscriptionHandler(svc, s, limiter, resolveRateLimit)
	groupHandler := NewGroupHandler(svc, s)

	// Streaming watchers
	r.Get("/ws/orgs/{orgID}/subscription-updates", hub.HandleSubscriptionUpdates)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", HealthHandler())
		r.Get("/ready", ReadyHandler(pingers...))
		r.Get("/stats", StatsHandler(hub))

		r.Route("/orgs/{orgID}", func(r chi.Router) {
			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/by-tag", subHandler.ResolveByTag)
				r.Get("/", subHandler.List)
				r.Post("/", subHandler.Create)
				r.Get("/{uuid}", subHandler.Get)
				r.Put("/{uuid}", subHandler.Update)
				r.Delete("/{uuid}", subHandler.Delete)
			})

			r.Route("/groups", func(r chi.Router) {
				r.Get("/", groupHandler.List)
				r.Post("/", groupHandler.Create)
				r.Get("/{uuid}", groupHandler.Get)
				r.Delete("/{uuid}", groupHandler.Delete)
				r.Delete("/by-name/{name}", groupHandler.DeleteByName)
				r.Post("/{uuid}/clusters", groupHandler.GroupClusters)
				r.Delete("/{uuid}/clusters", groupHandler.UnGroupClusters)
			})
		})
	})

	return r
}
