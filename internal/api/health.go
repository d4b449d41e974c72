package api

import (
	"context"
	"net/http"

	"github.com/fleetconfig/channelhub/internal/stream"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HealthHandler returns the health check handler.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{
			Status:  "healthy",
			Version: "1.0.0",
		})
	}
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Healthy(ctx context.Context) error
}

// ReadyHandler answers 200 only when every backing dependency is
// reachable; load balancers use it to pull an instance out of rotation.
func ReadyHandler(deps ...Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, dep := range deps {
			if err := dep.Healthy(r.Context()); err != nil {
				respondError(w, http.StatusServiceUnavailable, err.Error())
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// StatsHandler reports operational counters for dashboards.
func StatsHandler(hub *stream.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]int{
			"connected_watchers": hub.ClientCount(),
		})
	}
}
