package handlers

import (
	"net/http"
	"time"

	"github.com/rahilsk203/islamicai-sub002/pkg/api/response"
	"github.com/rahilsk203/islamicai-sub002/pkg/storage"
	"github.com/rahilsk203/islamicai-sub002/pkg/version"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	store       storage.KVStore
	storageType string
	startTime   time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store storage.KVStore, storageType string) *HealthHandler {
	return &HealthHandler{
		store:       store,
		storageType: storageType,
		startTime:   time.Now(),
	}
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Storage string            `json:"storage"`
	Version map[string]string `json:"version"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready handles GET /ready. The service is ready when the store answers,
// a missing probe key counts as an answer.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	_, err := h.store.Get(r.Context(), "readiness-probe")
	if err != nil && !storage.IsNotFound(err) {
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": err.Error(),
		})
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Status handles GET /status
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, StatusResponse{
		Status:  "healthy",
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Storage: h.storageType,
		Version: version.Info(),
	})
}
