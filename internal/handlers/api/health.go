package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"engagehub/internal/hub"
	"engagehub/internal/models"
	"engagehub/internal/storage"
)

// HealthHandler reports service liveness.
type HealthHandler struct {
	hub     *hub.Hub
	storage storage.KV
}

// NewHealthHandler creates a new API health handler.
func NewHealthHandler(h *hub.Hub, kv storage.KV) *HealthHandler {
	return &HealthHandler{hub: h, storage: kv}
}

// Check pings the storage backend and reports the feed state. A failing
// backend yields 503; a failing chain read does not, the feed is still served.
func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	resp := models.HealthResponse{Status: "ok", Storage: "ok"}
	resp.FeedEntries = h.hub.Stats().Entries
	lastErr, refreshedAt := h.hub.Status()
	resp.LastError = lastErr
	if !refreshedAt.IsZero() {
		resp.RefreshedAt = &refreshedAt
	}

	if err := storage.Ping(ctx, h.storage); err != nil {
		resp.Status = "degraded"
		resp.Storage = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "storage unavailable",
			"data":   resp,
		})
	}

	return jsonSuccess(c, resp)
}
