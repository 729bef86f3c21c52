package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"engagehub/internal/hub"
	"engagehub/internal/middleware"
	"engagehub/internal/models"
	"engagehub/internal/validation"
)

// FeedHandler serves the link feed and support actions via JSON API.
type FeedHandler struct {
	hub   *hub.Hub
	txURL models.TxURLFunc
}

// NewFeedHandler creates a new API feed handler. txURL may be nil when no
// explorer is configured.
func NewFeedHandler(h *hub.Hub, txURL models.TxURLFunc) *FeedHandler {
	return &FeedHandler{hub: h, txURL: txURL}
}

// Feed returns the device's view of the feed.
func (h *FeedHandler) Feed(c fiber.Ctx) error {
	return h.respondFeed(c)
}

// Refresh reloads the recent shares from the chain. On failure the previous
// feed stays in place and the caller gets a 502.
func (h *FeedHandler) Refresh(c fiber.Ctx) error {
	if err := h.hub.Refresh(c.Context()); err != nil {
		slog.Warn("feed refresh failed", "error", err)
		return jsonError(c, fiber.StatusBadGateway, "failed to load links from chain")
	}
	return h.respondFeed(c)
}

// MarkSeen clears the unseen counter and highlights.
func (h *FeedHandler) MarkSeen(c fiber.Ctx) error {
	h.hub.MarkSeen()
	return h.respondFeed(c)
}

// Support records one support for the link in the key path parameter.
func (h *FeedHandler) Support(c fiber.Ctx) error {
	key := c.Params("key")
	if !validation.ValidateLinkKey(key) {
		return jsonError(c, fiber.StatusBadRequest, "invalid link key")
	}

	result, err := h.hub.RecordSupport(c.Context(), middleware.DeviceID(c), key)
	if err != nil {
		if hub.IsUnknown(err) {
			return jsonError(c, fiber.StatusNotFound, "link not found")
		}
		slog.Error("failed to record support", "key", key, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to record support")
	}

	return jsonSuccess(c, models.NewSupportResponse(result))
}

// Completed returns the device's completed history, newest first.
func (h *FeedHandler) Completed(c fiber.Ctx) error {
	history, err := h.hub.Completed(c.Context(), middleware.DeviceID(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load completed links")
	}

	cards := make([]models.CompletedCard, 0, len(history))
	for _, entry := range history {
		cards = append(cards, models.NewCompletedCard(entry, h.txURL))
	}
	return jsonSuccess(c, cards)
}

// ResetSupports clears the device's support counts and completed history.
func (h *FeedHandler) ResetSupports(c fiber.Ctx) error {
	if err := h.hub.ResetSupports(c.Context(), middleware.DeviceID(c)); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to reset supports")
	}
	return h.respondFeed(c)
}

func (h *FeedHandler) respondFeed(c fiber.Ctx) error {
	view, err := h.hub.Snapshot(c.Context(), middleware.DeviceID(c))
	if err != nil {
		slog.Error("failed to load feed", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to load feed")
	}
	return jsonSuccess(c, models.NewFeedResponse(view, h.txURL))
}
