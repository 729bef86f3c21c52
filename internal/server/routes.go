package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"engagehub/internal/handlers/api"
	"engagehub/internal/hub"
	"engagehub/internal/middleware"
	"engagehub/internal/models"
	"engagehub/internal/storage"
)

// Deps are the services the routes are served from.
type Deps struct {
	Hub     *hub.Hub
	Storage storage.KV
	TxURL   models.TxURLFunc
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Deps) {
	device := middleware.NewDeviceMiddleware(s.Cfg.TLSEnabled || !s.Cfg.IsDev())

	feedHandler := api.NewFeedHandler(deps.Hub, deps.TxURL)
	healthHandler := api.NewHealthHandler(deps.Hub, deps.Storage)

	s.App.Get("/api/health", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v := s.App.Group("/api", device.Identify)
	v.Get("/feed", feedHandler.Feed)
	v.Post("/feed/refresh", feedHandler.Refresh)
	v.Post("/feed/seen", feedHandler.MarkSeen)
	v.Post("/links/:key/support", feedHandler.Support)
	v.Get("/links/completed", feedHandler.Completed)
	v.Delete("/supports", feedHandler.ResetSupports)
}
