package server

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"texture-manager/core/logger"
	"texture-manager/core/texture"
)

// Handler handles HTTP requests for the status API.
type Handler struct {
	mgr *texture.Manager
	log *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(mgr *texture.Manager, log *zap.Logger) *Handler {
	return &Handler{mgr: mgr, log: log}
}

// RegisterRoutes registers the status routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/healthz", h.HandleHealth)

	v1 := app.Group("/v1")
	v1.Get("/stats", h.HandleStats)
	v1.Get("/textures", h.HandleTextures)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleStats returns the manager counters.
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	logger.WithRequestID(h.log, c).Debug("stats requested")
	return c.JSON(h.mgr.Stats())
}

type textureEntry struct {
	Path   string `json:"path"`
	Filter string `json:"filter"`
	Wrap   string `json:"wrap"`
	State  string `json:"state"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// HandleTextures lists every registered texture and its pipeline state.
func (h *Handler) HandleTextures(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.log, c)

	entries := make([]textureEntry, 0)
	h.mgr.Range(func(t *texture.Texture) bool {
		props := t.Properties()
		entries = append(entries, textureEntry{
			Path:   props.Path,
			Filter: props.Sampler.Filter.String(),
			Wrap:   props.Sampler.Wrap.String(),
			State:  t.State().String(),
			Width:  t.Width(),
			Height: t.Height(),
		})
		return true
	})

	l.Debug("textures listed", zap.Int("count", len(entries)))
	return c.JSON(entries)
}
