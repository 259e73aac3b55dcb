package server

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"texture-manager/core/logger"
	"texture-manager/core/middleware/auth"
	"texture-manager/core/middleware/requestid"
	"texture-manager/core/texture"
)

// New assembles the Fiber app serving the status API: request IDs first so
// everything is traceable, request logging, then API key auth in front of
// the handlers.
func New(cfg Config, mgr *texture.Manager, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRequestID(log, c)
		l.Info("request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("request error", zap.Error(err))
		}
		return err
	})

	app.Use(auth.New(auth.Config{ApiKey: cfg.ApiKey}))

	NewHandler(mgr, log).RegisterRoutes(app)
	return app
}
