// Package auth guards the API behind a shared key.
package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// Header carries the API key on incoming requests.
const Header = "X-Api-Key"

// Config holds configuration for the auth middleware.
type Config struct {
	// ApiKey is the secret key required to access the API. Empty disables
	// the check entirely.
	ApiKey string
}

// New returns a middleware that rejects requests lacking the configured key.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}
		given := c.Get(Header)
		if subtle.ConstantTimeCompare([]byte(given), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid api key"})
		}
		return c.Next()
	}
}
