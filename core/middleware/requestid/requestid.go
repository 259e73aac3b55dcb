// Package requestid tags every request with a unique ID for log correlation.
package requestid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// LocalKey is the fiber.Ctx locals key the request ID is stored under.
	LocalKey = "request_id"
	// Header carries the request ID on requests and responses.
	Header = "X-Request-Id"
)

// New returns a middleware that assigns each request an ID. An inbound
// X-Request-Id header is kept so upstream proxies can thread their own.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalKey, id)
		c.Set(Header, id)
		return c.Next()
	}
}
