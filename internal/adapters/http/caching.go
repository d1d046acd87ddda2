package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses that did not set it and
// answers conditional requests with 304 using a weak ETag of the body.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		if c.Method() != fiber.MethodGet {
			return nil
		}

		if c.GetRespHeader(fiber.HeaderCacheControl) == "" {
			if ttl := cachePolicy(c.Path()); ttl != "" {
				c.Set(fiber.HeaderCacheControl, ttl)
			}
		}

		if c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		h := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(h[:8]) + `"`
		c.Set(fiber.HeaderETag, etag)

		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}

func cachePolicy(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "no-cache"
	case path == "/metrics":
		return "no-store"
	case strings.HasSuffix(path, "/position"):
		// Positions change only when an import runs.
		return "public, max-age=60"
	case strings.HasSuffix(path, "/positions"):
		return "public, max-age=30"
	case path == "/docs" || strings.HasPrefix(path, "/docs/"):
		return "public, max-age=3600"
	default:
		return ""
	}
}
