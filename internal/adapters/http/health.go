package http

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

// Version is reported by the health endpoint; set at build time.
var Version = "dev"

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": Version,
		})
	}
}

// ReadyHandler checks DB, NATS, and cache connectivity. The database is required;
// NATS and the cache are optional. Checks run concurrently.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		var mu sync.Mutex
		checks := make(map[string]string)
		allOK := true
		record := func(name, result string, ok bool) {
			mu.Lock()
			defer mu.Unlock()
			checks[name] = result
			allOK = allOK && ok
		}

		var g errgroup.Group

		// Database
		if deps.DB != nil {
			g.Go(func() error {
				if err := deps.DB.Ping(ctx); err != nil {
					record("database", "error: "+err.Error(), false)
				} else {
					record("database", "ok", true)
				}
				return nil
			})
		} else {
			record("database", "not configured", false)
		}

		// NATS
		if deps.NATS != nil {
			if deps.NATS.IsConnected() {
				record("nats", "ok", true)
			} else {
				record("nats", "disconnected", false)
			}
		} else {
			record("nats", "not configured", true)
		}

		// Valkey cache
		if deps.Cache != nil {
			g.Go(func() error {
				if err := deps.Cache.Ping(ctx); err != nil {
					record("cache", "error: "+err.Error(), false)
				} else {
					record("cache", "ok", true)
				}
				return nil
			})
		} else {
			record("cache", "not configured", true)
		}

		_ = g.Wait()

		status := "ready"
		code := fiber.StatusOK
		if !allOK {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
