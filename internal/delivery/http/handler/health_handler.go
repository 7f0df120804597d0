package handler

import (
	"context"
	"time"

	"shiftmatch/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// CheckDatabase names the one dependency whose failure fails the check.
const CheckDatabase = "database"

// Pinger is a dependency the health check pings.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

// Health reports each dependency as "up" or "down". Only a down database
// fails the check; the cache and broker are optional.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	out := make(map[string]string, len(h.checks))
	status, msg := fiber.StatusOK, response.MessageOK
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			out[name] = "down"
			if name == CheckDatabase {
				status, msg = fiber.StatusServiceUnavailable, "database unavailable"
			}
			continue
		}
		out[name] = "up"
	}
	return response.Success(c, status, msg, out)
}
