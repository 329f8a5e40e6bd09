package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	scheduler interface{ Running() bool }
}

func NewHealthHandler(scheduler interface{ Running() bool }) *HealthHandler {
	return &HealthHandler{scheduler: scheduler}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	running := h.scheduler != nil && h.scheduler.Running()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "ok",
		"scheduler": running,
		"time":      time.Now().UTC(),
	})
}
