package handlers

import (
	"errors"
	"strconv"

	"pastehub/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	analytics services.AnalyticsService
}

func NewAnalytics(analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GET /api/analytics/text/:id (auth required, owner only)
func (h *AnalyticsHandler) TextStats(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	authorID, _ := c.Locals("user_id").(int)
	stats, err := h.analytics.TextStats(id, authorID)
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrForbidden):
		return c.Status(403).JSON(fiber.Map{"error": "Forbidden"})
	case err != nil:
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(stats)
}
