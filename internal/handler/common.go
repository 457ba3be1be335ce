package handler

import (
	"strconv"

	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Helpers to pull staff identity from the JWT context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system" // Fallback (shouldn't happen in protected routes)
	}
	return userID.(string)
}

func getUserName(c *fiber.Ctx) string {
	userName := c.Locals("user_name")
	if userName == nil {
		return "Unknown"
	}
	return userName.(string)
}

// parseID parses an integer path parameter. Malformed ids are a 404, not a
// 400: the URL simply names a resource that cannot exist.
func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fiber.ErrNotFound
	}
	return id, nil
}

// respondError applies the two-tier error policy: whitelisted domain errors
// reach the client verbatim, everything else collapses to a generic message.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case service.IsNotFound(err):
		return c.Status(404).JSON(fiber.Map{"error": service.UserMessage(err)})
	case service.IsWhitelisted(err):
		return c.Status(400).JSON(fiber.Map{"error": service.UserMessage(err)})
	default:
		return c.Status(500).JSON(fiber.Map{"error": service.GenericErrorMessage})
	}
}
