package handler

import (
	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	service service.ExportService
}

func NewAnalyticsHandler(s service.ExportService) *AnalyticsHandler {
	return &AnalyticsHandler{service: s}
}

// ExportOrdersCSV streams the orders export
// GET /staff/analytics/orders/csv
func (h *AnalyticsHandler) ExportOrdersCSV(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="orders.csv"`)

	if err := h.service.WriteOrdersCSV(c.Response().BodyWriter()); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": service.GenericErrorMessage})
	}
	return nil
}

// ExportProductsCSV streams the catalog export
// GET /staff/analytics/products/csv
func (h *AnalyticsHandler) ExportProductsCSV(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="products.csv"`)

	if err := h.service.WriteProductsCSV(c.Response().BodyWriter()); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": service.GenericErrorMessage})
	}
	return nil
}
