package handler

import (
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

// RegisterOrder places a new order
// POST /api/v1/orders
func (h *OrderHandler) RegisterOrder(c *fiber.Ctx) error {
	var input service.RegisterOrderInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.RegisterOrder(&input, getUserID(c), getUserName(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Order placed", "data": order})
}

// UpdateOrder edits status and details
// PUT /api/v1/orders/:id
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var input service.UpdateOrderInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.UpdateOrder(id, &input, getUserID(c), getUserName(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Order updated", "data": order})
}

// DeleteOrder removes an order explicitly (admin action)
// DELETE /api/v1/orders/:id
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteOrder(id, getUserID(c), getUserName(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Order deleted"})
}

// GetOrders lists orders, optionally filtered by status
// GET /api/v1/orders?status=pending
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	status := model.OrderStatus(c.Query("status"))

	orders, err := h.service.GetAllOrders(status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// GetOrder returns one order with its items
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	order, err := h.service.GetOrderByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}
