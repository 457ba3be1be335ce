package handler

import (
	"go-pos-backend/pkg/calc"

	"github.com/gofiber/fiber/v2"
)

type CalcHandler struct{}

func NewCalcHandler() *CalcHandler {
	return &CalcHandler{}
}

// Evaluate computes an arithmetic expression for the register UI
// GET /api/v1/calc?expr=(2%2B3)*4
func (h *CalcHandler) Evaluate(c *fiber.Ctx) error {
	expr := c.Query("expr")
	if expr == "" {
		return c.Status(400).JSON(fiber.Map{"error": "expr query parameter is required"})
	}

	result, err := calc.Eval(expr)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"expression": expr,
		"result":     result,
	})
}
