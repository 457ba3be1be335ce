package handler

import (
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"hash/fnv"

	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

//go:embed assets/default_*.svg
var defaultImages embed.FS

const defaultImageCount = 4

type ImageHandler struct {
	service service.ProductService
}

func NewImageHandler(s service.ProductService) *ImageHandler {
	return &ImageHandler{service: s}
}

// defaultImageFor picks a stock placeholder deterministically from the
// product id, so a product without an image always shows the same one.
func defaultImageFor(id int64) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d", id)
	return fmt.Sprintf("assets/default_%d.svg", h.Sum32()%defaultImageCount)
}

// GetProductImage serves the stored image, or a placeholder when none exists
// GET /images/products/:id
func (h *ImageHandler) GetProductImage(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	image, err := h.service.GetProductImage(id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(500).JSON(fiber.Map{"error": service.GenericErrorMessage})
		}
		data, err := defaultImages.ReadFile(defaultImageFor(id))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": service.GenericErrorMessage})
		}
		c.Set(fiber.HeaderContentType, "image/svg+xml")
		return c.Send(data)
	}

	raw, err := base64.StdEncoding.DecodeString(image.Data)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": service.GenericErrorMessage})
	}

	c.Set(fiber.HeaderContentType, image.MimeType)
	return c.Send(raw)
}
