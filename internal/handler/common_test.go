package handler

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	app := fiber.New()
	var gotID int64
	var gotErr error
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		gotID, gotErr = parseID(c)
		return c.SendStatus(200)
	})

	do := func(path string) {
		t.Helper()
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	do("/things/42")
	assert.NoError(t, gotErr)
	assert.Equal(t, int64(42), gotID)

	// Non-numeric and non-positive ids name resources that cannot exist.
	for _, path := range []string{"/things/abc", "/things/0", "/things/-5", "/things/1.5"} {
		do(path)
		assert.ErrorIs(t, gotErr, fiber.ErrNotFound, path)
	}
}

func TestDefaultImageForIsStable(t *testing.T) {
	for _, id := range []int64{1, 2, 42, 999} {
		first := defaultImageFor(id)
		assert.Equal(t, first, defaultImageFor(id))
		assert.Contains(t, first, "assets/default_")
	}
	// All four placeholders must actually be embedded.
	for i := 0; i < defaultImageCount; i++ {
		_, err := defaultImages.ReadFile(fmt.Sprintf("assets/default_%d.svg", i))
		assert.NoError(t, err)
	}
}
