package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"photo-archive/internal/services"
	"photo-archive/internal/store"
)

var errInvalidBounds = errors.New("Invalid bounds format. Use: north,south,east,west")

// respondError translates service and store errors into API responses.
// Validation problems and duplicates are the client's fault; unknown IDs
// are 404; anything else is logged and hidden behind the fallback message.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": ve.Error()})
	case errors.Is(err, store.ErrUserNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "User not found: " + userParam(c)})
	case errors.Is(err, store.ErrPhotoNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Photo not found"})
	case errors.Is(err, store.ErrDuplicateUsername), errors.Is(err, store.ErrDuplicateEmail):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		slog.Error(fallback, "path", c.Path(), "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
	}
}

// userParam is the user id of the current request. Routes that can fail
// with an unknown user carry it either as the :id parameter or the
// user_id form field.
func userParam(c *fiber.Ctx) string {
	if id := c.Params("id"); id != "" {
		return id
	}
	return c.FormValue("user_id")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
