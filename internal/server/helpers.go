package server

import (
	"errors"
	"log/slog"
	"strings"

	"photoshare/internal/middleware"
	"photoshare/internal/models"
	"photoshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Page holds parsed page/limit query parameters. Clamping happens in the
// service layer so every caller gets the same window rules.
type Page struct {
	Page  int
	Limit int
}

// parsePage reads ?page and ?limit; unparsable values fall back to zero and
// are clamped downstream.
func parsePage(c *fiber.Ctx) Page {
	return Page{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", models.DefaultPageSize),
	}
}

// respondServiceError writes err with the status its code maps to. Internal
// failures are logged here, once, and reported without detail.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))

		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

// currentUserID returns the id set by AuthRequired.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

// viewer returns the optional identity resolved by OptionalAuth.
func viewer(c *fiber.Ctx) service.Viewer {
	return service.Viewer{ID: currentUserID(c)}
}

// param returns a trimmed route parameter.
func param(c *fiber.Ctx, name string) string {
	return strings.TrimSpace(c.Params(name))
}
