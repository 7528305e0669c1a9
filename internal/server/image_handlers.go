package server

import (
	"errors"
	"io"

	"photoshare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetImage handles GET /api/images/:id
// @Summary Fetch a stored image
// @Tags images
// @Produce octet-stream
// @Param id path string true "Image ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Router /images/{id} [get]
func (s *Server) GetImage(c *fiber.Ctx) error {
	src, contentType, err := s.images.Open(c.UserContext(), param(c, "id"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrInvalidID):
			return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Image"))
		default:
			return respondServiceError(c, err)
		}
	}
	defer func() { _ = src.Close() }()

	data, err := io.ReadAll(src)
	if err != nil {
		return respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(data)
}
