package server

import (
	"photoshare/internal/models"
	"photoshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /api/posts/:id/like
// @Summary Toggle the caller's like on a post
// @Tags engagement
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} object{message=string,isLiked=bool,likeCount=int}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	result, err := s.engagementService.ToggleLike(c.UserContext(), param(c, "id"), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	message := "Post unliked"
	if result.Liked {
		message = "Post liked"
	}

	return c.JSON(fiber.Map{
		"message":   message,
		"isLiked":   result.Liked,
		"likeCount": result.LikeCount,
	})
}

// AddComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags engagement
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body object{content=string} true "Comment (1-500 characters)"
// @Success 201 {object} object{message=string,comment=models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/comments [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content" form:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.engagementService.AddComment(c.UserContext(), service.AddCommentInput{
		UserID:  currentUserID(c),
		PostID:  param(c, "id"),
		Content: req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
// @Summary Delete one of the caller's comments
// @Tags engagement
// @Produce json
// @Param id path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	err := s.engagementService.RemoveComment(c.UserContext(), service.RemoveCommentInput{
		UserID:    currentUserID(c),
		PostID:    param(c, "id"),
		CommentID: param(c, "commentId"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}
