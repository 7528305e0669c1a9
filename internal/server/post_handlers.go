package server

import (
	"io"

	"photoshare/internal/models"
	"photoshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// @Summary List the feed
// @Description Newest-first page of posts, optionally filtered by caption or author username
// @Tags posts
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size (max 50)"
// @Param search query string false "Caption or username substring"
// @Success 200 {object} service.FeedPage
// @Failure 500 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePage(c)

	feed, err := s.feedService.ListFeed(c.UserContext(), service.ListFeedInput{
		Page:   page.Page,
		Limit:  page.Limit,
		Search: c.Query("search"),
		Viewer: viewer(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(feed)
}

// GetUserPosts handles GET /api/posts/user/:userId
// @Summary List one author's posts
// @Tags posts
// @Produce json
// @Param userId path string true "Author ID"
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size (max 50)"
// @Success 200 {object} service.UserFeedPage
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/user/{userId} [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	page := parsePage(c)

	feed, err := s.feedService.ListUserFeed(c.UserContext(), service.ListUserFeedInput{
		UserID: param(c, "userId"),
		Page:   page.Page,
		Limit:  page.Limit,
		Viewer: viewer(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(feed)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post with its comments
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} object{post=models.Post}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.UserContext(), param(c, "id"), viewer(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"post": post})
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description Multipart upload of an image with a caption
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file"
// @Param caption formData string true "Caption (1-1000 characters)"
// @Success 201 {object} object{message=string,post=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	upload, err := readImage(c, "image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:  currentUserID(c),
		Caption: c.FormValue("caption"),
		Image:   upload,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created successfully",
		"post":    post,
	})
}

// readImage loads the multipart file under field. A missing file is not an
// error; the service reports it as a validation failure.
func readImage(c *fiber.Ctx, field string) (*service.ImageUpload, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	return &service.ImageUpload{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update a post's caption
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body object{caption=string} true "New caption"
// @Success 200 {object} object{message=string,post=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req struct {
		Caption string `json:"caption" form:"caption"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:  currentUserID(c),
		PostID:  param(c, "id"),
		Caption: req.Caption,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post updated successfully",
		"post":    post,
	})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post and release its image
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: currentUserID(c),
		PostID: param(c, "id"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
