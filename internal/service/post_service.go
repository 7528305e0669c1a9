package service

import (
	"context"
	"log/slog"

	"photoshare/internal/cache"
	"photoshare/internal/middleware"
	"photoshare/internal/models"
	"photoshare/internal/observability"
	"photoshare/internal/repository"
	"photoshare/internal/storage"
	"photoshare/internal/validation"
)

type PostService struct {
	postRepo       repository.PostRepository
	userRepo       repository.UserRepository
	images         storage.ImageStore
	maxUploadBytes int64
}

type CreatePostInput struct {
	UserID  string
	Caption string
	Image   *ImageUpload
}

type UpdatePostInput struct {
	UserID  string
	PostID  string
	Caption string
}

type DeletePostInput struct {
	UserID string
	PostID string
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, images storage.ImageStore, maxUploadMB int) *PostService {
	if maxUploadMB <= 0 {
		maxUploadMB = DefaultMaxUploadMB
	}
	return &PostService{
		postRepo:       postRepo,
		userRepo:       userRepo,
		images:         images,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
	}
}

// CreatePost validates the upload and caption, stores the image and records
// the post. The stored image is released again if the post cannot be saved.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Image == nil || len(in.Image.Data) == 0 {
		return nil, models.NewValidationError("Image is required")
	}
	caption, err := validation.TrimmedText("caption", "Caption", in.Caption, models.MaxCaptionLength)
	if err != nil {
		return nil, err
	}
	obj, err := prepareImage(in.Image, s.maxUploadBytes)
	if err != nil {
		return nil, err
	}

	ref, err := s.images.Save(ctx, obj)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	post := &models.Post{AuthorID: in.UserID, Image: ref, Caption: caption}
	if err := s.postRepo.Create(ctx, post); err != nil {
		s.releaseImage(ctx, ref)
		return nil, storeError(err, "Post")
	}
	observability.PostEvents.WithLabelValues("created").Inc()

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, storeError(err, "Post")
	}
	created.ApplyEngagement(in.UserID, true)
	return created, nil
}

// GetPost returns a single post with comments, enriched for the viewer.
func (s *PostService) GetPost(ctx context.Context, postID string, viewer Viewer) (*models.Post, error) {
	post, err := loadPost(ctx, s.postRepo, s.userRepo, postID)
	if err != nil {
		return nil, err
	}
	post.ApplyEngagement(viewer.ID, viewer.Identified())
	return post, nil
}

// UpdatePost changes the caption. Only the author may do so.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	caption, err := validation.TrimmedText("caption", "Caption", in.Caption, models.MaxCaptionLength)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, storeError(err, "Post")
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("Access denied. You can only edit your own posts.")
	}

	if err := s.postRepo.UpdateCaption(ctx, post.ID, caption); err != nil {
		return nil, storeError(err, "Post")
	}
	cache.InvalidatePost(ctx, post.ID)
	observability.PostEvents.WithLabelValues("updated").Inc()

	updated, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, storeError(err, "Post")
	}
	updated.ApplyEngagement(in.UserID, true)
	return updated, nil
}

// DeletePost removes the post and releases its image. A failed release is
// logged and does not stop the delete.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return storeError(err, "Post")
	}
	if post.AuthorID != in.UserID {
		return models.NewForbiddenError("Access denied. You can only delete your own posts.")
	}

	s.releaseImage(ctx, post.Image)

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return storeError(err, "Post")
	}
	cache.InvalidatePost(ctx, post.ID)
	observability.PostEvents.WithLabelValues("deleted").Inc()
	return nil
}

func (s *PostService) releaseImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		observability.ImageReleaseFailures.Inc()
		middleware.Logger.WarnContext(ctx, "failed to release image",
			slog.String("image", ref),
			slog.String("error", err.Error()),
		)
	}
}
