package service

import (
	"context"
	"log/slog"

	"photoshare/internal/cache"
	"photoshare/internal/middleware"
	"photoshare/internal/models"
	"photoshare/internal/observability"
	"photoshare/internal/repository"
	"photoshare/internal/validation"
)

// EngagementService handles likes and comments on a single post.
type EngagementService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type AddCommentInput struct {
	UserID  string
	PostID  string
	Content string
}

type RemoveCommentInput struct {
	UserID    string
	PostID    string
	CommentID string
}

// LikeResult is the liker-set membership after a toggle.
type LikeResult struct {
	Liked     bool `json:"isLiked"`
	LikeCount int  `json:"likeCount"`
}

func NewEngagementService(postRepo repository.PostRepository, userRepo repository.UserRepository) *EngagementService {
	return &EngagementService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

// ToggleLike adds the user to the post's liker set, or removes them if
// already present. Any authenticated user may like any post.
func (s *EngagementService) ToggleLike(ctx context.Context, postID, userID string) (*LikeResult, error) {
	liked, count, err := s.postRepo.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, storeError(err, "Post")
	}
	cache.InvalidatePost(ctx, postID)

	state := "unliked"
	if liked {
		state = "liked"
	}
	observability.LikesToggled.WithLabelValues(state).Inc()

	return &LikeResult{Liked: liked, LikeCount: count}, nil
}

// AddComment appends a comment and returns it with the author resolved.
func (s *EngagementService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	content, err := validation.TrimmedText("content", "Comment", in.Content, models.MaxCommentLength)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{AuthorID: in.UserID, Content: content}
	if err := s.postRepo.AddComment(ctx, in.PostID, comment); err != nil {
		return nil, storeError(err, "Post")
	}
	cache.InvalidatePost(ctx, in.PostID)
	observability.CommentEvents.WithLabelValues("added").Inc()

	author, err := loadUser(ctx, s.userRepo, in.UserID)
	if err != nil {
		// The comment is stored; only its display attributes are missing.
		middleware.Logger.WarnContext(ctx, "failed to resolve comment author",
			slog.String("user_id", in.UserID),
			slog.String("error", err.Error()),
		)
		comment.User = &models.UserSummary{ID: in.UserID}
		return comment, nil
	}
	comment.User = author.Summary()
	return comment, nil
}

// RemoveComment deletes a comment. Only the comment's author may remove it;
// owning the post grants nothing.
func (s *EngagementService) RemoveComment(ctx context.Context, in RemoveCommentInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return storeError(err, "Post")
	}

	comment, ok := post.FindComment(in.CommentID)
	if !ok {
		return models.NewNotFoundError("Comment")
	}
	if comment.AuthorID != in.UserID {
		return models.NewForbiddenError("Access denied. You can only delete your own comments.")
	}

	if err := s.postRepo.RemoveComment(ctx, post.ID, comment.ID); err != nil {
		return storeError(err, "Comment")
	}
	cache.InvalidatePost(ctx, post.ID)
	observability.CommentEvents.WithLabelValues("removed").Inc()
	return nil
}
