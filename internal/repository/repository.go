// Package repository provides the entity store: users and posts with their
// embedded comments and liker sets, backed by MongoDB or a SQL database via gorm.
package repository

import (
	"context"
	"strings"

	"photoshare/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// PostFilter selects a window of the feed. Search matches the caption or the
// author's username, case-insensitively.
type PostFilter struct {
	Search   string
	AuthorID string
	Offset   int
	Limit    int
}

// PostRepository defines the interface for post data operations. Posts are
// returned with author, comments (oldest first, authors resolved) and the
// liker set loaded.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	UpdateCaption(ctx context.Context, id, caption string) error
	Delete(ctx context.Context, id string) error
	// List returns newest-first posts matching f and the total match count.
	List(ctx context.Context, f PostFilter) ([]*models.Post, int64, error)
	// ToggleLike flips userID's membership in the liker set in a single
	// store operation and returns the resulting state and like count.
	ToggleLike(ctx context.Context, postID, userID string) (liked bool, likeCount int, err error)
	AddComment(ctx context.Context, postID string, comment *models.Comment) error
	RemoveComment(ctx context.Context, postID, commentID string) error
}

// Store bundles the repositories of one driver together with its lifecycle hooks.
type Store struct {
	Driver string
	Users  UserRepository
	Posts  PostRepository
	Ping   func(ctx context.Context) error
	Close  func(ctx context.Context) error
}

// escapeLike escapes LIKE wildcards so search terms match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
