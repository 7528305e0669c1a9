// Package service implements the feed, post, engagement and user use cases on
// top of the repositories, cache and image store.
package service

import (
	"context"
	"errors"
	"strings"

	"photoshare/internal/cache"
	"photoshare/internal/models"
	"photoshare/internal/repository"
)

// Viewer is the optionally authenticated caller of a read. The zero value is
// an anonymous viewer.
type Viewer struct {
	ID string
}

func (v Viewer) Identified() bool { return v.ID != "" }

// storeError converts repository errors into application errors for the
// named resource. Application errors pass through untouched.
func storeError(err error, resource string) error {
	var appErr *models.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, models.ErrNotFound):
		return models.NewNotFoundError(resource)
	case errors.Is(err, models.ErrInvalidID):
		return models.NewValidationError("Invalid " + strings.ToLower(resource) + " ID")
	default:
		return models.NewInternalError(err)
	}
}

// cachedPost keeps the liker set, which the public JSON of a post omits.
type cachedPost struct {
	Post   *models.Post `json:"post"`
	Likers []string     `json:"likers"`
}

// loadPost returns the viewer-independent post, through the cache. Display
// summaries in a cached entry are re-resolved through loadUser, whose entries
// a profile update invalidates.
func loadPost(ctx context.Context, posts repository.PostRepository, users repository.UserRepository, id string) (*models.Post, error) {
	var entry cachedPost
	fetched := false
	err := cache.Aside(ctx, cache.PostKey(id), &entry, cache.PostTTL, func() error {
		post, err := posts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		entry = cachedPost{Post: post, Likers: post.Likes}
		fetched = true
		return nil
	})
	if err != nil {
		return nil, storeError(err, "Post")
	}
	if entry.Post == nil {
		return nil, models.NewNotFoundError("Post")
	}
	entry.Post.Likes = entry.Likers
	if !fetched {
		if err := refreshSummaries(ctx, users, entry.Post); err != nil {
			return nil, err
		}
	}
	return entry.Post, nil
}

// refreshSummaries replaces the author and commenter summaries of post with
// current ones. A user that no longer resolves keeps the stored summary.
func refreshSummaries(ctx context.Context, users repository.UserRepository, post *models.Post) error {
	resolved := map[string]*models.UserSummary{}
	resolve := func(stored *models.UserSummary) (*models.UserSummary, error) {
		if stored == nil || stored.ID == "" {
			return stored, nil
		}
		if summary, ok := resolved[stored.ID]; ok {
			return summary, nil
		}
		user, err := loadUser(ctx, users, stored.ID)
		if err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
				resolved[stored.ID] = stored
				return stored, nil
			}
			return nil, err
		}
		resolved[stored.ID] = user.Summary()
		return resolved[stored.ID], nil
	}

	var err error
	if post.Author, err = resolve(post.Author); err != nil {
		return err
	}
	for _, c := range post.Comments {
		if c.User, err = resolve(c.User); err != nil {
			return err
		}
	}
	return nil
}

// loadUser returns a user with public fields only, through the cache.
func loadUser(ctx context.Context, users repository.UserRepository, id string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		u, err := users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		user = *u
		user.Password = ""
		return nil
	})
	if err != nil {
		return nil, storeError(err, "User")
	}
	return &user, nil
}
