package service

import (
	"context"
	"fmt"
	"testing"

	"photoshare/internal/models"
	"photoshare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePosts(n int, likers ...string) []*models.Post {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, &models.Post{
			ID:    fmt.Sprintf("p%d", i),
			Likes: append([]string{}, likers...),
		})
	}
	return posts
}

func TestFeedService_ListFeed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("third page of 25", func(t *testing.T) {
		t.Parallel()
		var got repository.PostFilter
		repo := noopPostRepo()
		repo.listFn = func(_ context.Context, f repository.PostFilter) ([]*models.Post, int64, error) {
			got = f
			return makePosts(5), 25, nil
		}
		svc := NewFeedService(repo, noopUserRepo())

		page, err := svc.ListFeed(ctx, ListFeedInput{Page: 3, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, page.Posts, 5)
		assert.Equal(t, 20, got.Offset)
		assert.Equal(t, 10, got.Limit)
		assert.Equal(t, models.Pagination{
			CurrentPage: 3, TotalPages: 3, TotalPosts: 25, HasNext: false, HasPrev: true,
		}, page.Pagination)
	})

	t.Run("store errors name the post resource", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.listFn = func(context.Context, repository.PostFilter) ([]*models.Post, int64, error) {
			return nil, 0, fmt.Errorf("list: %w", models.ErrNotFound)
		}
		svc := NewFeedService(repo, noopUserRepo())

		_, err := svc.ListFeed(ctx, ListFeedInput{Page: 1, Limit: 10})
		assertAppError(t, err, models.CodeNotFound, "Post not found")
	})

	t.Run("search is trimmed and limit clamped", func(t *testing.T) {
		t.Parallel()
		var got repository.PostFilter
		repo := noopPostRepo()
		repo.listFn = func(_ context.Context, f repository.PostFilter) ([]*models.Post, int64, error) {
			got = f
			return nil, 0, nil
		}
		svc := NewFeedService(repo, noopUserRepo())

		page, err := svc.ListFeed(ctx, ListFeedInput{Page: 0, Limit: 500, Search: "  beach "})
		require.NoError(t, err)
		assert.Equal(t, "beach", got.Search)
		assert.Equal(t, models.MaxPageSize, got.Limit)
		assert.Equal(t, 0, got.Offset)
		assert.NotNil(t, page.Posts)
		assert.Empty(t, page.Posts)
		assert.Equal(t, 1, page.Pagination.CurrentPage)
	})

	t.Run("anonymous viewer gets counts only", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.listFn = func(context.Context, repository.PostFilter) ([]*models.Post, int64, error) {
			return makePosts(2, "u1", "u2"), 2, nil
		}
		svc := NewFeedService(repo, noopUserRepo())

		page, err := svc.ListFeed(ctx, ListFeedInput{})
		require.NoError(t, err)
		for _, p := range page.Posts {
			assert.Equal(t, 2, p.LikeCount)
			assert.Equal(t, 0, p.CommentCount)
			assert.Nil(t, p.IsLiked)
		}
	})

	t.Run("identified viewer gets isLiked", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.listFn = func(context.Context, repository.PostFilter) ([]*models.Post, int64, error) {
			posts := makePosts(2)
			posts[0].Likes = []string{"viewer"}
			return posts, 2, nil
		}
		svc := NewFeedService(repo, noopUserRepo())

		page, err := svc.ListFeed(ctx, ListFeedInput{Viewer: Viewer{ID: "viewer"}})
		require.NoError(t, err)
		require.NotNil(t, page.Posts[0].IsLiked)
		require.NotNil(t, page.Posts[1].IsLiked)
		assert.True(t, *page.Posts[0].IsLiked)
		assert.False(t, *page.Posts[1].IsLiked)
	})

	t.Run("store failure is internal", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.listFn = func(context.Context, repository.PostFilter) ([]*models.Post, int64, error) {
			return nil, 0, fmt.Errorf("connection refused")
		}
		svc := NewFeedService(repo, noopUserRepo())

		_, err := svc.ListFeed(ctx, ListFeedInput{})
		assertAppError(t, err, models.CodeInternal, "")
	})
}

func TestFeedService_ListUserFeed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByIDFn = func(context.Context, string) (*models.User, error) {
			return nil, fmt.Errorf("user: %w", models.ErrNotFound)
		}
		svc := NewFeedService(noopPostRepo(), users)

		_, err := svc.ListUserFeed(ctx, ListUserFeedInput{UserID: "ghost"})
		assertAppError(t, err, models.CodeNotFound, "User not found")
	})

	t.Run("scoped to author", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByIDFn = func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Username: "ann", Bio: "hi", Password: "hash"}, nil
		}
		var got repository.PostFilter
		repo := noopPostRepo()
		repo.listFn = func(_ context.Context, f repository.PostFilter) ([]*models.Post, int64, error) {
			got = f
			return makePosts(1), 1, nil
		}
		svc := NewFeedService(repo, users)

		page, err := svc.ListUserFeed(ctx, ListUserFeedInput{UserID: "u9", Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, "u9", got.AuthorID)
		assert.Equal(t, &models.Profile{ID: "u9", Username: "ann", Bio: "hi"}, page.User)
		assert.Len(t, page.Posts, 1)
		assert.False(t, page.Pagination.HasNext)
	})
}
