package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"photoshare/internal/cache"
	"photoshare/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		in      CreatePostInput
		message string
	}{
		{
			name:    "missing image",
			in:      CreatePostInput{UserID: "u1", Caption: "hello"},
			message: "Image is required",
		},
		{
			name:    "empty image",
			in:      CreatePostInput{UserID: "u1", Caption: "hello", Image: &ImageUpload{Filename: "a.png"}},
			message: "Image is required",
		},
		{
			name:    "not an image",
			in:      CreatePostInput{UserID: "u1", Caption: "hello", Image: &ImageUpload{Filename: "a.png", Data: []byte("plain text, honest")}},
			message: "Only image files are allowed",
		},
		{
			name:    "blank caption",
			in:      CreatePostInput{UserID: "u1", Caption: "   ", Image: &ImageUpload{Data: []byte{0x89}}},
			message: "Validation failed",
		},
		{
			name:    "caption too long",
			in:      CreatePostInput{UserID: "u1", Caption: strings.Repeat("x", models.MaxCaptionLength+1), Image: &ImageUpload{Data: []byte{0x89}}},
			message: "Validation failed",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			images := &imageStoreStub{}
			svc := NewPostService(noopPostRepo(), noopUserRepo(), images, 5)

			_, err := svc.CreatePost(ctx, tt.in)
			assertAppError(t, err, models.CodeValidation, tt.message)
			assert.Empty(t, images.saved, "nothing may be stored when validation fails")
		})
	}
}

func TestPostService_CreatePost_TooLarge(t *testing.T) {
	t.Parallel()
	images := &imageStoreStub{}
	svc := NewPostService(noopPostRepo(), noopUserRepo(), images, 1)

	data := append(testPNG(t), make([]byte, 1024*1024)...)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID: "u1", Caption: "big", Image: &ImageUpload{Filename: "big.png", Data: data},
	})
	assertAppError(t, err, models.CodeValidation, "Image too large (max 1MB)")
	assert.Empty(t, images.saved)
}

func TestPostService_CreatePost_Success(t *testing.T) {
	t.Parallel()
	images := &imageStoreStub{}
	stored := map[string]*models.Post{}
	repo := noopPostRepo()
	repo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = "p1"
		stored[p.ID] = p
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id string) (*models.Post, error) {
		p := *stored[id]
		p.Author = &models.UserSummary{ID: p.AuthorID, Username: "ann"}
		return &p, nil
	}
	svc := NewPostService(repo, noopUserRepo(), images, 5)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:  "u1",
		Caption: "  golden hour  ",
		Image:   &ImageUpload{Filename: "photo.PNG", ContentType: "image/png", Data: testPNG(t)},
	})
	require.NoError(t, err)
	require.Len(t, images.saved, 1)
	saved := images.saved[0]
	assert.Equal(t, "image/png", saved.ContentType)
	assert.True(t, strings.HasPrefix(saved.Name, "image-"))
	assert.True(t, strings.HasSuffix(saved.Name, ".png"))

	assert.Equal(t, "golden hour", post.Caption)
	assert.Equal(t, "/uploads/"+saved.Name, post.Image)
	assert.Equal(t, "ann", post.Author.Username)
	assert.Equal(t, 0, post.LikeCount)
	require.NotNil(t, post.IsLiked)
	assert.False(t, *post.IsLiked)
}

func TestPostService_CreatePost_ReleasesImageWhenStoreFails(t *testing.T) {
	t.Parallel()
	images := &imageStoreStub{}
	repo := noopPostRepo()
	repo.createFn = func(context.Context, *models.Post) error { return errors.New("disk full") }
	svc := NewPostService(repo, noopUserRepo(), images, 5)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID: "u1", Caption: "x", Image: &ImageUpload{Data: testPNG(t)},
	})
	assertAppError(t, err, models.CodeInternal, "")
	require.Len(t, images.saved, 1)
	assert.Equal(t, []string{"/uploads/" + images.saved[0].Name}, images.deleted)
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("validation precedes lookup", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(noopPostRepo(), noopUserRepo(), &imageStoreStub{}, 5)
		_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: "u1", PostID: "p1", Caption: ""})
		assertValidationError(t, err)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(context.Context, string) (*models.Post, error) {
			return nil, models.ErrNotFound
		}
		svc := NewPostService(repo, noopUserRepo(), &imageStoreStub{}, 5)
		_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: "u1", PostID: "p1", Caption: "new"})
		assertAppError(t, err, models.CodeNotFound, "Post not found")
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(context.Context, string) (*models.Post, error) {
			return nil, models.ErrInvalidID
		}
		svc := NewPostService(repo, noopUserRepo(), &imageStoreStub{}, 5)
		_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: "u1", PostID: "!!", Caption: "new"})
		assertAppError(t, err, models.CodeValidation, "Invalid post ID")
	})

	t.Run("not the author", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(context.Context, string) (*models.Post, error) {
			return &models.Post{ID: "p1", AuthorID: "owner"}, nil
		}
		svc := NewPostService(repo, noopUserRepo(), &imageStoreStub{}, 5)
		_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: "intruder", PostID: "p1", Caption: "new"})
		assertAppError(t, err, models.CodeForbidden, "Access denied. You can only edit your own posts.")
	})

	t.Run("author updates caption", func(t *testing.T) {
		t.Parallel()
		caption := "old"
		repo := noopPostRepo()
		repo.getByIDFn = func(context.Context, string) (*models.Post, error) {
			return &models.Post{ID: "p1", AuthorID: "owner", Caption: caption}, nil
		}
		repo.updateCaptionFn = func(_ context.Context, _, c string) error {
			caption = c
			return nil
		}
		svc := NewPostService(repo, noopUserRepo(), &imageStoreStub{}, 5)
		post, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: "owner", PostID: "p1", Caption: " new "})
		require.NoError(t, err)
		assert.Equal(t, "new", post.Caption)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	owned := func() *postRepoStub {
		repo := noopPostRepo()
		repo.getByIDFn = func(context.Context, string) (*models.Post, error) {
			return &models.Post{ID: "p1", AuthorID: "owner", Image: "/uploads/a.png"}, nil
		}
		return repo
	}

	t.Run("not the author", func(t *testing.T) {
		t.Parallel()
		images := &imageStoreStub{}
		svc := NewPostService(owned(), noopUserRepo(), images, 5)
		err := svc.DeletePost(ctx, DeletePostInput{UserID: "intruder", PostID: "p1"})
		assertAppError(t, err, models.CodeForbidden, "Access denied. You can only delete your own posts.")
		assert.Empty(t, images.deleted)
	})

	t.Run("releases image and deletes", func(t *testing.T) {
		t.Parallel()
		images := &imageStoreStub{}
		repo := owned()
		deleted := false
		repo.deleteFn = func(context.Context, string) error {
			deleted = true
			return nil
		}
		svc := NewPostService(repo, noopUserRepo(), images, 5)
		require.NoError(t, svc.DeletePost(ctx, DeletePostInput{UserID: "owner", PostID: "p1"}))
		assert.Equal(t, []string{"/uploads/a.png"}, images.deleted)
		assert.True(t, deleted)
	})

	t.Run("image release failure still deletes", func(t *testing.T) {
		t.Parallel()
		images := &imageStoreStub{deleteErr: errors.New("permission denied")}
		repo := owned()
		deleted := false
		repo.deleteFn = func(context.Context, string) error {
			deleted = true
			return nil
		}
		svc := NewPostService(repo, noopUserRepo(), images, 5)
		require.NoError(t, svc.DeletePost(ctx, DeletePostInput{UserID: "owner", PostID: "p1"}))
		assert.True(t, deleted)
	})
}

func TestPostService_GetPost(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(context.Context, string) (*models.Post, error) {
		return &models.Post{
			ID:       "p1",
			Likes:    []string{"a", "b"},
			Comments: []*models.Comment{{ID: "c1"}},
		}, nil
	}
	svc := NewPostService(repo, noopUserRepo(), &imageStoreStub{}, 5)

	post, err := svc.GetPost(context.Background(), "p1", Viewer{ID: "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, post.LikeCount)
	assert.Equal(t, 1, post.CommentCount)
	require.NotNil(t, post.IsLiked)
	assert.True(t, *post.IsLiked)

	anon, err := svc.GetPost(context.Background(), "p1", Viewer{})
	require.NoError(t, err)
	assert.Nil(t, anon.IsLiked)
}

func TestPostService_CreatePost_StoreErrorsNamePost(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.createFn = func(context.Context, *models.Post) error {
		return fmt.Errorf("author ref: %w", models.ErrInvalidID)
	}
	svc := NewPostService(repo, noopUserRepo(), &imageStoreStub{}, 5)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID: "u1", Caption: "x", Image: &ImageUpload{Data: testPNG(t)},
	})
	assertAppError(t, err, models.CodeValidation, "Invalid post ID")
}

func setupCache(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	require.NotNil(t, cache.InitRedis("redis://"+mr.Addr()+"/0"))
	t.Cleanup(func() {
		if c := cache.GetClient(); c != nil {
			_ = c.Close()
		}
		cache.SetClient(nil)
	})
}

func TestPostService_GetPost_CachedPostFollowsProfileUpdate(t *testing.T) {
	setupCache(t)
	ctx := context.Background()

	accounts := map[string]*models.User{
		"u1": {ID: "u1", Username: "alice"},
		"u2": {ID: "u2", Username: "bob"},
	}
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id string) (*models.User, error) {
		u, ok := accounts[id]
		if !ok {
			return nil, models.ErrNotFound
		}
		cp := *u
		return &cp, nil
	}
	users.updateFn = func(_ context.Context, u *models.User) error {
		cp := *u
		accounts[u.ID] = &cp
		return nil
	}

	fetches := 0
	repo := noopPostRepo()
	repo.getByIDFn = func(context.Context, string) (*models.Post, error) {
		fetches++
		return &models.Post{
			ID:       "p1",
			AuthorID: "u1",
			Author:   accounts["u1"].Summary(),
			Comments: []*models.Comment{
				{ID: "c1", AuthorID: "u2", User: accounts["u2"].Summary(), Content: "nice"},
				{ID: "c2", AuthorID: "u1", User: accounts["u1"].Summary(), Content: "thanks"},
			},
		}, nil
	}
	posts := NewPostService(repo, users, &imageStoreStub{}, 5)

	first, err := posts.GetPost(ctx, "p1", Viewer{})
	require.NoError(t, err)
	assert.Equal(t, "alice", first.Author.Username)

	renamed := "alice_renamed"
	_, err = NewUserService(users).UpdateProfile(ctx, UpdateProfileInput{UserID: "u1", Username: &renamed})
	require.NoError(t, err)

	second, err := posts.GetPost(ctx, "p1", Viewer{})
	require.NoError(t, err)
	assert.Equal(t, 1, fetches, "second read should come from the cache")
	assert.Equal(t, "alice_renamed", second.Author.Username)
	assert.Equal(t, "bob", second.Comments[0].User.Username)
	assert.Equal(t, "alice_renamed", second.Comments[1].User.Username)
	assert.Equal(t, 2, second.CommentCount)
}
