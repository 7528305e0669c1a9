package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"photoshare/internal/models"
	"photoshare/internal/repository"
	"photoshare/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, string) (*models.Post, error)
	updateCaptionFn func(context.Context, string, string) error
	deleteFn        func(context.Context, string) error
	listFn          func(context.Context, repository.PostFilter) ([]*models.Post, int64, error)
	toggleLikeFn    func(context.Context, string, string) (bool, int, error)
	addCommentFn    func(context.Context, string, *models.Comment) error
	removeCommentFn func(context.Context, string, string) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) UpdateCaption(ctx context.Context, id, caption string) error {
	return s.updateCaptionFn(ctx, id, caption)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, f repository.PostFilter) ([]*models.Post, int64, error) {
	return s.listFn(ctx, f)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	return s.toggleLikeFn(ctx, postID, userID)
}
func (s *postRepoStub) AddComment(ctx context.Context, postID string, c *models.Comment) error {
	return s.addCommentFn(ctx, postID, c)
}
func (s *postRepoStub) RemoveComment(ctx context.Context, postID, commentID string) error {
	return s.removeCommentFn(ctx, postID, commentID)
}

var errUnexpectedCall = errors.New("unexpected call")

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(context.Context, *models.Post) error { return errUnexpectedCall },
		getByIDFn:       func(context.Context, string) (*models.Post, error) { return nil, errUnexpectedCall },
		updateCaptionFn: func(context.Context, string, string) error { return errUnexpectedCall },
		deleteFn:        func(context.Context, string) error { return errUnexpectedCall },
		listFn: func(context.Context, repository.PostFilter) ([]*models.Post, int64, error) {
			return nil, 0, errUnexpectedCall
		},
		toggleLikeFn:    func(context.Context, string, string) (bool, int, error) { return false, 0, errUnexpectedCall },
		addCommentFn:    func(context.Context, string, *models.Comment) error { return errUnexpectedCall },
		removeCommentFn: func(context.Context, string, string) error { return errUnexpectedCall },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn     func(context.Context, *models.User) error
	getByIDFn    func(context.Context, string) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	updateFn     func(context.Context, *models.User) error
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Update(ctx context.Context, u *models.User) error { return s.updateFn(ctx, u) }

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:     func(context.Context, *models.User) error { return errUnexpectedCall },
		getByIDFn:    func(context.Context, string) (*models.User, error) { return nil, errUnexpectedCall },
		getByEmailFn: func(context.Context, string) (*models.User, error) { return nil, errUnexpectedCall },
		updateFn:     func(context.Context, *models.User) error { return errUnexpectedCall },
	}
}

// imageStoreStub records saves and deletes in memory.
type imageStoreStub struct {
	saved     []storage.Object
	deleted   []string
	saveErr   error
	deleteErr error
}

func (s *imageStoreStub) Save(_ context.Context, obj storage.Object) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.saved = append(s.saved, obj)
	return storage.DiskPrefix + obj.Name, nil
}

func (s *imageStoreStub) Open(context.Context, string) (io.ReadCloser, string, error) {
	return nil, "", errUnexpectedCall
}

func (s *imageStoreStub) Delete(_ context.Context, ref string) error {
	s.deleted = append(s.deleted, ref)
	return s.deleteErr
}

func assertAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation, "")
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
