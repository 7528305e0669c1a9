package service

import (
	"context"
	"testing"

	"photoshare/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryUsers is a map-backed UserRepository for service tests.
func memoryUsers() *userRepoStub {
	byEmail := map[string]*models.User{}
	byID := map[string]*models.User{}
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, u *models.User) error {
		if _, ok := byEmail[u.Email]; ok {
			return models.ErrDuplicate
		}
		for _, existing := range byID {
			if existing.Username == u.Username {
				return models.ErrDuplicate
			}
		}
		u.ID = gofakeit.UUID()
		stored := *u
		byEmail[u.Email] = &stored
		byID[u.ID] = &stored
		return nil
	}
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if u, ok := byEmail[email]; ok {
			cp := *u
			return &cp, nil
		}
		return nil, models.ErrNotFound
	}
	repo.getByIDFn = func(_ context.Context, id string) (*models.User, error) {
		if u, ok := byID[id]; ok {
			cp := *u
			return &cp, nil
		}
		return nil, models.ErrNotFound
	}
	repo.updateFn = func(_ context.Context, u *models.User) error {
		for id, existing := range byID {
			if id != u.ID && existing.Username == u.Username {
				return models.ErrDuplicate
			}
		}
		stored := *u
		byID[u.ID] = &stored
		byEmail[u.Email] = &stored
		return nil
	}
	return repo
}

func newTestUserService() *UserService {
	svc := NewUserService(memoryUsers())
	svc.bcryptCost = bcrypt.MinCost
	return svc
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestUserService()

	user, err := svc.Register(ctx, RegisterInput{Username: " ann_1 ", Email: "Ann@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ann_1", user.Username)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")))

	_, err = svc.Register(ctx, RegisterInput{Username: "ann_2", Email: "ann@example.com", Password: "secret1"})
	assertAppError(t, err, models.CodeValidation, "User already exists")

	_, err = svc.Register(ctx, RegisterInput{Username: "a!", Email: "nope", Password: "123"})
	assertAppError(t, err, models.CodeValidation, "Validation failed")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	fields := map[string]bool{}
	for _, f := range appErr.Fields {
		fields[f.Field] = true
	}
	assert.Equal(t, map[string]bool{"username": true, "email": true, "password": true}, fields)
}

func TestUserService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestUserService()

	registered, err := svc.Register(ctx, RegisterInput{Username: "ben", Email: "ben@example.com", Password: "hunter22"})
	require.NoError(t, err)

	user, err := svc.Login(ctx, LoginInput{Email: "BEN@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Login(ctx, LoginInput{Email: "ben@example.com", Password: "wrong-password"})
	assertAppError(t, err, models.CodeValidation, "Invalid credentials")

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "hunter22"})
	assertAppError(t, err, models.CodeValidation, "Invalid credentials")
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestUserService()

	ann, err := svc.Register(ctx, RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Username: "ben", Email: "ben@example.com", Password: "secret1"})
	require.NoError(t, err)

	bio := "  landscapes  "
	updated, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: ann.ID, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "landscapes", updated.Bio)
	assert.Equal(t, "ann", updated.Username)
	assert.Empty(t, updated.Password)

	taken := "ben"
	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: ann.ID, Username: &taken})
	assertAppError(t, err, models.CodeValidation, "Username already taken")

	bad := "no spaces allowed"
	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: ann.ID, Username: &bad})
	assertValidationError(t, err)

	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: "ghost", Bio: &bio})
	assertAppError(t, err, models.CodeNotFound, "User not found")

	profile, err := svc.GetProfile(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "landscapes", profile.Bio)
}
