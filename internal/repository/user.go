package repository

import (
	"context"
	"errors"
	"fmt"

	"photoshare/internal/models"
	"photoshare/internal/observability"

	"gorm.io/gorm"
)

// userRepository implements UserRepository on gorm
type userRepository struct {
	db      *gorm.DB
	logger  *observability.RepoLogger
	metrics *observability.StoreMetrics
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	driver := db.Dialector.Name()
	return &userRepository{
		db:      db,
		logger:  observability.NewRepoLogger(driver, "users"),
		metrics: observability.NewStoreMetrics(driver),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackQuery("create", "users")()

	rec := userRecord{
		Username:       user.Username,
		Email:          user.Email,
		Password:       user.Password,
		Bio:            user.Bio,
		ProfilePicture: user.ProfilePicture,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("create user: %w", models.ErrDuplicate)
		}
		r.logger.LogError(ctx, err, "create")
		return fmt.Errorf("create user: %w", err)
	}

	*user = *rec.toModel()
	r.logger.LogCreate(ctx, map[string]any{"user_id": user.ID})
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := parseUUID(id); err != nil {
		return nil, err
	}
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) first(ctx context.Context, query string, arg any) (*models.User, error) {
	defer r.metrics.TrackQuery("get", "users")()

	var rec userRecord
	if err := r.db.WithContext(ctx).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return rec.toModel(), nil
}

// Update persists the mutable profile fields.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := parseUUID(user.ID); err != nil {
		return err
	}
	defer r.metrics.TrackQuery("update", "users")()

	res := r.db.WithContext(ctx).Model(&userRecord{ID: user.ID}).Updates(map[string]any{
		"username":        user.Username,
		"bio":             user.Bio,
		"profile_picture": user.ProfilePicture,
	})
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return fmt.Errorf("update user: %w", models.ErrDuplicate)
		}
		r.logger.LogError(ctx, res.Error, "update")
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user: %w", models.ErrNotFound)
	}

	r.logger.LogUpdate(ctx, map[string]any{"user_id": user.ID})
	return nil
}
