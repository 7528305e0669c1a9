package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photoshare/internal/models"
	"photoshare/internal/observability"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type mongoUserRepository struct {
	coll    *mongo.Collection
	logger  *observability.RepoLogger
	metrics *observability.StoreMetrics
}

// NewMongoUserRepository creates a user repository on the users collection.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{
		coll:    db.Collection(UsersCollection),
		logger:  observability.NewRepoLogger("mongo", UsersCollection),
		metrics: observability.NewStoreMetrics("mongo"),
	}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackQuery("create", UsersCollection)()

	now := time.Now().UTC()
	doc := userDocument{
		ID:             bson.NewObjectID(),
		Username:       user.Username,
		Email:          user.Email,
		Password:       user.Password,
		Bio:            user.Bio,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", models.ErrDuplicate)
		}
		r.logger.LogError(ctx, err, "create")
		return fmt.Errorf("create user: %w", err)
	}

	*user = *doc.toModel()
	r.logger.LogCreate(ctx, map[string]any{"user_id": user.ID})
	return nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	defer r.metrics.TrackQuery("get", UsersCollection)()

	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoUserRepository) Update(ctx context.Context, user *models.User) error {
	oid, err := parseObjectID(user.ID)
	if err != nil {
		return err
	}
	defer r.metrics.TrackQuery("update", UsersCollection)()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"username":       user.Username,
		"bio":            user.Bio,
		"profilePicture": user.ProfilePicture,
		"updatedAt":      time.Now().UTC(),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("update user: %w", models.ErrDuplicate)
		}
		r.logger.LogError(ctx, err, "update")
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user: %w", models.ErrNotFound)
	}
	r.logger.LogUpdate(ctx, map[string]any{"user_id": user.ID})
	return nil
}
