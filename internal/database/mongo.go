package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"photoshare/internal/config"
	"photoshare/internal/middleware"
	"photoshare/internal/repository"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// ConnectMongo connects to MongoDB, verifies the primary is reachable and
// ensures the collection indexes exist.
func ConnectMongo(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(pingCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	middleware.Logger.Info("MongoDB connected successfully", slog.String("database", cfg.MongoDB))
	return client, db, nil
}

// NewMongoStore wraps a connected database as a repository.Store.
func NewMongoStore(client *mongo.Client, db *mongo.Database) *repository.Store {
	return &repository.Store{
		Driver: config.StoreMongo,
		Users:  repository.NewMongoUserRepository(db),
		Posts:  repository.NewMongoPostRepository(db),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: client.Disconnect,
	}
}

// Open connects the store selected by cfg.StoreDriver. The mongo database
// handle is returned as well so GridFS can share the connection; it is nil
// for SQL drivers.
func Open(ctx context.Context, cfg *config.Config) (*repository.Store, *mongo.Database, error) {
	if cfg.StoreDriver == config.StoreMongo {
		client, db, err := ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewMongoStore(client, db), db, nil
	}

	db, err := ConnectSQL(cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewSQLStore(db), nil, nil
}
