// Command migrate applies the store schema: tables for SQL drivers, indexes for MongoDB.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"photoshare/internal/config"
	"photoshare/internal/database"
	"photoshare/internal/repository"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		return up(ctx, cfg)
	case "status":
		store, _, err := database.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect store: %w", err)
		}
		defer func() { _ = store.Close(context.Background()) }()
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("ping %s: %w", store.Driver, err)
		}
		log.Printf("driver=%s env=%s reachable=true", store.Driver, cfg.Env)
		return nil
	default:
		return usage()
	}
}

func up(ctx context.Context, cfg *config.Config) error {
	if cfg.StoreDriver == config.StoreMongo {
		// ConnectMongo ensures indexes as part of connecting
		client, _, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return fmt.Errorf("mongo indexes failed: %w", err)
		}
		log.Println("mongo indexes applied")
		return client.Disconnect(context.Background())
	}

	db, err := database.ConnectSQL(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := repository.AutoMigrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	log.Println("automigrations applied")

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
