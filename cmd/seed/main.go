// Command seed fills the configured store with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"photoshare/internal/config"
	"photoshare/internal/database"
	"photoshare/internal/seed"
	"photoshare/internal/storage"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	maxLikes := flag.Int("max-likes", 10, "Upper bound of likes per post")
	maxComments := flag.Int("max-comments", 4, "Upper bound of comments per post")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production environment")
	}

	ctx := context.Background()
	store, mongoDB, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	defer func() { _ = store.Close(context.Background()) }()

	images, err := storage.New(cfg, mongoDB)
	if err != nil {
		log.Fatalf("Failed to open image store: %v", err)
	}

	log.Printf("Seeding %s: %d users, %d posts (seed=%d)", store.Driver, *numUsers, *numPosts, *seedValue)
	res, err := seed.NewSeeder(store, images, *seedValue).Run(ctx, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		MaxLikes:    *maxLikes,
		MaxComments: *maxComments,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Created %d users, %d posts, %d likes, %d comments. Password for all accounts: %s",
		res.Users, res.Posts, res.Likes, res.Comments, seed.DefaultPassword)
}
