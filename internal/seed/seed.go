// Package seed fills a store with demo users, posts, likes and comments for
// development. Everything goes through the service layer, so seeded data
// obeys the same validation and storage rules as API traffic.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"strings"

	"photoshare/internal/middleware"
	"photoshare/internal/repository"
	"photoshare/internal/service"
	"photoshare/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers int
	NumPosts int
	// MaxLikes and MaxComments bound the engagement generated per post.
	MaxLikes    int
	MaxComments int
}

// Result counts what a run created.
type Result struct {
	Users    int
	Posts    int
	Likes    int
	Comments int
}

// Seeder drives the services with generated content.
type Seeder struct {
	users      *service.UserService
	posts      *service.PostService
	engagement *service.EngagementService
	faker      *gofakeit.Faker
}

// NewSeeder binds a seeder to a store and image store. The same seed value
// produces the same content.
func NewSeeder(store *repository.Store, images storage.ImageStore, seed int64) *Seeder {
	return &Seeder{
		users:      service.NewUserService(store.Users),
		posts:      service.NewPostService(store.Posts, store.Users, images, service.DefaultMaxUploadMB),
		engagement: service.NewEngagementService(store.Posts, store.Users),
		faker:      gofakeit.New(seed),
	}
}

// Run creates opts.NumUsers accounts and spreads opts.NumPosts posts across
// them, then adds likes and comments from random accounts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.NumUsers < 1 {
		return nil, fmt.Errorf("seed needs at least one user")
	}
	res := &Result{}

	userIDs := make([]string, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.users.Register(ctx, service.RegisterInput{
			Username: s.username(i),
			Email:    fmt.Sprintf("seed%d.%s", i, strings.ToLower(s.faker.Email())),
			Password: DefaultPassword,
		})
		if err != nil {
			return res, fmt.Errorf("create user %d: %w", i, err)
		}
		bio := s.faker.Sentence(6)
		if _, err := s.users.UpdateProfile(ctx, service.UpdateProfileInput{UserID: user.ID, Bio: &bio}); err != nil {
			return res, fmt.Errorf("set bio for %s: %w", user.Username, err)
		}
		userIDs = append(userIDs, user.ID)
		res.Users++
	}
	middleware.Logger.InfoContext(ctx, "seeded users", slog.Int("count", res.Users))

	for i := 0; i < opts.NumPosts; i++ {
		author := userIDs[i%len(userIDs)]
		img, err := s.image()
		if err != nil {
			return res, err
		}
		post, err := s.posts.CreatePost(ctx, service.CreatePostInput{
			UserID:  author,
			Caption: s.caption(),
			Image: &service.ImageUpload{
				Filename:    fmt.Sprintf("seed-%d.png", i),
				ContentType: "image/png",
				Data:        img,
			},
		})
		if err != nil {
			return res, fmt.Errorf("create post %d: %w", i, err)
		}
		res.Posts++

		likes, comments, err := s.engage(ctx, post.ID, userIDs, opts)
		res.Likes += likes
		res.Comments += comments
		if err != nil {
			return res, err
		}
	}

	middleware.Logger.InfoContext(ctx, "seeding complete",
		slog.Int("users", res.Users),
		slog.Int("posts", res.Posts),
		slog.Int("likes", res.Likes),
		slog.Int("comments", res.Comments),
	)
	return res, nil
}

// engage likes the post from a distinct subset of users and adds comments
// from random ones.
func (s *Seeder) engage(ctx context.Context, postID string, userIDs []string, opts Options) (int, int, error) {
	likes := 0
	if opts.MaxLikes > 0 {
		n := s.faker.Number(0, min(opts.MaxLikes, len(userIDs)))
		for _, idx := range s.faker.Rand.Perm(len(userIDs))[:n] {
			if _, err := s.engagement.ToggleLike(ctx, postID, userIDs[idx]); err != nil {
				return likes, 0, fmt.Errorf("like post %s: %w", postID, err)
			}
			likes++
		}
	}

	comments := 0
	if opts.MaxComments > 0 {
		n := s.faker.Number(0, opts.MaxComments)
		for i := 0; i < n; i++ {
			_, err := s.engagement.AddComment(ctx, service.AddCommentInput{
				UserID:  userIDs[s.faker.Number(0, len(userIDs)-1)],
				PostID:  postID,
				Content: s.faker.Sentence(s.faker.Number(3, 12)),
			})
			if err != nil {
				return likes, comments, fmt.Errorf("comment on post %s: %w", postID, err)
			}
			comments++
		}
	}
	return likes, comments, nil
}

// username builds a unique name within the username character set.
func (s *Seeder) username(i int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s.faker.FirstName()) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		name = "user"
	}
	if len(name) > 20 {
		name = name[:20]
	}
	return fmt.Sprintf("%s_%d", name, i)
}

func (s *Seeder) caption() string {
	return fmt.Sprintf("%s %s, %s", s.faker.Adjective(), s.faker.Noun(), strings.ToLower(s.faker.Sentence(5)))
}

// image renders a small two-tone PNG.
func (s *Seeder) image() ([]byte, error) {
	const size = 64
	top := color.RGBA{R: s.faker.Uint8(), G: s.faker.Uint8(), B: s.faker.Uint8(), A: 255}
	bottom := color.RGBA{R: s.faker.Uint8(), G: s.faker.Uint8(), B: s.faker.Uint8(), A: 255}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		c := top
		if y >= size/2 {
			c = bottom
		}
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode seed image: %w", err)
	}
	return buf.Bytes(), nil
}
