package service

import (
	"context"
	"strings"

	"photoshare/internal/models"
	"photoshare/internal/repository"
)

type FeedService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type ListFeedInput struct {
	Page   int
	Limit  int
	Search string
	Viewer Viewer
}

type ListUserFeedInput struct {
	UserID string
	Page   int
	Limit  int
	Viewer Viewer
}

type FeedPage struct {
	Posts      []*models.Post    `json:"posts"`
	Pagination models.Pagination `json:"pagination"`
}

type UserFeedPage struct {
	Posts      []*models.Post    `json:"posts"`
	User       *models.Profile   `json:"user"`
	Pagination models.Pagination `json:"pagination"`
}

func NewFeedService(postRepo repository.PostRepository, userRepo repository.UserRepository) *FeedService {
	return &FeedService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

// ListFeed returns one newest-first page of all posts, optionally filtered by
// a caption or author-username search.
func (s *FeedService) ListFeed(ctx context.Context, in ListFeedInput) (*FeedPage, error) {
	req := models.NewPageRequest(in.Page, in.Limit)
	posts, pagination, err := s.page(ctx, req, repository.PostFilter{
		Search: strings.TrimSpace(in.Search),
	}, in.Viewer)
	if err != nil {
		return nil, err
	}
	return &FeedPage{Posts: posts, Pagination: pagination}, nil
}

// ListUserFeed returns one page of a single author's posts.
func (s *FeedService) ListUserFeed(ctx context.Context, in ListUserFeedInput) (*UserFeedPage, error) {
	user, err := loadUser(ctx, s.userRepo, in.UserID)
	if err != nil {
		return nil, err
	}

	req := models.NewPageRequest(in.Page, in.Limit)
	posts, pagination, err := s.page(ctx, req, repository.PostFilter{AuthorID: user.ID}, in.Viewer)
	if err != nil {
		return nil, err
	}
	return &UserFeedPage{Posts: posts, User: user.Profile(), Pagination: pagination}, nil
}

func (s *FeedService) page(ctx context.Context, req models.PageRequest, f repository.PostFilter, viewer Viewer) ([]*models.Post, models.Pagination, error) {
	f.Offset = req.Offset()
	f.Limit = req.Limit

	posts, total, err := s.postRepo.List(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, storeError(err, "Post")
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	for _, p := range posts {
		p.ApplyEngagement(viewer.ID, viewer.Identified())
	}
	return posts, models.NewPagination(req, total), nil
}
