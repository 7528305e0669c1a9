package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"photoshare/internal/models"
	"photoshare/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postRepository implements PostRepository on gorm
type postRepository struct {
	db      *gorm.DB
	driver  string
	logger  *observability.RepoLogger
	metrics *observability.StoreMetrics
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	driver := db.Dialector.Name()
	return &postRepository{
		db:      db,
		driver:  driver,
		logger:  observability.NewRepoLogger(driver, "posts"),
		metrics: observability.NewStoreMetrics(driver),
	}
}

// withDetails loads everything a post is rendered with.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.Author").
		Preload("Likes")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	if err := parseUUID(post.AuthorID); err != nil {
		return err
	}
	ctx, span := observability.StartStoreSpan(ctx, r.driver, "create", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer r.metrics.TrackQuery("create", "posts")()

	rec := postRecord{
		AuthorID:      post.AuthorID,
		Image:         post.Image,
		Caption:       post.Caption,
		CaptionFolded: foldCaption(post.Caption),
	}
	if err = r.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return fmt.Errorf("create post: %w", err)
	}

	post.ID = rec.ID
	post.CreatedAt = rec.CreatedAt
	post.UpdatedAt = rec.UpdatedAt
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []*models.Comment{}
	}
	r.logger.LogCreate(ctx, map[string]any{"post_id": post.ID, "author_id": post.AuthorID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if err := parseUUID(id); err != nil {
		return nil, err
	}
	defer r.metrics.TrackQuery("get", "posts")()

	var rec postRecord
	if err := withDetails(r.db.WithContext(ctx)).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return rec.toModel(), nil
}

func (r *postRepository) UpdateCaption(ctx context.Context, id, caption string) error {
	if err := parseUUID(id); err != nil {
		return err
	}
	defer r.metrics.TrackQuery("update", "posts")()

	res := r.db.WithContext(ctx).Model(&postRecord{ID: id}).Updates(map[string]any{
		"caption":        caption,
		"caption_folded": foldCaption(caption),
	})
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "update")
		return fmt.Errorf("update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	r.logger.LogUpdate(ctx, map[string]any{"post_id": id})
	return nil
}

// Delete removes the post together with its comments and liker set.
func (r *postRepository) Delete(ctx context.Context, id string) (err error) {
	if err := parseUUID(id); err != nil {
		return err
	}
	ctx, span := observability.StartStoreSpan(ctx, r.driver, "delete", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer r.metrics.TrackQuery("delete", "posts")()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&likeRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&commentRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&postRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("post %s: %w", id, models.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			r.logger.LogError(ctx, err, "delete")
		}
		return err
	}
	r.logger.LogDelete(ctx, map[string]any{"post_id": id})
	return nil
}

func (r *postRepository) List(ctx context.Context, f PostFilter) (posts []*models.Post, total int64, err error) {
	if f.AuthorID != "" {
		if err := parseUUID(f.AuthorID); err != nil {
			return nil, 0, err
		}
	}
	ctx, span := observability.StartStoreSpan(ctx, r.driver, "list", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer r.metrics.TrackQuery("list", "posts")()

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&postRecord{})
		if f.AuthorID != "" {
			q = q.Where("posts.author_id = ?", f.AuthorID)
		}
		if search := strings.TrimSpace(f.Search); search != "" {
			pattern := "%" + escapeLike(foldCaption(search)) + "%"
			// usernames are ASCII, so LOWER is enough for them on every driver
			q = q.Joins("JOIN users ON users.id = posts.author_id").
				Where(`(posts.caption_folded LIKE ? ESCAPE '\' OR LOWER(users.username) LIKE ? ESCAPE '\')`, pattern, pattern)
		}
		return q
	}

	if err = base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	if total == 0 || f.Offset >= int(total) {
		return []*models.Post{}, total, nil
	}

	var records []postRecord
	err = withDetails(base()).
		Select("posts.*").
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	posts = make([]*models.Post, 0, len(records))
	for i := range records {
		posts = append(posts, records[i].toModel())
	}
	return posts, total, nil
}

// ToggleLike removes the liker if present, otherwise inserts it, inside one
// transaction. The composite key on post_likes rejects a concurrent duplicate.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID string) (liked bool, likeCount int, err error) {
	if err := parseUUID(postID); err != nil {
		return false, 0, err
	}
	if err := parseUUID(userID); err != nil {
		return false, 0, err
	}
	ctx, span := observability.StartStoreSpan(ctx, r.driver, "toggle_like", "post_likes")
	defer func() { observability.EndSpan(span, err) }()
	defer r.metrics.TrackQuery("toggle_like", "post_likes")()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&postRecord{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("post %s: %w", postID, models.ErrNotFound)
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&likeRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			like := likeRecord{PostID: postID, UserID: userID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			liked = true
		}

		var n int64
		if err := tx.Model(&likeRecord{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
			return err
		}
		likeCount = int(n)
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return liked, likeCount, nil
}

func (r *postRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	if err := parseUUID(postID); err != nil {
		return err
	}
	if err := parseUUID(comment.AuthorID); err != nil {
		return err
	}
	defer r.metrics.TrackQuery("add_comment", "comments")()

	rec := commentRecord{
		PostID:   postID,
		AuthorID: comment.AuthorID,
		Content:  comment.Content,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&postRecord{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("post %s: %w", postID, models.ErrNotFound)
		}
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return err
		}
		return tx.Model(&postRecord{ID: postID}).UpdateColumn("updated_at", time.Now()).Error
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			r.logger.LogError(ctx, err, "add_comment")
		}
		return err
	}

	comment.ID = rec.ID
	comment.CreatedAt = rec.CreatedAt
	comment.UpdatedAt = rec.UpdatedAt
	r.logger.LogCreate(ctx, map[string]any{"post_id": postID, "comment_id": comment.ID})
	return nil
}

func (r *postRepository) RemoveComment(ctx context.Context, postID, commentID string) error {
	if err := parseUUID(postID); err != nil {
		return err
	}
	if err := parseUUID(commentID); err != nil {
		return err
	}
	defer r.metrics.TrackQuery("remove_comment", "comments")()

	res := r.db.WithContext(ctx).Where("id = ? AND post_id = ?", commentID, postID).Delete(&commentRecord{})
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "remove_comment")
		return fmt.Errorf("remove comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %s: %w", commentID, models.ErrNotFound)
	}
	r.logger.LogDelete(ctx, map[string]any{"post_id": postID, "comment_id": commentID})
	return nil
}
