package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"photoshare/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// gorm row types. Domain models stay storage-agnostic; these carry the schema.

type userRecord struct {
	ID             string `gorm:"type:varchar(36);primaryKey"`
	Username       string `gorm:"size:30;uniqueIndex;not null"`
	Email          string `gorm:"size:254;uniqueIndex;not null"`
	Password       string `gorm:"not null"`
	Bio            string `gorm:"size:500"`
	ProfilePicture string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (userRecord) TableName() string { return "users" }

func (r *userRecord) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// postRecord.CaptionFolded is Caption lower-cased in Go; sqlite's LOWER only
// folds ASCII.
type postRecord struct {
	ID            string          `gorm:"type:varchar(36);primaryKey"`
	AuthorID      string          `gorm:"type:varchar(36);not null;index:idx_posts_author_created,priority:1"`
	Author        userRecord      `gorm:"foreignKey:AuthorID"`
	Image         string          `gorm:"not null"`
	Caption       string          `gorm:"size:1000;not null"`
	CaptionFolded string          `gorm:"not null;default:''"`
	Comments      []commentRecord `gorm:"foreignKey:PostID"`
	Likes         []likeRecord    `gorm:"foreignKey:PostID"`
	CreatedAt     time.Time       `gorm:"index;index:idx_posts_author_created,priority:2"`
	UpdatedAt     time.Time
}

func (postRecord) TableName() string { return "posts" }

func (r *postRecord) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type commentRecord struct {
	ID        string     `gorm:"type:varchar(36);primaryKey"`
	PostID    string     `gorm:"type:varchar(36);not null;index"`
	AuthorID  string     `gorm:"type:varchar(36);not null"`
	Author    userRecord `gorm:"foreignKey:AuthorID"`
	Content   string     `gorm:"size:500;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (commentRecord) TableName() string { return "comments" }

func (r *commentRecord) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// likeRecord is one member of a post's liker set; the composite key keeps a
// user in the set at most once.
type likeRecord struct {
	PostID    string `gorm:"type:varchar(36);primaryKey"`
	UserID    string `gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time
}

func (likeRecord) TableName() string { return "post_likes" }

// AutoMigrate creates or updates the relational schema.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userRecord{}, &postRecord{}, &commentRecord{}, &likeRecord{}); err != nil {
		return err
	}
	return backfillFoldedCaptions(db)
}

func foldCaption(caption string) string {
	return strings.ToLower(caption)
}

// backfillFoldedCaptions fills caption_folded for rows written before the
// column existed.
func backfillFoldedCaptions(db *gorm.DB) error {
	writer := db.Session(&gorm.Session{NewDB: true})
	var batch []postRecord
	return db.Model(&postRecord{}).
		Select("id", "caption").
		Where("caption_folded = ? AND caption <> ?", "", "").
		FindInBatches(&batch, 200, func(_ *gorm.DB, _ int) error {
			for _, rec := range batch {
				err := writer.Model(&postRecord{ID: rec.ID}).
					UpdateColumn("caption_folded", foldCaption(rec.Caption)).Error
				if err != nil {
					return fmt.Errorf("backfill caption_folded for %s: %w", rec.ID, err)
				}
			}
			return nil
		}).Error
}

func (r *userRecord) toModel() *models.User {
	return &models.User{
		ID:             r.ID,
		Username:       r.Username,
		Email:          r.Email,
		Password:       r.Password,
		Bio:            r.Bio,
		ProfilePicture: r.ProfilePicture,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func summaryFromRecord(r *userRecord) *models.UserSummary {
	if r == nil || r.ID == "" {
		return nil
	}
	return &models.UserSummary{
		ID:             r.ID,
		Username:       r.Username,
		ProfilePicture: r.ProfilePicture,
		Bio:            r.Bio,
	}
}

func (r *commentRecord) toModel() *models.Comment {
	return &models.Comment{
		ID:        r.ID,
		AuthorID:  r.AuthorID,
		User:      summaryFromRecord(&r.Author),
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r *postRecord) toModel() *models.Post {
	post := &models.Post{
		ID:        r.ID,
		AuthorID:  r.AuthorID,
		Author:    summaryFromRecord(&r.Author),
		Image:     r.Image,
		Caption:   r.Caption,
		Likes:     make([]string, 0, len(r.Likes)),
		Comments:  make([]*models.Comment, 0, len(r.Comments)),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, l := range r.Likes {
		post.Likes = append(post.Likes, l.UserID)
	}
	for i := range r.Comments {
		post.Comments = append(post.Comments, r.Comments[i].toModel())
	}
	return post
}

// parseUUID rejects identifiers that cannot exist in the relational store.
func parseUUID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%w: %q", models.ErrInvalidID, id)
	}
	return nil
}

// isDuplicateKey reports unique-constraint violations from postgres or sqlite.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
