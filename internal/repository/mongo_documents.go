package repository

import (
	"fmt"
	"time"

	"photoshare/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Collection names in the document store.
const (
	UsersCollection = "users"
	PostsCollection = "posts"
)

type userDocument struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	Username       string        `bson:"username"`
	Email          string        `bson:"email"`
	Password       string        `bson:"password"`
	Bio            string        `bson:"bio"`
	ProfilePicture string        `bson:"profilePicture"`
	CreatedAt      time.Time     `bson:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt"`
}

// authorDocument is the projection of a user joined into a post.
type authorDocument struct {
	ID             bson.ObjectID `bson:"_id"`
	Username       string        `bson:"username"`
	ProfilePicture string        `bson:"profilePicture"`
	Bio            string        `bson:"bio"`
}

type commentDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	User      bson.ObjectID `bson:"user"`
	Content   string        `bson:"content"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

type postDocument struct {
	ID        bson.ObjectID     `bson:"_id,omitempty"`
	Author    bson.ObjectID     `bson:"author"`
	Image     string            `bson:"image"`
	Caption   string            `bson:"caption"`
	Likes     []bson.ObjectID   `bson:"likes"`
	Comments  []commentDocument `bson:"comments"`
	CreatedAt time.Time         `bson:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt"`

	// Joined by the read pipelines, never stored.
	AuthorInfo     []authorDocument `bson:"authorInfo,omitempty"`
	CommentAuthors []authorDocument `bson:"commentAuthors,omitempty"`
}

func parseObjectID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w: %q", models.ErrInvalidID, id)
	}
	return oid, nil
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		Email:          d.Email,
		Password:       d.Password,
		Bio:            d.Bio,
		ProfilePicture: d.ProfilePicture,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (a authorDocument) summary() *models.UserSummary {
	return &models.UserSummary{
		ID:             a.ID.Hex(),
		Username:       a.Username,
		ProfilePicture: a.ProfilePicture,
		Bio:            a.Bio,
	}
}

func (d *postDocument) toModel() *models.Post {
	post := &models.Post{
		ID:        d.ID.Hex(),
		AuthorID:  d.Author.Hex(),
		Image:     d.Image,
		Caption:   d.Caption,
		Likes:     make([]string, 0, len(d.Likes)),
		Comments:  make([]*models.Comment, 0, len(d.Comments)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if len(d.AuthorInfo) > 0 {
		post.Author = d.AuthorInfo[0].summary()
	}
	for _, uid := range d.Likes {
		post.Likes = append(post.Likes, uid.Hex())
	}

	authors := make(map[bson.ObjectID]authorDocument, len(d.CommentAuthors))
	for _, a := range d.CommentAuthors {
		authors[a.ID] = a
	}
	for _, c := range d.Comments {
		comment := &models.Comment{
			ID:        c.ID.Hex(),
			AuthorID:  c.User.Hex(),
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
		if a, ok := authors[c.User]; ok {
			comment.User = a.summary()
		}
		post.Comments = append(post.Comments, comment)
	}
	return post
}
