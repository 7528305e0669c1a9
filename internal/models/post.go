package models

import "time"

const (
	MaxCaptionLength = 1000
	MaxCommentLength = 500
)

// Post is an image post. Likes is the liker set and is never serialized;
// LikeCount, CommentCount and IsLiked are derived by ApplyEngagement.
type Post struct {
	ID           string       `json:"_id"`
	AuthorID     string       `json:"-"`
	Author       *UserSummary `json:"author"`
	Image        string       `json:"image"`
	Caption      string       `json:"caption"`
	Likes        []string     `json:"-"`
	Comments     []*Comment   `json:"comments"`
	LikeCount    int          `json:"likeCount"`
	CommentCount int          `json:"commentCount"`
	IsLiked      *bool        `json:"isLiked,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Comment lives inside exactly one post.
type Comment struct {
	ID        string       `json:"_id"`
	AuthorID  string       `json:"-"`
	User      *UserSummary `json:"user"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// IsLikedBy reports whether userID is a member of the liker set.
func (p *Post) IsLikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ApplyEngagement computes the derived counters. IsLiked is only set when a
// viewer identity is supplied; anonymous callers get it omitted.
func (p *Post) ApplyEngagement(viewerID string, identified bool) {
	if p.Comments == nil {
		p.Comments = []*Comment{}
	}
	p.LikeCount = len(p.Likes)
	p.CommentCount = len(p.Comments)
	p.IsLiked = nil
	if identified {
		liked := p.IsLikedBy(viewerID)
		p.IsLiked = &liked
	}
}

// FindComment returns the embedded comment with the given id.
func (p *Post) FindComment(commentID string) (*Comment, bool) {
	for _, c := range p.Comments {
		if c.ID == commentID {
			return c, true
		}
	}
	return nil, false
}
