package models

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// PageRequest is a 1-indexed page window.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest clamps limit to [1, MaxPageSize], falling back to
// DefaultPageSize for missing or invalid sizes, and page to
// [1, math.MaxInt/limit] so the offset cannot overflow.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}
	return PageRequest{Page: page, Limit: limit}
}

func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// Pagination is the metadata returned alongside every feed page.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalPosts  int64 `json:"totalPosts"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// NewPagination derives page metadata from a request and the total match count.
func NewPagination(req PageRequest, total int64) Pagination {
	totalPages := 0
	if req.Limit > 0 {
		totalPages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}
	return Pagination{
		CurrentPage: req.Page,
		TotalPages:  totalPages,
		TotalPosts:  total,
		HasNext:     int64(req.Page)*int64(req.Limit) < total,
		HasPrev:     req.Page > 1,
	}
}
