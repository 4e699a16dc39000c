package query

import "math"

const (
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps Offset within int at any limit.
	MaxPage = math.MaxInt/MaxLimit + 1
)

// PageRequest is an offset window. Use NewPageRequest to get clamped values.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest clamps limit into [1, MaxLimit] and page into [1, MaxPage].
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset is the number of rows skipped before the window.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageInfo is pagination metadata. Every field but the request echo is derived
// from TotalCount.
type PageInfo struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalCount  int64 `json:"total_count"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next_page"`
	HasPrevious bool  `json:"has_previous_page"`
}

// NewPageInfo derives page metadata from a total.
func NewPageInfo(req PageRequest, total int64) PageInfo {
	if total < 0 {
		total = 0
	}
	perPage := int64(req.Limit)
	totalPages := int((total + perPage - 1) / perPage)
	return PageInfo{
		CurrentPage: req.Page,
		PerPage:     req.Limit,
		TotalCount:  total,
		TotalPages:  totalPages,
		HasNext:     req.Page < totalPages,
		HasPrevious: req.Page > 1,
	}
}

// Page is one window of rows with its metadata.
type Page[T any] struct {
	Rows []T
	Info PageInfo
}
