package shared

import "math"

const (
	// DefaultPageSize applies when a listing does not specify a size.
	DefaultPageSize = 20
	// MaxPageSize caps client supplied page sizes.
	MaxPageSize = 100
)

// PageRequest is a zero-based page selector.
type PageRequest struct {
	Number int
	Size   int
}

// NewPageRequest normalises page selectors coming from query strings.
func NewPageRequest(number, size int) PageRequest {
	if number < 0 {
		number = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Number: number, Size: size}
}

// Offset returns the row offset of the first element of the page.
func (p PageRequest) Offset() int {
	return p.Number * p.Size
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
	Size          int `json:"size"`
}

// NewPage computes pagination metadata for content.
func NewPage[T any](content []T, req PageRequest, total int) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(req.Size)))
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        req.Number,
		Size:          req.Size,
	}
}
