package models

import "github.com/gofiber/fiber/v2"

// Default and maximum page sizes for paginated endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is the envelope for paginated responses.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
}

// NewPage builds a Page from a slice and the total row count. Content is
// never null in the JSON output.
func NewPage[T any](content []T, total int64, page, size int) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Page:          page,
		Size:          size,
	}
}

// PageParams reads "page" and "size" query parameters, clamping size to
// MaxPageSize and defaulting to page 0, size DefaultPageSize.
func PageParams(c *fiber.Ctx) (page, size int) {
	page = c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}
	size = c.QueryInt("size", DefaultPageSize)
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}
