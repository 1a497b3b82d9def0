package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const DefaultPageSize = 10

// PaginationParams is the resolved window for one page of a collection of
// Total items. Page is always within [1, max(TotalPages, 1)].
type PaginationParams struct {
	Page       int
	Limit      int
	Offset     int
	TotalPages int
	Total      int64
}

// Page is one page of items plus the metadata listings need to render
// navigation.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Number      int   `json:"number"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

func (p Page[T]) Len() int {
	return len(p.Items)
}

func (p Page[T]) NextPageNumber() int {
	if !p.HasNext {
		return p.Number
	}
	return p.Number + 1
}

func (p Page[T]) PreviousPageNumber() int {
	if !p.HasPrevious {
		return p.Number
	}
	return p.Number - 1
}

// ParsePage reads the 1-based "page" query parameter. Missing, non-numeric
// and non-positive values fall back to the first page.
func ParsePage(c *fiber.Ctx) int {
	page := parseIntDefault(c.Query("page"), 1)
	if page < 1 {
		return 1
	}
	return page
}

// PageWindow resolves the requested page against a collection of total
// items. Requests past the last page are clamped to the last page; an empty
// collection has zero pages and resolves to page 1.
func PageWindow(total int64, limit, requested int) PaginationParams {
	if limit < 1 {
		limit = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	page := requested
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = max(totalPages, 1)
	}

	return PaginationParams{
		Page:       page,
		Limit:      limit,
		Offset:     (page - 1) * limit,
		TotalPages: totalPages,
		Total:      total,
	}
}

func NewPage[T any](items []T, p PaginationParams) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:       items,
		Number:      p.Page,
		PageSize:    p.Limit,
		TotalItems:  p.Total,
		TotalPages:  p.TotalPages,
		HasNext:     p.Page < p.TotalPages,
		HasPrevious: p.Page > 1,
	}
}

// Paginate slices an ordered in-memory collection.
func Paginate[T any](items []T, limit, requested int) Page[T] {
	p := PageWindow(int64(len(items)), limit, requested)

	start := min(p.Offset, len(items))
	end := min(p.Offset+p.Limit, len(items))

	window := make([]T, end-start)
	copy(window, items[start:end])
	return NewPage(window, p)
}

func ApplyPagination(db *gorm.DB, p PaginationParams) *gorm.DB {
	return db.Offset(p.Offset).Limit(p.Limit)
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
