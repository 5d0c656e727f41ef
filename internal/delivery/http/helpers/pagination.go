package helpers

import (
	"net/http"
	"strconv"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// PageParams is a 1-based page request.
type PageParams struct {
	Page     int
	PageSize int
}

// ParsePagination reads page and page_size from the query string, clamped to valid ranges.
// Invalid or missing values fall back to defaults.
func ParsePagination(r *http.Request) PageParams {
	page := DefaultPage
	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			page = v
		}
	}
	pageSize := DefaultPageSize
	if s := r.URL.Query().Get("page_size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			pageSize = min(v, MaxPageSize)
		}
	}
	return PageParams{Page: page, PageSize: pageSize}
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPaginationMeta builds PaginationMeta. TotalPages is ceiling(total / pageSize).
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Paginate returns the requested page of items. Pages past the end are empty.
func Paginate[T any](items []T, p PageParams) ([]T, PaginationMeta) {
	meta := NewPaginationMeta(p.Page, p.PageSize, len(items))
	start := (p.Page - 1) * p.PageSize
	if start >= len(items) {
		return []T{}, meta
	}
	end := min(start+p.PageSize, len(items))
	return items[start:end], meta
}
