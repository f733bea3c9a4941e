package helpers

import (
	"net/http"
	"strconv"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 24
	MaxPageSize     = 100
)

// PageParams is a requested page of an in-memory list.
type PageParams struct {
	Page     int
	PageSize int
}

// ParsePagination reads page and page_size from the request query string,
// clamps them to valid ranges. Invalid or missing values fall back to defaults.
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
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta builds PaginationMeta from the current page, page size, and total count.
// TotalPages is computed as ceiling(total / pageSize); if pageSize is 0, TotalPages is 0.
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

// HasPrev reports whether a page precedes this one.
func (m PaginationMeta) HasPrev() bool { return m.Page > 1 }

// HasNext reports whether a page follows this one.
func (m PaginationMeta) HasNext() bool { return m.Page < m.TotalPages }

// Paginate slices items to the requested page. The backend lists are not paginated, so paging
// happens after the fetch.
func Paginate[T any](items []T, p PageParams) ([]T, PaginationMeta) {
	meta := NewPaginationMeta(p.Page, p.PageSize, len(items))
	start := (p.Page - 1) * p.PageSize
	if start >= len(items) {
		return []T{}, meta
	}
	end := min(start+p.PageSize, len(items))
	return items[start:end], meta
}
