package helpers

import (
	"net/http"
	"strconv"

	"eventhub/internal/domain"
)

// PaginationMeta describes the page returned in a list response.
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ListResponse is the data of paginated list responses.
type ListResponse[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// NewListResponse wraps one page of items. A nil slice is sent as an empty array.
func NewListResponse[T any](items []T, params domain.PaginationParams, total int) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{
		Items: items,
		Pagination: PaginationMeta{
			Page:       params.Page,
			PageSize:   params.PageSize,
			Total:      total,
			TotalPages: params.TotalPages(total),
		},
	}
}

// ParsePagination reads page and page_size from the query string.
// Non-numeric values are rejected; numbers out of range are clamped.
func ParsePagination(r *http.Request) (domain.PaginationParams, error) {
	q := r.URL.Query()
	var params domain.PaginationParams
	for _, f := range []struct {
		name string
		dst  *int
	}{{"page", &params.Page}, {"page_size", &params.PageSize}} {
		s := q.Get(f.name)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return params, domain.NewValidationError(f.name, f.name+" must be an integer")
		}
		*f.dst = n
	}
	return params.Normalized(), nil
}
