package domain

// Page size bounds applied to every list query.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams selects one page of a list. Page is 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Normalized moves a non-positive page to the first one and bounds the page size.
func (p PaginationParams) Normalized() PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the number of rows before the page.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// TotalPages is the number of pages total rows fill.
func (p PaginationParams) TotalPages(total int) int {
	if p.PageSize < 1 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}
