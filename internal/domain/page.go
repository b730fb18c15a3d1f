package domain

// Result sizes shared by the feed and search listings.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ClampLimit applies the listing size policy: a missing or non-positive
// limit becomes DefaultLimit and anything above MaxLimit is cut to MaxLimit.
func ClampLimit(limit int) int {
	switch {
	case limit < 1:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// PaginationParams selects one page of the home feed. Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds feed paging from the optional page and limit
// query values. A missing or invalid page is the first page; the limit
// follows ClampLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil {
		p.Limit = ClampLimit(*limit)
	}
	return p
}

// Offset is the number of feed items before this page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
