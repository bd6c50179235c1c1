package domain

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed. Limit is capped at MaxLimit by NewPaginationParams.
type PaginationParams struct {
	Page  int
	Limit int
}

// Defaults applied by NewPaginationParams.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil or non-positive values fall back to page=1, limit=DefaultLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxLimit)
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns how many pages of p.Limit rows cover total rows.
func (p PaginationParams) TotalPages(total int64) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
