package catalog

// Paginate returns the pageIndex-th page (1-based) of items and the total
// number of pages. totalPages is zero for an empty input, and an index past
// the last page yields an empty page. A non-positive pageSize is a caller bug
// and returns (nil, 0).
func Paginate[T any](items []T, pageSize, pageIndex int) ([]T, int) {
	if pageSize <= 0 {
		return nil, 0
	}
	totalPages := (len(items) + pageSize - 1) / pageSize
	if pageIndex < 1 || pageIndex > totalPages {
		return []T{}, totalPages
	}
	start := (pageIndex - 1) * pageSize
	end := min(start+pageSize, len(items))
	return items[start:end:end], totalPages
}
