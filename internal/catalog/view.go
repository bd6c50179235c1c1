package catalog

import (
	"sort"

	"github.com/pkordes/boutique/internal/domain"
)

// Page is one rendered storefront page.
type Page struct {
	Items         []domain.Product
	Page          int
	PageSize      int
	TotalPages    int
	TotalItems    int
	AvailableTags []domain.Tag
}

// Compose filters products by selected labels and slices the requested page.
// It holds no state of its own.
func Compose(products []domain.Product, selected []string, pageSize, page int) Page {
	filtered := FilterAll(products, selected)
	items, totalPages := Paginate(filtered, pageSize, page)
	return Page{
		Items:         items,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages,
		TotalItems:    len(filtered),
		AvailableTags: AvailableTags(products),
	}
}

// AvailableTags returns every distinct tag (by label) carried by products,
// sorted by category then label.
func AvailableTags(products []domain.Product) []domain.Tag {
	seen := make(map[string]struct{})
	var out []domain.Tag
	for _, p := range products {
		for _, t := range p.Tags {
			if _, ok := seen[t.Label]; ok {
				continue
			}
			seen[t.Label] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Label < out[j].Label
	})
	return out
}
