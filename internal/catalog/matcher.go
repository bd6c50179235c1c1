// Package catalog holds the session-side shop logic: tag matching,
// pagination, the catalog store with its cart and filter state, storefront
// view composition, and the admin tag picker.
//
// The storefront server and the terminal client both compose pages through
// this package so that filtering behaves the same everywhere.
package catalog

import "github.com/pkordes/boutique/internal/domain"

// Matches reports whether p carries every label in selected.
// An empty selection matches every product. Labels are compared exactly;
// tag IDs and categories play no part.
func Matches(p domain.Product, selected []string) bool {
	for _, label := range selected {
		if !p.HasLabel(label) {
			return false
		}
	}
	return true
}

// FilterAll returns the products that match selected, in their original order.
// The input slice is never modified.
func FilterAll(products []domain.Product, selected []string) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, selected) {
			out = append(out, p)
		}
	}
	return out
}
