package service

import (
	"context"
	"fmt"

	"github.com/pkordes/boutique/internal/catalog"
	"github.com/pkordes/boutique/internal/domain"
	"github.com/pkordes/boutique/internal/repo"
)

// StorefrontService composes the public shop page over the persisted catalog
// with the same matcher and paginator the terminal client uses.
type StorefrontService struct {
	products repo.ProductRepo
}

// NewStorefrontService constructs a StorefrontService.
func NewStorefrontService(products repo.ProductRepo) *StorefrontService {
	return &StorefrontService{products: products}
}

// Page returns page of the products carrying every label in selected.
// A zero page or perPage falls back to 1 and catalog.DefaultPageSize.
func (s *StorefrontService) Page(ctx context.Context, selected []string, page, perPage int) (catalog.Page, error) {
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = catalog.DefaultPageSize
	}
	if page < 1 {
		return catalog.Page{}, fmt.Errorf("%w: page must be at least 1", domain.ErrValidation)
	}
	if perPage < 1 || perPage > domain.MaxLimit {
		return catalog.Page{}, fmt.Errorf("%w: per_page must be between 1 and %d", domain.ErrValidation, domain.MaxLimit)
	}

	products, err := s.products.List(ctx)
	if err != nil {
		return catalog.Page{}, fmt.Errorf("service.StorefrontService.Page: %w", err)
	}
	return catalog.Compose(products, selected, perPage, page), nil
}
