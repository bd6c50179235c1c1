// Package service contains the business logic for the Boutique API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/boutique/internal/domain"
	"github.com/pkordes/boutique/internal/repo"
	"github.com/pkordes/boutique/internal/storage"
)

// Field limits enforced on product and tag writes.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 5000
	MaxLabelLength       = 64
	MaxTagsPerProduct    = 30
)

// MaxPrice is the largest price the NUMERIC(12,2) price column holds.
var MaxPrice = decimal.RequireFromString("9999999999.99")

// ImageStore is the file storage collaborator used for product images.
type ImageStore interface {
	Save(ctx context.Context, img domain.ImageUpload) (storage.Stored, error)
	Delete(ctx context.Context, ref string) error
}

// ProductService implements business logic for Product operations.
type ProductService struct {
	repo       repo.ProductRepo
	images     ImageStore
	categories Categories
	logger     *slog.Logger
}

// NewProductService constructs a ProductService. images may be nil, in which
// case uploads are rejected.
func NewProductService(r repo.ProductRepo, images ImageStore, categories Categories, logger *slog.Logger) *ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	return &ProductService{repo: r, images: images, categories: categories, logger: logger}
}

// List returns every product with its tags.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

// GetByID returns a single product by ID.
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates draft, stores the optional image and persists the product.
// If the product cannot be saved the image is removed again.
func (s *ProductService) Create(ctx context.Context, draft domain.ProductDraft, image *domain.ImageUpload) (domain.Product, error) {
	p, refs, err := s.validate(draft)
	if err != nil {
		return domain.Product{}, err
	}

	if image != nil {
		if s.images == nil {
			return domain.Product{}, fmt.Errorf("%w: image uploads are disabled", domain.ErrValidation)
		}
		stored, err := s.images.Save(ctx, *image)
		if err != nil {
			return domain.Product{}, fmt.Errorf("service.ProductService.Create: %w", err)
		}
		p.Image = stored.Ref
		p.ImageBlurHash = stored.BlurHash
	}

	created, err := s.repo.Create(ctx, p, refs)
	if err != nil {
		if p.Image != "" {
			s.removeImage(ctx, p.Image)
		}
		return domain.Product{}, fmt.Errorf("service.ProductService.Create: %w", err)
	}
	return created, nil
}

// Update validates draft and overwrites product id, replacing its tags.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, draft domain.ProductDraft) (domain.Product, error) {
	p, refs, err := s.validate(draft)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = id

	updated, err := s.repo.Update(ctx, p, refs)
	if err != nil {
		return domain.Product{}, fmt.Errorf("service.ProductService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes product id. Its stored image is deleted best-effort: a
// failure there is logged and the deletion still succeeds.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("service.ProductService.Delete: %w", err)
	}
	if deleted.Image != "" {
		s.removeImage(ctx, deleted.Image)
	}
	return nil
}

func (s *ProductService) removeImage(ctx context.Context, ref string) {
	if s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		s.logger.WarnContext(ctx, "product image not deleted", "image", ref, "error", err)
	}
}

// validate trims and checks a draft and returns the product to write and its
// normalised tag references.
func (s *ProductService) validate(draft domain.ProductDraft) (domain.Product, []domain.TagRef, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return domain.Product{}, nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return domain.Product{}, nil, fmt.Errorf("%w: name must not exceed %d characters", domain.ErrValidation, MaxNameLength)
	}
	description := strings.TrimSpace(draft.Description)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return domain.Product{}, nil, fmt.Errorf("%w: description must not exceed %d characters", domain.ErrValidation, MaxDescriptionLength)
	}
	if draft.Price.IsNegative() {
		return domain.Product{}, nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if draft.Price.GreaterThan(MaxPrice) {
		return domain.Product{}, nil, fmt.Errorf("%w: price must not exceed %s", domain.ErrValidation, MaxPrice.StringFixed(2))
	}
	if !draft.Price.Round(2).Equal(draft.Price) {
		return domain.Product{}, nil, fmt.Errorf("%w: price must have at most two decimal places", domain.ErrValidation)
	}
	if len(draft.Tags) > MaxTagsPerProduct {
		return domain.Product{}, nil, fmt.Errorf("%w: at most %d tags per product", domain.ErrValidation, MaxTagsPerProduct)
	}

	refs := make([]domain.TagRef, 0, len(draft.Tags))
	for _, ref := range draft.Tags {
		label, category, err := s.categories.normalize(ref.Label, ref.Category)
		if err != nil {
			return domain.Product{}, nil, err
		}
		refs = append(refs, domain.TagRef{Label: label, Category: category})
	}

	return domain.Product{
		Name:        name,
		Description: description,
		Price:       draft.Price,
	}, refs, nil
}
