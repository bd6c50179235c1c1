package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/boutique/internal/domain"
	"github.com/pkordes/boutique/internal/repo"
)

// DefaultCategories are the tag categories used when none are configured.
var DefaultCategories = Categories{"type", "theme", "color"}

// Categories is the configured set of tag category names.
type Categories []string

// Contains reports whether name is a configured category.
func (c Categories) Contains(name string) bool {
	return slices.Contains(c, name)
}

// normalize trims label and category and checks them.
func (c Categories) normalize(label, category string) (string, string, error) {
	label = strings.TrimSpace(label)
	category = strings.TrimSpace(category)
	if label == "" {
		return "", "", fmt.Errorf("%w: tag label is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(label) > MaxLabelLength {
		return "", "", fmt.Errorf("%w: tag label must not exceed %d characters", domain.ErrValidation, MaxLabelLength)
	}
	if !c.Contains(category) {
		return "", "", fmt.Errorf("%w: tag category must be one of: %s", domain.ErrValidation, strings.Join(c, ", "))
	}
	return label, category, nil
}

// TagService implements business logic for Tag operations.
// Labels are kept exactly as entered (after trimming); two labels that differ
// only by case are different tags.
type TagService struct {
	tags       repo.TagRepo
	categories Categories
}

// NewTagService constructs a TagService backed by the provided TagRepo.
func NewTagService(tags repo.TagRepo, categories Categories) *TagService {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	return &TagService{tags: tags, categories: categories}
}

// Categories returns the configured category names.
func (s *TagService) Categories() Categories {
	return s.categories
}

// List returns tags ordered by label, optionally narrowed to one category
// and to labels starting with prefix.
func (s *TagService) List(ctx context.Context, category, prefix string) ([]domain.Tag, error) {
	category = strings.TrimSpace(category)
	if category != "" && !s.categories.Contains(category) {
		return nil, fmt.Errorf("%w: unknown tag category %q", domain.ErrValidation, category)
	}
	return s.tags.List(ctx, category, prefix)
}

// Create validates and persists a new tag.
// Returns domain.ErrConflict when the label already exists.
func (s *TagService) Create(ctx context.Context, label, category string) (domain.Tag, error) {
	label, category, err := s.categories.normalize(label, category)
	if err != nil {
		return domain.Tag{}, err
	}
	t, err := s.tags.Create(ctx, label, category)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: %w", err)
	}
	return t, nil
}

// Update renames or recategorises tag id.
func (s *TagService) Update(ctx context.Context, id uuid.UUID, label, category string) (domain.Tag, error) {
	label, category, err := s.categories.normalize(label, category)
	if err != nil {
		return domain.Tag{}, err
	}
	t, err := s.tags.Update(ctx, domain.Tag{ID: id, Label: label, Category: category})
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: %w", err)
	}
	return t, nil
}

// Delete removes tag id. Returns domain.ErrInUse while a product carries it.
func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TagService.Delete: %w", err)
	}
	return nil
}
