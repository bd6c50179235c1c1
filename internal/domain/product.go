// Package domain contains the core data types for the Boutique catalog.
// This package has no dependencies on other internal packages and is
// imported by every other internal package (repo, service, handler, catalog).
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item. Image is a reference path served by the file
// storage collaborator (e.g. "/uploads/img-abc.png") and is empty when the
// product has no picture.
type Product struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image,omitempty"`
	ImageBlurHash string          `json:"image_blurhash,omitempty"`
	Tags          []Tag           `json:"tags"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// HasLabel reports whether the product carries a tag with exactly label.
func (p Product) HasLabel(label string) bool {
	for _, t := range p.Tags {
		if t.Label == label {
			return true
		}
	}
	return false
}

// ProductDraft carries the writable fields of a product from the HTTP layer
// to the service layer. Tags are resolved by label on save.
type ProductDraft struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Tags        []TagRef
}

// ImageUpload is an image payload accepted alongside a product draft.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
