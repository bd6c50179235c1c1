package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a label that can be attached to products.
// Label is unique across every category and compared case-sensitively for
// identity. Category is one of the configured category names (type, theme,
// color by default).
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// TagRef identifies a tag by label when the caller does not know (or care
// about) its ID. Product writes connect to an existing tag with the same
// label or create it in Category.
type TagRef struct {
	Label    string `json:"label"`
	Category string `json:"category"`
}

// Labels returns the labels of tags in order.
func Labels(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Label
	}
	return out
}
