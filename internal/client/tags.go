package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/pkordes/boutique/internal/catalog"
	"github.com/pkordes/boutique/internal/domain"
)

var _ catalog.TagSource = (*Client)(nil)

type tagBody struct {
	Label    string `json:"label"`
	Category string `json:"category"`
}

// ListTags returns the tags of category sorted by label. An empty category
// lists every tag.
func (c *Client) ListTags(ctx context.Context, category string) ([]domain.Tag, error) {
	return c.SearchTags(ctx, category, "")
}

// SearchTags returns the tags of category whose label starts with prefix.
func (c *Client) SearchTags(ctx context.Context, category, prefix string) ([]domain.Tag, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if prefix != "" {
		q.Set("q", prefix)
	}
	var tags []domain.Tag
	if err := c.doJSON(ctx, http.MethodGet, "/tags", q, nil, &tags); err != nil {
		return nil, fmt.Errorf("client.Client.SearchTags: %w", err)
	}
	return tags, nil
}

// CreateTag creates a tag. A duplicate label yields domain.ErrConflict.
func (c *Client) CreateTag(ctx context.Context, label, category string) (domain.Tag, error) {
	var t domain.Tag
	in := tagBody{Label: label, Category: category}
	if err := c.doJSON(ctx, http.MethodPost, "/tags", nil, in, &t); err != nil {
		return domain.Tag{}, fmt.Errorf("client.Client.CreateTag: %w", err)
	}
	return t, nil
}

// UpdateTag renames or recategorizes a tag.
func (c *Client) UpdateTag(ctx context.Context, id uuid.UUID, label, category string) (domain.Tag, error) {
	var t domain.Tag
	in := tagBody{Label: label, Category: category}
	if err := c.doJSON(ctx, http.MethodPut, "/tags/"+id.String(), nil, in, &t); err != nil {
		return domain.Tag{}, fmt.Errorf("client.Client.UpdateTag: %w", err)
	}
	return t, nil
}

// DeleteTag removes a tag. A tag still on a product yields domain.ErrInUse.
func (c *Client) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/tags/"+id.String(), nil, nil, nil); err != nil {
		return fmt.Errorf("client.Client.DeleteTag: %w", err)
	}
	return nil
}
