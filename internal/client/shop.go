package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkordes/boutique/internal/domain"
)

// ShopPage is one storefront page as composed by the server.
type ShopPage struct {
	Items         []domain.Product `json:"items"`
	Page          int              `json:"page"`
	PerPage       int              `json:"per_page"`
	TotalPages    int              `json:"total_pages"`
	TotalItems    int              `json:"total_items"`
	SelectedTags  []string         `json:"selected_tags"`
	AvailableTags []domain.Tag     `json:"available_tags"`
}

// Shop asks the server to compose a storefront page for the given tag labels.
func (c *Client) Shop(ctx context.Context, tags []string, page, perPage int) (ShopPage, error) {
	q := url.Values{}
	for _, t := range tags {
		q.Add("tag", t)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	var out ShopPage
	if err := c.doJSON(ctx, http.MethodGet, "/shop", q, nil, &out); err != nil {
		return ShopPage{}, fmt.Errorf("client.Client.Shop: %w", err)
	}
	return out, nil
}
