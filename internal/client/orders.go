package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/pkordes/boutique/internal/domain"
)

// OrderPage is one page of GET /admin/orders.
type OrderPage struct {
	Data       []domain.Order `json:"data"`
	Pagination struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
	} `json:"pagination"`
}

type placeOrderBody struct {
	Email      string      `json:"email"`
	ProductIDs []uuid.UUID `json:"product_ids"`
}

type placeOrderResponse struct {
	Order    domain.Order `json:"order"`
	Notified bool         `json:"notified"`
}

// PlaceOrder submits a checkout. One product ID per cart entry; repeats are
// kept. notified reports whether the shop was emailed.
func (c *Client) PlaceOrder(ctx context.Context, email string, productIDs []uuid.UUID) (order domain.Order, notified bool, err error) {
	var out placeOrderResponse
	in := placeOrderBody{Email: email, ProductIDs: productIDs}
	if err := c.doJSON(ctx, http.MethodPost, "/orders", nil, in, &out); err != nil {
		return domain.Order{}, false, fmt.Errorf("client.Client.PlaceOrder: %w", err)
	}
	return out.Order, out.Notified, nil
}

// ListOrders returns one page of orders, newest first. Zero page or limit
// leaves the server default.
func (c *Client) ListOrders(ctx context.Context, page, limit int) (OrderPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out OrderPage
	if err := c.doJSON(ctx, http.MethodGet, "/admin/orders", q, nil, &out); err != nil {
		return OrderPage{}, fmt.Errorf("client.Client.ListOrders: %w", err)
	}
	return out, nil
}

// ExportOrders streams the order export in format ("csv" or "json") to w.
func (c *Client) ExportOrders(ctx context.Context, format string, w io.Writer) error {
	q := url.Values{"format": {format}}
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/orders/export", q, nil, "")
	if err != nil {
		return fmt.Errorf("client.Client.ExportOrders: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client.Client.ExportOrders: %w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("client.Client.ExportOrders: %w", decodeError(resp))
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("client.Client.ExportOrders: %w: %w", ErrTransport, err)
	}
	return nil
}
