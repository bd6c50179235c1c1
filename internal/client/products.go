package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/boutique/internal/catalog"
	"github.com/pkordes/boutique/internal/domain"
)

var _ catalog.AdminBackend = (*Client)(nil)

type productBody struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Tags        []domain.TagRef `json:"tags"`
}

// ListProducts returns every product with its tags.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.doJSON(ctx, http.MethodGet, "/products", nil, nil, &products); err != nil {
		return nil, fmt.Errorf("client.Client.ListProducts: %w", err)
	}
	return products, nil
}

// GetProduct returns one product.
func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	var p domain.Product
	if err := c.doJSON(ctx, http.MethodGet, "/products/"+id.String(), nil, nil, &p); err != nil {
		return domain.Product{}, fmt.Errorf("client.Client.GetProduct: %w", err)
	}
	return p, nil
}

// CreateProduct uploads a new product as multipart/form-data. image may be nil.
func (c *Client) CreateProduct(ctx context.Context, draft domain.ProductDraft, image *domain.ImageUpload) (domain.Product, error) {
	body, contentType, err := productForm(draft, image)
	if err != nil {
		return domain.Product{}, fmt.Errorf("client.Client.CreateProduct: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/products", nil, body, contentType)
	if err != nil {
		return domain.Product{}, fmt.Errorf("client.Client.CreateProduct: %w", err)
	}
	var p domain.Product
	if err := c.do(req, &p); err != nil {
		return domain.Product{}, fmt.Errorf("client.Client.CreateProduct: %w", err)
	}
	return p, nil
}

// UpdateProduct replaces the writable fields of a product. The image is kept.
func (c *Client) UpdateProduct(ctx context.Context, id uuid.UUID, draft domain.ProductDraft) (domain.Product, error) {
	in := productBody{
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		Tags:        nonNilRefs(draft.Tags),
	}
	var p domain.Product
	if err := c.doJSON(ctx, http.MethodPut, "/products/"+id.String(), nil, in, &p); err != nil {
		return domain.Product{}, fmt.Errorf("client.Client.UpdateProduct: %w", err)
	}
	return p, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/products/"+id.String(), nil, nil, nil); err != nil {
		return fmt.Errorf("client.Client.DeleteProduct: %w", err)
	}
	return nil
}

// productForm encodes draft and image as the multipart body POST /products
// expects.
func productForm(draft domain.ProductDraft, image *domain.ImageUpload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	tags, err := json.Marshal(nonNilRefs(draft.Tags))
	if err != nil {
		return nil, "", err
	}
	fields := [][2]string{
		{"name", draft.Name},
		{"description", draft.Description},
		{"price", draft.Price.String()},
		{"tags", string(tags)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if image != nil && len(image.Data) > 0 {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, image.Filename))
		ct := image.ContentType
		if ct == "" {
			ct = http.DetectContentType(image.Data)
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func nonNilRefs(refs []domain.TagRef) []domain.TagRef {
	if refs == nil {
		return []domain.TagRef{}
	}
	return refs
}
