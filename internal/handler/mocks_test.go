package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/boutique/internal/catalog"
	"github.com/pkordes/boutique/internal/domain"
	"github.com/pkordes/boutique/internal/handler"
	"github.com/pkordes/boutique/internal/storage"
)

// Test doubles for the handler's servicer interfaces.
// Set only the method fields your test needs.

type mockProductServicer struct {
	list    func(ctx context.Context) ([]domain.Product, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Product, error)
	create  func(ctx context.Context, draft domain.ProductDraft, image *domain.ImageUpload) (domain.Product, error)
	update  func(ctx context.Context, id uuid.UUID, draft domain.ProductDraft) (domain.Product, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProductServicer) List(ctx context.Context) ([]domain.Product, error) {
	return m.list(ctx)
}
func (m *mockProductServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return m.getByID(ctx, id)
}
func (m *mockProductServicer) Create(ctx context.Context, d domain.ProductDraft, img *domain.ImageUpload) (domain.Product, error) {
	return m.create(ctx, d, img)
}
func (m *mockProductServicer) Update(ctx context.Context, id uuid.UUID, d domain.ProductDraft) (domain.Product, error) {
	return m.update(ctx, id, d)
}
func (m *mockProductServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockTagServicer struct {
	list   func(ctx context.Context, category, prefix string) ([]domain.Tag, error)
	create func(ctx context.Context, label, category string) (domain.Tag, error)
	update func(ctx context.Context, id uuid.UUID, label, category string) (domain.Tag, error)
	delete func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTagServicer) List(ctx context.Context, category, prefix string) ([]domain.Tag, error) {
	return m.list(ctx, category, prefix)
}
func (m *mockTagServicer) Create(ctx context.Context, label, category string) (domain.Tag, error) {
	return m.create(ctx, label, category)
}
func (m *mockTagServicer) Update(ctx context.Context, id uuid.UUID, label, category string) (domain.Tag, error) {
	return m.update(ctx, id, label, category)
}
func (m *mockTagServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockOrderServicer struct {
	place func(ctx context.Context, email string, ids []uuid.UUID) (domain.Order, bool, error)
	list  func(ctx context.Context, p domain.PaginationParams) ([]domain.Order, int64, error)
}

func (m *mockOrderServicer) Place(ctx context.Context, email string, ids []uuid.UUID) (domain.Order, bool, error) {
	return m.place(ctx, email, ids)
}
func (m *mockOrderServicer) List(ctx context.Context, p domain.PaginationParams) ([]domain.Order, int64, error) {
	return m.list(ctx, p)
}

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.OrderExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.OrderExportRow, error) {
	return m.export(ctx)
}

type mockStorefrontServicer struct {
	page func(ctx context.Context, selected []string, page, perPage int) (catalog.Page, error)
}

func (m *mockStorefrontServicer) Page(ctx context.Context, selected []string, page, perPage int) (catalog.Page, error) {
	return m.page(ctx, selected, page, perPage)
}

// mockAuthServicer accepts the single session token validToken.
type mockAuthServicer struct {
	login func(ctx context.Context, username, password string) (domain.Session, error)
}

const validToken = "valid-token"

func (m *mockAuthServicer) Login(ctx context.Context, username, password string) (domain.Session, error) {
	return m.login(ctx, username, password)
}
func (m *mockAuthServicer) Authenticate(_ context.Context, token string) (string, error) {
	if token != validToken {
		return "", domain.ErrUnauthorized
	}
	return "admin", nil
}

type mockImageReader struct {
	open func(ctx context.Context, key string) (storage.Object, error)
}

func (m *mockImageReader) Open(ctx context.Context, key string) (storage.Object, error) {
	return m.open(ctx, key)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.ProductServicer    = (*mockProductServicer)(nil)
	_ handler.TagServicer        = (*mockTagServicer)(nil)
	_ handler.OrderServicer      = (*mockOrderServicer)(nil)
	_ handler.ExportServicer     = (*mockExportServicer)(nil)
	_ handler.StorefrontServicer = (*mockStorefrontServicer)(nil)
	_ handler.AuthServicer       = (*mockAuthServicer)(nil)
	_ handler.ImageReader        = (*mockImageReader)(nil)
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server into a chi router exactly as main.go does.
// A nil Auth gets the default mock so session-guarded routes work.
func newHTTPHandler(d handler.Deps) http.Handler {
	if d.Auth == nil {
		d.Auth = &mockAuthServicer{}
	}
	return handler.NewServer(d).Handler()
}

// authed adds a valid session to req.
func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+validToken)
	return req
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body *bytes.Buffer) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}

func productFixture() domain.Product {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.Product{
		ID:          uuid.New(),
		Name:        "Linen Shirt",
		Description: "Breathable summer shirt",
		Price:       decimal.RequireFromString("49.90"),
		Tags: []domain.Tag{
			{ID: uuid.New(), Label: "shirt", Category: "type", CreatedAt: now},
			{ID: uuid.New(), Label: "white", Category: "color", CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
