package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/boutique/internal/catalog"
	"github.com/pkordes/boutique/internal/domain"
)

type mockAdminBackend struct {
	createProductFn func(ctx context.Context, draft domain.ProductDraft, image *domain.ImageUpload) (domain.Product, error)
	updateProductFn func(ctx context.Context, id uuid.UUID, draft domain.ProductDraft) (domain.Product, error)
	deleteProductFn func(ctx context.Context, id uuid.UUID) error
}

var _ catalog.AdminBackend = (*mockAdminBackend)(nil)

func (m *mockAdminBackend) CreateProduct(ctx context.Context, draft domain.ProductDraft, image *domain.ImageUpload) (domain.Product, error) {
	return m.createProductFn(ctx, draft, image)
}

func (m *mockAdminBackend) UpdateProduct(ctx context.Context, id uuid.UUID, draft domain.ProductDraft) (domain.Product, error) {
	return m.updateProductFn(ctx, id, draft)
}

func (m *mockAdminBackend) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.deleteProductFn(ctx, id)
}

func draft(name string) domain.ProductDraft {
	return domain.ProductDraft{Name: name, Price: decimal.RequireFromString("9.99")}
}

func TestAdmin_CreateProduct_AddsConfirmedRecord(t *testing.T) {
	store := newStore(t, nil)
	persisted := domain.Product{ID: uuid.New(), Name: "Mug", Image: "img_abc.png"}
	backend := &mockAdminBackend{
		createProductFn: func(_ context.Context, d domain.ProductDraft, image *domain.ImageUpload) (domain.Product, error) {
			assert.Equal(t, "Mug", d.Name)
			require.NotNil(t, image)
			return persisted, nil
		},
	}
	admin := catalog.NewAdmin(backend, store)

	got, err := admin.CreateProduct(context.Background(), draft("Mug"), &domain.ImageUpload{Filename: "mug.png"})

	require.NoError(t, err)
	assert.Equal(t, persisted.ID, got.ID)
	stored, ok := store.Product(persisted.ID)
	require.True(t, ok)
	assert.Equal(t, "img_abc.png", stored.Image)
}

func TestAdmin_CreateProduct_FailureLeavesStoreUntouched(t *testing.T) {
	store := newStore(t, nil)
	backend := &mockAdminBackend{
		createProductFn: func(context.Context, domain.ProductDraft, *domain.ImageUpload) (domain.Product, error) {
			return domain.Product{}, domain.ErrValidation
		},
	}
	admin := catalog.NewAdmin(backend, store)

	_, err := admin.CreateProduct(context.Background(), draft(""), nil)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, store.Products())
}

func TestAdmin_CreateProduct_RejectsDoubleSubmit(t *testing.T) {
	store := newStore(t, nil)
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &mockAdminBackend{
		createProductFn: func(_ context.Context, d domain.ProductDraft, _ *domain.ImageUpload) (domain.Product, error) {
			close(started)
			<-release
			return domain.Product{ID: uuid.New(), Name: d.Name}, nil
		},
	}
	admin := catalog.NewAdmin(backend, store)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := admin.CreateProduct(ctx, draft("Mug"), nil)
		done <- err
	}()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("create never reached the backend")
	}

	_, err := admin.CreateProduct(ctx, draft("Mug"), nil)
	assert.ErrorIs(t, err, catalog.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, store.Products(), 1)
}

func TestAdmin_UpdateProduct_ReplacesLocalCopy(t *testing.T) {
	store := newStore(t, nil)
	p := store.AddProduct(productWith("Mug"))
	backend := &mockAdminBackend{
		updateProductFn: func(_ context.Context, id uuid.UUID, d domain.ProductDraft) (domain.Product, error) {
			return domain.Product{ID: id, Name: d.Name}, nil
		},
	}
	admin := catalog.NewAdmin(backend, store)

	_, err := admin.UpdateProduct(context.Background(), p.ID, draft("Big Mug"))

	require.NoError(t, err)
	stored, _ := store.Product(p.ID)
	assert.Equal(t, "Big Mug", stored.Name)
	assert.Len(t, store.Products(), 1)
}

func TestAdmin_UpdateProduct_UnknownLocallyIsAdded(t *testing.T) {
	store := newStore(t, nil)
	id := uuid.New()
	backend := &mockAdminBackend{
		updateProductFn: func(_ context.Context, id uuid.UUID, d domain.ProductDraft) (domain.Product, error) {
			return domain.Product{ID: id, Name: d.Name}, nil
		},
	}
	admin := catalog.NewAdmin(backend, store)

	_, err := admin.UpdateProduct(context.Background(), id, draft("Hat"))

	require.NoError(t, err)
	_, ok := store.Product(id)
	assert.True(t, ok)
}

func TestAdmin_DeleteProduct_RemovesFromStoreAndCart(t *testing.T) {
	store := newStore(t, nil)
	mug := store.AddProduct(productWith("Mug"))
	store.AddToCart(mug)
	backend := &mockAdminBackend{
		deleteProductFn: func(context.Context, uuid.UUID) error { return nil },
	}
	admin := catalog.NewAdmin(backend, store)

	require.NoError(t, admin.DeleteProduct(context.Background(), mug.ID))

	assert.Empty(t, store.Products())
	assert.Empty(t, store.CartIDs())
}

func TestAdmin_DeleteProduct_FailureKeepsProduct(t *testing.T) {
	store := newStore(t, nil)
	mug := store.AddProduct(productWith("Mug"))
	backend := &mockAdminBackend{
		deleteProductFn: func(context.Context, uuid.UUID) error { return errors.New("timeout") },
	}
	admin := catalog.NewAdmin(backend, store)

	err := admin.DeleteProduct(context.Background(), mug.ID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.Admin.DeleteProduct")
	assert.Len(t, store.Products(), 1)
}
