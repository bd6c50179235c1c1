package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/boutique/internal/domain"
)

// AdminBackend is the authenticated product API the admin screens write to.
type AdminBackend interface {
	CreateProduct(ctx context.Context, draft domain.ProductDraft, image *domain.ImageUpload) (domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, draft domain.ProductDraft) (domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// Admin applies product changes to the backend first and mirrors them into
// the Store only once the backend has confirmed them. Each action is guarded
// so that a repeated trigger is rejected with ErrBusy until the first resolves.
type Admin struct {
	backend AdminBackend
	store   *Store
	guard   inflight
}

// NewAdmin wires an Admin to its backend and the store it keeps in sync.
func NewAdmin(backend AdminBackend, store *Store) *Admin {
	return &Admin{backend: backend, store: store}
}

// CreateProduct creates a product and adds the persisted record to the store.
func (a *Admin) CreateProduct(ctx context.Context, draft domain.ProductDraft, image *domain.ImageUpload) (domain.Product, error) {
	const key = "create-product"
	if !a.guard.begin(key) {
		return domain.Product{}, ErrBusy
	}
	defer a.guard.end(key)

	created, err := a.backend.CreateProduct(ctx, draft, image)
	if err != nil {
		return domain.Product{}, fmt.Errorf("catalog.Admin.CreateProduct: %w", err)
	}
	a.store.AddProduct(created)
	return created, nil
}

// UpdateProduct saves draft over product id and replaces the local copy.
func (a *Admin) UpdateProduct(ctx context.Context, id uuid.UUID, draft domain.ProductDraft) (domain.Product, error) {
	key := "update-product:" + id.String()
	if !a.guard.begin(key) {
		return domain.Product{}, ErrBusy
	}
	defer a.guard.end(key)

	updated, err := a.backend.UpdateProduct(ctx, id, draft)
	if err != nil {
		return domain.Product{}, fmt.Errorf("catalog.Admin.UpdateProduct: %w", err)
	}
	if !a.store.UpdateProduct(updated) {
		a.store.AddProduct(updated)
	}
	return updated, nil
}

// DeleteProduct deletes product id and, on success, drops it from the store
// and from the cart.
func (a *Admin) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	key := "delete-product:" + id.String()
	if !a.guard.begin(key) {
		return ErrBusy
	}
	defer a.guard.end(key)

	if err := a.backend.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("catalog.Admin.DeleteProduct: %w", err)
	}
	a.store.RemoveProduct(id)
	a.store.RemoveFromCart(id)
	return nil
}
