package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/boutique/internal/domain"
	"github.com/pkordes/boutique/internal/notify"
	"github.com/pkordes/boutique/internal/repo"
	"github.com/pkordes/boutique/internal/service"
	"github.com/pkordes/boutique/internal/storage"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs.

type mockProductRepo struct {
	list      func(ctx context.Context) ([]domain.Product, error)
	listByIDs func(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Product, error)
	create    func(ctx context.Context, p domain.Product, refs []domain.TagRef) (domain.Product, error)
	update    func(ctx context.Context, p domain.Product, refs []domain.TagRef) (domain.Product, error)
	delete    func(ctx context.Context, id uuid.UUID) (domain.Product, error)
}

func (m *mockProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	return m.list(ctx)
}
func (m *mockProductRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return m.getByID(ctx, id)
}
func (m *mockProductRepo) Create(ctx context.Context, p domain.Product, refs []domain.TagRef) (domain.Product, error) {
	return m.create(ctx, p, refs)
}
func (m *mockProductRepo) Update(ctx context.Context, p domain.Product, refs []domain.TagRef) (domain.Product, error) {
	return m.update(ctx, p, refs)
}
func (m *mockProductRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return m.delete(ctx, id)
}

var _ repo.ProductRepo = (*mockProductRepo)(nil)

type mockTagRepo struct {
	list    func(ctx context.Context, category, prefix string) ([]domain.Tag, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	create  func(ctx context.Context, label, category string) (domain.Tag, error)
	update  func(ctx context.Context, t domain.Tag) (domain.Tag, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTagRepo) List(ctx context.Context, category, prefix string) ([]domain.Tag, error) {
	return m.list(ctx, category, prefix)
}
func (m *mockTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	return m.getByID(ctx, id)
}
func (m *mockTagRepo) Create(ctx context.Context, label, category string) (domain.Tag, error) {
	return m.create(ctx, label, category)
}
func (m *mockTagRepo) Update(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	return m.update(ctx, t)
}
func (m *mockTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.TagRepo = (*mockTagRepo)(nil)

type mockOrderRepo struct {
	create       func(ctx context.Context, o domain.Order) (domain.Order, error)
	markNotified func(ctx context.Context, id uuid.UUID, at time.Time) error
	listPaged    func(ctx context.Context, p domain.PaginationParams) ([]domain.Order, int64, error)
	listAll      func(ctx context.Context) ([]domain.Order, error)
}

func (m *mockOrderRepo) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	return m.create(ctx, o)
}
func (m *mockOrderRepo) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.markNotified(ctx, id, at)
}
func (m *mockOrderRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Order, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockOrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return m.listAll(ctx)
}

var _ repo.OrderRepo = (*mockOrderRepo)(nil)

type mockImageStore struct {
	save   func(ctx context.Context, img domain.ImageUpload) (storage.Stored, error)
	delete func(ctx context.Context, ref string) error
}

func (m *mockImageStore) Save(ctx context.Context, img domain.ImageUpload) (storage.Stored, error) {
	return m.save(ctx, img)
}
func (m *mockImageStore) Delete(ctx context.Context, ref string) error {
	return m.delete(ctx, ref)
}

var _ service.ImageStore = (*mockImageStore)(nil)

type mockNotifier struct {
	notifyOrder func(ctx context.Context, o domain.Order) error
}

func (m *mockNotifier) NotifyOrder(ctx context.Context, o domain.Order) error {
	return m.notifyOrder(ctx, o)
}

var _ notify.Notifier = (*mockNotifier)(nil)
