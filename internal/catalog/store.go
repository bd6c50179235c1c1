package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/boutique/internal/domain"
)

// DefaultPageSize is the storefront page size before the shopper picks one.
const DefaultPageSize = 12

// PageSizes lists the page sizes offered by the storefront.
var PageSizes = []int{12, 24, 36}

const snapshotTimeout = 5 * time.Second

// Store owns the shopper's view of the catalog: the product collection, the
// cart, the selected filter tags and the page position.
//
// Every mutation swaps in a freshly built slice; a slice handed out by a
// reader is never written to again, so derived views stay consistent without
// copying. Callers must treat returned slices as read-only.
//
// After each mutation the store writes a snapshot through its Snapshotter.
// A failed write is logged and does not undo or fail the mutation.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
	cart     []uuid.UUID
	selected []string
	page     int
	pageSize int

	saveMu sync.Mutex
	snap   Snapshotter
	logger *slog.Logger
}

// NewStore builds a Store and rehydrates it from snap when a snapshot exists.
// snap may be nil, in which case nothing is persisted.
func NewStore(ctx context.Context, snap Snapshotter, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		products: []domain.Product{},
		cart:     []uuid.UUID{},
		selected: []string{},
		page:     1,
		pageSize: DefaultPageSize,
		snap:     snap,
		logger:   logger,
	}
	if snap == nil {
		return s
	}

	saved, ok, err := snap.Load(ctx)
	if err != nil {
		logger.WarnContext(ctx, "catalog snapshot unreadable, starting empty", "error", err)
		return s
	}
	if !ok {
		return s
	}
	s.restore(saved)
	logger.DebugContext(ctx, "catalog snapshot restored",
		"products", len(s.products),
		"cart", len(s.cart),
	)
	return s
}

func (s *Store) restore(saved Snapshot) {
	if saved.Products != nil {
		s.products = saved.Products
	}
	if saved.Cart != nil {
		s.cart = saved.Cart
	}
	if saved.Selected != nil {
		s.selected = saved.Selected
	}
	if saved.PageSize > 0 {
		s.pageSize = saved.PageSize
	}
	if saved.Page > 0 {
		s.page = saved.Page
	}
}

// ---- products --------------------------------------------------------------

// AddProduct appends p to the collection and returns it. A product without an
// ID gets a fresh one; products coming back from the API keep theirs.
func (s *Store) AddProduct(p domain.Product) domain.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.mutate(func() {
		next := make([]domain.Product, 0, len(s.products)+1)
		next = append(next, s.products...)
		s.products = append(next, p)
	})
	return p
}

// RemoveProduct drops the product with id. It reports whether one was removed.
// Cart entries pointing at it are left in place and simply stop resolving.
func (s *Store) RemoveProduct(id uuid.UUID) bool {
	removed := false
	s.mutate(func() {
		next := make([]domain.Product, 0, len(s.products))
		for _, p := range s.products {
			if p.ID == id {
				removed = true
				continue
			}
			next = append(next, p)
		}
		s.products = next
	})
	return removed
}

// UpdateProduct replaces the product sharing p's ID.
// It reports whether a product was replaced.
func (s *Store) UpdateProduct(p domain.Product) bool {
	updated := false
	s.mutate(func() {
		next := make([]domain.Product, len(s.products))
		for i, cur := range s.products {
			if cur.ID == p.ID {
				next[i] = p
				updated = true
				continue
			}
			next[i] = cur
		}
		s.products = next
	})
	return updated
}

// ReplaceProducts swaps in a whole collection, typically after a sync with
// the API.
func (s *Store) ReplaceProducts(products []domain.Product) {
	next := slices.Clone(products)
	if next == nil {
		next = []domain.Product{}
	}
	s.mutate(func() { s.products = next })
}

// Products returns the current collection.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

// Product looks up a product by ID.
func (s *Store) Product(id uuid.UUID) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findProduct(s.products, id)
}

// ---- cart ------------------------------------------------------------------

// AddToCart records one more entry for p. Entries are references; repeated
// additions produce repeated entries.
func (s *Store) AddToCart(p domain.Product) {
	s.mutate(func() {
		next := make([]uuid.UUID, 0, len(s.cart)+1)
		next = append(next, s.cart...)
		s.cart = append(next, p.ID)
	})
}

// RemoveFromCart drops every entry for the product with id.
func (s *Store) RemoveFromCart(id uuid.UUID) {
	s.mutate(func() {
		next := make([]uuid.UUID, 0, len(s.cart))
		for _, ref := range s.cart {
			if ref != id {
				next = append(next, ref)
			}
		}
		s.cart = next
	})
}

// ClearCart empties the cart.
func (s *Store) ClearCart() {
	s.mutate(func() { s.cart = []uuid.UUID{} })
}

// CartIDs returns the raw cart references in insertion order.
func (s *Store) CartIDs() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

// Cart resolves cart entries against the current collection.
// Entries whose product no longer exists are skipped.
func (s *Store) Cart() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(s.cart))
	for _, id := range s.cart {
		if p, ok := findProduct(s.products, id); ok {
			out = append(out, p)
		}
	}
	return out
}

// CartTotal sums the current price of every resolvable cart entry.
func (s *Store) CartTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Cart() {
		total = total.Add(p.Price)
	}
	return total
}

// ---- filter & paging -------------------------------------------------------

// ToggleFilterTag adds label to the selection, or removes it when already
// selected. The page goes back to 1 either way.
func (s *Store) ToggleFilterTag(label string) {
	s.mutate(func() {
		if slices.Contains(s.selected, label) {
			next := make([]string, 0, len(s.selected))
			for _, l := range s.selected {
				if l != label {
					next = append(next, l)
				}
			}
			s.selected = next
		} else {
			next := make([]string, 0, len(s.selected)+1)
			next = append(next, s.selected...)
			s.selected = append(next, label)
		}
		s.page = 1
	})
}

// SelectedTags returns the active filter labels in selection order.
func (s *Store) SelectedTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SetPageSize changes the page size and goes back to page 1.
func (s *Store) SetPageSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: page size must be positive", domain.ErrValidation)
	}
	s.mutate(func() {
		s.pageSize = n
		s.page = 1
	})
	return nil
}

// SetPage moves to page n. Pages past the end render empty.
func (s *Store) SetPage(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: page must be at least 1", domain.ErrValidation)
	}
	s.mutate(func() { s.page = n })
	return nil
}

// AvailableTags returns the distinct tags carried by the current collection.
func (s *Store) AvailableTags() []domain.Tag {
	return AvailableTags(s.Products())
}

// View composes the current storefront page.
func (s *Store) View() Page {
	s.mu.RLock()
	products, selected, pageSize, page := s.products, s.selected, s.pageSize, s.page
	s.mu.RUnlock()
	return Compose(products, selected, pageSize, page)
}

// ---- internals -------------------------------------------------------------

// mutate applies fn under the write lock, then persists a snapshot.
func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
	s.persist()
}

// persist writes the latest state. saveMu orders writers so the last state
// taken is also the last one written.
func (s *Store) persist() {
	if s.snap == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	snap := Snapshot{
		Products: s.products,
		Cart:     s.cart,
		Selected: s.selected,
		Page:     s.page,
		PageSize: s.pageSize,
	}
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	if err := s.snap.Save(ctx, snap); err != nil {
		s.logger.Warn("catalog snapshot not saved", "error", err)
	}
}

func findProduct(products []domain.Product, id uuid.UUID) (domain.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}
