package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/boutique/internal/domain"
	"github.com/pkordes/boutique/internal/notify"
	"github.com/pkordes/boutique/internal/repo"
)

// MaxOrderLines caps how many cart entries one order may carry.
const MaxOrderLines = 200

// OrderService places orders and lists them for the admin.
type OrderService struct {
	orders   repo.OrderRepo
	products repo.ProductRepo
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderService constructs an OrderService.
func NewOrderService(orders repo.OrderRepo, products repo.ProductRepo, notifier notify.Notifier, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{orders: orders, products: products, notifier: notifier, logger: logger, now: time.Now}
}

// WithClock replaces the time source used for notified_at.
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// Place records an order for the given cart entries and then sends the
// notification. Prices come from the catalog, not from the caller; every ID
// must name an existing product. Repeated IDs become repeated lines.
//
// The order is persisted before the notification is attempted. If dispatch
// fails the order stands, notified is false and the failure is logged.
func (s *OrderService) Place(ctx context.Context, email string, productIDs []uuid.UUID) (order domain.Order, notified bool, err error) {
	email = strings.TrimSpace(email)
	addr, perr := mail.ParseAddress(email)
	if email == "" || perr != nil || addr.Address != email {
		return domain.Order{}, false, fmt.Errorf("%w: a valid email address is required", domain.ErrValidation)
	}
	if len(productIDs) == 0 {
		return domain.Order{}, false, fmt.Errorf("%w: the cart is empty", domain.ErrValidation)
	}
	if len(productIDs) > MaxOrderLines {
		return domain.Order{}, false, fmt.Errorf("%w: at most %d items per order", domain.ErrValidation, MaxOrderLines)
	}

	found, err := s.products.ListByIDs(ctx, productIDs)
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("service.OrderService.Place: %w", err)
	}
	byID := make(map[uuid.UUID]domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	lines := make([]domain.OrderLine, 0, len(productIDs))
	for _, id := range productIDs {
		p, ok := byID[id]
		if !ok {
			return domain.Order{}, false, fmt.Errorf("%w: product %s no longer exists", domain.ErrValidation, id)
		}
		lines = append(lines, domain.OrderLine{ProductID: p.ID, Name: p.Name, Price: p.Price})
	}

	order, err = s.orders.Create(ctx, domain.Order{
		Email: email,
		Lines: lines,
		Total: domain.LinesTotal(lines),
	})
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("service.OrderService.Place: %w", err)
	}

	if err := s.notifier.NotifyOrder(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "order notification failed", "order_id", order.ID, "error", err)
		return order, false, nil
	}

	at := s.now().UTC()
	if err := s.orders.MarkNotified(ctx, order.ID, at); err != nil {
		s.logger.WarnContext(ctx, "order notification not recorded", "order_id", order.ID, "error", err)
	} else {
		order.NotifiedAt = &at
	}
	return order, true, nil
}

// List returns one page of orders, newest first, and the total count.
func (s *OrderService) List(ctx context.Context, p domain.PaginationParams) ([]domain.Order, int64, error) {
	return s.orders.ListPaged(ctx, p)
}
