package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pkordes/boutique/internal/domain"
)

// OrderRepo defines the persistence operations for Orders.
// Orders are append-only; the only later write records the notification.
type OrderRepo interface {
	// Create inserts an order with its lines and returns the persisted record.
	Create(ctx context.Context, o domain.Order) (domain.Order, error)

	// MarkNotified records when the notification for order id was dispatched.
	// Returns domain.ErrNotFound if the order does not exist.
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error

	// ListPaged returns one page of orders, newest first, and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Order, int64, error)

	// ListAll returns every order, oldest first.
	ListAll(ctx context.Context) ([]domain.Order, error)
}

// pgOrderRepo is the Postgres implementation of OrderRepo.
type pgOrderRepo struct {
	db db
}

// NewOrderRepo constructs an OrderRepo backed by the provided db connection.
func NewOrderRepo(db db) OrderRepo {
	return &pgOrderRepo{db: db}
}

const orderColumns = `id, email, total::text, details, created_at, notified_at`

// Create inserts an order row. Lines are stored as JSON in details.
func (r *pgOrderRepo) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	const q = `
		INSERT INTO orders (email, total, details)
		VALUES (@email, @total::numeric, @details::jsonb)
		RETURNING ` + orderColumns

	lines := o.Lines
	if lines == nil {
		lines = []domain.OrderLine{}
	}
	details, err := json.Marshal(lines)
	if err != nil {
		return domain.Order{}, fmt.Errorf("repo.OrderRepo.Create: marshal lines: %w", err)
	}

	args := pgx.NamedArgs{
		"email":   o.Email,
		"total":   o.Total.String(),
		"details": string(details),
	}
	created, err := scanOrder(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Order{}, fmt.Errorf("repo.OrderRepo.Create: %w", mapPgError(err))
	}
	return created, nil
}

// MarkNotified sets notified_at on an order.
func (r *pgOrderRepo) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	const q = `UPDATE orders SET notified_at = @at WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "at": at})
	if err != nil {
		return fmt.Errorf("repo.OrderRepo.MarkNotified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.OrderRepo.MarkNotified: %w", domain.ErrNotFound)
	}
	return nil
}

// ListPaged returns one page of orders ordered by created_at descending.
func (r *pgOrderRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Order, int64, error) {
	const count = `SELECT count(*) FROM orders`
	const q = `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, count).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.OrderRepo.ListPaged: count: %w", err)
	}

	orders, err := r.query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.OrderRepo.ListPaged: %w", err)
	}
	return orders, total, nil
}

// ListAll returns every order ordered by created_at ascending.
func (r *pgOrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	const q = `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at, id`

	orders, err := r.query(ctx, q, pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("repo.OrderRepo.ListAll: %w", err)
	}
	return orders, nil
}

func (r *pgOrderRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return orders, nil
}

// scanOrder maps a single database row into a domain.Order, decoding the
// JSON lines and the nullable notified_at.
func scanOrder(s scanner) (domain.Order, error) {
	var (
		o          domain.Order
		id         pgtype.UUID
		total      string
		details    []byte
		notifiedAt pgtype.Timestamptz
	)

	err := s.Scan(&id, &o.Email, &total, &details, &o.CreatedAt, &notifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, err
	}

	o.ID = uuid.UUID(id.Bytes)
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return domain.Order{}, fmt.Errorf("parse total %q: %w", total, err)
	}
	if err := json.Unmarshal(details, &o.Lines); err != nil {
		return domain.Order{}, fmt.Errorf("decode details: %w", err)
	}
	if notifiedAt.Valid {
		at := notifiedAt.Time
		o.NotifiedAt = &at
	}
	return o, nil
}
