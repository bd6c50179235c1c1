package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is an append-only record of a checkout. Lines is a snapshot of the
// cart at submission time; later product edits never change it.
// NotifiedAt is nil until the notification email has been dispatched.
type Order struct {
	ID         uuid.UUID       `json:"id"`
	Email      string          `json:"email"`
	Total      decimal.Decimal `json:"total"`
	Lines      []OrderLine     `json:"lines"`
	CreatedAt  time.Time       `json:"created_at"`
	NotifiedAt *time.Time      `json:"notified_at,omitempty"`
}

// OrderLine is one cart entry frozen into an order. Repeated additions of the
// same product produce repeated lines.
type OrderLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

// LinesTotal sums the price of every line.
func LinesTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price)
	}
	return total
}
