package domain

import "time"

// OrderExportRow is a single row in the order export.
// It is a flat, denormalized view: one row per order line, with order fields
// repeated for every line of that order. Orders without lines yield one row
// with zero values for the line fields.
type OrderExportRow struct {
	// Order fields, repeated for every line of the order.
	OrderID    string
	Email      string
	Total      string // decimal string, e.g. "42.50"
	CreatedAt  time.Time
	NotifiedAt *time.Time

	// Line fields; zero values when the order has no lines.
	ProductID   string
	ProductName string
	Price       string
}
