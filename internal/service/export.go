package service

import (
	"context"
	"fmt"

	"github.com/pkordes/boutique/internal/domain"
	"github.com/pkordes/boutique/internal/repo"
)

// ExportService assembles a flat export of every order line.
type ExportService struct {
	orders repo.OrderRepo
}

// NewExportService constructs an ExportService backed by the provided repo.
func NewExportService(orders repo.OrderRepo) *ExportService {
	return &ExportService{orders: orders}
}

// Export returns one row per order line, oldest order first.
// Orders without lines contribute one row with empty line fields.
func (s *ExportService) Export(ctx context.Context) ([]domain.OrderExportRow, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := []domain.OrderExportRow{}
	for _, o := range orders {
		base := domain.OrderExportRow{
			OrderID:    o.ID.String(),
			Email:      o.Email,
			Total:      o.Total.StringFixed(2),
			CreatedAt:  o.CreatedAt,
			NotifiedAt: o.NotifiedAt,
		}
		if len(o.Lines) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, l := range o.Lines {
			row := base
			row.ProductID = l.ProductID.String()
			row.ProductName = l.Name
			row.Price = l.Price.StringFixed(2)
			rows = append(rows, row)
		}
	}
	return rows, nil
}
