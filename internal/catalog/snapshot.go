package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/boutique/internal/domain"
)

// Snapshot is the durable copy of a Store used to survive restarts.
// It is a cache of convenience; the API remains the system of record.
type Snapshot struct {
	Products []domain.Product `json:"products"`
	Cart     []uuid.UUID      `json:"cart"`
	Selected []string         `json:"selected_tags"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// Snapshotter persists and restores Store snapshots.
// Load reports ok=false when nothing has been saved yet.
type Snapshotter interface {
	Load(ctx context.Context) (snap Snapshot, ok bool, err error)
	Save(ctx context.Context, snap Snapshot) error
}
