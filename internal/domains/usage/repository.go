package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Insert(ctx context.Context, record *Record) error
	SummaryByWorkspace(ctx context.Context, workspaceID uuid.UUID, since time.Time) (*Summary, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, since time.Time, limit int) ([]Record, error)
}
