package credential

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for credential rows.
type Repository interface {
	// Upsert inserts or replaces the row for (workspace, provider).
	Upsert(ctx context.Context, cred *Credential) error

	// ListByWorkspace returns every row for the workspace, valid or not.
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Credential, error)

	// Get returns the row for (workspace, provider) or ErrNotFound.
	Get(ctx context.Context, workspaceID uuid.UUID, provider Provider) (*Credential, error)

	// Delete removes the row entirely. ErrNotFound when absent.
	Delete(ctx context.Context, workspaceID uuid.UUID, provider Provider) error

	// Invalidate flips is_valid to false without deleting audit history.
	Invalidate(ctx context.Context, workspaceID uuid.UUID, provider Provider) error

	// TouchLastUsed stamps last_used_at. Best-effort bookkeeping.
	TouchLastUsed(ctx context.Context, workspaceID uuid.UUID, provider Provider) error
}
