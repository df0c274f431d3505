package workspace

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// EnsureForUser returns the user's workspace membership, creating a
	// personal workspace with an owner membership on first contact. The
	// create path runs in one transaction.
	EnsureForUser(ctx context.Context, userID uuid.UUID) (*Workspace, Role, error)

	GetByID(ctx context.Context, workspaceID uuid.UUID) (*Workspace, error)
	RoleOf(ctx context.Context, workspaceID, userID uuid.UUID) (Role, error)
	AddMember(ctx context.Context, membership *Membership) error
	RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]Membership, error)
}
