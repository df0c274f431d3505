package workspace

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role is a member's permission level inside a workspace. Owners and
// admins manage credentials and members; editors work on content.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor:
		return true
	}
	return false
}

// CanManage reports whether the role may administer the workspace
// (credentials, members).
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Workspace is the tenant boundary: credentials, topics, campaigns and
// usage all hang off one.
type Workspace struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Membership struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

var (
	ErrNotFound       = errors.New("workspace not found")
	ErrNotMember      = errors.New("user is not a workspace member")
	ErrAlreadyMember  = errors.New("user is already a workspace member")
	ErrOwnerImmutable = errors.New("the owner membership cannot be changed")
)
