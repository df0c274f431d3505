package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot-backend/internal/domains/workspace"
	"contentpilot-backend/internal/shared/apperror"
)

type memoryRepo struct {
	mu          sync.Mutex
	workspaces  map[uuid.UUID]workspace.Workspace
	memberships []workspace.Membership
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{workspaces: make(map[uuid.UUID]workspace.Workspace)}
}

func (r *memoryRepo) EnsureForUser(_ context.Context, userID uuid.UUID) (*workspace.Workspace, workspace.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.memberships {
		if m.UserID == userID {
			ws := r.workspaces[m.WorkspaceID]
			return &ws, m.Role, nil
		}
	}

	ws := workspace.Workspace{
		ID:        uuid.New(),
		Name:      "Personal workspace",
		OwnerID:   userID,
		CreatedAt: time.Now(),
	}
	r.workspaces[ws.ID] = ws
	r.memberships = append(r.memberships, workspace.Membership{
		WorkspaceID: ws.ID,
		UserID:      userID,
		Role:        workspace.RoleOwner,
		CreatedAt:   time.Now(),
	})
	return &ws, workspace.RoleOwner, nil
}

func (r *memoryRepo) GetByID(_ context.Context, workspaceID uuid.UUID) (*workspace.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[workspaceID]
	if !ok {
		return nil, workspace.ErrNotFound
	}
	return &ws, nil
}

func (r *memoryRepo) RoleOf(_ context.Context, workspaceID, userID uuid.UUID) (workspace.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.memberships {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			return m.Role, nil
		}
	}
	return "", workspace.ErrNotMember
}

func (r *memoryRepo) AddMember(_ context.Context, membership *workspace.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.memberships {
		if m.WorkspaceID == membership.WorkspaceID && m.UserID == membership.UserID {
			return workspace.ErrAlreadyMember
		}
	}
	r.memberships = append(r.memberships, *membership)
	return nil
}

func (r *memoryRepo) RemoveMember(_ context.Context, workspaceID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.memberships {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			if m.Role == workspace.RoleOwner {
				return workspace.ErrNotMember
			}
			r.memberships = append(r.memberships[:i], r.memberships[i+1:]...)
			return nil
		}
	}
	return workspace.ErrNotMember
}

func (r *memoryRepo) ListMembers(_ context.Context, workspaceID uuid.UUID) ([]workspace.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []workspace.Membership
	for _, m := range r.memberships {
		if m.WorkspaceID == workspaceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func TestEnsureForUserCreatesOnce(t *testing.T) {
	svc := NewWorkspaceService(newMemoryRepo())
	userID := uuid.New()

	ws1, role, err := svc.EnsureForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, workspace.RoleOwner, role)
	assert.Equal(t, userID, ws1.OwnerID)

	// Second contact resolves the same workspace instead of creating another.
	ws2, _, err := svc.EnsureForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, ws1.ID, ws2.ID)
}

func TestAddMemberRejectsOwnerRole(t *testing.T) {
	svc := NewWorkspaceService(newMemoryRepo())

	err := svc.AddMember(context.Background(), uuid.New(), uuid.New(), workspace.RoleOwner)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	err = svc.AddMember(context.Background(), uuid.New(), uuid.New(), workspace.Role("viewer"))
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestAddMemberTwiceConflicts(t *testing.T) {
	svc := NewWorkspaceService(newMemoryRepo())
	workspaceID := uuid.New()
	userID := uuid.New()

	require.NoError(t, svc.AddMember(context.Background(), workspaceID, userID, workspace.RoleEditor))

	err := svc.AddMember(context.Background(), workspaceID, userID, workspace.RoleEditor)
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestRemoveMemberNeverRemovesOwner(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewWorkspaceService(repo)
	userID := uuid.New()

	ws, _, err := svc.EnsureForUser(context.Background(), userID)
	require.NoError(t, err)

	err = svc.RemoveMember(context.Background(), ws.ID, userID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	role, err := repo.RoleOf(context.Background(), ws.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, workspace.RoleOwner, role)
}

func TestRemoveEditor(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewWorkspaceService(repo)
	workspaceID := uuid.New()
	editorID := uuid.New()

	require.NoError(t, svc.AddMember(context.Background(), workspaceID, editorID, workspace.RoleEditor))
	require.NoError(t, svc.RemoveMember(context.Background(), workspaceID, editorID))

	_, err := repo.RoleOf(context.Background(), workspaceID, editorID)
	assert.ErrorIs(t, err, workspace.ErrNotMember)
}
