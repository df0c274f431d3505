package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"contentpilot-backend/internal/domains/workspace"
	"contentpilot-backend/internal/shared/apperror"
)

type WorkspaceService interface {
	// EnsureForUser resolves (and on first contact creates) the caller's
	// workspace. Every authenticated request goes through this.
	EnsureForUser(ctx context.Context, userID uuid.UUID) (*workspace.Workspace, workspace.Role, error)

	Get(ctx context.Context, workspaceID uuid.UUID) (*workspace.Workspace, error)
	AddMember(ctx context.Context, workspaceID, userID uuid.UUID, role workspace.Role) error
	RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]workspace.Membership, error)
}

type workspaceService struct {
	repo workspace.Repository
}

func NewWorkspaceService(repo workspace.Repository) WorkspaceService {
	return &workspaceService{repo: repo}
}

func (s *workspaceService) EnsureForUser(ctx context.Context, userID uuid.UUID) (*workspace.Workspace, workspace.Role, error) {
	ws, role, err := s.repo.EnsureForUser(ctx, userID)
	if err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("ensure workspace: %w", err))
	}
	return ws, role, nil
}

func (s *workspaceService) Get(ctx context.Context, workspaceID uuid.UUID) (*workspace.Workspace, error) {
	ws, err := s.repo.GetByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, workspace.ErrNotFound) {
			return nil, apperror.NotFound("workspace not found")
		}
		return nil, apperror.Internal(err)
	}
	return ws, nil
}

func (s *workspaceService) AddMember(ctx context.Context, workspaceID, userID uuid.UUID, role workspace.Role) error {
	if !role.Valid() || role == workspace.RoleOwner {
		return apperror.Validation("role must be admin or editor")
	}

	err := s.repo.AddMember(ctx, &workspace.Membership{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	})
	if err != nil {
		if errors.Is(err, workspace.ErrAlreadyMember) {
			return apperror.Conflict("user is already a member")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *workspaceService) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	err := s.repo.RemoveMember(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, workspace.ErrNotMember) {
			return apperror.NotFound("membership not found")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *workspaceService) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]workspace.Membership, error) {
	members, err := s.repo.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return members, nil
}
