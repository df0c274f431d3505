package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contentpilot-backend/internal/domains/workspace"
	"contentpilot-backend/pkg/database"
)

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) workspace.Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) EnsureForUser(ctx context.Context, userID uuid.UUID) (*workspace.Workspace, workspace.Role, error) {
	ws, role, err := r.membershipOf(ctx, userID)
	if err == nil {
		return ws, role, nil
	}
	if !errors.Is(err, workspace.ErrNotMember) {
		return nil, "", err
	}

	created := &workspace.Workspace{
		ID:      uuid.New(),
		Name:    "Personal workspace",
		OwnerID: userID,
	}

	err = database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO workspaces (id, name, owner_id)
			VALUES ($1, $2, $3)
			RETURNING created_at
		`, created.ID, created.Name, created.OwnerID).Scan(&created.CreatedAt)
		if err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO workspace_members (workspace_id, user_id, role)
			VALUES ($1, $2, $3)
		`, created.ID, userID, workspace.RoleOwner)
		if err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		// A concurrent first request may have won the race; fall back to a
		// fresh lookup before giving up.
		if ws, role, lookupErr := r.membershipOf(ctx, userID); lookupErr == nil {
			return ws, role, nil
		}
		return nil, "", err
	}

	return created, workspace.RoleOwner, nil
}

func (r *postgresRepository) membershipOf(ctx context.Context, userID uuid.UUID) (*workspace.Workspace, workspace.Role, error) {
	var ws workspace.Workspace
	var role workspace.Role

	err := r.db.QueryRow(ctx, `
		SELECT w.id, w.name, w.owner_id, w.created_at, m.role
		FROM workspace_members m
		JOIN workspaces w ON w.id = m.workspace_id
		WHERE m.user_id = $1
		ORDER BY m.created_at
		LIMIT 1
	`, userID).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt, &role)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", workspace.ErrNotMember
		}
		return nil, "", fmt.Errorf("lookup membership: %w", err)
	}
	return &ws, role, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, workspaceID uuid.UUID) (*workspace.Workspace, error) {
	var ws workspace.Workspace
	err := r.db.QueryRow(ctx, `
		SELECT id, name, owner_id, created_at FROM workspaces WHERE id = $1
	`, workspaceID).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workspace.ErrNotFound
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	return &ws, nil
}

func (r *postgresRepository) RoleOf(ctx context.Context, workspaceID, userID uuid.UUID) (workspace.Role, error) {
	var role workspace.Role
	err := r.db.QueryRow(ctx, `
		SELECT role FROM workspace_members WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, userID).Scan(&role)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", workspace.ErrNotMember
		}
		return "", fmt.Errorf("lookup role: %w", err)
	}
	return role, nil
}

func (r *postgresRepository) AddMember(ctx context.Context, membership *workspace.Membership) error {
	result, err := r.db.Exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (workspace_id, user_id) DO NOTHING
	`, membership.WorkspaceID, membership.UserID, membership.Role)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return workspace.ErrAlreadyMember
	}
	return nil
}

func (r *postgresRepository) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2 AND role <> $3
	`, workspaceID, userID, workspace.RoleOwner)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return workspace.ErrNotMember
	}
	return nil
}

func (r *postgresRepository) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]workspace.Membership, error) {
	rows, err := r.db.Query(ctx, `
		SELECT workspace_id, user_id, role, created_at
		FROM workspace_members
		WHERE workspace_id = $1
		ORDER BY created_at
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []workspace.Membership
	for rows.Next() {
		var m workspace.Membership
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
