package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contentpilot-backend/internal/domains/credential"
)

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) credential.Repository {
	return &postgresRepository{db: db}
}

// Upsert enforces the at-most-one-row-per-(workspace, provider) invariant
// at the store level. A replaced key becomes valid again.
func (r *postgresRepository) Upsert(ctx context.Context, cred *credential.Credential) error {
	query := `
		INSERT INTO workspace_credentials (
			id, workspace_id, provider, ciphertext, key_hint, is_valid
		) VALUES (
			$1, $2, $3, $4, $5, TRUE
		)
		ON CONFLICT (workspace_id, provider)
		DO UPDATE SET
			ciphertext = EXCLUDED.ciphertext,
			key_hint = EXCLUDED.key_hint,
			is_valid = TRUE,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, query,
		cred.ID,
		cred.WorkspaceID,
		cred.Provider,
		cred.Ciphertext,
		cred.KeyHint,
	).Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}

	cred.IsValid = true
	return nil
}

func (r *postgresRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]credential.Credential, error) {
	query := `
		SELECT id, workspace_id, provider, ciphertext, key_hint, is_valid,
		       last_used_at, created_at, updated_at
		FROM workspace_credentials
		WHERE workspace_id = $1
		ORDER BY provider
	`

	rows, err := r.db.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []credential.Credential
	for rows.Next() {
		var c credential.Credential
		if err := rows.Scan(
			&c.ID, &c.WorkspaceID, &c.Provider, &c.Ciphertext, &c.KeyHint,
			&c.IsValid, &c.LastUsedAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, c)
	}

	return creds, rows.Err()
}

func (r *postgresRepository) Get(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider) (*credential.Credential, error) {
	query := `
		SELECT id, workspace_id, provider, ciphertext, key_hint, is_valid,
		       last_used_at, created_at, updated_at
		FROM workspace_credentials
		WHERE workspace_id = $1 AND provider = $2
	`

	var c credential.Credential
	err := r.db.QueryRow(ctx, query, workspaceID, provider).Scan(
		&c.ID, &c.WorkspaceID, &c.Provider, &c.Ciphertext, &c.KeyHint,
		&c.IsValid, &c.LastUsedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, credential.ErrNotFound
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}

	return &c, nil
}

func (r *postgresRepository) Delete(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM workspace_credentials WHERE workspace_id = $1 AND provider = $2`,
		workspaceID, provider,
	)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if result.RowsAffected() == 0 {
		return credential.ErrNotFound
	}

	return nil
}

func (r *postgresRepository) Invalidate(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider) error {
	result, err := r.db.Exec(ctx,
		`UPDATE workspace_credentials SET is_valid = FALSE, updated_at = NOW()
		 WHERE workspace_id = $1 AND provider = $2`,
		workspaceID, provider,
	)
	if err != nil {
		return fmt.Errorf("invalidate credential: %w", err)
	}
	if result.RowsAffected() == 0 {
		return credential.ErrNotFound
	}

	return nil
}

func (r *postgresRepository) TouchLastUsed(ctx context.Context, workspaceID uuid.UUID, provider credential.Provider) error {
	_, err := r.db.Exec(ctx,
		`UPDATE workspace_credentials SET last_used_at = NOW()
		 WHERE workspace_id = $1 AND provider = $2`,
		workspaceID, provider,
	)
	if err != nil {
		return fmt.Errorf("touch credential: %w", err)
	}

	return nil
}
