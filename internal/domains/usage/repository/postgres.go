package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"contentpilot-backend/internal/domains/usage"
)

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) usage.Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Insert(ctx context.Context, record *usage.Record) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO usage_records (id, workspace_id, task, provider, model, tokens_in, tokens_out, cost, byok)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, record.ID, record.WorkspaceID, record.Task, record.Provider, record.Model,
		record.TokensIn, record.TokensOut, record.Cost, record.BYOK).Scan(&record.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

func (r *postgresRepository) SummaryByWorkspace(ctx context.Context, workspaceID uuid.UUID, since time.Time) (*usage.Summary, error) {
	var s usage.Summary
	var cost *decimal.Decimal

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(tokens_in), 0), COALESCE(SUM(tokens_out), 0), SUM(cost)
		FROM usage_records
		WHERE workspace_id = $1 AND created_at >= $2
	`, workspaceID, since).Scan(&s.Calls, &s.TokensIn, &s.TokensOut, &cost)

	if err != nil {
		return nil, fmt.Errorf("summarize usage: %w", err)
	}

	if cost != nil {
		s.Cost = *cost
	} else {
		s.Cost = decimal.Zero
	}
	return &s, nil
}

func (r *postgresRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, since time.Time, limit int) ([]usage.Record, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, workspace_id, task, provider, model, tokens_in, tokens_out, cost, byok, created_at
		FROM usage_records
		WHERE workspace_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT $3
	`, workspaceID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	defer rows.Close()

	var records []usage.Record
	for rows.Next() {
		var rec usage.Record
		if err := rows.Scan(
			&rec.ID, &rec.WorkspaceID, &rec.Task, &rec.Provider, &rec.Model,
			&rec.TokensIn, &rec.TokensOut, &rec.Cost, &rec.BYOK, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan usage record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
