package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"contentpilot-backend/internal/ai"
	"contentpilot-backend/internal/domains/usage"
	"contentpilot-backend/internal/shared/apperror"
)

type UsageService interface {
	// Record books one AI call. Best effort: bookkeeping never fails the
	// operation that produced the tokens.
	Record(ctx context.Context, workspaceID uuid.UUID, task ai.Task, meta *ai.Meta)

	Summary(ctx context.Context, workspaceID uuid.UUID, since time.Time) (*usage.Summary, error)
	List(ctx context.Context, workspaceID uuid.UUID, since time.Time, limit int) ([]usage.Record, error)
}

type usageService struct {
	repo usage.Repository
}

func NewUsageService(repo usage.Repository) UsageService {
	return &usageService{repo: repo}
}

func (s *usageService) Record(ctx context.Context, workspaceID uuid.UUID, task ai.Task, meta *ai.Meta) {
	if meta == nil {
		return
	}

	record := &usage.Record{
		WorkspaceID: workspaceID,
		Task:        string(task),
		Provider:    string(meta.Provider),
		Model:       meta.Model,
		TokensIn:    meta.TokensIn,
		TokensOut:   meta.TokensOut,
		Cost:        usage.EstimateCost(meta.Model, meta.TokensIn, meta.TokensOut),
		BYOK:        meta.UsedWorkspaceKey,
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		log.Warn().Err(err).
			Str("workspace_id", workspaceID.String()).
			Str("task", string(task)).
			Msg("usage record dropped")
	}
}

func (s *usageService) Summary(ctx context.Context, workspaceID uuid.UUID, since time.Time) (*usage.Summary, error) {
	summary, err := s.repo.SummaryByWorkspace(ctx, workspaceID, since)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return summary, nil
}

func (s *usageService) List(ctx context.Context, workspaceID uuid.UUID, since time.Time, limit int) ([]usage.Record, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	records, err := s.repo.ListByWorkspace(ctx, workspaceID, since, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return records, nil
}
