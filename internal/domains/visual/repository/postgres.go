package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contentpilot-backend/internal/domains/visual"
	"contentpilot-backend/pkg/database"
)

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) visual.Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateConcepts(ctx context.Context, concepts []visual.Concept) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		for i := range concepts {
			c := &concepts[i]
			if c.ID == uuid.Nil {
				c.ID = uuid.New()
			}
			err := tx.QueryRow(ctx, `
				INSERT INTO visual_concepts (id, post_id, workspace_id, headline, style, description)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING created_at
			`, c.ID, c.PostID, c.WorkspaceID, c.Headline, c.Style, c.Description).Scan(&c.CreatedAt)
			if err != nil {
				return fmt.Errorf("create concept: %w", err)
			}
		}
		return nil
	})
}

func (r *postgresRepository) GetConcept(ctx context.Context, workspaceID, conceptID uuid.UUID) (*visual.Concept, error) {
	var c visual.Concept
	err := r.db.QueryRow(ctx, `
		SELECT id, post_id, workspace_id, headline, style, description, is_selected, created_at
		FROM visual_concepts
		WHERE id = $1 AND workspace_id = $2
	`, conceptID, workspaceID).Scan(
		&c.ID, &c.PostID, &c.WorkspaceID, &c.Headline, &c.Style,
		&c.Description, &c.IsSelected, &c.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, visual.ErrConceptNotFound
		}
		return nil, fmt.Errorf("get concept: %w", err)
	}
	return &c, nil
}

func (r *postgresRepository) ListConcepts(ctx context.Context, workspaceID, postID uuid.UUID) ([]visual.Concept, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, post_id, workspace_id, headline, style, description, is_selected, created_at
		FROM visual_concepts
		WHERE post_id = $1 AND workspace_id = $2
		ORDER BY created_at
	`, postID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	defer rows.Close()

	var concepts []visual.Concept
	for rows.Next() {
		var c visual.Concept
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.WorkspaceID, &c.Headline, &c.Style,
			&c.Description, &c.IsSelected, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		concepts = append(concepts, c)
	}
	return concepts, rows.Err()
}

func (r *postgresRepository) SelectConcept(ctx context.Context, postID, conceptID uuid.UUID) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		var owner uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT post_id FROM visual_concepts WHERE id = $1`,
			conceptID,
		).Scan(&owner)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return visual.ErrConceptNotFound
			}
			return fmt.Errorf("get concept owner: %w", err)
		}
		if owner != postID {
			return visual.ErrConceptMismatch
		}

		// One statement: the chosen concept gains the flag, siblings lose it.
		_, err = tx.Exec(ctx,
			`UPDATE visual_concepts SET is_selected = (id = $2) WHERE post_id = $1`,
			postID, conceptID,
		)
		if err != nil {
			return fmt.Errorf("select concept: %w", err)
		}
		return nil
	})
}

func (r *postgresRepository) CreateVersion(ctx context.Context, version *visual.Version, slides []visual.Slide) error {
	if version.ID == uuid.Nil {
		version.ID = uuid.New()
	}

	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO visual_versions (id, post_id, concept_id, workspace_id, kind, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at
		`, version.ID, version.PostID, version.ConceptID, version.WorkspaceID,
			version.Kind, version.Status).Scan(&version.CreatedAt, &version.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create visual version: %w", err)
		}

		for i := range slides {
			s := &slides[i]
			if s.ID == uuid.Nil {
				s.ID = uuid.New()
			}
			s.VisualVersionID = version.ID

			_, err := tx.Exec(ctx, `
				INSERT INTO visual_slides (id, visual_version_id, position, prompt)
				VALUES ($1, $2, $3, $4)
			`, s.ID, s.VisualVersionID, s.Position, s.Prompt)
			if err != nil {
				return fmt.Errorf("create slide: %w", err)
			}
		}

		version.Slides = slides
		return nil
	})
}

func (r *postgresRepository) GetVersion(ctx context.Context, workspaceID, versionID uuid.UUID) (*visual.Version, error) {
	var v visual.Version
	err := r.db.QueryRow(ctx, `
		SELECT id, post_id, concept_id, workspace_id, kind, status, created_at, updated_at
		FROM visual_versions
		WHERE id = $1 AND workspace_id = $2
	`, versionID, workspaceID).Scan(
		&v.ID, &v.PostID, &v.ConceptID, &v.WorkspaceID,
		&v.Kind, &v.Status, &v.CreatedAt, &v.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, visual.ErrVersionNotFound
		}
		return nil, fmt.Errorf("get visual version: %w", err)
	}

	slides, err := r.slidesOf(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	v.Slides = slides
	return &v, nil
}

func (r *postgresRepository) ListVersionsByPost(ctx context.Context, workspaceID, postID uuid.UUID) ([]visual.Version, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, post_id, concept_id, workspace_id, kind, status, created_at, updated_at
		FROM visual_versions
		WHERE post_id = $1 AND workspace_id = $2
		ORDER BY created_at DESC
	`, postID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list visual versions: %w", err)
	}
	defer rows.Close()

	var versions []visual.Version
	for rows.Next() {
		var v visual.Version
		if err := rows.Scan(
			&v.ID, &v.PostID, &v.ConceptID, &v.WorkspaceID,
			&v.Kind, &v.Status, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan visual version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range versions {
		slides, err := r.slidesOf(ctx, versions[i].ID)
		if err != nil {
			return nil, err
		}
		versions[i].Slides = slides
	}
	return versions, nil
}

func (r *postgresRepository) slidesOf(ctx context.Context, versionID uuid.UUID) ([]visual.Slide, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, visual_version_id, position, prompt, COALESCE(image_url, ''), rendered_at
		FROM visual_slides
		WHERE visual_version_id = $1
		ORDER BY position
	`, versionID)
	if err != nil {
		return nil, fmt.Errorf("list slides: %w", err)
	}
	defer rows.Close()

	var slides []visual.Slide
	for rows.Next() {
		var s visual.Slide
		if err := rows.Scan(&s.ID, &s.VisualVersionID, &s.Position, &s.Prompt, &s.ImageURL, &s.RenderedAt); err != nil {
			return nil, fmt.Errorf("scan slide: %w", err)
		}
		slides = append(slides, s)
	}
	return slides, rows.Err()
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, versionID uuid.UUID, expected, next visual.Status) error {
	result, err := r.db.Exec(ctx, `
		UPDATE visual_versions SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, versionID, expected, next)
	if err != nil {
		return fmt.Errorf("update visual status: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM visual_versions WHERE id = $1)`, versionID).Scan(&exists); err != nil {
			return fmt.Errorf("check visual version: %w", err)
		}
		if !exists {
			return visual.ErrVersionNotFound
		}
		return visual.ErrStaleStatus
	}
	return nil
}

func (r *postgresRepository) GetSlide(ctx context.Context, slideID uuid.UUID) (*visual.Slide, error) {
	var s visual.Slide
	err := r.db.QueryRow(ctx, `
		SELECT id, visual_version_id, position, prompt, COALESCE(image_url, ''), rendered_at
		FROM visual_slides
		WHERE id = $1
	`, slideID).Scan(&s.ID, &s.VisualVersionID, &s.Position, &s.Prompt, &s.ImageURL, &s.RenderedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, visual.ErrSlideNotFound
		}
		return nil, fmt.Errorf("get slide: %w", err)
	}
	return &s, nil
}

func (r *postgresRepository) SetSlideImage(ctx context.Context, slideID uuid.UUID, imageURL string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE visual_slides SET image_url = $2, rendered_at = NOW()
		WHERE id = $1
	`, slideID, imageURL)
	if err != nil {
		return fmt.Errorf("set slide image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return visual.ErrSlideNotFound
	}
	return nil
}

func (r *postgresRepository) PromoteIfComplete(ctx context.Context, versionID uuid.UUID) (bool, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE visual_versions SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		  AND NOT EXISTS (
			SELECT 1 FROM visual_slides
			WHERE visual_version_id = $1 AND image_url IS NULL
		  )
	`, versionID, visual.StatusGenerating, visual.StatusPendingQA)
	if err != nil {
		return false, fmt.Errorf("promote visual version: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *postgresRepository) ListStaleGenerating(ctx context.Context, cutoff time.Time) ([]visual.StaleSlide, error) {
	rows, err := r.db.Query(ctx, `
		SELECT v.workspace_id, v.id, s.id
		FROM visual_versions v
		JOIN visual_slides s ON s.visual_version_id = v.id
		WHERE v.status = $1 AND v.updated_at < $2 AND s.image_url IS NULL
	`, visual.StatusGenerating, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale slides: %w", err)
	}
	defer rows.Close()

	var stale []visual.StaleSlide
	for rows.Next() {
		var s visual.StaleSlide
		if err := rows.Scan(&s.WorkspaceID, &s.VisualVersionID, &s.SlideID); err != nil {
			return nil, fmt.Errorf("scan stale slide: %w", err)
		}
		stale = append(stale, s)
	}
	return stale, rows.Err()
}
