package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contentpilot-backend/internal/domains/content"
	"contentpilot-backend/internal/domains/content/model"
	"contentpilot-backend/pkg/database"
)

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) content.Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateTopic(ctx context.Context, topic *model.Topic) error {
	if topic.ID == uuid.Nil {
		topic.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO topics (id, workspace_id, title, summary, keywords)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, topic.ID, topic.WorkspaceID, topic.Title, topic.Summary, topic.Keywords).Scan(&topic.CreatedAt)

	if err != nil {
		return fmt.Errorf("create topic: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetTopic(ctx context.Context, workspaceID, topicID uuid.UUID) (*model.Topic, error) {
	var t model.Topic
	err := r.db.QueryRow(ctx, `
		SELECT id, workspace_id, title, summary, keywords, created_at
		FROM topics
		WHERE id = $1 AND workspace_id = $2
	`, topicID, workspaceID).Scan(&t.ID, &t.WorkspaceID, &t.Title, &t.Summary, &t.Keywords, &t.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrTopicNotFound
		}
		return nil, fmt.Errorf("get topic: %w", err)
	}
	return &t, nil
}

func (r *postgresRepository) ListTopics(ctx context.Context, workspaceID uuid.UUID) ([]model.Topic, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, workspace_id, title, summary, keywords, created_at
		FROM topics
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []model.Topic
	for rows.Next() {
		var t model.Topic
		if err := rows.Scan(&t.ID, &t.WorkspaceID, &t.Title, &t.Summary, &t.Keywords, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (r *postgresRepository) CreateCampaign(ctx context.Context, campaign *model.Campaign, posts []model.Post) error {
	if campaign.ID == uuid.Nil {
		campaign.ID = uuid.New()
	}

	plan, err := json.Marshal(campaign.Plan)
	if err != nil {
		return fmt.Errorf("marshal campaign plan: %w", err)
	}

	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO campaigns (id, workspace_id, topic_id, week_start, plan)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at
		`, campaign.ID, campaign.WorkspaceID, campaign.TopicID, campaign.WeekStart, plan).Scan(&campaign.CreatedAt)
		if err != nil {
			return fmt.Errorf("create campaign: %w", err)
		}

		for i := range posts {
			p := &posts[i]
			if p.ID == uuid.Nil {
				p.ID = uuid.New()
			}
			p.CampaignID = campaign.ID

			err := tx.QueryRow(ctx, `
				INSERT INTO posts (id, campaign_id, workspace_id, scheduled_day, stage, objective, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING created_at, updated_at
			`, p.ID, p.CampaignID, p.WorkspaceID, p.ScheduledDay, p.Stage, p.Objective, p.Status).Scan(&p.CreatedAt, &p.UpdatedAt)
			if err != nil {
				return fmt.Errorf("create post: %w", err)
			}
		}
		return nil
	})
}

func (r *postgresRepository) GetCampaign(ctx context.Context, workspaceID, campaignID uuid.UUID) (*model.Campaign, error) {
	var c model.Campaign
	var plan []byte
	err := r.db.QueryRow(ctx, `
		SELECT id, workspace_id, topic_id, week_start, plan, created_at
		FROM campaigns
		WHERE id = $1 AND workspace_id = $2
	`, campaignID, workspaceID).Scan(&c.ID, &c.WorkspaceID, &c.TopicID, &c.WeekStart, &plan, &c.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}

	if err := json.Unmarshal(plan, &c.Plan); err != nil {
		return nil, fmt.Errorf("unmarshal campaign plan: %w", err)
	}
	return &c, nil
}

func (r *postgresRepository) ListCampaigns(ctx context.Context, workspaceID uuid.UUID) ([]model.Campaign, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, workspace_id, topic_id, week_start, plan, created_at
		FROM campaigns
		WHERE workspace_id = $1
		ORDER BY week_start DESC
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []model.Campaign
	for rows.Next() {
		var c model.Campaign
		var plan []byte
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.TopicID, &c.WeekStart, &plan, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		if err := json.Unmarshal(plan, &c.Plan); err != nil {
			return nil, fmt.Errorf("unmarshal campaign plan: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *postgresRepository) GetPost(ctx context.Context, workspaceID, postID uuid.UUID) (*model.Post, error) {
	var p model.Post
	err := r.db.QueryRow(ctx, `
		SELECT id, campaign_id, workspace_id, scheduled_day, stage, objective, status, created_at, updated_at
		FROM posts
		WHERE id = $1 AND workspace_id = $2
	`, postID, workspaceID).Scan(
		&p.ID, &p.CampaignID, &p.WorkspaceID, &p.ScheduledDay,
		&p.Stage, &p.Objective, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

func (r *postgresRepository) ListPostsByCampaign(ctx context.Context, workspaceID, campaignID uuid.UUID) ([]model.Post, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, campaign_id, workspace_id, scheduled_day, stage, objective, status, created_at, updated_at
		FROM posts
		WHERE campaign_id = $1 AND workspace_id = $2
		ORDER BY scheduled_day
	`, campaignID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID, &p.CampaignID, &p.WorkspaceID, &p.ScheduledDay,
			&p.Stage, &p.Objective, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postgresRepository) UpdatePostBrief(ctx context.Context, postID uuid.UUID, stage model.FunnelStage, objective string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE posts SET stage = $2, objective = $3, updated_at = NOW()
		WHERE id = $1
	`, postID, stage, objective)
	if err != nil {
		return fmt.Errorf("update post brief: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrPostNotFound
	}
	return nil
}

// UpdatePostStatus is a compare-and-swap: the WHERE clause pins the status
// the caller validated against, so a concurrent transition loses cleanly
// instead of skipping a step.
func (r *postgresRepository) UpdatePostStatus(ctx context.Context, postID uuid.UUID, expected, next model.PostStatus) error {
	result, err := r.db.Exec(ctx, `
		UPDATE posts SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, postID, expected, next)
	if err != nil {
		return fmt.Errorf("update post status: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
			return fmt.Errorf("check post: %w", err)
		}
		if !exists {
			return content.ErrPostNotFound
		}
		return content.ErrStaleStatus
	}
	return nil
}

func (r *postgresRepository) CreateVersion(ctx context.Context, version *model.PostVersion, makeCurrent bool) error {
	if version.ID == uuid.Nil {
		version.ID = uuid.New()
	}

	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		// Position is assigned under the post row lock so concurrent appends
		// cannot collide.
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1 FOR UPDATE)`,
			version.PostID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("lock post: %w", err)
		}
		if !exists {
			return content.ErrPostNotFound
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO post_versions (id, post_id, position, hook, body, cta, source, is_current)
			VALUES (
				$1, $2,
				(SELECT COALESCE(MAX(position), 0) + 1 FROM post_versions WHERE post_id = $2),
				$3, $4, $5, $6, FALSE
			)
			RETURNING position, created_at
		`, version.ID, version.PostID, version.Hook, version.Body, version.CTA, version.Source).
			Scan(&version.Position, &version.CreatedAt)
		if err != nil {
			return fmt.Errorf("create version: %w", err)
		}

		if makeCurrent {
			if err := setCurrent(ctx, tx, version.PostID, version.ID); err != nil {
				return err
			}
			version.IsCurrent = true
		}
		return nil
	})
}

func (r *postgresRepository) GetVersion(ctx context.Context, versionID uuid.UUID) (*model.PostVersion, error) {
	var v model.PostVersion
	err := r.db.QueryRow(ctx, `
		SELECT id, post_id, position, hook, body, cta, source, is_current, created_at
		FROM post_versions
		WHERE id = $1
	`, versionID).Scan(&v.ID, &v.PostID, &v.Position, &v.Hook, &v.Body, &v.CTA, &v.Source, &v.IsCurrent, &v.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrVersionNotFound
		}
		return nil, fmt.Errorf("get version: %w", err)
	}
	return &v, nil
}

func (r *postgresRepository) ListVersions(ctx context.Context, postID uuid.UUID) ([]model.PostVersion, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, post_id, position, hook, body, cta, source, is_current, created_at
		FROM post_versions
		WHERE post_id = $1
		ORDER BY position
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []model.PostVersion
	for rows.Next() {
		var v model.PostVersion
		if err := rows.Scan(
			&v.ID, &v.PostID, &v.Position, &v.Hook, &v.Body, &v.CTA,
			&v.Source, &v.IsCurrent, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (r *postgresRepository) GetCurrentVersion(ctx context.Context, postID uuid.UUID) (*model.PostVersion, error) {
	var v model.PostVersion
	err := r.db.QueryRow(ctx, `
		SELECT id, post_id, position, hook, body, cta, source, is_current, created_at
		FROM post_versions
		WHERE post_id = $1 AND is_current
	`, postID).Scan(&v.ID, &v.PostID, &v.Position, &v.Hook, &v.Body, &v.CTA, &v.Source, &v.IsCurrent, &v.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrNoCurrentVersion
		}
		return nil, fmt.Errorf("get current version: %w", err)
	}
	return &v, nil
}

func (r *postgresRepository) SetCurrentVersion(ctx context.Context, postID, versionID uuid.UUID) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		var owner uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT post_id FROM post_versions WHERE id = $1`,
			versionID,
		).Scan(&owner)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return content.ErrVersionNotFound
			}
			return fmt.Errorf("get version owner: %w", err)
		}
		if owner != postID {
			return content.ErrVersionMismatch
		}

		return setCurrent(ctx, tx, postID, versionID)
	})
}

// setCurrent flips the current flag across all of a post's versions in one
// statement. Exactly one row ends up TRUE.
func setCurrent(ctx context.Context, tx pgx.Tx, postID, versionID uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`UPDATE post_versions SET is_current = (id = $2) WHERE post_id = $1`,
		postID, versionID,
	)
	if err != nil {
		return fmt.Errorf("set current version: %w", err)
	}
	return nil
}

func (r *postgresRepository) CreateReview(ctx context.Context, review *model.CriticReview) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}

	findings, err := json.Marshal(review.Findings)
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO critic_reviews (id, target_kind, target_id, verdict, findings)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, review.ID, review.TargetKind, review.TargetID, review.Verdict, findings).Scan(&review.CreatedAt)

	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListReviews(ctx context.Context, target model.ReviewTarget, targetID uuid.UUID) ([]model.CriticReview, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, target_kind, target_id, verdict, findings, created_at
		FROM critic_reviews
		WHERE target_kind = $1 AND target_id = $2
		ORDER BY created_at DESC
	`, target, targetID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.CriticReview
	for rows.Next() {
		var rev model.CriticReview
		var findings []byte
		if err := rows.Scan(&rev.ID, &rev.TargetKind, &rev.TargetID, &rev.Verdict, &findings, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		if err := json.Unmarshal(findings, &rev.Findings); err != nil {
			return nil, fmt.Errorf("unmarshal findings: %w", err)
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}
