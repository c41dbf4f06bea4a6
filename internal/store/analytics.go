// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// AnalyticsStore mutates the per-entity engagement counters. Post and
// category analytics share one schema shape, so the SQL is built once
// per operation against a target table. The click-through rate is
// always recomputed inside the same statement that changes clicks or
// impressions: concurrent mutations converge because the rate is a
// pure function of the two counters, never incremented on its own.
type AnalyticsStore struct {
	db *sql.DB
}

// NewAnalyticsStore returns a new AnalyticsStore.
func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

// target identifies which analytics table an operation works on.
type target struct {
	table string
	fk    string
}

var (
	postTarget     = target{table: "post_analytics", fk: "post_id"}
	categoryTarget = target{table: "category_analytics", fk: "category_id"}
)

// ensure creates the analytics row for an entity if it does not exist
// yet. Rows are normally created with the entity itself; this covers
// entities that predate that invariant and makes every mutation path
// safe to call on its own.
func (s *AnalyticsStore) ensure(ctx context.Context, t target, entityID uuid.UUID) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s) VALUES ($1)
		ON CONFLICT (%s) DO NOTHING
	`, t.table, t.fk, t.fk)
	if _, err := s.db.ExecContext(ctx, query, entityID); err != nil {
		return fmt.Errorf("ensure %s: %w", t.table, err)
	}
	return nil
}

// EnsurePost makes sure the post's analytics row exists.
func (s *AnalyticsStore) EnsurePost(ctx context.Context, postID uuid.UUID) error {
	return s.ensure(ctx, postTarget, postID)
}

// EnsureCategory makes sure the category's analytics row exists.
func (s *AnalyticsStore) EnsureCategory(ctx context.Context, categoryID uuid.UUID) error {
	return s.ensure(ctx, categoryTarget, categoryID)
}

// addImpressions merges a drained counter value into the analytics row
// and recomputes the rate from the new totals in the same statement.
func (s *AnalyticsStore) addImpressions(ctx context.Context, t target, entityID uuid.UUID, delta int64) error {
	if err := s.ensure(ctx, t, entityID); err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE %s SET
			impressions = impressions + $2,
			click_through_rate = CASE WHEN impressions + $2 > 0
				THEN clicks::double precision / (impressions + $2) * 100
				ELSE 0 END
		WHERE %s = $1
	`, t.table, t.fk)
	if _, err := s.db.ExecContext(ctx, query, entityID, delta); err != nil {
		return fmt.Errorf("add impressions %s: %w", t.table, err)
	}
	return nil
}

// AddPostImpressions merges drained impressions into a post's analytics.
func (s *AnalyticsStore) AddPostImpressions(ctx context.Context, postID uuid.UUID, delta int64) error {
	return s.addImpressions(ctx, postTarget, postID, delta)
}

// AddCategoryImpressions merges drained impressions into a category's analytics.
func (s *AnalyticsStore) AddCategoryImpressions(ctx context.Context, categoryID uuid.UUID, delta int64) error {
	return s.addImpressions(ctx, categoryTarget, categoryID, delta)
}

// incrementClicks applies one click and then recomputes the rate as a
// second persistence step. If the second step fails the row is left
// with incremented clicks and a stale rate, which the next click or
// impression flush repairs.
func (s *AnalyticsStore) incrementClicks(ctx context.Context, t target, entityID uuid.UUID) (int64, error) {
	if err := s.ensure(ctx, t, entityID); err != nil {
		return 0, err
	}

	var clicks int64
	query := fmt.Sprintf(
		`UPDATE %s SET clicks = clicks + 1 WHERE %s = $1 RETURNING clicks`,
		t.table, t.fk,
	)
	if err := s.db.QueryRowContext(ctx, query, entityID).Scan(&clicks); err != nil {
		return 0, fmt.Errorf("increment clicks %s: %w", t.table, err)
	}

	rateQuery := fmt.Sprintf(`
		UPDATE %s SET
			click_through_rate = CASE WHEN impressions > 0
				THEN clicks::double precision / impressions * 100
				ELSE 0 END
		WHERE %s = $1
	`, t.table, t.fk)
	if _, err := s.db.ExecContext(ctx, rateQuery, entityID); err != nil {
		return clicks, fmt.Errorf("recompute rate %s: %w", t.table, err)
	}
	return clicks, nil
}

// IncrementPostClicks applies a click report to a post.
func (s *AnalyticsStore) IncrementPostClicks(ctx context.Context, postID uuid.UUID) (int64, error) {
	return s.incrementClicks(ctx, postTarget, postID)
}

// IncrementCategoryClicks applies a click report to a category.
func (s *AnalyticsStore) IncrementCategoryClicks(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	return s.incrementClicks(ctx, categoryTarget, categoryID)
}

// RecordPostView counts a unique view of a post. The unique index on
// (post_id, ip_address) makes the operation idempotent per viewer:
// the views counter moves only when the insert actually inserted, so
// two concurrent first views from the same address still count once.
// Returns true when the view was counted.
func (s *AnalyticsStore) RecordPostView(ctx context.Context, postID uuid.UUID, ipAddress string) (bool, error) {
	if err := s.EnsurePost(ctx, postID); err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("record view begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO post_views (post_id, ip_address)
		VALUES ($1, $2)
		ON CONFLICT (post_id, ip_address) DO NOTHING
	`, postID, ipAddress)
	if err != nil {
		return false, fmt.Errorf("insert post view: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record view rows affected: %w", err)
	}
	if inserted == 0 {
		// Repeat view from a known address: no counter movement.
		return false, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE post_analytics SET views = views + 1 WHERE post_id = $1`, postID,
	); err != nil {
		return false, fmt.Errorf("increment views: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("record view commit: %w", err)
	}
	return true, nil
}

// get reads one analytics row.
func (s *AnalyticsStore) get(ctx context.Context, t target, entityID uuid.UUID) (*models.Analytics, error) {
	query := fmt.Sprintf(`
		SELECT id, %s, views, impressions, clicks, click_through_rate
		FROM %s WHERE %s = $1
	`, t.fk, t.table, t.fk)

	a := &models.Analytics{}
	err := s.db.QueryRowContext(ctx, query, entityID).Scan(
		&a.ID, &a.EntityID, &a.Views, &a.Impressions, &a.Clicks, &a.ClickThroughRate,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", t.table, err)
	}
	return a, nil
}

// PostAnalytics reads a post's analytics row. Returns nil when absent.
func (s *AnalyticsStore) PostAnalytics(ctx context.Context, postID uuid.UUID) (*models.Analytics, error) {
	return s.get(ctx, postTarget, postID)
}

// CategoryAnalytics reads a category's analytics row. Returns nil when absent.
func (s *AnalyticsStore) CategoryAnalytics(ctx context.Context, categoryID uuid.UUID) (*models.Analytics, error) {
	return s.get(ctx, categoryTarget, categoryID)
}
