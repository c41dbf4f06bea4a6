// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package analytics

import (
	"context"
	"fmt"
	"log/slog"

	"inkwell/internal/apperr"
	"inkwell/internal/store"
)

// Recorder applies view and click events to entity analytics. Views
// arrive asynchronously from the post detail path; clicks arrive from
// explicit click reports.
type Recorder struct {
	posts      *store.PostStore
	categories *store.CategoryStore
	analytics  *store.AnalyticsStore
}

// NewRecorder creates a recorder over the given stores.
func NewRecorder(posts *store.PostStore, categories *store.CategoryStore, analytics *store.AnalyticsStore) *Recorder {
	return &Recorder{posts: posts, categories: categories, analytics: analytics}
}

// RecordView counts a unique view of the post with the given slug.
// Idempotent per viewer address: only the first event from an address
// moves the views counter, no matter how much later the repeats come.
func (r *Recorder) RecordView(ctx context.Context, slug, viewerAddr string) error {
	post, err := r.posts.FindPublishedBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	if post == nil {
		return fmt.Errorf("record view %q: %w", slug, apperr.ErrNotFound)
	}

	counted, err := r.analytics.RecordPostView(ctx, post.ID, viewerAddr)
	if err != nil {
		return fmt.Errorf("record view %q: %w", slug, err)
	}
	if counted {
		slog.Debug("view counted", "slug", slug, "viewer", viewerAddr)
	}
	return nil
}

// RecordPostClick applies one click to the post with the given slug
// and returns the new click total. The click-through rate is
// recomputed as a second persistence step inside the store.
func (r *Recorder) RecordPostClick(ctx context.Context, slug string) (int64, error) {
	post, err := r.posts.FindPublishedBySlug(ctx, slug)
	if err != nil {
		return 0, fmt.Errorf("record post click: %w", err)
	}
	if post == nil {
		return 0, fmt.Errorf("the requested post does not exist: %w", apperr.ErrNotFound)
	}
	clicks, err := r.analytics.IncrementPostClicks(ctx, post.ID)
	if err != nil {
		return 0, fmt.Errorf("record post click %q: %w", slug, err)
	}
	return clicks, nil
}

// RecordCategoryClick applies one click to the category with the given
// slug and returns the new click total.
func (r *Recorder) RecordCategoryClick(ctx context.Context, slug string) (int64, error) {
	category, err := r.categories.FindBySlug(ctx, slug)
	if err != nil {
		return 0, fmt.Errorf("record category click: %w", err)
	}
	if category == nil {
		return 0, fmt.Errorf("the requested category does not exist: %w", apperr.ErrNotFound)
	}
	clicks, err := r.analytics.IncrementCategoryClicks(ctx, category.ID)
	if err != nil {
		return 0, fmt.Errorf("record category click %q: %w", slug, err)
	}
	return clicks, nil
}
