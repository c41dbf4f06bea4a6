// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package analytics implements the engagement pipeline behind the
// public API: the aggregator that drains buffered impression counters
// into PostgreSQL, and the recorder that applies view and click events.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/counter"
	"inkwell/internal/store"
)

// Aggregator periodically drains the impression counter store into the
// durable analytics rows. One flush loop runs per entity type, and a
// loop never starts a pass while its previous pass is still running —
// passes for the same entity type are serialized by the loop itself.
type Aggregator struct {
	counters   counter.Store
	posts      *store.PostStore
	categories *store.CategoryStore
	analytics  *store.AnalyticsStore
	interval   time.Duration
}

// NewAggregator creates an aggregator flushing at the given interval.
func NewAggregator(
	counters counter.Store,
	posts *store.PostStore,
	categories *store.CategoryStore,
	analytics *store.AnalyticsStore,
	interval time.Duration,
) *Aggregator {
	return &Aggregator{
		counters:   counters,
		posts:      posts,
		categories: categories,
		analytics:  analytics,
		interval:   interval,
	}
}

// Run starts the flush loops and blocks until ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, entity := range []counter.EntityType{counter.EntityPost, counter.EntityCategory} {
		wg.Add(1)
		go func(entity counter.EntityType) {
			defer wg.Done()
			a.loop(ctx, entity)
		}(entity)
	}
	wg.Wait()
}

// loop flushes one entity type on a fixed tick. The pass runs inline,
// so a slow pass delays the next tick instead of overlapping it.
func (a *Aggregator) loop(ctx context.Context, entity counter.EntityType) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	slog.Info("aggregator loop started", "entity", entity, "interval", a.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("aggregator loop stopped", "entity", entity)
			return
		case <-ticker.C:
			if err := a.Flush(ctx, entity); err != nil {
				slog.Error("aggregator pass failed", "entity", entity, "error", err)
			}
		}
	}
}

// Flush runs one aggregation pass for an entity type: every pending
// counter key is resolved, merged into its analytics row, and deleted.
// Per-key ordering is persist-then-delete, so a crash in between
// double-counts at most that one key's buffered value on the next
// pass. A key whose persistence fails is kept for the next run.
func (a *Aggregator) Flush(ctx context.Context, entity counter.EntityType) error {
	ids, err := a.counters.PendingIDs(ctx, entity)
	if err != nil {
		return fmt.Errorf("flush %s: %w", entity, err)
	}
	if len(ids) == 0 {
		return nil
	}

	var flushed int
	for _, id := range ids {
		if err := a.flushKey(ctx, entity, id); err != nil {
			slog.Error("flush key failed, keeping for next run",
				"entity", entity,
				"id", id,
				"error", err,
			)
			continue
		}
		flushed++
	}

	slog.Info("aggregator pass complete",
		"entity", entity,
		"pending", len(ids),
		"flushed", flushed,
	)
	return nil
}

// flushKey merges one counter key into the durable store.
func (a *Aggregator) flushKey(ctx context.Context, entity counter.EntityType, id uuid.UUID) error {
	exists, err := a.exists(ctx, entity, id)
	if err != nil {
		return err
	}
	if !exists {
		// Entity deleted since the impression was buffered; the key
		// is stale and the count is discarded.
		slog.Debug("dropping counter for deleted entity", "entity", entity, "id", id)
		return a.counters.Delete(ctx, entity, id)
	}

	pending, err := a.counters.Value(ctx, entity, id)
	if err != nil {
		return err
	}
	if pending == 0 {
		return a.counters.Delete(ctx, entity, id)
	}

	if err := a.addImpressions(ctx, entity, id, pending); err != nil {
		return err
	}

	// Only after the merge is durable may the buffer be cleared.
	return a.counters.Delete(ctx, entity, id)
}

func (a *Aggregator) exists(ctx context.Context, entity counter.EntityType, id uuid.UUID) (bool, error) {
	if entity == counter.EntityCategory {
		return a.categories.Exists(ctx, id)
	}
	return a.posts.Exists(ctx, id)
}

func (a *Aggregator) addImpressions(ctx context.Context, entity counter.EntityType, id uuid.UUID, delta int64) error {
	if entity == counter.EntityCategory {
		return a.analytics.AddCategoryImpressions(ctx, id, delta)
	}
	return a.analytics.AddPostImpressions(ctx, id, delta)
}
