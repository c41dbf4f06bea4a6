// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"
)

func TestRecordPostViewIdempotentPerAddress(t *testing.T) {
	db := testDB(t)
	s := NewAnalyticsStore(db)
	ctx := context.Background()

	cat := createTestCategory(t, db, nil, "views")
	p := createTestPost(t, db, cat.ID, "Viewed Post")

	counted, err := s.RecordPostView(ctx, p.ID, "203.0.113.9")
	if err != nil {
		t.Fatalf("RecordPostView: %v", err)
	}
	if !counted {
		t.Error("first view should count")
	}

	// Repeat views from the same address never move the counter.
	for _i := 0; _i < 3; _i++ {
		counted, err = s.RecordPostView(ctx, p.ID, "203.0.113.9")
		if err != nil {
			t.Fatalf("RecordPostView repeat: %v", err)
		}
		if counted {
			t.Error("repeat view counted")
		}
	}

	// A different address counts again.
	counted, err = s.RecordPostView(ctx, p.ID, "203.0.113.10")
	if err != nil {
		t.Fatalf("RecordPostView second address: %v", err)
	}
	if !counted {
		t.Error("view from new address should count")
	}

	a, err := s.PostAnalytics(ctx, p.ID)
	if err != nil {
		t.Fatalf("PostAnalytics: %v", err)
	}
	if a.Views != 2 {
		t.Errorf("views: got %d, want 2", a.Views)
	}

	// The unique index keeps exactly one audit row per (post, address).
	var n int64
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM post_views WHERE post_id = $1`, p.ID,
	).Scan(&n)
	if err != nil {
		t.Fatalf("count view rows: %v", err)
	}
	if n != 2 {
		t.Errorf("view rows: got %d, want 2", n)
	}
}

func TestClicksThenImpressionsRecomputeRate(t *testing.T) {
	db := testDB(t)
	s := NewAnalyticsStore(db)
	ctx := context.Background()

	cat := createTestCategory(t, db, nil, "ctr")
	p := createTestPost(t, db, cat.ID, "CTR Post")

	// Three clicks with zero impressions: rate stays 0.
	var clicks int64
	var err error
	for _i := 0; _i < 3; _i++ {
		clicks, err = s.IncrementPostClicks(ctx, p.ID)
		if err != nil {
			t.Fatalf("IncrementPostClicks: %v", err)
		}
	}
	if clicks != 3 {
		t.Errorf("clicks: got %d, want 3", clicks)
	}

	a, err := s.PostAnalytics(ctx, p.ID)
	if err != nil {
		t.Fatalf("PostAnalytics: %v", err)
	}
	if a.Clicks != 3 || a.Impressions != 0 || a.ClickThroughRate != 0 {
		t.Errorf("after clicks: %+v, want clicks=3 impressions=0 ctr=0", a)
	}

	// Ten impressions arrive from the aggregator: ctr becomes 30.
	if err := s.AddPostImpressions(ctx, p.ID, 10); err != nil {
		t.Fatalf("AddPostImpressions: %v", err)
	}

	a, err = s.PostAnalytics(ctx, p.ID)
	if err != nil {
		t.Fatalf("PostAnalytics: %v", err)
	}
	if a.Impressions != 10 {
		t.Errorf("impressions: got %d, want 10", a.Impressions)
	}
	if a.ClickThroughRate != 30 {
		t.Errorf("ctr: got %v, want 30", a.ClickThroughRate)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	db := testDB(t)
	s := NewAnalyticsStore(db)
	ctx := context.Background()

	cat := createTestCategory(t, db, nil, "ensure")
	p := createTestPost(t, db, cat.ID, "Ensure Post")

	// The row already exists from Create; ensure must not duplicate
	// or reset it.
	if _, err := s.IncrementPostClicks(ctx, p.ID); err != nil {
		t.Fatalf("IncrementPostClicks: %v", err)
	}
	if err := s.EnsurePost(ctx, p.ID); err != nil {
		t.Fatalf("EnsurePost: %v", err)
	}

	a, err := s.PostAnalytics(ctx, p.ID)
	if err != nil {
		t.Fatalf("PostAnalytics: %v", err)
	}
	if a.Clicks != 1 {
		t.Errorf("ensure reset counters: clicks = %d, want 1", a.Clicks)
	}
}

func TestCategoryClicksAndImpressions(t *testing.T) {
	db := testDB(t)
	s := NewAnalyticsStore(db)
	ctx := context.Background()

	cat := createTestCategory(t, db, nil, "cat-counters")

	clicks, err := s.IncrementCategoryClicks(ctx, cat.ID)
	if err != nil {
		t.Fatalf("IncrementCategoryClicks: %v", err)
	}
	if clicks != 1 {
		t.Errorf("clicks: got %d, want 1", clicks)
	}

	if err := s.AddCategoryImpressions(ctx, cat.ID, 4); err != nil {
		t.Fatalf("AddCategoryImpressions: %v", err)
	}

	a, err := s.CategoryAnalytics(ctx, cat.ID)
	if err != nil {
		t.Fatalf("CategoryAnalytics: %v", err)
	}
	if a.Clicks != 1 || a.Impressions != 4 {
		t.Errorf("counters: %+v, want clicks=1 impressions=4", a)
	}
	if a.ClickThroughRate != 25 {
		t.Errorf("ctr: got %v, want 25", a.ClickThroughRate)
	}
}
