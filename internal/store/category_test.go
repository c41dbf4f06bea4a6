// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestCategoryCreateCreatesAnalyticsRow(t *testing.T) {
	db := testDB(t)
	c := createTestCategory(t, db, nil, "cat-analytics")

	a, err := NewAnalyticsStore(db).CategoryAnalytics(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("CategoryAnalytics: %v", err)
	}
	if a == nil {
		t.Fatal("category created without analytics row")
	}
}

func TestCategoryListRootsExcludeChildren(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	rootX := createTestCategory(t, db, nil, "rootx")
	childY := createTestCategory(t, db, &rootX.ID, "childy")

	// Listing roots (no parent slug) returns x but never y.
	cats, _, err := s.List(ctx, CategoryQuery{Page: 1, PageSize: 100})
	if err != nil {
		t.Fatalf("List roots: %v", err)
	}
	var sawRoot, sawChild bool
	for _, c := range cats {
		if c.ID == rootX.ID {
			sawRoot = true
		}
		if c.ID == childY.ID {
			sawChild = true
		}
	}
	if !sawRoot {
		t.Error("root category missing from root listing")
	}
	if sawChild {
		t.Error("child category leaked into root listing")
	}
}

func TestCategoryListByParentSlug(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	parent := createTestCategory(t, db, nil, "parent")
	child := createTestCategory(t, db, &parent.ID, "child")
	createTestCategory(t, db, nil, "bystander")

	cats, total, err := s.List(ctx, CategoryQuery{
		ParentSlug: parent.Slug, Page: 1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("List children: %v", err)
	}
	if total != 1 || len(cats) != 1 || cats[0].ID != child.ID {
		t.Errorf("children of %q: got %d (total %d), want exactly the child", parent.Slug, len(cats), total)
	}
	if cats[0].ParentID == nil || *cats[0].ParentID != parent.ID {
		t.Errorf("child parent id: %v, want %v", cats[0].ParentID, parent.ID)
	}
}

func TestCategoryListSearch(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	marker := "qzpv" + uuid.NewString()[:8]
	hit := createTestCategory(t, db, nil, marker)
	createTestCategory(t, db, nil, "nomatch")

	cats, total, err := s.List(ctx, CategoryQuery{
		Search: marker, Page: 1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if total != 1 || len(cats) != 1 || cats[0].ID != hit.ID {
		t.Errorf("search %q: got %d (total %d)", marker, len(cats), total)
	}
}

func TestCategoryFindBySlug(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	c := createTestCategory(t, db, nil, "find-slug")

	found, err := s.FindBySlug(ctx, c.Slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found == nil || found.ID != c.ID {
		t.Errorf("FindBySlug: got %v, want %v", found, c.ID)
	}
	if !found.IsRoot() {
		t.Error("expected root category")
	}

	if found, _ := s.FindBySlug(ctx, "no-such-category"); found != nil {
		t.Error("expected nil for unknown slug")
	}
}
