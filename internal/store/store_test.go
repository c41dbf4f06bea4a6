// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides shared test infrastructure for store
// integration tests. Tests are skipped when PostgreSQL is unavailable.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkwell/internal/database"
	"inkwell/internal/models"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// createTestCategory inserts a category (with analytics) and removes
// it when the test finishes.
func createTestCategory(t *testing.T, db *sql.DB, parentID *uuid.UUID, name string) *models.Category {
	t.Helper()

	s := NewCategoryStore(db)
	c, err := s.Create(context.Background(), &models.Category{
		ParentID:    parentID,
		Name:        name,
		Title:       name + " Title",
		Description: "test category",
		Slug:        "test-" + name + "-" + uuid.NewString()[:8],
	})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() { s.Delete(context.Background(), c.ID) })
	return c
}

// createTestPost inserts a published post (with analytics) under the
// given category and removes it when the test finishes.
func createTestPost(t *testing.T, db *sql.DB, categoryID uuid.UUID, title string) *models.Post {
	t.Helper()
	return createTestPostStatus(t, db, categoryID, title, models.PostStatusPublished)
}

func createTestPostStatus(t *testing.T, db *sql.DB, categoryID uuid.UUID, title string, status models.PostStatus) *models.Post {
	t.Helper()

	s := NewPostStore(db)
	p, err := s.Create(context.Background(), &models.Post{
		CategoryID:  categoryID,
		Title:       title,
		Description: "test description for " + title,
		Content:     "<p>test content for " + title + "</p>",
		Keywords:    "test,store",
		Slug:        "test-" + uuid.NewString()[:13],
		Status:      status,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	t.Cleanup(func() { s.Delete(context.Background(), p.ID) })
	return p
}
