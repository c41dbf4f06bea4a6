// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// analytics_test.go provides shared infrastructure for aggregator and
// recorder integration tests. Tests are skipped when PostgreSQL or
// Valkey are unavailable.
package analytics

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/store"
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

// testValkeyClient returns a Redis client for tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"post:impressions:*", "category:impressions:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv bundles the stores and a fixture post/category for tests.
type testEnv struct {
	db         *sql.DB
	posts      *store.PostStore
	categories *store.CategoryStore
	analytics  *store.AnalyticsStore
	category   *models.Category
	post       *models.Post
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	env := &testEnv{
		db:         db,
		posts:      store.NewPostStore(db),
		categories: store.NewCategoryStore(db),
		analytics:  store.NewAnalyticsStore(db),
	}

	ctx := context.Background()
	category, err := env.categories.Create(ctx, &models.Category{
		Name: "Analytics Fixture",
		Slug: "test-analytics-" + uuid.NewString()[:8],
	})
	if err != nil {
		t.Fatalf("create fixture category: %v", err)
	}
	t.Cleanup(func() { env.categories.Delete(ctx, category.ID) })
	env.category = category

	post, err := env.posts.Create(ctx, &models.Post{
		CategoryID:  category.ID,
		Title:       "Analytics Fixture Post",
		Description: "fixture",
		Content:     "<p>fixture</p>",
		Slug:        "test-fixture-" + uuid.NewString()[:8],
		Status:      models.PostStatusPublished,
	})
	if err != nil {
		t.Fatalf("create fixture post: %v", err)
	}
	t.Cleanup(func() { env.posts.Delete(ctx, post.ID) })
	env.post = post

	return env
}
