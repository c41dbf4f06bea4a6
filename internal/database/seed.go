// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Seed populates the database with initial development data: a small
// category tree and a few published posts with headings. Analytics
// rows are created alongside each entity, matching the invariant the
// stores enforce at creation time. No-op if content already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return fmt.Errorf("seed check posts: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	engineering := uuid.New()
	databases := uuid.New()
	if _, err := tx.Exec(`
		INSERT INTO categories (id, parent_id, name, title, description, slug) VALUES
		($1, NULL, 'Engineering', 'Engineering Notes', 'Articles on building software', 'engineering'),
		($2, $1, 'Databases', 'Database Internals', 'Storage engines, indexes, query planning', 'databases')
	`, engineering, databases); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO category_analytics (category_id) VALUES ($1), ($2)
	`, engineering, databases); err != nil {
		return fmt.Errorf("seed category analytics: %w", err)
	}

	type seedPost struct {
		category uuid.UUID
		title    string
		slug     string
		status   string
	}
	posts := []seedPost{
		{engineering, "Designing a Write Buffer", "designing-a-write-buffer", "published"},
		{databases, "B-Trees in Practice", "b-trees-in-practice", "published"},
		{databases, "Unfinished Draft on WALs", "unfinished-draft-on-wals", "draft"},
	}

	for _, p := range posts {
		id := uuid.New()
		if _, err := tx.Exec(`
			INSERT INTO posts (id, category_id, title, description, content, keywords, slug, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, p.category, p.title, "Seed article: "+p.title,
			"<p>Seed content for "+p.title+".</p>", "seed,development", p.slug, p.status,
		); err != nil {
			return fmt.Errorf("seed post %q: %w", p.slug, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO post_analytics (post_id) VALUES ($1)
		`, id); err != nil {
			return fmt.Errorf("seed post analytics %q: %w", p.slug, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO headings (post_id, title, slug, level, position) VALUES
			($1, 'Introduction', 'introduction', 2, 0),
			($1, 'Conclusion', 'conclusion', 2, 1)
		`, id); err != nil {
			return fmt.Errorf("seed headings %q: %w", p.slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with development content",
		"categories", 2,
		"posts", len(posts),
	)
	return nil
}
