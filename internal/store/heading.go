// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/slug"
)

// HeadingStore manages the ordered heading collections under posts.
type HeadingStore struct {
	db *sql.DB
}

// NewHeadingStore returns a new HeadingStore.
func NewHeadingStore(db *sql.DB) *HeadingStore {
	return &HeadingStore{db: db}
}

// ListByPostSlug returns a post's headings in document order.
func (s *HeadingStore) ListByPostSlug(ctx context.Context, postSlug string) ([]models.Heading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT h.id, h.post_id, h.title, h.slug, h.level, h.position
		FROM headings h
		JOIN posts p ON p.id = h.post_id
		WHERE p.slug = $1
		ORDER BY h.position
	`, postSlug)
	if err != nil {
		return nil, fmt.Errorf("list headings: %w", err)
	}
	defer rows.Close()

	var items []models.Heading
	for rows.Next() {
		var h models.Heading
		if err := rows.Scan(&h.ID, &h.PostID, &h.Title, &h.Slug, &h.Level, &h.Position); err != nil {
			return nil, fmt.Errorf("scan heading: %w", err)
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

// Create inserts a heading. The slug is derived from the title when
// not supplied.
func (s *HeadingStore) Create(ctx context.Context, h *models.Heading) error {
	if h.Slug == "" {
		h.Slug = slug.Generate(h.Title)
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO headings (post_id, title, slug, level, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, h.PostID, h.Title, h.Slug, h.Level, h.Position).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("create heading: %w", err)
	}
	return nil
}
