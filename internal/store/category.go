// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"inkwell/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

var categoryColumns = []string{
	"c.id", "c.parent_id", "c.name", "c.title", "c.description",
	"c.slug", "c.created_at", "c.updated_at",
}

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.ParentID, &c.Name, &c.Title, &c.Description,
		&c.Slug, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// categoryOrderings mirrors postOrderings for the category axes; the
// secondary direction applies to the category name.
func categoryOrderings(sorting SortMode, ordering OrderDir) []string {
	var clauses []string
	switch sorting {
	case SortNewest:
		clauses = append(clauses, "c.created_at DESC")
	case SortRecentlyUpdated:
		clauses = append(clauses, "c.updated_at DESC")
	case SortOldest:
		clauses = append(clauses, "c.created_at ASC")
	case SortMostViewed:
		clauses = append(clauses, "COALESCE(ca.views, 0) DESC")
	}
	switch ordering {
	case OrderAsc:
		clauses = append(clauses, "c.name ASC")
	case OrderDesc:
		clauses = append(clauses, "c.name DESC")
	}
	if len(clauses) == 0 {
		clauses = append(clauses, "c.name ASC")
	}
	return clauses
}

// List runs a category list query. With no parent slug it returns
// root categories; with one it returns that category's children.
// Returns the requested page and the total match count.
func (s *CategoryStore) List(ctx context.Context, q CategoryQuery) ([]models.Category, int, error) {
	base := psql.Select(categoryColumns...).
		From("categories c").
		LeftJoin("category_analytics ca ON ca.category_id = c.id")
	countQ := psql.Select("COUNT(*)").From("categories c")

	var scope sq.Sqlizer
	if q.ParentSlug == "" {
		scope = sq.Expr("c.parent_id IS NULL")
	} else {
		scope = sq.Expr(
			"c.parent_id = (SELECT id FROM categories WHERE slug = ?)",
			q.ParentSlug,
		)
	}
	base = base.Where(scope)
	countQ = countQ.Where(scope)

	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		pred := sq.Or{
			sq.ILike{"c.name": pattern},
			sq.ILike{"c.title": pattern},
			sq.ILike{"c.slug": pattern},
			sq.ILike{"c.description": pattern},
		}
		base = base.Where(pred)
		countQ = countQ.Where(pred)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build category count query: %w", err)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	listSQL, listArgs, err := base.
		OrderBy(categoryOrderings(q.Sorting, q.Ordering)...).
		Limit(uint64(q.PageSize)).
		Offset(uint64(offset(q.Page, q.PageSize))).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build category list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, total, rows.Err()
}

// FindBySlug retrieves a category by its slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, `
		SELECT id, parent_id, name, title, description, slug, created_at, updated_at
		FROM categories WHERE slug = $1
	`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Exists reports whether a category with the given id still exists.
func (s *CategoryStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("category exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new category together with its analytics row in
// one transaction.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create category begin: %w", err)
	}
	defer tx.Rollback()

	result := &models.Category{}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO categories (parent_id, name, title, description, slug)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, parent_id, name, title, description, slug, created_at, updated_at
	`, c.ParentID, c.Name, c.Title, c.Description, c.Slug,
	).Scan(
		&result.ID, &result.ParentID, &result.Name, &result.Title,
		&result.Description, &result.Slug, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO category_analytics (category_id) VALUES ($1)`, result.ID,
	); err != nil {
		return nil, fmt.Errorf("create category analytics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create category commit: %w", err)
	}
	return result, nil
}

// Delete removes a category by ID. Children, posts, and analytics
// cascade at the schema level.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
