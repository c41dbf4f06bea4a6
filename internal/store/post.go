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

// psql builds queries with PostgreSQL-style $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostStore handles all post-related database operations. Only
// published posts are reachable through its public query methods.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postColumns are the columns every post query selects, including the
// joined category reference and analytics view count.
var postColumns = []string{
	"p.id", "p.category_id", "p.title", "p.description", "p.content",
	"p.keywords", "p.slug", "p.status", "p.created_at", "p.updated_at",
	"c.id", "c.name", "c.slug",
	"COALESCE(pa.views, 0)",
}

// scanPost scans one joined post row.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	var ref models.CategoryRef
	err := scanner.Scan(
		&p.ID, &p.CategoryID, &p.Title, &p.Description, &p.Content,
		&p.Keywords, &p.Slug, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		&ref.ID, &ref.Name, &ref.Slug,
		&p.Views,
	)
	if err != nil {
		return nil, err
	}
	p.Category = &models.Category{ID: ref.ID, Name: ref.Name, Slug: ref.Slug}
	return &p, nil
}

// publishedBase returns the select builder shared by the list queries:
// published posts joined with their category and analytics row.
func (s *PostStore) publishedBase() sq.SelectBuilder {
	return psql.Select(postColumns...).
		From("posts p").
		Join("categories c ON c.id = p.category_id").
		LeftJoin("post_analytics pa ON pa.post_id = p.id").
		Where(sq.Eq{"p.status": models.PostStatusPublished})
}

// searchPredicate matches the search term against title, description,
// content, and keywords.
func searchPredicate(search string) sq.Sqlizer {
	pattern := "%" + search + "%"
	return sq.Or{
		sq.ILike{"p.title": pattern},
		sq.ILike{"p.description": pattern},
		sq.ILike{"p.content": pattern},
		sq.ILike{"p.keywords": pattern},
	}
}

// categoryPredicate interprets each filter token as a category UUID
// when it parses as one and as a category slug otherwise. Tokens
// combine with OR; the whole group ANDs with the other predicates.
func categoryPredicate(tokens []string) sq.Sqlizer {
	or := sq.Or{}
	for _, token := range tokens {
		if id, err := uuid.Parse(token); err == nil {
			or = append(or, sq.Eq{"c.id": id})
		} else {
			or = append(or, sq.Eq{"c.slug": token})
		}
	}
	return or
}

// postOrderings translates the two ordering axes into ORDER BY
// clauses. The sort mode is the primary ordering; the title direction
// applies as an independent secondary axis. With neither set, newest
// first is the default.
func postOrderings(sorting SortMode, ordering OrderDir) []string {
	var clauses []string
	switch sorting {
	case SortNewest:
		clauses = append(clauses, "p.created_at DESC")
	case SortRecentlyUpdated:
		clauses = append(clauses, "p.updated_at DESC")
	case SortOldest:
		clauses = append(clauses, "p.created_at ASC")
	case SortMostViewed:
		clauses = append(clauses, "COALESCE(pa.views, 0) DESC")
	}
	switch ordering {
	case OrderAsc:
		clauses = append(clauses, "p.title ASC")
	case OrderDesc:
		clauses = append(clauses, "p.title DESC")
	}
	if len(clauses) == 0 {
		clauses = append(clauses, "p.created_at DESC")
	}
	return clauses
}

// ListPublished runs a post list query and returns the requested page
// along with the total number of matching posts. A page past the end
// of the result set returns an empty slice, not an error.
func (s *PostStore) ListPublished(ctx context.Context, q ListQuery) ([]models.Post, int, error) {
	base := s.publishedBase()
	countQ := psql.Select("COUNT(*)").
		From("posts p").
		Join("categories c ON c.id = p.category_id").
		Where(sq.Eq{"p.status": models.PostStatusPublished})

	if q.Search != "" {
		pred := searchPredicate(q.Search)
		base = base.Where(pred)
		countQ = countQ.Where(pred)
	}
	if len(q.Categories) > 0 {
		pred := categoryPredicate(q.Categories)
		base = base.Where(pred)
		countQ = countQ.Where(pred)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build post count query: %w", err)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	base = base.OrderBy(postOrderings(q.Sorting, q.Ordering)...).
		Limit(uint64(q.PageSize)).
		Offset(uint64(offset(q.Page, q.PageSize)))

	listSQL, listArgs, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build post list query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, total, rows.Err()
}

// ListByCategory returns one page of published posts in the given
// category, newest first, with the total count.
func (s *PostStore) ListByCategory(ctx context.Context, categoryID uuid.UUID, page, pageSize int) ([]models.Post, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM posts
		WHERE category_id = $1 AND status = 'published'
	`, categoryID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count category posts: %w", err)
	}

	listSQL, args, err := s.publishedBase().
		Where(sq.Eq{"p.category_id": categoryID}).
		OrderBy("p.created_at DESC").
		Limit(uint64(pageSize)).
		Offset(uint64(offset(page, pageSize))).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build category posts query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list category posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, total, rows.Err()
}

// FindPublishedBySlug retrieves a published post by its slug.
// Returns nil if not found or not published.
func (s *PostStore) FindPublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	query, args, err := s.publishedBase().Where(sq.Eq{"p.slug": slug}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build post detail query: %w", err)
	}

	p, err := scanPost(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// Exists reports whether a post with the given id still exists. The
// aggregator uses this to discard counter keys for deleted posts.
func (s *PostStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("post exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new post together with its analytics row in one
// transaction, so a post never exists without analytics. Content
// creation itself belongs to the administrative collaborator; this
// operation exists for it, for seeding, and for tests.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create post begin: %w", err)
	}
	defer tx.Rollback()

	result := &models.Post{Category: p.Category, Views: 0}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO posts (category_id, title, description, content, keywords, slug, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, category_id, title, description, content, keywords,
		          slug, status, created_at, updated_at
	`, p.CategoryID, p.Title, p.Description, p.Content, p.Keywords, p.Slug, p.Status,
	).Scan(
		&result.ID, &result.CategoryID, &result.Title, &result.Description,
		&result.Content, &result.Keywords, &result.Slug, &result.Status,
		&result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO post_analytics (post_id) VALUES ($1)`, result.ID,
	); err != nil {
		return nil, fmt.Errorf("create post analytics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create post commit: %w", err)
	}
	return result, nil
}

// Delete removes a post by ID. Analytics, headings, and view rows
// cascade at the schema level.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
