// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package query implements the read path of the public API. Every
// operation follows the same shape: build the query fingerprint, try
// the cache, fall back to the database and populate the cache, and
// count one impression for every item included in the response. The
// impression side effect runs on both the hit and miss paths, so the
// cache never hides engagement from analytics.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/analytics"
	"inkwell/internal/apperr"
	"inkwell/internal/cache"
	"inkwell/internal/counter"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// viewRecordTimeout bounds the detached view-recording write.
const viewRecordTimeout = 5 * time.Second

// Service orchestrates cache, durable store, and impression counter
// for the public read surface.
type Service struct {
	posts      *store.PostStore
	categories *store.CategoryStore
	headings   *store.HeadingStore
	cache      *cache.QueryCache
	counters   counter.Store
	recorder   *analytics.Recorder
	pageSize   int
}

// NewService creates the query service. pageSize fixes the number of
// items per list page.
func NewService(
	posts *store.PostStore,
	categories *store.CategoryStore,
	headings *store.HeadingStore,
	qc *cache.QueryCache,
	counters counter.Store,
	recorder *analytics.Recorder,
	pageSize int,
) *Service {
	return &Service{
		posts:      posts,
		categories: categories,
		headings:   headings,
		cache:      qc,
		counters:   counters,
		recorder:   recorder,
		pageSize:   pageSize,
	}
}

// ListParams carries the post list query parameters as received from
// the HTTP layer.
type ListParams struct {
	Search     string
	Sorting    string
	Ordering   string
	Categories []string
	Page       int
}

// CategoryParams carries the category list query parameters.
type CategoryParams struct {
	ParentSlug string
	Search     string
	Sorting    string
	Ordering   string
	Page       int
}

// PostSummary is the post shape embedded in list responses.
type PostSummary struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Slug        string             `json:"slug"`
	Category    models.CategoryRef `json:"category"`
	ViewCount   int64              `json:"view_count"`
}

// PostPage is one page of a post list response.
type PostPage struct {
	Results []PostSummary `json:"results"`
	Total   int           `json:"count"`
	Page    int           `json:"page"`
	Pages   int           `json:"total_pages"`
}

// PostDetail is the full post shape served by the detail endpoint.
type PostDetail struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Content     string             `json:"content"`
	Keywords    string             `json:"keywords"`
	Slug        string             `json:"slug"`
	Category    models.CategoryRef `json:"category"`
	Headings    []models.Heading   `json:"headings"`
	ViewCount   int64              `json:"view_count"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CategorySummary is the category shape embedded in list responses.
type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// CategoryPage is one page of a category list response.
type CategoryPage struct {
	Results []CategorySummary `json:"results"`
	Total   int               `json:"count"`
	Page    int               `json:"page"`
	Pages   int               `json:"total_pages"`
}

// ListPosts serves a post list query through the cache.
func (s *Service) ListPosts(ctx context.Context, p ListParams) (*PostPage, error) {
	sorting := store.SortMode(p.Sorting)
	ordering := store.OrderDir(p.Ordering)
	if !sorting.Valid() {
		return nil, fmt.Errorf("unknown sorting %q: %w", p.Sorting, apperr.ErrValidation)
	}
	if !ordering.Valid() {
		return nil, fmt.Errorf("unknown ordering %q: %w", p.Ordering, apperr.ErrValidation)
	}
	page := normalizePage(p.Page)

	fp := cache.PostListFingerprint(p.Search, p.Sorting, p.Ordering, p.Categories, page)

	// The fingerprint encodes every query parameter, so a cached
	// entry already reflects search and filters: no re-filtering at
	// hit time.
	var cached PostPage
	if s.cache.GetJSON(ctx, fp, &cached) {
		s.countPostImpressions(ctx, cached.Results)
		return &cached, nil
	}

	posts, total, err := s.posts.ListPublished(ctx, store.ListQuery{
		Search:     p.Search,
		Sorting:    sorting,
		Ordering:   ordering,
		Categories: p.Categories,
		Page:       page,
		PageSize:   s.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if total == 0 {
		return nil, fmt.Errorf("no posts found: %w", apperr.ErrNotFound)
	}

	result := s.buildPostPage(posts, total, page)
	s.cache.SetJSON(ctx, fp, result)
	s.countPostImpressions(ctx, result.Results)
	return result, nil
}

// GetPostDetail serves a post detail query through the cache. On both
// the hit and miss paths a view event for (slug, viewer address) is
// recorded asynchronously: the response never waits on the view write.
func (s *Service) GetPostDetail(ctx context.Context, slug, viewerAddr string) (*PostDetail, error) {
	fp := cache.PostDetailFingerprint(slug)

	var cached PostDetail
	if s.cache.GetJSON(ctx, fp, &cached) {
		s.recordViewAsync(cached.Slug, viewerAddr)
		s.countImpression(ctx, counter.EntityPost, cached.ID)
		return &cached, nil
	}

	post, err := s.posts.FindPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("post detail: %w", err)
	}
	if post == nil {
		return nil, fmt.Errorf("the requested article is not available or does not exist: %w", apperr.ErrNotFound)
	}

	headings, err := s.headings.ListByPostSlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("post detail headings: %w", err)
	}

	detail := &PostDetail{
		ID:          post.ID,
		Title:       post.Title,
		Description: post.Description,
		Content:     post.Content,
		Keywords:    post.Keywords,
		Slug:        post.Slug,
		Category:    post.Category.Ref(),
		Headings:    headings,
		ViewCount:   post.Views,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
	s.cache.SetJSON(ctx, fp, detail)
	s.recordViewAsync(post.Slug, viewerAddr)
	s.countImpression(ctx, counter.EntityPost, post.ID)
	return detail, nil
}

// PostHeadings returns a post's headings in document order.
func (s *Service) PostHeadings(ctx context.Context, slug string) ([]models.Heading, error) {
	headings, err := s.headings.ListByPostSlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("post headings: %w", err)
	}
	return headings, nil
}

// ListCategories serves a category list query through the cache. With
// no parent slug it lists roots; with one it lists that category's
// children.
func (s *Service) ListCategories(ctx context.Context, p CategoryParams) (*CategoryPage, error) {
	sorting := store.SortMode(p.Sorting)
	ordering := store.OrderDir(p.Ordering)
	if !sorting.Valid() {
		return nil, fmt.Errorf("unknown sorting %q: %w", p.Sorting, apperr.ErrValidation)
	}
	if !ordering.Valid() {
		return nil, fmt.Errorf("unknown ordering %q: %w", p.Ordering, apperr.ErrValidation)
	}
	page := normalizePage(p.Page)

	fp := cache.CategoryListFingerprint(p.ParentSlug, p.Search, p.Sorting, p.Ordering, page)

	var cached CategoryPage
	if s.cache.GetJSON(ctx, fp, &cached) {
		s.countCategoryImpressions(ctx, cached.Results)
		return &cached, nil
	}

	categories, total, err := s.categories.List(ctx, store.CategoryQuery{
		ParentSlug: p.ParentSlug,
		Search:     p.Search,
		Sorting:    sorting,
		Ordering:   ordering,
		Page:       page,
		PageSize:   s.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if total == 0 {
		return nil, fmt.Errorf("no categories found: %w", apperr.ErrNotFound)
	}

	result := &CategoryPage{
		Results: make([]CategorySummary, 0, len(categories)),
		Total:   total,
		Page:    page,
		Pages:   totalPages(total, s.pageSize),
	}
	for _, c := range categories {
		result.Results = append(result.Results, CategorySummary{
			ID: c.ID, Name: c.Name, Slug: c.Slug,
		})
	}

	s.cache.SetJSON(ctx, fp, result)
	s.countCategoryImpressions(ctx, result.Results)
	return result, nil
}

// CategoryPosts serves one page of posts in a category. Not-found if
// the category is absent or holds no published posts at all.
func (s *Service) CategoryPosts(ctx context.Context, slug string, page int) (*PostPage, error) {
	page = normalizePage(page)
	fp := cache.CategoryPostsFingerprint(slug, page)

	var cached PostPage
	if s.cache.GetJSON(ctx, fp, &cached) {
		s.countPostImpressions(ctx, cached.Results)
		return &cached, nil
	}

	category, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("category posts: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("the requested category does not exist: %w", apperr.ErrNotFound)
	}

	posts, total, err := s.posts.ListByCategory(ctx, category.ID, page, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("category posts: %w", err)
	}
	if total == 0 {
		return nil, fmt.Errorf("no posts found in this category: %w", apperr.ErrNotFound)
	}

	result := s.buildPostPage(posts, total, page)
	s.cache.SetJSON(ctx, fp, result)
	s.countPostImpressions(ctx, result.Results)
	return result, nil
}

// buildPostPage converts store rows into the list response shape.
func (s *Service) buildPostPage(posts []models.Post, total, page int) *PostPage {
	result := &PostPage{
		Results: make([]PostSummary, 0, len(posts)),
		Total:   total,
		Page:    page,
		Pages:   totalPages(total, s.pageSize),
	}
	for _, p := range posts {
		result.Results = append(result.Results, PostSummary{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Slug:        p.Slug,
			Category:    p.Category.Ref(),
			ViewCount:   p.Views,
		})
	}
	return result
}

// countPostImpressions buffers one impression per post shown.
// Fire-and-forget: a counter outage degrades to lost impressions,
// never to a failed read.
func (s *Service) countPostImpressions(ctx context.Context, items []PostSummary) {
	for _, item := range items {
		s.countImpression(ctx, counter.EntityPost, item.ID)
	}
}

func (s *Service) countCategoryImpressions(ctx context.Context, items []CategorySummary) {
	for _, item := range items {
		s.countImpression(ctx, counter.EntityCategory, item.ID)
	}
}

func (s *Service) countImpression(ctx context.Context, entity counter.EntityType, id uuid.UUID) {
	if err := s.counters.Incr(ctx, entity, id); err != nil {
		slog.Warn("impression increment failed", "entity", entity, "id", id, "error", err)
	}
}

// recordViewAsync dispatches the view write on a detached context so
// the HTTP response never blocks on it. Failures are logged only.
func (s *Service) recordViewAsync(slug, viewerAddr string) {
	if viewerAddr == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), viewRecordTimeout)
		defer cancel()
		if err := s.recorder.RecordView(ctx, slug, viewerAddr); err != nil {
			slog.Warn("view recording failed", "slug", slug, "error", err)
		}
	}()
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func totalPages(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
