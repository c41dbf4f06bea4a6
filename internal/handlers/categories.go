// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"inkwell/internal/apperr"
	"inkwell/internal/query"
)

// ListCategories serves GET /categories: root categories by default,
// or the children of parent_slug when given.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := a.svc.ListCategories(r.Context(), query.CategoryParams{
		ParentSlug: q.Get("parent_slug"),
		Search:     q.Get("search"),
		Sorting:    q.Get("sorting"),
		Ordering:   q.Get("ordering"),
		Page:       pageFromQuery(q),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// GetCategoryPosts serves GET /category/posts: one page of published
// posts in the named category.
func (a *API) GetCategoryPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slug := q.Get("slug")
	if slug == "" {
		respondError(w, fmt.Errorf("slug query parameter is required: %w", apperr.ErrValidation))
		return
	}
	page, err := a.svc.CategoryPosts(r.Context(), slug, pageFromQuery(q))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// IncrementCategoryClick serves POST /categories/increment_click.
func (a *API) IncrementCategoryClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("invalid request body: %w", apperr.ErrValidation))
		return
	}
	if req.Slug == "" {
		respondError(w, fmt.Errorf("slug is required: %w", apperr.ErrValidation))
		return
	}
	clicks, err := a.recorder.RecordCategoryClick(r.Context(), req.Slug)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "click recorded",
		"clicks":  clicks,
	})
}
