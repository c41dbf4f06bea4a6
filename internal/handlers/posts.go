// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"inkwell/internal/analytics"
	"inkwell/internal/apperr"
	"inkwell/internal/middleware"
	"inkwell/internal/query"
)

// API groups the public content handlers and their dependencies.
type API struct {
	svc      *query.Service
	recorder *analytics.Recorder
}

// NewAPI creates the public API handler group.
func NewAPI(svc *query.Service, recorder *analytics.Recorder) *API {
	return &API{svc: svc, recorder: recorder}
}

// ListPosts serves GET /posts: a filtered, sorted, paginated page of
// published posts.
func (a *API) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := a.svc.ListPosts(r.Context(), query.ListParams{
		Search:     q.Get("search"),
		Sorting:    q.Get("sorting"),
		Ordering:   q.Get("ordering"),
		Categories: splitMulti(q["categories"]),
		Page:       pageFromQuery(q),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// GetPost serves GET /post: the full detail of one published post,
// counting a view for the requesting address as a side effect.
func (a *API) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		respondError(w, fmt.Errorf("slug query parameter is required: %w", apperr.ErrValidation))
		return
	}
	detail, err := a.svc.GetPostDetail(r.Context(), slug, middleware.ClientIP(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// GetPostHeadings serves GET /post/headings: the post's table of
// contents in document order.
func (a *API) GetPostHeadings(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		respondError(w, fmt.Errorf("slug query parameter is required: %w", apperr.ErrValidation))
		return
	}
	headings, err := a.svc.PostHeadings(r.Context(), slug)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"headings": headings})
}

// clickRequest is the body of both increment_click endpoints.
type clickRequest struct {
	Slug string `json:"slug"`
}

// IncrementPostClick serves POST /post/increment_click.
func (a *API) IncrementPostClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("invalid request body: %w", apperr.ErrValidation))
		return
	}
	if req.Slug == "" {
		respondError(w, fmt.Errorf("slug is required: %w", apperr.ErrValidation))
		return
	}
	clicks, err := a.recorder.RecordPostClick(r.Context(), req.Slug)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "click recorded",
		"clicks":  clicks,
	})
}

// pageFromQuery reads the page number from the "p" parameter, with
// "page" accepted as an alias when "p" is absent.
func pageFromQuery(q url.Values) int {
	raw := q.Get("p")
	if raw == "" {
		raw = q.Get("page")
	}
	return pageParam(raw)
}

// pageParam parses the page number, defaulting to the first page on
// absent or malformed input.
func pageParam(raw string) int {
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// splitMulti flattens repeated query parameters that may each carry a
// comma-separated list, so ?categories=a,b and ?categories=a&categories=b
// are equivalent.
func splitMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
