package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"inkwell/internal/apperr"
)

func TestPageParam(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"3", 3},
		{"0", 1},
		{"-2", 1},
		{"abc", 1},
	}
	for _, tt := range tests {
		if got := pageParam(tt.raw); got != tt.want {
			t.Errorf("pageParam(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestPageFromQuery(t *testing.T) {
	tests := []struct {
		rawQuery string
		want     int
	}{
		{"", 1},
		{"p=3", 3},
		{"page=2", 2},
		{"p=3&page=2", 3}, // p is the documented name and wins
		{"p=abc", 1},
		{"p=&page=4", 4},
	}
	for _, tt := range tests {
		q, err := url.ParseQuery(tt.rawQuery)
		if err != nil {
			t.Fatalf("ParseQuery(%q): %v", tt.rawQuery, err)
		}
		if got := pageFromQuery(q); got != tt.want {
			t.Errorf("pageFromQuery(%q) = %d, want %d", tt.rawQuery, got, tt.want)
		}
	}
}

func TestSplitMulti(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{"nil", nil, nil},
		{"single", []string{"go"}, []string{"go"}},
		{"comma separated", []string{"go,rust"}, []string{"go", "rust"}},
		{"repeated and comma", []string{"go, rust", "zig"}, []string{"go", "rust", "zig"}},
		{"empty parts dropped", []string{",go,,"}, []string{"go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitMulti(tt.values); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitMulti(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"validation", fmt.Errorf("slug is required: %w", apperr.ErrValidation), http.StatusBadRequest, "slug is required"},
		{"not found", fmt.Errorf("no posts found: %w", apperr.ErrNotFound), http.StatusNotFound, "no posts found"},
		{"internal detail hidden", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondError(w, tt.err)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want substring %q", w.Body.String(), tt.wantBody)
			}
			if tt.wantStatus == http.StatusInternalServerError && strings.Contains(w.Body.String(), "pq:") {
				t.Error("internal error detail leaked into response body")
			}
		})
	}
}

func TestClickHandlersRejectMissingSlug(t *testing.T) {
	api := NewAPI(nil, nil)

	endpoints := map[string]http.HandlerFunc{
		"post":     api.IncrementPostClick,
		"category": api.IncrementCategoryClick,
	}
	bodies := []string{"{}", `{"slug":""}`, "not json"}

	for name, handler := range endpoints {
		for _, body := range bodies {
			t.Run(name+" "+body, func(t *testing.T) {
				r := httptest.NewRequest(http.MethodPost, "/increment_click", strings.NewReader(body))
				w := httptest.NewRecorder()
				handler(w, r)
				if w.Code != http.StatusBadRequest {
					t.Errorf("status = %d, want 400", w.Code)
				}
			})
		}
	}
}

func TestSlugQueryParameterRequired(t *testing.T) {
	api := NewAPI(nil, nil)

	for name, handler := range map[string]http.HandlerFunc{
		"post detail":    api.GetPost,
		"post headings":  api.GetPostHeadings,
		"category posts": api.GetCategoryPosts,
	} {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/anything", nil)
			w := httptest.NewRecorder()
			handler(w, r)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}
