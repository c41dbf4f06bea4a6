// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

// SortMode is the primary ordering axis of a list query.
type SortMode string

const (
	SortNone            SortMode = ""
	SortNewest          SortMode = "newest"
	SortRecentlyUpdated SortMode = "recently_updated"
	SortOldest          SortMode = "oldest"
	SortMostViewed      SortMode = "most_viewed"
)

// Valid reports whether the sort token is one the API accepts.
func (m SortMode) Valid() bool {
	switch m {
	case SortNone, SortNewest, SortRecentlyUpdated, SortOldest, SortMostViewed:
		return true
	}
	return false
}

// OrderDir is the secondary ordering axis, applied to the entity's
// title or name independently of the sort mode.
type OrderDir string

const (
	OrderNone OrderDir = ""
	OrderAsc  OrderDir = "asc"
	OrderDesc OrderDir = "desc"
)

// Valid reports whether the order token is one the API accepts.
func (d OrderDir) Valid() bool {
	switch d {
	case OrderNone, OrderAsc, OrderDesc:
		return true
	}
	return false
}

// ListQuery carries all parameters of a post list query. Categories
// holds filter tokens that are each interpreted as a UUID when they
// parse as one, and as a slug otherwise; tokens combine with OR.
type ListQuery struct {
	Search     string
	Sorting    SortMode
	Ordering   OrderDir
	Categories []string
	Page       int
	PageSize   int
}

// CategoryQuery carries all parameters of a category list query. An
// empty ParentSlug lists root categories; a set one lists the named
// category's children.
type CategoryQuery struct {
	ParentSlug string
	Search     string
	Sorting    SortMode
	Ordering   OrderDir
	Page       int
	PageSize   int
}

// offset converts a 1-based page number to a row offset.
func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
