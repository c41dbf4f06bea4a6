// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Fingerprints are deterministic encodings of a query's parameters.
// Two requirements: identical queries must always produce the same
// key, and distinct queries must never collide. Each component is
// query-escaped so user input containing the separator cannot forge a
// different query's key, and category filter tokens are sorted so
// OR-filter order does not fragment the cache.

// PostListFingerprint builds the cache key for a post list query.
func PostListFingerprint(search, sorting, ordering string, categories []string, page int) string {
	return join("post_list", search, sorting, ordering, canonicalSet(categories), strconv.Itoa(page))
}

// PostDetailFingerprint builds the cache key for a post detail query.
func PostDetailFingerprint(slug string) string {
	return join("post_detail", slug)
}

// CategoryListFingerprint builds the cache key for a category list query.
func CategoryListFingerprint(parentSlug, search, sorting, ordering string, page int) string {
	return join("category_list", parentSlug, search, sorting, ordering, strconv.Itoa(page))
}

// CategoryPostsFingerprint builds the cache key for the posts-in-category query.
func CategoryPostsFingerprint(slug string, page int) string {
	return join("category_posts", slug, strconv.Itoa(page))
}

// join escapes each component and joins them with ':'.
func join(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.QueryEscape(p)
	}
	return strings.Join(escaped, ":")
}

// canonicalSet sorts and joins filter tokens so equivalent filter sets
// share one cache entry.
func canonicalSet(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
