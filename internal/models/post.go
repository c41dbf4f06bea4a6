// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Post is a blog article. Only published posts are visible through the
// public API; drafts exist solely for the administrative collaborator.
// The slug is unique and addresses the post everywhere.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	CategoryID  uuid.UUID  `json:"category_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Keywords    string     `json:"keywords"`
	Slug        string     `json:"slug"`
	Status      PostStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	Category *Category `json:"category,omitempty"`
	Views    int64     `json:"view_count"`
}

// IsPublished returns true if the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// Heading is a section heading inside a post's content, used to render
// a table of contents. Headings are ordered by Position within a post.
type Heading struct {
	ID       uuid.UUID `json:"-"`
	PostID   uuid.UUID `json:"-"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Level    int       `json:"level"`
	Position int       `json:"order"`
}

// PostView records a unique visit to a post's detail page. The pair
// (post, viewer address) is unique, which is what makes view counting
// idempotent per viewer.
type PostView struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}
