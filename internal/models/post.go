// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is one of the fixed post categories.
type Category string

const (
	CategoryTech    Category = "tech"
	CategoryLife    Category = "life"
	CategoryProject Category = "project"
	CategoryReview  Category = "review"
	CategoryNote    Category = "note"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryTech, CategoryLife, CategoryProject, CategoryReview, CategoryNote,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Post is a blog entry. Slug is optional; when it is nil the post is
// addressed by its ID.
type Post struct {
	ID        uuid.UUID `json:"id"`
	Slug      *string   `json:"slug,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Excerpt   string    `json:"excerpt"`
	Category  Category  `json:"category"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RouteKey returns the identifier used in public URLs: the slug when set,
// otherwise the post ID.
func (p *Post) RouteKey() string {
	if p.Slug != nil && *p.Slug != "" {
		return *p.Slug
	}
	return p.ID.String()
}

// NormalizeTag lowercases a tag, strips leading '#' characters and
// surrounding whitespace.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimLeft(tag, "#")
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags normalizes every tag, dropping empties and duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		tag := NormalizeTag(raw)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// TagsText builds the searchable tag string stored next to the tag list.
func TagsText(tags []string) string {
	return strings.Join(NormalizeTags(tags), " ")
}
