package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"folio/internal/markdown"
	"folio/internal/models"
)

// seedPost is a development fixture. Series fields are optional.
type seedPost struct {
	slug        string
	title       string
	content     string
	category    string
	tags        []string
	daysAgo     int
	seriesSlug  string
	seriesTitle string
	position    *int
}

func intPtr(n int) *int { return &n }

var seedPosts = []seedPost{
	{
		slug:     "hello-folio",
		title:    "Hello, Folio",
		content:  "# Hello\n\nThis blog runs on **Go** and PostgreSQL.",
		category: "note",
		tags:     []string{"meta"},
		daysAgo:  30,
	},
	{
		slug:        "go-concurrency-part-1",
		title:       "Go Concurrency, Part 1: Goroutines",
		content:     "Goroutines are cheap. Start with `go f()` and a WaitGroup.",
		category:    "tech",
		tags:        []string{"go", "concurrency"},
		daysAgo:     20,
		seriesSlug:  "go-concurrency",
		seriesTitle: "Go Concurrency",
		position:    intPtr(1),
	},
	{
		slug:        "go-concurrency-part-2",
		title:       "Go Concurrency, Part 2: Channels",
		content:     "Channels connect goroutines. Unbuffered channels synchronize.",
		category:    "tech",
		tags:        []string{"go", "concurrency", "channels"},
		daysAgo:     15,
		seriesSlug:  "go-concurrency",
		seriesTitle: "Go Concurrency",
		position:    intPtr(2),
	},
	{
		slug:        "go-concurrency-part-3",
		title:       "Go Concurrency, Part 3: errgroup",
		content:     "errgroup cancels siblings when one goroutine fails.",
		category:    "tech",
		tags:        []string{"go", "concurrency"},
		daysAgo:     10,
		seriesSlug:  "go-concurrency",
		seriesTitle: "Go Concurrency",
	},
	{
		slug:     "postgres-jsonb-tags",
		title:    "Tagging Posts with JSONB",
		content:  "A GIN index on a jsonb column makes containment queries fast.",
		category: "project",
		tags:     []string{"postgres", "go"},
		daysAgo:  5,
	},
}

// Seed populates the database with development posts, including one
// series. It does nothing when posts already exist.
func Seed(db *sql.DB) error {
	// Check if any posts exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return fmt.Errorf("seed check posts: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	for _, p := range seedPosts {
		tagsJSON, err := json.Marshal(p.tags)
		if err != nil {
			return fmt.Errorf("seed encode tags %s: %w", p.slug, err)
		}
		var id string
		err = db.QueryRow(`
			INSERT INTO posts (slug, title, content, excerpt, category, tags, tags_text, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, NOW() - make_interval(days => $8), NOW() - make_interval(days => $8))
			RETURNING id
		`, p.slug, p.title, p.content, markdown.Excerpt(p.content, markdown.DefaultExcerptRunes),
			p.category, string(tagsJSON), models.TagsText(p.tags), p.daysAgo).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed insert post %s: %w", p.slug, err)
		}

		if p.seriesSlug == "" {
			continue
		}
		_, err = db.Exec(`
			INSERT INTO post_series (post_id, series_slug, series_title, position)
			VALUES ($1, $2, $3, $4)
		`, id, p.seriesSlug, p.seriesTitle, p.position)
		if err != nil {
			return fmt.Errorf("seed insert series membership %s: %w", p.slug, err)
		}
	}

	slog.Info("database seeded with development posts", "posts", len(seedPosts))
	return nil
}
