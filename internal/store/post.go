// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"folio/internal/apperr"
	"folio/internal/models"
	"folio/internal/query"
)

// Column names of the posts table, shared with callers that build filters.
const (
	PostsTable    = "posts"
	PostID        = "id"
	PostSlug      = "slug"
	PostTitle     = "title"
	PostContent   = "content"
	PostExcerpt   = "excerpt"
	PostCategory  = "category"
	PostTags      = "tags"
	PostTagsText  = "tags_text"
	PostCreatedAt = "created_at"
	PostUpdatedAt = "updated_at"
)

// PostColumns is every column scanned into a full models.Post.
var PostColumns = []string{
	PostID, PostSlug, PostTitle, PostContent, PostExcerpt,
	PostCategory, PostTags, PostCreatedAt, PostUpdatedAt,
}

const postColumnList = `id, slug, title, content, excerpt, category, tags, created_at, updated_at`

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// scanTargets maps column names to destinations inside p. The raw JSON of
// the tags column lands in tags and is decoded by the caller.
func scanTargets(p *models.Post, cols []string, tags *[]byte) ([]any, error) {
	dest := make([]any, len(cols))
	for i, col := range cols {
		switch col {
		case PostID:
			dest[i] = &p.ID
		case PostSlug:
			dest[i] = &p.Slug
		case PostTitle:
			dest[i] = &p.Title
		case PostContent:
			dest[i] = &p.Content
		case PostExcerpt:
			dest[i] = &p.Excerpt
		case PostCategory:
			dest[i] = &p.Category
		case PostTags:
			dest[i] = tags
		case PostCreatedAt:
			dest[i] = &p.CreatedAt
		case PostUpdatedAt:
			dest[i] = &p.UpdatedAt
		default:
			return nil, fmt.Errorf("unknown post column %q", col)
		}
	}
	return dest, nil
}

// scanPost scans one row selected with cols into a Post.
func scanPost(scanner interface{ Scan(...any) error }, cols []string) (*models.Post, error) {
	var p models.Post
	var rawTags []byte
	dest, err := scanTargets(&p, cols, &rawTags)
	if err != nil {
		return nil, err
	}
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}
	p.Tags = []string{}
	if len(rawTags) > 0 {
		if err := json.Unmarshal(rawTags, &p.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return &p, nil
}

// Find runs sel against the posts table. Only the selected columns are
// populated on the returned posts.
func (s *PostStore) Find(ctx context.Context, sel query.Select) ([]models.Post, error) {
	sel.Table = PostsTable
	stmt, args, err := sel.SQL()
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, wrap("find posts", err)
	}
	defer rows.Close()

	items := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows, sel.Columns)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("find posts", err)
	}
	return items, nil
}

// Count returns the number of posts matching where.
func (s *PostStore) Count(ctx context.Context, where query.Predicate) (int, error) {
	stmt, args, err := query.Count(PostsTable, where)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, wrap("count posts", err)
	}
	return count, nil
}

// AllTags returns the tag list of every post that has at least one tag.
func (s *PostStore) AllTags(ctx context.Context) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tags FROM posts WHERE tags <> '[]'::jsonb`)
	if err != nil {
		return nil, wrap("list post tags", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan post tags: %w", err)
		}
		var tags []string
		if err := json.Unmarshal(raw, &tags); err != nil {
			return nil, fmt.Errorf("decode post tags: %w", err)
		}
		out = append(out, tags)
	}
	return out, rows.Err()
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumnList+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row, PostColumns)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find post by id", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by its slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumnList+` FROM posts WHERE slug = $1`, slug)
	p, err := scanPost(row, PostColumns)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find post by slug", err)
	}
	return p, nil
}

// SlugTaken reports whether slug belongs to a post other than exceptID.
// Pass uuid.Nil to check against every post.
func (s *PostStore) SlugTaken(ctx context.Context, slug string, exceptID uuid.UUID) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, slug, exceptID,
	).Scan(&taken)
	if err != nil {
		return false, wrap("check slug", err)
	}
	return taken, nil
}

// Create inserts a new post and returns it with the generated ID and
// timestamps. A slug collision yields apperr.ErrConflict.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	tags := models.NormalizeTags(p.Tags)
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (slug, title, content, excerpt, category, tags, tags_text)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
		RETURNING `+postColumnList,
		p.Slug, p.Title, p.Content, p.Excerpt, p.Category, string(rawTags), models.TagsText(tags),
	)
	created, err := scanPost(row, PostColumns)
	if err != nil {
		return nil, wrap("create post", err)
	}
	return created, nil
}

// Update modifies an existing post. Returns apperr.ErrNotFound when no row
// has p.ID.
func (s *PostStore) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	tags := models.NormalizeTags(p.Tags)
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE posts SET
			slug = $1, title = $2, content = $3, excerpt = $4, category = $5,
			tags = $6::jsonb, tags_text = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING `+postColumnList,
		p.Slug, p.Title, p.Content, p.Excerpt, p.Category, string(rawTags), models.TagsText(tags), p.ID,
	)
	updated, err := scanPost(row, PostColumns)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update post %s: %w", p.ID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, wrap("update post", err)
	}
	return updated, nil
}

// Delete removes a post by ID. Deleting a missing post is not an error.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return wrap("delete post", err)
	}
	return nil
}
