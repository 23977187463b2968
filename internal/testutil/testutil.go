// Package testutil provides in-memory stores for handler and service
// tests. Filters are evaluated with query.Matches, so a memory store
// answers the same predicate trees the PostgreSQL stores run.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"folio/internal/apperr"
	"folio/internal/models"
	"folio/internal/query"
	"folio/internal/store"
)

// Posts is an in-memory post store.
type Posts struct {
	mu    sync.Mutex
	posts map[uuid.UUID]models.Post
	now   func() time.Time

	// Err, when set, is returned by every call.
	Err error
}

// NewPosts returns a Posts store seeded with posts. Posts without an ID or
// creation time get one.
func NewPosts(posts ...models.Post) *Posts {
	s := &Posts{posts: make(map[uuid.UUID]models.Post), now: time.Now}
	for _, p := range posts {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = s.now()
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		p.Tags = models.NormalizeTags(p.Tags)
		s.posts[p.ID] = p
	}
	return s
}

func column(p models.Post, col string) any {
	switch col {
	case store.PostID:
		return p.ID
	case store.PostSlug:
		if p.Slug == nil {
			return nil
		}
		return *p.Slug
	case store.PostTitle:
		return p.Title
	case store.PostContent:
		return p.Content
	case store.PostExcerpt:
		return p.Excerpt
	case store.PostCategory:
		return string(p.Category)
	case store.PostTags:
		return p.Tags
	case store.PostTagsText:
		return models.TagsText(p.Tags)
	case store.PostCreatedAt:
		return p.CreatedAt
	case store.PostUpdatedAt:
		return p.UpdatedAt
	}
	return nil
}

func compare(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		return av.Compare(b.(time.Time))
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

// project keeps only the selected columns, as a SELECT would.
func project(p models.Post, cols []string) models.Post {
	var out models.Post
	out.Tags = []string{}
	for _, col := range cols {
		switch col {
		case store.PostID:
			out.ID = p.ID
		case store.PostSlug:
			out.Slug = p.Slug
		case store.PostTitle:
			out.Title = p.Title
		case store.PostContent:
			out.Content = p.Content
		case store.PostExcerpt:
			out.Excerpt = p.Excerpt
		case store.PostCategory:
			out.Category = p.Category
		case store.PostTags:
			out.Tags = append([]string{}, p.Tags...)
		case store.PostCreatedAt:
			out.CreatedAt = p.CreatedAt
		case store.PostUpdatedAt:
			out.UpdatedAt = p.UpdatedAt
		}
	}
	return out
}

func (s *Posts) matching(where query.Predicate) []models.Post {
	var out []models.Post
	for _, p := range s.posts {
		if query.Matches(where, func(col string) any { return column(p, col) }) {
			out = append(out, p)
		}
	}
	return out
}

// Find evaluates sel in memory.
func (s *Posts) Find(_ context.Context, sel query.Select) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	rows := s.matching(sel.Where)
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range sel.OrderBy {
			c := compare(column(rows[i], o.Column), column(rows[j], o.Column))
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	if sel.Offset > 0 {
		if sel.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[sel.Offset:]
		}
	}
	if sel.Limit > 0 && len(rows) > sel.Limit {
		rows = rows[:sel.Limit]
	}

	out := make([]models.Post, len(rows))
	for i, p := range rows {
		out[i] = project(p, sel.Columns)
	}
	return out, nil
}

// Count returns the number of posts matching where.
func (s *Posts) Count(_ context.Context, where query.Predicate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return len(s.matching(where)), nil
}

// AllTags returns every non-empty tag list.
func (s *Posts) AllTags(context.Context) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out [][]string
	for _, p := range s.posts {
		if len(p.Tags) > 0 {
			out = append(out, append([]string{}, p.Tags...))
		}
	}
	return out, nil
}

// FindByID returns the post with id, or nil.
func (s *Posts) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// FindBySlug returns the post with slug, or nil.
func (s *Posts) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, p := range s.posts {
		if p.Slug != nil && *p.Slug == slug {
			return &p, nil
		}
	}
	return nil, nil
}

// SlugTaken reports whether a post other than exceptID uses slug.
func (s *Posts) SlugTaken(_ context.Context, slug string, exceptID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	return s.slugTaken(slug, exceptID), nil
}

func (s *Posts) slugTaken(slug string, exceptID uuid.UUID) bool {
	for _, p := range s.posts {
		if p.ID != exceptID && p.Slug != nil && *p.Slug == slug {
			return true
		}
	}
	return false
}

// Create stores p under a new ID. A duplicate slug yields
// apperr.ErrConflict.
func (s *Posts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if p.Slug != nil && s.slugTaken(*p.Slug, uuid.Nil) {
		return nil, fmt.Errorf("create post: %w", apperr.ErrConflict)
	}
	created := *p
	created.ID = uuid.New()
	created.Tags = models.NormalizeTags(p.Tags)
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	s.posts[created.ID] = created
	return &created, nil
}

// Update replaces the post with p.ID.
func (s *Posts) Update(_ context.Context, p *models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	existing, ok := s.posts[p.ID]
	if !ok {
		return nil, fmt.Errorf("update post %s: %w", p.ID, apperr.ErrNotFound)
	}
	if p.Slug != nil && s.slugTaken(*p.Slug, p.ID) {
		return nil, fmt.Errorf("update post: %w", apperr.ErrConflict)
	}
	updated := *p
	updated.Tags = models.NormalizeTags(p.Tags)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()
	s.posts[p.ID] = updated
	return &updated, nil
}

// Delete removes the post with id.
func (s *Posts) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.posts, id)
	return nil
}

// Len returns the number of stored posts.
func (s *Posts) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

// Series is an in-memory series membership store.
type Series struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.SeriesMembership

	// Err, when set, is returned by every call.
	Err error
}

// NewSeries returns a Series store holding rows.
func NewSeries(rows ...models.SeriesMembership) *Series {
	s := &Series{rows: make(map[uuid.UUID]models.SeriesMembership)}
	for _, r := range rows {
		s.rows[r.PostID] = r
	}
	return s
}

// FindByPostID returns the membership of postID, or nil.
func (s *Series) FindByPostID(_ context.Context, postID uuid.UUID) (*models.SeriesMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	m, ok := s.rows[postID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// ListBySlug returns every membership sharing seriesSlug.
func (s *Series) ListBySlug(_ context.Context, seriesSlug string) ([]models.SeriesMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.SeriesMembership
	for _, m := range s.rows {
		if m.SeriesSlug == seriesSlug {
			out = append(out, m)
		}
	}
	return out, nil
}

// Upsert stores m, replacing any row for m.PostID.
func (s *Series) Upsert(_ context.Context, m *models.SeriesMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.rows[m.PostID] = *m
	return nil
}

// Delete removes the row for postID.
func (s *Series) Delete(_ context.Context, postID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.rows, postID)
	return nil
}

// Get returns the row for postID.
func (s *Series) Get(postID uuid.UUID) (models.SeriesMembership, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rows[postID]
	return m, ok
}

// Cache is an in-memory handlers.ResponseCache.
type Cache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	Invalidated int
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

// Get returns the cached body for key.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	return b, ok
}

// Set caches body under key.
func (c *Cache) Set(_ context.Context, key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]byte(nil), body...)
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.Invalidated++
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
