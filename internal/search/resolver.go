// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package search resolves free-text and tag queries against the post store,
// and answers the autocomplete and popular-tag side queries.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"folio/internal/models"
	"folio/internal/query"
	"folio/internal/store"
)

// suggestionFetchLimit caps the candidate rows read for autocomplete.
const suggestionFetchLimit = 10

// listColumns are the post columns returned in result lists. Content is
// left out; callers fetch the full post by route key.
var listColumns = []string{
	store.PostID, store.PostSlug, store.PostTitle, store.PostExcerpt,
	store.PostCategory, store.PostTags, store.PostCreatedAt, store.PostUpdatedAt,
}

// newestFirst is the ordering shared by every result list.
var newestFirst = []query.Order{
	{Column: store.PostCreatedAt, Desc: true},
	{Column: store.PostID, Desc: true},
}

// PostFinder is the slice of the post store the resolver reads from.
type PostFinder interface {
	Find(ctx context.Context, sel query.Select) ([]models.Post, error)
	Count(ctx context.Context, where query.Predicate) (int, error)
	AllTags(ctx context.Context) ([][]string, error)
}

// Query is a search request after validation.
type Query struct {
	Q        string
	Tags     []string
	From     *time.Time
	To       *time.Time
	Sort     Sort
	Page     int
	PageSize int
}

// Results is one page of search results.
type Results struct {
	Items       []models.Post `json:"items"`
	Total       int           `json:"total"`
	Page        int           `json:"page"`
	PageSize    int           `json:"pageSize"`
	HasNextPage bool          `json:"hasNextPage"`
}

// Resolver runs searches against a PostFinder.
type Resolver struct {
	posts PostFinder
}

// NewResolver creates a Resolver reading from posts.
func NewResolver(posts PostFinder) *Resolver {
	return &Resolver{posts: posts}
}

// Search returns one page of posts matching q. A query with neither a term
// nor tags returns an empty page without touching the store.
func (r *Resolver) Search(ctx context.Context, q Query) (*Results, error) {
	page, pageSize := clampPage(q.Page, q.PageSize)
	res := &Results{Items: []models.Post{}, Page: page, PageSize: pageSize}

	term, tags := splitShorthand(NormalizeQuery(q.Q), q.Tags)
	if term == "" && len(tags) == 0 {
		return res, nil
	}

	where := Filter(term, tags, q.From, q.To)
	sel := query.Select{
		Columns: listColumns,
		Where:   where,
		OrderBy: ordering(q.Sort),
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := r.posts.Find(gctx, sel)
		if err != nil {
			return err
		}
		res.Items = items
		return nil
	})
	g.Go(func() error {
		total, err := r.posts.Count(gctx, where)
		if err != nil {
			return err
		}
		res.Total = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}

	if res.Items == nil {
		res.Items = []models.Post{}
	}
	res.HasNextPage = HasNextPage(page, pageSize, res.Total)
	return res, nil
}

// Filter builds the WHERE tree for a search. term matches title, content
// or tags; any one of tags must appear in the searchable tag string; from
// and to are inclusive calendar days in UTC.
func Filter(term string, tags []string, from, to *time.Time) query.Predicate {
	var where query.And
	if term != "" {
		where = append(where, query.Or{
			query.Contains{Column: store.PostTitle, Value: term},
			query.Contains{Column: store.PostContent, Value: term},
			query.Contains{Column: store.PostTagsText, Value: term},
		})
	}
	if len(tags) > 0 {
		anyTag := make(query.Or, 0, len(tags))
		for _, tag := range tags {
			anyTag = append(anyTag, query.Contains{Column: store.PostTagsText, Value: tag})
		}
		where = append(where, anyTag)
	}
	if rng, ok := dateRange(from, to); ok {
		where = append(where, rng)
	}
	return where
}

// dateRange converts inclusive calendar days into a half-open interval.
func dateRange(from, to *time.Time) (query.Range, bool) {
	rng := query.Range{Column: store.PostCreatedAt}
	if from != nil {
		rng.From = startOfDay(*from)
	}
	if to != nil {
		rng.Before = startOfDay(*to).AddDate(0, 0, 1)
	}
	return rng, from != nil || to != nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ordering returns the ORDER BY for a sort. There is no ranking function in the
// store, so relevance uses the same recency order as latest.
func ordering(Sort) []query.Order {
	return newestFirst
}

// HasNextPage reports whether another page follows page.
func HasNextPage(page, pageSize, total int) bool {
	return page*pageSize < total
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Suggestions returns up to limit autocomplete entries for raw: matching
// tags as "#tag" followed by matching post titles.
func (r *Resolver) Suggestions(ctx context.Context, raw string, limit int) ([]string, error) {
	if limit < 1 {
		limit = DefaultSuggestionLimit
	}

	term := strings.TrimLeft(NormalizeQuery(raw), "#")
	if utf8.RuneCountInString(term) < 2 {
		return []string{}, nil
	}

	posts, err := r.posts.Find(ctx, query.Select{
		Columns: []string{store.PostTitle, store.PostTags},
		Where: query.Or{
			query.Contains{Column: store.PostTitle, Value: term},
			query.Contains{Column: store.PostTagsText, Value: term},
		},
		OrderBy: newestFirst,
		Limit:   suggestionFetchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search suggestions: %w", err)
	}

	needle := strings.ToLower(term)
	var tagHits, titleHits []string
	for _, p := range posts {
		for _, tag := range p.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				tagHits = append(tagHits, "#"+tag)
			}
		}
		if p.Title != "" {
			titleHits = append(titleHits, p.Title)
		}
	}

	out := make([]string, 0, limit)
	seen := make(map[string]struct{})
	for _, s := range append(tagHits, titleHits...) {
		if len(out) == limit {
			break
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

// PopularTags returns the limit most used tags, most frequent first. Equal
// counts are ordered by tag name.
func (r *Resolver) PopularTags(ctx context.Context, limit int) ([]string, error) {
	if limit < 1 {
		limit = DefaultPopularLimit
	}

	lists, err := r.posts.AllTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("popular tags: %w", err)
	}

	counts := make(map[string]int)
	for _, tags := range lists {
		for _, tag := range models.NormalizeTags(tags) {
			counts[tag]++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// Listing selects a page of posts for the public index.
type Listing struct {
	Category models.Category
	Tag      string
	Page     int
	PageSize int
}

// Browse returns a page of posts filtered by category and exact tag. Unlike
// Search an empty filter lists everything.
func (r *Resolver) Browse(ctx context.Context, l Listing) (*Results, error) {
	page, pageSize := clampPage(l.Page, l.PageSize)

	var where query.And
	if l.Category != "" {
		where = append(where, query.Eq{Column: store.PostCategory, Value: string(l.Category)})
	}
	if tag := models.NormalizeTag(l.Tag); tag != "" {
		where = append(where, query.JSONContains{Column: store.PostTags, Value: []string{tag}})
	}

	res := &Results{Page: page, PageSize: pageSize}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := r.posts.Find(gctx, query.Select{
			Columns: listColumns,
			Where:   where,
			OrderBy: newestFirst,
			Limit:   pageSize,
			Offset:  (page - 1) * pageSize,
		})
		res.Items = items
		return err
	})
	g.Go(func() error {
		total, err := r.posts.Count(gctx, where)
		res.Total = total
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("browse posts: %w", err)
	}

	if res.Items == nil {
		res.Items = []models.Post{}
	}
	res.HasNextPage = HasNextPage(page, pageSize, res.Total)
	return res, nil
}
