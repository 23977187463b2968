// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package series orders the posts of a series and finds a post's
// neighbours. The backing table is optional: when it is not provisioned
// every read reports "no series" and every write is skipped.
package series

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"folio/internal/apperr"
	"folio/internal/models"
	"folio/internal/query"
	"folio/internal/slug"
	"folio/internal/store"
)

// Length caps applied before a membership is stored.
const (
	MaxTitleRunes = 120
	MaxSlugLength = 80
)

// MembershipStore persists series membership rows.
type MembershipStore interface {
	FindByPostID(ctx context.Context, postID uuid.UUID) (*models.SeriesMembership, error)
	ListBySlug(ctx context.Context, seriesSlug string) ([]models.SeriesMembership, error)
	Upsert(ctx context.Context, m *models.SeriesMembership) error
	Delete(ctx context.Context, postID uuid.UUID) error
}

// PostFinder loads the posts referenced by memberships.
type PostFinder interface {
	Find(ctx context.Context, sel query.Select) ([]models.Post, error)
}

// Ref is a lightweight pointer to a post inside a series.
type Ref struct {
	PostID   uuid.UUID `json:"postId"`
	Title    string    `json:"title"`
	Position *int      `json:"position"`
}

// Context places one post within its series.
type Context struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Total    int    `json:"total"`
	Index    int    `json:"index"`
	Previous *Ref   `json:"previous"`
	Next     *Ref   `json:"next"`
}

// Contents is the ordered table of contents of a series.
type Contents struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Total int    `json:"total"`
	Items []Ref  `json:"items"`
}

// member is a membership joined with the post it references.
type member struct {
	models.SeriesMembership
	title     string
	createdAt time.Time
}

func (m member) ref() *Ref {
	return &Ref{PostID: m.PostID, Title: m.title, Position: m.Position}
}

// Navigator resolves series membership and ordering.
type Navigator struct {
	memberships MembershipStore
	posts       PostFinder
}

// NewNavigator creates a Navigator.
func NewNavigator(memberships MembershipStore, posts PostFinder) *Navigator {
	return &Navigator{memberships: memberships, posts: posts}
}

// Context returns the series position of postID, or nil when the post is
// not in a series.
func (n *Navigator) Context(ctx context.Context, postID uuid.UUID) (*Context, error) {
	current, err := n.memberships.FindByPostID(ctx, postID)
	if err != nil {
		if errors.Is(err, apperr.ErrMissingRelation) {
			return nil, nil
		}
		return nil, fmt.Errorf("series context: %w", err)
	}
	if current == nil {
		return nil, nil
	}

	ordered, err := n.load(ctx, current.SeriesSlug)
	if err != nil {
		if errors.Is(err, apperr.ErrMissingRelation) {
			return nil, nil
		}
		return nil, fmt.Errorf("series context: %w", err)
	}

	idx := -1
	for i, m := range ordered {
		if m.PostID == postID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}

	out := &Context{
		Slug:  current.SeriesSlug,
		Title: current.SeriesTitle,
		Total: len(ordered),
		Index: idx + 1,
	}
	if idx > 0 {
		out.Previous = ordered[idx-1].ref()
	}
	if idx+1 < len(ordered) {
		out.Next = ordered[idx+1].ref()
	}
	return out, nil
}

// Contents returns every live post of the series seriesSlug in reading
// order, or nil when the series has no live members.
func (n *Navigator) Contents(ctx context.Context, seriesSlug string) (*Contents, error) {
	ordered, err := n.load(ctx, seriesSlug)
	if err != nil {
		if errors.Is(err, apperr.ErrMissingRelation) {
			return nil, nil
		}
		return nil, fmt.Errorf("series contents: %w", err)
	}
	if len(ordered) == 0 {
		return nil, nil
	}

	out := &Contents{
		Slug:  seriesSlug,
		Title: ordered[0].SeriesTitle,
		Total: len(ordered),
		Items: make([]Ref, len(ordered)),
	}
	for i, m := range ordered {
		out.Items[i] = *m.ref()
	}
	return out, nil
}

// load fetches the members of a series, drops rows whose post is gone and
// sorts the rest.
func (n *Navigator) load(ctx context.Context, seriesSlug string) ([]member, error) {
	rows, err := n.memberships.ListBySlug(ctx, seriesSlug)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]any, len(rows))
	for i, r := range rows {
		ids[i] = r.PostID
	}
	posts, err := n.posts.Find(ctx, query.Select{
		Columns: []string{store.PostID, store.PostTitle, store.PostCreatedAt},
		Where:   query.In{Column: store.PostID, Values: ids},
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	members := make([]member, 0, len(rows))
	for _, r := range rows {
		p, ok := byID[r.PostID]
		if !ok {
			continue
		}
		members = append(members, member{SeriesMembership: r, title: p.Title, createdAt: p.CreatedAt})
	}

	sort.Slice(members, func(i, j int) bool {
		return less(members[i], members[j])
	})
	return members, nil
}

// less orders members by explicit position, then creation time, then
// title, then post ID. Positioned members come before unpositioned ones.
func less(a, b member) bool {
	switch {
	case a.Position != nil && b.Position != nil:
		if *a.Position != *b.Position {
			return *a.Position < *b.Position
		}
	case a.Position != nil:
		return true
	case b.Position != nil:
		return false
	default:
		if !a.createdAt.Equal(b.createdAt) {
			return a.createdAt.Before(b.createdAt)
		}
		if a.title != b.title {
			return a.title < b.title
		}
	}
	return a.PostID.String() < b.PostID.String()
}

// Upsert makes postID a member of the series named seriesTitle. The slug
// comes from seriesSlug when it yields one, otherwise from the title. An
// empty title or slug is a no-op.
func (n *Navigator) Upsert(ctx context.Context, postID uuid.UUID, seriesTitle, seriesSlug string, position *int) error {
	title := truncateRunes(strings.TrimSpace(seriesTitle), MaxTitleRunes)
	if title == "" {
		return nil
	}

	s := slug.GenerateMax(seriesSlug, MaxSlugLength)
	if s == "" {
		s = slug.GenerateMax(title, MaxSlugLength)
	}
	if s == "" {
		return nil
	}

	err := n.memberships.Upsert(ctx, &models.SeriesMembership{
		PostID:      postID,
		SeriesSlug:  s,
		SeriesTitle: title,
		Position:    position,
	})
	if err != nil && !errors.Is(err, apperr.ErrMissingRelation) {
		return fmt.Errorf("upsert series membership: %w", err)
	}
	return nil
}

// Delete removes postID from its series.
func (n *Navigator) Delete(ctx context.Context, postID uuid.UUID) error {
	err := n.memberships.Delete(ctx, postID)
	if err != nil && !errors.Is(err, apperr.ErrMissingRelation) {
		return fmt.Errorf("delete series membership: %w", err)
	}
	return nil
}

// Sync applies a post save: a blank title leaves the series, anything else
// upserts the membership.
func (n *Navigator) Sync(ctx context.Context, postID uuid.UUID, seriesTitle, seriesSlug string, position *int) error {
	if strings.TrimSpace(seriesTitle) == "" {
		return n.Delete(ctx, postID)
	}
	return n.Upsert(ctx, postID, seriesTitle, seriesSlug, position)
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
