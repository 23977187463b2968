// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"folio/internal/apperr"
	"folio/internal/markdown"
	"folio/internal/models"
	"folio/internal/respond"
	"folio/internal/search"
	"folio/internal/slug"
)

// maxBodyBytes caps the size of a post write request.
const maxBodyBytes = 1 << 20

// PostRepository reads and writes individual posts.
type PostRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugTaken(ctx context.Context, slug string, exceptID uuid.UUID) (bool, error)
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostBrowser lists posts for the public index.
type PostBrowser interface {
	Browse(ctx context.Context, l search.Listing) (*search.Results, error)
}

// SeriesWriter keeps a post's series membership in step with its saves.
type SeriesWriter interface {
	Sync(ctx context.Context, postID uuid.UUID, seriesTitle, seriesSlug string, position *int) error
	Delete(ctx context.Context, postID uuid.UUID) error
}

// Posts groups the post listing, lookup and write handlers.
type Posts struct {
	posts   PostRepository
	browser PostBrowser
	series  SeriesWriter
	cache   ResponseCache
}

// NewPosts creates a Posts handler group. responses may be nil.
func NewPosts(posts PostRepository, browser PostBrowser, seriesWriter SeriesWriter, responses ResponseCache) *Posts {
	return &Posts{posts: posts, browser: browser, series: seriesWriter, cache: responses}
}

// List handles GET /api/posts with optional category, tag and paging.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	listing, err := parseListing(r.URL.Query())
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.browser.Browse(r.Context(), listing)
	if err != nil {
		logFailure(r, "posts.list", start, err)
		respond.Error(w, http.StatusInternalServerError, "listing failed")
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// Get handles GET /api/posts/{id}. The key is tried as a post ID first
// and as a slug otherwise.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key := chi.URLParam(r, "id")

	var (
		post *models.Post
		err  error
	)
	if id, perr := uuid.Parse(key); perr == nil {
		post, err = h.posts.FindByID(r.Context(), id)
	} else {
		post, err = h.posts.FindBySlug(r.Context(), key)
	}
	if err != nil {
		logFailure(r, "posts.get", start, err)
		respond.Error(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if post == nil {
		respond.Error(w, http.StatusNotFound, "post not found")
		return
	}
	respond.JSON(w, http.StatusOK, post)
}

// Create handles POST /api/posts.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	in, ok := decodePost(w, r)
	if !ok {
		return
	}

	post := in.toPost()
	s, err := h.resolveSlug(ctx, in, uuid.Nil)
	if err != nil {
		logFailure(r, "posts.create", start, err)
		respond.Error(w, http.StatusInternalServerError, "save failed")
		return
	}
	post.Slug = s

	created, err := h.posts.Create(ctx, post)
	if errors.Is(err, apperr.ErrConflict) {
		// Lost a race for the slug; the post is addressed by ID instead.
		post.Slug = nil
		created, err = h.posts.Create(ctx, post)
	}
	if err != nil {
		logFailure(r, "posts.create", start, err)
		respond.Error(w, http.StatusInternalServerError, "save failed")
		return
	}

	if !h.afterWrite(w, r, created.ID, in.Series, start) {
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/posts/{id}.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	in, ok := decodePost(w, r)
	if !ok {
		return
	}

	post := in.toPost()
	post.ID = id
	s, err := h.resolveSlug(ctx, in, id)
	if err != nil {
		logFailure(r, "posts.update", start, err)
		respond.Error(w, http.StatusInternalServerError, "save failed")
		return
	}
	post.Slug = s

	updated, err := h.posts.Update(ctx, post)
	if errors.Is(err, apperr.ErrConflict) {
		post.Slug = nil
		updated, err = h.posts.Update(ctx, post)
	}
	if errors.Is(err, apperr.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		logFailure(r, "posts.update", start, err)
		respond.Error(w, http.StatusInternalServerError, "save failed")
		return
	}

	if !h.afterWrite(w, r, updated.ID, in.Series, start) {
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/posts/{id}. The series membership goes with
// the post.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	existing, err := h.posts.FindByID(ctx, id)
	if err != nil {
		logFailure(r, "posts.delete", start, err)
		respond.Error(w, http.StatusInternalServerError, "delete failed")
		return
	}
	if existing == nil {
		respond.Error(w, http.StatusNotFound, "post not found")
		return
	}

	if err := h.posts.Delete(ctx, id); err != nil {
		logFailure(r, "posts.delete", start, err)
		respond.Error(w, http.StatusInternalServerError, "delete failed")
		return
	}
	if err := h.series.Delete(ctx, id); err != nil {
		logFailure(r, "posts.delete.series", start, err)
		respond.Error(w, http.StatusInternalServerError, "series update failed")
		return
	}

	h.invalidate(ctx)
	w.WriteHeader(http.StatusNoContent)
}

// afterWrite syncs the series membership and drops cached responses. It
// reports false after answering the request with an error.
func (h *Posts) afterWrite(w http.ResponseWriter, r *http.Request, postID uuid.UUID, in *seriesInput, start time.Time) bool {
	ctx := r.Context()
	var title, seriesSlug string
	var position *int
	if in != nil {
		title, seriesSlug, position = in.Title, in.Slug, in.Position
	}

	err := h.series.Sync(ctx, postID, title, seriesSlug, position)
	h.invalidate(ctx)
	if err != nil {
		logFailure(r, "posts.series_sync", start, err)
		respond.Error(w, http.StatusInternalServerError, "series update failed")
		return false
	}
	return true
}

func (h *Posts) invalidate(ctx context.Context) {
	if h.cache != nil {
		h.cache.InvalidateAll(ctx)
	}
}

// resolveSlug picks the stored slug for a post: the requested slug or one
// derived from the title, or nil when that is empty or already used by
// another post.
func (h *Posts) resolveSlug(ctx context.Context, in postInput, exceptID uuid.UUID) (*string, error) {
	source := in.Slug
	if strings.TrimSpace(source) == "" {
		source = in.Title
	}
	s := slug.GenerateMax(source, maxSlugLen)
	if s == "" {
		return nil, nil
	}
	// A slug that parses as a UUID would shadow ID lookups.
	if _, err := uuid.Parse(s); err == nil {
		return nil, nil
	}

	taken, err := h.posts.SlugTaken(ctx, s, exceptID)
	if err != nil {
		return nil, fmt.Errorf("resolve slug: %w", err)
	}
	if taken {
		return nil, nil
	}
	return &s, nil
}

// decodePost reads and validates a post body. It reports false after
// answering the request with an error.
func decodePost(w http.ResponseWriter, r *http.Request) (postInput, bool) {
	var in postInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return postInput{}, false
	}
	if err := in.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return postInput{}, false
	}
	return in, true
}

// toPost converts the request body into a post. A missing excerpt is
// derived from the content.
func (in postInput) toPost() *models.Post {
	excerpt := strings.TrimSpace(in.Excerpt)
	if excerpt == "" {
		excerpt = markdown.Excerpt(in.Content, markdown.DefaultExcerptRunes)
	}
	return &models.Post{
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		Excerpt:  excerpt,
		Category: models.Category(in.Category),
		Tags:     models.NormalizeTags(in.Tags),
	}
}
