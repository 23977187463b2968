// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"folio/internal/cache"
	"folio/internal/respond"
	"folio/internal/series"
)

// SeriesReader resolves series navigation.
type SeriesReader interface {
	Context(ctx context.Context, postID uuid.UUID) (*series.Context, error)
	Contents(ctx context.Context, seriesSlug string) (*series.Contents, error)
}

// Series serves series navigation for posts.
type Series struct {
	navigator SeriesReader
	cache     ResponseCache
}

// NewSeries creates a Series handler group. responses may be nil.
func NewSeries(navigator SeriesReader, responses ResponseCache) *Series {
	return &Series{navigator: navigator, cache: responses}
}

// PostContext handles GET /api/posts/{id}/series. A post outside any series
// answers with a JSON null.
func (h *Series) PostContext(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	sc, err := h.navigator.Context(r.Context(), id)
	if err != nil {
		logFailure(r, "series.context", start, err)
		respond.Error(w, http.StatusInternalServerError, "series lookup failed")
		return
	}
	respond.JSON(w, http.StatusOK, sc)
}

// Contents handles GET /api/series/{slug}.
func (h *Series) Contents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")
	key := cache.SeriesKey(slug)

	if h.cache != nil {
		if body, ok := h.cache.Get(ctx, key); ok {
			respond.Raw(w, http.StatusOK, body)
			return
		}
	}

	toc, err := h.navigator.Contents(ctx, slug)
	if err != nil {
		logFailure(r, "series.contents", start, err)
		respond.Error(w, http.StatusInternalServerError, "series lookup failed")
		return
	}
	if toc == nil {
		respond.Error(w, http.StatusNotFound, "series not found")
		return
	}

	body, err := json.Marshal(toc)
	if err != nil {
		logFailure(r, "series.contents", start, err)
		respond.Error(w, http.StatusInternalServerError, "series lookup failed")
		return
	}
	if h.cache != nil {
		h.cache.Set(ctx, key, body)
	}
	respond.Raw(w, http.StatusOK, body)
}
