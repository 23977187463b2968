// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"folio/internal/cache"
	"folio/internal/respond"
	"folio/internal/search"
)

// SearchResolver answers the three search modes.
type SearchResolver interface {
	Search(ctx context.Context, q search.Query) (*search.Results, error)
	Suggestions(ctx context.Context, raw string, limit int) ([]string, error)
	PopularTags(ctx context.Context, limit int) ([]string, error)
}

// Search serves GET /api/search.
type Search struct {
	resolver SearchResolver
	cache    ResponseCache
}

// NewSearch creates a Search handler. responses may be nil.
func NewSearch(resolver SearchResolver, responses ResponseCache) *Search {
	return &Search{resolver: resolver, cache: responses}
}

// ServeHTTP validates the query string and dispatches on mode. Invalid
// parameters never reach the resolver.
func (h *Search) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params, err := search.ParseParams(r.URL.Query())
	if err != nil {
		respond.Error(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	ctx := r.Context()
	switch params.Mode {
	case search.ModeSuggestions:
		items, err := h.resolver.Suggestions(ctx, params.Raw, params.Limit)
		if err != nil {
			logFailure(r, "search.suggestions", start, err)
			respond.Error(w, http.StatusInternalServerError, "search failed")
			return
		}
		respond.JSON(w, http.StatusOK, items)

	case search.ModePopularTags:
		h.popularTags(w, r, params.Limit, start)

	default:
		res, err := h.resolver.Search(ctx, params.Query)
		if err != nil {
			logFailure(r, "search.posts", start, err)
			respond.Error(w, http.StatusInternalServerError, "search failed")
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}

// popularTags serves the popular-tags mode through the response cache.
func (h *Search) popularTags(w http.ResponseWriter, r *http.Request, limit int, start time.Time) {
	ctx := r.Context()
	key := cache.PopularTagsKey(limit)

	if h.cache != nil {
		if body, ok := h.cache.Get(ctx, key); ok {
			respond.Raw(w, http.StatusOK, body)
			return
		}
	}

	tags, err := h.resolver.PopularTags(ctx, limit)
	if err != nil {
		logFailure(r, "search.popular_tags", start, err)
		respond.Error(w, http.StatusInternalServerError, "search failed")
		return
	}

	body, err := json.Marshal(tags)
	if err != nil {
		logFailure(r, "search.popular_tags", start, err)
		respond.Error(w, http.StatusInternalServerError, "search failed")
		return
	}
	if h.cache != nil {
		h.cache.Set(ctx, key, body)
	}
	respond.Raw(w, http.StatusOK, body)
}

// validationMessage strips the sentinel prefix from a parameter error.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), search.ErrInvalidParams.Error()+": ")
}
