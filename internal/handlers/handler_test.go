// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the real resolver and navigator over in-memory
// stores.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"folio/internal/models"
	"folio/internal/search"
	"folio/internal/series"
	"folio/internal/testutil"
)

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	PostStore   *testutil.Posts
	SeriesStore *testutil.Series
	Cache       *testutil.Cache
	Search      *Search
	Series      *Series
	Posts       *Posts
}

// newTestEnv wires handlers over stores seeded with posts and memberships.
func newTestEnv(t *testing.T, posts []models.Post, rows ...models.SeriesMembership) *testEnv {
	t.Helper()

	postStore := testutil.NewPosts(posts...)
	seriesStore := testutil.NewSeries(rows...)
	responses := testutil.NewCache()

	resolver := search.NewResolver(postStore)
	navigator := series.NewNavigator(seriesStore, postStore)

	return &testEnv{
		PostStore:   postStore,
		SeriesStore: seriesStore,
		Cache:       responses,
		Search:      NewSearch(resolver, responses),
		Series:      NewSeries(navigator, responses),
		Posts:       NewPosts(postStore, resolver, navigator, responses),
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeBody decodes a JSON response body into v. The recorder keeps its
// body so callers can still inspect the raw bytes.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

// errorMessage decodes an error response and returns its message.
func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	return body.Error
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 12, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
