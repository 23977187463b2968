// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"folio/internal/handlers"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/search"
	"folio/internal/series"
	"folio/internal/testutil"
)

const testToken = "s3cret"

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

// newTestRouter builds the full router over in-memory stores.
func newTestRouter(t *testing.T, opts Options, posts ...models.Post) http.Handler {
	t.Helper()

	postStore := testutil.NewPosts(posts...)
	seriesStore := testutil.NewSeries()
	responses := testutil.NewCache()
	resolver := search.NewResolver(postStore)
	navigator := series.NewNavigator(seriesStore, postStore)

	return New(Handlers{
		Search: handlers.NewSearch(resolver, responses),
		Series: handlers.NewSeries(navigator, responses),
		Posts:  handlers.NewPosts(postStore, resolver, navigator, responses),
		Health: handlers.Health(okPinger{}),
	}, opts)
}

func serve(h http.Handler, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

func TestHealthRoute(t *testing.T) {
	r := newTestRouter(t, Options{})

	rec := serve(r, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content-type: got %q, want application/json", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestPublicRoutes(t *testing.T) {
	post := models.Post{ID: uuid.New(), Slug: strPtr("hello"), Title: "Hello", Category: models.CategoryNote, Tags: []string{"go"}}
	r := newTestRouter(t, Options{}, post)

	tests := []struct {
		target string
		want   int
	}{
		{target: "/api/search?q=hello", want: http.StatusOK},
		{target: "/api/search?mode=suggestions&q=he", want: http.StatusOK},
		{target: "/api/search?mode=popular-tags", want: http.StatusOK},
		{target: "/api/search?page=0", want: http.StatusBadRequest},
		{target: "/api/posts", want: http.StatusOK},
		{target: "/api/posts/hello", want: http.StatusOK},
		{target: "/api/posts/" + post.ID.String(), want: http.StatusOK},
		{target: "/api/posts/" + post.ID.String() + "/series", want: http.StatusOK},
		{target: "/api/series/unknown", want: http.StatusNotFound},
		{target: "/api/nothing-here", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(r, http.MethodGet, tt.target, "", nil)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("content-type: got %q", ct)
			}
		})
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	r := newTestRouter(t, Options{})

	rec := serve(r, http.MethodGet, "/health", "", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options: got %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options: got %q", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, Options{WriteToken: testToken})

	rec := serve(r, http.MethodPatch, "/api/search", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status: got %d, want 405", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("405 should answer in JSON: %v", err)
	}
}

func TestWriteRoutesRequireToken(t *testing.T) {
	id := uuid.NewString()
	body := `{"title":"Hello","category":"tech"}`

	tests := []struct {
		name   string
		token  string
		header http.Header
		method string
		target string
		want   int
	}{
		{name: "create without token", token: testToken, method: http.MethodPost, target: "/api/posts", want: http.StatusUnauthorized},
		{name: "create with wrong token", token: testToken, header: bearer("nope"), method: http.MethodPost, target: "/api/posts", want: http.StatusUnauthorized},
		{name: "create with token", token: testToken, header: bearer(testToken), method: http.MethodPost, target: "/api/posts", want: http.StatusCreated},
		{name: "update without token", token: testToken, method: http.MethodPut, target: "/api/posts/" + id, want: http.StatusUnauthorized},
		{name: "delete without token", token: testToken, method: http.MethodDelete, target: "/api/posts/" + id, want: http.StatusUnauthorized},
		{name: "delete with token", token: testToken, header: bearer(testToken), method: http.MethodDelete, target: "/api/posts/" + id, want: http.StatusNotFound},
		{name: "writes disabled", token: "", header: bearer(""), method: http.MethodPost, target: "/api/posts", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, Options{WriteToken: tt.token})

			reqBody := ""
			if tt.method != http.MethodDelete {
				reqBody = body
			}
			rec := serve(r, tt.method, tt.target, reqBody, tt.header)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestSearchRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)
	r := newTestRouter(t, Options{SearchLimiter: limiter})

	for i := 0; i < 2; i++ {
		if rec := serve(r, http.MethodGet, "/api/search?q=go", "", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, rec.Code)
		}
	}

	rec := serve(r, http.MethodGet, "/api/search?q=go", "", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status: got %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 should carry Retry-After")
	}

	// Other routes are not limited.
	if rec := serve(r, http.MethodGet, "/api/posts", "", nil); rec.Code != http.StatusOK {
		t.Errorf("/api/posts: got %d, want 200", rec.Code)
	}
}

func strPtr(s string) *string { return &s }
