// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the folio JSON API. Each handler group
// depends on small interfaces so tests can swap the store-backed services
// for in-memory fakes.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ResponseCache stores encoded responses between post writes. A nil
// ResponseCache disables caching.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
	InvalidateAll(ctx context.Context)
}

// logFailure records a failed operation with enough context to find the
// request again.
func logFailure(r *http.Request, op string, start time.Time, err error) {
	slog.Error("operation failed",
		"operation", op,
		"duration", time.Since(start).String(),
		"request_id", chimw.GetReqID(r.Context()),
		"error", err,
	)
}
