// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"folio/internal/apperr"
	"folio/internal/models"
)

func TestWrapTranslatesSQLState(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantMissing  bool
		wantConflict bool
	}{
		{name: "undefined table", err: &pgconn.PgError{Code: "42P01"}, wantMissing: true},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, wantConflict: true},
		{name: "other pg error", err: &pgconn.PgError{Code: "57014"}},
		{name: "plain error", err: errors.New("connection refused")},
		{name: "wrapped undefined table", err: fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01"}), wantMissing: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrap("op", tt.err)
			if !errors.Is(got, tt.err) {
				t.Error("wrapped error lost its cause")
			}
			if errors.Is(got, apperr.ErrMissingRelation) != tt.wantMissing {
				t.Errorf("ErrMissingRelation: got %v, want %v", !tt.wantMissing, tt.wantMissing)
			}
			if errors.Is(got, apperr.ErrConflict) != tt.wantConflict {
				t.Errorf("ErrConflict: got %v, want %v", !tt.wantConflict, tt.wantConflict)
			}
			if IsMissingRelation(got) != tt.wantMissing {
				t.Errorf("IsMissingRelation: got %v, want %v", !tt.wantMissing, tt.wantMissing)
			}
		})
	}
}

func TestScanTargetsUnknownColumn(t *testing.T) {
	var p models.Post
	var tags []byte
	if _, err := scanTargets(&p, []string{"id", "password_hash"}, &tags); err == nil {
		t.Error("expected an error for unknown column")
	}
	dest, err := scanTargets(&p, PostColumns, &tags)
	if err != nil {
		t.Fatalf("scanTargets: %v", err)
	}
	if len(dest) != len(PostColumns) {
		t.Errorf("got %d targets, want %d", len(dest), len(PostColumns))
	}
}
