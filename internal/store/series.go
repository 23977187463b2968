// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"folio/internal/models"
)

// SeriesStore manages post_series membership rows. The table is optional
// per deployment; when it is missing every method returns an error that
// satisfies errors.Is(err, apperr.ErrMissingRelation).
type SeriesStore struct {
	db *sql.DB
}

// NewSeriesStore returns a new SeriesStore.
func NewSeriesStore(db *sql.DB) *SeriesStore {
	return &SeriesStore{db: db}
}

const seriesColumns = `post_id, series_slug, series_title, position, created_at, updated_at`

// scanMembership scans a row into a SeriesMembership struct.
func scanMembership(scanner interface{ Scan(...any) error }) (*models.SeriesMembership, error) {
	var m models.SeriesMembership
	var position sql.NullInt64
	err := scanner.Scan(
		&m.PostID, &m.SeriesSlug, &m.SeriesTitle, &position, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if position.Valid {
		p := int(position.Int64)
		m.Position = &p
	}
	return &m, nil
}

// FindByPostID returns the membership of a post. Returns nil if the post is
// not part of any series.
func (s *SeriesStore) FindByPostID(ctx context.Context, postID uuid.UUID) (*models.SeriesMembership, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+seriesColumns+` FROM post_series WHERE post_id = $1`, postID)
	m, err := scanMembership(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find series membership", err)
	}
	return m, nil
}

// ListBySlug returns every membership row sharing seriesSlug, in no
// particular order.
func (s *SeriesStore) ListBySlug(ctx context.Context, seriesSlug string) ([]models.SeriesMembership, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+seriesColumns+` FROM post_series WHERE series_slug = $1`, seriesSlug)
	if err != nil {
		return nil, wrap("list series members", err)
	}
	defer rows.Close()

	var items []models.SeriesMembership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, wrap("scan series membership", err)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list series members", err)
	}
	return items, nil
}

// Upsert inserts or replaces the membership row of m.PostID. A post keeps
// at most one row; re-saving overwrites slug, title and position.
func (s *SeriesStore) Upsert(ctx context.Context, m *models.SeriesMembership) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO post_series (post_id, series_slug, series_title, position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_id) DO UPDATE SET
			series_slug  = EXCLUDED.series_slug,
			series_title = EXCLUDED.series_title,
			position     = EXCLUDED.position,
			updated_at   = NOW()
	`, m.PostID, m.SeriesSlug, m.SeriesTitle, m.Position)
	if err != nil {
		return wrap("upsert series membership", err)
	}
	return nil
}

// Delete removes the membership row of postID, if any.
func (s *SeriesStore) Delete(ctx context.Context, postID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM post_series WHERE post_id = $1`, postID); err != nil {
		return wrap("delete series membership", err)
	}
	return nil
}
