// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// SeriesMembership links a post to the series it belongs to. A post has at
// most one membership row. Position, when set, is the authoritative order
// within the series.
type SeriesMembership struct {
	PostID      uuid.UUID `json:"post_id"`
	SeriesSlug  string    `json:"series_slug"`
	SeriesTitle string    `json:"series_title"`
	Position    *int      `json:"position,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
