// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"folio/internal/apperr"
)

// PostgreSQL SQLSTATE codes the stores translate into sentinel errors.
const (
	codeUndefinedTable  = "42P01"
	codeUniqueViolation = "23505"
)

// pgCode returns the SQLSTATE carried by err, or "" if err is not a
// PostgreSQL error.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsMissingRelation reports whether err means the queried table does not
// exist in this deployment.
func IsMissingRelation(err error) bool {
	return errors.Is(err, apperr.ErrMissingRelation) || pgCode(err) == codeUndefinedTable
}

// wrap annotates err with op and, when the cause is a known SQLSTATE,
// attaches the matching sentinel so callers can use errors.Is.
func wrap(op string, err error) error {
	switch pgCode(err) {
	case codeUndefinedTable:
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrMissingRelation, err)
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
