// Package apperr defines sentinel errors shared between stores, services
// and HTTP handlers.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// ErrMissingRelation reports that a backing table is not provisioned
	// in this deployment.
	ErrMissingRelation = errors.New("relation does not exist")
)
