package domain

import "errors"

// Sentinel errors shared across services and repositories. Repositories map
// storage-level conditions (e.g. sql.ErrNoRows) onto these; controllers map
// them onto HTTP status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
	ErrSoldOut      = errors.New("sold out")
)

// ErrDuplicateEmail is returned when signing up with an email already in use.
var ErrDuplicateEmail = errors.New("email already in use")
