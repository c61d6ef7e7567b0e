package store

import "errors"

var (
	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned by CreateFeedKey when a row for the same
	// (site, user) pair was inserted by a concurrent request. Callers treat
	// it as "record now exists, re-fetch".
	ErrDuplicateKey = errors.New("feed key already exists")
)
