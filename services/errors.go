package services

import "errors"

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrVersionNotFound   = errors.New("version not found")
	ErrForbidden         = errors.New("insufficient permissions")
	ErrPasswordRequired  = errors.New("password required")
	ErrIncorrectPassword = errors.New("incorrect password")

	// ErrDuplicateKey is returned by FileStore.Insert when another record
	// already holds the same creation-time dedup key.
	ErrDuplicateKey = errors.New("duplicate dedup key")

	// ErrVersionConflict is returned by FileStore.ReplaceVersioned when the
	// record's current_version no longer matches the expected token.
	ErrVersionConflict = errors.New("concurrent modification, stale version token")
)
