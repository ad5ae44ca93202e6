package storage

import "errors"

var (
	// ErrNoProvider is returned for storage types that keep nothing on disk.
	ErrNoProvider             = errors.New("storage provider not available")
	ErrInvalidStorageProvider = errors.New("invalid storage provider")
)
