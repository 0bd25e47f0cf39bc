// Package storage is the file store for uploaded documents. A Backend persists
// bytes by key; FileStore layers size and type filtering and key generation on top.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	ErrNotFound        = errors.New("stored file not found")
	ErrEmptyKey        = errors.New("storage key required")
	ErrInvalidKey      = errors.New("storage key invalid")
	ErrFileTooLarge    = errors.New("file exceeds size limit")
	ErrUnsupportedType = errors.New("file type not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// Backend persists opaque objects addressed by a slash separated key.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(key string) (string, error)
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	return nil
}
