// Package storage holds the key/value blob backends the record store
// persists its collection through.
package storage

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by Read when nothing is stored under a key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore reads and writes opaque blobs by key. Write replaces the whole
// value atomically.
type BlobStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}
