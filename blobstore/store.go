package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for obtaining immutable mesh file blobs.
// Path discovery and naming conventions belong to the caller; a store only
// resolves an already-known name to bytes.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
}

// Blob is a read-only handle to one blob's content.
type Blob interface {
	io.Closer

	// Size returns the size of the blob in bytes.
	Size() int64

	// Bytes returns the blob's full content. The slice may alias
	// store-owned memory (e.g. a memory-mapped file) and is valid only
	// until Close.
	Bytes(ctx context.Context) ([]byte, error)
}
