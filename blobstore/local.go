package blobstore

import (
	"context"
	"path/filepath"

	"github.com/nautiq/swmesh/internal/mmap"
)

// LocalStore implements BlobStore on the local file system, rooted at a
// directory. Files are memory-mapped, so opening hundreds of meshes does not
// buffer them all through the heap.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Open opens a blob for reading.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	m, err := mmap.Open(filepath.Join(s.root, name))
	if err != nil {
		return nil, err
	}
	return &localBlob{m: m}, nil
}

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) Bytes(_ context.Context) ([]byte, error) {
	return b.m.Bytes(), nil
}

func (b *localBlob) Size() int64 {
	return int64(b.m.Size())
}

func (b *localBlob) Close() error {
	return b.m.Close()
}
