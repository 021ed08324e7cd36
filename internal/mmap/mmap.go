// Package mmap provides read-only memory-mapped file access.
package mmap

import (
	"errors"
	"os"
	"sync/atomic"
)

// ErrClosed is returned when a mapping is used after Close.
var ErrClosed = errors.New("mmap: closed")

// Mapping is a read-only memory-mapped file. It owns the underlying byte
// slice and is responsible for unmapping it.
type Mapping struct {
	data   []byte
	size   int
	closed atomic.Bool
}

// Open maps the file at path into memory as read-only.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &Mapping{}, nil
	}
	if size < 0 {
		return nil, errors.New("mmap: file size is negative")
	}

	data, err := mapFile(f, int(size))
	if err != nil {
		return nil, err
	}

	return &Mapping{data: data, size: int(size)}, nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.data == nil {
		return nil
	}
	return unmapFile(m.data)
}

// Bytes returns the underlying byte slice. The slice is valid only until
// Close; accessing it afterwards is undefined behavior.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}
