package mmap

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	content := []byte("hello mapping")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	m, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if m.Size() != len(content) {
		t.Fatalf("Size = %d, want %d", m.Size(), len(content))
	}
	if !bytes.Equal(m.Bytes(), content) {
		t.Fatalf("Bytes = %q, want %q", m.Bytes(), content)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if m.Bytes() != nil {
		t.Fatal("Bytes after Close should be nil")
	}
	// Idempotent.
	if err := m.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestOpenEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	m, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer m.Close()

	if m.Size() != 0 || len(m.Bytes()) != 0 {
		t.Fatalf("empty file mapped to %d bytes", m.Size())
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("Open of missing file succeeded")
	}
}
