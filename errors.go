package swmesh

import (
	"errors"
	"fmt"
)

// Decode error kinds. Every decode failure unwraps to exactly one of these,
// so callers can classify with errors.Is and recover positional detail with
// errors.As against the typed errors below.
var (
	// ErrUnexpectedEOF is returned when the buffer is shorter than a
	// required read.
	ErrUnexpectedEOF = errors.New("unexpected end of buffer")

	// ErrInvalidMagic is returned when the leading signature does not
	// identify a mesh container.
	ErrInvalidMagic = errors.New("invalid magic")

	// ErrUnsupportedVersion is returned when the container version is
	// outside the supported set.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrSizeMismatch is returned when declared and actual sizes disagree,
	// including unconsumed trailing bytes.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrIndexOutOfRange is returned when an index references a
	// nonexistent vertex, or a submesh range exceeds the index section.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidShaderType is returned when a submesh names a shader
	// outside the known set.
	ErrInvalidShaderType = errors.New("invalid shader type")

	// ErrInvalidName is returned when a submesh name is oversized or not
	// valid UTF-8.
	ErrInvalidName = errors.New("invalid submesh name")
)

// ErrIO classifies bulk-path failures to obtain a file's bytes. The
// underlying cause is attached with fmt.Errorf("%w: ...: %w", ErrIO, err)
// and remains reachable through errors.Is/errors.As.
var ErrIO = errors.New("failed to read mesh source")

// Misuse errors. These indicate a programming error in the caller and are
// surfaced immediately from constructors or batch entry points, never folded
// into per-file results.
var (
	ErrNilStore           = errors.New("blob store must not be nil")
	ErrInvalidConcurrency = errors.New("max concurrent loads must be positive")
	ErrNoInputs           = errors.New("batch must contain at least one input")
)

// TruncatedError reports a read past the end of the buffer.
type TruncatedError struct {
	Offset    int // cursor position when the read was attempted
	Want      int // bytes the read required
	Remaining int // bytes left in the buffer
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("unexpected end of buffer: need %d bytes at offset %d, %d remaining", e.Want, e.Offset, e.Remaining)
}

func (e *TruncatedError) Unwrap() error { return ErrUnexpectedEOF }

// MagicError reports a signature mismatch in the first bytes of the file.
type MagicError struct {
	Got [4]byte
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("invalid magic %q, want %q", e.Got[:], Magic[:])
}

func (e *MagicError) Unwrap() error { return ErrInvalidMagic }

// VersionError reports a container version outside the supported set.
type VersionError struct {
	Version uint16
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported version %d, want %d", e.Version, Version)
}

func (e *VersionError) Unwrap() error { return ErrUnsupportedVersion }

// SizeError reports a disagreement between a declared and an actual size or
// offset.
type SizeError struct {
	Field    string
	Declared uint64
	Actual   uint64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("size mismatch: %s declared %d, actual %d", e.Field, e.Declared, e.Actual)
}

func (e *SizeError) Unwrap() error { return ErrSizeMismatch }

// IndexError reports an index value referencing a nonexistent vertex.
type IndexError struct {
	Position    int // position within the index section
	Index       uint32
	VertexCount uint32
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d at position %d exceeds vertex count %d", e.Index, e.Position, e.VertexCount)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// SubMeshBoundsError reports a submesh whose index range starts or runs
// outside the index section.
type SubMeshBoundsError struct {
	SubMesh int // position within the submesh table
	Index   uint64
	Bound   uint32
}

func (e *SubMeshBoundsError) Error() string {
	return fmt.Sprintf("submesh %d index range reaches %d, exceeds index count %d", e.SubMesh, e.Index, e.Bound)
}

func (e *SubMeshBoundsError) Unwrap() error { return ErrIndexOutOfRange }

// ShaderTypeError reports a shader identifier outside the known set.
type ShaderTypeError struct {
	SubMesh int
	Value   uint16
}

func (e *ShaderTypeError) Error() string {
	return fmt.Sprintf("submesh %d has unknown shader type %d", e.SubMesh, e.Value)
}

func (e *ShaderTypeError) Unwrap() error { return ErrInvalidShaderType }

// NameError reports an unusable submesh name.
type NameError struct {
	SubMesh int
	Length  int
	Reason  string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("submesh %d name (%d bytes): %s", e.SubMesh, e.Length, e.Reason)
}

func (e *NameError) Unwrap() error { return ErrInvalidName }
