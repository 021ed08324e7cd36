package swmesh

import (
	"encoding/binary"
	"math"
)

// Cursor is a bounds-checked sequential reader over a fixed byte buffer.
//
// Every read is atomic with respect to its bounds check: it either succeeds
// and advances the offset by exactly the consumed width, or it fails with a
// *TruncatedError and leaves the offset unchanged. Multi-byte values are
// little-endian, matching the container format.
type Cursor struct {
	buf []byte
	off int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Len returns the total buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

// Offset returns the current read position.
func (c *Cursor) Offset() int { return c.off }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.off }

func (c *Cursor) require(n int) error {
	if n < 0 || n > len(c.buf)-c.off {
		return &TruncatedError{Offset: c.off, Want: n, Remaining: len(c.buf) - c.off}
	}
	return nil
}

// Skip advances the cursor by n bytes without reading them.
func (c *Cursor) Skip(n int) error {
	if err := c.require(n); err != nil {
		return err
	}
	c.off += n
	return nil
}

// Bytes returns the next n bytes as a subslice of the underlying buffer.
// The slice aliases the buffer; callers that retain it must copy.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.require(n); err != nil {
		return nil, err
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

// Uint8 reads one byte.
func (c *Cursor) Uint8() (uint8, error) {
	if err := c.require(1); err != nil {
		return 0, err
	}
	v := c.buf[c.off]
	c.off++
	return v, nil
}

// Uint16 reads a little-endian 16-bit integer.
func (c *Cursor) Uint16() (uint16, error) {
	if err := c.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.buf[c.off:])
	c.off += 2
	return v, nil
}

// Uint32 reads a little-endian 32-bit integer.
func (c *Cursor) Uint32() (uint32, error) {
	if err := c.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return v, nil
}

// Float32 reads a little-endian IEEE 754 single-precision float.
func (c *Cursor) Float32() (float32, error) {
	v, err := c.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}
