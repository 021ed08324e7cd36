package swmesh

// Magic identifies a mesh container file.
var Magic = [4]byte{'M', 'E', 'S', 'H'}

const (
	// Version is the only supported container version.
	Version = 1

	// HeaderSize is the fixed length of the leading header record.
	HeaderSize = 40

	// VertexSize is the wire stride of one vertex record:
	// position 3xf32, color RGBA 4xu8, normal 3xf32.
	VertexSize = 28

	// IndexSize is the wire width of one index (uint16).
	IndexSize = 2

	// FaceSize is the number of indices per face. The container stores
	// triangle lists only.
	FaceSize = 3

	// MaxNameLength caps submesh name lengths. Anything larger is treated
	// as corruption rather than allocated.
	MaxNameLength = 1000
)

// Header flags.
const (
	flagSubMeshTable uint16 = 1 << 0
)

// Header is the fixed leading record describing format identity, version and
// section layout. All multi-byte fields are little-endian.
//
// Wire layout (40 bytes):
//
//	[0:4]   magic "MESH"
//	[4:6]   version
//	[6:8]   flags (bit0: submesh table present)
//	[8:12]  vertex count
//	[12:16] index count
//	[16:20] submesh count
//	[20:24] vertex section offset
//	[24:28] index section offset
//	[28:32] submesh table offset (0 when absent)
//	[32:36] declared total file size
//	[36:40] reserved
type Header struct {
	Version       uint16
	Flags         uint16
	VertexCount   uint32
	IndexCount    uint32
	SubMeshCount  uint32
	VertexOffset  uint32
	IndexOffset   uint32
	SubMeshOffset uint32
	FileSize      uint32
}

// HasSubMeshes reports whether the optional submesh table is present.
func (h Header) HasSubMeshes() bool { return h.Flags&flagSubMeshTable != 0 }

// decodeHeader reads and validates the header record, leaving the cursor at
// the start of the vertex section. Validation covers format identity and the
// internal consistency of the declared section layout; whether the buffer
// actually holds the declared sections surfaces as ErrUnexpectedEOF when the
// section decoders run short, and trailing-byte checks are the assembler's
// job.
func decodeHeader(c *Cursor) (Header, error) {
	magic, err := c.Bytes(4)
	if err != nil {
		return Header{}, err
	}
	if [4]byte(magic) != Magic {
		return Header{}, &MagicError{Got: [4]byte(magic)}
	}

	var h Header
	if h.Version, err = c.Uint16(); err != nil {
		return Header{}, err
	}
	if h.Version != Version {
		return Header{}, &VersionError{Version: h.Version}
	}
	if h.Flags, err = c.Uint16(); err != nil {
		return Header{}, err
	}
	if h.VertexCount, err = c.Uint32(); err != nil {
		return Header{}, err
	}
	if h.IndexCount, err = c.Uint32(); err != nil {
		return Header{}, err
	}
	if h.SubMeshCount, err = c.Uint32(); err != nil {
		return Header{}, err
	}
	if h.VertexOffset, err = c.Uint32(); err != nil {
		return Header{}, err
	}
	if h.IndexOffset, err = c.Uint32(); err != nil {
		return Header{}, err
	}
	if h.SubMeshOffset, err = c.Uint32(); err != nil {
		return Header{}, err
	}
	if h.FileSize, err = c.Uint32(); err != nil {
		return Header{}, err
	}
	if err = c.Skip(4); err != nil { // reserved
		return Header{}, err
	}

	if err = h.validateLayout(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// validateLayout checks that the declared offsets agree with the declared
// counts. Arithmetic runs in uint64 so hostile counts cannot wrap.
func (h Header) validateLayout() error {
	if h.VertexOffset != HeaderSize {
		return &SizeError{Field: "vertex offset", Declared: uint64(h.VertexOffset), Actual: HeaderSize}
	}

	indexOffset := HeaderSize + uint64(h.VertexCount)*VertexSize
	if uint64(h.IndexOffset) != indexOffset {
		return &SizeError{Field: "index offset", Declared: uint64(h.IndexOffset), Actual: indexOffset}
	}

	indexEnd := indexOffset + uint64(h.IndexCount)*IndexSize
	if h.HasSubMeshes() {
		if uint64(h.SubMeshOffset) != indexEnd {
			return &SizeError{Field: "submesh offset", Declared: uint64(h.SubMeshOffset), Actual: indexEnd}
		}
	} else {
		if h.SubMeshOffset != 0 {
			return &SizeError{Field: "submesh offset", Declared: uint64(h.SubMeshOffset), Actual: 0}
		}
		if h.SubMeshCount != 0 {
			return &SizeError{Field: "submesh count", Declared: uint64(h.SubMeshCount), Actual: 0}
		}
	}

	return nil
}
