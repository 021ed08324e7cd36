package swmesh

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Decode parses and validates a complete mesh file buffer.
//
// The pipeline is strictly sequential: header, vertex section, index
// section, optional submesh table, then cross-section validation. The first
// failure short-circuits the remaining stages and is returned as a typed
// error; see the package sentinels for the possible kinds. Decode never
// reads past len(data) and never panics on malformed input.
func Decode(data []byte) (*Mesh, error) {
	c := NewCursor(data)

	h, err := decodeHeader(c)
	if err != nil {
		return nil, err
	}

	vertices, err := decodeVertices(c, h.VertexCount)
	if err != nil {
		return nil, err
	}

	indices, err := decodeIndices(c, h.IndexCount)
	if err != nil {
		return nil, err
	}

	var subMeshes []SubMesh
	if h.HasSubMeshes() {
		if subMeshes, err = decodeSubMeshes(c, h.SubMeshCount); err != nil {
			return nil, err
		}
	}

	return assemble(h, vertices, indices, subMeshes, c)
}

// decodeVertices reads exactly count fixed-stride vertex records.
func decodeVertices(c *Cursor, count uint32) ([]Vertex, error) {
	// Reject counts the buffer cannot possibly hold before allocating for
	// them. A hostile header must not drive allocation size.
	if need := uint64(count) * VertexSize; need > uint64(c.Remaining()) {
		return nil, &TruncatedError{Offset: c.Offset(), Want: int(need), Remaining: c.Remaining()}
	}

	vertices := make([]Vertex, count)
	for i := range vertices {
		rec, err := c.Bytes(VertexSize)
		if err != nil {
			return nil, err
		}
		v := &vertices[i]
		v.Position[0] = math.Float32frombits(binary.LittleEndian.Uint32(rec[0:]))
		v.Position[1] = math.Float32frombits(binary.LittleEndian.Uint32(rec[4:]))
		v.Position[2] = math.Float32frombits(binary.LittleEndian.Uint32(rec[8:]))
		copy(v.Color[:], rec[12:16])
		v.Normal[0] = math.Float32frombits(binary.LittleEndian.Uint32(rec[16:]))
		v.Normal[1] = math.Float32frombits(binary.LittleEndian.Uint32(rec[20:]))
		v.Normal[2] = math.Float32frombits(binary.LittleEndian.Uint32(rec[24:]))
	}
	return vertices, nil
}

// decodeIndices reads exactly count 16-bit indices, widening them to uint32
// for the renderer-facing representation. Bounds against the vertex section
// are the assembler's job.
func decodeIndices(c *Cursor, count uint32) ([]uint32, error) {
	if need := uint64(count) * IndexSize; need > uint64(c.Remaining()) {
		return nil, &TruncatedError{Offset: c.Offset(), Want: int(need), Remaining: c.Remaining()}
	}

	indices := make([]uint32, count)
	for i := range indices {
		v, err := c.Uint16()
		if err != nil {
			return nil, err
		}
		indices[i] = uint32(v)
	}
	return indices, nil
}

// decodeSubMeshes reads exactly count variable-length submesh records.
func decodeSubMeshes(c *Cursor, count uint32) ([]SubMesh, error) {
	// 12 bytes is the smallest possible record (empty name).
	const minRecordSize = 12
	if need := uint64(count) * minRecordSize; need > uint64(c.Remaining()) {
		return nil, &TruncatedError{Offset: c.Offset(), Want: int(need), Remaining: c.Remaining()}
	}

	subMeshes := make([]SubMesh, 0, count)
	for i := 0; i < int(count); i++ {
		sm, err := decodeSubMesh(c, i)
		if err != nil {
			return nil, err
		}
		subMeshes = append(subMeshes, sm)
	}
	return subMeshes, nil
}

func decodeSubMesh(c *Cursor, pos int) (SubMesh, error) {
	var sm SubMesh
	var err error

	if sm.IndexStart, err = c.Uint32(); err != nil {
		return SubMesh{}, err
	}
	if sm.IndexLength, err = c.Uint32(); err != nil {
		return SubMesh{}, err
	}

	shader, err := c.Uint16()
	if err != nil {
		return SubMesh{}, err
	}
	if shader >= uint16(shaderTypeCount) {
		return SubMesh{}, &ShaderTypeError{SubMesh: pos, Value: shader}
	}
	sm.Shader = ShaderType(shader)

	nameLen, err := c.Uint16()
	if err != nil {
		return SubMesh{}, err
	}
	if nameLen > MaxNameLength {
		return SubMesh{}, &NameError{SubMesh: pos, Length: int(nameLen), Reason: "exceeds maximum length"}
	}
	name, err := c.Bytes(int(nameLen))
	if err != nil {
		return SubMesh{}, err
	}
	if !utf8.Valid(name) {
		return SubMesh{}, &NameError{SubMesh: pos, Length: int(nameLen), Reason: "not valid UTF-8"}
	}
	sm.Name = string(name)

	return sm, nil
}

// assemble cross-validates the decoded sections and constructs the immutable
// Mesh. This is the single choke point where a malformed-but-parseable file
// is rejected before reaching calling code.
func assemble(h Header, vertices []Vertex, indices []uint32, subMeshes []SubMesh, c *Cursor) (*Mesh, error) {
	if len(indices)%FaceSize != 0 {
		return nil, &SizeError{Field: "face grouping", Declared: uint64(h.IndexCount), Actual: uint64(len(indices) % FaceSize)}
	}

	for i, idx := range indices {
		if idx >= h.VertexCount {
			return nil, &IndexError{Position: i, Index: idx, VertexCount: h.VertexCount}
		}
	}

	for i, sm := range subMeshes {
		if sm.IndexStart > h.IndexCount {
			return nil, &SubMeshBoundsError{SubMesh: i, Index: uint64(sm.IndexStart), Bound: h.IndexCount}
		}
		if end := uint64(sm.IndexStart) + uint64(sm.IndexLength); end > uint64(h.IndexCount) {
			return nil, &SubMeshBoundsError{SubMesh: i, Index: end, Bound: h.IndexCount}
		}
	}

	// The declared size must match both the bytes consumed and the bytes
	// present. Unconsumed trailing bytes are rejected, not ignored.
	if h.FileSize != uint32(c.Offset()) {
		return nil, &SizeError{Field: "file size", Declared: uint64(h.FileSize), Actual: uint64(c.Offset())}
	}
	if c.Remaining() != 0 {
		return nil, &SizeError{Field: "trailing bytes", Declared: uint64(h.FileSize), Actual: uint64(c.Len())}
	}

	return &Mesh{
		header:    h,
		vertices:  vertices,
		indices:   indices,
		subMeshes: subMeshes,
	}, nil
}
