// Package testutil provides helpers for constructing synthetic mesh file
// buffers in tests and benchmarks.
package testutil

import (
	"encoding/binary"
	"math"
	"math/rand"
	"sync"

	"github.com/nautiq/swmesh"
)

// Builder constructs a wire-format mesh buffer from in-memory sections. The
// zero value with no sections encodes a valid, empty mesh.
//
// Fields mirror what a well-formed writer would produce; tests corrupt the
// returned bytes directly (flip magic, truncate, append garbage) to build
// malformed inputs.
type Builder struct {
	Vertices  []swmesh.Vertex
	Indices   []uint16
	SubMeshes []swmesh.SubMesh

	// Version overrides the container version when nonzero.
	Version uint16

	// ForceSubMeshTable marks the submesh table present even when
	// SubMeshes is empty.
	ForceSubMeshTable bool
}

// Bytes encodes the builder's sections into a complete mesh file buffer.
func (b Builder) Bytes() []byte {
	version := b.Version
	if version == 0 {
		version = swmesh.Version
	}

	hasSubMeshes := len(b.SubMeshes) > 0 || b.ForceSubMeshTable

	subMeshBytes := 0
	for _, sm := range b.SubMeshes {
		subMeshBytes += 12 + len(sm.Name)
	}

	vertexOffset := uint32(swmesh.HeaderSize)
	indexOffset := vertexOffset + uint32(len(b.Vertices))*swmesh.VertexSize
	indexEnd := indexOffset + uint32(len(b.Indices))*swmesh.IndexSize
	fileSize := indexEnd + uint32(subMeshBytes)

	buf := make([]byte, 0, fileSize)
	buf = append(buf, swmesh.Magic[:]...)
	buf = appendUint16(buf, version)
	var flags uint16
	if hasSubMeshes {
		flags |= 1
	}
	buf = appendUint16(buf, flags)
	buf = appendUint32(buf, uint32(len(b.Vertices)))
	buf = appendUint32(buf, uint32(len(b.Indices)))
	buf = appendUint32(buf, uint32(len(b.SubMeshes)))
	buf = appendUint32(buf, vertexOffset)
	buf = appendUint32(buf, indexOffset)
	if hasSubMeshes {
		buf = appendUint32(buf, indexEnd)
	} else {
		buf = appendUint32(buf, 0)
	}
	buf = appendUint32(buf, fileSize)
	buf = append(buf, 0, 0, 0, 0) // reserved

	for _, v := range b.Vertices {
		buf = appendFloat32(buf, v.Position[0])
		buf = appendFloat32(buf, v.Position[1])
		buf = appendFloat32(buf, v.Position[2])
		buf = append(buf, v.Color[:]...)
		buf = appendFloat32(buf, v.Normal[0])
		buf = appendFloat32(buf, v.Normal[1])
		buf = appendFloat32(buf, v.Normal[2])
	}

	for _, idx := range b.Indices {
		buf = appendUint16(buf, idx)
	}

	for _, sm := range b.SubMeshes {
		buf = appendUint32(buf, sm.IndexStart)
		buf = appendUint32(buf, sm.IndexLength)
		buf = appendUint16(buf, uint16(sm.Shader))
		buf = appendUint16(buf, uint16(len(sm.Name)))
		buf = append(buf, sm.Name...)
	}

	return buf
}

// PatchFileSize rewrites the header's declared file size in place. Used to
// build buffers whose declaration disagrees with their layout.
func PatchFileSize(buf []byte, size uint32) {
	binary.LittleEndian.PutUint32(buf[32:], size)
}

func appendUint16(buf []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(buf, v)
}

func appendUint32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

func appendFloat32(buf []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
}

// RNG is a seeded, thread-safe random number generator for reproducible
// test data.
type RNG struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{rand: rand.New(rand.NewSource(seed))}
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// Vertices generates n random vertices.
func (r *RNG) Vertices(n int) []swmesh.Vertex {
	r.mu.Lock()
	defer r.mu.Unlock()

	vertices := make([]swmesh.Vertex, n)
	for i := range vertices {
		v := &vertices[i]
		for j := 0; j < 3; j++ {
			v.Position[j] = r.rand.Float32()*2 - 1
			v.Normal[j] = r.rand.Float32()*2 - 1
		}
		for j := 0; j < 4; j++ {
			v.Color[j] = uint8(r.rand.Intn(256))
		}
	}
	return vertices
}

// Triangles generates n*3 indices forming n faces over vertexCount vertices.
func (r *RNG) Triangles(n, vertexCount int) []uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	indices := make([]uint16, n*3)
	for i := range indices {
		indices[i] = uint16(r.rand.Intn(vertexCount))
	}
	return indices
}
