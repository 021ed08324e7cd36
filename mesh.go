package swmesh

import "fmt"

// ShaderType identifies the material pipeline a submesh is rendered with.
type ShaderType uint16

const (
	ShaderOpaque ShaderType = iota
	ShaderTransparent
	ShaderEmissive
	ShaderLava

	shaderTypeCount
)

func (s ShaderType) String() string {
	switch s {
	case ShaderOpaque:
		return "opaque"
	case ShaderTransparent:
		return "transparent"
	case ShaderEmissive:
		return "emissive"
	case ShaderLava:
		return "lava"
	default:
		return fmt.Sprintf("shader(%d)", uint16(s))
	}
}

// Vertex is one geometry sample.
type Vertex struct {
	Position [3]float32
	Color    [4]uint8 // RGBA
	Normal   [3]float32
}

// SubMesh tags a contiguous range of the index section with a shader and a
// human-readable name.
type SubMesh struct {
	IndexStart  uint32
	IndexLength uint32
	Shader      ShaderType
	Name        string
}

// Mesh is the validated, immutable result of decoding one file. It
// exclusively owns its sequences; nothing is shared with the source buffer
// or with other Mesh values.
//
// The accessor slices are the mesh's own backing storage and must not be
// modified. Engine adapters read them to build native renderable meshes.
type Mesh struct {
	header    Header
	vertices  []Vertex
	indices   []uint32
	subMeshes []SubMesh
}

// Header returns the decoded header record.
func (m *Mesh) Header() Header { return m.header }

// Vertices returns the ordered vertex sequence.
func (m *Mesh) Vertices() []Vertex { return m.vertices }

// Indices returns the ordered index sequence. Indices are widened to uint32
// from their 16-bit wire form; every value is less than VertexCount.
func (m *Mesh) Indices() []uint32 { return m.indices }

// SubMeshes returns the submesh table, or nil when the file carries none.
func (m *Mesh) SubMeshes() []SubMesh { return m.subMeshes }

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.vertices) }

// TriangleCount returns the number of faces in the index section.
func (m *Mesh) TriangleCount() int { return len(m.indices) / FaceSize }
