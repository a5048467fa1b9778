// Package gpu is the boundary between engine resources and the graphics API.
//
// Meshes, textures and models talk to a Device instead of calling OpenGL
// directly, so their bookkeeping can run without a context (headless
// inspection, package tests).
package gpu

import "fmt"

// Format is the internal storage format of a 2D texture.
type Format int

const (
	FormatR8 Format = iota
	FormatRGB8
	FormatSRGB8
	FormatRGBA8
	FormatSRGB8Alpha8
)

// String returns the GL-style name of the format.
func (f Format) String() string {
	switch f {
	case FormatR8:
		return "R8"
	case FormatRGB8:
		return "RGB8"
	case FormatSRGB8:
		return "SRGB8"
	case FormatRGBA8:
		return "RGBA8"
	case FormatSRGB8Alpha8:
		return "SRGB8_ALPHA8"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Channels returns the number of bytes per pixel of the format.
func (f Format) Channels() int {
	switch f {
	case FormatR8:
		return 1
	case FormatRGB8, FormatSRGB8:
		return 3
	default:
		return 4
	}
}

// Image is tightly packed 8-bit pixel data ready for upload.
type Image struct {
	Width  int
	Height int
	Format Format
	Pixels []byte
}

// AttribType selects how a vertex attribute is exposed to the shader.
type AttribType int

const (
	AttribFloat AttribType = iota
	AttribInt
)

// Attrib describes one vertex attribute inside an interleaved buffer.
type Attrib struct {
	Index  uint32
	Size   int32
	Type   AttribType
	Offset int
}

// VertexLayout describes an interleaved vertex buffer.
type VertexLayout struct {
	Stride  int
	Attribs []Attrib
}

// MeshBuffers are the GPU objects backing one indexed mesh.
// EBO is zero when no index data was uploaded.
type MeshBuffers struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
}

// Device performs the GPU operations engine resources need.
// All methods must be called on the render thread.
type Device interface {
	// UploadTexture creates a mipmapped, repeating 2D texture and returns its handle.
	UploadTexture(img Image) uint32
	DeleteTexture(id uint32)
	// BindTexture binds a 2D texture to the given texture unit.
	BindTexture(unit int, id uint32)
	ActiveTexture(unit int)

	// UploadMesh creates vertex and index buffers sized exactly to the data.
	UploadMesh(vertices []byte, layout VertexLayout, indices []uint32) MeshBuffers
	DeleteMesh(b MeshBuffers)
	DrawElements(b MeshBuffers)

	DepthMask(write bool)
}
