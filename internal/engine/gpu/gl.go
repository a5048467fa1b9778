package gpu

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GL is the OpenGL 4.1 core implementation of Device.
// gl.Init must have been called on the current context.
type GL struct{}

// NewGL returns the OpenGL device.
func NewGL() *GL {
	return &GL{}
}

func glFormat(f Format) (internal int32, format uint32) {
	switch f {
	case FormatR8:
		return gl.R8, gl.RED
	case FormatRGB8:
		return gl.RGB8, gl.RGB
	case FormatSRGB8:
		return gl.SRGB8, gl.RGB
	case FormatSRGB8Alpha8:
		return gl.SRGB8_ALPHA8, gl.RGBA
	default:
		return gl.RGBA8, gl.RGBA
	}
}

// UploadTexture uploads the image with a full mip chain.
func (d *GL) UploadTexture(img Image) uint32 {
	internal, format := glFormat(img.Format)

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	// Rows of 1 and 3 channel images are not 4-byte aligned.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	var ptr unsafe.Pointer
	if len(img.Pixels) > 0 {
		ptr = gl.Ptr(img.Pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(img.Width), int32(img.Height), 0, format, gl.UNSIGNED_BYTE, ptr)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id
}

func (d *GL) DeleteTexture(id uint32) {
	if id != 0 {
		gl.DeleteTextures(1, &id)
	}
}

func (d *GL) BindTexture(unit int, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, id)
}

func (d *GL) ActiveTexture(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
}

// UploadMesh creates a VAO with an interleaved VBO and, when indices are
// present, an element buffer.
func (d *GL) UploadMesh(vertices []byte, layout VertexLayout, indices []uint32) MeshBuffers {
	var b MeshBuffers

	gl.GenVertexArrays(1, &b.VAO)
	gl.BindVertexArray(b.VAO)

	gl.GenBuffers(1, &b.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.VBO)
	var vptr unsafe.Pointer
	if len(vertices) > 0 {
		vptr = gl.Ptr(vertices)
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices), vptr, gl.STATIC_DRAW)

	if len(indices) > 0 {
		gl.GenBuffers(1, &b.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
		b.IndexCount = int32(len(indices))
	}

	stride := int32(layout.Stride)
	for _, a := range layout.Attribs {
		gl.EnableVertexAttribArray(a.Index)
		switch a.Type {
		case AttribInt:
			gl.VertexAttribIPointer(a.Index, a.Size, gl.INT, stride, gl.PtrOffset(a.Offset))
		default:
			gl.VertexAttribPointer(a.Index, a.Size, gl.FLOAT, false, stride, gl.PtrOffset(a.Offset))
		}
	}

	gl.BindVertexArray(0)
	return b
}

func (d *GL) DeleteMesh(b MeshBuffers) {
	if b.EBO != 0 {
		gl.DeleteBuffers(1, &b.EBO)
	}
	if b.VBO != 0 {
		gl.DeleteBuffers(1, &b.VBO)
	}
	if b.VAO != 0 {
		gl.DeleteVertexArrays(1, &b.VAO)
	}
}

func (d *GL) DrawElements(b MeshBuffers) {
	gl.BindVertexArray(b.VAO)
	gl.DrawElements(gl.TRIANGLES, b.IndexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (d *GL) DepthMask(write bool) {
	gl.DepthMask(write)
}
