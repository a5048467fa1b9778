package gpu

// Null is a Device that hands out handles without touching a graphics API.
// It backs headless tools that only need load-time bookkeeping.
type Null struct {
	next uint32
}

// NewNull returns a ready Null device.
func NewNull() *Null {
	return &Null{}
}

func (n *Null) handle() uint32 {
	n.next++
	return n.next
}

func (n *Null) UploadTexture(Image) uint32 { return n.handle() }
func (n *Null) DeleteTexture(uint32)       {}
func (n *Null) BindTexture(int, uint32)    {}
func (n *Null) ActiveTexture(int)          {}
func (n *Null) DeleteMesh(MeshBuffers)     {}
func (n *Null) DrawElements(MeshBuffers)   {}
func (n *Null) DepthMask(bool)             {}

func (n *Null) UploadMesh(vertices []byte, layout VertexLayout, indices []uint32) MeshBuffers {
	b := MeshBuffers{VAO: n.handle(), VBO: n.handle()}
	if len(indices) > 0 {
		b.EBO = n.handle()
		b.IndexCount = int32(len(indices))
	}
	return b
}
