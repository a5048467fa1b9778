package framebuffer

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// ErrIncomplete is returned when an attachment leaves the framebuffer
// incomplete.
var ErrIncomplete = errors.New("framebuffer incomplete")

// Capture is a render target for textures owned elsewhere: cubemap faces
// and mip levels, or plain 2D textures. It owns only the FBO and a depth
// renderbuffer that follows the attachment size.
type Capture struct {
	fbo      uint32
	depthRBO uint32
	size     int32
}

// NewCapture creates a capture target with a size x size depth buffer.
func NewCapture(size int32) *Capture {
	c := &Capture{}
	gl.GenFramebuffers(1, &c.fbo)
	gl.GenRenderbuffers(1, &c.depthRBO)

	gl.BindFramebuffer(gl.FRAMEBUFFER, c.fbo)
	c.resizeDepth(max(size, 1))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, c.depthRBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return c
}

func (c *Capture) resizeDepth(size int32) {
	if size == c.size {
		return
	}
	c.size = size
	gl.BindRenderbuffer(gl.RENDERBUFFER, c.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, size, size)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
}

// Bind makes the capture target current with a size x size viewport.
func (c *Capture) Bind(size int32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, c.fbo)
	c.resizeDepth(max(size, 1))
	gl.Viewport(0, 0, c.size, c.size)
}

// AttachCubeFace renders into one face of a cubemap at a mip level.
func (c *Capture) AttachCubeFace(cube uint32, face, mip int32) error {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), cube, mip)
	return c.check()
}

// AttachTexture2D renders into a 2D texture's base level.
func (c *Capture) AttachTexture2D(tex uint32) error {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	return c.check()
}

func (c *Capture) check() error {
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("%w: 0x%x", ErrIncomplete, status)
	}
	return nil
}

// Destroy releases the FBO and depth buffer.
func (c *Capture) Destroy() {
	if c.fbo != 0 {
		gl.DeleteFramebuffers(1, &c.fbo)
		c.fbo = 0
	}
	if c.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &c.depthRBO)
		c.depthRBO = 0
	}
}
