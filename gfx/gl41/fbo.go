package gl41

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/forge3d/forward/gfx"
)

// depthFramebuffer is a depth-only render target for shadow rendering.
// Fragments sampled outside the map read border depth 1.0 and are lit.
type depthFramebuffer struct {
	fbo   uint32
	depth *Texture
	size  int

	prevViewport [4]int32
}

func newDepthFramebuffer(size int) (*depthFramebuffer, error) {
	f := &depthFramebuffer{size: size, depth: &Texture{width: size, height: size}}

	gl.GenTextures(1, &f.depth.id)
	gl.BindTexture(gl.TEXTURE_2D, f.depth.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F,
		int32(size), int32(size), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])

	gl.GenFramebuffers(1, &f.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, f.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, f.depth.id, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteTextures(1, &f.depth.id)
		gl.DeleteFramebuffers(1, &f.fbo)
		return nil, fmt.Errorf("depth framebuffer incomplete: status=0x%X", status)
	}
	return f, nil
}

func (f *depthFramebuffer) Bind() {
	gl.GetIntegerv(gl.VIEWPORT, &f.prevViewport[0])
	gl.BindFramebuffer(gl.FRAMEBUFFER, f.fbo)
	gl.Viewport(0, 0, int32(f.size), int32(f.size))
}

func (f *depthFramebuffer) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(f.prevViewport[0], f.prevViewport[1], f.prevViewport[2], f.prevViewport[3])
}

func (f *depthFramebuffer) DepthTexture() gfx.Texture { return f.depth }

func (f *depthFramebuffer) Size() int { return f.size }

var _ gfx.Framebuffer = (*depthFramebuffer)(nil)
