// Package gl41 implements the gfx abstraction on OpenGL 4.1 core.
package gl41

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/forge3d/forward/gfx"
)

// Device is the OpenGL implementation of gfx.Device. It shadows the global
// pipeline registers so State() never round-trips through glGet.
type Device struct {
	state gfx.State
	white *Texture
}

// NewDevice initializes GL function pointers and applies the default
// pipeline state. Must be called with a current GL context.
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, err
	}
	d := &Device{}
	d.Apply(gfx.DefaultState())
	return d, nil
}

func (d *Device) State() gfx.State { return d.state }

func (d *Device) Apply(s gfx.State) {
	d.SetBlend(s.Blend)
	d.SetDepthTest(s.DepthTest)
	d.SetDepthFunc(s.Depth)
	d.SetCull(s.Cull)
	d.SetFill(s.Fill)
}

func (d *Device) SetBlend(m gfx.BlendMode) {
	switch m {
	case gfx.BlendNone:
		gl.Disable(gl.BLEND)
	case gfx.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	case gfx.BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	}
	d.state.Blend = m
}

func (d *Device) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	d.state.DepthTest = enabled
}

func (d *Device) SetDepthFunc(f gfx.DepthFunc) {
	switch f {
	case gfx.DepthLess:
		gl.DepthFunc(gl.LESS)
	case gfx.DepthLessEqual:
		gl.DepthFunc(gl.LEQUAL)
	}
	d.state.Depth = f
}

func (d *Device) SetCull(m gfx.CullMode) {
	switch m {
	case gfx.CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case gfx.CullNone:
		gl.Disable(gl.CULL_FACE)
	}
	d.state.Cull = m
}

func (d *Device) SetFill(m gfx.FillMode) {
	switch m {
	case gfx.FillSolid:
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	case gfx.FillWireframe:
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
	d.state.Fill = m
}

func (d *Device) SetViewport(x, y, w, h int) {
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
}

func (d *Device) SetScissor(enabled bool, x, y, w, h int) {
	if enabled {
		gl.Enable(gl.SCISSOR_TEST)
		gl.Scissor(int32(x), int32(y), int32(w), int32(h))
	} else {
		gl.Disable(gl.SCISSOR_TEST)
	}
}

func (d *Device) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Device) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (d *Device) CreateMesh(vertices []gfx.Vertex, indices []uint32) gfx.Mesh {
	return newMesh(vertices, indices)
}

func (d *Device) CreateDepthFramebuffer(size int) (gfx.Framebuffer, error) {
	return newDepthFramebuffer(size)
}

// WhiteTexture returns the shared 1x1 white fallback, created on first use.
func (d *Device) WhiteTexture() gfx.Texture {
	if d.white == nil {
		d.white = newSolidTexture([4]uint8{255, 255, 255, 255})
	}
	return d.white
}

var _ gfx.Device = (*Device)(nil)
