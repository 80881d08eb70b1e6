// Package gfx is the graphics-device abstraction consumed by the renderer.
// It deliberately mirrors the small surface the render package needs: named
// shader programs with typed uniform upload, meshes with a bounding box and
// a draw call, textures, depth-only framebuffers and a shared register set
// of global pipeline state. The gl41 subpackage implements it on OpenGL;
// tests implement it in memory.
package gfx

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BlendMode selects the framebuffer blend equation for subsequent draws.
type BlendMode int

const (
	// BlendNone disables blending.
	BlendNone BlendMode = iota
	// BlendAlpha is standard alpha blending (src_alpha, one_minus_src_alpha).
	BlendAlpha
	// BlendAdditive accumulates (src_alpha, one). Used by the multipass
	// lighting path for every pass after the first.
	BlendAdditive
)

// DepthFunc selects the depth test comparison.
type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
)

// CullMode selects triangle face culling.
type CullMode int

const (
	CullBack CullMode = iota
	CullNone
)

// FillMode selects polygon rasterization.
type FillMode int

const (
	FillSolid FillMode = iota
	FillWireframe
)

// State is a snapshot of the shared global pipeline registers. Every render
// path that mutates them must put them back before returning; see Guard.
type State struct {
	Blend     BlendMode
	DepthTest bool
	Depth     DepthFunc
	Cull      CullMode
	Fill      FillMode
}

// DefaultState is the state every component may assume on entry.
func DefaultState() State {
	return State{
		Blend:     BlendNone,
		DepthTest: true,
		Depth:     DepthLess,
		Cull:      CullBack,
		Fill:      FillSolid,
	}
}

// Texture is a GPU texture handle. Concrete behavior (binding, sampling)
// lives behind the Shader.SetTexture call.
type Texture interface {
	Size() (w, h int)
}

// Framebuffer is a depth-only render target used for shadow rendering.
// The depth texture stays valid after Unbind and can be sampled.
type Framebuffer interface {
	Bind()
	Unbind()
	DepthTexture() Texture
	Size() int
}

// Mesh is an uploaded mesh. Bounds returns the object-space axis-aligned
// bounding box as center and half-extents.
type Mesh interface {
	Draw()
	VertexCount() int
	Bounds() (center, halfSize mgl32.Vec3)
}

// Shader is a compiled program with typed uniform upload. Setting a uniform
// the program does not declare is a no-op, matching GL semantics. Per-index
// texture bindings beyond a flat array use the indexed name form, e.g.
// "u_shadowmap[3]".
type Shader interface {
	Enable()
	Disable()

	SetFloat(name string, v float32)
	SetInt(name string, v int32)
	SetVec2(name string, v mgl32.Vec2)
	SetVec3(name string, v mgl32.Vec3)
	SetVec4(name string, v mgl32.Vec4)
	SetMat4(name string, m mgl32.Mat4)
	SetTexture(name string, tex Texture, unit int32)

	SetFloatArray(name string, v []float32)
	SetVec2Array(name string, v []mgl32.Vec2)
	SetVec3Array(name string, v []mgl32.Vec3)
	SetVec4Array(name string, v []mgl32.Vec4)
	SetMat4Array(name string, v []mgl32.Mat4)
}

// Registry resolves compiled shader programs by name. Get returns nil when
// no program with that name exists.
type Registry interface {
	Get(name string) Shader
}

// Device owns the shared pipeline state and GPU resource creation.
type Device interface {
	// State returns the current global pipeline state.
	State() State
	// Apply sets every register in s.
	Apply(s State)

	SetBlend(m BlendMode)
	SetDepthTest(enabled bool)
	SetDepthFunc(f DepthFunc)
	SetCull(m CullMode)
	SetFill(m FillMode)

	SetViewport(x, y, w, h int)
	SetScissor(enabled bool, x, y, w, h int)
	ClearColor(r, g, b, a float32)
	Clear(color, depth bool)

	CreateMesh(vertices []Vertex, indices []uint32) Mesh
	CreateDepthFramebuffer(size int) (Framebuffer, error)
	// WhiteTexture returns the shared 1x1 white fallback texture.
	WhiteTexture() Texture
}

// Guard snapshots the device state so draw paths can restore it on every
// exit path, including early returns on missing resources.
type Guard struct {
	dev   Device
	saved State
}

// SaveState captures the current pipeline state for later restoration.
func SaveState(dev Device) *Guard {
	return &Guard{dev: dev, saved: dev.State()}
}

// Restore puts every register back as it was at SaveState time.
func (g *Guard) Restore() {
	g.dev.Apply(g.saved)
}
