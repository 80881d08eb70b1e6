package render

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/forge3d/forward/gfx"
)

// In-memory gfx implementation. Shaders record uniform uploads, the device
// records state transitions and meshes report their draws through a hook,
// which is enough to assert every observable renderer behavior without a GL
// context.

type fakeTexture struct {
	name string
	w, h int
}

func (t *fakeTexture) Size() (int, int) { return t.w, t.h }

type fakeFramebuffer struct {
	size  int
	depth *fakeTexture
	bound bool
	binds int
}

func (f *fakeFramebuffer) Bind()                    { f.bound = true; f.binds++ }
func (f *fakeFramebuffer) Unbind()                  { f.bound = false }
func (f *fakeFramebuffer) DepthTexture() gfx.Texture { return f.depth }
func (f *fakeFramebuffer) Size() int                { return f.size }

type fakeMesh struct {
	dev    *fakeDevice
	name   string
	verts  int
	center mgl32.Vec3
	half   mgl32.Vec3
	draws  int
}

func (m *fakeMesh) Draw() {
	m.draws++
	if m.dev.onDraw != nil {
		m.dev.onDraw(m)
	}
}
func (m *fakeMesh) VertexCount() int                        { return m.verts }
func (m *fakeMesh) Bounds() (center, half mgl32.Vec3)       { return m.center, m.half }

type fakeShader struct {
	reg      *fakeRegistry
	name     string
	uniforms map[string]any
	textures map[string]gfx.Texture
	units    map[string]int32
	enables  int
}

func (s *fakeShader) Enable() {
	s.enables++
	s.reg.enabled = s
}

func (s *fakeShader) Disable() {
	if s.reg.enabled == s {
		s.reg.enabled = nil
	}
}

func (s *fakeShader) set(name string, v any) { s.uniforms[name] = v }

func (s *fakeShader) SetFloat(name string, v float32)  { s.set(name, v) }
func (s *fakeShader) SetInt(name string, v int32)      { s.set(name, v) }
func (s *fakeShader) SetVec2(name string, v mgl32.Vec2) { s.set(name, v) }
func (s *fakeShader) SetVec3(name string, v mgl32.Vec3) { s.set(name, v) }
func (s *fakeShader) SetVec4(name string, v mgl32.Vec4) { s.set(name, v) }
func (s *fakeShader) SetMat4(name string, m mgl32.Mat4) { s.set(name, m) }

func (s *fakeShader) SetTexture(name string, tex gfx.Texture, unit int32) {
	s.textures[name] = tex
	s.units[name] = unit
}

func (s *fakeShader) SetFloatArray(name string, v []float32) {
	s.set(name, append([]float32(nil), v...))
}
func (s *fakeShader) SetVec2Array(name string, v []mgl32.Vec2) {
	s.set(name, append([]mgl32.Vec2(nil), v...))
}
func (s *fakeShader) SetVec3Array(name string, v []mgl32.Vec3) {
	s.set(name, append([]mgl32.Vec3(nil), v...))
}
func (s *fakeShader) SetVec4Array(name string, v []mgl32.Vec4) {
	s.set(name, append([]mgl32.Vec4(nil), v...))
}
func (s *fakeShader) SetMat4Array(name string, v []mgl32.Mat4) {
	s.set(name, append([]mgl32.Mat4(nil), v...))
}

type fakeRegistry struct {
	shaders map[string]*fakeShader
	enabled *fakeShader
}

func newFakeRegistry(names ...string) *fakeRegistry {
	r := &fakeRegistry{shaders: map[string]*fakeShader{}}
	for _, n := range names {
		r.shaders[n] = &fakeShader{
			reg:      r,
			name:     n,
			uniforms: map[string]any{},
			textures: map[string]gfx.Texture{},
			units:    map[string]int32{},
		}
	}
	return r
}

func (r *fakeRegistry) Get(name string) gfx.Shader {
	if sh, ok := r.shaders[name]; ok {
		return sh
	}
	return nil
}

var allProgramNames = []string{
	programFlat, programTexture, programNoLight, programMultipass,
	programSinglepass, programSkybox, programDepth, programDebugDepth,
}

type fakeDevice struct {
	state    gfx.State
	viewport [4]int
	scissor  struct {
		enabled    bool
		x, y, w, h int
	}
	clearColor  [4]float32
	clears      int
	white       *fakeTexture
	framebuffers []*fakeFramebuffer
	failFBO     bool

	// onDraw is invoked for every mesh draw with the device state and the
	// enabled shader's uniforms current.
	onDraw func(m *fakeMesh)
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		state: gfx.DefaultState(),
		white: &fakeTexture{name: "white", w: 1, h: 1},
	}
}

func (d *fakeDevice) State() gfx.State            { return d.state }
func (d *fakeDevice) Apply(s gfx.State)           { d.state = s }
func (d *fakeDevice) SetBlend(m gfx.BlendMode)    { d.state.Blend = m }
func (d *fakeDevice) SetDepthTest(enabled bool)   { d.state.DepthTest = enabled }
func (d *fakeDevice) SetDepthFunc(f gfx.DepthFunc) { d.state.Depth = f }
func (d *fakeDevice) SetCull(m gfx.CullMode)      { d.state.Cull = m }
func (d *fakeDevice) SetFill(m gfx.FillMode)      { d.state.Fill = m }

func (d *fakeDevice) SetViewport(x, y, w, h int) { d.viewport = [4]int{x, y, w, h} }

func (d *fakeDevice) SetScissor(enabled bool, x, y, w, h int) {
	d.scissor.enabled = enabled
	d.scissor.x, d.scissor.y, d.scissor.w, d.scissor.h = x, y, w, h
}

func (d *fakeDevice) ClearColor(r, g, b, a float32) { d.clearColor = [4]float32{r, g, b, a} }
func (d *fakeDevice) Clear(color, depth bool)       { d.clears++ }

func (d *fakeDevice) CreateMesh(vertices []gfx.Vertex, indices []uint32) gfx.Mesh {
	c, h := gfx.BoundsOf(vertices)
	return &fakeMesh{dev: d, verts: len(vertices), center: c, half: h}
}

func (d *fakeDevice) CreateDepthFramebuffer(size int) (gfx.Framebuffer, error) {
	if d.failFBO {
		return nil, errors.New("framebuffer creation failed")
	}
	fb := &fakeFramebuffer{size: size, depth: &fakeTexture{name: "depth", w: size, h: size}}
	d.framebuffers = append(d.framebuffers, fb)
	return fb, nil
}

func (d *fakeDevice) WhiteTexture() gfx.Texture { return d.white }

// Typed uniform accessors for assertions.

func getVec2(s *fakeShader, name string) mgl32.Vec2 { v, _ := s.uniforms[name].(mgl32.Vec2); return v }
func getVec3(s *fakeShader, name string) mgl32.Vec3 { v, _ := s.uniforms[name].(mgl32.Vec3); return v }
func getVec4(s *fakeShader, name string) mgl32.Vec4 { v, _ := s.uniforms[name].(mgl32.Vec4); return v }
func getMat4(s *fakeShader, name string) mgl32.Mat4 { v, _ := s.uniforms[name].(mgl32.Mat4); return v }
func getInt(s *fakeShader, name string) int32       { v, _ := s.uniforms[name].(int32); return v }
