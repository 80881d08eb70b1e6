package gl41

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/forge3d/forward/gfx"
)

// Shader is a linked GL program with a uniform location cache. Uniforms the
// program does not declare resolve to location -1 and are silently ignored.
type Shader struct {
	name      string
	program   uint32
	locations map[string]int32
}

// Registry holds every program compiled from a shader atlas.
type Registry struct {
	programs map[string]*Shader
}

// NewRegistry compiles and links every program in the atlas source. Any
// compile or link failure is returned; there is nothing to render without
// the full program set.
func NewRegistry(atlasSrc string) (*Registry, error) {
	sources, err := gfx.ParseAtlas(atlasSrc)
	if err != nil {
		return nil, err
	}
	reg := &Registry{programs: make(map[string]*Shader, len(sources))}
	for name, src := range sources {
		sh, err := compileProgram(src)
		if err != nil {
			return nil, fmt.Errorf("program %q: %w", name, err)
		}
		reg.programs[name] = sh
	}
	return reg, nil
}

// Get returns the named program, or nil when absent.
func (r *Registry) Get(name string) gfx.Shader {
	sh, ok := r.programs[name]
	if !ok {
		return nil
	}
	return sh
}

var _ gfx.Registry = (*Registry)(nil)

func compileProgram(src gfx.ProgramSource) (*Shader, error) {
	vs, err := compileStage(src.VertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex: %w", err)
	}
	defer gl.DeleteShader(vs)
	fs, err := compileStage(src.FragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("fragment: %w", err)
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("link failed: %s", strings.TrimRight(log, "\x00"))
	}

	return &Shader{
		name:      src.Name,
		program:   program,
		locations: make(map[string]int32),
	}, nil
}

func compileStage(source string, stage uint32) (uint32, error) {
	shader := gl.CreateShader(stage)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func (s *Shader) Enable()  { gl.UseProgram(s.program) }
func (s *Shader) Disable() { gl.UseProgram(0) }

func (s *Shader) location(name string) int32 {
	if loc, ok := s.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(s.program, gl.Str(name+"\x00"))
	s.locations[name] = loc
	return loc
}

func (s *Shader) SetFloat(name string, v float32) {
	if loc := s.location(name); loc != -1 {
		gl.Uniform1f(loc, v)
	}
}

func (s *Shader) SetInt(name string, v int32) {
	if loc := s.location(name); loc != -1 {
		gl.Uniform1i(loc, v)
	}
}

func (s *Shader) SetVec2(name string, v mgl32.Vec2) {
	if loc := s.location(name); loc != -1 {
		gl.Uniform2f(loc, v.X(), v.Y())
	}
}

func (s *Shader) SetVec3(name string, v mgl32.Vec3) {
	if loc := s.location(name); loc != -1 {
		gl.Uniform3f(loc, v.X(), v.Y(), v.Z())
	}
}

func (s *Shader) SetVec4(name string, v mgl32.Vec4) {
	if loc := s.location(name); loc != -1 {
		gl.Uniform4f(loc, v.X(), v.Y(), v.Z(), v.W())
	}
}

func (s *Shader) SetMat4(name string, m mgl32.Mat4) {
	if loc := s.location(name); loc != -1 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

// SetTexture binds tex to the given texture unit and points the sampler
// uniform at it. Indexed names ("u_shadowmap[2]") address individual array
// samplers past what a flat array upload can express.
func (s *Shader) SetTexture(name string, tex gfx.Texture, unit int32) {
	loc := s.location(name)
	if loc == -1 || tex == nil {
		return
	}
	t, ok := tex.(*Texture)
	if !ok {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.Uniform1i(loc, unit)
}

func (s *Shader) SetFloatArray(name string, v []float32) {
	if loc := s.location(name); loc != -1 && len(v) > 0 {
		gl.Uniform1fv(loc, int32(len(v)), &v[0])
	}
}

func (s *Shader) SetVec2Array(name string, v []mgl32.Vec2) {
	if loc := s.location(name); loc != -1 && len(v) > 0 {
		gl.Uniform2fv(loc, int32(len(v)), &v[0][0])
	}
}

func (s *Shader) SetVec3Array(name string, v []mgl32.Vec3) {
	if loc := s.location(name); loc != -1 && len(v) > 0 {
		gl.Uniform3fv(loc, int32(len(v)), &v[0][0])
	}
}

func (s *Shader) SetVec4Array(name string, v []mgl32.Vec4) {
	if loc := s.location(name); loc != -1 && len(v) > 0 {
		gl.Uniform4fv(loc, int32(len(v)), &v[0][0])
	}
}

func (s *Shader) SetMat4Array(name string, v []mgl32.Mat4) {
	if loc := s.location(name); loc != -1 && len(v) > 0 {
		gl.UniformMatrix4fv(loc, int32(len(v)), false, &v[0][0])
	}
}

var _ gfx.Shader = (*Shader)(nil)
