package render

import (
	"fmt"
	"strings"

	"github.com/forge3d/forward/gfx"
)

// Program names in the shader atlas. The lit-path names are resolved
// through litProgram rather than scattered through the draw code.
const (
	programFlat       = "flat"
	programTexture    = "texture"
	programNoLight    = "no_light"
	programMultipass  = "light_multipass"
	programSinglepass = "light_singlepass"
	programSkybox     = "skybox"
	programDepth      = "depth"
	programDebugDepth = "debug_depth"
)

// programSet is the typed registry of every program the renderer needs,
// resolved once at startup.
type programSet struct {
	flat       gfx.Shader
	texture    gfx.Shader
	noLight    gfx.Shader
	multipass  gfx.Shader
	singlepass gfx.Shader
	skybox     gfx.Shader
	depth      gfx.Shader
	debugDepth gfx.Shader
}

// resolvePrograms looks up every required program and fails fast with the
// full list of missing names. A renderer with a partial program set would
// silently skip draws; better to refuse to construct.
func resolvePrograms(reg gfx.Registry) (*programSet, error) {
	ps := &programSet{}
	var missing []string
	resolve := func(name string, dst *gfx.Shader) {
		sh := reg.Get(name)
		if sh == nil {
			missing = append(missing, name)
			return
		}
		*dst = sh
	}
	resolve(programFlat, &ps.flat)
	resolve(programTexture, &ps.texture)
	resolve(programNoLight, &ps.noLight)
	resolve(programMultipass, &ps.multipass)
	resolve(programSinglepass, &ps.singlepass)
	resolve(programSkybox, &ps.skybox)
	resolve(programDepth, &ps.depth)
	resolve(programDebugDepth, &ps.debugDepth)
	if len(missing) > 0 {
		return nil, fmt.Errorf("shader atlas missing programs: %s", strings.Join(missing, ", "))
	}
	return ps, nil
}

// litProgram maps a lit-path selection to its program. An empty light set
// routes to the ambient+emissive-only program regardless of lighting mode.
func (ps *programSet) litProgram(lm LightingMode, numLights int) gfx.Shader {
	if numLights == 0 {
		return ps.noLight
	}
	if lm == Singlepass {
		return ps.singlepass
	}
	return ps.multipass
}
