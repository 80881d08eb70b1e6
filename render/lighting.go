package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/forge3d/forward/gfx"
	"github.com/forge3d/forward/scene"
)

// MaxLights is the singlepass light cap, fixed by the shader array sizes.
const MaxLights = 5

// Material textures occupy units 0 through ChannelCount-1; shadow maps bind
// from here up.
const shadowUnitBase = int32(scene.ChannelCount)

// renderMeshWithMaterialLight is the lit path. With no visible light the
// mesh gets a single ambient+emissive draw; otherwise the configured
// lighting mode accumulates every light's contribution. Multipass culls
// lights against the mesh's world bounding sphere first, so a mesh whose
// per-mesh light set comes up empty also takes the ambient-only draw.
func (r *Renderer) renderMeshWithMaterialLight(call renderCall) {
	mat := call.node.Material

	lights := r.lights
	if r.cfg.Mode.Lighting == Multipass && len(lights) > 0 {
		world := scene.TransformBoundingBox(call.model, call.bounds)
		radius := world.HalfSize.Len()
		r.scratch = r.scratch[:0]
		for _, l := range lights {
			if lightReachesBounds(l, world.Center, radius) {
				r.scratch = append(r.scratch, l)
			}
		}
		lights = r.scratch
	}

	sh := r.programs.litProgram(r.cfg.Mode.Lighting, len(lights))

	guard := gfx.SaveState(r.dev)
	defer guard.Restore()

	r.applyMaterialState(mat)

	sh.Enable()
	defer sh.Disable()

	r.bindCamera(sh)
	r.bindMaterial(sh, mat)
	sh.SetMat4("u_model", call.model)
	sh.SetVec3("u_ambient_light", r.ambient)

	switch {
	case len(lights) == 0:
		call.node.Mesh.Draw()
	case r.cfg.Mode.Lighting == Singlepass:
		r.drawSinglepass(sh, call, lights)
	default:
		r.drawMultipass(sh, call, lights)
	}
}

// lightReachesBounds is the multipass per-mesh culling test: a bounding
// sphere overlap against the light's reach. Directional lights reach
// everything.
func lightReachesBounds(l *scene.Light, center mgl32.Vec3, radius float32) bool {
	if l.Type == scene.LightDirectional {
		return true
	}
	return l.Position().Sub(center).Len() <= l.MaxDistance+radius
}

// drawMultipass issues one draw per light. The first pass writes as usual;
// every later pass blends additively with ambient and emissive zeroed so
// they contribute exactly once. Depth LEQUAL lets the repeated geometry
// pass the depth test.
func (r *Renderer) drawMultipass(sh gfx.Shader, call renderCall, lights []*scene.Light) {
	r.dev.SetDepthFunc(gfx.DepthLessEqual)

	for i, l := range lights {
		bindLightUniforms(sh, lightParamsFor(l))
		r.bindShadowUniforms(sh, l)
		call.node.Mesh.Draw()
		if i == 0 {
			r.dev.SetBlend(gfx.BlendAdditive)
			sh.SetVec3("u_ambient_light", mgl32.Vec3{})
			sh.SetVec3("u_emissive_factor", mgl32.Vec3{})
		}
	}
}

// drawSinglepass packs the first MaxLights visible lights into parallel
// uniform arrays and draws once. Shadow sampling rides a separate toggle;
// disabled slots get the white fallback so every declared sampler has a
// valid binding.
func (r *Renderer) drawSinglepass(sh gfx.Shader, call renderCall, lights []*scene.Light) {
	if len(lights) > MaxLights {
		r.log.Debugf("singlepass: %d lights visible, shading first %d", len(lights), MaxLights)
		lights = lights[:MaxLights]
	}
	n := len(lights)

	var (
		pos    [MaxLights]mgl32.Vec3
		color  [MaxLights]mgl32.Vec3
		front  [MaxLights]mgl32.Vec3
		info   [MaxLights]mgl32.Vec4
		cone   [MaxLights]mgl32.Vec2
		shadow [MaxLights]mgl32.Vec2
		viewpr [MaxLights]mgl32.Mat4
	)
	for i, l := range lights {
		lp := lightParamsFor(l)
		pos[i] = lp.Position
		color[i] = lp.Color
		front[i] = lp.Front
		info[i] = mgl32.Vec4{float32(lp.Type), lp.Near, lp.Far, 0}
		cone[i] = lp.ConeCos

		shadowed := r.cfg.ShadowsSinglepass && l.CastShadows && l.ShadowMap != nil
		if shadowed {
			shadow[i] = mgl32.Vec2{1, l.ShadowBias}
			viewpr[i] = l.ShadowViewProj
			sh.SetTexture(fmt.Sprintf("u_shadowmap[%d]", i), l.ShadowMap.DepthTexture(), shadowUnitBase+int32(i))
		} else {
			shadow[i] = mgl32.Vec2{0, l.ShadowBias}
			viewpr[i] = mgl32.Ident4()
			sh.SetTexture(fmt.Sprintf("u_shadowmap[%d]", i), r.dev.WhiteTexture(), shadowUnitBase+int32(i))
		}
	}

	sh.SetVec3Array("u_light_position", pos[:n])
	sh.SetVec3Array("u_light_color", color[:n])
	sh.SetVec3Array("u_light_front", front[:n])
	sh.SetVec4Array("u_light_info", info[:n])
	sh.SetVec2Array("u_light_cone", cone[:n])
	sh.SetVec2Array("u_shadow_params", shadow[:n])
	sh.SetMat4Array("u_shadow_viewproj", viewpr[:n])
	sh.SetInt("u_num_lights", int32(n))

	call.node.Mesh.Draw()
}

// bindLightUniforms uploads one light in the scalar (multipass) form.
func bindLightUniforms(sh gfx.Shader, lp LightParams) {
	sh.SetVec3("u_light_position", lp.Position)
	sh.SetVec3("u_light_color", lp.Color)
	sh.SetVec3("u_light_front", lp.Front)
	sh.SetVec4("u_light_info", mgl32.Vec4{float32(lp.Type), lp.Near, lp.Far, 0})
	sh.SetVec2("u_light_cone", lp.ConeCos)
}

// bindShadowUniforms uploads the multipass shadow state for one light. A
// light that casts no shadows, or whose map was never generated, disables
// sampling through u_shadow_params.x.
func (r *Renderer) bindShadowUniforms(sh gfx.Shader, l *scene.Light) {
	if l.CastShadows && l.ShadowMap != nil {
		sh.SetVec2("u_shadow_params", mgl32.Vec2{1, l.ShadowBias})
		sh.SetMat4("u_shadow_viewproj", l.ShadowViewProj)
		sh.SetTexture("u_shadowmap", l.ShadowMap.DepthTexture(), shadowUnitBase)
	} else {
		sh.SetVec2("u_shadow_params", mgl32.Vec2{0, l.ShadowBias})
		sh.SetTexture("u_shadowmap", r.dev.WhiteTexture(), shadowUnitBase)
	}
}
