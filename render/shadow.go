package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/forge3d/forward/gfx"
	"github.com/forge3d/forward/scene"
)

// ShadowMapSize is the resolution of a per-light shadow depth target.
const ShadowMapSize = 1024

// Shadow atlas layout: equal cells filled row-major, two columns per row.
const (
	atlasColumns  = 2
	atlasRows     = 2
	atlasCapacity = atlasColumns * atlasRows
	atlasSize     = ShadowMapSize * atlasColumns
)

// shadowCamera builds the camera a light renders its shadow map from: eye
// at the light, looking along the light's front vector. Spot lights get a
// square perspective frustum covering the full cone; directional lights an
// orthographic box of half-extent area/2. Point lights have no shadow path.
// Returns false for unsupported light types.
func shadowCamera(l *scene.Light) (*scene.Camera, bool) {
	if !l.SupportsShadows() {
		return nil, false
	}
	eye := l.Position()
	front := l.Front()

	// A look direction parallel to world up degenerates LookAt; swap in a
	// perpendicular up vector.
	up := mgl32.Vec3{0, 1, 0}
	if absf(front.Dot(up)) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}

	cam := scene.NewCamera()
	switch l.Type {
	case scene.LightSpot:
		// Full field of view is twice the outer half-angle.
		cam.SetPerspective(2*l.ConeInfo.Y(), 1.0, l.NearDistance, l.MaxDistance)
	case scene.LightDirectional:
		cam.SetOrthographic(l.Area/2, 0.1, l.MaxDistance)
	}
	cam.LookAt(eye, eye.Add(front), up)
	return cam, true
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// generateShadowmaps regenerates the shadow map of every visible
// shadow-casting light from scratch. Each light owns a lazily created
// depth-only target that persists until the light is destroyed. Runs once
// per displayed frame; lights whose frustum sees no mesh still pay the
// render cost.
//
// TODO: cull lights whose shadow frustum overlaps no renderable.
func (r *Renderer) generateShadowmaps() {
	for _, l := range r.lights {
		if !l.CastShadows {
			continue
		}
		cam, ok := shadowCamera(l)
		if !ok {
			continue
		}
		if l.ShadowMap == r.shadowAtlas {
			// The light was assigned a cell of the shared atlas on an
			// earlier frame; that target is not this light's to clear.
			l.ShadowMap = nil
			l.ShadowRegion = [4]int{}
		}
		if l.ShadowMap == nil {
			fb, err := r.dev.CreateDepthFramebuffer(ShadowMapSize)
			if err != nil {
				r.log.Errorf("shadow map for light %q: %v", l.Name, err)
				continue
			}
			l.ShadowMap = fb
		}

		l.ShadowMap.Bind()
		r.dev.Clear(false, true)
		r.renderDepthPass(cam)
		l.ShadowMap.Unbind()

		l.ShadowViewProj = cam.ViewProjection
	}
}

// generateShadowAtlas is the shared-target variant: all lights render into
// one framebuffer partitioned into a row-major grid of equal cells, with
// scissoring so untouched cells keep their contents. The region remap is
// baked into each light's stored view-projection so shadow sampling stays
// within the plain uniform contract.
func (r *Renderer) generateShadowAtlas() {
	if r.shadowAtlas == nil {
		fb, err := r.dev.CreateDepthFramebuffer(atlasSize)
		if err != nil {
			r.log.Errorf("shadow atlas: %v", err)
			return
		}
		r.shadowAtlas = fb
	}

	cell := 0
	r.shadowAtlas.Bind()
	for _, l := range r.lights {
		if !l.CastShadows {
			continue
		}
		cam, ok := shadowCamera(l)
		if !ok {
			continue
		}
		if cell >= atlasCapacity {
			r.log.Warnf("shadow atlas full, light %q gets no shadow this frame", l.Name)
			continue
		}

		col := cell % atlasColumns
		row := cell / atlasColumns
		x := col * ShadowMapSize
		y := row * ShadowMapSize

		r.dev.SetViewport(x, y, ShadowMapSize, ShadowMapSize)
		r.dev.SetScissor(true, x, y, ShadowMapSize, ShadowMapSize)
		r.dev.Clear(false, true)
		r.renderDepthPass(cam)

		l.ShadowMap = r.shadowAtlas
		l.ShadowRegion = [4]int{x, y, ShadowMapSize, ShadowMapSize}
		l.ShadowViewProj = atlasRemap(col, row).Mul4(cam.ViewProjection)
		cell++
	}
	r.dev.SetScissor(false, 0, 0, 0, 0)
	r.shadowAtlas.Unbind()
}

// atlasRemap maps a cell's clip-space XY onto its region of the shared
// atlas, so projecting through the stored matrix lands on the right cell.
func atlasRemap(col, row int) mgl32.Mat4 {
	sx := float32(1) / atlasColumns
	sy := float32(1) / atlasRows
	ox := float32(2*col+1)/atlasColumns - 1
	oy := float32(2*row+1)/atlasRows - 1
	return mgl32.Translate3D(ox, oy, 0).Mul4(mgl32.Scale3D(sx, sy, 1))
}

// renderDepthPass draws every renderable's depth from cam's viewpoint with
// flat shading forced, restoring the previous pipeline state afterwards.
func (r *Renderer) renderDepthPass(cam *scene.Camera) {
	guard := gfx.SaveState(r.dev)
	defer guard.Restore()

	r.dev.SetBlend(gfx.BlendNone)
	r.dev.SetDepthTest(true)
	r.dev.SetDepthFunc(gfx.DepthLess)
	r.dev.SetFill(gfx.FillSolid)

	sh := r.programs.depth
	sh.Enable()
	defer sh.Disable()
	sh.SetMat4("u_viewprojection", cam.ViewProjection)

	for _, call := range r.calls {
		world := scene.TransformBoundingBox(call.model, call.bounds)
		if !cam.TestBoxInFrustum(world.Center, world.HalfSize) {
			continue
		}
		if call.node.Material != nil && call.node.Material.TwoSided {
			r.dev.SetCull(gfx.CullNone)
		} else {
			r.dev.SetCull(gfx.CullBack)
		}
		sh.SetMat4("u_model", call.model)
		call.node.Mesh.Draw()
	}
}
