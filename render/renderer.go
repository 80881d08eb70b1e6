package render

import (
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	forward "github.com/forge3d/forward"
	"github.com/forge3d/forward/gfx"
	"github.com/forge3d/forward/scene"
)

// Config is the renderer's toggles. Width and Height are the output
// framebuffer size, used for viewport restoration after offscreen passes.
type Config struct {
	Mode Mode
	// ShadowsSinglepass gates shadow sampling on the singlepass path
	// independently of per-light CastShadows flags.
	ShadowsSinglepass bool
	// UseShadowAtlas packs all shadow maps into one shared framebuffer
	// instead of a per-light target.
	UseShadowAtlas bool
	// ShowShadowmaps overlays each light's depth map in a corner strip.
	ShowShadowmaps bool
	// ShowBounds draws each renderable's world bounding box as wireframe.
	ShowBounds bool
	Wireframe  bool
	Width, Height int
}

// renderCall is one mesh scheduled for this frame: the node, its world
// matrix, its object-space bounds and its distance to the camera eye.
type renderCall struct {
	node     *scene.Node
	model    mgl32.Mat4
	bounds   scene.BoundingBox
	distance float32
}

// Renderer draws a scene with forward lighting. Not safe for concurrent
// use; one renderer per GL context.
type Renderer struct {
	dev      gfx.Device
	log      forward.Logger
	programs *programSet
	cfg      Config

	cam     *scene.Camera
	ambient mgl32.Vec3
	sky     gfx.Texture
	time    float32
	start   time.Time

	lights  []*scene.Light
	calls   []renderCall
	scratch []*scene.Light

	sphere gfx.Mesh
	quad   gfx.Mesh
	cube   gfx.Mesh

	shadowAtlas gfx.Framebuffer
}

// New resolves every shader program up front and uploads the helper meshes.
// Returns an error listing all missing programs rather than skipping draws
// later.
func New(dev gfx.Device, reg gfx.Registry, cfg Config, log forward.Logger) (*Renderer, error) {
	if log == nil {
		log = forward.NewNopLogger()
	}
	ps, err := resolvePrograms(reg)
	if err != nil {
		return nil, err
	}
	if cfg.Width == 0 {
		cfg.Width = 1280
	}
	if cfg.Height == 0 {
		cfg.Height = 720
	}

	sv, si := gfx.SphereVertices(1, 16, 32)
	qv, qi := gfx.QuadVertices()
	cv, ci := gfx.CubeVertices(mgl32.Vec3{1, 1, 1})
	return &Renderer{
		dev:      dev,
		log:      log,
		programs: ps,
		cfg:      cfg,
		sphere:   dev.CreateMesh(sv, si),
		quad:     dev.CreateMesh(qv, qi),
		cube:     dev.CreateMesh(cv, ci),
		start:    time.Now(),
	}, nil
}

// Config exposes the live toggles for runtime switching.
func (r *Renderer) Config() *Config { return &r.cfg }

// RenderScene draws one frame: shadow passes first, then clear, skybox and
// the sorted color pass, then the optional shadow map overlay.
func (r *Renderer) RenderScene(sc *scene.Scene, cam *scene.Camera) {
	r.cam = cam
	r.ambient = sc.AmbientLight
	r.sky = sc.Skybox
	r.time = float32(time.Since(r.start).Seconds())

	r.setupFrame(sc, cam)

	if r.cfg.Mode.Kind == ModeLit {
		if r.cfg.UseShadowAtlas {
			r.generateShadowAtlas()
		} else {
			r.generateShadowmaps()
		}
	}

	r.dev.SetViewport(0, 0, r.cfg.Width, r.cfg.Height)
	r.dev.Apply(gfx.DefaultState())
	bg := sc.BackgroundColor
	r.dev.ClearColor(bg.X(), bg.Y(), bg.Z(), 1)
	r.dev.Clear(true, true)

	if r.sky != nil && r.cfg.Mode.Kind != ModeFlat {
		r.renderSkybox(cam)
	}

	for _, call := range r.calls {
		world := scene.TransformBoundingBox(call.model, call.bounds)
		if !cam.TestBoxInFrustum(world.Center, world.HalfSize) {
			continue
		}
		switch r.cfg.Mode.Kind {
		case ModeFlat:
			r.renderMeshFlat(call)
		case ModeTextured:
			r.renderMeshTextured(call)
		case ModeLit:
			r.renderMeshWithMaterialLight(call)
		}
		if r.cfg.ShowBounds {
			r.renderBounds(world)
		}
	}

	if r.cfg.ShowShadowmaps {
		r.debugShadowmaps()
	}
}

// setupFrame rebuilds the frame's visibility lists: visible lights in scene
// order, renderable nodes with their world transforms, sorted back to front
// so alpha-blended surfaces composite correctly.
func (r *Renderer) setupFrame(sc *scene.Scene, cam *scene.Camera) {
	r.lights = r.lights[:0]
	r.calls = r.calls[:0]
	for _, l := range sc.Lights {
		if l.Visible {
			r.lights = append(r.lights, l)
		}
	}
	for _, p := range sc.Prefabs {
		if p.Visible {
			r.collectNode(p.Root, cam)
		}
	}
	sort.SliceStable(r.calls, func(i, j int) bool {
		return r.calls[i].distance > r.calls[j].distance
	})
}

func (r *Renderer) collectNode(n *scene.Node, cam *scene.Camera) {
	if !n.Visible {
		return
	}
	if n.Mesh != nil && n.Mesh.VertexCount() > 0 && n.Material != nil {
		model := n.GlobalMatrix()
		c, h := n.Mesh.Bounds()
		eyeTo := mgl32.Vec3{model.At(0, 3), model.At(1, 3), model.At(2, 3)}.Sub(cam.Eye)
		r.calls = append(r.calls, renderCall{
			node:     n,
			model:    model,
			bounds:   scene.BoundingBox{Center: c, HalfSize: h},
			distance: eyeTo.Len(),
		})
	}
	for _, c := range n.Children {
		r.collectNode(c, cam)
	}
}

// bindCamera uploads the shared camera uniforms.
func (r *Renderer) bindCamera(sh gfx.Shader) {
	sh.SetMat4("u_viewprojection", r.cam.ViewProjection)
	sh.SetVec3("u_camera_position", r.cam.Eye)
}

// applyMaterialState sets the pipeline registers a material dictates: alpha
// blending, face culling and the wireframe override.
func (r *Renderer) applyMaterialState(mat *scene.Material) {
	if mat.AlphaMode == scene.AlphaBlend {
		r.dev.SetBlend(gfx.BlendAlpha)
	} else {
		r.dev.SetBlend(gfx.BlendNone)
	}
	if mat.TwoSided {
		r.dev.SetCull(gfx.CullNone)
	} else {
		r.dev.SetCull(gfx.CullBack)
	}
	if r.cfg.Wireframe {
		r.dev.SetFill(gfx.FillWireframe)
	}
}

var channelUniforms = [scene.ChannelCount]string{
	scene.ChannelAlbedo:            "u_albedo_texture",
	scene.ChannelEmissive:          "u_emissive_texture",
	scene.ChannelMetallicRoughness: "u_metallic_texture",
	scene.ChannelNormal:            "u_normal_texture",
	scene.ChannelOcclusion:         "u_occlusion_texture",
}

// bindMaterial uploads colors, texture channels and alpha handling. Missing
// textures fall back to the shared white texture so the sampling math stays
// uniform; only a real normal map flips u_has_normalmap. Outside mask mode
// a tiny cutoff still discards fully transparent fragments.
func (r *Renderer) bindMaterial(sh gfx.Shader, mat *scene.Material) {
	sh.SetVec4("u_color", mat.Color)
	sh.SetVec3("u_emissive_factor", mat.EmissiveFactor)
	sh.SetFloat("u_time", r.time)

	cutoff := float32(0.001)
	if mat.AlphaMode == scene.AlphaMask {
		cutoff = mat.AlphaCutoff
	}
	sh.SetFloat("u_alpha_cutoff", cutoff)

	hasNormal := int32(0)
	for ch := scene.TextureChannel(0); ch < scene.ChannelCount; ch++ {
		tex := mat.Textures[ch]
		if tex == nil {
			tex = r.dev.WhiteTexture()
		} else if ch == scene.ChannelNormal {
			hasNormal = 1
		}
		sh.SetTexture(channelUniforms[ch], tex, int32(ch))
	}
	sh.SetInt("u_has_normalmap", hasNormal)
}

// renderMeshFlat draws solid material color only.
func (r *Renderer) renderMeshFlat(call renderCall) {
	mat := call.node.Material
	guard := gfx.SaveState(r.dev)
	defer guard.Restore()
	r.applyMaterialState(mat)

	sh := r.programs.flat
	sh.Enable()
	defer sh.Disable()
	r.bindCamera(sh)
	sh.SetMat4("u_model", call.model)
	sh.SetVec4("u_color", mat.Color)
	call.node.Mesh.Draw()
}

// renderMeshTextured draws albedo and emissive textures without lighting.
func (r *Renderer) renderMeshTextured(call renderCall) {
	mat := call.node.Material
	guard := gfx.SaveState(r.dev)
	defer guard.Restore()
	r.applyMaterialState(mat)

	sh := r.programs.texture
	sh.Enable()
	defer sh.Disable()
	r.bindCamera(sh)
	r.bindMaterial(sh, mat)
	sh.SetMat4("u_model", call.model)
	call.node.Mesh.Draw()
}

// renderSkybox draws the background sphere centered on the eye, before any
// geometry, with depth and culling off so it never occludes anything.
func (r *Renderer) renderSkybox(cam *scene.Camera) {
	guard := gfx.SaveState(r.dev)
	defer guard.Restore()
	r.dev.SetBlend(gfx.BlendNone)
	r.dev.SetDepthTest(false)
	r.dev.SetCull(gfx.CullNone)

	sh := r.programs.skybox
	sh.Enable()
	defer sh.Disable()
	model := mgl32.Translate3D(cam.Eye.X(), cam.Eye.Y(), cam.Eye.Z()).
		Mul4(mgl32.Scale3D(10, 10, 10))
	sh.SetMat4("u_model", model)
	r.bindCamera(sh)
	sh.SetTexture("u_texture", r.sky, 0)
	r.sphere.Draw()
}

// renderBounds draws a world-space bounding box as a yellow wireframe cube.
func (r *Renderer) renderBounds(box scene.BoundingBox) {
	guard := gfx.SaveState(r.dev)
	defer guard.Restore()
	r.dev.SetFill(gfx.FillWireframe)
	r.dev.SetCull(gfx.CullNone)

	sh := r.programs.flat
	sh.Enable()
	defer sh.Disable()
	r.bindCamera(sh)
	model := mgl32.Translate3D(box.Center.X(), box.Center.Y(), box.Center.Z()).
		Mul4(mgl32.Scale3D(box.HalfSize.X(), box.HalfSize.Y(), box.HalfSize.Z()))
	sh.SetMat4("u_model", model)
	sh.SetVec4("u_color", mgl32.Vec4{1, 1, 0, 1})
	r.cube.Draw()
}

// debugShadowmaps overlays each generated shadow map as a linearized depth
// quad along the bottom of the frame, in visible-light order. Atlas-resident
// lights show only their own cell, cropped through u_uv_rect.
func (r *Renderer) debugShadowmaps() {
	guard := gfx.SaveState(r.dev)
	defer guard.Restore()
	r.dev.SetDepthTest(false)
	r.dev.SetBlend(gfx.BlendNone)
	r.dev.SetCull(gfx.CullNone)

	sh := r.programs.debugDepth
	sh.Enable()
	defer sh.Disable()

	x := 10
	for _, l := range r.lights {
		if !l.CastShadows || l.ShadowMap == nil {
			continue
		}
		sh.SetTexture("u_texture", l.ShadowMap.DepthTexture(), 0)
		sh.SetVec2("u_camera_nearfar", mgl32.Vec2{l.NearDistance, l.MaxDistance})
		rect := mgl32.Vec4{0, 0, 1, 1}
		if region := l.ShadowRegion; region[2] > 0 {
			size := float32(l.ShadowMap.Size())
			rect = mgl32.Vec4{
				float32(region[0]) / size,
				float32(region[1]) / size,
				float32(region[2]) / size,
				float32(region[3]) / size,
			}
		}
		sh.SetVec4("u_uv_rect", rect)
		r.dev.SetViewport(x, 10, 256, 256)
		r.quad.Draw()
		x += 266
	}
	r.dev.SetViewport(0, 0, r.cfg.Width, r.cfg.Height)
}
