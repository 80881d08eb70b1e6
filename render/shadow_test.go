package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge3d/forward/gfx"
	"github.com/forge3d/forward/scene"
)

func spotAt(pos mgl32.Vec3) *scene.Light {
	l := scene.NewLight("spot", scene.LightSpot)
	l.Root.Position = pos
	l.CastShadows = true
	return l
}

func TestShadowCameraSpot(t *testing.T) {
	l := spotAt(mgl32.Vec3{1, 5, 2})
	l.ConeInfo = mgl32.Vec2{20, 35}
	l.NearDistance = 0.5
	l.MaxDistance = 40

	cam, ok := shadowCamera(l)
	require.True(t, ok)

	// Square perspective frustum covering the full outer cone.
	want := mgl32.Perspective(mgl32.DegToRad(70), 1, 0.5, 40).
		Mul4(mgl32.LookAtV(l.Position(), l.Position().Add(l.Front()), mgl32.Vec3{0, 1, 0}))
	assert.Equal(t, want, cam.ViewProjection)
}

func TestShadowCameraDirectional(t *testing.T) {
	l := scene.NewLight("sun", scene.LightDirectional)
	l.Root.Position = mgl32.Vec3{0, 50, 0}
	l.Root.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{1, 0, 0})
	l.Area = 60
	l.MaxDistance = 200

	cam, ok := shadowCamera(l)
	require.True(t, ok)
	require.True(t, cam.Orthographic)
	assert.Equal(t, float32(30), cam.OrthoHalfSize)
	assert.Equal(t, float32(0.1), cam.Near)
	assert.Equal(t, float32(200), cam.Far)
}

func TestShadowCameraPointUnsupported(t *testing.T) {
	l := scene.NewLight("bulb", scene.LightPoint)
	_, ok := shadowCamera(l)
	assert.False(t, ok)
}

func TestShadowCameraPoleFallback(t *testing.T) {
	// Light shining straight down: front parallel to the default up vector.
	l := spotAt(mgl32.Vec3{0, 20, 0})
	l.Root.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{1, 0, 0})
	require.InDelta(t, -1, l.Front().Y(), 1e-5)

	cam, ok := shadowCamera(l)
	require.True(t, ok)

	// The view must stay invertible instead of collapsing at the pole.
	assert.NotZero(t, cam.ViewProjection.Det())
}

func TestShadowCameraIdempotent(t *testing.T) {
	l := spotAt(mgl32.Vec3{3, 7, -2})
	a, ok := shadowCamera(l)
	require.True(t, ok)
	b, ok := shadowCamera(l)
	require.True(t, ok)
	assert.Equal(t, a.ViewProjection, b.ViewProjection, "same light, same matrices, bit for bit")
}

func testRenderer(t *testing.T, dev *fakeDevice, cfg Config) (*Renderer, *fakeRegistry) {
	t.Helper()
	reg := newFakeRegistry(allProgramNames...)
	r, err := New(dev, reg, cfg, nil)
	require.NoError(t, err)
	return r, reg
}

func litScene(meshes ...mgl32.Vec3) (*scene.Scene, *fakeDevice) {
	dev := newFakeDevice()
	sc := scene.NewScene("test")
	for _, pos := range meshes {
		p := scene.NewPrefab("cube")
		p.Root.Position = pos
		v, i := gfx.CubeVertices(mgl32.Vec3{0.5, 0.5, 0.5})
		p.Root.Mesh = dev.CreateMesh(v, i)
		p.Root.Material = scene.NewMaterial("mat")
		sc.AddPrefab(p)
	}
	return sc, dev
}

func lookCamera() *scene.Camera {
	cam := scene.NewCamera()
	cam.SetPerspective(60, 1, 0.1, 500)
	cam.LookAt(mgl32.Vec3{0, 2, 10}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	return cam
}

func TestGenerateShadowmapsLazyAndPersistent(t *testing.T) {
	sc, dev := litScene(mgl32.Vec3{0, 0, 0})
	caster := spotAt(mgl32.Vec3{0, 10, 0})
	bystander := scene.NewLight("fill", scene.LightSpot)
	bystander.Root.Position = mgl32.Vec3{5, 5, 5}
	sc.AddLight(caster)
	sc.AddLight(bystander)

	r, _ := testRenderer(t, dev, Config{Mode: Lit(Multipass)})
	r.RenderScene(sc, lookCamera())

	require.NotNil(t, caster.ShadowMap, "casting light gets a depth target")
	assert.Equal(t, ShadowMapSize, caster.ShadowMap.Size())
	assert.NotZero(t, caster.ShadowViewProj.Det())
	assert.Nil(t, bystander.ShadowMap, "non-casting light never allocates")

	first := caster.ShadowMap
	vp := caster.ShadowViewProj
	r.RenderScene(sc, lookCamera())
	assert.Same(t, first, caster.ShadowMap, "target reused across frames")
	assert.Equal(t, vp, caster.ShadowViewProj, "unchanged scene, bit-identical matrix")
	assert.Nil(t, bystander.ShadowMap, "still nil after more frames")
}

func TestGenerateShadowmapsPointLightSkipped(t *testing.T) {
	sc, dev := litScene(mgl32.Vec3{0, 0, 0})
	bulb := scene.NewLight("bulb", scene.LightPoint)
	bulb.CastShadows = true
	sc.AddLight(bulb)

	r, _ := testRenderer(t, dev, Config{Mode: Lit(Multipass)})
	r.RenderScene(sc, lookCamera())
	assert.Nil(t, bulb.ShadowMap)
}

func TestShadowAtlasCellsAndOverflow(t *testing.T) {
	sc, dev := litScene(mgl32.Vec3{0, 0, 0})
	var lights []*scene.Light
	for i := 0; i < atlasCapacity+1; i++ {
		l := spotAt(mgl32.Vec3{float32(i), 10, 0})
		lights = append(lights, l)
		sc.AddLight(l)
	}

	r, _ := testRenderer(t, dev, Config{Mode: Lit(Multipass), UseShadowAtlas: true})
	r.RenderScene(sc, lookCamera())

	require.NotNil(t, r.shadowAtlas)
	assert.Equal(t, atlasSize, r.shadowAtlas.Size())

	wantRegions := [][4]int{
		{0, 0, 1024, 1024},
		{1024, 0, 1024, 1024},
		{0, 1024, 1024, 1024},
		{1024, 1024, 1024, 1024},
	}
	for i := 0; i < atlasCapacity; i++ {
		assert.Same(t, r.shadowAtlas, lights[i].ShadowMap, "light %d shares the atlas", i)
		assert.Equal(t, wantRegions[i], lights[i].ShadowRegion, "light %d region", i)
	}
	assert.Nil(t, lights[atlasCapacity].ShadowMap, "overflow light gets no shadow")

	assert.False(t, dev.scissor.enabled, "scissor disabled after the atlas pass")
}

func TestAtlasToggleOffReallocatesPerLightTargets(t *testing.T) {
	sc, dev := litScene(mgl32.Vec3{0, 0, 0})
	a := spotAt(mgl32.Vec3{-3, 10, 0})
	b := spotAt(mgl32.Vec3{3, 10, 0})
	sc.AddLight(a)
	sc.AddLight(b)

	r, _ := testRenderer(t, dev, Config{Mode: Lit(Multipass), UseShadowAtlas: true})
	r.RenderScene(sc, lookCamera())
	require.Same(t, a.ShadowMap, b.ShadowMap, "atlas frame shares one target")

	// Flipping the toggle off must not leave both lights clearing and
	// re-rendering the shared atlas in sequence.
	r.Config().UseShadowAtlas = false
	r.RenderScene(sc, lookCamera())

	require.NotSame(t, a.ShadowMap, b.ShadowMap, "each light owns a dedicated target again")
	assert.NotSame(t, r.shadowAtlas, a.ShadowMap)
	assert.NotSame(t, r.shadowAtlas, b.ShadowMap)
	assert.Equal(t, ShadowMapSize, a.ShadowMap.Size())
	assert.Equal(t, ShadowMapSize, b.ShadowMap.Size())
	assert.Equal(t, [4]int{}, a.ShadowRegion, "cell assignment cleared with the atlas")
	assert.Equal(t, [4]int{}, b.ShadowRegion)
	assert.NotZero(t, a.ShadowViewProj.Det())
	assert.NotZero(t, b.ShadowViewProj.Det())
}

func TestAtlasRemapTargetsCell(t *testing.T) {
	// Clip-space center of a cell's local frustum must land in that cell's
	// quarter of the atlas.
	for _, tt := range []struct {
		col, row int
		wantU    float32
		wantV    float32
	}{
		{0, 0, 0.25, 0.25},
		{1, 0, 0.75, 0.25},
		{0, 1, 0.25, 0.75},
		{1, 1, 0.75, 0.75},
	} {
		m := atlasRemap(tt.col, tt.row)
		out := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
		assert.InDelta(t, tt.wantU, out.X()*0.5+0.5, 1e-6)
		assert.InDelta(t, tt.wantV, out.Y()*0.5+0.5, 1e-6)
	}
}

func TestShadowmapAllocationFailureIsLoggedNotFatal(t *testing.T) {
	sc, dev := litScene(mgl32.Vec3{0, 0, 0})
	sc.AddLight(spotAt(mgl32.Vec3{0, 10, 0}))
	dev.failFBO = true

	r, _ := testRenderer(t, dev, Config{Mode: Lit(Multipass)})
	r.RenderScene(sc, lookCamera())
	assert.Nil(t, sc.Lights[0].ShadowMap)
}
