package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/forge3d/forward/gfx"
)

// LightType discriminates light sources. The numeric values are part of the
// shader contract: they are uploaded verbatim in u_light_info.x, and 0
// means "no light" for the zero-light draw.
type LightType int

const (
	LightNone        LightType = 0
	LightPoint       LightType = 1
	LightSpot        LightType = 2
	LightDirectional LightType = 3
)

// Light is a scene light source. Its world transform is owned by the root
// node; the light shines along the node's +Z axis.
//
// ShadowMap is nil until the first shadow pass runs for this light, and
// stays allocated for the light's lifetime afterwards. ShadowViewProj is
// recomputed on every frame a shadow pass runs.
type Light struct {
	Entity

	Type      LightType
	Color     mgl32.Vec3
	Intensity float32

	// Shadow frustum depth range.
	NearDistance float32
	MaxDistance  float32

	// ConeInfo holds the spot inner/outer half-angles in degrees.
	// Meaningful for spot lights only.
	ConeInfo mgl32.Vec2

	// Area is the orthographic frustum extent for directional lights.
	Area float32

	CastShadows bool
	ShadowBias  float32

	ShadowMap      gfx.Framebuffer
	ShadowViewProj mgl32.Mat4

	// ShadowRegion is the light's cell in the shared shadow atlas, in
	// pixels. Zero when per-light shadow maps are in use.
	ShadowRegion [4]int
}

// NewLight returns a visible light with the given type and sane defaults.
func NewLight(name string, typ LightType) *Light {
	l := &Light{
		Type:         typ,
		Color:        mgl32.Vec3{1, 1, 1},
		Intensity:    1,
		NearDistance: 0.1,
		MaxDistance:  100,
		ConeInfo:     mgl32.Vec2{25, 40},
		Area:         100,
		ShadowBias:   0.001,
	}
	l.Entity = newEntity(name, KindLight)
	return l
}

// Position returns the light's world position.
func (l *Light) Position() mgl32.Vec3 { return l.Root.WorldPosition() }

// Front returns the light's world-space shining direction.
func (l *Light) Front() mgl32.Vec3 { return l.Root.WorldFront() }

// SupportsShadows reports whether this light type has a shadow path. Point
// lights would need a cube-map pass, which does not exist.
func (l *Light) SupportsShadows() bool {
	return l.Type == LightSpot || l.Type == LightDirectional
}
