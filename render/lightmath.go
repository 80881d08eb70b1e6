package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/forge3d/forward/scene"
)

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func cos32(rad float32) float32 {
	return float32(math.Cos(float64(rad)))
}

// This file is the CPU reference for the per-fragment lighting math the
// GLSL programs evaluate. The equivalence tests drive the accumulator
// against these functions, so any change here must be mirrored in the
// shader atlas and vice versa.

// ConeFactor is the spot cone-edge attenuation for a fragment at cosAngle
// from the cone axis: 0 at or below the outer cosine, 1 at or above the
// inner cosine, linear in between.
func ConeFactor(cosAngle, innerCos, outerCos float32) float32 {
	if cosAngle <= outerCos {
		return 0
	}
	if cosAngle >= innerCos {
		return 1
	}
	return (cosAngle - outerCos) / (innerCos - outerCos)
}

// DistanceFalloff is the linear falloff for point and spot lights:
// max(0, (far - dist) / far). Directional lights have no distance term.
func DistanceFalloff(dist, far float32) float32 {
	if far <= 0 {
		return 0
	}
	f := (far - dist) / far
	if f < 0 {
		return 0
	}
	return f
}

// LightParams mirrors the per-light uniform block: everything a fragment
// needs to evaluate one light's contribution. Color is premultiplied by
// intensity before upload.
type LightParams struct {
	Type     scene.LightType
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Color    mgl32.Vec3
	Near     float32
	Far      float32
	// ConeCos holds cos(inner), cos(outer) for spot lights.
	ConeCos mgl32.Vec2
}

// lightParamsFor packs a scene light the way the uniform upload does.
func lightParamsFor(l *scene.Light) LightParams {
	return LightParams{
		Type:     l.Type,
		Position: l.Position(),
		Front:    l.Front(),
		Color:    l.Color.Mul(l.Intensity),
		Near:     l.NearDistance,
		Far:      l.MaxDistance,
		ConeCos: mgl32.Vec2{
			cos32(mgl32.DegToRad(l.ConeInfo.X())),
			cos32(mgl32.DegToRad(l.ConeInfo.Y())),
		},
	}
}

// Contribution evaluates one light's diffuse radiance at a surface point
// with unit normal n. Directional lights use the light front with no
// falloff; point and spot lights attenuate linearly with distance, and spot
// lights additionally by the cone factor.
func Contribution(lp LightParams, n, worldPos mgl32.Vec3) mgl32.Vec3 {
	switch lp.Type {
	case scene.LightDirectional:
		ndl := maxf(n.Dot(lp.Front.Mul(-1)), 0)
		return lp.Color.Mul(ndl)

	case scene.LightPoint, scene.LightSpot:
		toLight := lp.Position.Sub(worldPos)
		dist := toLight.Len()
		if dist == 0 {
			return mgl32.Vec3{}
		}
		l := toLight.Mul(1 / dist)
		ndl := maxf(n.Dot(l), 0)
		att := DistanceFalloff(dist, lp.Far)
		if lp.Type == scene.LightSpot {
			cosAngle := lp.Front.Dot(l.Mul(-1))
			att *= ConeFactor(cosAngle, lp.ConeCos.X(), lp.ConeCos.Y())
		}
		return lp.Color.Mul(ndl * att)
	}
	return mgl32.Vec3{}
}

// ShadowTerm is the binary shadow comparison after projecting a world
// position into a light's clip space. sample gives the stored depth at a
// [0,1]^2 shadow-map coordinate. Samples falling outside the frustum's XY
// bounds or depth range are lit (1.0).
func ShadowTerm(viewProj mgl32.Mat4, worldPos mgl32.Vec3, bias float32, sample func(u, v float32) float32) float32 {
	clip := viewProj.Mul4x1(worldPos.Vec4(1))
	if clip.W() == 0 {
		return 1
	}
	ndc := clip.Mul(1 / clip.W())
	u := ndc.X()*0.5 + 0.5
	v := ndc.Y()*0.5 + 0.5
	depth := ndc.Z()*0.5 + 0.5
	if u < 0 || u > 1 || v < 0 || v > 1 || depth < 0 || depth > 1 {
		return 1
	}
	if sample(u, v) < depth-bias {
		return 0
	}
	return 1
}

// FragmentState is the non-light shading input for the reference evaluator:
// the material terms after texture sampling.
type FragmentState struct {
	Albedo    mgl32.Vec3
	Emissive  mgl32.Vec3
	Occlusion float32
	Normal    mgl32.Vec3
	WorldPos  mgl32.Vec3
}

// ShadeFragment is the reference for the complete lit-path fragment color:
//
//	albedo * (ambient*occlusion + sum of light contributions) + emissive
//
// Both lit programs compute exactly this; multipass spreads the sum over
// draws with ambient and emissive zeroed after the first.
func ShadeFragment(frag FragmentState, ambient mgl32.Vec3, lights []LightParams) mgl32.Vec3 {
	radiance := mgl32.Vec3{
		ambient.X() * frag.Occlusion,
		ambient.Y() * frag.Occlusion,
		ambient.Z() * frag.Occlusion,
	}
	for _, lp := range lights {
		radiance = radiance.Add(Contribution(lp, frag.Normal, frag.WorldPos))
	}
	return mgl32.Vec3{
		frag.Albedo.X()*radiance.X() + frag.Emissive.X(),
		frag.Albedo.Y()*radiance.Y() + frag.Emissive.Y(),
		frag.Albedo.Z()*radiance.Z() + frag.Emissive.Z(),
	}
}
