package gfx

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the interleaved vertex layout every mesh uses:
// position, normal, texture coordinates.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// SphereVertices generates a UV sphere centered at the origin. Used for the
// skybox dome; rings and segments control tessellation.
func SphereVertices(radius float32, rings, segments int) ([]Vertex, []uint32) {
	if rings < 2 {
		rings = 2
	}
	if segments < 3 {
		segments = 3
	}

	var verts []Vertex
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			n := mgl32.Vec3{
				float32(math.Sin(phi) * math.Cos(theta)),
				float32(math.Cos(phi)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			verts = append(verts, Vertex{
				Position: n.Mul(radius),
				Normal:   n,
				UV:       mgl32.Vec2{float32(s) / float32(segments), float32(r) / float32(rings)},
			})
		}
	}

	var idx []uint32
	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			idx = append(idx, a, b, a+1, a+1, b, b+1)
		}
	}
	return verts, idx
}

// QuadVertices generates a unit quad in the XY plane spanning [-1,1],
// facing +Z. Used by the shadow-map debug overlay.
func QuadVertices() ([]Vertex, []uint32) {
	verts := []Vertex{
		{Position: mgl32.Vec3{-1, -1, 0}, Normal: mgl32.Vec3{0, 0, 1}, UV: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{1, -1, 0}, Normal: mgl32.Vec3{0, 0, 1}, UV: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{1, 1, 0}, Normal: mgl32.Vec3{0, 0, 1}, UV: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{-1, 1, 0}, Normal: mgl32.Vec3{0, 0, 1}, UV: mgl32.Vec2{0, 1}},
	}
	return verts, []uint32{0, 1, 2, 0, 2, 3}
}

// PlaneVertices generates a quad of the given half-extent in the XZ plane
// facing +Y.
func PlaneVertices(halfExtent float32) ([]Vertex, []uint32) {
	h := halfExtent
	verts := []Vertex{
		{Position: mgl32.Vec3{-h, 0, -h}, Normal: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{h, 0, -h}, Normal: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{h, 0, h}, Normal: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{-h, 0, h}, Normal: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{0, 1}},
	}
	return verts, []uint32{0, 2, 1, 0, 3, 2}
}

// CubeVertices generates an axis-aligned cube with the given half-extents.
func CubeVertices(half mgl32.Vec3) ([]Vertex, []uint32) {
	hx, hy, hz := half.X(), half.Y(), half.Z()
	faces := []struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{hx, -hy, hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}, {-hx, hy, -hz}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}}},
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	var verts []Vertex
	var idx []uint32
	for _, f := range faces {
		base := uint32(len(verts))
		for i, c := range f.corners {
			verts = append(verts, Vertex{Position: c, Normal: f.normal, UV: uvs[i]})
		}
		idx = append(idx, base, base+1, base+2, base, base+2, base+3)
	}
	return verts, idx
}

// BoundsOf computes the axis-aligned bounding box of a vertex set as center
// and half-extents.
func BoundsOf(verts []Vertex) (center, halfSize mgl32.Vec3) {
	if len(verts) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo := verts[0].Position
	hi := verts[0].Position
	for _, v := range verts[1:] {
		for i := 0; i < 3; i++ {
			if v.Position[i] < lo[i] {
				lo[i] = v.Position[i]
			}
			if v.Position[i] > hi[i] {
				hi[i] = v.Position[i]
			}
		}
	}
	return lo.Add(hi).Mul(0.5), hi.Sub(lo).Mul(0.5)
}
