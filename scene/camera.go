package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera holds view and projection state plus the extracted frustum planes
// used for visibility culling. Call UpdateMatrices after changing any
// parameter.
type Camera struct {
	Eye    mgl32.Vec3
	Center mgl32.Vec3
	Up     mgl32.Vec3

	FOVDegrees float32
	Aspect     float32
	Near       float32
	Far        float32

	// Orthographic switches the projection to an orthographic box of
	// half-extent OrthoHalfSize. Shadow cameras for directional lights
	// use this.
	Orthographic  bool
	OrthoHalfSize float32

	View           mgl32.Mat4
	Projection     mgl32.Mat4
	ViewProjection mgl32.Mat4

	planes [6]mgl32.Vec4
}

// NewCamera returns a perspective camera at the origin looking down -Z.
func NewCamera() *Camera {
	c := &Camera{
		Eye:        mgl32.Vec3{0, 0, 0},
		Center:     mgl32.Vec3{0, 0, -1},
		Up:         mgl32.Vec3{0, 1, 0},
		FOVDegrees: 60,
		Aspect:     16.0 / 9.0,
		Near:       0.1,
		Far:        1000,
	}
	c.UpdateMatrices()
	return c
}

// LookAt points the camera.
func (c *Camera) LookAt(eye, center, up mgl32.Vec3) {
	c.Eye, c.Center, c.Up = eye, center, up
	c.UpdateMatrices()
}

// SetPerspective configures a perspective projection.
func (c *Camera) SetPerspective(fovDegrees, aspect, near, far float32) {
	c.Orthographic = false
	c.FOVDegrees, c.Aspect, c.Near, c.Far = fovDegrees, aspect, near, far
	c.UpdateMatrices()
}

// SetOrthographic configures a square orthographic projection of the given
// half-extent.
func (c *Camera) SetOrthographic(halfSize, near, far float32) {
	c.Orthographic = true
	c.OrthoHalfSize = halfSize
	c.Near, c.Far = near, far
	c.UpdateMatrices()
}

// UpdateMatrices recomputes view, projection, their product and the frustum
// planes.
func (c *Camera) UpdateMatrices() {
	c.View = mgl32.LookAtV(c.Eye, c.Center, c.Up)
	if c.Orthographic {
		h := c.OrthoHalfSize
		c.Projection = mgl32.Ortho(-h, h, -h, h, c.Near, c.Far)
	} else {
		c.Projection = mgl32.Perspective(mgl32.DegToRad(c.FOVDegrees), c.Aspect, c.Near, c.Far)
	}
	c.ViewProjection = c.Projection.Mul4(c.View)
	c.planes = extractFrustum(c.ViewProjection)
}

// TestBoxInFrustum reports whether an axis-aligned box given by center and
// half-extents intersects the camera frustum. Conservative: may report true
// for boxes slightly outside.
func (c *Camera) TestBoxInFrustum(center, halfSize mgl32.Vec3) bool {
	for i := 0; i < 6; i++ {
		p := c.planes[i]
		// Most-inside corner along the plane normal. If that corner is
		// behind the plane, the whole box is out.
		v := center
		for a := 0; a < 3; a++ {
			if p[a] > 0 {
				v[a] += halfSize[a]
			} else {
				v[a] -= halfSize[a]
			}
		}
		if p[0]*v[0]+p[1]*v[1]+p[2]*v[2]+p[3] < 0 {
			return false
		}
	}
	return true
}

// extractFrustum extracts the six planes of the view-projection frustum,
// normals pointing inside, in order left, right, bottom, top, near, far.
func extractFrustum(vp mgl32.Mat4) [6]mgl32.Vec4 {
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(i, 0), vp.At(i, 1), vp.At(i, 2), vp.At(i, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	planes := [6]mgl32.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}
	for i := range planes {
		n := float32(math.Sqrt(float64(planes[i][0]*planes[i][0] +
			planes[i][1]*planes[i][1] + planes[i][2]*planes[i][2])))
		if n > 0 {
			planes[i] = planes[i].Mul(1 / n)
		}
	}
	return planes
}
