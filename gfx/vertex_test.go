package gfx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundsOf(t *testing.T) {
	verts := []Vertex{
		{Position: mgl32.Vec3{-1, 0, 2}},
		{Position: mgl32.Vec3{3, -2, 4}},
		{Position: mgl32.Vec3{1, 1, 3}},
	}
	center, half := BoundsOf(verts)
	assert.Equal(t, mgl32.Vec3{1, -0.5, 3}, center)
	assert.Equal(t, mgl32.Vec3{2, 1.5, 1}, half)
}

func TestBoundsOfEmpty(t *testing.T) {
	center, half := BoundsOf(nil)
	assert.Equal(t, mgl32.Vec3{}, center)
	assert.Equal(t, mgl32.Vec3{}, half)
}

func TestCubeVertices(t *testing.T) {
	verts, idx := CubeVertices(mgl32.Vec3{1, 2, 3})
	assert.Len(t, verts, 24, "four vertices per face")
	assert.Len(t, idx, 36, "two triangles per face")

	center, half := BoundsOf(verts)
	assert.Equal(t, mgl32.Vec3{}, center)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, half)
}

func TestSphereVerticesOnRadius(t *testing.T) {
	verts, idx := SphereVertices(2, 8, 16)
	require.NotEmpty(t, idx)
	for _, v := range verts {
		assert.InDelta(t, 2, v.Position.Len(), 1e-5)
		assert.InDelta(t, 1, v.Normal.Len(), 1e-5)
	}
	for _, i := range idx {
		assert.Less(t, int(i), len(verts))
	}
}

func TestPlaneVerticesFaceUp(t *testing.T) {
	verts, idx := PlaneVertices(5)
	assert.Len(t, idx, 6)
	for _, v := range verts {
		assert.Equal(t, mgl32.Vec3{0, 1, 0}, v.Normal)
		assert.Equal(t, float32(0), v.Position.Y())
	}
	_, half := BoundsOf(verts)
	assert.Equal(t, mgl32.Vec3{5, 0, 5}, half)
}
