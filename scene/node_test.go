package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalMatrixComposesThroughParents(t *testing.T) {
	parent := NewNode("parent")
	parent.Position = mgl32.Vec3{10, 0, 0}

	child := NewNode("child")
	child.Position = mgl32.Vec3{0, 5, 0}
	parent.AddChild(child)

	grandchild := NewNode("grandchild")
	grandchild.Position = mgl32.Vec3{0, 0, 2}
	child.AddChild(grandchild)

	got := grandchild.WorldPosition()
	assert.InDelta(t, 10, got.X(), 1e-6)
	assert.InDelta(t, 5, got.Y(), 1e-6)
	assert.InDelta(t, 2, got.Z(), 1e-6)
}

func TestGlobalMatrixAppliesParentRotationToChildOffset(t *testing.T) {
	parent := NewNode("parent")
	parent.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})

	child := NewNode("child")
	child.Position = mgl32.Vec3{0, 0, 1}
	parent.AddChild(child)

	// Rotating 90 degrees about +Y carries local +Z onto world +X.
	got := child.WorldPosition()
	assert.InDelta(t, 1, got.X(), 1e-5)
	assert.InDelta(t, 0, got.Z(), 1e-5)
}

func TestAddChildReparents(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	a.AddChild(c)
	require.Same(t, a, c.Parent())

	b.AddChild(c)
	assert.Same(t, b, c.Parent())
	assert.Empty(t, a.Children)
	assert.Len(t, b.Children, 1)
}

func TestWorldFrontFollowsRotation(t *testing.T) {
	n := NewNode("n")
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, n.WorldFront())

	n.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{1, 0, 0})
	front := n.WorldFront()
	assert.InDelta(t, -1, front.Y(), 1e-5)
	assert.InDelta(t, 0, front.Z(), 1e-5)
}

func TestWorldFrontIsUnitUnderScale(t *testing.T) {
	n := NewNode("n")
	n.Scale = mgl32.Vec3{3, 3, 3}
	assert.InDelta(t, 1, n.WorldFront().Len(), 1e-6)
}

func TestTransformBoundingBoxTranslation(t *testing.T) {
	box := BoundingBox{HalfSize: mgl32.Vec3{1, 1, 1}}
	m := mgl32.Translate3D(5, 0, 0)
	got := TransformBoundingBox(m, box)
	assert.Equal(t, mgl32.Vec3{5, 0, 0}, got.Center)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, got.HalfSize)
}

func TestTransformBoundingBoxRotationGrowsExtents(t *testing.T) {
	box := BoundingBox{HalfSize: mgl32.Vec3{1, 1, 1}}
	m := mgl32.HomogRotate3DY(mgl32.DegToRad(45))
	got := TransformBoundingBox(m, box)

	// A unit cube rotated 45 degrees needs sqrt(2) half-extents in X and Z.
	assert.InDelta(t, 1.41421, got.HalfSize.X(), 1e-4)
	assert.InDelta(t, 1, got.HalfSize.Y(), 1e-5)
	assert.InDelta(t, 1.41421, got.HalfSize.Z(), 1e-4)
}
