// Package scene holds the scene graph the renderer walks: hierarchical
// nodes carrying transforms and optional mesh+material payloads, entities
// of kind Prefab or Light, materials and the camera.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/forge3d/forward/gfx"
)

// Node is one scene-graph node. The local transform is stored as
// position/rotation/scale and composed as T * R * S; the global matrix is
// resolved by walking parents.
type Node struct {
	Name    string
	Visible bool

	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	Mesh     gfx.Mesh
	Material *Material

	parent   *Node
	Children []*Node
}

// NewNode returns a visible node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Visible:  true,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// AddChild attaches child to n, detaching it from any previous parent.
func (n *Node) AddChild(child *Node) {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = n
	n.Children = append(n.Children, child)
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// LocalMatrix composes the node transform as T * R * S.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	rotate := n.Rotation.Mat4()
	scale := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return translate.Mul4(rotate).Mul4(scale)
}

// GlobalMatrix resolves the node's world transform through its ancestors.
func (n *Node) GlobalMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition returns the translation component of the global matrix.
func (n *Node) WorldPosition() mgl32.Vec3 {
	m := n.GlobalMatrix()
	return mgl32.Vec3{m.At(0, 3), m.At(1, 3), m.At(2, 3)}
}

// WorldFront returns the node's local +Z axis rotated into world space.
// Lights shine along this vector.
func (n *Node) WorldFront() mgl32.Vec3 {
	m := n.GlobalMatrix()
	front := mgl32.Vec3{m.At(0, 2), m.At(1, 2), m.At(2, 2)}
	if front.Len() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return front.Normalize()
}

// BoundingBox is an axis-aligned box as center and half-extents.
type BoundingBox struct {
	Center   mgl32.Vec3
	HalfSize mgl32.Vec3
}

// TransformBoundingBox conservatively transforms a local-space box into the
// space of m by transforming its eight corners.
func TransformBoundingBox(m mgl32.Mat4, box BoundingBox) BoundingBox {
	c, h := box.Center, box.HalfSize
	first := true
	var lo, hi mgl32.Vec3
	for _, sx := range []float32{-1, 1} {
		for _, sy := range []float32{-1, 1} {
			for _, sz := range []float32{-1, 1} {
				corner := mgl32.Vec3{c.X() + sx*h.X(), c.Y() + sy*h.Y(), c.Z() + sz*h.Z()}
				w := m.Mul4x1(corner.Vec4(1)).Vec3()
				if first {
					lo, hi = w, w
					first = false
					continue
				}
				for i := 0; i < 3; i++ {
					if w[i] < lo[i] {
						lo[i] = w[i]
					}
					if w[i] > hi[i] {
						hi[i] = w[i]
					}
				}
			}
		}
	}
	return BoundingBox{
		Center:   lo.Add(hi).Mul(0.5),
		HalfSize: hi.Sub(lo).Mul(0.5),
	}
}
