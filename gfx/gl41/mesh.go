package gl41

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/forge3d/forward/gfx"
)

// Mesh holds the GL buffer objects for an uploaded mesh and its
// object-space bounding box.
type Mesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
	vertexCount   int
	center        mgl32.Vec3
	halfSize      mgl32.Vec3
}

const vertexStride = int32(unsafe.Sizeof(gfx.Vertex{}))

func newMesh(vertices []gfx.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		indexCount:  int32(len(indices)),
		vertexCount: len(vertices),
	}
	m.center, m.halfSize = gfx.BoundsOf(vertices)

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	if len(vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(vertexStride), gl.Ptr(vertices), gl.STATIC_DRAW)
	}

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	if len(indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	}

	// layout: position(3f) normal(3f) uv(2f)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexStride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexStride, uintptr(12))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, vertexStride, uintptr(24))

	gl.BindVertexArray(0)
	return m
}

func (m *Mesh) Draw() {
	if m.indexCount == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (m *Mesh) VertexCount() int { return m.vertexCount }

func (m *Mesh) Bounds() (center, halfSize mgl32.Vec3) {
	return m.center, m.halfSize
}

// Destroy frees the GL buffers.
func (m *Mesh) Destroy() {
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
}

var _ gfx.Mesh = (*Mesh)(nil)
