package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/forge3d/forward/gfx"
)

// Kind discriminates entity types in a scene.
type Kind int

const (
	KindPrefab Kind = iota
	KindLight
)

// Entity is the common part of everything placed in a scene: a stable ID, a
// visibility flag and the root node owning the world transform.
type Entity struct {
	ID      string
	Name    string
	Kind    Kind
	Visible bool
	Root    *Node
}

func newEntity(name string, kind Kind) Entity {
	return Entity{
		ID:      uuid.NewString(),
		Name:    name,
		Kind:    kind,
		Visible: true,
		Root:    NewNode(name),
	}
}

// Prefab is an instanced model: a subtree of nodes carrying meshes and
// materials under the entity root.
type Prefab struct {
	Entity
}

// NewPrefab returns a visible prefab with an empty root node.
func NewPrefab(name string) *Prefab {
	return &Prefab{Entity: newEntity(name, KindPrefab)}
}

// Scene owns every entity, the materials attached to their nodes, and the
// frame-independent lighting environment. Lights and materials persist
// across frames; per-frame visibility snapshots are the renderer's business.
type Scene struct {
	Name string

	BackgroundColor mgl32.Vec3
	AmbientLight    mgl32.Vec3

	// Skybox is the environment texture, or nil for none.
	Skybox gfx.Texture

	Prefabs []*Prefab
	Lights  []*Light
}

// NewScene returns an empty scene with a dark background and a low ambient
// term.
func NewScene(name string) *Scene {
	return &Scene{
		Name:            name,
		BackgroundColor: mgl32.Vec3{0.1, 0.1, 0.1},
		AmbientLight:    mgl32.Vec3{0.1, 0.1, 0.1},
	}
}

// AddPrefab appends p to the scene.
func (s *Scene) AddPrefab(p *Prefab) { s.Prefabs = append(s.Prefabs, p) }

// AddLight appends l to the scene.
func (s *Scene) AddLight(l *Light) { s.Lights = append(s.Lights, l) }
