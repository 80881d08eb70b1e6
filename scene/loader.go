package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/forge3d/forward/gfx"
)

// LoadOptions supplies the collaborators scene loading needs: a device to
// upload primitive meshes to and an optional texture resolver. A nil
// resolver (or a resolver returning nil) leaves texture slots empty; the
// renderer substitutes the white fallback at draw time.
type LoadOptions struct {
	Device   gfx.Device
	Textures func(path string) gfx.Texture
}

type sceneFile struct {
	Name       string      `json:"name"`
	Background [3]float32  `json:"background"`
	Ambient    [3]float32  `json:"ambient"`
	Skybox     string      `json:"skybox,omitempty"`
	Entities   []entityDef `json:"entities"`
}

type entityDef struct {
	Kind     string       `json:"kind"`
	Name     string       `json:"name"`
	Position [3]float32   `json:"position"`
	Euler    [3]float32   `json:"rotation_euler"`
	Scale    *[3]float32  `json:"scale,omitempty"`
	Mesh     *meshDef     `json:"mesh,omitempty"`
	Material *materialDef `json:"material,omitempty"`
	Light    *lightDef    `json:"light,omitempty"`
	Visible  *bool        `json:"visible,omitempty"`
}

type meshDef struct {
	Primitive string    `json:"primitive"` // "plane", "cube", "sphere"
	Params    []float32 `json:"params"`
}

type materialDef struct {
	Color       *[4]float32       `json:"color,omitempty"`
	Emissive    [3]float32        `json:"emissive"`
	AlphaMode   string            `json:"alpha_mode,omitempty"`
	AlphaCutoff *float32          `json:"alpha_cutoff,omitempty"`
	TwoSided    bool              `json:"two_sided"`
	Textures    map[string]string `json:"textures,omitempty"`
}

type lightDef struct {
	Type         string     `json:"type"` // "point", "spot", "directional"
	Color        [3]float32 `json:"color"`
	Intensity    float32    `json:"intensity"`
	NearDistance float32    `json:"near_distance"`
	MaxDistance  float32    `json:"max_distance"`
	ConeInfo     [2]float32 `json:"cone_info"`
	Area         float32    `json:"area"`
	CastShadows  bool       `json:"cast_shadows"`
	ShadowBias   float32    `json:"shadow_bias"`
}

var textureChannels = map[string]TextureChannel{
	"albedo":             ChannelAlbedo,
	"emissive":           ChannelEmissive,
	"metallic_roughness": ChannelMetallicRoughness,
	"normal":             ChannelNormal,
	"occlusion":          ChannelOcclusion,
}

// LoadFile reads a JSON scene description from disk.
func LoadFile(path string, opts LoadOptions) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data, opts)
}

// Load builds a Scene from a JSON scene description.
func Load(data []byte, opts LoadOptions) (*Scene, error) {
	var sf sceneFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("scene parse: %w", err)
	}

	sc := NewScene(sf.Name)
	sc.BackgroundColor = mgl32.Vec3(sf.Background)
	sc.AmbientLight = mgl32.Vec3(sf.Ambient)
	if sf.Skybox != "" && opts.Textures != nil {
		sc.Skybox = opts.Textures(sf.Skybox)
	}

	for i, def := range sf.Entities {
		switch def.Kind {
		case "prefab":
			p, err := buildPrefab(def, opts)
			if err != nil {
				return nil, fmt.Errorf("entity %d (%s): %w", i, def.Name, err)
			}
			sc.AddPrefab(p)
		case "light":
			l, err := buildLight(def)
			if err != nil {
				return nil, fmt.Errorf("entity %d (%s): %w", i, def.Name, err)
			}
			sc.AddLight(l)
		default:
			return nil, fmt.Errorf("entity %d (%s): unknown kind %q", i, def.Name, def.Kind)
		}
	}
	return sc, nil
}

func applyTransform(n *Node, def entityDef) {
	n.Position = mgl32.Vec3(def.Position)
	n.Rotation = mgl32.AnglesToQuat(
		mgl32.DegToRad(def.Euler[0]),
		mgl32.DegToRad(def.Euler[1]),
		mgl32.DegToRad(def.Euler[2]),
		mgl32.XYZ,
	)
	if def.Scale != nil {
		n.Scale = mgl32.Vec3(*def.Scale)
	}
}

func buildPrefab(def entityDef, opts LoadOptions) (*Prefab, error) {
	p := NewPrefab(def.Name)
	applyTransform(p.Root, def)
	if def.Visible != nil {
		p.Visible = *def.Visible
	}

	if def.Mesh != nil {
		if opts.Device == nil {
			return nil, fmt.Errorf("mesh requires a device")
		}
		verts, idx, err := primitiveVertices(def.Mesh)
		if err != nil {
			return nil, err
		}
		p.Root.Mesh = opts.Device.CreateMesh(verts, idx)
		p.Root.Material = buildMaterial(def.Name, def.Material, opts)
	}
	return p, nil
}

func primitiveVertices(def *meshDef) ([]gfx.Vertex, []uint32, error) {
	param := func(i int, fallback float32) float32 {
		if i < len(def.Params) {
			return def.Params[i]
		}
		return fallback
	}
	switch def.Primitive {
	case "plane":
		v, i := gfx.PlaneVertices(param(0, 1))
		return v, i, nil
	case "cube":
		v, i := gfx.CubeVertices(mgl32.Vec3{param(0, 0.5), param(1, 0.5), param(2, 0.5)})
		return v, i, nil
	case "sphere":
		v, i := gfx.SphereVertices(param(0, 1), 16, 32)
		return v, i, nil
	default:
		return nil, nil, fmt.Errorf("unknown primitive %q", def.Primitive)
	}
}

func buildMaterial(name string, def *materialDef, opts LoadOptions) *Material {
	m := NewMaterial(name)
	if def == nil {
		return m
	}
	if def.Color != nil {
		m.Color = mgl32.Vec4(*def.Color)
	}
	m.EmissiveFactor = mgl32.Vec3(def.Emissive)
	switch def.AlphaMode {
	case "", "opaque":
		m.AlphaMode = AlphaOpaque
	case "mask":
		m.AlphaMode = AlphaMask
	case "blend":
		m.AlphaMode = AlphaBlend
	}
	if def.AlphaCutoff != nil {
		m.AlphaCutoff = *def.AlphaCutoff
	}
	m.TwoSided = def.TwoSided
	if opts.Textures != nil {
		for key, path := range def.Textures {
			if ch, ok := textureChannels[key]; ok {
				m.Textures[ch] = opts.Textures(path)
			}
		}
	}
	return m
}

func buildLight(def entityDef) (*Light, error) {
	if def.Light == nil {
		return nil, fmt.Errorf("light entity missing light block")
	}
	ld := def.Light

	var typ LightType
	switch ld.Type {
	case "point":
		typ = LightPoint
	case "spot":
		typ = LightSpot
	case "directional":
		typ = LightDirectional
	default:
		return nil, fmt.Errorf("unknown light type %q", ld.Type)
	}

	l := NewLight(def.Name, typ)
	applyTransform(l.Root, def)
	if def.Visible != nil {
		l.Visible = *def.Visible
	}

	l.Color = mgl32.Vec3(ld.Color)
	if ld.Intensity != 0 {
		l.Intensity = ld.Intensity
	}
	if ld.NearDistance != 0 {
		l.NearDistance = ld.NearDistance
	}
	if ld.MaxDistance != 0 {
		l.MaxDistance = ld.MaxDistance
	}
	if ld.ConeInfo != ([2]float32{}) {
		l.ConeInfo = mgl32.Vec2(ld.ConeInfo)
	}
	if ld.Area != 0 {
		l.Area = ld.Area
	}
	l.CastShadows = ld.CastShadows
	if ld.ShadowBias != 0 {
		l.ShadowBias = ld.ShadowBias
	}
	return l, nil
}
