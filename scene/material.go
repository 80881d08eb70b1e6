package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/forge3d/forward/gfx"
)

// AlphaMode controls how a material's alpha channel is interpreted.
type AlphaMode int

const (
	// AlphaOpaque ignores alpha entirely.
	AlphaOpaque AlphaMode = iota
	// AlphaMask discards fragments whose sampled alpha falls below the
	// material's cutoff. Used for cutout transparency.
	AlphaMask
	// AlphaBlend renders with standard alpha blending.
	AlphaBlend
)

// TextureChannel indexes a material's texture slots.
type TextureChannel int

const (
	ChannelAlbedo TextureChannel = iota
	ChannelEmissive
	ChannelMetallicRoughness
	ChannelNormal
	ChannelOcclusion

	ChannelCount
)

// Material describes surface appearance. Any texture slot may be nil; the
// renderer substitutes the shared 1x1 white texture.
type Material struct {
	Name string

	Color          mgl32.Vec4
	EmissiveFactor mgl32.Vec3
	AlphaMode      AlphaMode
	AlphaCutoff    float32
	TwoSided       bool

	Textures [ChannelCount]gfx.Texture
}

// NewMaterial returns an opaque white material with no textures.
func NewMaterial(name string) *Material {
	return &Material{
		Name:        name,
		Color:       mgl32.Vec4{1, 1, 1, 1},
		AlphaCutoff: 0.5,
	}
}
