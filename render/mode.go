// Package render is the forward renderer core: per-frame orchestration,
// shadow map generation and the dual-path (multipass/singlepass) lighting
// accumulator.
package render

// ModeKind selects the top-level shading path.
type ModeKind int

const (
	// ModeFlat draws solid color only, no textures or lights.
	ModeFlat ModeKind = iota
	// ModeTextured draws albedo/emissive textures, no lights.
	ModeTextured
	// ModeLit runs the lighting accumulator.
	ModeLit
)

// LightingMode selects how the lit path accumulates lights.
type LightingMode int

const (
	// Multipass issues one draw per light, additively blended.
	Multipass LightingMode = iota
	// Singlepass packs all lights into shader arrays and draws once.
	Singlepass
)

// Mode is the active shading path as a tagged variant: Flat, Textured, or
// Lit with a lighting mode.
type Mode struct {
	Kind     ModeKind
	Lighting LightingMode
}

// Flat, Textured, Lit build Mode values.
func Flat() Mode              { return Mode{Kind: ModeFlat} }
func Textured() Mode          { return Mode{Kind: ModeTextured} }
func Lit(lm LightingMode) Mode { return Mode{Kind: ModeLit, Lighting: lm} }

func (m Mode) String() string {
	switch m.Kind {
	case ModeFlat:
		return "flat"
	case ModeTextured:
		return "textured"
	case ModeLit:
		if m.Lighting == Singlepass {
			return "lit/singlepass"
		}
		return "lit/multipass"
	}
	return "unknown"
}
