package render

import _ "embed"

// ShaderAtlas is the embedded GLSL source for every program the renderer
// resolves at startup.
//
//go:embed shaders/atlas.glsl
var ShaderAtlas string
