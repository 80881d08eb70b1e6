package gfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAtlas = `// programs
flat basic.vs flat.fs
texture basic.vs texture.fs

\basic.vs
#version 410 core
void main() {}
\flat.fs
#version 410 core
out vec4 FragColor;
void main() { FragColor = vec4(1.0); }
\texture.fs
#version 410 core
out vec4 FragColor;
void main() { FragColor = vec4(0.5); }
`

func TestParseAtlas(t *testing.T) {
	programs, err := ParseAtlas(sampleAtlas)
	require.NoError(t, err)
	require.Len(t, programs, 2)

	flat := programs["flat"]
	assert.Equal(t, "flat", flat.Name)
	assert.Contains(t, flat.VertexSrc, "#version 410 core")
	assert.Contains(t, flat.FragmentSrc, "vec4(1.0)")

	tex := programs["texture"]
	assert.Contains(t, tex.FragmentSrc, "vec4(0.5)")
	// Both programs share the same vertex block.
	assert.Equal(t, flat.VertexSrc, tex.VertexSrc)
}

func TestParseAtlasErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"missing block", "flat basic.vs flat.fs\n\\basic.vs\nvoid main(){}\n"},
		{"malformed header", "flat basic.vs\n\\basic.vs\nx\n"},
		{"duplicate program", "flat a b\nflat a b\n\\a\nx\n\\b\ny\n"},
		{"duplicate block", "flat a b\n\\a\nx\n\\a\ny\n\\b\nz\n"},
		{"no programs", "\\a\nx\n"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAtlas(tc.src)
			assert.Error(t, err)
		})
	}
}
