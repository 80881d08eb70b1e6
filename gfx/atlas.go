package gfx

import (
	"fmt"
	"strings"
)

// ProgramSource is one named program from a shader atlas, resolved to its
// vertex and fragment GLSL source.
type ProgramSource struct {
	Name        string
	VertexSrc   string
	FragmentSrc string
}

// ParseAtlas parses the text manifest that maps program names to shader
// source blocks. The manifest has two sections:
//
//   - a header of program definitions, one per line: "name vs_block fs_block"
//   - source blocks, each introduced by a line starting with '\' followed by
//     the block name, running until the next marker or end of input
//
// Blank lines and lines starting with // are ignored in the header. Every
// program must reference blocks that exist; duplicates are errors. The atlas
// is the only place shader source lives, so a malformed atlas is fatal at
// startup.
func ParseAtlas(src string) (map[string]ProgramSource, error) {
	lines := strings.Split(src, "\n")

	type programDef struct {
		name, vs, fs string
		line         int
	}
	var defs []programDef
	blocks := map[string]string{}

	// Header: everything before the first block marker.
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "\\") {
			break
		}
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("atlas line %d: want \"name vs fs\", got %q", i+1, line)
		}
		defs = append(defs, programDef{name: fields[0], vs: fields[1], fs: fields[2], line: i + 1})
	}

	// Source blocks.
	for i < len(lines) {
		marker := strings.TrimSpace(lines[i])
		name := strings.TrimSpace(strings.TrimPrefix(marker, "\\"))
		if name == "" {
			return nil, fmt.Errorf("atlas line %d: empty block name", i+1)
		}
		if _, dup := blocks[name]; dup {
			return nil, fmt.Errorf("atlas line %d: duplicate block %q", i+1, name)
		}
		i++
		var body []string
		for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), "\\") {
			body = append(body, lines[i])
			i++
		}
		blocks[name] = strings.Join(body, "\n")
	}

	programs := make(map[string]ProgramSource, len(defs))
	for _, d := range defs {
		if _, dup := programs[d.name]; dup {
			return nil, fmt.Errorf("atlas line %d: duplicate program %q", d.line, d.name)
		}
		vs, ok := blocks[d.vs]
		if !ok {
			return nil, fmt.Errorf("atlas line %d: program %q references missing block %q", d.line, d.name, d.vs)
		}
		fs, ok := blocks[d.fs]
		if !ok {
			return nil, fmt.Errorf("atlas line %d: program %q references missing block %q", d.line, d.name, d.fs)
		}
		programs[d.name] = ProgramSource{Name: d.name, VertexSrc: vs, FragmentSrc: fs}
	}
	if len(programs) == 0 {
		return nil, fmt.Errorf("atlas defines no programs")
	}
	return programs, nil
}
