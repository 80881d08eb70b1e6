package gl41

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	xdraw "golang.org/x/image/draw"

	"github.com/forge3d/forward/gfx"
)

// Texture is a GL 2D texture.
type Texture struct {
	id     uint32
	width  int
	height int
}

func (t *Texture) Size() (w, h int) { return t.width, t.height }

var _ gfx.Texture = (*Texture)(nil)

func newSolidTexture(rgba [4]uint8) *Texture {
	t := &Texture{width: 1, height: 1}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&rgba[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t
}

// LoadTexture decodes a PNG or JPEG file, converts it to tightly packed
// RGBA, flips it to GL's bottom-up row order and uploads it with mipmaps.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(rgba, image.Point{}, img, b, xdraw.Src, nil)
	flipVertical(rgba)

	t := &Texture{width: b.Dx(), height: b.Dy()}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(t.width), int32(t.height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t, nil
}

func flipVertical(img *image.RGBA) {
	stride := img.Stride
	h := img.Rect.Dy()
	row := make([]uint8, stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*stride : (y+1)*stride]
		bot := img.Pix[(h-1-y)*stride : (h-y)*stride]
		copy(row, top)
		copy(top, bot)
		copy(bot, row)
	}
}

// TextureCache loads textures at most once per path. Lookup failures are
// remembered so a missing file does not retry every frame.
type TextureCache struct {
	loaded map[string]*Texture
	failed map[string]bool
}

func NewTextureCache() *TextureCache {
	return &TextureCache{
		loaded: make(map[string]*Texture),
		failed: make(map[string]bool),
	}
}

// Get returns the texture for path, loading it on first use. Returns nil
// when the file cannot be loaded; callers substitute the white fallback.
func (c *TextureCache) Get(path string) *Texture {
	if t, ok := c.loaded[path]; ok {
		return t
	}
	if c.failed[path] {
		return nil
	}
	t, err := LoadTexture(path)
	if err != nil {
		c.failed[path] = true
		return nil
	}
	c.loaded[path] = t
	return t
}
