package render

import (
	"fmt"
	"image"

	"deferred-gl/libgl"

	"github.com/go-gl/gl/v4.5-core/gl"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// The atlas covers printable ascii
const (
	FirstGlyph   = 32
	LastGlyph    = 127
	GlyphCount   = LastGlyph - FirstGlyph + 1
	glyphPadding = 1
)

// GlyphMetrics are in pixels. X is the left edge of the glyph in the atlas,
// BearingY the distance from the baseline up to the top of the bitmap.
type GlyphMetrics struct {
	X        int
	Width    int
	Height   int
	BearingX int
	BearingY int
	Advance  int
	Empty    bool
}

// GlyphAtlas is a single row, single channel coverage texture.
type GlyphAtlas struct {
	Texture libgl.UnboundTexture
	Width   int
	Height  int
	Glyphs  [GlyphCount]GlyphMetrics
}

func (atlas *GlyphAtlas) Metrics(r rune) (GlyphMetrics, bool) {
	if r < FirstGlyph || r > LastGlyph {
		return GlyphMetrics{}, false
	}
	return atlas.Glyphs[r-FirstGlyph], true
}

func (atlas *GlyphAtlas) Delete() {
	if atlas.Texture != nil {
		atlas.Texture.Delete()
	}
}

// NewFontAtlas rasterizes a TrueType or OpenType font at the given pixel size.
// A nil font selects Go Regular.
func NewFontAtlas(ttf []byte, size float64) (*GlyphAtlas, error) {
	if ttf == nil {
		ttf = goregular.TTF
	}
	face, err := newFace(ttf, size)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	pixels, atlas := rasterizeAtlas(face)

	tex := libgl.NewTexture(gl.TEXTURE_2D)
	tex.SetDebugLabel("glyph atlas")
	tex.Allocate(1, gl.R8, atlas.Width, atlas.Height, 0)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	tex.Load(0, atlas.Width, atlas.Height, 0, gl.RED, pixels.Pix)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	tex.FilterMode(gl.LINEAR, gl.LINEAR)
	tex.WrapMode(gl.CLAMP_TO_EDGE, gl.CLAMP_TO_EDGE, 0)

	atlas.Texture = tex
	return atlas, nil
}

func newFace(ttf []byte, size float64) (font.Face, error) {
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("could not parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create font face of size %v: %w", size, err)
	}
	return face, nil
}

// rasterizeAtlas lays the glyphs out left to right with one pixel of padding.
// Rows are stored top first.
func rasterizeAtlas(face font.Face) (*image.Alpha, *GlyphAtlas) {
	atlas := &GlyphAtlas{}

	x := 0
	for i := range atlas.Glyphs {
		r := rune(FirstGlyph + i)
		dr, _, _, advance, ok := face.Glyph(fixed.Point26_6{}, r)
		m := &atlas.Glyphs[i]
		m.Advance = advance.Round()
		if !ok || dr.Empty() {
			m.Empty = true
			continue
		}
		m.X = x
		m.Width = dr.Dx()
		m.Height = dr.Dy()
		m.BearingX = dr.Min.X
		m.BearingY = -dr.Min.Y
		x += m.Width + glyphPadding
		if m.Height > atlas.Height {
			atlas.Height = m.Height
		}
	}
	atlas.Width = max(x, 1)
	atlas.Height = max(atlas.Height, 1)

	pixels := image.NewAlpha(image.Rect(0, 0, atlas.Width, atlas.Height))
	for i, m := range atlas.Glyphs {
		if m.Empty {
			continue
		}
		// masks are only valid until the next Glyph call
		_, mask, maskp, _, _ := face.Glyph(fixed.Point26_6{}, rune(FirstGlyph+i))
		dst := image.Rect(m.X, 0, m.X+m.Width, m.Height)
		draw.Draw(pixels, dst, mask, maskp, draw.Src)
	}
	return pixels, atlas
}
