package render

import (
	"image"

	"deferred-gl/libgl"

	"github.com/go-gl/gl/v4.5-core/gl"
	"golang.org/x/image/draw"
)

// DefaultTextures are the shared 1x1 fallbacks for missing material maps.
// RGBA and RGB are white, Normal is the flat tangent space normal (0,0,1).
type DefaultTextures struct {
	RGBA   libgl.UnboundTexture
	RGB    libgl.UnboundTexture
	Normal libgl.UnboundTexture
}

func NewDefaultTextures() DefaultTextures {
	rgba := libgl.NewTexture(gl.TEXTURE_2D)
	rgba.SetDebugLabel("default rgba")
	rgba.Allocate(1, gl.RGBA8, 1, 1, 0)
	rgba.Load(0, 1, 1, 0, gl.RGBA, []uint8{255, 255, 255, 255})

	rgb := libgl.NewTexture(gl.TEXTURE_2D)
	rgb.SetDebugLabel("default rgb")
	rgb.Allocate(1, gl.RGB8, 1, 1, 0)
	rgb.Load(0, 1, 1, 0, gl.RGB, []uint8{255, 255, 255})

	normal := libgl.NewTexture(gl.TEXTURE_2D)
	normal.SetDebugLabel("default normal")
	normal.Allocate(1, gl.RGB8, 1, 1, 0)
	normal.Load(0, 1, 1, 0, gl.RGB, []uint8{128, 128, 255})

	return DefaultTextures{RGBA: rgba, RGB: rgb, Normal: normal}
}

func (d DefaultTextures) Delete() {
	d.RGBA.Delete()
	d.RGB.Delete()
	d.Normal.Delete()
}

// ToRGBA converts any image to tightly packed RGBA with the bottom row first,
// the row order GL expects.
func ToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	stride := rgba.Stride
	row := make([]byte, stride)
	for y := 0; y < rgba.Rect.Dy()/2; y++ {
		top := rgba.Pix[y*stride : (y+1)*stride]
		bottom := rgba.Pix[(rgba.Rect.Dy()-1-y)*stride : (rgba.Rect.Dy()-y)*stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
	return rgba
}

// UploadImage creates a mipmapped 2D texture. internalFormat picks the
// storage, e.g. gl.SRGB8_ALPHA8 for base color and gl.RGB8 for data maps.
func UploadImage(img image.Image, internalFormat uint32, label string) libgl.UnboundTexture {
	rgba := ToRGBA(img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()

	tex := libgl.NewTexture(gl.TEXTURE_2D)
	tex.SetDebugLabel(label)
	tex.Allocate(0, internalFormat, w, h, 0)
	tex.Load(0, w, h, 0, gl.RGBA, rgba.Pix)
	tex.FilterMode(gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR)
	tex.WrapMode(gl.REPEAT, gl.REPEAT, 0)
	tex.GenerateMipmap()
	return tex
}
