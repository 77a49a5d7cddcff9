package ibl

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
)

// Panorama is an equirectangular RGB float image, top row first. Longitude
// runs along x, latitude from +90° at the top to -90° at the bottom.
type Panorama struct {
	Width  int
	Height int
	Pix    []float32
}

func NewPanorama(width, height int) *Panorama {
	return &Panorama{Width: width, Height: height, Pix: make([]float32, width*height*3)}
}

func (p *Panorama) At(x, y int) (r, g, b float32) {
	i := (y*p.Width + x) * 3
	return p.Pix[i], p.Pix[i+1], p.Pix[i+2]
}

func (p *Panorama) Set(x, y int, r, g, b float32) {
	i := (y*p.Width + x) * 3
	p.Pix[i], p.Pix[i+1], p.Pix[i+2] = r, g, b
}

// Sample filters bilinearly at texel centers. u wraps around, v is clamped.
func (p *Panorama) Sample(u, v float32) (r, g, b float32) {
	x := u*float32(p.Width) - 0.5
	y := v*float32(p.Height) - 0.5
	x0, y0 := math32.Floor(x), math32.Floor(y)
	fx, fy := x-x0, y-y0

	wrap := func(i int) int {
		i %= p.Width
		if i < 0 {
			i += p.Width
		}
		return i
	}
	clamp := func(i int) int {
		return min(max(i, 0), p.Height-1)
	}

	ix0, ix1 := wrap(int(x0)), wrap(int(x0)+1)
	iy0, iy1 := clamp(int(y0)), clamp(int(y0)+1)

	r00, g00, b00 := p.At(ix0, iy0)
	r10, g10, b10 := p.At(ix1, iy0)
	r01, g01, b01 := p.At(ix0, iy1)
	r11, g11, b11 := p.At(ix1, iy1)

	lerp2 := func(c00, c10, c01, c11 float32) float32 {
		top := c00 + (c10-c00)*fx
		bottom := c01 + (c11-c01)*fx
		return top + (bottom-top)*fy
	}
	return lerp2(r00, r10, r01, r11), lerp2(g00, g10, g01, g11), lerp2(b00, b10, b01, b11)
}

// LoadPanorama reads a Radiance .hdr file or any 8 bit png or jpeg, which is
// converted from sRGB to linear.
func LoadPanorama(path string) (*Panorama, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open panorama %q: %w", path, err)
	}
	defer f.Close()

	pano, err := DecodePanorama(f, strings.EqualFold(filepath.Ext(path), ".hdr"))
	if err != nil {
		return nil, fmt.Errorf("could not load panorama %q: %w", path, err)
	}
	return pano, nil
}

func DecodePanorama(r io.Reader, radiance bool) (*Panorama, error) {
	var img image.Image
	var err error
	if radiance {
		img, err = rgbe.Decode(r)
	} else {
		img, _, err = image.Decode(r)
	}
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() < 2 || bounds.Dy() < 1 {
		return nil, fmt.Errorf("panorama of %dx%d is too small", bounds.Dx(), bounds.Dy())
	}
	pano := NewPanorama(bounds.Dx(), bounds.Dy())

	if hdrImg, ok := img.(hdr.Image); ok {
		for y := 0; y < pano.Height; y++ {
			for x := 0; x < pano.Width; x++ {
				r, g, b, _ := hdrImg.HDRAt(bounds.Min.X+x, bounds.Min.Y+y).HDRRGBA()
				pano.Set(x, y, float32(r), float32(g), float32(b))
			}
		}
		return pano, nil
	}

	for y := 0; y < pano.Height; y++ {
		for x := 0; x < pano.Width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			pano.Set(x, y, srgbToLinear(r), srgbToLinear(g), srgbToLinear(b))
		}
	}
	return pano, nil
}

func srgbToLinear(c uint32) float32 {
	v := float32(c) / 0xffff
	if v <= 0.04045 {
		return v / 12.92
	}
	return math32.Pow((v+0.055)/1.055, 2.4)
}
