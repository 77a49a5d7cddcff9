package ibl

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
)

func TestLoadPanoramaPng(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(3, 1, color.RGBA{R: 188, G: 188, B: 188, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "sky.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	pano, err := LoadPanorama(path)
	if err != nil {
		t.Fatal(err)
	}
	if pano.Width != 4 || pano.Height != 2 {
		t.Fatalf("expected a 4x2 panorama, got %dx%d", pano.Width, pano.Height)
	}
	if r, g, b := pano.At(0, 0); r != 1 || g != 0 || b != 0 {
		t.Errorf("top left should stay pure red, got %v %v %v", r, g, b)
	}
	// srgb 188 is about half intensity in linear space
	if r, _, _ := pano.At(3, 1); math32.Abs(r-0.5) > 0.01 {
		t.Errorf("bottom right should be linearized to 0.5, got %v", r)
	}
}

func TestDecodePanoramaRejectsTinyImages(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodePanorama(&buf, false); err == nil {
		t.Error("a 1x1 image cannot be a panorama")
	}
}
