package render

import (
	"image"
	"image/color"
	"testing"
)

func TestToRGBAFlipsRows(t *testing.T) {
	img := image.NewGray(image.Rect(2, 3, 4, 6))
	img.SetGray(2, 3, color.Gray{Y: 10})
	img.SetGray(3, 5, color.Gray{Y: 200})

	rgba := ToRGBA(img)
	if rgba.Rect.Dx() != 2 || rgba.Rect.Dy() != 3 {
		t.Fatalf("converted image should be 2x3 at the origin, got %v", rgba.Rect)
	}
	// the top left pixel ends up in the last row
	if r := rgba.RGBAAt(0, 2).R; r != 10 {
		t.Errorf("top row should be last after the flip, got %d", r)
	}
	if r := rgba.RGBAAt(1, 0).R; r != 200 {
		t.Errorf("bottom row should be first after the flip, got %d", r)
	}
	if a := rgba.RGBAAt(0, 1).A; a != 255 {
		t.Errorf("gray pixels should be opaque, got alpha %d", a)
	}
}
