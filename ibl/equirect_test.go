package ibl

import (
	"testing"

	"github.com/chewxy/math32"
)

func smoothPanorama(w, h int) *Panorama {
	pano := NewPanorama(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u := (float32(x) + 0.5) / float32(w)
			v := (float32(y) + 0.5) / float32(h)
			pano.Set(x, y,
				0.5+0.5*math32.Sin(2*math32.Pi*u),
				0.5+0.5*math32.Cos(2*math32.Pi*u),
				v)
		}
	}
	return pano
}

func TestFaceSeam(t *testing.T) {
	const size = 64
	pano := smoothPanorama(512, 256)
	right := ProjectFace(pano, CubeMapPositiveX, size)
	back := ProjectFace(pano, CubeMapNegativeZ, size)

	// the last column of +x touches the first column of -z
	for y := 0; y < size; y++ {
		for c := 0; c < 3; c++ {
			a := right[(y*size+size-1)*3+c]
			b := back[(y*size)*3+c]
			if math32.Abs(a-b) > 0.03 {
				t.Fatalf("row %d channel %d differs across the seam: %.4f vs %.4f", y, c, a, b)
			}
		}
	}
}

func TestFaceCenters(t *testing.T) {
	cases := []struct {
		face     CubeMapFace
		lon, lat float32
	}{
		{CubeMapPositiveX, 0, 0},
		{CubeMapPositiveZ, math32.Pi / 2, 0},
		{CubeMapNegativeX, math32.Pi, 0},
		{CubeMapNegativeZ, 3 * math32.Pi / 2, 0},
		{CubeMapPositiveY, 0, math32.Pi / 2},
		{CubeMapNegativeY, 0, -math32.Pi / 2},
	}
	for _, c := range cases {
		lon, lat := faceLongLat(c.face, 0, 0)
		if math32.Abs(lat-c.lat) > 1e-5 {
			t.Errorf("%v center latitude should be %.3f but was %.3f", c.face, c.lat, lat)
		}
		if c.lat == 0 && math32.Abs(lon-c.lon) > 1e-5 {
			t.Errorf("%v center longitude should be %.3f but was %.3f", c.face, c.lon, lon)
		}
	}
}

func TestPolarFaceSamplesTopRow(t *testing.T) {
	pano := NewPanorama(8, 8)
	for x := 0; x < 8; x++ {
		pano.Set(x, 0, 1, 0, 0)
		pano.Set(x, 7, 0, 0, 1)
	}

	const size = 5
	top := ProjectFace(pano, CubeMapPositiveY, size)
	center := (2*size + 2) * 3
	if top[center] < 0.9 {
		t.Errorf("+y center should see the top row, got %v", top[center:center+3])
	}
	bottom := ProjectFace(pano, CubeMapNegativeY, size)
	if bottom[center+2] < 0.9 {
		t.Errorf("-y center should see the bottom row, got %v", bottom[center:center+3])
	}
}

func TestProjectLayout(t *testing.T) {
	env := Project(smoothPanorama(64, 32), 4)
	if env.Size != 4 || len(env.Concat()) != 6*4*4*3 {
		t.Fatalf("unexpected environment layout: size %d, %d floats", env.Size, len(env.Concat()))
	}
	for face := CubeMapPositiveX; face <= CubeMapNegativeZ; face++ {
		if len(env.Face(face)) != 4*4*3 {
			t.Errorf("face %v has %d floats", face, len(env.Face(face)))
		}
	}
}

func TestSampleWrapsHorizontally(t *testing.T) {
	pano := NewPanorama(4, 1)
	pano.Set(0, 0, 1, 1, 1)

	// halfway between the last and the first texel
	r, _, _ := pano.Sample(1, 0.5)
	if math32.Abs(r-0.5) > 1e-5 {
		t.Errorf("sampling at the wrap point should blend both edges, got %.3f", r)
	}
}
