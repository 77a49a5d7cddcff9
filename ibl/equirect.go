package ibl

import (
	"github.com/chewxy/math32"
)

// faceLongLat maps a face coordinate in [-1, 1]² to longitude and latitude.
// a runs along the face's s axis and b along its t axis in GL cube map
// conventions.
func faceLongLat(face CubeMapFace, a, b float32) (lon, lat float32) {
	switch face {
	case CubeMapPositiveY, CubeMapNegativeY:
		r := math32.Sqrt(a*a + b*b)
		lat = math32.Asin(1 / math32.Sqrt(1+r*r))
		if face == CubeMapNegativeY {
			return math32.Atan2(-b, a), -lat
		}
		return math32.Atan2(b, a), lat
	}

	// a quarter turn per equatorial face
	var offset float32
	switch face {
	case CubeMapPositiveX:
		offset = 0
	case CubeMapPositiveZ:
		offset = math32.Pi / 2
	case CubeMapNegativeX:
		offset = math32.Pi
	case CubeMapNegativeZ:
		offset = 3 * math32.Pi / 2
	}
	lon = offset - math32.Atan(a)
	lat = math32.Asin(-b / math32.Sqrt(1+a*a+b*b))
	return lon, lat
}

// longLatUv maps angles to panorama coordinates, u in [0, 1).
func longLatUv(lon, lat float32) (u, v float32) {
	u = lon/(2*math32.Pi) + 0.5
	u -= math32.Floor(u)
	v = 0.5 - lat/math32.Pi
	return u, v
}

// ProjectFace resamples the panorama onto one size x size cube face, rows in
// GL order.
func ProjectFace(pano *Panorama, face CubeMapFace, size int) []float32 {
	out := make([]float32, size*size*3)
	for y := 0; y < size; y++ {
		b := 2*(float32(y)+0.5)/float32(size) - 1
		for x := 0; x < size; x++ {
			a := 2*(float32(x)+0.5)/float32(size) - 1
			u, v := longLatUv(faceLongLat(face, a, b))
			i := (y*size + x) * 3
			out[i], out[i+1], out[i+2] = pano.Sample(u, v)
		}
	}
	return out
}

// Project converts the panorama into all six faces.
func Project(pano *Panorama, size int) *IblEnv {
	faceLen := size * size * 3
	data := make([]float32, 0, 6*faceLen)
	for face := CubeMapPositiveX; face <= CubeMapNegativeZ; face++ {
		data = append(data, ProjectFace(pano, face, size)...)
	}
	return NewIblEnv(data, size)
}
