package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Space int

const (
	SpaceUninitialized = Space(iota)
	SpaceScreen
	Space3D
)

func (s Space) String() string {
	switch s {
	case SpaceScreen:
		return "screen"
	case Space3D:
		return "3d"
	}
	return "uninitialized"
}

type blockWriter interface {
	Write(offset int, data any)
}

// SpaceTransformState tracks which projection/camera pair is currently in the
// object block so that consecutive draws in the same space skip the upload.
type SpaceTransformState struct {
	active     Space
	block      blockWriter
	Screen     mgl32.Mat4
	Projection mgl32.Mat4
	Camera     mgl32.Mat4
}

func NewSpaceTransformState(block blockWriter) *SpaceTransformState {
	return &SpaceTransformState{
		block:      block,
		Screen:     mgl32.Ident4(),
		Projection: mgl32.Ident4(),
		Camera:     mgl32.Ident4(),
	}
}

func (s *SpaceTransformState) Active() Space {
	return s.active
}

// Sync uploads the matrices of the given space and reports whether it had to.
func (s *SpaceTransformState) Sync(space Space) bool {
	if space == s.active || space == SpaceUninitialized {
		return false
	}
	s.active = space

	var matrices [2]mgl32.Mat4
	if space == Space3D {
		matrices = [2]mgl32.Mat4{s.Projection, s.Camera}
	} else {
		matrices = [2]mgl32.Mat4{s.Screen, mgl32.Ident4()}
	}
	s.block.Write(0, &matrices)
	return true
}

func (s *SpaceTransformState) Reset() {
	s.active = SpaceUninitialized
}

// SetBounds recomputes the screen matrix, which maps pixels centered on the
// viewport to clip space, and the perspective projection.
func (s *SpaceTransformState) SetBounds(width, height int) {
	s.Screen = ScreenMatrix(width, height)
	s.Projection = PerspectiveMatrix(width, height)
	s.active = SpaceUninitialized
}

func (s *SpaceTransformState) SetCamera(cam mgl32.Mat4) {
	s.Camera = cam
	if s.active == Space3D {
		s.active = SpaceUninitialized
	}
}

func (s *SpaceTransformState) SetProjection(projection mgl32.Mat4) {
	s.Projection = projection
	if s.active == Space3D {
		s.active = SpaceUninitialized
	}
}

const (
	FieldOfView = math.Pi / 3
	NearPlane   = 0.1
	FarPlane    = 100
)

func ScreenMatrix(width, height int) mgl32.Mat4 {
	m := mgl32.Ident4()
	if width > 0 && height > 0 {
		m.Set(0, 0, 2/float32(width))
		m.Set(1, 1, 2/float32(height))
	}
	return m
}

func PerspectiveMatrix(width, height int) mgl32.Mat4 {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(FieldOfView, aspect, NearPlane, FarPlane)
}
