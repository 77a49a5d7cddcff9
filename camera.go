package main

import (
	"deferred-gl/libutil"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free flying first person camera.
type Camera struct {
	Position mgl32.Vec3
	// pitch and yaw in degrees
	Pitch, Yaw float32
	Speed      float32
}

func (cam *Camera) Quaternion() mgl32.Quat {
	pitch := mgl32.QuatRotate(cam.Pitch*libutil.Deg2Rad, mgl32.Vec3{1, 0, 0})
	yaw := mgl32.QuatRotate(cam.Yaw*libutil.Deg2Rad, mgl32.Vec3{0, 1, 0})
	return pitch.Mul(yaw)
}

func (cam *Camera) ViewMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(-cam.Position[0], -cam.Position[1], -cam.Position[2])
	return cam.Quaternion().Mat4().Mul4(t)
}

// Fly moves along a camera space direction.
func (cam *Camera) Fly(vec mgl32.Vec3) {
	cam.Position = cam.Position.Add(cam.Quaternion().Conjugate().Rotate(vec))
}

func (cam *Camera) Rotate(dPitch, dYaw float32) {
	cam.Yaw += dYaw
	cam.Pitch = mgl32.Clamp(cam.Pitch+dPitch, -89, 89)
}

// LookFrom places the camera at the translation of a world matrix, looking
// down its -z axis. Roll is dropped.
func (cam *Camera) LookFrom(world mgl32.Mat4) {
	cam.Position = world.Col(3).Vec3()
	forward := world.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	if forward.Len() == 0 {
		return
	}
	forward = forward.Normalize()
	cam.Pitch = -math32.Asin(mgl32.Clamp(forward.Y(), -1, 1)) * libutil.Rad2Deg
	cam.Yaw = math32.Atan2(forward.X(), -forward.Z()) * libutil.Rad2Deg
}
