package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCameraLooksDownNegativeZ(t *testing.T) {
	cam := &Camera{Position: mgl32.Vec3{1, 2, 3}}
	ahead := cam.ViewMatrix().Mul4x1(mgl32.Vec4{1, 2, 1, 1}).Vec3()
	if !ahead.ApproxEqualThreshold(mgl32.Vec3{0, 0, -2}, 1e-5) {
		t.Errorf("an unrotated camera should look down -z, got %v", ahead)
	}
}

func TestCameraFly(t *testing.T) {
	cam := &Camera{Yaw: 90}
	cam.Fly(mgl32.Vec3{0, 0, -1})
	if !cam.Position.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("flying forward after turning right should move along +x, got %v", cam.Position)
	}
}

func TestCameraLookFrom(t *testing.T) {
	world := mgl32.Translate3D(1, 2, 3).
		Mul4(mgl32.HomogRotate3DY(0.5)).
		Mul4(mgl32.HomogRotate3DX(-0.3))
	forward := world.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()

	cam := &Camera{}
	cam.LookFrom(world)
	if !cam.Position.ApproxEqualThreshold(mgl32.Vec3{1, 2, 3}, 1e-5) {
		t.Errorf("position should come from the translation, got %v", cam.Position)
	}
	ahead := cam.ViewMatrix().Mul4x1(cam.Position.Add(forward).Vec4(1)).Vec3()
	if !ahead.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-4) {
		t.Errorf("the node forward axis should end up straight ahead, got %v", ahead)
	}
}

func TestCameraPitchClamp(t *testing.T) {
	cam := &Camera{}
	cam.Rotate(200, 10)
	if cam.Pitch != 89 || cam.Yaw != 10 {
		t.Errorf("pitch should clamp at 89, got %v %v", cam.Pitch, cam.Yaw)
	}
}
