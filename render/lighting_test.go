package render

import (
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLightingBlockLayout(t *testing.T) {
	var block LightingBlock
	offsets := []struct {
		name     string
		actual   uintptr
		expected uintptr
	}{
		{"point_count", unsafe.Offsetof(block.PointCount), 0},
		{"points", unsafe.Offsetof(block.Points), 16},
		{"dir_count", unsafe.Offsetof(block.DirCount), 336},
		{"dirs", unsafe.Offsetof(block.Dirs), 352},
		{"global_env_enabled", unsafe.Offsetof(block.GlobalEnvEnabled), 672},
		{"local_env_enabled", unsafe.Offsetof(block.LocalEnvEnabled), 676},
		{"local_env_position", unsafe.Offsetof(block.LocalEnvPosition), 688},
		{"local_env_dist", unsafe.Offsetof(block.LocalEnvRadius), 704},
		{"ambient", unsafe.Offsetof(block.Ambient), 720},
	}
	for _, o := range offsets {
		if o.actual != o.expected {
			t.Errorf("%s should be at offset %d but is at %d", o.name, o.expected, o.actual)
		}
	}
	if size := unsafe.Sizeof(block); size != 736 {
		t.Errorf("lighting block should be 736 bytes but is %d", size)
	}
	if stride := unsafe.Sizeof(block.Points[0]); stride != 32 {
		t.Errorf("point light stride should be 32 but is %d", stride)
	}
}

func TestLightingTruncation(t *testing.T) {
	ls := NewLightingState()
	for i := 0; i < 15; i++ {
		ls.AddPointLight(PointLight{Position: mgl32.Vec3{float32(i), 0, 0}})
		ls.AddDirLight(DirLight{Direction: mgl32.Vec3{0, float32(i), 0}})
	}

	block := ls.Block()
	if block.PointCount != MaxLights || block.DirCount != MaxLights {
		t.Fatalf("light counts should be capped at %d, got %d and %d", MaxLights, block.PointCount, block.DirCount)
	}
	for i := 0; i < MaxLights; i++ {
		if block.Points[i].Position.X() != float32(i) {
			t.Errorf("point light %d should keep insertion order, got %v", i, block.Points[i].Position)
		}
		if block.Dirs[i].Direction.Y() != float32(i) {
			t.Errorf("directional light %d should keep insertion order, got %v", i, block.Dirs[i].Direction)
		}
	}
	if len(ls.PointLights()) != 15 {
		t.Error("truncation must not drop lights from the state")
	}

	again := ls.Block()
	if again != block {
		t.Error("packing the same state twice should give the same block")
	}
}

func TestLocalEnvToggle(t *testing.T) {
	ls := NewLightingState()
	tex := &fakeTexture{id: 7}

	ls.EnableLocalEnv(mgl32.Vec3{1, 2, 3}, 4, tex)
	block := ls.Block()
	if block.LocalEnvEnabled != 1 || block.LocalEnvRadius != 4 {
		t.Errorf("local env should be enabled with radius 4, got %+v", ls.IBL())
	}
	if block.LocalEnvPosition != (mgl32.Vec4{1, 2, 3, 1}) {
		t.Errorf("local env position wrong: %v", block.LocalEnvPosition)
	}
	if ls.LocalEnv() != tex {
		t.Error("local env cubemap not recorded")
	}

	ls.DisableLocalEnv()
	if ls.Block().LocalEnvEnabled != 0 || ls.LocalEnv() != nil {
		t.Error("local env should be disabled")
	}

	ls.SetGlobalEnv(tex)
	if ls.Block().GlobalEnvEnabled != 1 {
		t.Error("global env should be enabled")
	}
}
