package libutil

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type recordingDeleter struct {
	name  string
	order *[]string
}

func (d recordingDeleter) Delete() {
	*d.order = append(*d.order, d.name)
}

func TestCleanupReleasesInReverse(t *testing.T) {
	var order []string
	func() {
		cleanup := &Cleanup{}
		defer cleanup.Release()
		cleanup.Add(recordingDeleter{"framebuffer", &order}, recordingDeleter{"texture", &order})
	}()

	if len(order) != 2 || order[0] != "texture" || order[1] != "framebuffer" {
		t.Errorf("expected [texture framebuffer] but got %v", order)
	}
}

func TestCleanupKeep(t *testing.T) {
	var order []string
	func() {
		cleanup := &Cleanup{}
		defer cleanup.Release()
		cleanup.Add(recordingDeleter{"texture", &order})
		cleanup.Keep()
	}()

	if len(order) != 0 {
		t.Errorf("kept handles should not be released, got %v", order)
	}
}

func TestPerpendicular(t *testing.T) {
	for _, v := range []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0.3, -2, 5}} {
		p := Perpendicular(v)
		if d := v.Dot(p); d > 1e-5 || d < -1e-5 {
			t.Errorf("Perpendicular(%v) = %v is not orthogonal, dot %f", v, p, d)
		}
		if p.Len() == 0 {
			t.Errorf("Perpendicular(%v) is zero", v)
		}
	}
}
