package libscn

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestAddRectIndices(t *testing.T) {
	m := &Mesh{}
	m.AddRect(mgl32.Vec3{}, mgl32.Vec3{1, 1, 0}, mgl32.Vec2{}, mgl32.Vec2{1, 1})
	m.AddRect(mgl32.Vec3{}, mgl32.Vec3{2, 0, 2}, mgl32.Vec2{}, mgl32.Vec2{1, 1})

	if len(m.Vertices) != 8 {
		t.Fatalf("expected 8 vertices but got %d", len(m.Vertices))
	}
	expected := []uint32{0, 2, 1, 1, 2, 3, 4, 6, 5, 5, 6, 7}
	for i, idx := range expected {
		if m.Indices[i] != idx {
			t.Errorf("index %d should be %d but was %d", i, idx, m.Indices[i])
		}
	}

	// second rect has no height and must stay in the x-z plane
	for _, v := range m.Vertices[4:] {
		if v.Position.Y() != 0 {
			t.Errorf("x-z rect vertex %v left the plane", v.Position)
		}
	}
	if corner := m.Vertices[7].Position; corner != (mgl32.Vec3{2, 0, 2}) {
		t.Errorf("far corner should be (2,0,2) but was %v", corner)
	}
	if uv := m.Vertices[3].Uv; uv != (mgl32.Vec2{1, 1}) {
		t.Errorf("far uv should be (1,1) but was %v", uv)
	}
}

func TestExtrude(t *testing.T) {
	m := &Mesh{}
	if err := m.Extrude(mgl32.Vec3{0, 0, 1}); err != ErrNoEdge {
		t.Errorf("extruding an empty mesh should fail with ErrNoEdge, got %v", err)
	}

	m.AddRect(mgl32.Vec3{}, mgl32.Vec3{1, 1, 0}, mgl32.Vec2{}, mgl32.Vec2{1, 1})
	if err := m.Extrude(mgl32.Vec3{0, 0, 1}); err != nil {
		t.Fatal(err)
	}

	if len(m.Vertices) != 6 {
		t.Fatalf("expected 6 vertices but got %d", len(m.Vertices))
	}
	if m.Vertices[4].Position != m.Vertices[2].Position.Add(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("extruded vertex should be offset from the edge, got %v", m.Vertices[4].Position)
	}
	expected := []uint32{5, 3, 2, 2, 4, 5}
	for i, idx := range expected {
		if m.Indices[6+i] != idx {
			t.Errorf("extrude index %d should be %d but was %d", i, idx, m.Indices[6+i])
		}
	}
}

func TestAddCube(t *testing.T) {
	m := &Mesh{}
	m.AddCube(mgl32.Vec3{}, mgl32.Vec3{1, 2, 3})

	// rect + 3 extrusions + 2 sides
	if len(m.Vertices) != 4+3*2+2*4 {
		t.Errorf("expected 18 vertices but got %d", len(m.Vertices))
	}
	if len(m.Indices) != 6*6 {
		t.Errorf("expected 36 indices but got %d", len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			t.Fatalf("index %d out of range", idx)
		}
	}
	for _, v := range m.Vertices {
		p := v.Position
		if p.X() < 0 || p.X() > 1 || p.Y() < 0 || p.Y() > 2 || p.Z() < 0 || p.Z() > 3 {
			t.Errorf("vertex %v outside of the cube bounds", p)
		}
	}
}

func TestComputeTangents(t *testing.T) {
	m := Rect(2, 2)
	m.ComputeTangents()

	for i, v := range m.Vertices {
		if !v.Tangent.ApproxEqual(mgl32.Vec3{1, 0, 0}) {
			t.Errorf("tangent of vertex %d should follow +u (1,0,0) but was %v", i, v.Tangent)
		}
		if d := v.Tangent.Dot(v.Normal); d > 1e-5 || d < -1e-5 {
			t.Errorf("tangent of vertex %d is not orthogonal to its normal", i)
		}
	}
}

func TestComputeTangentsDegenerateUv(t *testing.T) {
	m := &Mesh{}
	m.AddRect(mgl32.Vec3{}, mgl32.Vec3{1, 1, 0}, mgl32.Vec2{}, mgl32.Vec2{})
	m.ComputeTangents()

	for i, v := range m.Vertices {
		if v.Tangent.Len() == 0 {
			t.Errorf("vertex %d should get a fallback tangent", i)
		}
		if d := v.Tangent.Dot(v.Normal); d > 1e-5 || d < -1e-5 {
			t.Errorf("fallback tangent of vertex %d is not orthogonal to its normal", i)
		}
	}
}
