package libscn

import (
	"errors"
	"unsafe"

	"deferred-gl/libutil"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex attribute locations: 0 position, 1 normal, 2 uv, 3 tangent.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Uv       mgl32.Vec2
	Tangent  mgl32.Vec3
}

const VertexSize = int(unsafe.Sizeof(Vertex{}))
const ElementIndexSize = int(unsafe.Sizeof(uint32(0)))

var ErrNoEdge = errors.New("mesh has no edge to extrude")

type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// AddRect appends a quad spanning start to start+extent.
// An extent without height lies in the x-z plane, otherwise the quad rises along y
// from the edge (0,0,0)-(x,0,z).
func (m *Mesh) AddRect(start, extent mgl32.Vec3, uvStart, uvExtent mgl32.Vec2) {
	i := uint32(len(m.Vertices))

	var corners [4]mgl32.Vec3
	if extent.Y() == 0 {
		corners = [4]mgl32.Vec3{
			start,
			start.Add(mgl32.Vec3{extent.X(), 0, 0}),
			start.Add(mgl32.Vec3{0, 0, extent.Z()}),
			start.Add(mgl32.Vec3{extent.X(), 0, extent.Z()}),
		}
	} else {
		corners = [4]mgl32.Vec3{
			start,
			start.Add(mgl32.Vec3{extent.X(), 0, extent.Z()}),
			start.Add(mgl32.Vec3{0, extent.Y(), 0}),
			start.Add(extent),
		}
	}
	uvs := [4]mgl32.Vec2{
		uvStart,
		uvStart.Add(mgl32.Vec2{uvExtent.X(), 0}),
		uvStart.Add(mgl32.Vec2{0, uvExtent.Y()}),
		uvStart.Add(uvExtent),
	}

	normal := faceNormal(corners[0], corners[2], corners[1])
	for k := range corners {
		m.Vertices = append(m.Vertices, Vertex{Position: corners[k], Normal: normal, Uv: uvs[k]})
	}
	m.Indices = append(m.Indices, i, i+2, i+1, i+1, i+2, i+3)
}

// Extrude duplicates the last two vertices moved by offset and closes the
// strip between the old and the new edge.
func (m *Mesh) Extrude(offset mgl32.Vec3) error {
	n := len(m.Vertices)
	if n < 2 {
		return ErrNoEdge
	}
	a, b := m.Vertices[n-2], m.Vertices[n-1]
	a.Position = a.Position.Add(offset)
	b.Position = b.Position.Add(offset)

	normal := faceNormal(m.Vertices[n-2].Position, a.Position, m.Vertices[n-1].Position)
	a.Normal, b.Normal = normal, normal

	m.Vertices = append(m.Vertices, a, b)
	i := uint32(n)
	m.Indices = append(m.Indices, i+1, i-1, i-2, i-2, i, i+1)
	return nil
}

// AddCube appends an axis aligned box from a floor rect, three extruded walls
// and two side caps.
func (m *Mesh) AddCube(start, extent mgl32.Vec3) {
	w, h, d := extent.X(), extent.Y(), extent.Z()
	m.AddRect(start, mgl32.Vec3{w, h, 0}, mgl32.Vec2{}, mgl32.Vec2{1, 1})
	// a fresh rect always leaves an edge behind
	_ = m.Extrude(mgl32.Vec3{0, 0, d})
	_ = m.Extrude(mgl32.Vec3{0, -h, 0})
	_ = m.Extrude(mgl32.Vec3{0, 0, -d})
	m.AddRect(start.Add(mgl32.Vec3{w, 0, 0}), mgl32.Vec3{0, h, d}, mgl32.Vec2{}, mgl32.Vec2{1, 1})
	m.AddRect(start, mgl32.Vec3{0, h, d}, mgl32.Vec2{}, mgl32.Vec2{1, 1})
}

// Rect is a single w by h quad at the origin with uvs covering [0,1].
func Rect(w, h float32) *Mesh {
	m := &Mesh{Name: "rect"}
	m.AddRect(mgl32.Vec3{}, mgl32.Vec3{w, h, 0}, mgl32.Vec2{}, mgl32.Vec2{1, 1})
	return m
}

// ComputeTangents derives per vertex tangents from position and uv deltas.
// The first triangle touching a vertex decides its tangent.
func (m *Mesh) ComputeTangents() {
	done := make([]bool, len(m.Vertices))
	for i := range m.Vertices {
		m.Vertices[i].Tangent = mgl32.Vec3{}
	}

	for i := 0; i+2 < len(m.Indices); i += 3 {
		tri := [3]uint32{m.Indices[i], m.Indices[i+1], m.Indices[i+2]}
		v0, v1, v2 := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]

		dPos01, dPos02 := v1.Position.Sub(v0.Position), v2.Position.Sub(v0.Position)
		dUV01, dUV02 := v1.Uv.Sub(v0.Uv), v2.Uv.Sub(v0.Uv)

		det := dUV01[0]*dUV02[1] - dUV02[0]*dUV01[1]
		if det == 0 {
			continue
		}
		f := 1 / det

		tan := mgl32.Vec3{
			f * (dUV02[1]*dPos01[0] - dUV01[1]*dPos02[0]),
			f * (dUV02[1]*dPos01[1] - dUV01[1]*dPos02[1]),
			f * (dUV02[1]*dPos01[2] - dUV01[1]*dPos02[2]),
		}
		if tan.Len() == 0 {
			continue
		}
		tan = tan.Normalize()

		for _, idx := range tri {
			if !done[idx] {
				m.Vertices[idx].Tangent = tan
				done[idx] = true
			}
		}
	}

	// degenerate uvs, pick any direction orthogonal to the normal
	for i := range m.Vertices {
		if done[i] || m.Vertices[i].Normal.Len() == 0 {
			continue
		}
		m.Vertices[i].Tangent = libutil.Perpendicular(m.Vertices[i].Normal).Normalize()
	}
}

func faceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() == 0 {
		return n
	}
	return n.Normalize()
}
