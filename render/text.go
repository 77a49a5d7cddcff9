package render

import (
	"deferred-gl/libscn"

	"github.com/go-gl/mathgl/mgl32"
)

// LayoutText builds one quad per visible glyph on a baseline at y = 0,
// starting at x = 0. Runes outside the atlas are skipped.
func LayoutText(atlas *GlyphAtlas, s string) *libscn.Mesh {
	mesh := &libscn.Mesh{Name: "text"}
	w, h := float32(atlas.Width), float32(atlas.Height)

	x := 0
	for _, r := range s {
		g, ok := atlas.Metrics(r)
		if !ok {
			continue
		}
		if !g.Empty {
			gw, gh := float32(g.Width), float32(g.Height)
			mesh.AddRect(
				mgl32.Vec3{float32(x + g.BearingX), float32(g.BearingY) - gh, 0},
				mgl32.Vec3{gw, gh, 0},
				mgl32.Vec2{float32(g.X) / w, gh / h},
				mgl32.Vec2{gw / w, -gh / h},
			)
		}
		x += g.Advance
	}
	return mesh
}

// Text creates a screen space object; upload it with Context.Add.
func Text(atlas *GlyphAtlas, s string, color mgl32.Vec4) *Object {
	return NewObject("text", LayoutText(atlas, s), Glyph{Color: color, Atlas: atlas}, SpaceScreen)
}
