package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font/gofont/goregular"
)

func testAtlas() *GlyphAtlas {
	atlas := &GlyphAtlas{Width: 100, Height: 20}
	atlas.Glyphs[' '-FirstGlyph] = GlyphMetrics{Advance: 4, Empty: true}
	atlas.Glyphs['A'-FirstGlyph] = GlyphMetrics{X: 10, Width: 8, Height: 10, BearingX: 1, BearingY: 10, Advance: 9}
	atlas.Glyphs['g'-FirstGlyph] = GlyphMetrics{X: 30, Width: 6, Height: 12, BearingX: 0, BearingY: 8, Advance: 7}
	return atlas
}

func TestLayoutText(t *testing.T) {
	mesh := LayoutText(testAtlas(), "A g")

	if len(mesh.Vertices) != 8 {
		t.Fatalf("expected two glyph quads but got %d vertices", len(mesh.Vertices))
	}

	a := mesh.Vertices[0]
	if a.Position != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("'A' should start at its bearing on the baseline, got %v", a.Position)
	}
	if a.Uv != (mgl32.Vec2{0.1, 0.5}) {
		t.Errorf("'A' bottom left uv should be (0.1, 0.5), got %v", a.Uv)
	}
	if top := mesh.Vertices[3]; !top.Uv.ApproxEqual(mgl32.Vec2{0.18, 0}) || top.Position != (mgl32.Vec3{9, 10, 0}) {
		t.Errorf("'A' top right corner wrong: %v %v", top.Position, top.Uv)
	}

	// 9 for 'A', 4 for the space; 'g' descends 4 below the baseline
	g := mesh.Vertices[4]
	if g.Position != (mgl32.Vec3{13, -4, 0}) {
		t.Errorf("'g' should start at (13,-4), got %v", g.Position)
	}
}

func TestLayoutTextSkipsUnknownRunes(t *testing.T) {
	mesh := LayoutText(testAtlas(), "\tAé")
	if len(mesh.Vertices) != 4 {
		t.Errorf("only 'A' should produce a quad, got %d vertices", len(mesh.Vertices))
	}
	if mesh.Vertices[0].Position.X() != 1 {
		t.Errorf("skipped runes must not advance, got x %v", mesh.Vertices[0].Position.X())
	}
}

func TestRasterizeAtlas(t *testing.T) {
	face, err := newFace(goregular.TTF, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer face.Close()

	pixels, atlas := rasterizeAtlas(face)
	if pixels.Rect.Dx() != atlas.Width || pixels.Rect.Dy() != atlas.Height {
		t.Errorf("pixel buffer %v does not match the atlas size %dx%d", pixels.Rect, atlas.Width, atlas.Height)
	}

	space, _ := atlas.Metrics(' ')
	if !space.Empty || space.Advance <= 0 {
		t.Errorf("space should be empty with a positive advance, got %+v", space)
	}
	a, _ := atlas.Metrics('A')
	if a.Empty || a.Width == 0 || a.Height == 0 || a.BearingY <= 0 {
		t.Errorf("'A' should have a bitmap above the baseline, got %+v", a)
	}

	covered := false
	for y := 0; y < a.Height; y++ {
		for x := a.X; x < a.X+a.Width; x++ {
			if pixels.AlphaAt(x, y).A > 0 {
				covered = true
			}
		}
	}
	if !covered {
		t.Error("'A' has no coverage in the atlas")
	}

	prev := -1
	for i, m := range atlas.Glyphs {
		if m.Empty {
			continue
		}
		if m.X <= prev {
			t.Errorf("glyph %q overlaps its predecessor", rune(FirstGlyph+i))
		}
		prev = m.X + m.Width
	}
}
