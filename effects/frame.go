package effects

import (
	"deferred-gl/libgl"
	"deferred-gl/render"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type Settings struct {
	AORadius  float32
	AOSamples int
	SSR       bool
}

// ScreenTargets hold the intermediate results of a frame at viewport size.
type ScreenTargets struct {
	AO            libgl.UnboundTexture
	AOBlurred     libgl.UnboundTexture
	SSR           libgl.UnboundTexture
	width, height int
}

func (st *ScreenTargets) Resize(width, height int) {
	if st.AO != nil && width == st.width && height == st.height {
		return
	}
	st.Delete()
	st.width, st.height = width, height
	st.AO = newScreenTexture("ao", gl.R8, width, height)
	st.AOBlurred = newScreenTexture("ao blurred", gl.R8, width, height)
	st.SSR = newScreenTexture("ssr", gl.RGBA16F, width, height)
}

func newScreenTexture(label string, internalFormat uint32, width, height int) libgl.UnboundTexture {
	tex := libgl.NewTexture(gl.TEXTURE_2D)
	tex.SetDebugLabel(label)
	tex.Allocate(1, internalFormat, width, height, 0)
	tex.FilterMode(gl.LINEAR, gl.LINEAR)
	tex.WrapMode(gl.CLAMP_TO_EDGE, gl.CLAMP_TO_EDGE, 0)
	return tex
}

func (st *ScreenTargets) Delete() {
	if st.AO != nil {
		st.AO.Delete()
		st.AOBlurred.Delete()
		st.SSR.Delete()
	}
	st.AO, st.AOBlurred, st.SSR = nil, nil, nil
}

type step struct {
	src  libgl.UnboundTexture
	pass Pass
	dst  Target
}

// resolveSteps orders the passes of a frame: occlusion, its blur, reflections
// when enabled, then the composite onto the screen.
func resolveSteps(gbuf *render.GBuffer, targets *ScreenTargets, settings Settings, projection mgl32.Mat4, seed float32, w, h int) []step {
	size := mgl32.Vec2{float32(w), float32(h)}
	steps := []step{
		{gbuf.Depth, AmbientOcclusion{
			Radius:     settings.AORadius,
			Samples:    settings.AOSamples,
			Seed:       seed,
			Normal:     gbuf.Normal,
			Projection: projection,
		}, TextureTarget(targets.AO)},
		// one texel between taps
		{targets.AO, BoxBlur{Size: 1 / float32(max(w, h, 1))}, TextureTarget(targets.AOBlurred)},
	}
	if settings.SSR {
		steps = append(steps, step{gbuf.Color, Reflection{
			Normal:     gbuf.Normal,
			Depth:      gbuf.Depth,
			Size:       size,
			Far:        render.FarPlane,
			Projection: projection,
		}, TextureTarget(targets.SSR)})
	}
	return append(steps, step{gbuf.Color, Composite{
		Depth:      gbuf.Depth,
		AO:         targets.AOBlurred,
		SSR:        targets.SSR,
		RoughMetal: gbuf.RoughMetal,
		Size:       size,
	}, Screen(w, h)})
}

// Resolve derives ambient occlusion and reflections from the geometry buffer
// and composites the result onto the default framebuffer.
func (c *Chain) Resolve(ctx *render.Context, targets *ScreenTargets, settings Settings, seed float32) error {
	w, h := ctx.Bounds()
	targets.Resize(w, h)
	if !settings.SSR {
		gl.ClearTexImage(targets.SSR.Id(), 0, gl.RGBA, gl.FLOAT, nil)
	}

	for _, st := range resolveSteps(ctx.GBuffer, targets, settings, ctx.Projection(), seed, w, h) {
		if err := c.Apply(st.src, st.pass, st.dst); err != nil {
			return err
		}
	}
	return nil
}
