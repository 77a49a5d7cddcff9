package render

import (
	"fmt"

	"deferred-gl/libgl"

	"github.com/go-gl/gl/v4.5-core/gl"
)

// Color attachment indices of the geometry buffer
const (
	GBufferColor = iota
	GBufferNormal
	GBufferRoughMetal
)

// color formats of the attachments, all of them required to be renderable
var gbufferFormats = [...]uint32{
	GBufferColor:      gl.RGBA16F,
	GBufferNormal:     gl.RGBA16F,
	GBufferRoughMetal: gl.RGBA16F,
}

// GBuffer is the multi target framebuffer of the geometry pass. All targets
// share one size.
type GBuffer struct {
	Framebuffer libgl.UnboundFramebuffer
	Color       libgl.UnboundTexture
	Normal      libgl.UnboundTexture
	RoughMetal  libgl.UnboundTexture
	Depth       libgl.UnboundTexture
	width       int
	height      int
}

func NewGBuffer() *GBuffer {
	fbo := libgl.NewFramebuffer()
	fbo.SetDebugLabel("gbuffer")
	return &GBuffer{Framebuffer: fbo}
}

func (g *GBuffer) Size() (int, int) {
	return g.width, g.height
}

// Resize recreates the targets. Texture storage is immutable so the old
// textures are deleted.
func (g *GBuffer) Resize(width, height int) error {
	g.deleteTargets()
	g.width, g.height = width, height

	g.Color = newTarget("gbuffer color", gbufferFormats[GBufferColor], width, height)
	g.Normal = newTarget("gbuffer normal", gbufferFormats[GBufferNormal], width, height)
	g.RoughMetal = newTarget("gbuffer rough metal", gbufferFormats[GBufferRoughMetal], width, height)
	g.Depth = newTarget("gbuffer depth", gl.DEPTH_COMPONENT32F, width, height)

	g.Framebuffer.AttachTexture(GBufferColor, g.Color)
	g.Framebuffer.AttachTexture(GBufferNormal, g.Normal)
	g.Framebuffer.AttachTexture(GBufferRoughMetal, g.RoughMetal)
	g.Framebuffer.AttachTexture(gl.DEPTH_ATTACHMENT, g.Depth)
	g.Framebuffer.BindTargets(GBufferColor, GBufferNormal, GBufferRoughMetal)

	if err := g.Framebuffer.Check(gl.DRAW_FRAMEBUFFER); err != nil {
		return fmt.Errorf("gbuffer of %dx%d is incomplete: %w", width, height, err)
	}
	return nil
}

func newTarget(label string, internalFormat uint32, width, height int) libgl.UnboundTexture {
	tex := libgl.NewTexture(gl.TEXTURE_2D)
	tex.SetDebugLabel(label)
	tex.Allocate(1, internalFormat, width, height, 0)
	tex.FilterMode(gl.NEAREST, gl.NEAREST)
	tex.WrapMode(gl.CLAMP_TO_EDGE, gl.CLAMP_TO_EDGE, 0)
	return tex
}

func (g *GBuffer) Clear() {
	g.Framebuffer.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (g *GBuffer) deleteTargets() {
	for _, tex := range []libgl.UnboundTexture{g.Color, g.Normal, g.RoughMetal, g.Depth} {
		if tex != nil {
			tex.Delete()
		}
	}
	g.Color, g.Normal, g.RoughMetal, g.Depth = nil, nil, nil, nil
}

func (g *GBuffer) Delete() {
	g.deleteTargets()
	g.Framebuffer.Delete()
}
