package effects

import (
	"errors"
	"fmt"

	"deferred-gl/libgl"
	"deferred-gl/libutil"
	"deferred-gl/render"

	"github.com/go-gl/gl/v4.5-core/gl"
)

var ErrNoReadback = errors.New("the last pass did not render into a texture")

// Target is where a pass writes. A nil texture means the default framebuffer.
type Target struct {
	Texture libgl.UnboundTexture
	Face    int
	Level   int
	Width   int
	Height  int
}

func Screen(width, height int) Target {
	return Target{Width: width, Height: height}
}

func TextureTarget(tex libgl.UnboundTexture) Target {
	return Target{Texture: tex, Width: tex.Width(), Height: tex.Height()}
}

// LevelTarget writes into one mip level of a 2D texture.
func LevelTarget(tex libgl.UnboundTexture, level int) Target {
	return Target{Texture: tex, Level: level, Width: max(tex.Width()>>level, 1), Height: max(tex.Height()>>level, 1)}
}

// CubeFace writes into one mip level of one cube map face.
func CubeFace(tex libgl.UnboundTexture, face, level int) Target {
	t := LevelTarget(tex, level)
	t.Face = face
	return t
}

func (t Target) isScreen() bool {
	return t.Texture == nil
}

func (t Target) isCube() bool {
	return t.Texture != nil && t.Texture.Type() == gl.TEXTURE_CUBE_MAP
}

type binding struct {
	unit    int
	name    string
	texture libgl.UnboundTexture
}

// bindings resolves the texture units of a pass and rejects passes that
// would sample their own destination.
func bindings(src libgl.UnboundTexture, pass Pass, dst Target) ([]binding, error) {
	name := pass.stage().Name
	if src == nil {
		return nil, fmt.Errorf("%s pass has no input", name)
	}
	result := []binding{{0, "tex", src}}
	for i, in := range pass.inputs() {
		if in.texture == nil {
			return nil, fmt.Errorf("%s pass is missing its %s input", name, in.name)
		}
		result = append(result, binding{i + 1, in.name, in.texture})
	}
	if !dst.isScreen() {
		for _, b := range result {
			if b.texture.Id() == dst.Texture.Id() {
				return nil, fmt.Errorf("%s pass samples its own target through %s", name, b.name)
			}
		}
	}
	return result, nil
}

// Chain runs texture shaders over a full screen quad.
type Chain struct {
	registry *render.Registry
	fbo      libgl.UnboundFramebuffer
	last     Target
}

func NewChain(registry *render.Registry) *Chain {
	fbo := libgl.NewFramebuffer()
	fbo.SetDebugLabel("post process")
	return &Chain{registry: registry, fbo: fbo}
}

// SetRegistry follows a shader reload.
func (c *Chain) SetRegistry(registry *render.Registry) {
	c.registry = registry
}

func (c *Chain) Apply(src libgl.UnboundTexture, pass Pass, dst Target) error {
	units, err := bindings(src, pass, dst)
	if err != nil {
		return err
	}

	libgl.PushDebugGroup(pass.stage().Name)
	defer libgl.PopDebugGroup()

	if dst.isScreen() {
		libgl.State.BindFramebuffer(gl.FRAMEBUFFER, 0)
	} else {
		if dst.isCube() {
			c.fbo.AttachTextureLayerLevel(0, dst.Texture, dst.Face, dst.Level)
		} else {
			c.fbo.AttachTextureLevel(0, dst.Texture, dst.Level)
		}
		c.fbo.BindTargets(0)
		if err := c.fbo.Check(gl.DRAW_FRAMEBUFFER); err != nil {
			return fmt.Errorf("%s pass target is incomplete: %w", pass.stage().Name, err)
		}
		c.fbo.Bind(gl.FRAMEBUFFER)
	}
	libgl.State.Viewport(0, 0, dst.Width, dst.Height)
	libgl.State.Disable(libgl.DepthTest)
	libgl.State.Disable(libgl.Blend)

	shader := c.registry.Texture(pass.stage())
	shader.Pipeline.Bind()
	for _, b := range units {
		b.texture.Bind(b.unit)
		shader.Set(b.name, b.unit)
	}
	for _, u := range pass.uniforms() {
		shader.Set(u.name, u.value)
	}
	libutil.DrawQuad()

	libgl.State.Enable(libgl.DepthTest)
	libgl.State.Enable(libgl.Blend)
	c.last = dst
	return nil
}

// CopyFramebuffer copies the result of the last pass into a level of a 2D texture.
func (c *Chain) CopyFramebuffer(dst libgl.UnboundTexture, level, width, height int) error {
	if c.last.isScreen() {
		return ErrNoReadback
	}
	c.fbo.ReadTarget(0)
	c.fbo.Bind(gl.READ_FRAMEBUFFER)
	dst.CopyFramebuffer(level, 0, width, height)
	return nil
}

func (c *Chain) Delete() {
	c.fbo.Delete()
}
