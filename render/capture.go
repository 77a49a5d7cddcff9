package render

import (
	"fmt"

	"deferred-gl/libgl"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type faceCapture struct {
	fbo    libgl.UnboundFramebuffer
	depth  libgl.UnboundTexture
	size   int
	active bool

	camera     mgl32.Mat4
	projection mgl32.Mat4
}

func (fc *faceCapture) delete() {
	fc.fbo.Delete()
	fc.depth.Delete()
}

// BeginCapture redirects 3d draws into a square color texture seen through
// view and projection until EndCapture.
func (c *Context) BeginCapture(target libgl.UnboundTexture, view, projection mgl32.Mat4) error {
	size := target.Width()
	if size <= 0 || target.Height() != size {
		return fmt.Errorf("capture target must be square, got %dx%d", target.Width(), target.Height())
	}
	if c.capture != nil && c.capture.active {
		return fmt.Errorf("a capture is already running")
	}

	if c.capture == nil || c.capture.size != size {
		if c.capture != nil {
			c.capture.delete()
		}
		fbo := libgl.NewFramebuffer()
		fbo.SetDebugLabel("probe capture")
		depth := newTarget("probe capture depth", gl.DEPTH_COMPONENT32F, size, size)
		fbo.AttachTexture(gl.DEPTH_ATTACHMENT, depth)
		c.capture = &faceCapture{fbo: fbo, depth: depth, size: size}
	}

	c.capture.fbo.AttachTexture(0, target)
	c.capture.fbo.BindTargets(0)
	if err := c.capture.fbo.Check(gl.DRAW_FRAMEBUFFER); err != nil {
		return fmt.Errorf("probe capture framebuffer is incomplete: %w", err)
	}
	c.capture.fbo.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	c.capture.camera = c.space.Camera
	c.capture.projection = c.space.Projection
	c.capture.active = true
	c.space.SetCamera(view)
	c.space.SetProjection(projection)
	return nil
}

// EndCapture restores the camera and projection of the viewport.
func (c *Context) EndCapture() {
	if c.capture == nil || !c.capture.active {
		return
	}
	c.capture.active = false
	c.space.SetCamera(c.capture.camera)
	c.space.SetProjection(c.capture.projection)
	c.space.Reset()
}
