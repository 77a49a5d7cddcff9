package render

import (
	"fmt"
	"unsafe"

	"deferred-gl/libgl"
	"deferred-gl/liblog"
	"deferred-gl/libutil"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Context owns everything a frame needs: shaders, transform and lighting
// blocks, the geometry buffer and the live objects. It must only be used on
// the thread holding the GL context.
type Context struct {
	Registry *Registry
	Lighting *LightingState
	GBuffer  *GBuffer
	Defaults DefaultTextures

	space         *SpaceTransformState
	objectBlock   libgl.UnboundBuffer
	lightingBlock libgl.UnboundBuffer
	width, height int
	stale         bool
	live          map[uuid.UUID]*Object
	capture       *faceCapture
}

// Initialize takes ownership of the registry. libgl.Init must have run.
func Initialize(width, height int, registry *Registry) (*Context, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid bounds %dx%d", width, height)
	}
	if registry == nil {
		return nil, fmt.Errorf("a shader registry is required")
	}

	objectBlock := libgl.NewBuffer()
	objectBlock.SetDebugLabel("object block")
	objectBlock.AllocateEmpty(int(unsafe.Sizeof([2]mgl32.Mat4{})), gl.DYNAMIC_STORAGE_BIT)
	objectBlock.BindBase(ObjectBlockBinding)

	lightingBlock := libgl.NewBuffer()
	lightingBlock.SetDebugLabel("lighting block")
	lightingBlock.AllocateEmpty(int(unsafe.Sizeof(LightingBlock{})), gl.DYNAMIC_STORAGE_BIT)
	lightingBlock.BindBase(LightingBlockBinding)

	ctx := &Context{
		Registry:      registry,
		Lighting:      NewLightingState(),
		GBuffer:       NewGBuffer(),
		Defaults:      NewDefaultTextures(),
		space:         NewSpaceTransformState(objectBlock),
		objectBlock:   objectBlock,
		lightingBlock: lightingBlock,
		live:          map[uuid.UUID]*Object{},
	}
	ctx.SetBounds(width, height)

	libgl.State.Enable(libgl.DepthTest)
	libgl.State.DepthFunc(libgl.DepthFuncLEqual)
	libgl.State.Enable(libgl.Blend)
	libgl.State.BlendFunc(libgl.BlendSrcAlpha, libgl.BlendOneMinusSrcAlpha)
	libgl.State.Enable(libgl.TextureCubeSeamless)
	libgl.State.ClearColor(0, 0, 0, 1)

	return ctx, nil
}

// ReplaceRegistry swaps in freshly compiled shaders and deletes the old ones.
func (c *Context) ReplaceRegistry(registry *Registry) {
	c.Registry.Delete()
	c.Registry = registry
}

func (c *Context) SetBounds(width, height int) {
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	c.space.SetBounds(width, height)
	c.stale = true
}

func (c *Context) Bounds() (int, int) {
	return c.width, c.height
}

func (c *Context) SetCamera(cam mgl32.Mat4) {
	c.space.SetCamera(cam)
}

func (c *Context) Camera() mgl32.Mat4 {
	return c.space.Camera
}

// TranslateCamera post-multiplies a translation onto the camera matrix.
func (c *Context) TranslateCamera(pos mgl32.Vec3) {
	c.space.SetCamera(c.space.Camera.Mul4(mgl32.Translate3D(pos.X(), pos.Y(), pos.Z())))
}

func (c *Context) Projection() mgl32.Mat4 {
	return c.space.Projection
}

// BeginFrame clears the targets, reallocates the geometry buffer after a
// resize and uploads the lighting block. Call it once before any 3d draw.
func (c *Context) BeginFrame() error {
	libgl.State.BindFramebuffer(gl.FRAMEBUFFER, 0)
	libgl.State.Viewport(0, 0, c.width, c.height)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if c.stale {
		if err := c.GBuffer.Resize(c.width, c.height); err != nil {
			return err
		}
		c.stale = false
	}
	c.GBuffer.Clear()
	c.space.Reset()
	c.uploadLighting()

	libgl.State.Enable(libgl.DepthTest)
	return nil
}

func (c *Context) uploadLighting() {
	if n := len(c.Lighting.PointLights()); n > MaxLights {
		liblog.Debugf("%d point lights, only the first %d are used", n, MaxLights)
	}
	if n := len(c.Lighting.DirLights()); n > MaxLights {
		liblog.Debugf("%d directional lights, only the first %d are used", n, MaxLights)
	}
	block := c.Lighting.Block()
	c.lightingBlock.Write(0, &block)
}

// Draw renders one object. 3d objects go to the geometry buffer, screen
// objects to the default framebuffer.
func (c *Context) Draw(obj *Object) {
	if !obj.Uploaded() {
		liblog.Warnf("object %q drawn before upload", obj.Name)
		return
	}
	c.space.Sync(obj.Space)
	c.bindTarget(obj.Space)

	plan := planMaterial(obj.Material, c.Lighting, &c.Defaults)
	shader := c.Registry.Object(plan.stage)
	shader.Pipeline.Bind()
	for _, binding := range plan.textures {
		binding.Texture.Bind(binding.Unit)
	}
	for _, u := range plan.uniforms {
		shader.Set(u.Name, u.Value)
	}
	shader.SetTransform(obj.Transform)
	obj.draw()
}

func (c *Context) bindTarget(space Space) {
	if space != Space3D {
		libgl.State.BindFramebuffer(gl.FRAMEBUFFER, 0)
		libgl.State.Viewport(0, 0, c.width, c.height)
		return
	}
	if c.capture != nil && c.capture.active {
		c.capture.fbo.Bind(gl.FRAMEBUFFER)
		libgl.State.Viewport(0, 0, c.capture.size, c.capture.size)
		return
	}
	c.GBuffer.Framebuffer.Bind(gl.FRAMEBUFFER)
	libgl.State.Viewport(0, 0, c.width, c.height)
}

// Add uploads the object if needed and keeps it alive until Remove or Shutdown.
func (c *Context) Add(obj *Object) error {
	if !obj.Uploaded() {
		if err := obj.Upload(); err != nil {
			return err
		}
	}
	c.live[obj.ID] = obj
	return nil
}

func (c *Context) Remove(obj *Object) {
	if _, ok := c.live[obj.ID]; !ok {
		return
	}
	delete(c.live, obj.ID)
	obj.Delete()
}

func (c *Context) LiveObjects() int {
	return len(c.live)
}

func (c *Context) Shutdown() {
	for id, obj := range c.live {
		obj.Delete()
		delete(c.live, id)
	}
	if c.capture != nil {
		c.capture.delete()
		c.capture = nil
	}
	c.GBuffer.Delete()
	c.Defaults.Delete()
	c.objectBlock.Delete()
	c.lightingBlock.Delete()
	c.Registry.Delete()
	libutil.ReleaseQuad()
}
