package main

import (
	"unsafe"

	"deferred-gl/libgl"
	"deferred-gl/shaders"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"
)

type ImGui struct {
	IO        imgui.IO
	FrameTime float32
	context   *imgui.Context
	vao       libgl.UnboundVertexArray
	vbo       libgl.UnboundBuffer
	ebo       libgl.UnboundBuffer
	atlas     libgl.UnboundTexture
	shader    libgl.UnboundShaderPipeline
}

func NewImGui(win *glfw.Window, src *shaders.Sources) (*ImGui, error) {
	vert, frag, err := src.Load(shaders.Gui)
	if err != nil {
		return nil, err
	}
	shader, err := libgl.LinkPipeline(shaders.Gui.Name, vert, frag)
	if err != nil {
		return nil, err
	}

	context := imgui.CreateContext(nil)
	io := imgui.CurrentIO()
	dispWidth, dispHeight := win.GetSize()
	io.SetDisplaySize(imgui.Vec2{X: float32(dispWidth), Y: float32(dispHeight)})
	imgui.StyleColorsDark()

	vao := libgl.NewVertexArray()
	vao.SetDebugLabel("imgui")
	vertexSize, vertexOffsetPos, vertexOffsetUv, vertexOffsetCol := imgui.VertexBufferLayout()
	vao.Layout(0, 0, 2, gl.FLOAT, false, vertexOffsetPos)
	vao.Layout(0, 1, 2, gl.FLOAT, false, vertexOffsetUv)
	vao.Layout(0, 2, 4, gl.UNSIGNED_BYTE, true, vertexOffsetCol)

	// mutable so that every command list can orphan the previous storage
	vbo := libgl.NewBuffer()
	ebo := libgl.NewBuffer()
	vao.BindBuffer(0, vbo, 0, vertexSize)
	vao.BindElementBuffer(ebo)

	image := io.Fonts().TextureDataRGBA32()
	atlas := libgl.NewTexture(gl.TEXTURE_2D)
	atlas.SetDebugLabel("imgui font")
	atlas.Allocate(1, gl.RGBA8, image.Width, image.Height, 0)
	atlas.Load(0, image.Width, image.Height, 0, gl.RGBA, unsafe.Slice((*byte)(image.Pixels), image.Width*image.Height*4))
	atlas.FilterMode(gl.LINEAR, gl.LINEAR)
	io.Fonts().SetTextureID(imgui.TextureID(atlas.Id()))

	win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		io.SetMouseButtonDown(int(button), action == glfw.Press)
	})
	win.SetScrollCallback(func(w *glfw.Window, x, y float64) {
		io.AddMouseWheelDelta(float32(x), float32(y))
	})
	win.SetCharCallback(func(w *glfw.Window, char rune) {
		io.AddInputCharacters(string(char))
	})
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyUnknown {
			return
		}
		if action == glfw.Press {
			io.KeyPress(int(key))
		}
		if action == glfw.Release {
			io.KeyRelease(int(key))
		}

		// Modifiers are not reliable across systems
		io.KeyCtrl(int(glfw.KeyLeftControl), int(glfw.KeyRightControl))
		io.KeyShift(int(glfw.KeyLeftShift), int(glfw.KeyRightShift))
		io.KeyAlt(int(glfw.KeyLeftAlt), int(glfw.KeyRightAlt))
		io.KeySuper(int(glfw.KeyLeftSuper), int(glfw.KeyRightSuper))
	})

	keys := map[int]glfw.Key{
		imgui.KeyTab:        glfw.KeyTab,
		imgui.KeyLeftArrow:  glfw.KeyLeft,
		imgui.KeyRightArrow: glfw.KeyRight,
		imgui.KeyUpArrow:    glfw.KeyUp,
		imgui.KeyDownArrow:  glfw.KeyDown,
		imgui.KeyHome:       glfw.KeyHome,
		imgui.KeyEnd:        glfw.KeyEnd,
		imgui.KeyDelete:     glfw.KeyDelete,
		imgui.KeyBackspace:  glfw.KeyBackspace,
		imgui.KeyEnter:      glfw.KeyEnter,
		imgui.KeyEscape:     glfw.KeyEscape,
	}
	for imguiKey, glfwKey := range keys {
		io.KeyMap(imguiKey, int(glfwKey))
	}

	return &ImGui{
		IO:        io,
		FrameTime: float32(glfw.GetTime()),
		context:   context,
		vao:       vao,
		vbo:       vbo,
		ebo:       ebo,
		atlas:     atlas,
		shader:    shader,
	}, nil
}

// WantsMouse reports whether the cursor is over an imgui window.
func (gui *ImGui) WantsMouse() bool {
	return gui.IO.WantCaptureMouse()
}

func (gui *ImGui) NewFrame(win *glfw.Window) {
	dispWidth, dispHeight := win.GetSize()
	gui.IO.SetDisplaySize(imgui.Vec2{X: float32(dispWidth), Y: float32(dispHeight)})
	x, y := win.GetCursorPos()
	gui.IO.SetMousePosition(imgui.Vec2{X: float32(x), Y: float32(y)})

	time := float32(glfw.GetTime())
	gui.IO.SetDeltaTime(max(time-gui.FrameTime, 1e-4))
	gui.FrameTime = time

	imgui.NewFrame()
}

func (gui *ImGui) Draw(win *glfw.Window) {
	libgl.PushDebugGroup("Draw ImGui")
	defer libgl.PopDebugGroup()

	dispWidth, dispHeight := win.GetSize()
	fbWidth, fbHeight := win.GetFramebufferSize()
	if dispWidth == 0 || dispHeight == 0 {
		imgui.EndFrame()
		return
	}
	libgl.State.BindFramebuffer(gl.FRAMEBUFFER, 0)
	libgl.State.Viewport(0, 0, fbWidth, fbHeight)
	ortho := mgl32.Ortho2D(0, float32(dispWidth), float32(dispHeight), 0)

	gui.vao.Bind()
	gui.shader.Bind()
	gui.shader.VertexStage().SetUniform("u_proj_mat", ortho)

	libgl.State.Disable(libgl.DepthTest)
	libgl.State.Enable(libgl.Blend)
	libgl.State.Enable(libgl.ScissorTest)
	libgl.State.BlendEquation(libgl.BlendFuncAdd)
	libgl.State.BlendFunc(libgl.BlendSrcAlpha, libgl.BlendOneMinusSrcAlpha)
	defer libgl.State.Disable(libgl.ScissorTest)

	imgui.Render()
	drawData := imgui.RenderedDrawData()
	drawData.ScaleClipRects(imgui.Vec2{
		X: float32(fbWidth) / float32(dispWidth),
		Y: float32(fbHeight) / float32(dispHeight),
	})

	var indexType uint32
	indexSize := imgui.IndexBufferLayout()
	switch indexSize {
	case 1:
		indexType = gl.UNSIGNED_BYTE
	case 2:
		indexType = gl.UNSIGNED_SHORT
	case 4:
		indexType = gl.UNSIGNED_INT
	}

	for _, list := range drawData.CommandLists() {
		vertexBuffer, vertexBufferSize := list.VertexBuffer()
		indexBuffer, indexBufferSize := list.IndexBuffer()
		if vertexBufferSize == 0 || indexBufferSize == 0 {
			continue
		}
		gui.vbo.AllocateMutable(unsafe.Slice((*byte)(vertexBuffer), vertexBufferSize), gl.STREAM_DRAW)
		gui.ebo.AllocateMutable(unsafe.Slice((*byte)(indexBuffer), indexBufferSize), gl.STREAM_DRAW)

		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
				continue
			}
			libgl.State.BindTextureUnit(0, uint32(cmd.TextureID()))
			clipRect := cmd.ClipRect()
			x, y := int(clipRect.X), max(fbHeight-int(clipRect.W), 0)
			libgl.State.Scissor(x, y, int(clipRect.Z-clipRect.X), int(clipRect.W-clipRect.Y))
			gl.DrawElementsBaseVertexWithOffset(gl.TRIANGLES, int32(cmd.ElementCount()), indexType, uintptr(cmd.IndexOffset()*indexSize), int32(cmd.VertexOffset()))
		}
	}
}

func (gui *ImGui) Delete() {
	gui.vao.Delete()
	gui.vbo.Delete()
	gui.ebo.Delete()
	gui.atlas.Delete()
	gui.shader.Delete()
	gui.context.Destroy()
}
