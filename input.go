package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// Input samples keyboard and mouse once per frame so that taps can be told
// apart from held keys.
type Input struct {
	curr inputState
	prev inputState
}

type inputState struct {
	time         float32
	cursorPos    mgl32.Vec2
	keys         []bool
	mousebuttons []bool
}

func newInputState() inputState {
	return inputState{
		keys:         make([]bool, glfw.KeyLast+1),
		mousebuttons: make([]bool, glfw.MouseButtonLast+1),
	}
}

func NewInput(win *glfw.Window) *Input {
	i := &Input{curr: newInputState(), prev: newInputState()}

	i.Update(win)
	i.prev.cursorPos = i.curr.cursorPos
	// keep the first time delta non zero
	i.prev.time = i.curr.time - 1./60.
	copy(i.prev.keys, i.curr.keys)
	copy(i.prev.mousebuttons, i.curr.mousebuttons)

	return i
}

func (i *Input) CursorDelta() mgl32.Vec2 {
	return i.curr.cursorPos.Sub(i.prev.cursorPos)
}

func (i *Input) TimeDelta() float32 {
	return i.curr.time - i.prev.time
}

func (i *Input) IsKeyDown(key glfw.Key) bool {
	return i.curr.keys[key]
}

func (i *Input) IsKeyTap(key glfw.Key) bool {
	return i.curr.keys[key] && !i.prev.keys[key]
}

func (i *Input) IsMouseDown(button glfw.MouseButton) bool {
	return i.curr.mousebuttons[button]
}

// Movement maps six keys to a camera space direction, -z being forward.
func (i *Input) Movement(forward, backward, left, right, up, down glfw.Key) mgl32.Vec3 {
	axis := func(neg, pos glfw.Key) float32 {
		var v float32
		if neg != 0 && i.IsKeyDown(neg) {
			v -= 1
		}
		if pos != 0 && i.IsKeyDown(pos) {
			v += 1
		}
		return v
	}
	return mgl32.Vec3{axis(left, right), axis(down, up), axis(forward, backward)}
}

func (i *Input) Update(win *glfw.Window) {
	keys := i.prev.keys
	mousebuttons := i.prev.mousebuttons
	i.prev = i.curr
	cursorX, cursorY := win.GetCursorPos()

	for key := glfw.KeySpace; key <= glfw.KeyLast; key++ {
		keys[key] = win.GetKey(key) != glfw.Release
	}
	for button := glfw.MouseButton1; button <= glfw.MouseButtonLast; button++ {
		mousebuttons[button] = win.GetMouseButton(button) != glfw.Release
	}

	i.curr = inputState{
		time:         float32(glfw.GetTime()),
		cursorPos:    mgl32.Vec2{float32(cursorX), float32(cursorY)},
		keys:         keys,
		mousebuttons: mousebuttons,
	}
}
