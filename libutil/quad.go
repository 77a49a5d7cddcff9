package libutil

import (
	"deferred-gl/libgl"

	"github.com/go-gl/gl/v4.5-core/gl"
)

var sharedQuad libgl.UnboundVertexArray
var sharedQuadBuffer libgl.UnboundBuffer

// DrawQuad draws a full screen triangle strip with positions in [-1, 1] at attribute 0.
func DrawQuad() {
	if sharedQuad == nil {
		sharedQuadBuffer = libgl.NewBuffer()
		sharedQuadBuffer.Allocate([]float32{-1, -1, 1, -1, -1, 1, 1, 1}, 0)
		sharedQuadBuffer.SetDebugLabel("full screen quad")

		sharedQuad = libgl.NewVertexArray()
		sharedQuad.Layout(0, 0, 2, gl.FLOAT, false, 0)
		sharedQuad.BindBuffer(0, sharedQuadBuffer, 0, 2*4)
	}

	sharedQuad.Bind()
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
}

func ReleaseQuad() {
	if sharedQuad == nil {
		return
	}
	sharedQuad.Delete()
	sharedQuadBuffer.Delete()
	sharedQuad = nil
	sharedQuadBuffer = nil
}
