package render

import (
	"testing"

	"github.com/go-gl/gl/v4.5-core/gl"
)

// formats GL 4.5 core requires to be color-renderable, a subset
var requiredRenderable = map[uint32]bool{
	gl.RGBA8:   true,
	gl.RGBA16F: true,
	gl.RGBA32F: true,
	gl.R8:      true,
	gl.RG16F:   true,
	gl.R16F:    true,
}

func TestGBufferFormatsAreRenderable(t *testing.T) {
	for i, format := range gbufferFormats {
		if !requiredRenderable[format] {
			t.Errorf("gbuffer attachment %d uses format 0x%x which drivers may not render to", i, format)
		}
	}
}
