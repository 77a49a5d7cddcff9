package ibl

import (
	"fmt"

	"deferred-gl/effects"
	"deferred-gl/libgl"

	"github.com/go-gl/gl/v4.5-core/gl"
)

type MipLevel struct {
	Level  int
	Size   int
	Kernel float32
}

// MipChain lists the convolved levels below a face of the given resolution,
// each half the size of the previous one, down to 1x1.
func MipChain(resolution int) []MipLevel {
	var chain []MipLevel
	for n := 1; resolution>>n >= 1; n++ {
		size := resolution >> n
		chain = append(chain, MipLevel{Level: n, Size: size, Kernel: 0.5 / float32(size)})
	}
	return chain
}

type mipFilter interface {
	// blur renders level srcLevel of src into one level of a cube face
	blur(src libgl.UnboundTexture, srcLevel int, cubemap libgl.UnboundTexture, face CubeMapFace, level MipLevel) error
	// readback copies the last blur into a level of the scratch texture
	readback(scratch libgl.UnboundTexture, level MipLevel) error
}

// convolveFace expects the face content in level 0 of scratch. Every level
// reads the previous convolved level.
func convolveFace(f mipFilter, scratch, cubemap libgl.UnboundTexture, face CubeMapFace, resolution int) error {
	src := 0
	for _, level := range MipChain(resolution) {
		if err := f.blur(scratch, src, cubemap, face, level); err != nil {
			return fmt.Errorf("could not convolve level %d of face %v: %w", level.Level, face, err)
		}
		if err := f.readback(scratch, level); err != nil {
			return fmt.Errorf("could not read back level %d of face %v: %w", level.Level, face, err)
		}
		src = level.Level
	}
	scratch.MipmapLevels(0, 1000)
	return nil
}

// Convolver builds the blurred mip chain of cube maps on the gpu.
type Convolver struct {
	chain *effects.Chain
}

func NewConvolver(chain *effects.Chain) *Convolver {
	return &Convolver{chain: chain}
}

func (c *Convolver) blur(src libgl.UnboundTexture, srcLevel int, cubemap libgl.UnboundTexture, face CubeMapFace, level MipLevel) error {
	src.MipmapLevels(srcLevel, srcLevel)
	return c.chain.Apply(src, effects.BoxBlur{Size: level.Kernel}, effects.CubeFace(cubemap, int(face), level.Level))
}

func (c *Convolver) readback(scratch libgl.UnboundTexture, level MipLevel) error {
	return c.chain.CopyFramebuffer(scratch, level.Level, level.Size, level.Size)
}

func (c *Convolver) copyFace(scratch, cubemap libgl.UnboundTexture, face CubeMapFace) error {
	return c.chain.Apply(scratch, effects.Copy{}, effects.CubeFace(cubemap, int(face), 0))
}

func (c *Convolver) newCubemap(resolution int, label string) libgl.UnboundTexture {
	return NewCubemap(resolution, label)
}

func (c *Convolver) newScratch(resolution int) libgl.UnboundTexture {
	return NewScratch(resolution)
}

// filterFormat is used for both scratch and cube maps, faces are render targets.
const filterFormat = gl.RGBA16F

// NewScratch allocates the 2D working texture for faces of the given resolution.
func NewScratch(resolution int) libgl.UnboundTexture {
	tex := libgl.NewTexture(gl.TEXTURE_2D)
	tex.SetDebugLabel("convolution scratch")
	tex.Allocate(0, filterFormat, resolution, resolution, 0)
	tex.FilterMode(gl.LINEAR, gl.LINEAR)
	tex.WrapMode(gl.CLAMP_TO_EDGE, gl.CLAMP_TO_EDGE, 0)
	return tex
}

// NewCubemap allocates a full mip chain cube map.
func NewCubemap(resolution int, label string) libgl.UnboundTexture {
	tex := libgl.NewTexture(gl.TEXTURE_CUBE_MAP)
	tex.SetDebugLabel(label)
	tex.Allocate(0, filterFormat, resolution, resolution, 0)
	tex.FilterMode(gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR)
	tex.WrapMode(gl.CLAMP_TO_EDGE, gl.CLAMP_TO_EDGE, gl.CLAMP_TO_EDGE)
	return tex
}

// Upload creates a convolved cube map from a projected environment.
func (c *Convolver) Upload(env *IblEnv) (libgl.UnboundTexture, error) {
	cubemap := NewCubemap(env.Size, "environment")
	scratch := NewScratch(env.Size)
	defer scratch.Delete()

	for face := CubeMapPositiveX; face <= CubeMapNegativeZ; face++ {
		cubemap.LoadLayer(0, int(face), env.Size, env.Size, gl.RGB, env.Face(face))
		scratch.MipmapLevels(0, 1000)
		scratch.Load(0, env.Size, env.Size, 0, gl.RGB, env.Face(face))
		if err := convolveFace(c, scratch, cubemap, face, env.Size); err != nil {
			cubemap.Delete()
			return nil, err
		}
	}
	return cubemap, nil
}
