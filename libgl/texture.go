package libgl

import (
	"fmt"
	"math/bits"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type texture struct {
	glId       uint32
	dimensions uint32
	width      int
	height     int
	depth      int
	levels     int
}

type UnboundTexture interface {
	LabeledGlObject
	Id() uint32
	Type() uint32
	Width() int
	Height() int
	Levels() int
	Bind(unit int) BoundTexture
	Allocate(levels int, internalFormat uint32, width, height, depth int)
	Load(level int, width, height, depth int, format uint32, data any)
	LoadLayer(level, layer int, width, height int, format uint32, data any)
	CopyFramebuffer(level, layer int, width, height int)
	Read(level int, format uint32, data any)
	FilterMode(min, mag int32)
	WrapMode(s, t, r int32)
	MipmapLevels(base, max int)
	GenerateMipmap()
	Delete()
}

type BoundTexture interface {
	UnboundTexture
}

func NewTexture(dimensions uint32) UnboundTexture {
	var id uint32
	gl.CreateTextures(dimensions, 1, &id)
	if GlEnv.UseIntelTextureBindingFix {
		GlEnv.IntelTextureBindingTargets[id] = dimensions
	}
	return &texture{
		glId:       id,
		dimensions: dimensions,
	}
}

// MipLevelCount is the number of levels of a full chain down to 1x1.
func MipLevelCount(width, height int) int {
	max := width
	if height > max {
		max = height
	}
	if max < 1 {
		return 1
	}
	return bits.Len(uint(max))
}

func (tex *texture) storageDimensions() int {
	switch tex.dimensions {
	case gl.TEXTURE_1D, gl.TEXTURE_BUFFER:
		return 1
	case gl.TEXTURE_3D, gl.TEXTURE_2D_ARRAY, gl.TEXTURE_CUBE_MAP_ARRAY:
		return 3
	case gl.TEXTURE_2D, gl.TEXTURE_1D_ARRAY, gl.TEXTURE_CUBE_MAP, gl.TEXTURE_RECTANGLE:
		return 2
	default:
		gl.DebugMessageInsert(gl.DEBUG_SOURCE_APPLICATION, gl.DEBUG_TYPE_ERROR, 1, gl.DEBUG_SEVERITY_MEDIUM, -1, gl.Str(fmt.Sprintf("invalid texture dimension for texture %d: %04x\x00", tex.glId, tex.dimensions)))
		return 0
	}
}

func (tex *texture) Id() uint32 {
	return tex.glId
}

func (tex *texture) Type() uint32 {
	return tex.dimensions
}

func (tex *texture) Width() int {
	return tex.width
}

func (tex *texture) Height() int {
	return tex.height
}

func (tex *texture) Levels() int {
	return tex.levels
}

func (tex *texture) SetDebugLabel(label string) {
	setObjectLabel(gl.TEXTURE, tex.glId, label)
}

func (tex *texture) Bind(unit int) BoundTexture {
	State.BindTextureUnit(unit, tex.glId)
	return BoundTexture(tex)
}

func (tex *texture) Delete() {
	if State != nil {
		for unit, id := range State.TextureUnits {
			if id == tex.glId {
				State.TextureUnits[unit] = 0
			}
		}
	}
	gl.DeleteTextures(1, &tex.glId)
	tex.glId = 0
}

// Allocate creates immutable storage. levels == 0 allocates the full mip chain.
func (tex *texture) Allocate(levels int, internalFormat uint32, width, height, depth int) {
	if levels == 0 {
		levels = MipLevelCount(width, height)
	}
	tex.width = width
	tex.height = height
	tex.depth = depth
	tex.levels = levels
	switch tex.storageDimensions() {
	case 1:
		gl.TextureStorage1D(tex.glId, int32(levels), internalFormat, int32(width))
	case 2:
		gl.TextureStorage2D(tex.glId, int32(levels), internalFormat, int32(width), int32(height))
	case 3:
		gl.TextureStorage3D(tex.glId, int32(levels), internalFormat, int32(width), int32(height), int32(depth))
	}
}

func (tex *texture) Load(level int, width, height, depth int, format uint32, data any) {
	dataType := getGlType(data)
	if tex.dimensions == gl.TEXTURE_CUBE_MAP {
		gl.TextureSubImage3D(tex.glId, int32(level), 0, 0, 0, int32(width), int32(height), 6, format, dataType, Pointer(data))
		return
	}
	switch tex.storageDimensions() {
	case 1:
		gl.TextureSubImage1D(tex.glId, int32(level), 0, int32(width), format, dataType, Pointer(data))
	case 2:
		gl.TextureSubImage2D(tex.glId, int32(level), 0, 0, int32(width), int32(height), format, dataType, Pointer(data))
	case 3:
		gl.TextureSubImage3D(tex.glId, int32(level), 0, 0, 0, int32(width), int32(height), int32(depth), format, dataType, Pointer(data))
	}
}

// LoadLayer uploads a single layer; for cube maps the layer is the face index.
func (tex *texture) LoadLayer(level, layer int, width, height int, format uint32, data any) {
	gl.TextureSubImage3D(tex.glId, int32(level), 0, 0, int32(layer), int32(width), int32(height), 1, format, getGlType(data), Pointer(data))
}

// CopyFramebuffer copies from the bound read framebuffer into the given level and layer.
func (tex *texture) CopyFramebuffer(level, layer int, width, height int) {
	if tex.storageDimensions() == 3 || tex.dimensions == gl.TEXTURE_CUBE_MAP {
		gl.CopyTextureSubImage3D(tex.glId, int32(level), 0, 0, int32(layer), 0, 0, int32(width), int32(height))
		return
	}
	gl.CopyTextureSubImage2D(tex.glId, int32(level), 0, 0, 0, 0, int32(width), int32(height))
}

func (tex *texture) Read(level int, format uint32, data any) {
	gl.GetTextureImage(tex.glId, int32(level), format, getGlType(data), int32(fixedSize(data)), Pointer(data))
}

func (tex *texture) FilterMode(min, mag int32) {
	if min != 0 {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_MIN_FILTER, min)
	}
	if mag != 0 {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_MAG_FILTER, mag)
	}
}

func (tex *texture) WrapMode(s, t, r int32) {
	if s != 0 {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_WRAP_S, s)
	}
	if t != 0 {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_WRAP_T, t)
	}
	if r != 0 {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_WRAP_R, r)
	}
}

func (tex *texture) GenerateMipmap() {
	gl.GenerateTextureMipmap(tex.glId)
}

func (tex *texture) MipmapLevels(base, max int) {
	gl.TextureParameteri(tex.glId, gl.TEXTURE_BASE_LEVEL, int32(base))
	gl.TextureParameteri(tex.glId, gl.TEXTURE_MAX_LEVEL, int32(max))
}

func getGlType(data any) uint32 {
	switch data.(type) {
	case byte, []byte, *byte:
		return gl.UNSIGNED_BYTE
	case int8, []int8, *int8:
		return gl.BYTE
	case int16, []int16, *int16:
		return gl.SHORT
	case uint16, []uint16, *uint16:
		return gl.UNSIGNED_SHORT
	case int32, []int32, *int32:
		return gl.INT
	case uint32, []uint32, *uint32:
		return gl.UNSIGNED_INT
	case float32, []float32, *float32, mgl32.Vec2, []mgl32.Vec2, mgl32.Vec3, []mgl32.Vec3, mgl32.Vec4, []mgl32.Vec4:
		return gl.FLOAT
	case float64, []float64, *float64:
		return gl.DOUBLE
	}
	panic(fmt.Sprintf("invalid type: %T", data))
}

type sampler struct {
	glId uint32
}

type UnboundSampler interface {
	Id() uint32
	Bind(unit int) BoundSampler
	FilterMode(min, mag int32)
	WrapMode(s, t, r int32)
	Delete()
}

type BoundSampler interface {
	UnboundSampler
}

func NewSampler() UnboundSampler {
	var id uint32
	gl.CreateSamplers(1, &id)
	return &sampler{
		glId: id,
	}
}

func (s *sampler) Id() uint32 {
	return s.glId
}

func (s *sampler) Bind(unit int) BoundSampler {
	State.BindSampler(unit, s.glId)
	return BoundSampler(s)
}

func (s *sampler) FilterMode(min, mag int32) {
	if min != 0 {
		gl.SamplerParameteri(s.glId, gl.TEXTURE_MIN_FILTER, min)
	}
	if mag != 0 {
		gl.SamplerParameteri(s.glId, gl.TEXTURE_MAG_FILTER, mag)
	}
}

func (sampler *sampler) WrapMode(s, t, r int32) {
	if s != 0 {
		gl.SamplerParameteri(sampler.glId, gl.TEXTURE_WRAP_S, s)
	}
	if t != 0 {
		gl.SamplerParameteri(sampler.glId, gl.TEXTURE_WRAP_T, t)
	}
	if r != 0 {
		gl.SamplerParameteri(sampler.glId, gl.TEXTURE_WRAP_R, r)
	}
}

func (s *sampler) Delete() {
	gl.DeleteSamplers(1, &s.glId)
	s.glId = 0
}
