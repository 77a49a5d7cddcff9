package ibl

import (
	"errors"
	"testing"

	"deferred-gl/libgl"

	"github.com/go-gl/gl/v4.5-core/gl"
)

type fakeTexture struct {
	libgl.UnboundTexture
	id         uint32
	base, maxl int
	deleted    bool
}

func (tex *fakeTexture) Id() uint32 { return tex.id }
func (tex *fakeTexture) Delete()    { tex.deleted = true }
func (tex *fakeTexture) MipmapLevels(base, max int) {
	tex.base, tex.maxl = base, max
}

type recordedBlur struct {
	srcLevel int
	level    MipLevel
	face     CubeMapFace
}

type recordingFilter struct {
	blurs     []recordedBlur
	readbacks []MipLevel
	failAt    int
}

func (f *recordingFilter) blur(src libgl.UnboundTexture, srcLevel int, cubemap libgl.UnboundTexture, face CubeMapFace, level MipLevel) error {
	if f.failAt != 0 && level.Level == f.failAt {
		return errors.New("boom")
	}
	f.blurs = append(f.blurs, recordedBlur{srcLevel, level, face})
	return nil
}

func (f *recordingFilter) readback(scratch libgl.UnboundTexture, level MipLevel) error {
	f.readbacks = append(f.readbacks, level)
	return nil
}

func TestMipChain512(t *testing.T) {
	chain := MipChain(512)
	if len(chain) != 9 {
		t.Fatalf("512 should give 9 convolved levels but gave %d", len(chain))
	}
	size := 512
	for i, level := range chain {
		size /= 2
		if level.Level != i+1 || level.Size != size {
			t.Errorf("level %d should be %dx%d, got %+v", i+1, size, size, level)
		}
		if level.Kernel != 0.5/float32(size) {
			t.Errorf("level %d kernel should be %f but was %f", level.Level, 0.5/float32(size), level.Kernel)
		}
	}
	if chain[len(chain)-1].Size != 1 {
		t.Error("the chain should end at 1x1")
	}
	if len(MipChain(1)) != 0 {
		t.Error("a 1x1 face has nothing to convolve")
	}
}

func TestConvolveFaceChainsLevels(t *testing.T) {
	filter := &recordingFilter{}
	scratch := &fakeTexture{id: 1}
	cube := &fakeTexture{id: 2}

	if err := convolveFace(filter, scratch, cube, CubeMapNegativeY, 512); err != nil {
		t.Fatal(err)
	}
	if len(filter.blurs) != 9 || len(filter.readbacks) != 9 {
		t.Fatalf("expected 9 blurs and readbacks, got %d and %d", len(filter.blurs), len(filter.readbacks))
	}
	for i, b := range filter.blurs {
		if b.srcLevel != b.level.Level-1 {
			t.Errorf("level %d should read level %d but read %d", b.level.Level, b.level.Level-1, b.srcLevel)
		}
		if b.face != CubeMapNegativeY {
			t.Errorf("blur %d wrote face %v", i, b.face)
		}
		if filter.readbacks[i] != b.level {
			t.Errorf("readback %d should follow its blur", i)
		}
	}
	if scratch.base != 0 {
		t.Error("the scratch texture should be reset to its full chain")
	}
}

func TestConvolveFaceStopsOnError(t *testing.T) {
	filter := &recordingFilter{failAt: 3}
	err := convolveFace(filter, &fakeTexture{id: 1}, &fakeTexture{id: 2}, CubeMapPositiveX, 64)
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(filter.blurs) != 2 {
		t.Errorf("convolution should stop at the failing level, ran %d blurs", len(filter.blurs))
	}
}

func TestFilterFormatIsRenderable(t *testing.T) {
	// RGB16F is not a required color-renderable format
	if filterFormat != gl.RGBA16F {
		t.Errorf("cube map faces are render targets and need RGBA16F, got 0x%x", filterFormat)
	}
}
