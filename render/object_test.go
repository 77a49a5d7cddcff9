package render

import (
	"testing"

	"deferred-gl/libgl"
	"deferred-gl/libscn"

	"github.com/go-gl/mathgl/mgl32"
)

type fakeVertexArray struct {
	libgl.UnboundVertexArray
	deleted bool
}

func (vao *fakeVertexArray) Delete() { vao.deleted = true }

type fakeBuffer struct {
	libgl.UnboundBuffer
	deleted bool
}

func (buf *fakeBuffer) Delete() { buf.deleted = true }

func TestReuploadKeepsGeometryOfEmptyMesh(t *testing.T) {
	obj := NewObject("label", libscn.Rect(1, 1), Flat{Color: mgl32.Vec4{1, 1, 1, 1}}, SpaceScreen)
	vao, vbo, ebo := &fakeVertexArray{}, &fakeBuffer{}, &fakeBuffer{}
	obj.vao, obj.vbo, obj.ebo, obj.indexCount = vao, vbo, ebo, 6

	obj.Mesh = &libscn.Mesh{}
	if err := obj.Reupload(); err == nil {
		t.Fatal("an empty mesh should be rejected")
	}
	if vao.deleted || vbo.deleted || ebo.deleted {
		t.Error("the previous geometry should not be released")
	}
	if !obj.Uploaded() || obj.indexCount != 6 {
		t.Error("the object should keep drawing its previous geometry")
	}

	obj.Mesh = nil
	if err := obj.Reupload(); err == nil {
		t.Error("a missing mesh should be rejected")
	}
}
