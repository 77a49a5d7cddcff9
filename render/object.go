package render

import (
	"fmt"

	"deferred-gl/libgl"
	"deferred-gl/libscn"
	"deferred-gl/libutil"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Object is a mesh with a material, placed in either screen or 3d space.
type Object struct {
	ID        uuid.UUID
	Name      string
	Mesh      *libscn.Mesh
	Transform mgl32.Mat4
	Material  Material
	Space     Space

	vao        libgl.UnboundVertexArray
	vbo        libgl.UnboundBuffer
	ebo        libgl.UnboundBuffer
	indexCount int32
	owned      []libutil.Deleter
}

func NewObject(name string, mesh *libscn.Mesh, material Material, space Space) *Object {
	return &Object{
		ID:        uuid.New(),
		Name:      name,
		Mesh:      mesh,
		Transform: mgl32.Ident4(),
		Material:  material,
		Space:     space,
	}
}

// Own hands resources to the object; they are deleted with it.
func (obj *Object) Own(items ...libutil.Deleter) {
	obj.owned = append(obj.owned, items...)
}

func (obj *Object) Uploaded() bool {
	return obj.vao != nil
}

// Upload creates the vertex array and buffers from the mesh.
func (obj *Object) Upload() error {
	if obj.vao != nil {
		return fmt.Errorf("object %q is already uploaded", obj.Name)
	}
	if err := obj.checkGeometry(); err != nil {
		return err
	}

	obj.vbo = libgl.NewBuffer()
	obj.vbo.SetDebugLabel(obj.Name + " vertices")
	obj.vbo.Allocate(obj.Mesh.Vertices, 0)

	obj.ebo = libgl.NewBuffer()
	obj.ebo.SetDebugLabel(obj.Name + " indices")
	obj.ebo.Allocate(obj.Mesh.Indices, 0)

	obj.vao = libgl.NewVertexArray()
	obj.vao.SetDebugLabel(obj.Name)
	obj.vao.Layout(0, 0, 3, gl.FLOAT, false, 0)
	obj.vao.Layout(0, 1, 3, gl.FLOAT, false, 3*4)
	obj.vao.Layout(0, 2, 2, gl.FLOAT, false, 6*4)
	obj.vao.Layout(0, 3, 3, gl.FLOAT, false, 8*4)
	obj.vao.BindBuffer(0, obj.vbo, 0, libscn.VertexSize)
	obj.vao.BindElementBuffer(obj.ebo)

	obj.indexCount = int32(len(obj.Mesh.Indices))
	return nil
}

func (obj *Object) checkGeometry() error {
	if obj.Mesh == nil || len(obj.Mesh.Vertices) == 0 || len(obj.Mesh.Indices) == 0 {
		return fmt.Errorf("object %q has no geometry", obj.Name)
	}
	return nil
}

// Reupload replaces the gpu geometry after the mesh was edited. An empty mesh
// is rejected and the previous geometry stays in place.
func (obj *Object) Reupload() error {
	if err := obj.checkGeometry(); err != nil {
		return err
	}
	obj.deleteGeometry()
	return obj.Upload()
}

// SetPosition post-multiplies a translation onto the model matrix.
func (obj *Object) SetPosition(pos mgl32.Vec3) {
	obj.Transform = obj.Transform.Mul4(mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()))
}

func (obj *Object) Scale(factor mgl32.Vec3) {
	obj.Transform = obj.Transform.Mul4(mgl32.Scale3D(factor.X(), factor.Y(), factor.Z()))
}

func (obj *Object) draw() {
	obj.vao.Bind()
	gl.DrawElements(gl.TRIANGLES, obj.indexCount, gl.UNSIGNED_INT, nil)
}

func (obj *Object) deleteGeometry() {
	if obj.vao != nil {
		obj.vao.Delete()
		obj.vbo.Delete()
		obj.ebo.Delete()
	}
	obj.vao, obj.vbo, obj.ebo = nil, nil, nil
	obj.indexCount = 0
}

// Delete frees the geometry and everything handed over with Own.
// Shared textures are never owned and survive.
func (obj *Object) Delete() {
	obj.deleteGeometry()
	for i := len(obj.owned) - 1; i >= 0; i-- {
		obj.owned[i].Delete()
	}
	obj.owned = nil
}
