package particles

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/particles/glsl"
)

// Primitive is the kind of primitive a Mesh is drawn with.
type Primitive uint8

const (
	Triangles Primitive = iota
	Points
)

// Blending selects how fragments combine with the framebuffer.
type Blending uint8

const (
	NormalBlending Blending = iota
	// AdditiveBlending adds the source color weighted by its alpha.
	AdditiveBlending
)

// Side selects which triangle faces are drawn.
type Side uint8

const (
	FrontSide Side = iota
	DoubleSide
)

// Uniforms maps float uniform names to their values.
type Uniforms map[string]float32

// Material describes how a mesh is shaded.
type Material struct {
	Program     glsl.Program
	Uniforms    Uniforms
	Blending    Blending
	Transparent bool
	Side        Side
}

// Mesh is a drawable set of vertices with its transform and material.
// Indices are only used by Triangles meshes; a Triangles mesh without
// indices draws consecutive vertex triples.
type Mesh struct {
	Primitive Primitive
	Positions []ms3.Vec
	Indices   []uint32
	Material  Material
	// Position is the translation of the mesh.
	Position ms3.Vec
	// Rotation holds Euler angles in radians applied in XYZ order.
	Rotation ms3.Vec
}

// Model returns the model matrix T*Rx*Ry*Rz.
func (m *Mesh) Model() mgl32.Mat4 {
	rot := mgl32.HomogRotate3DX(m.Rotation.X).
		Mul4(mgl32.HomogRotate3DY(m.Rotation.Y)).
		Mul4(mgl32.HomogRotate3DZ(m.Rotation.Z))
	return mgl32.Translate3D(m.Position.X, m.Position.Y, m.Position.Z).Mul4(rot)
}

// Count returns the amount of vertices a draw call of the mesh consumes.
func (m *Mesh) Count() int {
	if m.Primitive == Triangles && m.Indices != nil {
		return len(m.Indices)
	}
	return len(m.Positions)
}

// Camera is a perspective camera.
type Camera struct {
	Fov    float32 // Vertical field of view in degrees.
	Aspect float32
	Near   float32
	Far    float32

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
}

// NewCamera returns a camera at distance on +Z looking at the origin.
func NewCamera(cfg CameraConfig, aspect float32) Camera {
	return Camera{
		Fov:      cfg.Fov,
		Aspect:   aspect,
		Near:     cfg.Near,
		Far:      cfg.Far,
		Position: mgl32.Vec3{0, 0, cfg.Distance},
		Up:       mgl32.Vec3{0, 1, 0},
	}
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}

// Scene is the set of shapes seen through a camera.
type Scene struct {
	Shapes     []*Shape
	Camera     Camera
	ClearColor [4]float32
}

// Meshes returns the meshes of all shapes in draw order: opaque meshes
// first, then transparent ones, each group in shape order.
func (s *Scene) Meshes() []*Mesh {
	meshes := make([]*Mesh, 0, 2*len(s.Shapes))
	for _, transparent := range [2]bool{false, true} {
		for _, shape := range s.Shapes {
			for _, m := range shape.Meshes() {
				if m.Material.Transparent == transparent {
					meshes = append(meshes, m)
				}
			}
		}
	}
	return meshes
}
