package particles

import (
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/particles/geom"
	"github.com/soypat/particles/glsl"
)

// Shape is a spinning point cloud on a sphere around an opaque sphere mesh.
type Shape struct {
	scene  *Scene
	Points Mesh
	Sphere Mesh
	// Angular speeds in radians per second.
	SpinY, SpinZ float32
}

// NewShape builds a shape at origin and adds it to scene.
func NewShape(scene *Scene, cfg Config, origin ms3.Vec) (*Shape, error) {
	sphere, err := geom.UVSphere(cfg.Sphere.Radius, cfg.Sphere.WidthSegments, cfg.Sphere.HeightSegments)
	if err != nil {
		return nil, err
	}
	s := &Shape{
		scene: scene,
		Points: Mesh{
			Primitive: Points,
			Positions: geom.Fibonacci(cfg.Points.Count, cfg.Points.Radius),
			Position:  origin,
			Material: Material{
				Program:     glsl.PointsProgram(cfg.Points.Size),
				Uniforms:    Uniforms{glsl.UniformTime: 0},
				Blending:    AdditiveBlending,
				Transparent: true,
				Side:        DoubleSide,
			},
		},
		Sphere: Mesh{
			Primitive: Triangles,
			Positions: sphere.Positions,
			Indices:   sphere.Indices,
			Position:  origin,
			Material: Material{
				Program:  glsl.SphereProgram(),
				Uniforms: Uniforms{glsl.UniformTime: 0},
			},
		},
		SpinY: cfg.Spin.Y,
		SpinZ: cfg.Spin.Z,
	}
	if scene != nil {
		scene.Shapes = append(scene.Shapes, s)
	}
	return s, nil
}

// Scene returns the scene the shape belongs to.
func (s *Shape) Scene() *Scene { return s.scene }

// Meshes returns the point cloud and sphere meshes.
func (s *Shape) Meshes() [2]*Mesh { return [2]*Mesh{&s.Points, &s.Sphere} }

// Update sets the time uniform of both materials to t seconds and rotates
// both meshes to their spin at t.
func (s *Shape) Update(t float32) {
	for _, m := range s.Meshes() {
		m.Material.Uniforms[glsl.UniformTime] = t
		m.Rotation.Y = -s.SpinY * t
		m.Rotation.Z = -s.SpinZ * t
	}
}

// Time returns the time uniform of the shape.
func (s *Shape) Time() float32 {
	return s.Points.Material.Uniforms[glsl.UniformTime]
}
