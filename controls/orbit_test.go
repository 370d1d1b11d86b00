package controls

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/particles"
	"github.com/stretchr/testify/assert"
)

func newCamera() *particles.Camera {
	cam := particles.NewCamera(particles.DefaultConfig().Camera, 1)
	return &cam
}

func TestOrbitRotateKeepsDistance(t *testing.T) {
	cam := newCamera()
	o := NewOrbit(cam, 600)
	for i := 0; i < 50; i++ {
		o.Rotate(13, -7)
		assert.InDelta(t, 5, o.Distance(), 1e-4)
	}
}

func TestOrbitFullTurn(t *testing.T) {
	cam := newCamera()
	start := cam.Position
	o := NewOrbit(cam, 600)
	o.Rotate(150, 0)
	assert.InDelta(t, -5, cam.Position.X(), 1e-4, "quarter turn must land on the X axis")
	o.Rotate(450, 0)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, start[i], cam.Position[i], 1e-4, "component %d after a full turn", i)
	}
}

func TestOrbitPolarClamp(t *testing.T) {
	cam := newCamera()
	o := NewOrbit(cam, 100)
	o.Rotate(0, -1000)
	dir := cam.Position.Normalize()
	assert.InDelta(t, -1, dir.Y(), 1e-3, "dragging up past the pole must stop below the target")
	assert.Greater(t, mgl32.Vec2{dir.X(), dir.Z()}.Len(), float32(0))
	o.Rotate(0, 1000)
	dir = cam.Position.Normalize()
	assert.InDelta(t, 1, dir.Y(), 1e-3)
	assert.Greater(t, mgl32.Vec2{dir.X(), dir.Z()}.Len(), float32(0))
	// View matrix stays well defined at the clamp.
	m := cam.View()
	for _, v := range m {
		assert.False(t, math32.IsNaN(v))
	}
}

func TestOrbitZoom(t *testing.T) {
	cam := newCamera()
	o := NewOrbit(cam, 100)
	o.Zoom(1)
	assert.InDelta(t, 4.75, o.Distance(), 1e-5)
	o.Zoom(-1)
	assert.InDelta(t, 5, o.Distance(), 1e-5)

	o.MinDistance, o.MaxDistance = 2, 8
	o.Zoom(100)
	assert.InDelta(t, 2, o.Distance(), 1e-5)
	o.Scroll(-100)
	assert.InDelta(t, 8, o.Distance(), 1e-5)
}

func TestOrbitDrag(t *testing.T) {
	cam := newCamera()
	start := cam.Position
	o := NewOrbit(cam, 400)
	o.PointerMove(50, 50)
	assert.Equal(t, start, cam.Position, "moving without a drag must not rotate")

	o.PointerDown(10, 10)
	o.PointerMove(30, 10)
	assert.NotEqual(t, start, cam.Position)
	o.PointerUp()
	moved := cam.Position
	o.PointerMove(200, 200)
	assert.Equal(t, moved, cam.Position)

	other := newCamera()
	other.Target = mgl32.Vec3{1, 0, 0}
	o.SetCamera(other, 400)
	o.Zoom(1)
	assert.InDelta(t, float32(math32.Sqrt(26))*0.95, o.Distance(), 1e-4)
	assert.Equal(t, moved, cam.Position, "old camera must be left alone")
}
