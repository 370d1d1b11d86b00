// Package controls moves a camera in response to pointer input.
package controls

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/particles"
)

// Orbit rotates a camera about its target when dragging and moves it
// toward or away from the target when scrolling. The camera up vector is
// assumed to be +Y.
type Orbit struct {
	cam            *particles.Camera
	viewportHeight float32

	// ZoomScale is the distance factor applied per scroll step.
	ZoomScale   float32
	MinDistance float32
	MaxDistance float32
	// Polar angle limits measured from +Y in radians.
	MinPolar float32
	MaxPolar float32

	dragging bool
	last     mgl32.Vec2
}

const polarEps = 1e-4

// NewOrbit returns orbit controls for cam in a viewport of the given height
// in pixels.
func NewOrbit(cam *particles.Camera, viewportHeight int) *Orbit {
	return &Orbit{
		cam:            cam,
		viewportHeight: float32(viewportHeight),
		ZoomScale:      0.95,
		MinDistance:    0,
		MaxDistance:    math32.Inf(1),
		MinPolar:       polarEps,
		MaxPolar:       math32.Pi - polarEps,
	}
}

// SetCamera rebinds the controls to a camera, usually after the scene was
// rebuilt for a new viewport.
func (o *Orbit) SetCamera(cam *particles.Camera, viewportHeight int) {
	o.cam = cam
	o.viewportHeight = float32(viewportHeight)
	o.dragging = false
}

// Rotate orbits the camera by a pointer displacement in pixels. Dragging
// the full viewport height turns the camera a full revolution.
func (o *Orbit) Rotate(dx, dy float32) {
	if o.cam == nil || o.viewportHeight <= 0 {
		return
	}
	r, theta, phi := o.spherical()
	theta -= 2 * math32.Pi * dx / o.viewportHeight
	phi -= 2 * math32.Pi * dy / o.viewportHeight
	o.set(r, theta, phi)
}

// Zoom moves the camera toward the target by steps scroll steps. Negative
// steps move it away.
func (o *Orbit) Zoom(steps float32) {
	if o.cam == nil {
		return
	}
	r, theta, phi := o.spherical()
	o.set(r*math32.Pow(o.ZoomScale, steps), theta, phi)
}

// Distance returns the distance from the camera to its target.
func (o *Orbit) Distance() float32 {
	return o.cam.Position.Sub(o.cam.Target).Len()
}

// PointerDown starts a drag at window position x, y.
func (o *Orbit) PointerDown(x, y float32) {
	o.dragging = true
	o.last = mgl32.Vec2{x, y}
}

// PointerMove rotates the camera while dragging.
func (o *Orbit) PointerMove(x, y float32) {
	if !o.dragging {
		return
	}
	p := mgl32.Vec2{x, y}
	d := p.Sub(o.last)
	o.last = p
	o.Rotate(d.X(), d.Y())
}

func (o *Orbit) PointerUp() { o.dragging = false }

// Scroll zooms in for positive yoff, as reported by mouse wheels scrolled
// away from the user.
func (o *Orbit) Scroll(yoff float32) { o.Zoom(yoff) }

func (o *Orbit) spherical() (r, theta, phi float32) {
	off := o.cam.Position.Sub(o.cam.Target)
	r = off.Len()
	if r == 0 {
		return 0, 0, math32.Pi / 2
	}
	theta = math32.Atan2(off.X(), off.Z())
	phi = math32.Acos(mgl32.Clamp(off.Y()/r, -1, 1))
	return r, theta, phi
}

func (o *Orbit) set(r, theta, phi float32) {
	phi = mgl32.Clamp(phi, o.MinPolar, o.MaxPolar)
	r = mgl32.Clamp(r, o.MinDistance, o.MaxDistance)
	sinPhi, cosPhi := math32.Sincos(phi)
	sinTheta, cosTheta := math32.Sincos(theta)
	o.cam.Position = o.cam.Target.Add(mgl32.Vec3{
		r * sinPhi * sinTheta,
		r * cosPhi,
		r * sinPhi * cosTheta,
	})
}
