// Package particles animates spheres of points laid out on a Fibonacci
// lattice. A Driver owns the scene and advances it once per display refresh,
// leaving the drawing to a Renderer.
package particles

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/soypat/glgl/math/ms3"
)

// Renderer draws a scene to its target.
type Renderer interface {
	Render(scene *Scene) error
}

// FrameObserver is notified around every tick of a Driver.
type FrameObserver interface {
	BeginFrame()
	EndFrame()
}

// State is the state of the animation loop.
type State uint8

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// DriverConfig holds the collaborators of a Driver.
type DriverConfig struct {
	Renderer  Renderer
	Scheduler Scheduler
	// Clock defaults to a SystemClock.
	Clock Clock
	// Observer and Logger are optional.
	Observer FrameObserver
	Logger   *log.Logger
}

// Driver runs the animation loop. A Driver is not safe for concurrent use;
// all methods must be called from the thread that runs the scheduler.
type Driver struct {
	cfg      Config
	renderer Renderer
	sched    Scheduler
	clock    Clock
	observer FrameObserver
	log      *log.Logger

	state   State
	cancel  func()
	origin  time.Duration
	scene   *Scene
	width   int
	height  int
	pointer [2]float64
	frames  int
	err     error
}

// ErrViewport is returned when starting with a non-positive viewport size.
var ErrViewport = errors.New("particles: viewport dimensions must be positive")

// NewDriver returns a stopped driver.
func NewDriver(cfg Config, dc DriverConfig) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dc.Renderer == nil || dc.Scheduler == nil {
		return nil, errors.New("particles: driver needs a renderer and a scheduler")
	}
	if dc.Clock == nil {
		dc.Clock = NewSystemClock()
	}
	return &Driver{
		cfg:      cfg,
		renderer: dc.Renderer,
		sched:    dc.Scheduler,
		clock:    dc.Clock,
		observer: dc.Observer,
		log:      dc.Logger,
	}, nil
}

// Start builds a new scene for a width x height viewport, zeroes the clock
// and requests the first frame.
func (d *Driver) Start(width, height int) error {
	if d.state == Running {
		return errors.New("particles: driver already running")
	}
	if width <= 0 || height <= 0 {
		return ErrViewport
	}
	scene, err := d.buildScene(width, height)
	if err != nil {
		return err
	}
	d.scene = scene
	d.width, d.height = width, height
	d.origin = d.clock.Now()
	d.frames = 0
	d.err = nil
	d.state = Running
	d.cancel = d.sched.RequestFrame(d.tick)
	d.logf("started %dx%d with %d shapes", width, height, len(scene.Shapes))
	return nil
}

// Resize stops the loop and starts it again with a rebuilt scene for the new
// viewport size. On error the driver is left stopped.
func (d *Driver) Resize(width, height int) error {
	d.Stop()
	return d.Start(width, height)
}

// Stop cancels the pending frame. Stopping a stopped driver does nothing.
func (d *Driver) Stop() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.state = Stopped
}

func (d *Driver) tick() {
	d.cancel = nil
	if d.observer != nil {
		d.observer.BeginFrame()
	}
	t := d.Elapsed()
	for _, s := range d.scene.Shapes {
		s.Update(t)
	}
	err := d.renderer.Render(d.scene)
	if d.observer != nil {
		d.observer.EndFrame()
	}
	if err != nil {
		d.state = Stopped
		d.err = fmt.Errorf("frame %d: %w", d.frames, err)
		d.logf("render failed, stopping: %v", d.err)
		return
	}
	d.frames++
	d.cancel = d.sched.RequestFrame(d.tick)
}

func (d *Driver) buildScene(width, height int) (*Scene, error) {
	scene := &Scene{
		Camera:     NewCamera(d.cfg.Camera, float32(width)/float32(height)),
		ClearColor: d.cfg.ClearColor,
	}
	for _, o := range d.cfg.Shapes {
		_, err := NewShape(scene, d.cfg, ms3.Vec{X: o[0], Y: o[1], Z: o[2]})
		if err != nil {
			return nil, err
		}
	}
	return scene, nil
}

// Elapsed returns the seconds passed since the scene was last built.
func (d *Driver) Elapsed() float32 {
	return float32((d.clock.Now() - d.origin).Seconds())
}

// PointerMove records the pointer position given in window coordinates.
// The stored position is relative to the viewport center with y pointing up.
func (d *Driver) PointerMove(x, y float64) {
	d.pointer = [2]float64{x - float64(d.width)/2, -y + float64(d.height)/2}
}

// Pointer returns the last position recorded by PointerMove.
func (d *Driver) Pointer() (x, y float64) { return d.pointer[0], d.pointer[1] }

func (d *Driver) State() State { return d.state }

// Scene returns the current scene. It is nil before the first Start.
func (d *Driver) Scene() *Scene { return d.scene }

// Camera returns the camera of the current scene or nil.
func (d *Driver) Camera() *Camera {
	if d.scene == nil {
		return nil
	}
	return &d.scene.Camera
}

// Frames returns the amount of frames rendered since the last start.
func (d *Driver) Frames() int { return d.frames }

// Err returns the render error that stopped the driver, if any.
func (d *Driver) Err() error { return d.err }

// Viewport returns the viewport size of the current scene.
func (d *Driver) Viewport() (width, height int) { return d.width, d.height }

func (d *Driver) logf(format string, args ...any) {
	if d.log != nil {
		d.log.Printf("particles: "+format, args...)
	}
}
