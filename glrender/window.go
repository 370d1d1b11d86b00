package glrender

import (
	"context"
	"fmt"

	"github.com/go-gl/gl/all-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/particles"
)

// Window is a glfw window with a current GL 3.3 core context. It schedules
// frames for a particles.Driver: every iteration of Run executes the
// requested frame callbacks and presents the result.
//
// Pointer coordinates passed to handlers are in framebuffer pixels.
type Window struct {
	particles.FrameQueue

	// OnResize receives the framebuffer size.
	OnResize        func(width, height int)
	OnPointerMove   func(x, y float64)
	OnPointerButton func(x, y float64, pressed bool)
	// OnScroll receives vertical scroll offsets, positive away from the user.
	OnScroll func(yoff float64)

	win       *glfw.Window
	terminate func()
	x, y      float64
}

// NewWindow creates the window and makes its context current. It must be
// called from the main thread, locked with runtime.LockOSThread.
func NewWindow(cfg particles.WindowConfig) (*Window, error) {
	win, terminate, err := glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   cfg.Title,
		Version: [2]int{3, 3},
		Width:   cfg.Width,
		Height:  cfg.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("glrender: creating window: %w", err)
	}
	if err := gl.Init(); err != nil {
		terminate()
		return nil, fmt.Errorf("glrender: loading GL: %w", err)
	}
	glfw.SwapInterval(1)
	w := &Window{win: win, terminate: terminate}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if w.OnResize != nil {
			w.OnResize(width, height)
		}
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.x, w.y = w.toFramebuffer(x, y)
		if w.OnPointerMove != nil {
			w.OnPointerMove(w.x, w.y)
		}
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft || action == glfw.Repeat || w.OnPointerButton == nil {
			return
		}
		w.OnPointerButton(w.x, w.y, action == glfw.Press)
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.OnScroll != nil {
			w.OnScroll(yoff)
		}
	})
	return w, nil
}

// toFramebuffer converts screen coordinates to framebuffer pixels, which
// differ on high density displays.
func (w *Window) toFramebuffer(x, y float64) (float64, float64) {
	ww, wh := w.win.GetSize()
	fw, fh := w.win.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return x, y
	}
	return x * float64(fw) / float64(ww), y * float64(fh) / float64(wh)
}

// FramebufferSize returns the size of the drawable area in pixels.
func (w *Window) FramebufferSize() (width, height int) {
	return w.win.GetFramebufferSize()
}

func (w *Window) SetTitle(title string) { w.win.SetTitle(title) }

// Run processes frames and events until the window is closed or ctx is
// done. When no frame is pending Run blocks on events.
func (w *Window) Run(ctx context.Context) error {
	for !w.win.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.RunFrame() > 0 {
			w.win.SwapBuffers()
			glfw.PollEvents()
		} else {
			glfw.WaitEventsTimeout(0.1)
		}
	}
	return nil
}

// Close destroys the window and terminates glfw.
func (w *Window) Close() {
	if w.terminate != nil {
		w.terminate()
		w.terminate = nil
	}
}
