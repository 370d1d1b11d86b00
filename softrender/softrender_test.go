package softrender

import (
	"bytes"
	"image"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/particles"
	"github.com/soypat/particles/glsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/cmpimg"
)

const (
	width, height = 160, 120
	supersample   = 2
)

func testConfig() particles.Config {
	cfg := particles.DefaultConfig()
	cfg.Points.Count = 4000
	return cfg
}

// snapshot renders the default scene after elapsed virtual time.
func snapshot(t *testing.T, elapsed time.Duration) []byte {
	t.Helper()
	r, err := NewRenderer(width, height, supersample)
	require.NoError(t, err)
	var (
		q     particles.FrameQueue
		clock particles.ManualClock
	)
	d, err := particles.NewDriver(testConfig(), particles.DriverConfig{Renderer: r, Scheduler: &q, Clock: &clock})
	require.NoError(t, err)
	require.NoError(t, d.Start(width, height))
	clock.Advance(elapsed)
	require.Equal(t, 1, q.RunFrame())
	require.NoError(t, d.Err())
	return encodePNG(t, r.Image())
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	require.NotNil(t, img)
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, img))
	return b.Bytes()
}

func TestRenderDeterministic(t *testing.T) {
	a := snapshot(t, 1500*time.Millisecond)
	b := snapshot(t, 1500*time.Millisecond)
	equal, err := cmpimg.EqualApprox("png", a, b, 0.001)
	require.NoError(t, err)
	assert.True(t, equal, "identical virtual time must give identical images")

	c := snapshot(t, 4*time.Second)
	equal, err = cmpimg.Equal("png", a, c)
	require.NoError(t, err)
	assert.False(t, equal, "scene did not change over time")
}

func TestRenderSphereColor(t *testing.T) {
	r, err := NewRenderer(width, height, 1)
	require.NoError(t, err)
	cfg := testConfig()
	cfg.Points.Count = 0
	scene := &particles.Scene{Camera: particles.NewCamera(cfg.Camera, float32(width)/height), ClearColor: cfg.ClearColor}
	_, err = particles.NewShape(scene, cfg, ms3.Vec{})
	require.NoError(t, err)
	require.NoError(t, r.Render(scene))

	img := r.Image().(*image.NRGBA)
	// The front of the sphere faces +Z and is shaded by z squared.
	center := img.NRGBAAt(width/2, height/2)
	assert.Greater(t, center.B, uint8(200))
	assert.Less(t, center.R, uint8(40))
	corner := img.NRGBAAt(0, 0)
	assert.Equal(t, uint8(0), corner.R+corner.G+corner.B, "background must stay clear")
}

func TestRenderUnknownProgram(t *testing.T) {
	r, err := NewRenderer(8, 8, 1)
	require.NoError(t, err)
	scene := &particles.Scene{Camera: particles.NewCamera(particles.DefaultConfig().Camera, 1)}
	shape, err := particles.NewShape(scene, testConfig(), ms3.Vec{})
	require.NoError(t, err)
	shape.Sphere.Material.Program = glsl.NewProgram("custom", "")
	assert.Error(t, r.Render(scene))
}

func TestSavePNG(t *testing.T) {
	r, err := NewRenderer(16, 16, 1)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "frame.png")
	assert.Error(t, r.SavePNG(path), "nothing rendered yet")

	scene := &particles.Scene{Camera: particles.NewCamera(particles.DefaultConfig().Camera, 1)}
	require.NoError(t, r.Render(scene))
	require.NoError(t, r.SavePNG(path))
}

func TestNewRendererErrors(t *testing.T) {
	_, err := NewRenderer(0, 10, 1)
	assert.Error(t, err)
	_, err = NewRenderer(10, 10, 0)
	assert.Error(t, err)
}
