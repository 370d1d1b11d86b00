package particles

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the tunables of the visualization. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	Points PointsConfig `toml:"points"`
	Sphere SphereConfig `toml:"sphere"`
	Camera CameraConfig `toml:"camera"`
	Spin   SpinConfig   `toml:"spin"`
	// Shapes holds the origin of every shape in the scene.
	Shapes     [][3]float32 `toml:"shapes"`
	ClearColor [4]float32   `toml:"clear_color"`
	Window     WindowConfig `toml:"window"`
}

// PointsConfig configures the point cloud of each shape.
type PointsConfig struct {
	Count  int     `toml:"count"`
	Radius float32 `toml:"radius"`
	// Size is the point sprite size in pixels at unit view depth.
	Size float32 `toml:"size"`
}

// SphereConfig configures the companion sphere mesh of each shape.
type SphereConfig struct {
	Radius         float32 `toml:"radius"`
	WidthSegments  int     `toml:"width_segments"`
	HeightSegments int     `toml:"height_segments"`
}

// CameraConfig configures the perspective camera. The camera starts at
// Distance on the +Z axis looking at the origin.
type CameraConfig struct {
	Fov      float32 `toml:"fov"` // vertical field of view in degrees.
	Near     float32 `toml:"near"`
	Far      float32 `toml:"far"`
	Distance float32 `toml:"distance"`
}

// SpinConfig holds the angular speeds in radians per second. Shapes spin
// with negative sign about each axis.
type SpinConfig struct {
	Y float32 `toml:"y"`
	Z float32 `toml:"z"`
}

// WindowConfig is used by windowed hosts.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// DefaultConfig returns one shape at the origin made of 300000 points on a
// 1.7 radius sphere around a 1.1 radius sphere mesh.
func DefaultConfig() Config {
	return Config{
		Points: PointsConfig{Count: 300000, Radius: 1.7, Size: 5},
		Sphere: SphereConfig{Radius: 1.1, WidthSegments: 18, HeightSegments: 18},
		Camera: CameraConfig{Fov: 70, Near: 0.01, Far: 1000, Distance: 5},
		Spin:   SpinConfig{Y: 0.2, Z: 0.1},
		Shapes: [][3]float32{{0, 0, 0}},

		ClearColor: [4]float32{0, 0, 0, 1},
		Window:     WindowConfig{Title: "particles", Width: 1280, Height: 720},
	}
}

// LoadConfig reads a TOML configuration file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	fp, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer fp.Close()
	cfg, err := ParseConfig(fp)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML over DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate reports all invalid fields of the configuration.
func (cfg Config) Validate() error {
	var errs []error
	check := func(bad bool, msg string) {
		if bad {
			errs = append(errs, errors.New(msg))
		}
	}
	// Comparisons are written so NaN fails them.
	check(cfg.Points.Count < 0, "points.count must not be negative")
	check(!(cfg.Points.Radius > 0), "points.radius must be positive")
	check(!(cfg.Points.Size > 0), "points.size must be positive")
	check(!(cfg.Sphere.Radius > 0), "sphere.radius must be positive")
	check(cfg.Sphere.WidthSegments < 3, "sphere.width_segments must be at least 3")
	check(cfg.Sphere.HeightSegments < 2, "sphere.height_segments must be at least 2")
	check(!(cfg.Camera.Fov > 0 && cfg.Camera.Fov < 180), "camera.fov must be in (0, 180)")
	check(!(cfg.Camera.Near > 0), "camera.near must be positive")
	check(!(cfg.Camera.Far > cfg.Camera.Near), "camera.far must be greater than camera.near")
	check(!(cfg.Camera.Distance > 0), "camera.distance must be positive")
	for _, v := range []float32{cfg.Points.Radius, cfg.Points.Size, cfg.Sphere.Radius, cfg.Camera.Far, cfg.Camera.Distance, cfg.Spin.Y, cfg.Spin.Z} {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			errs = append(errs, errors.New("sizes, distances and spin speeds must be finite"))
			break
		}
	}
	for i, o := range cfg.Shapes {
		for _, v := range o {
			if math32.IsNaN(v) || math32.IsInf(v, 0) {
				errs = append(errs, fmt.Errorf("shapes[%d] origin must be finite", i))
				break
			}
		}
	}
	check(cfg.Window.Width <= 0 || cfg.Window.Height <= 0, "window dimensions must be positive")
	return errors.Join(errs...)
}
