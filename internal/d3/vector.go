package d3

import (
	"math"

	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// R3 helpers for reference computations done in float64 before
// results are narrowed to the float32 types uploaded to the GPU.

// EqualWithin reports whether all components of a and b differ by at most tol.
func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// Polar returns the point at distance radius from the origin with height
// y*radius on the latitude circle of normalized radius r, at azimuth phi.
// r is expected to be sqrt(1-y*y).
func Polar(radius, r, y, phi float64) r3.Vec {
	sin, cos := math.Sincos(phi)
	return r3.Vec{
		X: radius * r * cos,
		Y: radius * y,
		Z: radius * r * sin,
	}
}

// ToMS3 narrows a float64 vector to float32.
func ToMS3(v r3.Vec) ms3.Vec {
	return ms3.Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// FromMS3 widens a float32 vector to float64.
func FromMS3(v ms3.Vec) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}
