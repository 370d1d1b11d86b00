package geom

import (
	"math"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/particles/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// GoldenAngle is the azimuth increment between consecutive lattice points, π(3-√5).
const GoldenAngle = math.Pi * (3 - 2.2360679774997896964091736687312762354406183596115257242708972454)

// FibonacciPoint returns the i'th of n points of a Fibonacci lattice
// on the sphere of the given radius centered at the origin.
// Heights are evenly spaced in (-radius, radius) and increase with i.
func FibonacciPoint(i, n int, radius float64) r3.Vec {
	off := 2 / float64(n)
	y := float64(i)*off - 1 + off/2
	r := math.Sqrt(1 - y*y)
	phi := float64(i) * GoldenAngle
	return d3.Polar(radius, r, y, phi)
}

// Fibonacci returns n points approximately uniformly distributed over the
// surface of a sphere of the given radius. The result is fully deterministic.
func Fibonacci(n int, radius float32) []ms3.Vec {
	if n <= 0 {
		return []ms3.Vec{}
	}
	return AppendFibonacci(make([]ms3.Vec, 0, n), n, radius)
}

// AppendFibonacci appends the n points of [Fibonacci] to dst and returns the result.
func AppendFibonacci(dst []ms3.Vec, n int, radius float32) []ms3.Vec {
	for i := 0; i < n; i++ {
		dst = append(dst, d3.ToMS3(FibonacciPoint(i, n, float64(radius))))
	}
	return dst
}

// Bounds returns the axis aligned box containing all points.
// The zero Box is returned for an empty slice.
func Bounds(points []ms3.Vec) ms3.Box {
	if len(points) == 0 {
		return ms3.Box{}
	}
	bb := ms3.Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		bb.Min = ms3.MinElem(bb.Min, p)
		bb.Max = ms3.MaxElem(bb.Max, p)
	}
	return bb
}
