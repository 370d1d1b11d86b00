package geom

import (
	"bytes"
	"math"
	"testing"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/particles/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestFibonacciOnSphere(t *testing.T) {
	for _, n := range []int{1, 2, 3, 6, 100, 1001} {
		for _, radius := range []float32{0.5, 1, 1.7, 30} {
			pts := Fibonacci(n, radius)
			if len(pts) != n {
				t.Fatalf("n=%d: got %d points", n, len(pts))
			}
			// Float32 storage limits precision to a few ulps of radius.
			tol := 1e-6 * float64(radius)
			for i, p := range pts {
				got := r3.Norm(d3.FromMS3(p))
				if math.Abs(got-float64(radius)) > tol {
					t.Errorf("n=%d radius=%g: point %d at distance %g", n, radius, i, got)
				}
			}
		}
	}
}

func TestFibonacciSixPoints(t *testing.T) {
	pts := Fibonacci(6, 1)
	if len(pts) != 6 {
		t.Fatalf("got %d points, want 6", len(pts))
	}
	for i, p := range pts {
		mag := r3.Norm(d3.FromMS3(p))
		if math.Abs(mag-1) > 1e-6 {
			t.Errorf("point %d magnitude %g", i, mag)
		}
		if i > 0 && p.Y <= pts[i-1].Y {
			t.Errorf("y not increasing at %d: %g <= %g", i, p.Y, pts[i-1].Y)
		}
	}
	const wantFirstY, wantLastY = -5. / 6, 5. / 6
	if math.Abs(float64(pts[0].Y)-wantFirstY) > 1e-6 || math.Abs(float64(pts[5].Y)-wantLastY) > 1e-6 {
		t.Errorf("y range got [%g, %g], want [%g, %g]", pts[0].Y, pts[5].Y, wantFirstY, wantLastY)
	}
}

func TestFibonacciDeterministic(t *testing.T) {
	a := Fibonacci(5000, 1.7)
	b := Fibonacci(5000, 1.7)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs between runs: %v != %v", i, a[i], b[i])
		}
	}
	// Appending must give the same sequence as a fresh generation.
	c := AppendFibonacci([]ms3.Vec{{X: 9}}, 5000, 1.7)
	for i := range a {
		if a[i] != c[i+1] {
			t.Fatalf("appended point %d differs: %v != %v", i, c[i+1], a[i])
		}
	}
}

func TestFibonacciEmpty(t *testing.T) {
	if got := Fibonacci(0, 1); len(got) != 0 {
		t.Errorf("n=0 got %d points", len(got))
	}
	if got := Fibonacci(-3, 1); len(got) != 0 {
		t.Errorf("n<0 got %d points", len(got))
	}
	one := Fibonacci(1, 2)
	if one[0].Y != 0 {
		// A single point sits on the equator: y = 0*2 - 1 + 1.
		t.Errorf("single point y=%g, want 0", one[0].Y)
	}
}

func TestFibonacciBounds(t *testing.T) {
	const radius = 1.7
	pts := Fibonacci(20000, radius)
	bb := Bounds(pts)
	for _, v := range []float32{bb.Min.X, bb.Min.Y, bb.Min.Z} {
		if v < -radius || v > -0.99*radius {
			t.Errorf("min component %g not near -%g", v, radius)
		}
	}
	for _, v := range []float32{bb.Max.X, bb.Max.Y, bb.Max.Z} {
		if v > radius || v < 0.99*radius {
			t.Errorf("max component %g not near %g", v, radius)
		}
	}
	if Bounds(nil) != (ms3.Box{}) {
		t.Error("empty bounds not zero")
	}
}

func TestUVSphere(t *testing.T) {
	const (
		radius = 1.1
		w, h   = 18, 18
	)
	mesh, err := UVSphere(radius, w, h)
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Positions) != (w+1)*(h+1) {
		t.Errorf("got %d vertices, want %d", len(mesh.Positions), (w+1)*(h+1))
	}
	wantTris := 2*w*h - 2*w
	if len(mesh.Indices) != 3*wantTris {
		t.Errorf("got %d indices, want %d", len(mesh.Indices), 3*wantTris)
	}
	for i, p := range mesh.Positions {
		if d := r3.Norm(d3.FromMS3(p)); math.Abs(d-radius) > 1e-6 {
			t.Errorf("vertex %d at distance %g", i, d)
		}
	}
	if mesh.Positions[0].Y != radius {
		t.Errorf("first row not at north pole: %v", mesh.Positions[0])
	}
	tris, err := mesh.Triangles()
	if err != nil {
		t.Fatal(err)
	}
	for i, tri := range tris {
		// Outward winding: normal points away from the origin.
		centroid := ms3.Scale(1./3, ms3.Add(ms3.Add(tri[0], tri[1]), tri[2]))
		if ms3.Dot(tri.Normal(), centroid) <= 0 {
			t.Errorf("triangle %d wound inward", i)
		}
	}
}

func TestUVSphereInvalid(t *testing.T) {
	for _, tc := range []struct {
		r    float32
		w, h int
	}{
		{1, 2, 5},
		{1, 5, 1},
		{0, 5, 5},
		{-1, 5, 5},
	} {
		if _, err := UVSphere(tc.r, tc.w, tc.h); err == nil {
			t.Errorf("expected error for %+v", tc)
		}
	}
}

func TestTrianglesOutOfRange(t *testing.T) {
	_, err := Triangles([]ms3.Vec{{}, {X: 1}}, []uint32{0, 1, 2})
	if err == nil {
		t.Error("expected out of range error")
	}
	_, err = Triangles([]ms3.Vec{{}, {X: 1}}, []uint32{0, 1})
	if err == nil {
		t.Error("expected index count error")
	}
}

func TestSTLWriteReadback(t *testing.T) {
	mesh, err := UVSphere(1.1, 18, 18)
	if err != nil {
		t.Fatal(err)
	}
	input, err := mesh.Triangles()
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	n, err := WriteBinarySTL(&b, input)
	if err != nil {
		t.Fatal(err)
	}
	if n != stlHeaderSize+stlTriangleSize*len(input) || n != b.Len() {
		t.Fatalf("wrote %d bytes, buffer holds %d", n, b.Len())
	}
	output, err := ReadBinarySTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(output) != len(input) {
		t.Fatalf("wrote %d triangles, read back %d", len(input), len(output))
	}
	for i := range input {
		if output[i] != input[i] {
			t.Fatalf("triangle %d: got %+v, want %+v", i, output[i], input[i])
		}
	}
}

func TestSTLEmpty(t *testing.T) {
	var b bytes.Buffer
	if _, err := WriteBinarySTL(&b, nil); err == nil {
		t.Error("expected error writing empty model")
	}
	if _, err := ReadBinarySTL(bytes.NewReader(make([]byte, stlHeaderSize))); err == nil {
		t.Error("expected error reading zero triangle model")
	}
}

func TestFibonacciPointPrecision(t *testing.T) {
	const n, radius = 777, 1.7
	pts := Fibonacci(n, radius)
	for i, p := range pts {
		ref := FibonacciPoint(i, n, radius)
		if !d3.EqualWithin(ref, d3.FromMS3(p), 1e-6) {
			t.Fatalf("point %d: float32 %v strays from reference %v", i, p, ref)
		}
	}
}
