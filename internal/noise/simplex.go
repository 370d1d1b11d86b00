// Package noise is a float32 port of the simplex noise and point
// displacement used by the point cloud vertex shader, so CPU rendering
// matches the GPU.
package noise

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

const (
	skew   = 1. / 3
	unskew = 1. / 6
)

// Simplex3 returns 3D simplex noise at v. Results lie in about [-1, 1].
// Simplex3 follows Ian McEwan's GLSL formulation (Ashima Arts, MIT license).
func Simplex3(v ms3.Vec) float32 {
	s := (v.X + v.Y + v.Z) * skew
	i := [3]float32{math32.Floor(v.X + s), math32.Floor(v.Y + s), math32.Floor(v.Z + s)}
	t := (i[0] + i[1] + i[2]) * unskew
	x0 := [3]float32{v.X - i[0] + t, v.Y - i[1] + t, v.Z - i[2] + t}

	g := [3]float32{step(x0[1], x0[0]), step(x0[2], x0[1]), step(x0[0], x0[2])}
	l := [3]float32{1 - g[0], 1 - g[1], 1 - g[2]}
	i1 := [3]float32{math32.Min(g[0], l[2]), math32.Min(g[1], l[0]), math32.Min(g[2], l[1])}
	i2 := [3]float32{math32.Max(g[0], l[2]), math32.Max(g[1], l[0]), math32.Max(g[2], l[1])}

	var corners [4][3]float32
	for k := 0; k < 3; k++ {
		corners[0][k] = x0[k]
		corners[1][k] = x0[k] - i1[k] + unskew
		corners[2][k] = x0[k] - i2[k] + 2*unskew
		corners[3][k] = x0[k] - 1 + 3*unskew
	}

	for k := range i {
		i[k] = mod289(i[k])
	}
	offsets := [4][3]float32{{}, i1, i2, {1, 1, 1}}

	const (
		nsx = 2. / 7
		nsy = 0.5/7 - 1
		nsz = 1. / 7
	)
	var sum float32
	for c := 0; c < 4; c++ {
		o := offsets[c]
		p := permute(permute(permute(i[2]+o[2])+i[1]+o[1]) + i[0] + o[0])
		j := p - 49*math32.Floor(p*nsz*nsz)
		xi := math32.Floor(j * nsz)
		yi := math32.Floor(j - 7*xi)
		x := xi*nsx + nsy
		y := yi*nsx + nsy
		h := 1 - math32.Abs(x) - math32.Abs(y)
		sh := -step(h, 0)
		grad := [3]float32{
			x + (math32.Floor(x)*2+1)*sh,
			y + (math32.Floor(y)*2+1)*sh,
			h,
		}
		norm := taylorInvSqrt(dot(grad, grad))
		corner := corners[c]
		m := math32.Max(0.6-dot(corner, corner), 0)
		m *= m
		sum += m * m * norm * dot(grad, corner)
	}
	return 42 * sum
}

// Displace returns the position of a point cloud vertex p at time t seconds.
func Displace(p ms3.Vec, t float32) ms3.Vec {
	n := Simplex3(p)
	q := p
	q.X += math32.Cos(p.X+t) * n * 0.5
	q.Y += math32.Abs(math32.Tan(p.Y*0.8+t/2)) * 0.1
	q.Z += math32.Sin(p.Z+t) * n * 0.5
	return q
}

func dot(a, b [3]float32) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

// step is the GLSL step function.
func step(edge, x float32) float32 {
	if x < edge {
		return 0
	}
	return 1
}

// mod289 is GLSL mod(x, 289), which floors instead of truncating.
func mod289(x float32) float32 { return x - 289*math32.Floor(x/289) }

func permute(x float32) float32 { return mod289((x*34 + 1) * x) }

func taylorInvSqrt(r float32) float32 { return 1.79284291400159 - 0.85373472095314*r }
