package geom

import (
	"errors"
	"math"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/particles/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// IndexedMesh is a triangle mesh whose faces index into Positions,
// three indices per triangle with counter-clockwise winding seen from outside.
type IndexedMesh struct {
	Positions []ms3.Vec
	Indices   []uint32
}

// UVSphere returns a latitude/longitude tessellated sphere of the given radius.
// Vertex rows run from the north pole (+Y) to the south pole; each row holds
// widthSegments+1 vertices so the seam is duplicated. The degenerate triangle
// of every pole quad is omitted.
func UVSphere(radius float32, widthSegments, heightSegments int) (IndexedMesh, error) {
	if widthSegments < 3 {
		return IndexedMesh{}, errors.New("sphere needs at least 3 width segments")
	} else if heightSegments < 2 {
		return IndexedMesh{}, errors.New("sphere needs at least 2 height segments")
	} else if radius <= 0 {
		return IndexedMesh{}, errors.New("sphere radius must be positive")
	}
	rowLen := widthSegments + 1
	nv := rowLen * (heightSegments + 1)
	mesh := IndexedMesh{
		Positions: make([]ms3.Vec, 0, nv),
		Indices:   make([]uint32, 0, 6*widthSegments*(heightSegments-1)),
	}
	for iy := 0; iy <= heightSegments; iy++ {
		theta := math.Pi * float64(iy) / float64(heightSegments)
		sinTheta, cosTheta := math.Sincos(theta)
		for ix := 0; ix <= widthSegments; ix++ {
			phi := 2 * math.Pi * float64(ix) / float64(widthSegments)
			sinPhi, cosPhi := math.Sincos(phi)
			v := r3.Scale(float64(radius), r3.Vec{
				X: -cosPhi * sinTheta,
				Y: cosTheta,
				Z: sinPhi * sinTheta,
			})
			mesh.Positions = append(mesh.Positions, d3.ToMS3(v))
		}
	}
	idx := func(ix, iy int) uint32 { return uint32(iy*rowLen + ix) }
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := idx(ix+1, iy)
			b := idx(ix, iy)
			c := idx(ix, iy+1)
			d := idx(ix+1, iy+1)
			if iy != 0 {
				mesh.Indices = append(mesh.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				mesh.Indices = append(mesh.Indices, b, c, d)
			}
		}
	}
	return mesh, nil
}

// Triangles expands the mesh faces into triangles.
func (m IndexedMesh) Triangles() ([]ms3.Triangle, error) {
	return Triangles(m.Positions, m.Indices)
}

// Triangles expands an indexed triangle list into triangles.
func Triangles(positions []ms3.Vec, indices []uint32) ([]ms3.Triangle, error) {
	if len(indices)%3 != 0 {
		return nil, errors.New("index count not a multiple of 3")
	}
	tris := make([]ms3.Triangle, 0, len(indices)/3)
	for i := 0; i < len(indices); i += 3 {
		var t ms3.Triangle
		for j := range t {
			k := indices[i+j]
			if int(k) >= len(positions) {
				return nil, errors.New("triangle index out of range")
			}
			t[j] = positions[k]
		}
		tris = append(tris, t)
	}
	return tris, nil
}
