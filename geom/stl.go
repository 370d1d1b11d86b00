package geom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
)

// WriteBinarySTL writes model triangles to w in binary STL format.
// Facet normals are computed from the vertex winding.
func WriteBinarySTL(w io.Writer, model []ms3.Triangle) (int, error) {
	if len(model) == 0 {
		return 0, errors.New("empty triangle slice")
	}
	nt := int64(len(model)) // int64 so the comparison below is valid on 32bit machines.
	if nt > math.MaxUint32 {
		return 0, errors.New("amount of triangles in model exceeds STL design limits")
	}
	var buf [stlHeaderSize]byte
	copy(buf[:80], "particles companion mesh")
	binary.LittleEndian.PutUint32(buf[80:], uint32(nt))
	n, err := w.Write(buf[:])
	if err != nil {
		return n, err
	}
	for _, t := range model {
		putFacet(buf[:stlTriangleSize], t)
		ngot, err := w.Write(buf[:stlTriangleSize])
		n += ngot
		if err != nil {
			return n, err
		} else if ngot != stlTriangleSize {
			return n, io.ErrShortWrite
		}
	}
	return n, nil
}

// ReadBinarySTL reads the triangles of a binary STL stream.
// Stored normals are ignored; triangles with non-finite or coincident
// vertices are rejected.
func ReadBinarySTL(r io.Reader) ([]ms3.Triangle, error) {
	var header [stlHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading STL header: %w", err)
	}
	count := binary.LittleEndian.Uint32(header[80:])
	if count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var buf [stlTriangleSize]byte
	output := make([]ms3.Triangle, 0, count)
	for i := 0; i < int(count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return output, fmt.Errorf("%d/%d STL triangles read: %w", i, count, err)
		}
		t := getFacet(buf[:])
		if err := validateTriangle(t); err != nil {
			return output, fmt.Errorf("STL triangle %d: %w", i, err)
		}
		output = append(output, t)
	}
	return output, nil
}

func putFacet(b []byte, t ms3.Triangle) {
	_ = b[stlTriangleSize-1] // early bounds check
	putVec(b, ms3.Unit(t.Normal()))
	putVec(b[12:], t[0])
	putVec(b[24:], t[1])
	putVec(b[36:], t[2])
	binary.LittleEndian.PutUint16(b[48:], 0) // Zero out attributes.
}

func getFacet(b []byte) ms3.Triangle {
	_ = b[stlTriangleSize-1]
	return ms3.Triangle{getVec(b[12:]), getVec(b[24:]), getVec(b[36:])}
}

func putVec(b []byte, v ms3.Vec) {
	_ = b[11]
	binary.LittleEndian.PutUint32(b, math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.Z))
}

func getVec(b []byte) ms3.Vec {
	_ = b[11]
	return ms3.Vec{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b)),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

func badVec(v ms3.Vec) bool {
	return math32.IsNaN(v.X) || math32.IsInf(v.X, 0) ||
		math32.IsNaN(v.Y) || math32.IsInf(v.Y, 0) ||
		math32.IsNaN(v.Z) || math32.IsInf(v.Z, 0)
}

func validateTriangle(t ms3.Triangle) error {
	if badVec(t[0]) || badVec(t[1]) || badVec(t[2]) {
		return errors.New("inf/NaN vertex")
	}
	if t.IsDegenerate(0) {
		return errors.New("degenerate triangle")
	}
	return nil
}
