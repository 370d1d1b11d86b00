// Package softrender draws particle scenes on the CPU with fauxgl. It runs
// without a display and is used for snapshots and tests.
package softrender

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/fogleman/fauxgl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/nfnt/resize"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/particles"
	"github.com/soypat/particles/geom"
	"github.com/soypat/particles/glsl"
	"github.com/soypat/particles/internal/noise"
)

// Renderer is a particles.Renderer drawing into an in-memory image.
type Renderer struct {
	width, height int
	supersample   int
	ctx           *fauxgl.Context
	img           image.Image
}

var _ particles.Renderer = (*Renderer)(nil)

// NewRenderer returns a renderer producing width x height images. The scene
// is drawn supersample times larger and scaled down for antialiasing.
func NewRenderer(width, height, supersample int) (*Renderer, error) {
	r := &Renderer{}
	if err := r.Resize(width, height, supersample); err != nil {
		return nil, err
	}
	return r, nil
}

// Resize changes the output size. The previous image is discarded.
func (r *Renderer) Resize(width, height, supersample int) error {
	if width <= 0 || height <= 0 {
		return errors.New("softrender: image dimensions must be positive")
	} else if supersample < 1 {
		return errors.New("softrender: supersample must be at least 1")
	}
	r.width, r.height, r.supersample = width, height, supersample
	r.ctx = fauxgl.NewContext(width*supersample, height*supersample)
	r.img = nil
	return nil
}

// Size returns the output image dimensions.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// Render draws the scene. Opaque meshes are drawn before transparent ones.
func (r *Renderer) Render(scene *particles.Scene) error {
	ctx := r.ctx
	cc := scene.ClearColor
	ctx.ClearColorBufferWith(fauxgl.Color{R: float64(cc[0]), G: float64(cc[1]), B: float64(cc[2]), A: float64(cc[3])})
	ctx.ClearDepthBuffer()
	view := scene.Camera.View()
	proj := scene.Camera.Projection()
	for _, m := range scene.Meshes() {
		mv := view.Mul4(m.Model())
		var err error
		switch m.Primitive {
		case particles.Triangles:
			err = r.drawTriangles(m, proj.Mul4(mv))
		case particles.Points:
			err = r.drawPoints(m, mv, proj)
		default:
			err = fmt.Errorf("unknown primitive %d", m.Primitive)
		}
		if err != nil {
			return fmt.Errorf("softrender: drawing %s mesh: %w", m.Material.Program.Name, err)
		}
	}
	r.img = r.downsample()
	return nil
}

// Image returns the last rendered image or nil before the first render.
func (r *Renderer) Image() image.Image { return r.img }

// SavePNG writes the last rendered image to path.
func (r *Renderer) SavePNG(path string) error {
	if r.img == nil {
		return errors.New("softrender: nothing rendered")
	}
	return fauxgl.SavePNG(path, r.img)
}

func (r *Renderer) downsample() image.Image {
	if r.supersample == 1 {
		src := r.ctx.ColorBuffer
		dst := image.NewNRGBA(src.Rect)
		copy(dst.Pix, src.Pix)
		return dst
	}
	return resize.Resize(uint(r.width), uint(r.height), r.ctx.Image(), resize.Bilinear)
}

func (r *Renderer) drawTriangles(m *particles.Mesh, mvp mgl32.Mat4) error {
	if m.Material.Program.Name != "sphere" {
		return fmt.Errorf("no CPU shader for program %q", m.Material.Program.Name)
	}
	tris, err := triangles(m)
	if err != nil {
		return err
	}
	ctx := r.ctx
	ctx.Shader = &positionShader{mvp: toMatrix(mvp)}
	ctx.AlphaBlend = m.Material.Transparent
	ctx.Cull = fauxgl.CullBack
	if m.Material.Side == particles.DoubleSide {
		ctx.Cull = fauxgl.CullNone
	}
	ctx.DrawTriangles(tris)
	return nil
}

// drawPoints splats square points with additive blending. Points are tested
// against the depth of the opaque meshes but do not write depth.
func (r *Renderer) drawPoints(m *particles.Mesh, mv, proj mgl32.Mat4) error {
	prog := m.Material.Program
	if prog.Name != "points" {
		return fmt.Errorf("no CPU shader for program %q", prog.Name)
	}
	scale, ok := prog.Const("pointScale")
	if !ok {
		return errors.New("points program without pointScale")
	}
	t := m.Material.Uniforms[glsl.UniformTime]
	additive := m.Material.Blending == particles.AdditiveBlending
	ctx := r.ctx
	w, h := ctx.Width, ctx.Height
	for _, p := range m.Positions {
		q := noise.Displace(p, t)
		eye := mv.Mul4x1(mgl32.Vec4{q.X, q.Y, q.Z, 1})
		if eye.Z() >= 0 {
			continue // Behind the camera.
		}
		clip := proj.Mul4x1(eye)
		ndc := clip.Vec3().Mul(1 / clip.W())
		if ndc.Z() < -1 || ndc.Z() > 1 {
			continue
		}
		depth := float64(ndc.Z())*0.5 + 0.5
		size := math32.Max(1, scale/-eye.Z()*float32(r.supersample))
		sx := (ndc.X() + 1) / 2 * float32(w)
		sy := (1 - ndc.Y()) / 2 * float32(h)
		x0 := int(math32.Ceil(sx - size/2 - 0.5))
		x1 := int(math32.Floor(sx + size/2 - 0.5))
		y0 := int(math32.Ceil(sy - size/2 - 0.5))
		y1 := int(math32.Floor(sy + size/2 - 0.5))
		if x1 < 0 || y1 < 0 || x0 >= w || y0 >= h {
			continue
		}
		c := positionColor(toVector(p))
		for y := max(y0, 0); y <= min(y1, h-1); y++ {
			for x := max(x0, 0); x <= min(x1, w-1); x++ {
				i := y*w + x
				if depth > ctx.DepthBuffer[i] {
					continue
				}
				blendPixel(ctx.ColorBuffer, x, y, c, additive)
			}
		}
	}
	return nil
}

// positionColor is the color both programs give to a model space position.
func positionColor(p fauxgl.Vector) fauxgl.Color {
	return fauxgl.Color{R: p.X * p.X, G: p.Y * p.Y, B: p.Z * p.Z, A: 1}
}

func blendPixel(img *image.NRGBA, x, y int, c fauxgl.Color, additive bool) {
	src := c.NRGBA()
	if !additive {
		img.SetNRGBA(x, y, src)
		return
	}
	dst := img.NRGBAAt(x, y)
	a := uint16(src.A)
	img.SetNRGBA(x, y, color.NRGBA{
		R: addSat(dst.R, uint8(uint16(src.R)*a/255)),
		G: addSat(dst.G, uint8(uint16(src.G)*a/255)),
		B: addSat(dst.B, uint8(uint16(src.B)*a/255)),
		A: dst.A,
	})
}

func addSat(a, b uint8) uint8 {
	if s := uint16(a) + uint16(b); s < 255 {
		return uint8(s)
	}
	return 255
}

// positionShader is the CPU version of the sphere program.
type positionShader struct {
	mvp fauxgl.Matrix
}

func (s *positionShader) Vertex(v fauxgl.Vertex) fauxgl.Vertex {
	v.Output = s.mvp.MulPositionW(v.Position)
	return v
}

func (s *positionShader) Fragment(v fauxgl.Vertex) fauxgl.Color {
	return positionColor(v.Position)
}

func triangles(m *particles.Mesh) ([]*fauxgl.Triangle, error) {
	var model []ms3.Triangle
	if len(m.Indices) > 0 {
		var err error
		model, err = geom.Triangles(m.Positions, m.Indices)
		if err != nil {
			return nil, err
		}
	} else {
		if len(m.Positions)%3 != 0 {
			return nil, errors.New("vertex count not a multiple of 3")
		}
		model = make([]ms3.Triangle, 0, len(m.Positions)/3)
		for i := 0; i < len(m.Positions); i += 3 {
			model = append(model, ms3.Triangle{m.Positions[i], m.Positions[i+1], m.Positions[i+2]})
		}
	}
	tris := make([]*fauxgl.Triangle, len(model))
	for i, t := range model {
		tris[i] = fauxgl.NewTriangleForPoints(toVector(t[0]), toVector(t[1]), toVector(t[2]))
	}
	return tris, nil
}

func toVector(v ms3.Vec) fauxgl.Vector {
	return fauxgl.V(float64(v.X), float64(v.Y), float64(v.Z))
}

// toMatrix converts a column major mgl32 matrix to fauxgl's row major layout.
func toMatrix(m mgl32.Mat4) fauxgl.Matrix {
	at := func(row, col int) float64 { return float64(m.At(row, col)) }
	return fauxgl.Matrix{
		X00: at(0, 0), X01: at(0, 1), X02: at(0, 2), X03: at(0, 3),
		X10: at(1, 0), X11: at(1, 1), X12: at(1, 2), X13: at(1, 3),
		X20: at(2, 0), X21: at(2, 1), X22: at(2, 2), X23: at(2, 3),
		X30: at(3, 0), X31: at(3, 1), X32: at(3, 2), X33: at(3, 3),
	}
}
