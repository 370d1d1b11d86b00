// Package glrender draws particle scenes with OpenGL 3.3 core and hosts them
// in a glfw window. All functions must be called from the thread that owns
// the GL context.
package glrender

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/all-core/gl"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/particles"
	"github.com/soypat/particles/glsl"
)

// Renderer is a particles.Renderer backed by the current GL context.
// Programs are compiled on first use and mesh buffers are uploaded once per
// mesh. Buffers of a scene are released when a different scene is rendered.
type Renderer struct {
	programs map[string]*program // Keyed by complete program source.
	meshes   map[*particles.Mesh]*gpuMesh
	scene    *particles.Scene
}

var _ particles.Renderer = (*Renderer)(nil)

type program struct {
	prog     glgl.Program
	id       uint32
	uniforms map[string]int32
}

type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
	mode          uint32
}

func NewRenderer() *Renderer {
	return &Renderer{
		programs: make(map[string]*program),
		meshes:   make(map[*particles.Mesh]*gpuMesh),
	}
}

// SetViewport sets the GL viewport to the framebuffer size.
func (r *Renderer) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (r *Renderer) Render(scene *particles.Scene) error {
	if scene != r.scene {
		r.freeMeshes()
		r.scene = scene
	}
	cc := scene.ClearColor
	gl.ClearColor(cc[0], cc[1], cc[2], cc[3])
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	view := scene.Camera.View()
	proj := scene.Camera.Projection()
	for _, m := range scene.Meshes() {
		prog, err := r.program(m.Material.Program)
		if err != nil {
			return err
		}
		gm, err := r.mesh(m)
		if err != nil {
			return err
		}
		if gm.count == 0 {
			continue
		}
		prog.prog.Bind()
		mv := view.Mul4(m.Model())
		gl.UniformMatrix4fv(prog.uniforms[glsl.UniformModelView], 1, false, &mv[0])
		gl.UniformMatrix4fv(prog.uniforms[glsl.UniformProjection], 1, false, &proj[0])
		for name, v := range m.Material.Uniforms {
			loc, ok := prog.uniforms[name]
			if !ok {
				return fmt.Errorf("glrender: program %s has no uniform %q", m.Material.Program.Name, name)
			}
			gl.Uniform1f(loc, v)
		}
		setMaterialState(m.Material)
		gl.BindVertexArray(gm.vao)
		if gm.ebo != 0 {
			gl.DrawElements(gm.mode, gm.count, gl.UNSIGNED_INT, nil)
		} else {
			gl.DrawArrays(gm.mode, 0, gm.count)
		}
	}
	gl.BindVertexArray(0)
	return glError("render")
}

func setMaterialState(mat particles.Material) {
	switch {
	case mat.Blending == particles.AdditiveBlending:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	case mat.Transparent:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.Disable(gl.BLEND)
	}
	if mat.Side == particles.DoubleSide {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
		gl.FrontFace(gl.CCW)
	}
}

func (r *Renderer) program(p glsl.Program) (*program, error) {
	src, err := p.Source()
	if err != nil {
		return nil, err
	}
	if prog, ok := r.programs[src]; ok {
		return prog, nil
	}
	combined, err := glgl.ParseCombined(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("glrender: parsing program %s: %w", p.Name, err)
	}
	glprog, err := glgl.CompileProgram(combined)
	if err != nil {
		return nil, fmt.Errorf("glrender: compiling program %s: %w", p.Name, err)
	}
	glprog.Bind()
	var id int32
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &id)
	prog := &program{prog: glprog, id: uint32(id), uniforms: make(map[string]int32)}
	names := append([]string{glsl.UniformModelView, glsl.UniformProjection}, p.Uniforms...)
	for _, name := range names {
		// Unused uniforms are optimized out and report -1, which GL ignores.
		prog.uniforms[name] = gl.GetUniformLocation(prog.id, gl.Str(name+"\x00"))
	}
	r.programs[src] = prog
	return prog, nil
}

func (r *Renderer) mesh(m *particles.Mesh) (*gpuMesh, error) {
	if gm, ok := r.meshes[m]; ok {
		return gm, nil
	}
	gm := &gpuMesh{mode: gl.TRIANGLES, count: int32(m.Count())}
	if m.Primitive == particles.Points {
		gm.mode = gl.POINTS
	}
	r.meshes[m] = gm
	if len(m.Positions) == 0 {
		gm.count = 0
		return gm, nil
	}
	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)
	gl.GenBuffers(1, &gm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	const vecSize = 3 * 4
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Positions)*vecSize, gl.Ptr(&m.Positions[0]), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(glsl.PositionLocation)
	gl.VertexAttribPointer(glsl.PositionLocation, 3, gl.FLOAT, false, vecSize, nil)
	if m.Primitive == particles.Triangles && len(m.Indices) > 0 {
		gl.GenBuffers(1, &gm.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(&m.Indices[0]), gl.STATIC_DRAW)
	}
	gl.BindVertexArray(0)
	return gm, glError("uploading mesh")
}

func (r *Renderer) freeMeshes() {
	for m, gm := range r.meshes {
		if gm.ebo != 0 {
			gl.DeleteBuffers(1, &gm.ebo)
		}
		if gm.vbo != 0 {
			gl.DeleteBuffers(1, &gm.vbo)
		}
		if gm.vao != 0 {
			gl.DeleteVertexArrays(1, &gm.vao)
		}
		delete(r.meshes, m)
	}
}

// Close releases all GL resources held by the renderer.
func (r *Renderer) Close() error {
	r.freeMeshes()
	for src, prog := range r.programs {
		prog.prog.Delete()
		delete(r.programs, src)
	}
	r.scene = nil
	return glError("close")
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("glrender: %s: GL error 0x%x", op, code)
	}
	return nil
}
