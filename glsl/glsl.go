// Package glsl holds the GLSL programs of the particle sphere and generates the
// per-stage preludes that declare the built-in matrices, the position attribute
// and the externally set uniforms each program relies on.
//
// Program sources are in combined form: a "#shader vertex" line starts the vertex
// stage and a "#shader fragment" line starts the fragment stage.
package glsl

import (
	"bytes"
	_ "embed"
	"errors"
	"strconv"
)

// Names of the uniforms and attributes every program can rely on.
const (
	UniformTime       = "uTime"
	UniformModelView  = "modelViewMatrix"
	UniformProjection = "projectionMatrix"
	AttribPosition    = "position"
	// FragOutput is the name of the fragment stage color output.
	FragOutput = "fragColor"
	// PositionLocation is the attribute location of AttribPosition.
	PositionLocation = 0
)

const version = "#version 330 core\n"

var (
	//go:embed shaders/points.glsl
	pointsSource string
	//go:embed shaders/sphere.glsl
	sphereSource string
)

// Const is a float constant declared in every stage of a program.
type Const struct {
	Name  string
	Value float32
}

// Program is a vertex/fragment shader pair. Programs are plain values
// and are identified by Name when compiled by a renderer.
type Program struct {
	Name string
	// Uniforms lists the float uniforms set by the application.
	Uniforms []string
	Consts   []Const
	body     string
}

// NewProgram returns a program from combined source without preludes.
func NewProgram(name, combined string, uniforms ...string) Program {
	return Program{Name: name, Uniforms: uniforms, body: combined}
}

// PointsProgram returns the point cloud program. Point sprites are pointScale
// pixels wide at unit view depth and shrink with distance.
func PointsProgram(pointScale float32) Program {
	p := NewProgram("points", pointsSource, UniformTime)
	p.Consts = []Const{{Name: "pointScale", Value: pointScale}}
	return p
}

// SphereProgram returns the companion sphere program.
func SphereProgram() Program {
	return NewProgram("sphere", sphereSource, UniformTime)
}

// Const returns the value of the named constant.
func (p Program) Const(name string) (float32, bool) {
	for _, c := range p.Consts {
		if c.Name == name {
			return c.Value, true
		}
	}
	return 0, false
}

// Source returns the complete combined source with stage preludes inserted.
func (p Program) Source() (string, error) {
	b, err := p.AppendSource(make([]byte, 0, len(p.body)+512))
	return string(b), err
}

// AppendSource appends the complete combined source of the program to dst.
// A prelude is inserted after each stage marker line.
func (p Program) AppendSource(dst []byte) ([]byte, error) {
	var vertex, fragment bool
	rest := []byte(p.body)
	for len(rest) > 0 {
		line := rest
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line = rest[:i+1]
		}
		rest = rest[len(line):]
		dst = append(dst, line...)
		if line[len(line)-1] != '\n' {
			dst = append(dst, '\n')
		}
		stage, ok := stageOf(line)
		if !ok {
			continue
		}
		switch stage {
		case "vertex":
			if vertex {
				return dst, errors.New("glsl: duplicate vertex stage in " + p.Name)
			}
			vertex = true
			dst = p.appendPrelude(dst, true)
		case "fragment":
			if fragment {
				return dst, errors.New("glsl: duplicate fragment stage in " + p.Name)
			}
			fragment = true
			dst = p.appendPrelude(dst, false)
		default:
			return dst, errors.New("glsl: unsupported stage " + strconv.Quote(stage) + " in " + p.Name)
		}
	}
	if !vertex || !fragment {
		return dst, errors.New("glsl: program " + p.Name + " needs vertex and fragment stages")
	}
	return dst, nil
}

func (p Program) appendPrelude(b []byte, vertexStage bool) []byte {
	b = append(b, version...)
	if vertexStage {
		b = AppendUniformDecl(b, "mat4", UniformModelView)
		b = AppendUniformDecl(b, "mat4", UniformProjection)
	}
	for _, u := range p.Uniforms {
		b = AppendUniformDecl(b, "float", u)
	}
	for _, c := range p.Consts {
		b = AppendConstDecl(b, c.Name, c.Value)
	}
	if vertexStage {
		b = append(b, "layout(location = "...)
		b = strconv.AppendInt(b, PositionLocation, 10)
		b = append(b, ") in vec3 "...)
		b = append(b, AttribPosition...)
		b = append(b, ";\n"...)
	} else {
		b = append(b, "out vec4 "...)
		b = append(b, FragOutput...)
		b = append(b, ";\n"...)
	}
	return b
}

func stageOf(line []byte) (string, bool) {
	const marker = "#shader "
	line = bytes.TrimSpace(line)
	if !bytes.HasPrefix(line, []byte(marker)) {
		return "", false
	}
	return string(bytes.TrimSpace(line[len(marker):])), true
}

// AppendUniformDecl appends a uniform declaration of the given GLSL type.
func AppendUniformDecl(b []byte, typ, name string) []byte {
	b = append(b, "uniform "...)
	b = append(b, typ...)
	b = append(b, ' ')
	b = append(b, name...)
	return append(b, ';', '\n')
}

// AppendConstDecl appends a float constant declaration.
func AppendConstDecl(b []byte, name string, v float32) []byte {
	b = append(b, "const float "...)
	b = append(b, name...)
	b = append(b, '=')
	b = AppendFloat(b, v)
	return append(b, ';', '\n')
}

// AppendFloat appends v as a GLSL float literal using the shortest
// representation that round trips to v. Integral values get a trailing dot.
func AppendFloat(b []byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'g', -1, 32)
	if bytes.IndexAny(b[start:], ".e") < 0 {
		b = append(b, '.')
	}
	return b
}
