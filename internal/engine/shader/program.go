package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/MrShreyas/car/pkg/math"
)

// Context sets uniforms on the active program by name.
// Names the program does not declare are ignored.
type Context interface {
	SetBool(name string, v bool)
	SetInt(name string, v int32)
	SetFloat(name string, v float32)
	SetVec3(name string, v math.Vec3)
	SetVec4(name string, v math.Vec4)
	SetMat4(name string, m math.Mat4)
}

// Program is a linked GL program with a uniform location cache.
type Program struct {
	ID        uint32
	locations map[string]int32
}

var _ Context = (*Program)(nil)

// NewProgram compiles and links a program from vertex and fragment source.
func NewProgram(vertexSrc, fragmentSrc string) (*Program, error) {
	id, err := CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("compiling program: %w", err)
	}
	return &Program{ID: id, locations: make(map[string]int32)}, nil
}

// Use makes the program current.
func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

// Location returns the cached location of name, -1 when absent.
func (p *Program) Location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	if p.locations == nil {
		p.locations = make(map[string]int32)
	}
	loc := GetUniform(p.ID, name)
	p.locations[name] = loc
	return loc
}

func (p *Program) SetBool(name string, v bool) {
	if loc := p.Location(name); loc >= 0 {
		var i int32
		if v {
			i = 1
		}
		gl.Uniform1i(loc, i)
	}
}

func (p *Program) SetInt(name string, v int32) {
	if loc := p.Location(name); loc >= 0 {
		gl.Uniform1i(loc, v)
	}
}

func (p *Program) SetFloat(name string, v float32) {
	if loc := p.Location(name); loc >= 0 {
		gl.Uniform1f(loc, v)
	}
}

func (p *Program) SetVec3(name string, v math.Vec3) {
	if loc := p.Location(name); loc >= 0 {
		gl.Uniform3f(loc, v.X, v.Y, v.Z)
	}
}

func (p *Program) SetVec4(name string, v math.Vec4) {
	if loc := p.Location(name); loc >= 0 {
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	}
}

func (p *Program) SetMat4(name string, m math.Mat4) {
	if loc := p.Location(name); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

// Destroy deletes the program.
func (p *Program) Destroy() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
	p.locations = nil
}
