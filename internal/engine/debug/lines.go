package debug

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/MrShreyas/car/internal/engine/shader"
	"github.com/MrShreyas/car/pkg/math"
)

const lineVertexShader = `#version 410 core
layout (location = 0) in vec3 aPos;
uniform mat4 viewProj;
void main() {
    gl_Position = viewProj * vec4(aPos, 1.0);
}
`

const lineFragmentShader = `#version 410 core
uniform vec4 color;
out vec4 FragColor;
void main() {
    FragColor = color;
}
`

// LineRenderer draws world-space line lists in a single color.
type LineRenderer struct {
	program  *shader.Program
	vao, vbo uint32
}

// NewLineRenderer compiles the line program. gl.Init must have been called.
func NewLineRenderer() (*LineRenderer, error) {
	p, err := shader.NewProgram(lineVertexShader, lineFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("line program: %w", err)
	}
	r := &LineRenderer{program: p}
	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return r, nil
}

// Draw uploads vertices ([x, y, z] pairs) and draws them as lines.
func (r *LineRenderer) Draw(vertices []float32, viewProj math.Mat4, color math.Vec4) {
	if len(vertices) < 6 {
		return
	}
	r.program.Use()
	r.program.SetMat4("viewProj", viewProj)
	r.program.SetVec4("color", color)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)/3))
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Destroy releases the program and buffers.
func (r *LineRenderer) Destroy() {
	r.program.Destroy()
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		gl.DeleteBuffers(1, &r.vbo)
		r.vao, r.vbo = 0, 0
	}
}
