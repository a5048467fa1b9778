// Package shader provides OpenGL shader compilation utilities and the
// uniform-setting surface meshes and environments draw through.
package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Build errors. The driver's info log is appended to the wrapped error.
var (
	ErrCompile = errors.New("shader compile failed")
	ErrLink    = errors.New("program link failed")
)

// CompileProgram compiles a vertex and fragment stage and links them.
// The stage objects are deleted once linked.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vs, err := compileStage(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	defer gl.DeleteShader(vs)

	fs, err := compileStage(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment: %w", err)
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	gl.DetachShader(program, vs)
	gl.DetachShader(program, fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &n)
		buf := make([]byte, n+1)
		gl.GetProgramInfoLog(program, n, nil, &buf[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", ErrLink, infoLog(buf))
	}
	return program, nil
}

func compileStage(source string, stage uint32) (uint32, error) {
	s := gl.CreateShader(stage)
	csrc, free := gl.Strs(source + "\x00")
	gl.ShaderSource(s, 1, csrc, nil)
	free()
	gl.CompileShader(s)

	var status int32
	gl.GetShaderiv(s, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(s, gl.INFO_LOG_LENGTH, &n)
		buf := make([]byte, n+1)
		gl.GetShaderInfoLog(s, n, nil, &buf[0])
		gl.DeleteShader(s)
		return 0, fmt.Errorf("%w: %s", ErrCompile, infoLog(buf))
	}
	return s, nil
}

// infoLog trims the NUL terminator and trailing newlines drivers append.
func infoLog(buf []byte) string {
	return strings.TrimRight(string(buf), "\x00\r\n ")
}

// GetUniform returns the location of name, or -1 when the program does not
// declare it or the compiler removed it as unused.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
