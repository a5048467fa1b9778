package gputest

import "github.com/MrShreyas/car/pkg/math"

// Uniform is one recorded uniform write.
type Uniform struct {
	Name  string
	Value any
}

// Uniforms records uniform writes. When Declared is non-nil, writes to
// names it does not contain are dropped, like a program lacking them.
type Uniforms struct {
	Declared map[string]bool
	Writes   []Uniform
}

// NewUniforms returns a recorder that accepts every name.
func NewUniforms() *Uniforms {
	return &Uniforms{}
}

// NewUniformsFor returns a recorder that only accepts the given names.
func NewUniformsFor(names ...string) *Uniforms {
	u := &Uniforms{Declared: make(map[string]bool, len(names))}
	for _, n := range names {
		u.Declared[n] = true
	}
	return u
}

func (u *Uniforms) record(name string, v any) {
	if u.Declared != nil && !u.Declared[name] {
		return
	}
	u.Writes = append(u.Writes, Uniform{Name: name, Value: v})
}

func (u *Uniforms) SetBool(name string, v bool)      { u.record(name, v) }
func (u *Uniforms) SetInt(name string, v int32)      { u.record(name, v) }
func (u *Uniforms) SetFloat(name string, v float32)  { u.record(name, v) }
func (u *Uniforms) SetVec3(name string, v math.Vec3) { u.record(name, v) }
func (u *Uniforms) SetVec4(name string, v math.Vec4) { u.record(name, v) }
func (u *Uniforms) SetMat4(name string, m math.Mat4) { u.record(name, m) }

// Last returns the most recent value written to name.
func (u *Uniforms) Last(name string) (any, bool) {
	for i := len(u.Writes) - 1; i >= 0; i-- {
		if u.Writes[i].Name == name {
			return u.Writes[i].Value, true
		}
	}
	return nil, false
}

// Bool returns the last bool written to name.
func (u *Uniforms) Bool(name string) (bool, bool) {
	v, ok := u.Last(name)
	b, isBool := v.(bool)
	return b, ok && isBool
}

// Int returns the last int written to name.
func (u *Uniforms) Int(name string) (int32, bool) {
	v, ok := u.Last(name)
	i, isInt := v.(int32)
	return i, ok && isInt
}

// Float returns the last float written to name.
func (u *Uniforms) Float(name string) (float32, bool) {
	v, ok := u.Last(name)
	f, isFloat := v.(float32)
	return f, ok && isFloat
}

// Vec4 returns the last vec4 written to name.
func (u *Uniforms) Vec4(name string) (math.Vec4, bool) {
	v, ok := u.Last(name)
	f, isVec := v.(math.Vec4)
	return f, ok && isVec
}

// Has reports whether name was written at least once.
func (u *Uniforms) Has(name string) bool {
	_, ok := u.Last(name)
	return ok
}

// Reset clears recorded writes.
func (u *Uniforms) Reset() {
	u.Writes = nil
}
