// Package environment precomputes image-based lighting from an HDR
// panorama or a procedural sky: an environment cubemap, its diffuse
// irradiance, a roughness-prefiltered specular chain and the split-sum
// BRDF lookup table.
package environment

import (
	"go.uber.org/zap"

	"github.com/MrShreyas/car/internal/engine/shader"
	"github.com/MrShreyas/car/internal/logger"
)

// Resources are the texture handles of a ready environment.
type Resources struct {
	EnvCube    uint32
	Irradiance uint32
	Prefilter  uint32
	BRDFLUT    uint32
}

// Environment owns the lighting textures produced by a Pipeline run.
type Environment struct {
	Source     string // HDR path, empty for the procedural sky
	Procedural bool
	EnvSize    int
	Mips       int

	res    Resources
	units  Units
	binder Binder
	ready  bool
}

// Ready reports whether every stage completed.
func (e *Environment) Ready() bool {
	return e != nil && e.ready
}

// Resources returns the texture handles, or false before Ready.
func (e *Environment) Resources() (Resources, bool) {
	if !e.Ready() {
		return Resources{}, false
	}
	return e.res, true
}

// EnvCube returns the environment cubemap for the skybox, 0 before Ready.
func (e *Environment) EnvCube() uint32 {
	if !e.Ready() {
		return 0
	}
	return e.res.EnvCube
}

// Units returns the texture units Bind uses.
func (e *Environment) Units() Units {
	return e.units
}

// Bind binds irradiance, prefiltered specular and the BRDF table to their
// units and points the samplers at them. A not-ready environment binds
// nothing.
func (e *Environment) Bind(sc shader.Context) {
	if !e.Ready() {
		return
	}
	e.binder.BindCubemap(e.units.Irradiance, e.res.Irradiance)
	e.binder.BindCubemap(e.units.Prefilter, e.res.Prefilter)
	e.binder.BindTexture2D(e.units.BRDF, e.res.BRDFLUT)

	sc.SetInt("irradianceMap", int32(e.units.Irradiance))
	sc.SetInt("prefilterMap", int32(e.units.Prefilter))
	sc.SetInt("brdfLUT", int32(e.units.BRDF))
	sc.SetFloat("prefilterMaxMip", float32(e.Mips-1))
}

// Destroy releases every texture, including those of a partial run.
func (e *Environment) Destroy() {
	if e == nil || e.binder == nil {
		return
	}
	for _, id := range []*uint32{&e.res.EnvCube, &e.res.Irradiance, &e.res.Prefilter, &e.res.BRDFLUT} {
		if *id != 0 {
			e.binder.DeleteTexture(*id)
			*id = 0
		}
	}
	e.ready = false
}

// Holder keeps the environment currently used for drawing. A failed or
// partial replacement leaves the previous one in place.
type Holder struct {
	current *Environment
	log     logger.Sink
}

// NewHolder returns an empty holder.
func NewHolder(sink logger.Sink) *Holder {
	return &Holder{log: logger.OrNop(sink)}
}

// Current returns the installed environment, nil when none is.
func (h *Holder) Current() *Environment {
	return h.current
}

// Swap installs next when it is ready and destroys the one it replaces.
// A not-ready next is destroyed instead.
func (h *Holder) Swap(next *Environment) bool {
	if !next.Ready() {
		next.Destroy()
		return false
	}
	if h.current != nil && h.current != next {
		h.current.Destroy()
	}
	h.current = next
	return true
}

// Rebuild runs p for hdrPath and installs the result. On failure the
// previous environment stays bound.
func (h *Holder) Rebuild(p *Pipeline, hdrPath string) error {
	env, err := p.Run(hdrPath)
	if err != nil {
		h.log.Warn("environment rebuild failed, keeping previous", zap.String("hdr", hdrPath), zap.Error(err))
		return err
	}
	h.Swap(env)
	return nil
}

// Bind binds the installed environment, if any.
func (h *Holder) Bind(sc shader.Context) {
	h.current.Bind(sc)
}

// Destroy releases the installed environment.
func (h *Holder) Destroy() {
	h.current.Destroy()
	h.current = nil
}
