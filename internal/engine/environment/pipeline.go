package environment

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/MrShreyas/car/internal/logger"
	"github.com/MrShreyas/car/pkg/formats"
)

// ErrUnsupportedSource is returned by source loading for panoramas that
// cannot be decoded, such as OpenEXR.
var ErrUnsupportedSource = errors.New("unsupported environment source")

// Pipeline turns an HDR panorama, or the procedural sky when none is
// usable, into a ready Environment.
type Pipeline struct {
	baker    Baker
	settings Settings
	log      logger.Sink

	// LoadHDR decodes the panorama; replaceable in tests.
	LoadHDR func(path string) (*formats.HDR, error)
}

// NewPipeline returns a pipeline rendering through b.
func NewPipeline(b Baker, s Settings, sink logger.Sink) *Pipeline {
	return &Pipeline{
		baker:    b,
		settings: s,
		log:      logger.OrNop(sink),
		LoadHDR:  loadHDR,
	}
}

func loadHDR(path string) (*formats.HDR, error) {
	if strings.EqualFold(filepath.Ext(path), ".exr") {
		return nil, fmt.Errorf("%w: OpenEXR", ErrUnsupportedSource)
	}
	return formats.LoadHDR(path)
}

// Settings returns the pipeline settings.
func (p *Pipeline) Settings() Settings {
	return p.settings
}

// Run precomputes an environment. An empty or undecodable hdrPath falls
// back to the procedural sky with a warning. On a GPU failure the partial
// result is destroyed and the error returned. Bindings are restored
// before Run returns in every case.
func (p *Pipeline) Run(hdrPath string) (*Environment, error) {
	img := p.acquire(hdrPath)

	restore := p.baker.Begin()
	defer restore()

	env := &Environment{
		Procedural: img == nil,
		Mips:       p.settings.PrefilterMips,
		units:      p.settings.Units,
		binder:     p.baker,
	}
	if img != nil {
		env.Source = hdrPath
	}

	if err := p.bake(env, img); err != nil {
		env.Destroy()
		return nil, err
	}
	p.log.Info("environment ready",
		zap.Bool("procedural", env.Procedural),
		zap.String("source", env.Source),
		zap.Int("envSize", env.EnvSize),
		zap.Int("prefilterMips", env.Mips),
	)
	return env, nil
}

// acquire returns the decoded panorama, or nil for the procedural sky.
func (p *Pipeline) acquire(hdrPath string) *formats.HDR {
	if hdrPath == "" || p.settings.DisableHDR {
		p.log.Debug("using procedural sky", zap.Bool("hdrDisabled", p.settings.DisableHDR))
		return nil
	}
	img, err := p.LoadHDR(hdrPath)
	if err == nil && (img == nil || img.Width == 0 || img.Height == 0) {
		err = fmt.Errorf("%w: empty image", ErrUnsupportedSource)
	}
	if err != nil {
		p.log.Warn("HDR load failed, using procedural sky", zap.String("path", hdrPath), zap.Error(err))
		return nil
	}
	return img
}

func (p *Pipeline) bake(env *Environment, img *formats.HDR) error {
	s := p.settings
	m := NewMachine(img == nil)

	var err error
	if img != nil {
		env.EnvSize = s.EnvSizeHDR
		if err = p.projectHDR(env, img, m); err != nil {
			return err
		}
	} else {
		env.EnvSize = s.EnvSizeProcedural
		if env.res.EnvCube, err = p.baker.NewCubemap(env.EnvSize, true); err != nil {
			return fmt.Errorf("allocating environment cubemap: %w", err)
		}
		if err = p.baker.UploadFaces(env.res.EnvCube, env.EnvSize, s.Sky.Faces(env.EnvSize)); err != nil {
			return fmt.Errorf("uploading sky faces: %w", err)
		}
		if err = m.Advance(CubemapProjected); err != nil {
			return err
		}
	}

	p.baker.GenerateMipmaps(env.res.EnvCube)
	if err = m.Advance(MipmapGenerated); err != nil {
		return err
	}

	if env.res.Irradiance, err = p.baker.NewCubemap(s.IrradianceSize, false); err != nil {
		return fmt.Errorf("allocating irradiance cubemap: %w", err)
	}
	if err = p.baker.ConvolveIrradiance(env.res.EnvCube, env.res.Irradiance, s.IrradianceSize, s.IrradianceDelta); err != nil {
		return fmt.Errorf("convolving irradiance: %w", err)
	}
	if err = m.Advance(IrradianceConvolved); err != nil {
		return err
	}

	if env.res.Prefilter, err = p.baker.NewCubemap(s.PrefilterSize, true); err != nil {
		return fmt.Errorf("allocating prefilter cubemap: %w", err)
	}
	for mip := 0; mip < s.PrefilterMips; mip++ {
		size := MipSize(s.PrefilterSize, mip)
		if err = p.baker.Prefilter(env.res.EnvCube, env.res.Prefilter, size, mip, MipRoughness(mip, s.PrefilterMips), s.SampleCount); err != nil {
			return fmt.Errorf("prefiltering mip %d: %w", mip, err)
		}
		if err = m.Advance(PrefilterConvolved); err != nil {
			return err
		}
	}

	if env.res.BRDFLUT, err = p.baker.IntegrateBRDF(s.BRDFSize, s.SampleCount); err != nil {
		return fmt.Errorf("integrating BRDF: %w", err)
	}
	if err = m.Advance(BRDFIntegrated); err != nil {
		return err
	}

	if err = m.Advance(Ready); err != nil {
		return err
	}
	env.ready = true
	return nil
}

func (p *Pipeline) projectHDR(env *Environment, img *formats.HDR, m *Machine) error {
	equirect, err := p.baker.UploadEquirect(img)
	if err != nil {
		return fmt.Errorf("uploading panorama: %w", err)
	}
	defer p.baker.DeleteTexture(equirect)
	if err = m.Advance(EquirectangularUploaded); err != nil {
		return err
	}

	if env.res.EnvCube, err = p.baker.NewCubemap(env.EnvSize, true); err != nil {
		return fmt.Errorf("allocating environment cubemap: %w", err)
	}
	if err = p.baker.ProjectEquirect(equirect, env.res.EnvCube, env.EnvSize); err != nil {
		return fmt.Errorf("projecting panorama: %w", err)
	}
	return m.Advance(CubemapProjected)
}
