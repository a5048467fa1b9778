package model

import (
	"fmt"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/MrShreyas/car/internal/engine/gpu"
	"github.com/MrShreyas/car/internal/engine/importer"
	"github.com/MrShreyas/car/internal/engine/material"
	"github.com/MrShreyas/car/internal/engine/shader"
	"github.com/MrShreyas/car/internal/engine/texture"
	"github.com/MrShreyas/car/internal/logger"
	"github.com/MrShreyas/car/pkg/math"
)

// Model is a loaded asset: its meshes and the texture cache they share.
type Model struct {
	Path      string
	Directory string
	Meshes    []*Mesh

	dev   gpu.Device
	cache *texture.Cache
	log   logger.Sink
}

// Load imports the asset at path and uploads it through dev.
//
// When the asset cannot be imported the returned model is empty and the
// error says why; callers check MeshCount. Missing textures and JSON data
// only degrade the result.
func Load(dev gpu.Device, path string, opts Options) (*Model, error) {
	m := &Model{
		Path:      path,
		Directory: filepath.Dir(path),
		dev:       dev,
		log:       logger.OrNop(opts.Sink),
	}

	scene, err := importer.Import(path, opts.Import)
	if err != nil {
		m.log.Warn("model import failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return m, fmt.Errorf("loading model: %w", err)
	}

	next := opts.Decoder
	if next == nil {
		next = texture.FileDecoder{}
	}
	dec := texture.EmbeddedDecoder{
		Images: scene.Embedded,
		Next:   texture.DirDecoder{Dir: m.Directory, Next: next},
	}
	m.cache = texture.NewCache(dev, dec, m.log)

	res := material.NewResolver(path, m.cache, m.log)
	materials := make([]Material, len(scene.Materials))
	for i, src := range scene.Materials {
		materials[i] = res.Resolve(i, src)
	}

	m.processNode(scene.Root, math.Identity(), scene, materials, opts)

	m.log.Info("model loaded",
		zap.String("path", path),
		zap.Int("meshes", len(m.Meshes)),
		zap.Int("textures", m.cache.Len()),
		zap.Int("transparent", m.TransparentCount()),
	)
	return m, nil
}

// MeshCount returns the number of drawable meshes.
func (m *Model) MeshCount() int {
	return len(m.Meshes)
}

// TransparentCount returns the number of meshes drawn in the blended pass.
func (m *Model) TransparentCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		if mesh.Material.Transparent {
			n++
		}
	}
	return n
}

// Textures returns the texture paths uploaded for the model, in load order.
func (m *Model) Textures() []string {
	if m.cache == nil {
		return nil
	}
	return m.cache.Paths()
}

// Bounds returns the model-space bounding box of all meshes.
func (m *Model) Bounds() Bounds {
	b := EmptyBounds()
	for _, mesh := range m.Meshes {
		b.Union(mesh.Bounds)
	}
	return b
}

// Draw renders opaque meshes in load order, then transparent meshes back
// to front as seen from viewer with depth writes disabled.
func (m *Model) Draw(sc shader.Context, world math.Mat4, viewer math.Vec3) {
	for _, mesh := range m.Meshes {
		if !mesh.Material.Transparent {
			mesh.Draw(sc)
		}
	}

	order := m.TransparentOrder(world, viewer)
	if len(order) == 0 {
		return
	}
	m.dev.DepthMask(false)
	for _, i := range order {
		m.Meshes[i].Draw(sc)
	}
	m.dev.DepthMask(true)
}

// TransparentOrder returns the indices of transparent meshes sorted by
// decreasing distance from viewer to their world-space centroid. Equal
// distances keep load order.
func (m *Model) TransparentOrder(world math.Mat4, viewer math.Vec3) []int {
	var order []int
	dist := make(map[int]float32)
	for i, mesh := range m.Meshes {
		if !mesh.Material.Transparent {
			continue
		}
		c := math.Vec3FromArray(world.TransformPoint(mesh.Centroid.Array()))
		dist[i] = c.Sub(viewer).Length()
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dist[order[a]] > dist[order[b]]
	})
	return order
}

// Destroy releases every mesh and texture.
func (m *Model) Destroy() {
	for _, mesh := range m.Meshes {
		mesh.Destroy()
	}
	m.Meshes = nil
	if m.cache != nil {
		m.cache.Destroy()
	}
}
