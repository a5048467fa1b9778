package model

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrShreyas/car/internal/engine/gpu/gputest"
	"github.com/MrShreyas/car/internal/engine/importer"
	"github.com/MrShreyas/car/internal/engine/importer/importertest"
	"github.com/MrShreyas/car/internal/engine/material"
	"github.com/MrShreyas/car/internal/engine/texture"
	"github.com/MrShreyas/car/internal/logger"
	"github.com/MrShreyas/car/pkg/math"
)

// recordingDecoder returns a 1x1 opaque image for every path.
type recordingDecoder struct {
	calls []string
}

func (d *recordingDecoder) Decode(path string) (*texture.Pixels, error) {
	d.calls = append(d.calls, path)
	return &texture.Pixels{Width: 1, Height: 1, Channels: 3, Data: []byte{9, 9, 9}}, nil
}

func writeDoc(t *testing.T, doc *importertest.Doc, name string) string {
	t.Helper()
	path, err := doc.WriteGLTF(t.TempDir(), name)
	if err != nil {
		t.Fatalf("write gltf: %v", err)
	}
	return path
}

func TestLoad_RootScale(t *testing.T) {
	doc := importertest.New()
	mesh := doc.AddMesh(importertest.Triangle())
	doc.SetScene(doc.AddNode(importertest.Node{Mesh: importertest.Int(mesh), Scale: []float32{2, 2, 2}}))

	dev := gputest.New()
	m, err := Load(dev, writeDoc(t, doc, "tri.gltf"), DefaultOptions())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer m.Destroy()

	if m.MeshCount() != 1 {
		t.Fatalf("MeshCount = %d, want 1", m.MeshCount())
	}
	mesh0 := m.Meshes[0]
	want := [][3]float32{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}}
	for i, w := range want {
		p := mesh0.Vertices[i].Position
		if abs(p[0]-w[0]) > 1e-5 || abs(p[1]-w[1]) > 1e-5 || abs(p[2]-w[2]) > 1e-5 {
			t.Errorf("vertex %d = %v, want %v", i, p, w)
		}
		if n := mesh0.Vertices[i].Normal; abs(n[2]-1) > 1e-5 {
			t.Errorf("normal %d = %v, want unit +Z", i, n)
		}
	}
	if c := mesh0.Centroid; abs(c.X-2.0/3) > 1e-5 || abs(c.Y-2.0/3) > 1e-5 || c.Z != 0 {
		t.Errorf("centroid = %+v", c)
	}
	b := m.Bounds()
	if b.Max[0] != 2 || b.Max[1] != 2 {
		t.Errorf("bounds = %+v", b)
	}
}

func TestLoad_NestedTransforms(t *testing.T) {
	doc := importertest.New()
	mesh := importertest.Int(doc.AddMesh(importertest.Triangle()))
	child := doc.AddNode(importertest.Node{Mesh: mesh, Translation: []float32{0, 0, 1}})
	sibling := doc.AddNode(importertest.Node{Mesh: mesh})
	parent := doc.AddNode(importertest.Node{Children: []int{child}, Translation: []float32{5, 0, 0}})
	doc.SetScene(parent, sibling)

	m, err := Load(gputest.New(), writeDoc(t, doc, "nested.gltf"), DefaultOptions())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.MeshCount() != 2 {
		t.Fatalf("MeshCount = %d, want 2", m.MeshCount())
	}
	if p := m.Meshes[0].Vertices[0].Position; p != [3]float32{5, 0, 1} {
		t.Errorf("child vertex = %v, want parent and child translations combined", p)
	}
	if p := m.Meshes[1].Vertices[0].Position; p != [3]float32{0, 0, 0} {
		t.Errorf("sibling vertex = %v, want untouched", p)
	}
}

func TestLoad_Deterministic(t *testing.T) {
	doc := importertest.New()
	tex := doc.AddTexture(doc.AddImage("paint.png"))
	mat := doc.AddMaterial(map[string]any{
		"pbrMetallicRoughness": map[string]any{"baseColorTexture": map[string]any{"index": tex}},
	})
	a, b := importertest.Triangle(), importertest.Triangle()
	a.Material, b.Material = importertest.Int(mat), importertest.Int(mat)
	doc.SetScene(doc.AddNode(importertest.Node{Mesh: importertest.Int(doc.AddMesh(a, b))}))
	path := writeDoc(t, doc, "car.gltf")

	load := func() *Model {
		opts := DefaultOptions()
		opts.Decoder = &recordingDecoder{}
		m, err := Load(gputest.New(), path, opts)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		return m
	}
	first, second := load(), load()

	if first.MeshCount() != second.MeshCount() {
		t.Fatalf("mesh counts differ: %d vs %d", first.MeshCount(), second.MeshCount())
	}
	for i := range first.Meshes {
		va, vb := first.Meshes[i].Vertices, second.Meshes[i].Vertices
		if len(va) != len(vb) {
			t.Fatalf("mesh %d vertex counts differ", i)
		}
		for j := range va {
			if va[j] != vb[j] {
				t.Errorf("mesh %d vertex %d differs", i, j)
			}
		}
		if first.Meshes[i].Slot(texture.RoleBaseColor).Path != second.Meshes[i].Slot(texture.RoleBaseColor).Path {
			t.Errorf("mesh %d texture paths differ", i)
		}
	}
	if got := first.Textures(); len(got) != 1 || got[0] != "paint.png" {
		t.Errorf("expected one shared texture, got %v", got)
	}
}

func TestLoad_AlphaBoundary(t *testing.T) {
	doc := importertest.New()
	opaque := doc.AddMaterial(map[string]any{"pbrMetallicRoughness": map[string]any{"baseColorFactor": []float32{1, 1, 1, 1}}})
	clear := doc.AddMaterial(map[string]any{"pbrMetallicRoughness": map[string]any{"baseColorFactor": []float32{1, 1, 1, 0.5}}})
	blend := doc.AddMaterial(map[string]any{"alphaMode": "BLEND"})
	a, b, c := importertest.Triangle(), importertest.Triangle(), importertest.Triangle()
	a.Material, b.Material, c.Material = importertest.Int(opaque), importertest.Int(clear), importertest.Int(blend)
	doc.SetScene(doc.AddNode(importertest.Node{Mesh: importertest.Int(doc.AddMesh(a, b, c))}))
	path := writeDoc(t, doc, "alpha.gltf")

	tests := []struct {
		name      string
		alphaMode bool
		want      []bool
	}{
		{"heuristic only", false, []bool{false, true, false}},
		{"alpha mode signal", true, []bool{false, true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.AlphaModeTransparency = tt.alphaMode
			m, err := Load(gputest.New(), path, opts)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			for i, want := range tt.want {
				if got := m.Meshes[i].Material.Transparent; got != want {
					t.Errorf("mesh %d transparent = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestLoad_TextureTransformAndDirectory(t *testing.T) {
	doc := importertest.New()
	tex := doc.AddTexture(doc.AddImage("tex/glass_tint.png"))
	mat := doc.AddMaterial(map[string]any{
		"pbrMetallicRoughness": map[string]any{
			"baseColorTexture": map[string]any{
				"index": tex,
				"extensions": map[string]any{
					"KHR_texture_transform": map[string]any{"offset": []float32{0.1, 0.2}, "scale": []float32{2, 2}, "rotation": 0},
				},
			},
		},
	})
	prim := importertest.Triangle()
	prim.Material = importertest.Int(mat)
	doc.SetScene(doc.AddNode(importertest.Node{Mesh: importertest.Int(doc.AddMesh(prim))}))
	path := writeDoc(t, doc, "window.gltf")

	dec := &recordingDecoder{}
	opts := DefaultOptions()
	opts.Decoder = dec
	m, err := Load(gputest.New(), path, opts)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	wantFile := filepath.Dir(path) + "/tex/glass_tint.png"
	if len(dec.calls) != 1 || dec.calls[0] != wantFile {
		t.Errorf("decoder calls = %v, want [%s]", dec.calls, wantFile)
	}

	mesh := m.Meshes[0]
	bc := mesh.Slot(texture.RoleBaseColor)
	if bc == nil || bc.Path != "tex/glass_tint.png" {
		t.Fatalf("unexpected base color slot %+v", bc)
	}

	u := gputest.NewUniforms()
	mesh.Draw(u)
	if v, _ := u.Vec4("texture_diffuse1_uv"); v != (math.Vec4{0.1, 0.2, 2, 2}) {
		t.Errorf("texture_diffuse1_uv = %v", v)
	}
	if v, ok := u.Float("texture_diffuse1_rot"); !ok || v != 0 {
		t.Errorf("texture_diffuse1_rot = %v (set %v)", v, ok)
	}
	if !mesh.Material.Transparent {
		t.Error("glass texture path should mark the mesh transparent")
	}
}

func TestLoad_EmbeddedTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	doc := importertest.New()
	tex := doc.AddTexture(doc.AddEmbeddedImage(buf.Bytes(), "image/png"))
	mat := doc.AddMaterial(map[string]any{
		"pbrMetallicRoughness": map[string]any{"baseColorTexture": map[string]any{"index": tex}},
	})
	prim := importertest.Triangle()
	prim.Material = importertest.Int(mat)
	doc.SetScene(doc.AddNode(importertest.Node{Mesh: importertest.Int(doc.AddMesh(prim))}))
	path, err := doc.WriteGLB(t.TempDir(), "car.glb")
	if err != nil {
		t.Fatalf("write glb: %v", err)
	}

	dev := gputest.New()
	m, err := Load(dev, path, DefaultOptions())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bc := m.Meshes[0].Slot(texture.RoleBaseColor)
	if bc == nil || bc.Path != "*0" {
		t.Fatalf("unexpected base color slot %+v", bc)
	}
	up := dev.Textures[bc.Handle]
	if up.Width != 2 || up.Height != 2 {
		t.Errorf("embedded image uploaded as %dx%d, want 2x2", up.Width, up.Height)
	}
}

func TestLoad_MissingTextureDegrades(t *testing.T) {
	dir := t.TempDir()
	obj := "mtllib box.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nusemtl crate\nf 1/1 2/2 3/3\n"
	mtl := "newmtl crate\nmap_Kd missing.png\n"
	for name, content := range map[string]string{"box.obj": obj, "box.mtl": mtl} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	core, logs := observer.New(zapcore.DebugLevel)
	opts := DefaultOptions()
	opts.Sink = logger.NewZapSink(zap.New(core))
	dev := gputest.New()

	m, err := Load(dev, filepath.Join(dir, "box.obj"), opts)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.MeshCount() != 1 {
		t.Fatalf("MeshCount = %d, want 1", m.MeshCount())
	}
	bc := m.Meshes[0].Slot(texture.RoleBaseColor)
	if bc == nil || bc.Handle == 0 {
		t.Fatalf("expected blank handle for missing texture, got %+v", bc)
	}
	if up := dev.Textures[bc.Handle]; up.Width != 1 || up.Height != 1 {
		t.Errorf("expected 1x1 blank upload, got %dx%d", up.Width, up.Height)
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Errorf("expected one warning, got %v", logs.All())
	}
	if logs.FilterMessage("model loaded").Len() != 1 {
		t.Error("expected load summary")
	}
}

func TestLoad_ImportFailure(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want error
	}{
		{"unsupported", "scene.fbx", "", importer.ErrUnsupportedFormat},
		{"no root", "empty.gltf", `{"asset":{"version":"2.0"}}`, importer.ErrNoRootNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			m, err := Load(gputest.New(), path, DefaultOptions())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if m == nil || m.MeshCount() != 0 {
				t.Fatal("expected an empty model")
			}
			if m.Textures() != nil {
				t.Error("empty model should have no textures")
			}
			m.Draw(gputest.NewUniforms(), math.Identity(), math.Vec3{})
			m.Destroy()
		})
	}
}

// transparentModel builds meshes directly: opaque, then transparent ones
// with centroids along the Z axis.
func transparentModel(t *testing.T, dev *gputest.Device, zs ...float32) *Model {
	t.Helper()
	m := &Model{dev: dev, log: logger.Nop()}

	opaque, err := NewMesh(dev, triangle([3]float32{}), []uint32{0, 1, 2}, material.Default())
	if err != nil {
		t.Fatalf("NewMesh failed: %v", err)
	}
	m.Meshes = append(m.Meshes, opaque)

	for _, z := range zs {
		mat := material.Default()
		mat.BaseColorFactor[3] = 0.5
		mat.Transparent = true
		mesh, err := NewMesh(dev, triangle([3]float32{0, 0, z}), []uint32{0, 1, 2}, mat)
		if err != nil {
			t.Fatalf("NewMesh failed: %v", err)
		}
		m.Meshes = append(m.Meshes, mesh)
	}
	return m
}

func TestTransparentOrder(t *testing.T) {
	dev := gputest.New()
	m := transparentModel(t, dev, 1, 5, 3, -5)
	viewer := math.Vec3{Z: 10}

	order := m.TransparentOrder(math.Identity(), viewer)
	want := []int{4, 1, 3, 2}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	// Distances are measured in world space.
	order = m.TransparentOrder(math.Translate(0, 0, 20), viewer)
	if order[0] != 2 || order[len(order)-1] != 4 {
		t.Errorf("world transform ignored: %v", order)
	}
}

func TestTransparentOrder_StableTies(t *testing.T) {
	dev := gputest.New()
	m := transparentModel(t, dev, 2, 2, 2)
	order := m.TransparentOrder(math.Identity(), math.Vec3{Z: 10})
	for i, idx := range order {
		if idx != i+1 {
			t.Fatalf("equal distances should keep load order, got %v", order)
		}
	}
}

func TestModelDraw_TwoPass(t *testing.T) {
	dev := gputest.New()
	m := transparentModel(t, dev, 1, 5)
	dev.Reset()

	m.Draw(gputest.NewUniforms(), math.Identity(), math.Vec3{Z: 10})

	var ops []string
	var draws []uint32
	for _, e := range dev.Events {
		switch e.Op {
		case "draw":
			ops = append(ops, "draw")
			draws = append(draws, e.ID)
		case "depthmask":
			ops = append(ops, e.String())
		}
	}
	wantOps := []string{"draw", "depthmask false", "draw", "draw", "depthmask true"}
	if len(ops) != len(wantOps) {
		t.Fatalf("ops = %v, want %v", ops, wantOps)
	}
	for i := range wantOps {
		if ops[i] != wantOps[i] {
			t.Fatalf("ops = %v, want %v", ops, wantOps)
		}
	}
	wantDraws := []uint32{m.Meshes[0].Buffers().VAO, m.Meshes[1].Buffers().VAO, m.Meshes[2].Buffers().VAO}
	for i := range wantDraws {
		if draws[i] != wantDraws[i] {
			t.Errorf("draw %d = vao %d, want %d", i, draws[i], wantDraws[i])
		}
	}
}

func TestModelDraw_OpaqueOnly(t *testing.T) {
	dev := gputest.New()
	m := transparentModel(t, dev)
	dev.Reset()

	m.Draw(gputest.NewUniforms(), math.Identity(), math.Vec3{})
	for _, e := range dev.Events {
		if e.Op == "depthmask" {
			t.Fatal("depth mask should not change without transparent meshes")
		}
	}
	if len(dev.Draws()) != 1 {
		t.Errorf("expected one draw, got %d", len(dev.Draws()))
	}
}

func TestModelDestroy(t *testing.T) {
	doc := importertest.New()
	tex := doc.AddTexture(doc.AddImage("paint.png"))
	mat := doc.AddMaterial(map[string]any{
		"pbrMetallicRoughness": map[string]any{"baseColorTexture": map[string]any{"index": tex}},
	})
	prim := importertest.Triangle()
	prim.Material = importertest.Int(mat)
	doc.SetScene(doc.AddNode(importertest.Node{Mesh: importertest.Int(doc.AddMesh(prim))}))

	dev := gputest.New()
	opts := DefaultOptions()
	opts.Decoder = &recordingDecoder{}
	m, err := Load(dev, writeDoc(t, doc, "car.gltf"), opts)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	m.Destroy()

	if len(dev.Textures) != 0 {
		t.Errorf("textures left after Destroy: %d", len(dev.Textures))
	}
	if len(dev.DeletedVAOs) != 1 {
		t.Errorf("expected one mesh released, got %d", len(dev.DeletedVAOs))
	}
	if m.MeshCount() != 0 {
		t.Error("destroyed model should be empty")
	}
}
