// Package importertest builds small glTF assets for tests.
package importertest

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
)

// Primitive is triangle data for one mesh primitive.
type Primitive struct {
	Positions [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32
	Tangents  [][4]float32
	Indices   []uint32
	Material  *int
}

// Node describes a glTF node. Zero values are omitted.
type Node struct {
	Name        string
	Mesh        *int
	Children    []int
	Translation []float32
	Rotation    []float32
	Scale       []float32
	Matrix      []float32
}

// Doc accumulates a glTF document with a single binary buffer.
type Doc struct {
	bin bytes.Buffer

	accessors   []map[string]any
	bufferViews []map[string]any
	meshes      []map[string]any
	nodes       []map[string]any
	images      []map[string]any
	textures    []map[string]any
	materials   []map[string]any
	scenes      []map[string]any
	scene       *int
}

// New returns an empty document.
func New() *Doc {
	return &Doc{}
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func (d *Doc) view(data []byte, target int) int {
	for d.bin.Len()%4 != 0 {
		d.bin.WriteByte(0)
	}
	v := map[string]any{
		"buffer":     0,
		"byteOffset": d.bin.Len(),
		"byteLength": len(data),
	}
	if target != 0 {
		v["target"] = target
	}
	d.bin.Write(data)
	d.bufferViews = append(d.bufferViews, v)
	return len(d.bufferViews) - 1
}

func (d *Doc) floatAccessor(values []float32, typ string, count int, withBounds bool) int {
	var buf bytes.Buffer
	for _, f := range values {
		_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(f))
	}
	acc := map[string]any{
		"bufferView":    d.view(buf.Bytes(), 34962),
		"componentType": 5126,
		"count":         count,
		"type":          typ,
	}
	if withBounds && count > 0 {
		lo := []float32{values[0], values[1], values[2]}
		hi := []float32{values[0], values[1], values[2]}
		for i := 0; i < count; i++ {
			for c := 0; c < 3; c++ {
				lo[c] = min(lo[c], values[i*3+c])
				hi[c] = max(hi[c], values[i*3+c])
			}
		}
		acc["min"] = lo
		acc["max"] = hi
	}
	d.accessors = append(d.accessors, acc)
	return len(d.accessors) - 1
}

func (d *Doc) indexAccessor(indices []uint32) int {
	var buf bytes.Buffer
	for _, i := range indices {
		_ = binary.Write(&buf, binary.LittleEndian, i)
	}
	d.accessors = append(d.accessors, map[string]any{
		"bufferView":    d.view(buf.Bytes(), 34963),
		"componentType": 5125,
		"count":         len(indices),
		"type":          "SCALAR",
	})
	return len(d.accessors) - 1
}

// AddMesh adds a mesh and returns its index.
func (d *Doc) AddMesh(prims ...Primitive) int {
	var out []map[string]any
	for _, p := range prims {
		attrs := map[string]any{}
		var flat []float32
		for _, v := range p.Positions {
			flat = append(flat, v[:]...)
		}
		attrs["POSITION"] = d.floatAccessor(flat, "VEC3", len(p.Positions), true)

		if p.Normals != nil {
			flat = flat[:0]
			for _, v := range p.Normals {
				flat = append(flat, v[:]...)
			}
			attrs["NORMAL"] = d.floatAccessor(flat, "VEC3", len(p.Normals), false)
		}
		if p.TexCoords != nil {
			flat = flat[:0]
			for _, v := range p.TexCoords {
				flat = append(flat, v[:]...)
			}
			attrs["TEXCOORD_0"] = d.floatAccessor(flat, "VEC2", len(p.TexCoords), false)
		}
		if p.Tangents != nil {
			flat = flat[:0]
			for _, v := range p.Tangents {
				flat = append(flat, v[:]...)
			}
			attrs["TANGENT"] = d.floatAccessor(flat, "VEC4", len(p.Tangents), false)
		}

		prim := map[string]any{"attributes": attrs}
		if p.Indices != nil {
			prim["indices"] = d.indexAccessor(p.Indices)
		}
		if p.Material != nil {
			prim["material"] = *p.Material
		}
		out = append(out, prim)
	}
	d.meshes = append(d.meshes, map[string]any{"primitives": out})
	return len(d.meshes) - 1
}

// AddNode adds a node and returns its index.
func (d *Doc) AddNode(n Node) int {
	m := map[string]any{}
	if n.Name != "" {
		m["name"] = n.Name
	}
	if n.Mesh != nil {
		m["mesh"] = *n.Mesh
	}
	if len(n.Children) > 0 {
		m["children"] = n.Children
	}
	if n.Translation != nil {
		m["translation"] = n.Translation
	}
	if n.Rotation != nil {
		m["rotation"] = n.Rotation
	}
	if n.Scale != nil {
		m["scale"] = n.Scale
	}
	if n.Matrix != nil {
		m["matrix"] = n.Matrix
	}
	d.nodes = append(d.nodes, m)
	return len(d.nodes) - 1
}

// AddImage adds an external image and returns its index.
func (d *Doc) AddImage(uri string) int {
	d.images = append(d.images, map[string]any{"uri": uri})
	return len(d.images) - 1
}

// AddEmbeddedImage stores encoded image bytes in the binary buffer.
func (d *Doc) AddEmbeddedImage(data []byte, mimeType string) int {
	d.images = append(d.images, map[string]any{
		"bufferView": d.view(data, 0),
		"mimeType":   mimeType,
	})
	return len(d.images) - 1
}

// AddTexture adds a texture sampling image and returns its index.
func (d *Doc) AddTexture(image int) int {
	d.textures = append(d.textures, map[string]any{"source": image})
	return len(d.textures) - 1
}

// AddMaterial adds a raw material object and returns its index.
func (d *Doc) AddMaterial(m map[string]any) int {
	d.materials = append(d.materials, m)
	return len(d.materials) - 1
}

// SetScene adds a scene with the given root nodes and makes it the default.
func (d *Doc) SetScene(roots ...int) {
	d.scenes = append(d.scenes, map[string]any{"nodes": roots})
	d.scene = Int(len(d.scenes) - 1)
}

func (d *Doc) document(bufferURI string) map[string]any {
	doc := map[string]any{
		"asset": map[string]any{"version": "2.0", "generator": "importertest"},
	}
	set := func(key string, v []map[string]any) {
		if len(v) > 0 {
			doc[key] = v
		}
	}
	set("accessors", d.accessors)
	set("bufferViews", d.bufferViews)
	set("meshes", d.meshes)
	set("nodes", d.nodes)
	set("images", d.images)
	set("textures", d.textures)
	set("materials", d.materials)
	set("scenes", d.scenes)
	if d.scene != nil {
		doc["scene"] = *d.scene
	}
	if d.bin.Len() > 0 {
		buf := map[string]any{"byteLength": d.bin.Len()}
		if bufferURI != "" {
			buf["uri"] = bufferURI
		}
		doc["buffers"] = []map[string]any{buf}
	}
	return doc
}

// JSON returns the document as .gltf text with the buffer as a data URI.
func (d *Doc) JSON() []byte {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(d.bin.Bytes())
	out, _ := json.MarshalIndent(d.document(uri), "", "  ")
	return out
}

// GLB returns the document as a binary glTF container.
func (d *Doc) GLB() []byte {
	js, _ := json.Marshal(d.document(""))
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	bin := append([]byte(nil), d.bin.Bytes()...)
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	total := 12 + 8 + len(js)
	if len(bin) > 0 {
		total += 8 + len(bin)
	}

	var out bytes.Buffer
	out.WriteString("glTF")
	_ = binary.Write(&out, binary.LittleEndian, uint32(2))
	_ = binary.Write(&out, binary.LittleEndian, uint32(total))
	_ = binary.Write(&out, binary.LittleEndian, uint32(len(js)))
	_ = binary.Write(&out, binary.LittleEndian, uint32(0x4E4F534A))
	out.Write(js)
	if len(bin) > 0 {
		_ = binary.Write(&out, binary.LittleEndian, uint32(len(bin)))
		_ = binary.Write(&out, binary.LittleEndian, uint32(0x004E4942))
		out.Write(bin)
	}
	return out.Bytes()
}

// WriteGLTF writes the document to dir/name as .gltf text.
func (d *Doc) WriteGLTF(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, d.JSON(), 0644)
}

// WriteGLB writes the document to dir/name as a .glb container.
func (d *Doc) WriteGLB(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, d.GLB(), 0644)
}

// Triangle returns a unit right triangle in the XY plane facing +Z.
func Triangle() Primitive {
	return Primitive{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		TexCoords: [][2]float32{{0, 0}, {1, 0}, {0, 1}},
		Indices:   []uint32{0, 1, 2},
	}
}
