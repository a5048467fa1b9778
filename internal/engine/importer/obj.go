package importer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MrShreyas/car/pkg/math"
)

// objVertex is one face corner: 0-based position / UV / normal indices, -1 when absent.
type objVertex struct{ v, vt, vn int }

type objGroup struct {
	name     string
	material string
	faces    [][3]objVertex
}

type objParser struct {
	dir       string
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32

	materials     map[string]*Material
	materialOrder []string

	groups []*objGroup
	cur    *objGroup
}

// importOBJ reads a Wavefront .obj file and any material libraries it names.
// Each object/group and material combination becomes one mesh.
func importOBJ(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	p := &objParser{
		dir:       filepath.Dir(path),
		materials: make(map[string]*Material),
	}
	p.cur = &objGroup{name: "default"}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}
	p.flush()

	return p.scene()
}

func (p *objParser) line(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	fields := strings.Fields(line)

	switch fields[0] {
	case "v":
		if v, ok := parseFloats(fields[1:], 3); ok {
			p.positions = append(p.positions, [3]float32{v[0], v[1], v[2]})
		}
	case "vn":
		if v, ok := parseFloats(fields[1:], 3); ok {
			p.normals = append(p.normals, [3]float32{v[0], v[1], v[2]})
		}
	case "vt":
		if v, ok := parseFloats(fields[1:], 2); ok {
			p.uvs = append(p.uvs, [2]float32{v[0], v[1]})
		}
	case "o", "g":
		name := "default"
		if len(fields) > 1 {
			name = strings.Join(fields[1:], " ")
		}
		p.flush()
		p.cur = &objGroup{name: name, material: p.cur.material}
	case "usemtl":
		if len(fields) > 1 && fields[1] != p.cur.material {
			name := p.cur.name
			p.flush()
			p.cur = &objGroup{name: name, material: fields[1]}
		}
	case "mtllib":
		for _, lib := range fields[1:] {
			// A missing library leaves its materials as defaults.
			_ = p.loadMTL(filepath.Join(p.dir, lib))
		}
	case "f":
		p.face(fields[1:])
	}
}

// face fan-triangulates a polygon.
func (p *objParser) face(tokens []string) {
	if len(tokens) < 3 {
		return
	}
	corners := make([]objVertex, len(tokens))
	for i, tok := range tokens {
		corners[i] = p.faceVertex(tok)
		if corners[i].v < 0 {
			return
		}
	}
	for i := 1; i+1 < len(corners); i++ {
		p.cur.faces = append(p.cur.faces, [3]objVertex{corners[0], corners[i], corners[i+1]})
	}
}

// faceVertex parses "v", "v/vt", "v//vn" or "v/vt/vn". Negative indices
// count back from the most recent element.
func (p *objParser) faceVertex(tok string) objVertex {
	resolve := func(s string, count int) int {
		if s == "" {
			return -1
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return -1
		}
		switch {
		case n > 0 && n <= count:
			return n - 1
		case n < 0 && -n <= count:
			return count + n
		default:
			return -1
		}
	}

	parts := strings.Split(tok, "/")
	res := objVertex{v: -1, vt: -1, vn: -1}
	res.v = resolve(parts[0], len(p.positions))
	if len(parts) > 1 {
		res.vt = resolve(parts[1], len(p.uvs))
	}
	if len(parts) > 2 {
		res.vn = resolve(parts[2], len(p.normals))
	}
	return res
}

func (p *objParser) flush() {
	if p.cur != nil && len(p.cur.faces) > 0 {
		p.groups = append(p.groups, p.cur)
	}
}

// scene assembles meshes under a single root with one child node per group name.
func (p *objParser) scene() (*Scene, error) {
	s := &Scene{
		Root:     &Node{Name: "root", Transform: math.Identity()},
		Embedded: map[string][]byte{},
	}

	materialIndex := make(map[string]int)
	for _, name := range p.materialOrder {
		materialIndex[name] = len(s.Materials)
		s.Materials = append(s.Materials, p.materials[name])
	}
	defaultMaterial := -1

	nodes := make(map[string]*Node)
	for _, g := range p.groups {
		mi, ok := materialIndex[g.material]
		if !ok {
			if defaultMaterial < 0 {
				defaultMaterial = len(s.Materials)
				s.Materials = append(s.Materials, newDefaultMaterial())
			}
			mi = defaultMaterial
		}

		mesh := p.buildMesh(g)
		mesh.Material = mi

		n, ok := nodes[g.name]
		if !ok {
			n = &Node{Name: g.name, Transform: math.Identity()}
			nodes[g.name] = n
			s.Root.Children = append(s.Root.Children, n)
		}
		n.Meshes = append(n.Meshes, len(s.Meshes))
		s.Meshes = append(s.Meshes, mesh)
	}
	return s, nil
}

// buildMesh deduplicates face corners into an indexed mesh. Normals and
// UVs are only attached when every corner of the group supplies them.
func (p *objParser) buildMesh(g *objGroup) *Mesh {
	hasNormals, hasUVs := true, true
	for _, f := range g.faces {
		for _, c := range f {
			hasNormals = hasNormals && c.vn >= 0
			hasUVs = hasUVs && c.vt >= 0
		}
	}

	m := &Mesh{Name: g.name}
	lookup := make(map[objVertex]uint32)
	for _, f := range g.faces {
		for _, c := range f {
			key := c
			if !hasNormals {
				key.vn = -1
			}
			if !hasUVs {
				key.vt = -1
			}
			if idx, ok := lookup[key]; ok {
				m.Indices = append(m.Indices, idx)
				continue
			}
			idx := uint32(len(m.Positions))
			m.Positions = append(m.Positions, p.positions[key.v])
			if hasNormals {
				m.Normals = append(m.Normals, p.normals[key.vn])
			}
			if hasUVs {
				m.TexCoords = append(m.TexCoords, p.uvs[key.vt])
			}
			lookup[key] = idx
			m.Indices = append(m.Indices, idx)
		}
	}
	return m
}

// loadMTL reads a material library. Texture slots: map_Kd diffuse,
// map_Ks specular, map_bump/bump height, map_Ka ambient, norm normals.
func (p *objParser) loadMTL(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var cur *Material
	var opacity float32 = 1
	var kd [3]float32
	hasKd := false

	finish := func() {
		if cur == nil {
			return
		}
		if hasKd || opacity < 1 {
			cur.BaseColor = [4]float32{1, 1, 1, opacity}
			if hasKd && cur.TextureCount(TextureDiffuse) == 0 {
				cur.BaseColor = [4]float32{kd[0], kd[1], kd[2], opacity}
			}
			cur.HasBaseColor = true
		}
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		if fields[0] == "newmtl" {
			finish()
			cur, opacity, hasKd = nil, 1, false
			if len(fields) > 1 {
				name := fields[1]
				cur = &Material{Name: name}
				if _, dup := p.materials[name]; !dup {
					p.materialOrder = append(p.materialOrder, name)
				}
				p.materials[name] = cur
			}
			continue
		}
		if cur == nil {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "kd":
			if v, ok := parseFloats(fields[1:], 3); ok {
				kd = [3]float32{v[0], v[1], v[2]}
				hasKd = true
			}
		case "d":
			if v, ok := parseFloats(fields[1:], 1); ok {
				opacity = v[0]
			}
		case "tr":
			if v, ok := parseFloats(fields[1:], 1); ok {
				opacity = 1 - v[0]
			}
		case "map_kd":
			cur.AddTexture(TextureDiffuse, mapPath(fields[1:]))
		case "map_ks":
			cur.AddTexture(TextureSpecular, mapPath(fields[1:]))
		case "map_bump", "bump":
			cur.AddTexture(TextureHeight, mapPath(fields[1:]))
		case "map_ka":
			cur.AddTexture(TextureAmbient, mapPath(fields[1:]))
		case "norm":
			cur.AddTexture(TextureNormals, mapPath(fields[1:]))
		}
	}
	finish()
	return scanner.Err()
}

// mapPath drops texture map options ("-bm 1", "-s 1 1 1", ...) and returns
// the file name, which may contain spaces.
func mapPath(args []string) string {
	optionArgs := map[string]int{
		"-bm": 1, "-blendu": 1, "-blendv": 1, "-boost": 1, "-cc": 1, "-clamp": 1,
		"-imfchan": 1, "-mm": 2, "-o": 3, "-s": 3, "-t": 3, "-texres": 1, "-type": 1,
	}
	if len(args) == 0 {
		return ""
	}
	i := 0
	for i < len(args)-1 {
		n, ok := optionArgs[strings.ToLower(args[i])]
		if !ok {
			break
		}
		i++
		// -o, -s and -t take one to three values.
		for k := 0; k < n && i < len(args)-1; k++ {
			if n == 3 && k > 0 && !isFloat(args[i]) {
				break
			}
			i++
		}
	}
	return strings.Join(args[i:], " ")
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 32)
	return err == nil
}

func parseFloats(fields []string, n int) ([]float32, bool) {
	if len(fields) < n {
		return nil, false
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, false
		}
		out[i] = float32(f)
	}
	return out, true
}
