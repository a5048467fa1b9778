package material

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/MrShreyas/car/internal/engine/texture"
)

var (
	// ErrNoJSON is returned when a file holds no glTF JSON document.
	ErrNoJSON = errors.New("no glTF JSON in file")
	// ErrBadGLB is returned for a truncated or malformed binary container.
	ErrBadGLB = errors.New("malformed GLB container")
)

const (
	glbMagic     = "glTF"
	glbChunkJSON = 0x4E4F534A
)

// TextureRef is a material texture named by the JSON document.
type TextureRef struct {
	// Image is the image URI as written, or "*N" for images without one.
	Image string
	UV    texture.UVTransform
	// HasUV is set when the reference carries KHR_texture_transform.
	HasUV bool
}

// Entry holds the values one JSON material provides. Nil fields and
// unset flags mean the document does not specify them.
type Entry struct {
	BaseColorFactor    [4]float32
	HasBaseColorFactor bool
	MetallicFactor     *float32
	RoughnessFactor    *float32

	BaseColor         *TextureRef
	Normal            *TextureRef
	MetallicRoughness *TextureRef
}

// SideChannel is the material data read straight from a glTF document,
// indexed like the importer's material table.
type SideChannel struct {
	Images    []string
	Materials []Entry
}

// Material returns entry i, or nil when the document has no such material.
func (s *SideChannel) Material(i int) *Entry {
	if s == nil || i < 0 || i >= len(s.Materials) {
		return nil
	}
	return &s.Materials[i]
}

// ReadSideChannel reads material data from the glTF (or GLB) file at path.
// It returns nil when the file cannot be read or parsed.
func ReadSideChannel(path string) *SideChannel {
	sc, _ := readSideChannel(path)
	return sc
}

func readSideChannel(path string) (*SideChannel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSideChannel(data)
}

// ParseSideChannel parses glTF JSON text or a GLB container.
func ParseSideChannel(data []byte) (*SideChannel, error) {
	if bytes.HasPrefix(data, []byte(glbMagic)) {
		js, err := glbJSON(data)
		if err != nil {
			return nil, err
		}
		data = js
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing glTF JSON: %w", err)
	}

	sc := &SideChannel{Images: make([]string, len(doc.Images))}
	for i, img := range doc.Images {
		switch {
		case img.URI == "" || isDataURI(img.URI):
			sc.Images[i] = texture.EmbeddedKey(i)
		default:
			sc.Images[i] = img.URI
		}
	}

	sc.Materials = make([]Entry, len(doc.Materials))
	for i, m := range doc.Materials {
		e := &sc.Materials[i]
		if pbr := m.PBR; pbr != nil {
			if len(pbr.BaseColorFactor) >= 4 {
				copy(e.BaseColorFactor[:], pbr.BaseColorFactor[:4])
				e.HasBaseColorFactor = true
			}
			e.MetallicFactor = pbr.MetallicFactor
			e.RoughnessFactor = pbr.RoughnessFactor
			e.BaseColor = doc.textureRef(pbr.BaseColorTexture, sc.Images, true)
			e.MetallicRoughness = doc.textureRef(pbr.MetallicRoughnessTexture, sc.Images, false)
		}
		e.Normal = doc.textureRef(m.NormalTexture, sc.Images, true)
	}
	return sc, nil
}

// glbJSON returns the JSON chunk of a GLB container.
func glbJSON(data []byte) ([]byte, error) {
	if len(data) < 20 {
		return nil, ErrBadGLB
	}
	chunkLen := binary.LittleEndian.Uint32(data[12:16])
	chunkType := binary.LittleEndian.Uint32(data[16:20])
	if chunkType != glbChunkJSON {
		return nil, ErrNoJSON
	}
	if uint64(chunkLen) > uint64(len(data)-20) {
		return nil, ErrBadGLB
	}
	return data[20 : 20+chunkLen], nil
}

func isDataURI(uri string) bool {
	return len(uri) > 5 && uri[:5] == "data:"
}

type jsonDocument struct {
	Images []struct {
		URI string `json:"uri"`
	} `json:"images"`
	Textures []struct {
		Source *int `json:"source"`
	} `json:"textures"`
	Materials []jsonMaterial `json:"materials"`
}

type jsonMaterial struct {
	PBR *struct {
		BaseColorFactor          []float32        `json:"baseColorFactor"`
		MetallicFactor           *float32         `json:"metallicFactor"`
		RoughnessFactor          *float32         `json:"roughnessFactor"`
		BaseColorTexture         *jsonTextureInfo `json:"baseColorTexture"`
		MetallicRoughnessTexture *jsonTextureInfo `json:"metallicRoughnessTexture"`
	} `json:"pbrMetallicRoughness"`
	NormalTexture *jsonTextureInfo `json:"normalTexture"`
}

type jsonTextureInfo struct {
	Index      *int `json:"index"`
	Extensions struct {
		Transform *jsonTransform `json:"KHR_texture_transform"`
	} `json:"extensions"`
}

type jsonTransform struct {
	Offset   []float32 `json:"offset"`
	Scale    []float32 `json:"scale"`
	Rotation *float32  `json:"rotation"`
}

// imageIndex maps a texture index to its image. Documents without a
// textures table are read as indexing images directly.
func (d *jsonDocument) imageIndex(tex int) int {
	if len(d.Textures) == 0 {
		return tex
	}
	if tex < 0 || tex >= len(d.Textures) || d.Textures[tex].Source == nil {
		return -1
	}
	return *d.Textures[tex].Source
}

func (d *jsonDocument) textureRef(info *jsonTextureInfo, images []string, withTransform bool) *TextureRef {
	if info == nil || info.Index == nil {
		return nil
	}
	img := d.imageIndex(*info.Index)
	if img < 0 || img >= len(images) {
		return nil
	}
	ref := &TextureRef{Image: images[img], UV: texture.IdentityUV()}
	if t := info.Extensions.Transform; t != nil && withTransform {
		if len(t.Offset) >= 2 {
			ref.UV.Offset = [2]float32{t.Offset[0], t.Offset[1]}
		}
		if len(t.Scale) >= 2 {
			ref.UV.Scale = [2]float32{t.Scale[0], t.Scale[1]}
		}
		if t.Rotation != nil {
			ref.UV.Rotation = *t.Rotation
		}
		ref.HasUV = true
	}
	return ref
}
