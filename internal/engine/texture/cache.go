package texture

import (
	"go.uber.org/zap"

	"github.com/MrShreyas/car/internal/engine/gpu"
	"github.com/MrShreyas/car/internal/logger"
)

type cacheEntry struct {
	handle uint32
	ok     bool
}

// Cache uploads each texture path once and owns the resulting handles.
// Keys are exact path strings; no normalization is applied.
type Cache struct {
	dev     gpu.Device
	dec     Decoder
	log     logger.Sink
	entries map[string]cacheEntry
	order   []string
}

// NewCache creates an empty cache. A nil decoder reads from disk and a nil
// sink discards log output.
func NewCache(dev gpu.Device, dec Decoder, sink logger.Sink) *Cache {
	if dec == nil {
		dec = FileDecoder{}
	}
	return &Cache{
		dev:     dev,
		dec:     dec,
		log:     logger.OrNop(sink),
		entries: make(map[string]cacheEntry),
	}
}

// Acquire returns the handle for path, decoding and uploading it on first use.
// The color space only matters on first use. When decoding fails a 1x1 white
// texture is uploaded instead, ok is false, and the path is not retried.
func (c *Cache) Acquire(path string, space ColorSpace) (handle uint32, ok bool) {
	if e, hit := c.entries[path]; hit {
		return e.handle, e.ok
	}

	e := cacheEntry{ok: true}
	px, err := c.dec.Decode(path)
	if err == nil && (px.Width <= 0 || px.Height <= 0 || len(px.Data) < px.Width*px.Height*px.Channels) {
		err = errInvalidPixels
	}
	if err != nil {
		c.log.Warn("texture failed to load, using blank",
			zap.String("path", path),
			zap.Error(err),
		)
		e.ok = false
		e.handle = c.dev.UploadTexture(blankImage())
	} else {
		img := gpu.Image{
			Width:  px.Width,
			Height: px.Height,
			Format: FormatFor(px.Channels, space),
			Pixels: px.Data,
		}
		e.handle = c.dev.UploadTexture(img)
		c.log.Debug("texture uploaded",
			zap.String("path", path),
			zap.Int("width", px.Width),
			zap.Int("height", px.Height),
			zap.Stringer("format", img.Format),
		)
	}

	c.entries[path] = e
	c.order = append(c.order, path)
	return e.handle, e.ok
}

// Handle returns the handle already acquired for path.
func (c *Cache) Handle(path string) (uint32, bool) {
	e, ok := c.entries[path]
	return e.handle, ok
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Paths returns cached paths in acquisition order.
func (c *Cache) Paths() []string {
	return append([]string(nil), c.order...)
}

// Destroy releases every handle. The cache is empty afterwards.
func (c *Cache) Destroy() {
	for _, p := range c.order {
		c.dev.DeleteTexture(c.entries[p].handle)
	}
	c.entries = make(map[string]cacheEntry)
	c.order = nil
}

// FormatFor picks the internal format for a channel count. Only 3 and 4
// channel images get an sRGB format.
func FormatFor(channels int, space ColorSpace) gpu.Format {
	srgb := space == SRGB
	switch channels {
	case 1:
		return gpu.FormatR8
	case 3:
		if srgb {
			return gpu.FormatSRGB8
		}
		return gpu.FormatRGB8
	default:
		if srgb {
			return gpu.FormatSRGB8Alpha8
		}
		return gpu.FormatRGBA8
	}
}

func blankImage() gpu.Image {
	return gpu.Image{Width: 1, Height: 1, Format: gpu.FormatRGBA8, Pixels: []byte{255, 255, 255, 255}}
}
