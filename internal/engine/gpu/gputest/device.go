// Package gputest provides recording fakes for GPU-facing package tests.
package gputest

import (
	"fmt"

	"github.com/MrShreyas/car/internal/engine/gpu"
)

// Event is one recorded device call.
type Event struct {
	Op   string
	ID   uint32
	Unit int
	Flag bool
}

func (e Event) String() string {
	switch e.Op {
	case "bind":
		return fmt.Sprintf("bind unit=%d id=%d", e.Unit, e.ID)
	case "active":
		return fmt.Sprintf("active unit=%d", e.Unit)
	case "draw":
		return fmt.Sprintf("draw vao=%d", e.ID)
	case "depthmask":
		return fmt.Sprintf("depthmask %v", e.Flag)
	default:
		return fmt.Sprintf("%s id=%d", e.Op, e.ID)
	}
}

// Mesh records one UploadMesh call.
type Mesh struct {
	Buffers     gpu.MeshBuffers
	VertexBytes int
	Layout      gpu.VertexLayout
	Indices     []uint32
}

// Device records every call made through gpu.Device.
type Device struct {
	// NoElementBuffer makes UploadMesh return a zero EBO even for indexed data.
	NoElementBuffer bool

	Textures    map[uint32]gpu.Image
	Uploads     []gpu.Image
	Meshes      []Mesh
	Deleted     []uint32
	DeletedVAOs []uint32
	Events      []Event

	next uint32
}

var _ gpu.Device = (*Device)(nil)

// New returns an empty recorder.
func New() *Device {
	return &Device{Textures: make(map[uint32]gpu.Image)}
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) UploadTexture(img gpu.Image) uint32 {
	id := d.handle()
	d.Textures[id] = img
	d.Uploads = append(d.Uploads, img)
	d.Events = append(d.Events, Event{Op: "upload", ID: id})
	return id
}

func (d *Device) DeleteTexture(id uint32) {
	delete(d.Textures, id)
	d.Deleted = append(d.Deleted, id)
	d.Events = append(d.Events, Event{Op: "delete", ID: id})
}

func (d *Device) BindTexture(unit int, id uint32) {
	d.Events = append(d.Events, Event{Op: "bind", ID: id, Unit: unit})
}

func (d *Device) ActiveTexture(unit int) {
	d.Events = append(d.Events, Event{Op: "active", Unit: unit})
}

func (d *Device) UploadMesh(vertices []byte, layout gpu.VertexLayout, indices []uint32) gpu.MeshBuffers {
	b := gpu.MeshBuffers{VAO: d.handle(), VBO: d.handle()}
	if len(indices) > 0 && !d.NoElementBuffer {
		b.EBO = d.handle()
		b.IndexCount = int32(len(indices))
	}
	d.Meshes = append(d.Meshes, Mesh{
		Buffers:     b,
		VertexBytes: len(vertices),
		Layout:      layout,
		Indices:     append([]uint32(nil), indices...),
	})
	return b
}

func (d *Device) DeleteMesh(b gpu.MeshBuffers) {
	d.DeletedVAOs = append(d.DeletedVAOs, b.VAO)
}

func (d *Device) DrawElements(b gpu.MeshBuffers) {
	d.Events = append(d.Events, Event{Op: "draw", ID: b.VAO})
}

func (d *Device) DepthMask(write bool) {
	d.Events = append(d.Events, Event{Op: "depthmask", Flag: write})
}

// Draws returns the VAOs drawn, in call order.
func (d *Device) Draws() []uint32 {
	var out []uint32
	for _, e := range d.Events {
		if e.Op == "draw" {
			out = append(out, e.ID)
		}
	}
	return out
}

// Binds returns the texture bind events, in call order.
func (d *Device) Binds() []Event {
	var out []Event
	for _, e := range d.Events {
		if e.Op == "bind" {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears the event log but keeps live resources.
func (d *Device) Reset() {
	d.Events = nil
}
