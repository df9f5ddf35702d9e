package particle

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Particle is the GPU-facing record. The field order and the trailing pad
// define the instance buffer layout: the whole slice is handed to the queue
// as raw bytes, so any change here must be mirrored in the vertex attributes
// and the WGSL struct.
type Particle struct {
	Position [2]float32
	Target   [2]float32
	Color    [4]float32
	Size     float32
	Pad      [7]float32
}

// Stride is the per-instance byte stride: 16 floats.
const Stride = int(unsafe.Sizeof(Particle{}))

// Byte offsets of the instanced vertex attributes.
const (
	OffsetPosition = int(unsafe.Offsetof(Particle{}.Position))
	OffsetTarget   = int(unsafe.Offsetof(Particle{}.Target))
	OffsetColor    = int(unsafe.Offsetof(Particle{}.Color))
	OffsetSize     = int(unsafe.Offsetof(Particle{}.Size))
)

// New returns a particle at rest: target equals position, so there is no
// initial spring pull.
func New(pos mgl32.Vec2, color mgl32.Vec4, size float32) Particle {
	return Particle{
		Position: [2]float32{pos.X(), pos.Y()},
		Target:   [2]float32{pos.X(), pos.Y()},
		Color:    [4]float32{color.X(), color.Y(), color.Z(), color.W()},
		Size:     size,
	}
}
