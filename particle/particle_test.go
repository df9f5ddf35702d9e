package particle

import (
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// The instance buffer layout is a contract with the vertex attributes and
// the WGSL struct: 16 floats per record, fields at fixed byte offsets.
func TestParticleByteLayout(t *testing.T) {
	assert.Equal(t, 64, Stride)
	assert.Equal(t, uintptr(64), unsafe.Sizeof(Particle{}))

	assert.Equal(t, 0, OffsetPosition)
	assert.Equal(t, 8, OffsetTarget)
	assert.Equal(t, 16, OffsetColor)
	assert.Equal(t, 32, OffsetSize)
}

func TestNewParticleRestsAtSpawn(t *testing.T) {
	p := New(mgl32.Vec2{12, 34}, mgl32.Vec4{0, 1, 0, 1}, 4)

	assert.Equal(t, p.Position, p.Target, "no initial spring pull")
	assert.Equal(t, [2]float32{12, 34}, p.Position)
	assert.Equal(t, [4]float32{0, 1, 0, 1}, p.Color)
	assert.Equal(t, float32(4), p.Size)
}
