package render

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// FrameContext is what an overlay gets to draw with: the live encoder and
// target view of the frame being recorded, after the particle pass has been
// written. The overlay must begin its own render pass with LoadOpLoad if it
// wants the particles underneath to survive.
type FrameContext struct {
	Device  *wgpu.Device
	Queue   *wgpu.Queue
	Encoder *wgpu.CommandEncoder
	View    *wgpu.TextureView
	Width   float32
	Height  float32
	Time    float32
}

// Overlay is drawn once per frame on top of the particle pass.
type Overlay interface {
	Draw(frame *FrameContext)
}
