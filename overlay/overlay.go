// Package overlay draws the status icons (microphone, listening pulse,
// thinking spinner) and an optional text label on top of the particle pass.
// It owns its own pipelines and buffers; the renderer only hands it the
// frame being recorded.
package overlay

import (
	"fmt"
	"sync"

	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/swarm2d/swarm"
	"github.com/swarm2d/swarm/render"
	"github.com/swarm2d/swarm/shaders"
)

// State of the voice/AI round trip, reflected by the icon.
type State int

const (
	StateIdle State = iota
	StateListening
	StateThinking
)

// Mic button placement, as fractions of the screen.
const (
	micCenterX = 0.9
	micCenterY = 0.1
	micRadius  = 0.06 // of min(width, height)
)

const vertexBufSize = 64 * 1024

type vertex struct {
	Pos   [2]float32 // NDC
	Color [4]float32
}

// StatusOverlay implements render.Overlay. SetState may be called from any
// goroutine; Draw runs on the render thread.
type StatusOverlay struct {
	mu    sync.Mutex
	state State
	label string

	pipeline  *wgpu.RenderPipeline
	vertexBuf *wgpu.Buffer

	text *textRenderer

	log swarm.Logger
}

// NewStatusOverlay builds the icon pipeline and, when fontPath is readable,
// the text atlas. A missing font degrades to icons-only with a warning.
func NewStatusOverlay(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat, fontPath string, log swarm.Logger) (*StatusOverlay, error) {
	o := &StatusOverlay{log: swarm.OrNop(log)}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Overlay Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.OverlayWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("overlay shader: %w", err)
	}
	defer module.Release()

	o.pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Overlay Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: 6 * 4,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("overlay pipeline: %w", err)
	}

	o.vertexBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Overlay Vertex Buffer",
		Size:  vertexBufSize,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("overlay vertex buffer: %w", err)
	}

	if fontPath != "" {
		o.text, err = newTextRenderer(device, queue, format, fontPath, 28)
		if err != nil {
			o.log.Warnf("overlay: text disabled: %v", err)
			o.text = nil
		}
	}

	return o, nil
}

// SetState switches the icon and label shown from the next frame on.
func (o *StatusOverlay) SetState(s State, label string) {
	o.mu.Lock()
	o.state = s
	o.label = label
	o.mu.Unlock()
}

// HitMic reports whether a click at pixel (x, y) lands on the mic button.
func HitMic(x, y, width, height float32) bool {
	cx := micCenterX * width
	cy := micCenterY * height
	r := micRadius * math32.Min(width, height)
	dx, dy := x-cx, y-cy
	return math32.Sqrt(dx*dx+dy*dy) < r
}

// Draw records the overlay pass. It loads the existing frame contents so
// the particles underneath survive.
func (o *StatusOverlay) Draw(frame *render.FrameContext) {
	o.mu.Lock()
	state := o.state
	label := o.label
	o.mu.Unlock()

	verts := o.buildVertices(state, frame)
	if len(verts) == 0 && (o.text == nil || label == "") {
		return
	}

	if len(verts) > 0 {
		frame.Queue.WriteBuffer(o.vertexBuf, 0, wgpu.ToBytes(verts))
	}

	pass := frame.Encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Overlay Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    frame.View,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
	})
	if len(verts) > 0 {
		pass.SetPipeline(o.pipeline)
		pass.SetVertexBuffer(0, o.vertexBuf, 0, o.vertexBuf.GetSize())
		pass.Draw(uint32(len(verts)), 1, 0, 0)
	}
	if o.text != nil && label != "" {
		o.text.draw(pass, frame, label)
	}
	if err := pass.End(); err != nil {
		o.log.Errorf("overlay: pass end: %v", err)
	}
}

func (o *StatusOverlay) buildVertices(state State, frame *render.FrameContext) []vertex {
	cx := micCenterX * frame.Width
	cy := micCenterY * frame.Height
	r := micRadius * math32.Min(frame.Width, frame.Height)

	var verts []vertex

	switch state {
	case StateIdle:
		verts = appendDisc(verts, frame, cx, cy, r*0.8, [4]float32{0.4, 0.4, 0.4, 0.6}, 24)
	case StateListening:
		pulse := 0.5 + 0.5*math32.Sin(frame.Time*6)
		verts = appendDisc(verts, frame, cx, cy, r*0.8, [4]float32{1, 0.2, 0.2, 0.9}, 24)
		verts = appendRing(verts, frame, cx, cy, r*(1.0+0.3*pulse), r*0.12, [4]float32{1, 0.3, 0.3, 0.7 * (1 - pulse*0.5)}, 32)
	case StateThinking:
		// Spinner: eight dots orbiting the button.
		for i := 0; i < 8; i++ {
			angle := frame.Time*3 + float32(i)/8*2*math32.Pi
			dx := math32.Cos(angle) * r
			dy := math32.Sin(angle) * r
			fade := float32(i+1) / 8
			verts = appendDisc(verts, frame, cx+dx, cy+dy, r*0.18, [4]float32{0.3, 0.8, 1, fade}, 12)
		}
	}
	return verts
}

func toNDC(frame *render.FrameContext, x, y float32) [2]float32 {
	return [2]float32{
		x/frame.Width*2 - 1,
		1 - y/frame.Height*2,
	}
}

func appendDisc(verts []vertex, frame *render.FrameContext, cx, cy, r float32, color [4]float32, segments int) []vertex {
	for i := 0; i < segments; i++ {
		a0 := float32(i) / float32(segments) * 2 * math32.Pi
		a1 := float32(i+1) / float32(segments) * 2 * math32.Pi
		verts = append(verts,
			vertex{Pos: toNDC(frame, cx, cy), Color: color},
			vertex{Pos: toNDC(frame, cx+math32.Cos(a0)*r, cy+math32.Sin(a0)*r), Color: color},
			vertex{Pos: toNDC(frame, cx+math32.Cos(a1)*r, cy+math32.Sin(a1)*r), Color: color},
		)
	}
	return verts
}

func appendRing(verts []vertex, frame *render.FrameContext, cx, cy, r, thickness float32, color [4]float32, segments int) []vertex {
	inner := r - thickness/2
	outer := r + thickness/2
	for i := 0; i < segments; i++ {
		a0 := float32(i) / float32(segments) * 2 * math32.Pi
		a1 := float32(i+1) / float32(segments) * 2 * math32.Pi
		i0 := toNDC(frame, cx+math32.Cos(a0)*inner, cy+math32.Sin(a0)*inner)
		i1 := toNDC(frame, cx+math32.Cos(a1)*inner, cy+math32.Sin(a1)*inner)
		o0 := toNDC(frame, cx+math32.Cos(a0)*outer, cy+math32.Sin(a0)*outer)
		o1 := toNDC(frame, cx+math32.Cos(a1)*outer, cy+math32.Sin(a1)*outer)
		verts = append(verts,
			vertex{Pos: i0, Color: color}, vertex{Pos: o0, Color: color}, vertex{Pos: o1, Color: color},
			vertex{Pos: i0, Color: color}, vertex{Pos: o1, Color: color}, vertex{Pos: i1, Color: color},
		)
	}
	return verts
}
