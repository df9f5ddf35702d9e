package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/swarm2d/swarm"
	"github.com/swarm2d/swarm/particle"
	"github.com/swarm2d/swarm/shaders"
)

// Frame failure classes. Surface-lost is recoverable (reconfigure and skip
// the frame); out-of-memory is not.
var (
	ErrSurfaceLost = errors.New("render: surface lost")
	ErrOutOfMemory = errors.New("render: out of device memory")
)

type uniforms struct {
	ScreenSize [2]float32
	Time       float32
	Pad        float32
}

// Renderer owns the device, the presentation surface and the single
// alpha-blended instanced pipeline that draws the swarm.
type Renderer struct {
	window *glfw.Window

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   *wgpu.SurfaceConfiguration

	pipeline         *wgpu.RenderPipeline
	quadBuf          *wgpu.Buffer
	instanceBuf      *wgpu.Buffer
	uniformBuf       *wgpu.Buffer
	uniformBindGroup *wgpu.BindGroup

	particleCount int
	log           swarm.Logger
}

// NewRenderer brings up the WebGPU stack for the given window and builds
// the particle pipeline for a fixed instance count.
func NewRenderer(window *glfw.Window, particleCount int, log swarm.Logger) (*Renderer, error) {
	r := &Renderer{
		window:        window,
		particleCount: particleCount,
		log:           swarm.OrNop(log),
	}

	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: r.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	r.adapter = adapter

	r.device, err = adapter.RequestDevice(nil)
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	r.queue = r.device.GetQueue()

	width, height := window.GetFramebufferSize()
	caps := r.surface.GetCapabilities(adapter)

	r.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	r.surface.Configure(r.adapter, r.device, r.config)

	if err := r.setupPipeline(); err != nil {
		return nil, err
	}
	if err := r.setupBuffers(); err != nil {
		return nil, err
	}

	r.log.Infof("render: surface %dx%d format %v, %d instances", width, height, r.config.Format, particleCount)
	return r, nil
}

func (r *Renderer) setupPipeline() error {
	module, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Particle Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ParticleWGSL},
	})
	if err != nil {
		return fmt.Errorf("particle shader: %w", err)
	}
	defer module.Release()

	r.pipeline, err = r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Particle Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					// Unit quad corners.
					ArrayStride: 2 * 4,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					// One particle record per instance; offsets pinned by
					// the particle package layout test.
					ArrayStride: uint64(particle.Stride),
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x2, Offset: uint64(particle.OffsetPosition), ShaderLocation: 1},
						{Format: wgpu.VertexFormatFloat32x2, Offset: uint64(particle.OffsetTarget), ShaderLocation: 2},
						{Format: wgpu.VertexFormatFloat32x4, Offset: uint64(particle.OffsetColor), ShaderLocation: 3},
						{Format: wgpu.VertexFormatFloat32, Offset: uint64(particle.OffsetSize), ShaderLocation: 4},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: r.config.Format,
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
		return fmt.Errorf("particle pipeline: %w", err)
	}
	return nil
}

func (r *Renderer) setupBuffers() error {
	quad := []float32{
		-1, -1,
		1, -1,
		1, 1,
		-1, -1,
		1, 1,
		-1, 1,
	}
	var err error
	r.quadBuf, err = r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Quad Vertex Buffer",
		Contents: wgpu.ToBytes(quad),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return fmt.Errorf("quad buffer: %w", err)
	}

	r.instanceBuf, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Particle Instance Buffer",
		Size:  uint64(r.particleCount * particle.Stride),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("instance buffer: %w", err)
	}

	un := uniforms{ScreenSize: [2]float32{float32(r.config.Width), float32(r.config.Height)}}
	r.uniformBuf, err = r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Uniform Buffer",
		Contents: wgpu.ToBytes([]uniforms{un}),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("uniform buffer: %w", err)
	}

	r.uniformBindGroup, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: r.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.uniformBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("uniform bind group: %w", err)
	}
	return nil
}

// Device exposes the logical device for overlay resource setup.
func (r *Renderer) Device() *wgpu.Device { return r.device }

// Queue exposes the submission queue for overlay resource setup.
func (r *Renderer) Queue() *wgpu.Queue { return r.queue }

// Format returns the surface texture format.
func (r *Renderer) Format() wgpu.TextureFormat { return r.config.Format }

// Size returns the current surface dimensions in pixels.
func (r *Renderer) Size() (int, int) { return int(r.config.Width), int(r.config.Height) }

// Resize reconfigures the surface. Zero-size dimensions are ignored so a
// minimized window cannot wedge the swapchain.
func (r *Renderer) Resize(width, height int) {
	if width > 0 && height > 0 {
		r.config.Width = uint32(width)
		r.config.Height = uint32(height)
		r.surface.Configure(r.adapter, r.device, r.config)
	}
}

// Reconfigure re-applies the current surface configuration. Used to recover
// from a lost surface.
func (r *Renderer) Reconfigure() {
	r.surface.Configure(r.adapter, r.device, r.config)
}

// Render uploads the store and draws one frame: clear to black, one
// instanced draw of 6 vertices x particle count.
func (r *Renderer) Render(store *particle.Store, t float32) error {
	return r.render(store, t, nil)
}

// RenderOverlay renders the particle pass, then hands the frame to the
// overlay before submission. The overlay shares the encoder and target view
// but none of the particle buffers.
func (r *Renderer) RenderOverlay(store *particle.Store, t float32, ov Overlay) error {
	return r.render(store, t, ov)
}

func (r *Renderer) render(store *particle.Store, t float32, ov Overlay) error {
	r.queue.WriteBuffer(r.instanceBuf, 0, store.Bytes())

	un := uniforms{
		ScreenSize: [2]float32{float32(r.config.Width), float32(r.config.Height)},
		Time:       t,
	}
	r.queue.WriteBuffer(r.uniformBuf, 0, wgpu.ToBytes([]uniforms{un}))

	next, err := r.surface.GetCurrentTexture()
	if err != nil {
		return classifySurfaceError(err)
	}
	defer next.Release()

	view, err := next.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create view: %w", err)
	}
	defer view.Release()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Particle Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, r.uniformBindGroup, nil)
	pass.SetVertexBuffer(0, r.quadBuf, 0, r.quadBuf.GetSize())
	pass.SetVertexBuffer(1, r.instanceBuf, 0, r.instanceBuf.GetSize())
	pass.Draw(6, uint32(store.Count()), 0, 0)
	if err := pass.End(); err != nil {
		return fmt.Errorf("particle pass: %w", err)
	}

	if ov != nil {
		ov.Draw(&FrameContext{
			Device:  r.device,
			Queue:   r.queue,
			Encoder: encoder,
			View:    view,
			Width:   float32(r.config.Width),
			Height:  float32(r.config.Height),
			Time:    t,
		})
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder finish: %w", err)
	}
	r.queue.Submit(cmd)
	r.surface.Present()

	return nil
}

// classifySurfaceError maps the binding's stringly surface errors onto the
// package sentinels so callers can switch with errors.Is.
func classifySurfaceError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "lost"), strings.Contains(msg, "outdated"), strings.Contains(msg, "timeout"):
		return fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	case strings.Contains(msg, "memory"):
		return fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	default:
		return fmt.Errorf("acquire surface texture: %w", err)
	}
}
