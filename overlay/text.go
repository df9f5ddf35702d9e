package overlay

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/swarm2d/swarm/render"
	"github.com/swarm2d/swarm/shaders"
)

type textVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

type glyphInfo struct {
	uvMin [2]float32
	uvMax [2]float32
	size  [2]float32
	off   [2]float32
	adv   float32
}

const (
	atlasSize   = 512
	textBufSize = 32 * 1024
)

// textRenderer rasterizes ASCII glyphs into an R8 atlas once and builds
// screen-space quads per label.
type textRenderer struct {
	glyphs     map[rune]glyphInfo
	ascent     float32
	lineHeight float32

	pipeline  *wgpu.RenderPipeline
	bindGroup *wgpu.BindGroup
	vertexBuf *wgpu.Buffer
}

func newTextRenderer(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat, fontPath string, fontSize float64) (*textRenderer, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}

	atlas := image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize))
	glyphs := make(map[rune]glyphInfo)

	x, y := 2, 2
	rowHeight := 0
	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		w := mask.Bounds().Dx()
		h := mask.Bounds().Dy()

		if x+w >= atlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= atlasSize {
			break
		}

		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)

		glyphs[r] = glyphInfo{
			uvMin: [2]float32{float32(x) / atlasSize, float32(y) / atlasSize},
			uvMax: [2]float32{float32(x+w) / atlasSize, float32(y+h) / atlasSize},
			size:  [2]float32{float32(w), float32(h)},
			off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			adv:   float32(adv) / 64, // fixed 26.6 to pixels
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	metrics := face.Metrics()
	tr := &textRenderer{
		glyphs:     glyphs,
		ascent:     float32(metrics.Ascent.Ceil()),
		lineHeight: float32(metrics.Height.Ceil()),
	}
	if err := tr.setupGPU(device, queue, format, atlas); err != nil {
		return nil, err
	}
	return tr, nil
}

func (tr *textRenderer) setupGPU(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat, atlas *image.Alpha) error {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Text Atlas",
		Size:          wgpu.Extent3D{Width: atlasSize, Height: atlasSize, DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("atlas texture: %w", err)
	}
	err = queue.WriteTexture(
		tex.AsImageCopy(),
		atlas.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  atlasSize,
			RowsPerImage: atlasSize,
		},
		&wgpu.Extent3D{Width: atlasSize, Height: atlasSize, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("atlas upload: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		return fmt.Errorf("atlas view: %w", err)
	}

	sampler, err := device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("atlas sampler: %w", err)
	}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Text Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		return fmt.Errorf("text shader: %w", err)
	}
	defer module.Release()

	tr.pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: 8 * 4,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
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
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("text pipeline: %w", err)
	}

	tr.bindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: tr.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("text bind group: %w", err)
	}

	tr.vertexBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Text Vertex Buffer",
		Size:  textBufSize,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("text vertex buffer: %w", err)
	}
	return nil
}

func (tr *textRenderer) measure(text string) float32 {
	var w float32
	for _, r := range text {
		if g, ok := tr.glyphs[r]; ok {
			w += g.adv
		}
	}
	return w
}

// draw renders the label centered along the bottom edge of the frame.
func (tr *textRenderer) draw(pass *wgpu.RenderPassEncoder, frame *render.FrameContext, label string) {
	color := [4]float32{0.9, 0.95, 1, 0.9}
	startX := (frame.Width - tr.measure(label)) / 2
	baseY := frame.Height - tr.lineHeight - 12 + tr.ascent

	verts := make([]textVertex, 0, len(label)*6)
	posX := startX
	for _, r := range label {
		g, ok := tr.glyphs[r]
		if !ok {
			continue
		}

		x0 := (posX+g.off[0])/frame.Width*2 - 1
		y0 := 1 - (baseY+g.off[1])/frame.Height*2
		x1 := (posX+g.off[0]+g.size[0])/frame.Width*2 - 1
		y1 := 1 - (baseY+g.off[1]+g.size[1])/frame.Height*2

		verts = append(verts,
			textVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.uvMin[0], g.uvMin[1]}, Color: color},
			textVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: color},
			textVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: color},
			textVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: color},
			textVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.uvMax[0], g.uvMax[1]}, Color: color},
			textVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: color},
		)
		posX += g.adv
	}
	if len(verts) == 0 {
		return
	}

	frame.Queue.WriteBuffer(tr.vertexBuf, 0, wgpu.ToBytes(verts))
	pass.SetPipeline(tr.pipeline)
	pass.SetBindGroup(0, tr.bindGroup, nil)
	pass.SetVertexBuffer(0, tr.vertexBuf, 0, tr.vertexBuf.GetSize())
	pass.Draw(uint32(len(verts)), 1, 0, 0)
}
