package layout

import (
	"math"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/swarm2d/swarm"
)

// Engine turns layout descriptors into target point sequences for a given
// screen size. It holds no mutable state; recreate it on resize.
type Engine struct {
	width  float32
	height float32
	log    swarm.Logger
}

func NewEngine(width, height float32, log swarm.Logger) *Engine {
	return &Engine{width: width, height: height, log: swarm.OrNop(log)}
}

// GenerateFromJSON parses a Lego Protocol document and generates n targets.
// Malformed JSON falls back to a random scatter; this never fails.
func (e *Engine) GenerateFromJSON(data string, n int) []mgl32.Vec2 {
	d, err := ParseDescriptor(data)
	if err != nil {
		e.log.Warnf("layout: %v, falling back to random", err)
		return e.random(n, Params{})
	}
	return e.Generate(d, n)
}

// Generate produces exactly n target points from a parsed descriptor.
// Semantic problems degrade to a random scatter with a warning; the
// animation must keep running no matter what arrives on the wire.
func (e *Engine) Generate(d *Descriptor, n int) []mgl32.Vec2 {
	if d.Version != ProtocolVersion {
		e.log.Warnf("layout: unknown schema version %q, expected %q", d.Version, ProtocolVersion)
	}

	// Explicit coordinates win over the kind, whatever it says.
	if d.Layout.Coordinates != nil {
		return e.custom(d.Layout.Coordinates, n)
	}

	kind := normalizeKind(d.Layout.Type)
	p := d.Layout.Params

	switch kind {
	case KindCircle:
		return e.circle(n, p)
	case KindGrid:
		return e.grid(n, p)
	case KindHelix:
		return e.helix(n, p)
	case KindSpiral:
		return e.spiral(n, p)
	case KindWave:
		return e.wave(n, p)
	case KindRandom:
		return e.random(n, p)
	case KindCustom:
		e.log.Warnf("layout: custom layout without coordinates, falling back to random")
		return e.random(n, Params{})
	default:
		e.log.Warnf("layout: unknown layout type %q, falling back to random", kind)
		return e.random(n, Params{})
	}
}

func (e *Engine) center() mgl32.Vec2 {
	return mgl32.Vec2{e.width / 2, e.height / 2}
}

func (e *Engine) circle(n int, p Params) []mgl32.Vec2 {
	center := e.center()
	radius := math32.Min(e.width, e.height) * p.radiusFactor()

	out := make([]mgl32.Vec2, n)
	for i := range out {
		angle := float32(i) / float32(n) * 2 * math.Pi
		out[i] = center.Add(mgl32.Vec2{math32.Cos(angle), math32.Sin(angle)}.Mul(radius))
	}
	return out
}

func (e *Engine) grid(n int, p Params) []mgl32.Vec2 {
	cols := int(math32.Ceil(math32.Sqrt(float32(n))))
	rows := (n + cols - 1) / cols

	pad := p.gridPadding()
	cellW := (e.width - pad*2) / float32(cols)
	cellH := (e.height - pad*2) / float32(rows)

	out := make([]mgl32.Vec2, n)
	for i := range out {
		row := i / cols
		col := i % cols
		out[i] = mgl32.Vec2{
			pad + float32(col)*cellW + cellW/2,
			pad + float32(row)*cellH + cellH/2,
		}
	}
	return out
}

// helix lays points along two interleaved strands: even indices swing one
// way off the vertical axis, odd indices the other.
func (e *Engine) helix(n int, p Params) []mgl32.Vec2 {
	centerX := e.width / 2
	amp := p.helixAmplitude(e.width)
	freq := p.helixFrequency()
	spacing := e.height / float32(n)

	out := make([]mgl32.Vec2, n)
	for i := range out {
		y := float32(i) * spacing
		phase := float32(i) * freq * 2 * math.Pi
		offset := amp * math32.Sin(phase)
		x := centerX + offset
		if i%2 != 0 {
			x = centerX - offset
		}
		out[i] = mgl32.Vec2{x, y}
	}
	return out
}

func (e *Engine) spiral(n int, p Params) []mgl32.Vec2 {
	center := e.center()
	maxRadius := math32.Min(e.width, e.height) * p.maxRadiusFactor()
	rotations := p.rotations()

	out := make([]mgl32.Vec2, n)
	for i := range out {
		t := float32(i) / float32(n)
		angle := t * rotations * 2 * math.Pi
		radius := maxRadius * t
		out[i] = center.Add(mgl32.Vec2{math32.Cos(angle), math32.Sin(angle)}.Mul(radius))
	}
	return out
}

func (e *Engine) wave(n int, p Params) []mgl32.Vec2 {
	amp := p.waveAmplitude(e.height)
	freq := p.waveFrequency()
	centerY := e.height / 2
	spacing := e.width / float32(n)

	out := make([]mgl32.Vec2, n)
	for i := range out {
		x := float32(i) * spacing
		y := centerY + amp*math32.Sin(float32(i)*freq*2*math.Pi)
		out[i] = mgl32.Vec2{x, y}
	}
	return out
}

func (e *Engine) random(n int, p Params) []mgl32.Vec2 {
	pad := p.randomPadding()

	out := make([]mgl32.Vec2, n)
	for i := range out {
		out[i] = mgl32.Vec2{
			pad + rand.Float32()*(e.width-pad*2),
			pad + rand.Float32()*(e.height-pad*2),
		}
	}
	return out
}

// custom scales normalized coordinates to screen space and resamples the
// list to exactly n points. With m >= n points it stride-picks, with
// 2 <= m < n it lerps along the open polyline, so the first and last
// supplied points are always preserved.
func (e *Engine) custom(coords [][2]float32, n int) []mgl32.Vec2 {
	if len(coords) == 0 {
		e.log.Warnf("layout: empty coordinates array, falling back to random")
		return e.random(n, Params{})
	}

	scaled := make([]mgl32.Vec2, len(coords))
	for i, c := range coords {
		scaled[i] = mgl32.Vec2{c[0] * e.width, c[1] * e.height}
	}

	out := make([]mgl32.Vec2, n)
	if n == 1 {
		out[0] = scaled[0]
		return out
	}

	m := len(scaled)
	if m >= n {
		for i := range out {
			out[i] = scaled[i*m/n]
		}
		return out
	}

	for i := range out {
		t := float32(i) / float32(n-1)
		fidx := t * float32(m-1)
		idx := int(math32.Floor(fidx))
		next := idx + 1
		if next > m-1 {
			next = m - 1
		}
		blend := fidx - float32(idx)
		out[i] = scaled[idx].Mul(1 - blend).Add(scaled[next].Mul(blend))
	}
	return out
}
