package layout

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProtocolVersion is the Lego Protocol schema version this package speaks.
// Other versions are accepted with a warning, never rejected.
const ProtocolVersion = "1.0"

// Layout kinds understood by the generator.
const (
	KindCircle = "circle"
	KindGrid   = "grid"
	KindHelix  = "helix"
	KindSpiral = "spiral"
	KindWave   = "wave"
	KindRandom = "random"
	KindCustom = "custom"
)

// Descriptor is a parsed Lego Protocol document.
type Descriptor struct {
	Version string `json:"version"`
	Layout  Config `json:"layout"`
}

// Config selects a layout kind plus its optional knobs. Coordinates, when
// present, are authoritative and bypass kind dispatch entirely.
type Config struct {
	Type        string       `json:"type"`
	Params      Params       `json:"params"`
	Coordinates [][2]float32 `json:"coordinates"`
}

// Params carries the per-kind scalar knobs. Fields are pointers so absent
// knobs fall through to the per-kind defaults below.
type Params struct {
	RadiusFactor    *float32 `json:"radius_factor"`
	Padding         *float32 `json:"padding"`
	Amplitude       *float32 `json:"amplitude"`
	Frequency       *float32 `json:"frequency"`
	MaxRadiusFactor *float32 `json:"max_radius_factor"`
	Rotations       *float32 `json:"rotations"`
}

// Per-kind defaults.
const (
	defaultRadiusFactor    = 0.35
	defaultGridPadding     = 60.0
	defaultRandomPadding   = 20.0
	defaultHelixAmplitude  = 0.2 // fraction of screen width
	defaultHelixFrequency  = 0.02
	defaultWaveAmplitude   = 0.2 // fraction of screen height
	defaultWaveFrequency   = 0.01
	defaultMaxRadiusFactor = 0.4
	defaultRotations       = 3.0
)

func orDefault(p *float32, def float32) float32 {
	if p != nil {
		return *p
	}
	return def
}

func (p Params) radiusFactor() float32    { return orDefault(p.RadiusFactor, defaultRadiusFactor) }
func (p Params) gridPadding() float32     { return orDefault(p.Padding, defaultGridPadding) }
func (p Params) randomPadding() float32   { return orDefault(p.Padding, defaultRandomPadding) }
func (p Params) maxRadiusFactor() float32 { return orDefault(p.MaxRadiusFactor, defaultMaxRadiusFactor) }
func (p Params) rotations() float32       { return orDefault(p.Rotations, defaultRotations) }

func (p Params) helixAmplitude(width float32) float32 {
	if p.Amplitude != nil {
		return width * *p.Amplitude
	}
	return width * defaultHelixAmplitude
}

func (p Params) helixFrequency() float32 { return orDefault(p.Frequency, defaultHelixFrequency) }

func (p Params) waveAmplitude(height float32) float32 {
	if p.Amplitude != nil {
		return height * *p.Amplitude
	}
	return height * defaultWaveAmplitude
}

func (p Params) waveFrequency() float32 { return orDefault(p.Frequency, defaultWaveFrequency) }

// ParseDescriptor decodes a Lego Protocol JSON document. It checks
// well-formedness only; semantic problems (unknown kind, missing custom
// coordinates) are handled leniently at generation time.
func ParseDescriptor(data string) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return nil, fmt.Errorf("parse layout descriptor: %w", err)
	}
	return &d, nil
}

// normalizeKind folds a descriptor type to one of the Kind constants.
// Unrecognized values are returned lowercased so callers can report them.
func normalizeKind(t string) string {
	switch strings.ToLower(t) {
	case "dna", "dna_helix", KindHelix:
		return KindHelix
	default:
		return strings.ToLower(t)
	}
}
