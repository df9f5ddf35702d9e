package shaders

import (
	_ "embed"
)

//go:embed particle.wgsl
var ParticleWGSL string

//go:embed overlay.wgsl
var OverlayWGSL string

//go:embed text.wgsl
var TextWGSL string
