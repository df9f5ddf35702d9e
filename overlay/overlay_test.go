package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swarm2d/swarm/render"
)

func TestHitMic(t *testing.T) {
	// 800x600 window: button center at (720, 60), radius 0.06*600 = 36.
	assert.True(t, HitMic(720, 60, 800, 600), "dead center")
	assert.True(t, HitMic(740, 60, 800, 600), "inside radius")
	assert.False(t, HitMic(720, 100, 800, 600), "below the button")
	assert.False(t, HitMic(10, 10, 800, 600), "far corner")
	assert.False(t, HitMic(720+36, 60, 800, 600), "exactly on the rim misses")
}

func TestHitMicScalesWithWindow(t *testing.T) {
	// Center tracks the window fractions, radius tracks min(w, h).
	assert.True(t, HitMic(0.9*1600, 0.1*900, 1600, 900))
	assert.False(t, HitMic(0.9*1600+0.06*900+1, 0.1*900, 1600, 900))
}

func TestBuildVerticesPerState(t *testing.T) {
	o := &StatusOverlay{}
	frame := &render.FrameContext{Width: 800, Height: 600, Time: 1.5}

	idle := o.buildVertices(StateIdle, frame)
	assert.Len(t, idle, 24*3, "idle: one 24-segment disc")

	listening := o.buildVertices(StateListening, frame)
	assert.Len(t, listening, 24*3+32*6, "listening: disc plus ring")

	thinking := o.buildVertices(StateThinking, frame)
	assert.Len(t, thinking, 8*12*3, "thinking: eight 12-segment dots")
}

func TestBuildVerticesInNDCRange(t *testing.T) {
	o := &StatusOverlay{}
	frame := &render.FrameContext{Width: 800, Height: 600, Time: 0}
	for _, v := range o.buildVertices(StateListening, frame) {
		assert.InDelta(t, 0, v.Pos[0], 1.01)
		assert.InDelta(t, 0, v.Pos[1], 1.01)
	}
}

func TestSetStateVisibleToDraw(t *testing.T) {
	o := &StatusOverlay{}
	o.SetState(StateThinking, "thinking...")
	o.mu.Lock()
	defer o.mu.Unlock()
	assert.Equal(t, StateThinking, o.state)
	assert.Equal(t, "thinking...", o.label)
}

func TestToNDC(t *testing.T) {
	frame := &render.FrameContext{Width: 800, Height: 600}
	assert.Equal(t, [2]float32{-1, 1}, toNDC(frame, 0, 0), "top left")
	assert.Equal(t, [2]float32{1, -1}, toNDC(frame, 800, 600), "bottom right")
	assert.Equal(t, [2]float32{0, 0}, toNDC(frame, 400, 300), "center")
}
