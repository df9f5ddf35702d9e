package app

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mailbox is a single-slot, latest-wins handoff of target arrays from
// background producers to the render loop. Posting replaces any undelivered
// slot; under load, stale layouts are discarded, never queued. The render
// loop drains it between two ticks, so a target array is always applied
// whole.
type Mailbox struct {
	ch chan []mgl32.Vec2
}

func NewMailbox() *Mailbox {
	return &Mailbox{ch: make(chan []mgl32.Vec2, 1)}
}

// Post delivers targets, displacing an unconsumed previous post.
func (m *Mailbox) Post(targets []mgl32.Vec2) {
	for {
		select {
		case m.ch <- targets:
			return
		default:
			select {
			case <-m.ch:
			default:
			}
		}
	}
}

// Poll returns the pending target array, if any. Never blocks.
func (m *Mailbox) Poll() ([]mgl32.Vec2, bool) {
	select {
	case t := <-m.ch:
		return t, true
	default:
		return nil, false
	}
}
