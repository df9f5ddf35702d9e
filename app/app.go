// Package app wires the window, renderer, particle store and layout engine
// into the cooperative redraw loop, and runs the background producers
// (prompt loop, file watcher) that feed new formations into it.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/swarm2d/swarm"
	"github.com/swarm2d/swarm/brain"
	"github.com/swarm2d/swarm/config"
	"github.com/swarm2d/swarm/layout"
	"github.com/swarm2d/swarm/overlay"
	"github.com/swarm2d/swarm/particle"
	"github.com/swarm2d/swarm/render"
)

// MicCapture records audio when the mic button is clicked and returns a
// mono 16 kHz WAV buffer. Capture is an external collaborator; when no hook
// is installed the button only logs.
type MicCapture func(ctx context.Context) ([]byte, error)

type App struct {
	cfg config.Config
	log swarm.Logger

	window   *glfw.Window
	renderer *render.Renderer
	store    *particle.Store
	engine   *layout.Engine
	status   *overlay.StatusOverlay
	brain    *brain.Brain
	mailbox  *Mailbox

	mic MicCapture

	// mu guards engine and lastJSON: the engine pointer is swapped on
	// resize (main thread) and read by background producers.
	mu       sync.Mutex
	lastJSON string

	start time.Time
}

// New builds the full stack for an already-created window. The brain is
// optional: without an API key, prompts and voice are disabled but the
// animation still runs.
func New(window *glfw.Window, cfg config.Config, log swarm.Logger) (*App, error) {
	log = swarm.OrNop(log)

	a := &App{
		cfg:     cfg,
		log:     log,
		window:  window,
		mailbox: NewMailbox(),
		start:   time.Now(),
	}

	renderer, err := render.NewRenderer(window, cfg.Particles.Count, log)
	if err != nil {
		return nil, fmt.Errorf("app: renderer: %w", err)
	}
	a.renderer = renderer

	width, height := renderer.Size()
	a.store = particle.NewStore(cfg.Particles.Count, float32(width), float32(height), log)
	a.store.SetSpring(cfg.Particles.SpringStrength, cfg.Particles.Damping)
	a.engine = layout.NewEngine(float32(width), float32(height), log)

	a.status, err = overlay.NewStatusOverlay(renderer.Device(), renderer.Queue(), renderer.Format(), cfg.Overlay.FontPath, log)
	if err != nil {
		return nil, fmt.Errorf("app: overlay: %w", err)
	}

	if b, err := brain.New("", cfg.Brain.Model, log); err != nil {
		log.Warnf("app: AI disabled: %v", err)
	} else {
		a.brain = b
	}

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		a.resize(width, height)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft && action == glfw.Press {
			x, y := w.GetCursorPos()
			a.handleClick(float32(x), float32(y))
		}
	})

	return a, nil
}

// SetMicCapture installs the audio-capture collaborator.
func (a *App) SetMicCapture(mic MicCapture) { a.mic = mic }

// ApplyJSON generates targets from a Lego Protocol document and posts them
// to the render loop. Malformed documents degrade to a random scatter
// inside the engine; this never fails.
func (a *App) ApplyJSON(data string) {
	a.mu.Lock()
	engine := a.engine
	a.lastJSON = data
	a.mu.Unlock()

	a.mailbox.Post(engine.GenerateFromJSON(data, a.cfg.Particles.Count))
}

// resize reconfigures the surface and rebuilds the screen-sized pieces:
// layout engine and particle store are per-screen-size objects. The last
// formation is re-generated for the new dimensions.
func (a *App) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.renderer.Resize(width, height)
	a.store = particle.NewStore(a.cfg.Particles.Count, float32(width), float32(height), a.log)
	a.store.SetSpring(a.cfg.Particles.SpringStrength, a.cfg.Particles.Damping)

	a.mu.Lock()
	a.engine = layout.NewEngine(float32(width), float32(height), a.log)
	engine := a.engine
	last := a.lastJSON
	a.mu.Unlock()
	if last != "" {
		a.mailbox.Post(engine.GenerateFromJSON(last, a.cfg.Particles.Count))
	}
	a.log.Debugf("app: resized to %dx%d", width, height)
}

func (a *App) handleClick(x, y float32) {
	w, h := a.renderer.Size()
	if !overlay.HitMic(x, y, float32(w), float32(h)) {
		return
	}
	if a.mic == nil || a.brain == nil {
		a.log.Warnf("app: mic clicked but no capture hook installed")
		return
	}
	go a.voiceRoundTrip()
}

func (a *App) voiceRoundTrip() {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	a.status.SetState(overlay.StateListening, "Listening...")
	wav, err := a.mic(ctx)
	if err != nil {
		a.log.Errorf("app: capture failed: %v", err)
		a.status.SetState(overlay.StateIdle, "")
		return
	}

	a.status.SetState(overlay.StateThinking, "Transcribing...")
	transcript, err := a.brain.Transcribe(ctx, wav)
	if err != nil {
		a.log.Errorf("app: transcription failed: %v", err)
		a.status.SetState(overlay.StateIdle, "")
		return
	}

	a.translateAndApply(ctx, transcript)
}

// translateAndApply runs prompt -> JSON -> targets, updating the status
// overlay along the way. AI failures are logged; the swarm keeps its
// current formation.
func (a *App) translateAndApply(ctx context.Context, prompt string) {
	a.status.SetState(overlay.StateThinking, "Thinking...")
	defer a.status.SetState(overlay.StateIdle, "")

	data, err := a.brain.Translate(ctx, prompt)
	if err != nil {
		a.log.Errorf("app: generation failed: %v", err)
		return
	}
	a.ApplyJSON(data)
}

// Run drives the redraw loop: poll events, drain the mailbox, tick, render.
// It returns on window close, or with an error when the device reports
// out-of-memory (the one unrecoverable frame failure).
func (a *App) Run() error {
	for !a.window.ShouldClose() {
		glfw.PollEvents()

		if targets, ok := a.mailbox.Poll(); ok {
			a.store.SetTargets(targets)
		}
		a.store.Tick()

		t := float32(time.Since(a.start).Seconds())
		err := a.renderer.RenderOverlay(a.store, t, a.status)
		switch {
		case err == nil:
		case errors.Is(err, render.ErrSurfaceLost):
			a.log.Warnf("app: %v, reconfiguring", err)
			a.renderer.Reconfigure()
		case errors.Is(err, render.ErrOutOfMemory):
			return fmt.Errorf("app: %w", err)
		default:
			a.log.Errorf("app: render: %v", err)
		}
	}
	return nil
}
