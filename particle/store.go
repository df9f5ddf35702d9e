package particle

import (
	"math/rand"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/swarm2d/swarm"
)

// Spring constants that keep the integrator stable for any on-screen
// displacement: no divergence, no sustained oscillation.
const (
	DefaultSpringStrength = 0.08
	DefaultDamping        = 0.85
)

const (
	spawnPadding = 20.0
	minSize      = 3.0
	maxSize      = 5.0
)

// palette for freshly spawned particles.
var palette = []mgl32.Vec4{
	{0.0, 1.0, 0.0, 1.0},  // neon green
	{0.0, 1.0, 1.0, 1.0},  // cyan
	{0.0, 1.0, 0.53, 1.0}, // mint
	{0.53, 1.0, 0.0, 1.0}, // lime
}

// Store owns a fixed-size particle array plus CPU-only velocities and
// advances positions toward targets with a spring-damper integrator.
// len(particles) == len(velocities) == count for the store's lifetime.
//
// Store is not synchronized. Tick and SetTargets must run on the same
// goroutine; cross-thread target delivery goes through a latest-wins
// mailbox drained between ticks.
type Store struct {
	particles  []Particle
	velocities []mgl32.Vec2

	springStrength float32
	damping        float32

	log swarm.Logger
}

// NewStore scatters count particles uniformly inside a padded screen
// rectangle with colors from the palette and sizes in [3,5).
func NewStore(count int, width, height float32, log swarm.Logger) *Store {
	particles := make([]Particle, count)
	for i := range particles {
		pos := mgl32.Vec2{
			spawnPadding + rand.Float32()*(width-spawnPadding*2),
			spawnPadding + rand.Float32()*(height-spawnPadding*2),
		}
		color := palette[rand.Intn(len(palette))]
		size := minSize + rand.Float32()*(maxSize-minSize)
		particles[i] = New(pos, color, size)
	}

	return &Store{
		particles:      particles,
		velocities:     make([]mgl32.Vec2, count),
		springStrength: DefaultSpringStrength,
		damping:        DefaultDamping,
		log:            swarm.OrNop(log),
	}
}

// SetSpring overrides the integrator constants. Values outside the stable
// ranges (strength in (0,1], damping in [0,1)) are ignored with a warning.
func (s *Store) SetSpring(strength, damping float32) {
	if strength <= 0 || strength > 1 {
		s.log.Warnf("particle: spring strength %v outside (0,1], keeping %v", strength, s.springStrength)
	} else {
		s.springStrength = strength
	}
	if damping < 0 || damping >= 1 {
		s.log.Warnf("particle: damping %v outside [0,1), keeping %v", damping, s.damping)
	} else {
		s.damping = damping
	}
}

// Count returns the fixed particle count.
func (s *Store) Count() int { return len(s.particles) }

// At returns a copy of particle i.
func (s *Store) At(i int) Particle { return s.particles[i] }

// Velocity returns the CPU-side velocity of particle i.
func (s *Store) Velocity(i int) mgl32.Vec2 { return s.velocities[i] }

// SetTargets assigns targets[i] to particle i for the common prefix.
// Particles past the end of the slice keep their previous target; length
// mismatches are tolerated, never an error.
func (s *Store) SetTargets(targets []mgl32.Vec2) {
	n := len(targets)
	if n > len(s.particles) {
		n = len(s.particles)
	}
	for i := 0; i < n; i++ {
		s.particles[i].Target = [2]float32{targets[i].X(), targets[i].Y()}
	}
}

// Tick advances every particle one step of the spring-damper integrator.
// Unit mass, unit timestep: the timestep is "one call", so animation speed
// follows the redraw cadence.
func (s *Store) Tick() {
	for i := range s.particles {
		p := &s.particles[i]

		dx := p.Target[0] - p.Position[0]
		dy := p.Target[1] - p.Position[1]

		vx := s.velocities[i].X()*s.damping + dx*s.springStrength
		vy := s.velocities[i].Y()*s.damping + dy*s.springStrength

		p.Position[0] += vx
		p.Position[1] += vy
		s.velocities[i] = mgl32.Vec2{vx, vy}
	}
}

// Bytes exposes the particle array as a contiguous read-only byte view for
// GPU upload. No per-field copying; the slice aliases the live array.
func (s *Store) Bytes() []byte {
	if len(s.particles) == 0 {
		return nil
	}
	size := len(s.particles) * int(unsafe.Sizeof(Particle{}))
	return unsafe.Slice((*byte)(unsafe.Pointer(&s.particles[0])), size)
}
