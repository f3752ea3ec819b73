// Package physics replays the bouncing actor frame by frame and decides, from
// the random register, when its bounce sequence ends.
package physics

import (
	"errors"
	"fmt"

	"github.com/lox/bouncesearch/internal/rng"
)

// DefaultMaxFrames bounds a single run. Terminating runs end within a few
// hundred frames; runs that reach the bound are reported as non-terminating.
const DefaultMaxFrames = 10_000

// Collision rolls.
const (
	collisionRolls = 9
	terminateMask  = 0x0F
	terminateBelow = 6
)

// ErrNonTerminating is returned by Run when the frame bound is reached.
var ErrNonTerminating = errors.New("run did not terminate")

// NonTerminatingError identifies the configuration that hit the frame bound.
type NonTerminatingError struct {
	Seed    uint16
	XOffset uint8
	YOffset uint8
	Frames  int
}

func (e *NonTerminatingError) Error() string {
	return fmt.Sprintf("seed %#04x offsets (%#02x, %#02x): no termination after %d frames",
		e.Seed, e.XOffset, e.YOffset, e.Frames)
}

func (e *NonTerminatingError) Unwrap() error { return ErrNonTerminating }

// State is the simulator's run state.
type State uint8

const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "running"
}

// FrameEvent describes one simulated frame.
type FrameEvent struct {
	Frame      int
	Actor      Actor
	Side       CollisionSide
	Initial    bool
	EndCheck   bool
	Sampled    bool
	Sample     uint8
	Register   uint16 // register value after the frame's rolls
	Terminated bool
}

// Observer receives every frame of a run.
type Observer func(FrameEvent)

// Simulator is the per-run state machine. It owns no generator: the caller
// pins the generator before Reset and restores it afterwards.
type Simulator struct {
	gen       *rng.Generator
	bounds    Bounds
	actor     Actor
	state     State
	frame     int
	seed      uint16
	xOffset   uint8
	yOffset   uint8
	maxFrames int
	observer  Observer
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithMaxFrames sets the frame bound used by Run. Zero removes the bound.
func WithMaxFrames(n int) Option {
	return func(s *Simulator) { s.maxFrames = n }
}

// WithObserver installs a per-frame hook.
func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observer = o }
}

// NewSimulator creates a simulator driving g inside bounds b.
func NewSimulator(g *rng.Generator, b Bounds, opts ...Option) *Simulator {
	s := &Simulator{
		gen:       g,
		bounds:    b,
		maxFrames: DefaultMaxFrames,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxFrames returns the frame bound used by Run, zero when unbounded.
func (s *Simulator) MaxFrames() int { return s.maxFrames }

// NeverTerminates reports whether every run started from seed reaches the
// frame bound: seed is a fixed point of the register and its low byte always
// fails the termination test.
func NeverTerminates(seed uint16) bool {
	return rng.Next(seed) == seed && uint8(seed)&terminateMask >= terminateBelow
}

// Actor returns the current actor state.
func (s *Simulator) Actor() Actor { return s.actor }

// State returns the current run state.
func (s *Simulator) State() State { return s.state }

// Reset places the actor at its start position for the given sub-pixel
// offsets, moving left with no vertical velocity.
func (s *Simulator) Reset(xOffset, yOffset uint8) {
	x, y := StartPosition(xOffset, yOffset)
	s.actor = Actor{X: x, Y: y, VX: -Speed, VY: 0}
	s.state = Running
	s.frame = 0
	s.seed = s.gen.Value()
	s.xOffset = xOffset
	s.yOffset = yOffset
}

// Advance simulates one frame and reports whether the run terminated on it.
// Calling Advance after termination is a no-op that returns false.
func (s *Simulator) Advance() bool {
	if s.state == Terminated {
		return false
	}

	a := &s.actor
	a.X = a.X.Add(a.VX)
	a.Y = a.Y.Add(a.VY)

	side, initial, endCheck := a.checkBounds(&s.bounds)

	s.gen.Step(1)
	var terminated, sampled bool
	var sample uint8
	if side != CollisionNone {
		terminated, sample, sampled = s.roll(initial, endCheck)
	}
	if terminated {
		s.state = Terminated
	}

	if s.observer != nil {
		s.observer(FrameEvent{
			Frame:      s.frame,
			Actor:      s.actor,
			Side:       side,
			Initial:    initial,
			EndCheck:   endCheck,
			Sampled:    sampled,
			Sample:     sample,
			Register:   s.gen.Value(),
			Terminated: terminated,
		})
	}
	s.frame++
	return terminated
}

// roll drives the generator for a collision frame. The first bounce rolls
// nine times before sampling; later bounces sample first and roll nine times
// afterwards whatever the sample decided.
func (s *Simulator) roll(initial, endCheck bool) (terminated bool, sample uint8, sampled bool) {
	if initial {
		s.gen.Step(collisionRolls)
		if endCheck {
			terminated, sample = s.sample()
			sampled = true
		}
		return terminated, sample, sampled
	}

	if endCheck {
		terminated, sample = s.sample()
		sampled = true
	}
	s.gen.Step(collisionRolls)
	return terminated, sample, sampled
}

func (s *Simulator) sample() (bool, uint8) {
	s.gen.Step(1)
	b := s.gen.LowByte()
	return b&terminateMask < terminateBelow, b
}

// Run resets the simulator and advances until termination, returning the
// number of frames completed before the terminating frame. If the frame bound
// is reached first it returns a *NonTerminatingError.
func (s *Simulator) Run(xOffset, yOffset uint8) (int, error) {
	s.Reset(xOffset, yOffset)
	frames := 0
	for !s.Advance() {
		frames++
		if s.maxFrames > 0 && frames >= s.maxFrames {
			return frames, &NonTerminatingError{
				Seed:    s.seed,
				XOffset: xOffset,
				YOffset: yOffset,
				Frames:  frames,
			}
		}
	}
	return frames, nil
}
