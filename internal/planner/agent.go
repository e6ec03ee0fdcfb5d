// Package planner implements a Dynamic Window Approach local planner for a
// differential-drive agent.
//
// Every control tick the Agent samples the 3x3 window of wheel commands
// reachable from the previous command, projects each one forward with the
// kinematic model, scores it by progress towards the active target minus an
// obstacle-clearance penalty, and keeps the best. The Agent also owns its pose
// and a bounded pose history.
package planner

import (
	"errors"
	"fmt"

	"github.com/Rocky14683/dwa-visualizer/internal/field"
	"github.com/Rocky14683/dwa-visualizer/internal/geometry"
	"go.uber.org/zap"
)

// DefaultHistorySize is the number of past poses an agent remembers.
const DefaultHistorySize = 300

// ErrInvalidAgent is wrapped by NewAgent when the configuration cannot
// describe a physical agent.
var ErrInvalidAgent = errors.New("planner: invalid agent")

// Field is the read side of the obstacle field used while planning.
type Field interface {
	// NearestDistance returns the clearance from p to the obstacles in play.
	NearestDistance(p geometry.Point) float64
	// Target returns the active target.
	Target() field.Obstacle
}

// TargetSelector is a Field whose active target can be reselected.
type TargetSelector interface {
	Field
	PickNewTarget()
}

// Config holds the physical properties and starting state of an agent.
type Config struct {
	// Radius is the collision radius, also used as half the wheel track.
	Radius float64
	// MaxVelocity bounds the magnitude of each wheel's velocity.
	MaxVelocity float64
	// MaxAcceleration bounds the per-second change of each wheel's velocity.
	MaxAcceleration float64
	Start           geometry.Pose
	// HistorySize caps the pose history; zero means DefaultHistorySize.
	HistorySize int
}

// Validate reports whether the configuration describes a usable agent.
func (c Config) Validate() error {
	if c.Radius <= 0 {
		return fmt.Errorf("%w: radius must be positive, got %g", ErrInvalidAgent, c.Radius)
	}
	if c.MaxVelocity < 0 {
		return fmt.Errorf("%w: max velocity must not be negative, got %g", ErrInvalidAgent, c.MaxVelocity)
	}
	if c.MaxAcceleration < 0 {
		return fmt.Errorf("%w: max acceleration must not be negative, got %g", ErrInvalidAgent, c.MaxAcceleration)
	}
	if c.HistorySize < 0 {
		return fmt.Errorf("%w: history size must not be negative, got %d", ErrInvalidAgent, c.HistorySize)
	}
	return nil
}

// Option customises an Agent.
type Option func(*Agent)

// WithLogger sets the logger used for planning diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithConcurrency evaluates candidates on up to n goroutines. Values below 2
// keep evaluation on the calling goroutine.
func WithConcurrency(n int) Option {
	return func(a *Agent) { a.concurrency = n }
}

// Agent is a differential-drive robot together with its planner state.
// It is not safe for concurrent use.
type Agent struct {
	radius          float64
	maxVelocity     float64
	maxAcceleration float64

	pose        geometry.Pose
	history     []geometry.Pose
	historySize int

	// candidates is scratch space rebuilt by every Plan call.
	candidates []Motion

	concurrency int
	logger      *zap.Logger
}

// NewAgent creates an agent at cfg.Start with an empty history.
func NewAgent(cfg Config, opts ...Option) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	size := cfg.HistorySize
	if size == 0 {
		size = DefaultHistorySize
	}

	a := &Agent{
		radius:          cfg.Radius,
		maxVelocity:     cfg.MaxVelocity,
		maxAcceleration: cfg.MaxAcceleration,
		pose:            cfg.Start,
		history:         make([]geometry.Pose, 0, size+1),
		historySize:     size,
		candidates:      make([]Motion, 0, windowSize*windowSize),
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Radius is the collision radius, also the half-track of the wheel base.
func (a *Agent) Radius() float64 { return a.radius }

// MaxVelocity is the largest wheel speed Plan will command.
func (a *Agent) MaxVelocity() float64 { return a.maxVelocity }

// MaxAcceleration bounds the per-second change of each wheel speed.
func (a *Agent) MaxAcceleration() float64 { return a.maxAcceleration }

// Pose returns the agent's current pose.
func (a *Agent) Pose() geometry.Pose { return a.pose }

// History returns a copy of the remembered poses, oldest first.
func (a *Agent) History() []geometry.Pose {
	out := make([]geometry.Pose, len(a.history))
	copy(out, a.history)
	return out
}

// Candidates returns a copy of the motions projected by the last Plan call,
// in evaluation order.
func (a *Agent) Candidates() []Motion {
	out := make([]Motion, len(a.candidates))
	copy(out, a.candidates)
	return out
}

// Predict projects cmd from the current pose over dt without changing state.
func (a *Agent) Predict(cmd Command, dt float64) (geometry.Pose, Motion) {
	return Predict(a.pose, a.radius, cmd, dt)
}

// Integrate returns the pose reached by applying cmd for dt. It has no side
// effects.
func (a *Agent) Integrate(cmd Command, dt float64) geometry.Pose {
	p, _ := a.Predict(cmd, dt)
	return p
}

// Advance commits next as the current pose. The pose being replaced is
// appended to the history, and the oldest entry is dropped once the history
// is over capacity.
func (a *Agent) Advance(next geometry.Pose) {
	a.history = append(a.history, a.pose)
	if len(a.history) > a.historySize {
		n := copy(a.history, a.history[1:])
		a.history = a.history[:n]
	}
	a.pose = next
}

// CheckArrival asks f for a new target when the agent overlaps the active
// one, and reports whether it did.
func (a *Agent) CheckArrival(f TargetSelector) bool {
	target := f.Target()
	dist := a.pose.Position.Distance(target.Center)
	if dist < a.radius+target.Radius {
		a.logger.Debug("Target reached",
			zap.Float64("distance", dist),
			zap.Float64("x", target.Center.X),
			zap.Float64("y", target.Center.Y),
		)
		f.PickNewTarget()
		return true
	}
	return false
}
