// Package sim drives the planner one control tick at a time.
//
// Each tick runs strictly in sequence:
//
//  1. Plan - pick the next wheel command from the dynamic window.
//  2. Integrate - apply the command for one tick.
//  3. Advance - commit the new pose to the agent.
//  4. Arrival - reselect the target if the agent reached it.
//
// Observers see the finished tick; rendering and recording hang off them.
package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rocky14683/dwa-visualizer/internal/field"
	"github.com/Rocky14683/dwa-visualizer/internal/geometry"
	"github.com/Rocky14683/dwa-visualizer/internal/planner"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrStop may be returned by an Observer to end a run early without error.
var ErrStop = errors.New("sim: stop requested")

// Config holds the timing and cost parameters of a run.
type Config struct {
	// DT is the control step in seconds.
	DT float64
	// Lookahead is how many ticks ahead each candidate is projected.
	Lookahead int
	Weights   planner.Weights
	// TickRate caps ticks per second of wall time; zero runs unpaced.
	TickRate float64
}

// Validate checks the run parameters.
func (c Config) Validate() error {
	if c.DT <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %g", c.DT)
	}
	if c.Lookahead < 1 {
		return fmt.Errorf("sim: lookahead must be at least 1, got %d", c.Lookahead)
	}
	if c.TickRate < 0 {
		return fmt.Errorf("sim: tick rate must not be negative, got %g", c.TickRate)
	}
	return nil
}

// Tick is the outcome of one control step.
type Tick struct {
	Index       int
	Command     planner.Command
	Pose        geometry.Pose
	TargetIndex int
	Arrived     bool
	// Candidates are the motions projected from the pose the tick started at.
	Candidates []planner.Motion
	// From is the pose the tick started at.
	From geometry.Pose
}

// Observer is notified after every tick.
type Observer interface {
	ObserveTick(Tick) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Tick) error

// ObserveTick calls fn(t).
func (fn ObserverFunc) ObserveTick(t Tick) error { return fn(t) }

// Summary describes a finished run.
type Summary struct {
	Ticks     int           `json:"ticks"`
	Arrivals  int           `json:"arrivals"`
	FinalPose geometry.Pose `json:"final_pose"`
	Distance  float64       `json:"distance"`
}

// Runner owns the tick loop for one agent in one field. It is the only writer
// of the agent's pose and the field's active target.
type Runner struct {
	agent     *planner.Agent
	field     *field.Field
	cfg       Config
	limiter   *rate.Limiter
	observers []Observer
	logger    *zap.Logger

	cmd     planner.Command
	summary Summary
}

// NewRunner validates cfg and prepares a run starting from the zero command.
func NewRunner(agent *planner.Agent, fld *field.Field, cfg Config, logger *zap.Logger, observers ...Observer) (*Runner, error) {
	if agent == nil || fld == nil {
		return nil, errors.New("sim: agent and field are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Runner{
		agent:     agent,
		field:     fld,
		cfg:       cfg,
		observers: observers,
		logger:    logger,
	}
	if cfg.TickRate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.TickRate), 1)
	}
	r.summary.FinalPose = agent.Pose()
	return r, nil
}

// Command returns the command chosen by the latest tick.
func (r *Runner) Command() planner.Command { return r.cmd }

// Summary returns the progress of the run so far.
func (r *Runner) Summary() Summary { return r.summary }

// Step runs one full control tick.
func (r *Runner) Step() Tick {
	from := r.agent.Pose()

	r.cmd = r.agent.Plan(r.cmd, r.cfg.DT, r.field, r.cfg.Weights, r.cfg.Lookahead)
	next := r.agent.Integrate(r.cmd, r.cfg.DT)
	r.agent.Advance(next)
	arrived := r.agent.CheckArrival(r.field)

	tick := Tick{
		Index:       r.summary.Ticks,
		Command:     r.cmd,
		Pose:        next,
		TargetIndex: r.field.TargetIndex(),
		Arrived:     arrived,
		Candidates:  r.agent.Candidates(),
		From:        from,
	}

	r.summary.Ticks++
	r.summary.Distance += from.Distance(next)
	r.summary.FinalPose = next
	if arrived {
		r.summary.Arrivals++
		r.logger.Info("Target reached",
			zap.Int("tick", tick.Index),
			zap.Int("next_target", tick.TargetIndex),
		)
	}
	r.logger.Debug("Tick",
		zap.Int("tick", tick.Index),
		zap.Float64("left", r.cmd.Left),
		zap.Float64("right", r.cmd.Right),
		zap.Int("candidates", len(tick.Candidates)),
	)
	return tick
}

// Run executes up to ticks control steps, or runs until ctx is done when
// ticks is not positive. A tick is never interrupted; cancellation is
// observed between ticks and returned as ctx.Err().
func (r *Runner) Run(ctx context.Context, ticks int) (Summary, error) {
	for i := 0; ticks <= 0 || i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return r.summary, err
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return r.summary, ctxErr
				}
				return r.summary, fmt.Errorf("sim: pacing tick %d: %w", i, err)
			}
		}

		tick := r.Step()
		for _, obs := range r.observers {
			if err := obs.ObserveTick(tick); err != nil {
				if errors.Is(err, ErrStop) {
					r.logger.Debug("Run stopped by observer", zap.Int("tick", tick.Index))
					return r.summary, nil
				}
				return r.summary, fmt.Errorf("sim: observer at tick %d: %w", tick.Index, err)
			}
		}
	}
	return r.summary, nil
}
