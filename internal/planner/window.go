package planner

import (
	"math"

	"github.com/Rocky14683/dwa-visualizer/internal/geometry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// windowSize is the number of samples per wheel: slow down, hold, speed up.
const windowSize = 3

// Weights tunes the planning cost function.
type Weights struct {
	// ObstacleWeight multiplies how far a candidate intrudes into SafeDistance.
	ObstacleWeight float64 `json:"obstacle_weight"`
	// SafeDistance is the clearance below which the obstacle penalty applies.
	SafeDistance float64 `json:"safe_distance"`
	// FwdWeight multiplies the progress a candidate makes towards the target.
	FwdWeight float64 `json:"fwd_weight"`
}

// candidate is one sample of the dynamic window and its evaluation.
type candidate struct {
	cmd      Command
	feasible bool
	motion   Motion
	score    float64
}

// window returns the 3x3 commands reachable from prev within one tick, in
// (left, right) row-major order.
func (a *Agent) window(prev Command, dt float64) [windowSize * windowSize]candidate {
	step := a.maxAcceleration * dt
	lefts := [windowSize]float64{prev.Left - step, prev.Left, prev.Left + step}
	rights := [windowSize]float64{prev.Right - step, prev.Right, prev.Right + step}

	var out [windowSize * windowSize]candidate
	for i, l := range lefts {
		for j, r := range rights {
			c := &out[i*windowSize+j]
			c.cmd = Command{Left: l, Right: r}
			c.feasible = math.Abs(l) <= a.maxVelocity && math.Abs(r) <= a.maxVelocity
		}
	}
	return out
}

// score projects c over horizon seconds and rates the resulting pose.
func (a *Agent) score(c *candidate, horizon float64, f Field, target geometry.Point, w Weights) {
	projected, motion := a.Predict(c.cmd, horizon)
	c.motion = motion

	progress := a.pose.Position.Distance(target) - projected.Position.Distance(target)
	benefit := w.FwdWeight * progress

	var penalty float64
	if clearance := f.NearestDistance(projected.Position); clearance < w.SafeDistance {
		penalty = w.ObstacleWeight * (w.SafeDistance - clearance)
	}
	c.score = benefit - penalty
}

// Plan picks the next wheel command from the dynamic window around prev.
//
// Each reachable command whose wheels stay within the speed limit is
// projected lookahead ticks of dt ahead and scored. The highest score wins;
// ties keep the command found first. When no command is feasible the zero
// command is returned. The projected motions are kept for Candidates.
func (a *Agent) Plan(prev Command, dt float64, f Field, w Weights, lookahead int) Command {
	a.candidates = a.candidates[:0]

	horizon := dt * float64(lookahead)
	target := f.Target().Center
	samples := a.window(prev, dt)

	if a.concurrency > 1 {
		a.scoreConcurrently(&samples, horizon, f, target, w)
	} else {
		for i := range samples {
			if samples[i].feasible {
				a.score(&samples[i], horizon, f, target, w)
			}
		}
	}

	var best Command
	bestScore := -math.MaxFloat64
	found := false
	for i := range samples {
		c := &samples[i]
		if !c.feasible {
			continue
		}
		a.candidates = append(a.candidates, c.motion)
		if c.score > bestScore {
			bestScore = c.score
			best = c.cmd
			found = true
		}
	}

	if !found {
		a.logger.Debug("No feasible command in window, stopping",
			zap.Float64("prev_left", prev.Left),
			zap.Float64("prev_right", prev.Right),
		)
	}
	return best
}

// scoreConcurrently evaluates the feasible samples on a bounded worker group.
// Each goroutine writes only its own slot, so selection afterwards sees the
// same values in the same order as the sequential path.
func (a *Agent) scoreConcurrently(samples *[windowSize * windowSize]candidate, horizon float64, f Field, target geometry.Point, w Weights) {
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i := range samples {
		if !samples[i].feasible {
			continue
		}
		c := &samples[i]
		g.Go(func() error {
			a.score(c, horizon, f, target, w)
			return nil
		})
	}
	// score never fails; Wait is only a barrier.
	_ = g.Wait()
}
