// Package render turns planner state into drawable geometry and PNG plots.
package render

import (
	"math"

	"github.com/Rocky14683/dwa-visualizer/internal/field"
	"github.com/Rocky14683/dwa-visualizer/internal/geometry"
	"github.com/Rocky14683/dwa-visualizer/internal/planner"
	"github.com/Rocky14683/dwa-visualizer/internal/sim"
	"gonum.org/v1/gonum/floats"
)

// DefaultSteps is the number of segments used to approximate curves.
const DefaultSteps = 24

// Trace samples a predicted motion into a polyline, starting at the position
// of the pose it was predicted from. Rotations have no extent and yield nil.
func Trace(from geometry.Pose, m planner.Motion, steps int) []geometry.Point {
	if steps < 1 {
		steps = 1
	}

	switch mv := m.(type) {
	case planner.Translation:
		end := from.Position.Add(from.Heading().Scale(mv.Distance))
		return []geometry.Point{from.Position, end}

	case planner.Arc:
		sin, cos := math.Sincos(from.Orientation)
		centre := from.Position.Add(geometry.Point{X: -sin, Y: cos}.Scale(mv.Radius))
		return sweep(centre, math.Abs(mv.Radius), mv.Start, mv.Stop, steps)
	}
	return nil
}

// Circle approximates the outline of a circle with steps segments.
func Circle(centre geometry.Point, radius float64, steps int) []geometry.Point {
	if steps < 3 {
		steps = 3
	}
	return sweep(centre, radius, 0, 2*math.Pi, steps)
}

func sweep(centre geometry.Point, radius, from, to float64, steps int) []geometry.Point {
	angles := floats.Span(make([]float64, steps+1), from, to)
	pts := make([]geometry.Point, len(angles))
	for i, a := range angles {
		pts[i] = centre.Polar(radius, a)
	}
	return pts
}

// Scene is everything a renderer draws for one tick.
type Scene struct {
	// Obstacles are the obstacles from the active target onward, target included.
	Obstacles   []field.Obstacle
	Target      field.Obstacle
	Agent       geometry.Pose
	AgentRadius float64
	History     []geometry.Pose
	// From is the pose the candidates were projected from.
	From       geometry.Pose
	Candidates []planner.Motion
}

// SceneOf captures the drawable state after tick.
func SceneOf(tick sim.Tick, a *planner.Agent, f *field.Field) Scene {
	return Scene{
		Obstacles:   f.InPlay(),
		Target:      f.Target(),
		Agent:       a.Pose(),
		AgentRadius: a.Radius(),
		History:     a.History(),
		From:        tick.From,
		Candidates:  tick.Candidates,
	}
}

// Traces samples every candidate in the scene, skipping those with no extent.
func (s Scene) Traces(steps int) [][]geometry.Point {
	out := make([][]geometry.Point, 0, len(s.Candidates))
	for _, m := range s.Candidates {
		if pts := Trace(s.From, m, steps); len(pts) > 0 {
			out = append(out, pts)
		}
	}
	return out
}

// Bounds returns the smallest axis-aligned box holding every obstacle, the
// agent and its history.
func (s Scene) Bounds() (min, max geometry.Point) {
	xs := []float64{s.Agent.Position.X - s.AgentRadius, s.Agent.Position.X + s.AgentRadius}
	ys := []float64{s.Agent.Position.Y - s.AgentRadius, s.Agent.Position.Y + s.AgentRadius}
	addObstacle := func(o field.Obstacle) {
		xs = append(xs, o.Center.X-o.Radius, o.Center.X+o.Radius)
		ys = append(ys, o.Center.Y-o.Radius, o.Center.Y+o.Radius)
	}
	addObstacle(s.Target)
	for _, o := range s.Obstacles {
		addObstacle(o)
	}
	for _, p := range s.History {
		xs = append(xs, p.Position.X)
		ys = append(ys, p.Position.Y)
	}
	return geometry.Point{X: floats.Min(xs), Y: floats.Min(ys)},
		geometry.Point{X: floats.Max(xs), Y: floats.Max(ys)}
}
