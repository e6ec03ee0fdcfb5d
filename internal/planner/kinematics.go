package planner

import (
	"math"

	"github.com/Rocky14683/dwa-visualizer/internal/geometry"
	"gonum.org/v1/gonum/floats/scalar"
)

// velocityPrecision is the number of decimals wheel velocities are rounded to
// before the straight/rotate/arc branch is chosen.
const velocityPrecision = 3

// Command is a pair of wheel velocities.
type Command struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Predict integrates the differential-drive model from pose for dt seconds.
// halfTrack is the distance from the agent's centre to each wheel.
//
// Equal wheel speeds translate along the heading, opposite speeds rotate in
// place, and anything else follows a circular arc. The branch is decided on
// velocities rounded to velocityPrecision decimals; the arc itself uses the
// exact values.
func Predict(pose geometry.Pose, halfTrack float64, cmd Command, dt float64) (geometry.Pose, Motion) {
	left := scalar.Round(cmd.Left, velocityPrecision)
	right := scalar.Round(cmd.Right, velocityPrecision)

	next := pose
	switch {
	case left == right:
		dist := left * dt
		next.Position = pose.Position.Add(pose.Heading().Scale(dist))
		return next, Translation{Distance: dist}

	case left == -right:
		next.Orientation = pose.Orientation + (left-right)*dt/(2*halfTrack)
		return next, Rotation{}
	}

	theta := pose.Orientation
	r := halfTrack * (cmd.Left + cmd.Right) / (cmd.Right - cmd.Left)
	dTheta := (cmd.Right - cmd.Left) * dt / (2 * halfTrack)

	next.Position.X += r * (math.Sin(theta+dTheta) - math.Sin(theta))
	next.Position.Y -= r * (math.Cos(theta+dTheta) - math.Cos(theta))
	next.Orientation = theta + dTheta

	start := theta + math.Pi/2
	if r > 0 {
		start -= math.Pi
	}
	return next, Arc{Radius: r, Start: start, Stop: start + dTheta}
}
