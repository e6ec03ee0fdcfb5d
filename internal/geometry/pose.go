package geometry

import "math"

// Pose is a position plus an orientation in radians. The orientation is not
// normalised; it accumulates every turn the agent makes.
type Pose struct {
	Position    Point   `json:"position"`
	Orientation float64 `json:"orientation"`
}

// NewPose builds a pose from raw coordinates.
func NewPose(x, y, orientation float64) Pose {
	return Pose{Position: Point{X: x, Y: y}, Orientation: orientation}
}

// Point returns the position component of the pose.
func (p Pose) Point() Point { return p.Position }

// Distance returns the Euclidean distance between the positions of two poses.
func (p Pose) Distance(other Pose) float64 {
	return p.Position.Distance(other.Position)
}

// Bearing returns the direction from p's position towards other's position.
func (p Pose) Bearing(other Pose) float64 {
	return p.Position.Bearing(other.Position)
}

// Heading returns the unit vector the pose is facing.
func (p Pose) Heading() Point {
	return Point{X: math.Cos(p.Orientation), Y: math.Sin(p.Orientation)}
}
