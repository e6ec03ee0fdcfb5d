// internal/geometry/point.go
package geometry

import "math"

// Point represents a position in the 2D plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the vector sum of p and other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the vector difference of p and other.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns p multiplied by the scalar factor.
func (p Point) Scale(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// Distance calculates the Euclidean distance between p and other.
func (p Point) Distance(other Point) float64 {
	// Use math.Hypot for numerical stability.
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Bearing returns the angle in radians of the direction from p towards other.
func (p Point) Bearing(other Point) float64 {
	return math.Atan2(other.Y-p.Y, other.X-p.X)
}

// Polar returns the point at distance r from p along angle theta.
func (p Point) Polar(r, theta float64) Point {
	return Point{X: p.X + r*math.Cos(theta), Y: p.Y + r*math.Sin(theta)}
}
