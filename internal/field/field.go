// Package field holds the circular obstacles the agent navigates between and
// tracks which of them is the current navigation target.
//
// A Field is built once and never grows or shrinks. The only mutable state is
// the active-target index, which changes solely through PickNewTarget.
package field

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/Rocky14683/dwa-visualizer/internal/geometry"
	"go.uber.org/zap"
)

// ErrNoObstacles is returned when a field is constructed without obstacles,
// since no active-target index could be valid.
var ErrNoObstacles = errors.New("field: at least one obstacle is required")

// Obstacle is a fixed circle in the plane.
type Obstacle struct {
	Center geometry.Point `json:"center"`
	Radius float64        `json:"radius"`
}

// NewObstacle creates an obstacle centred on (x, y).
func NewObstacle(x, y, radius float64) Obstacle {
	return Obstacle{Center: geometry.Point{X: x, Y: y}, Radius: radius}
}

// Distance returns the distance from p to the obstacle's centre.
func (o Obstacle) Distance(p geometry.Point) float64 {
	return o.Center.Distance(p)
}

// Field is an ordered collection of obstacles with one active target.
// It is not safe for concurrent mutation; the tick loop is its single writer.
type Field struct {
	obstacles []Obstacle
	target    int

	rng    *rand.Rand
	logger *zap.Logger
}

// New builds a field over a copy of obstacles with target as the initial
// active-target index. A nil rng is replaced by a time-seeded source and a nil
// logger by a no-op logger.
func New(obstacles []Obstacle, target int, rng *rand.Rand, logger *zap.Logger) (*Field, error) {
	if len(obstacles) == 0 {
		return nil, ErrNoObstacles
	}
	if target < 0 || target >= len(obstacles) {
		return nil, fmt.Errorf("field: target index %d out of range [0, %d)", target, len(obstacles))
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	owned := make([]Obstacle, len(obstacles))
	copy(owned, obstacles)

	return &Field{
		obstacles: owned,
		target:    target,
		rng:       rng,
		logger:    logger,
	}, nil
}

// Len returns the number of obstacles.
func (f *Field) Len() int { return len(f.obstacles) }

// Obstacles returns a copy of every obstacle in field order.
func (f *Field) Obstacles() []Obstacle {
	out := make([]Obstacle, len(f.obstacles))
	copy(out, f.obstacles)
	return out
}

// InPlay returns the obstacles from the active-target index onward, which are
// the ones NearestDistance considers.
func (f *Field) InPlay() []Obstacle {
	out := make([]Obstacle, len(f.obstacles)-f.target)
	copy(out, f.obstacles[f.target:])
	return out
}

// Target returns the active target.
func (f *Field) Target() Obstacle { return f.obstacles[f.target] }

// TargetIndex returns the position of the active target in field order.
func (f *Field) TargetIndex() int { return f.target }

// NearestDistance returns the smallest centre distance from p to any obstacle
// at or after the active-target index in field order. Obstacles before the
// target are ignored even when they are closer.
func (f *Field) NearestDistance(p geometry.Point) float64 {
	shortest := math.MaxFloat64
	for _, o := range f.obstacles[f.target:] {
		if d := o.Distance(p); d < shortest {
			shortest = d
		}
	}
	return shortest
}

// PickNewTarget draws a new active-target index uniformly over the whole
// field. The previous target may be picked again.
func (f *Field) PickNewTarget() {
	prev := f.target
	f.target = f.rng.Intn(len(f.obstacles))
	f.logger.Debug("Active target reselected",
		zap.Int("previous", prev),
		zap.Int("target", f.target),
	)
}
