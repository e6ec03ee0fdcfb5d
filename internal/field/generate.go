package field

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// GenerateConfig describes a random field: Count obstacles of equal Radius
// scattered inside a Width x Height area so none of them crosses the border.
type GenerateConfig struct {
	Count  int
	Radius float64
	Width  int
	Height int
}

// Validate checks that the area can hold at least one obstacle.
func (c GenerateConfig) Validate() error {
	if c.Count <= 0 {
		return ErrNoObstacles
	}
	if c.Radius < 0 {
		return fmt.Errorf("field: radius must not be negative, got %g", c.Radius)
	}
	r := int(c.Radius)
	if c.Width < 2*r || c.Height < 2*r {
		return fmt.Errorf("field: %dx%d area cannot fit obstacles of radius %g", c.Width, c.Height, c.Radius)
	}
	return nil
}

// Generate scatters obstacles uniformly on integer coordinates in
// [radius, width-radius] x [radius, height-radius] and picks a random
// initial target.
func Generate(cfg GenerateConfig, rng *rand.Rand, logger *zap.Logger) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	r := int(cfg.Radius)
	obstacles := make([]Obstacle, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		x := r + rng.Intn(cfg.Width-2*r+1)
		y := r + rng.Intn(cfg.Height-2*r+1)
		obstacles = append(obstacles, NewObstacle(float64(x), float64(y), cfg.Radius))
	}

	return New(obstacles, rng.Intn(cfg.Count), rng, logger)
}
