package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/Rocky14683/dwa-visualizer/internal/geometry"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	obstacleColor  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	targetColor    = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	historyColor   = color.RGBA{R: 40, G: 90, B: 220, A: 255}
	agentColor     = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	candidateColor = color.RGBA{R: 30, G: 160, B: 60, A: 255}
)

// Plot draws the scene: obstacles in play, the target, the agent's trail and
// body, and every candidate motion of the last tick.
func (s Scene) Plot(title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	for i, o := range s.Obstacles {
		line, err := newLine(Circle(o.Center, o.Radius, DefaultSteps), obstacleColor, 1)
		if err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
		p.Add(line)
		if i == 0 {
			p.Legend.Add("obstacle", line)
		}
	}

	target, err := newLine(Circle(s.Target.Center, s.Target.Radius, DefaultSteps), targetColor, 2)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	p.Add(target)
	p.Legend.Add("target", target)

	if len(s.History) > 1 {
		trail := make([]geometry.Point, len(s.History))
		for i, pose := range s.History {
			trail[i] = pose.Position
		}
		line, err := newLine(trail, historyColor, 1)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		p.Add(line)
		p.Legend.Add("history", line)
	}

	for i, pts := range s.Traces(DefaultSteps) {
		line, err := newLine(pts, candidateColor, 0.5)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		line.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(line)
		if i == 0 {
			p.Legend.Add("candidate", line)
		}
	}

	body, err := newLine(Circle(s.Agent.Position, s.AgentRadius, DefaultSteps), agentColor, 1.5)
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	p.Add(body)
	heading, err := newLine([]geometry.Point{
		s.Agent.Position,
		s.Agent.Position.Add(s.Agent.Heading().Scale(s.AgentRadius)),
	}, agentColor, 1.5)
	if err != nil {
		return nil, fmt.Errorf("agent heading: %w", err)
	}
	p.Add(heading)
	p.Legend.Add("agent", body)

	// Equal scale on both axes so circles stay circles.
	lo, hi := s.Bounds()
	span := hi.X - lo.X
	if h := hi.Y - lo.Y; h > span {
		span = h
	}
	midX, midY := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2
	p.X.Min, p.X.Max = midX-span/2, midX+span/2
	p.Y.Min, p.Y.Max = midY-span/2, midY+span/2

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SavePNG renders the scene to a square PNG at path, creating parent
// directories as needed.
func SavePNG(s Scene, title, path string, size vg.Length) error {
	p, err := s.Plot(title)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create plot directory: %w", err)
		}
	}
	if err := p.Save(size, size, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

func newLine(pts []geometry.Point, c color.Color, width float64) (*plotter.Line, error) {
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.Color = c
	line.Width = vg.Points(width)
	return line, nil
}
