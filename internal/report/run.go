// Package report records simulation runs and exports them as JSON.
package report

import (
	"sync"
	"time"

	"github.com/Rocky14683/dwa-visualizer/internal/field"
	"github.com/Rocky14683/dwa-visualizer/internal/geometry"
	"github.com/Rocky14683/dwa-visualizer/internal/planner"
	"github.com/Rocky14683/dwa-visualizer/internal/sim"
)

// Pose is the flat JSON form of a geometry.Pose.
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

func poseOf(p geometry.Pose) Pose {
	return Pose{X: p.Position.X, Y: p.Position.Y, Heading: p.Orientation}
}

// Motion is the flat JSON form of a planner.Motion. Only the fields that
// belong to Kind are set.
type Motion struct {
	Kind     planner.MotionKind `json:"kind"`
	Distance float64            `json:"distance,omitempty"`
	Radius   float64            `json:"radius,omitempty"`
	Start    float64            `json:"start,omitempty"`
	Stop     float64            `json:"stop,omitempty"`
}

func motionOf(m planner.Motion) Motion {
	switch mv := m.(type) {
	case planner.Translation:
		return Motion{Kind: planner.KindTranslation, Distance: mv.Distance}
	case planner.Arc:
		return Motion{Kind: planner.KindArc, Radius: mv.Radius, Start: mv.Start, Stop: mv.Stop}
	}
	return Motion{Kind: m.Kind()}
}

// Frame is one recorded tick.
type Frame struct {
	Index       int             `json:"index"`
	Command     planner.Command `json:"command"`
	Pose        Pose            `json:"pose"`
	TargetIndex int             `json:"target"`
	Arrived     bool            `json:"arrived,omitempty"`
	Candidates  []Motion        `json:"candidates,omitempty"`
}

// Summary mirrors sim.Summary with a flat final pose.
type Summary struct {
	Ticks     int     `json:"ticks"`
	Arrivals  int     `json:"arrivals"`
	FinalPose Pose    `json:"final_pose"`
	Distance  float64 `json:"distance"`
}

// Run is the exported record of one simulation.
type Run struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Settings   any              `json:"settings,omitempty"`
	Start      Pose             `json:"start"`
	Obstacles  []field.Obstacle `json:"obstacles"`
	Target     int              `json:"initial_target"`
	Frames     []Frame          `json:"frames"`
	Summary    Summary          `json:"summary"`
}

// Recorder is a sim.Observer that keeps every tick of a run. It is safe for
// concurrent use.
type Recorder struct {
	mu                sync.Mutex
	run               Run
	includeCandidates bool
	now               func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithCandidates also records the candidate motions of every tick.
func WithCandidates() RecorderOption {
	return func(r *Recorder) { r.includeCandidates = true }
}

// WithSettings attaches the effective settings to the run record.
func WithSettings(settings any) RecorderOption {
	return func(r *Recorder) { r.run.Settings = settings }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder snapshots the starting state of a run.
func NewRecorder(runID string, start geometry.Pose, f *field.Field, opts ...RecorderOption) *Recorder {
	r := &Recorder{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	r.run.RunID = runID
	r.run.StartedAt = r.now().UTC()
	r.run.Start = poseOf(start)
	r.run.Obstacles = f.Obstacles()
	r.run.Target = f.TargetIndex()
	r.run.Frames = []Frame{}
	return r
}

// ObserveTick appends tick to the record.
func (r *Recorder) ObserveTick(tick sim.Tick) error {
	frame := Frame{
		Index:       tick.Index,
		Command:     tick.Command,
		Pose:        poseOf(tick.Pose),
		TargetIndex: tick.TargetIndex,
		Arrived:     tick.Arrived,
	}
	if r.includeCandidates && len(tick.Candidates) > 0 {
		frame.Candidates = make([]Motion, len(tick.Candidates))
		for i, m := range tick.Candidates {
			frame.Candidates[i] = motionOf(m)
		}
	}

	r.mu.Lock()
	r.run.Frames = append(r.run.Frames, frame)
	r.mu.Unlock()
	return nil
}

// Finish stamps the run with its summary and returns a copy of the record.
func (r *Recorder) Finish(s sim.Summary) Run {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.run.FinishedAt = r.now().UTC()
	r.run.Summary = Summary{
		Ticks:     s.Ticks,
		Arrivals:  s.Arrivals,
		FinalPose: poseOf(s.FinalPose),
		Distance:  s.Distance,
	}
	out := r.run
	out.Frames = append([]Frame(nil), r.run.Frames...)
	out.Obstacles = append([]field.Obstacle(nil), r.run.Obstacles...)
	return out
}
