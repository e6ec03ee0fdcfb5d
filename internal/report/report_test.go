package report

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Rocky14683/dwa-visualizer/internal/field"
	"github.com/Rocky14683/dwa-visualizer/internal/geometry"
	"github.com/Rocky14683/dwa-visualizer/internal/planner"
	"github.com/Rocky14683/dwa-visualizer/internal/sim"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

// recordRun drives a short run through a Recorder.
func recordRun(t *testing.T, ticks int, opts ...RecorderOption) (Run, *field.Field) {
	t.Helper()
	start := geometry.NewPose(0, 0, 0)
	a, err := planner.NewAgent(planner.Config{Radius: 5, MaxVelocity: 20, MaxAcceleration: 5, Start: start})
	require.NoError(t, err)
	f, err := field.New([]field.Obstacle{
		field.NewObstacle(8, 0, 5),
		field.NewObstacle(200, 50, 5),
	}, 0, rand.New(rand.NewSource(5)), nil)
	require.NoError(t, err)

	rec := NewRecorder(uuid.NewString(), start, f, append(opts, WithClock(fixedClock))...)
	r, err := sim.NewRunner(a, f, sim.Config{DT: 0.1, Lookahead: 10, Weights: planner.Weights{FwdWeight: 1}}, nil, rec)
	require.NoError(t, err)

	summary, err := r.Run(t.Context(), ticks)
	require.NoError(t, err)
	return rec.Finish(summary), f
}

func TestRecorder_CapturesRun(t *testing.T) {
	run, f := recordRun(t, 30)

	_, err := uuid.Parse(run.RunID)
	assert.NoError(t, err)
	assert.Equal(t, fixedTime, run.StartedAt)
	assert.Equal(t, fixedTime, run.FinishedAt)
	assert.Equal(t, Pose{}, run.Start)
	assert.Equal(t, f.Obstacles(), run.Obstacles)
	assert.Equal(t, 0, run.Target)

	require.Len(t, run.Frames, 30)
	for i, fr := range run.Frames {
		assert.Equal(t, i, fr.Index)
		assert.Empty(t, fr.Candidates, "candidates are opt-in")
	}
	assert.Equal(t, 30, run.Summary.Ticks)
	assert.Equal(t, run.Frames[29].Pose, run.Summary.FinalPose)

	// The first target overlaps the agent almost immediately.
	assert.True(t, run.Frames[0].Arrived)
	assert.GreaterOrEqual(t, run.Summary.Arrivals, 1)
}

func TestRecorder_WithCandidates(t *testing.T) {
	run, _ := recordRun(t, 2, WithCandidates())

	require.Len(t, run.Frames, 2)
	first := run.Frames[0].Candidates
	require.Len(t, first, 9)
	// From rest the window is left-major starting at (-0.5, -0.5).
	assert.Equal(t, Motion{Kind: planner.KindTranslation, Distance: -0.5}, first[0])
	assert.Equal(t, Motion{Kind: planner.KindRotation}, first[2])
	assert.Equal(t, planner.KindArc, first[1].Kind)
	assert.NotZero(t, first[1].Radius)
}

func TestRecorder_FinishReturnsCopy(t *testing.T) {
	f, err := field.New([]field.Obstacle{field.NewObstacle(1, 1, 1)}, 0, nil, nil)
	require.NoError(t, err)
	rec := NewRecorder("id", geometry.Pose{}, f)
	require.NoError(t, rec.ObserveTick(sim.Tick{Index: 0}))

	run := rec.Finish(sim.Summary{Ticks: 1})
	run.Frames[0].Index = 99

	require.NoError(t, rec.ObserveTick(sim.Tick{Index: 1}))
	again := rec.Finish(sim.Summary{Ticks: 2})
	require.Len(t, again.Frames, 2)
	assert.Equal(t, 0, again.Frames[0].Index)
}

func TestMotionOf(t *testing.T) {
	assert.Equal(t, Motion{Kind: planner.KindTranslation, Distance: 3}, motionOf(planner.Translation{Distance: 3}))
	assert.Equal(t, Motion{Kind: planner.KindRotation}, motionOf(planner.Rotation{}))
	assert.Equal(t, Motion{Kind: planner.KindArc, Radius: -2, Start: 1, Stop: 1.5}, motionOf(planner.Arc{Radius: -2, Start: 1, Stop: 1.5}))
}

func TestWriteAndReadJSON(t *testing.T) {
	run, _ := recordRun(t, 5, WithCandidates(), WithSettings(map[string]any{"dt": 0.1}))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, run))
	assert.Contains(t, buf.String(), `"run_id": "`+run.RunID+`"`)
	assert.Contains(t, buf.String(), `"kind": "translation"`)
	assert.Contains(t, buf.String(), `"center": {`)

	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, run.Frames, got.Frames)
	assert.Equal(t, run.Obstacles, got.Obstacles)
	assert.Equal(t, run.Summary, got.Summary)
	assert.Equal(t, map[string]any{"dt": 0.1}, got.Settings)
}

func TestReadJSON_Invalid(t *testing.T) {
	_, err := ReadJSON(bytes.NewBufferString("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode run log")
}

func TestSave(t *testing.T) {
	run, _ := recordRun(t, 3)
	path := filepath.Join(t.TempDir(), "runs", "nested", "run.json")

	require.NoError(t, Save(path, run))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := ReadJSON(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, run.Summary, got.Summary)
}

func TestOpen_Stdout(t *testing.T) {
	for _, path := range []string{"", "-"} {
		w, err := Open(path)
		require.NoError(t, err)
		_, isNop := w.(*nopWriteCloser)
		assert.True(t, isNop, "path %q should map to stdout", path)
		assert.NoError(t, w.Close())
	}
}

func TestOpen_Failure(t *testing.T) {
	// A file where a directory is expected cannot be created.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := Open(filepath.Join(blocker, "run.json"))
	assert.Error(t, err)
}
