package view

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Rocky14683/dwa-visualizer/internal/field"
	"github.com/Rocky14683/dwa-visualizer/internal/geometry"
	"github.com/Rocky14683/dwa-visualizer/internal/planner"
	"github.com/Rocky14683/dwa-visualizer/internal/sim"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	return screen
}

func newWorld(t *testing.T) (*planner.Agent, *field.Field) {
	t.Helper()
	a, err := planner.NewAgent(planner.Config{Radius: 5, MaxVelocity: 20, MaxAcceleration: 5, Start: geometry.NewPose(50, 50, 0)})
	require.NoError(t, err)
	f, err := field.New([]field.Obstacle{
		field.NewObstacle(10, 10, 5),
		field.NewObstacle(90, 80, 6),
		field.NewObstacle(20, 90, 6),
	}, 1, nil, nil)
	require.NoError(t, err)
	return a, f
}

func row(screen tcell.Screen, y int) string {
	cols, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < cols; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func screenText(screen tcell.Screen) string {
	_, rows := screen.Size()
	var b strings.Builder
	for y := 0; y < rows; y++ {
		b.WriteString(row(screen, y))
		b.WriteByte('\n')
	}
	return b.String()
}

func TestTerminal_DrawsScene(t *testing.T) {
	screen := newSimScreen(t)
	defer screen.Fini()
	a, f := newWorld(t)

	r, err := sim.NewRunner(a, f, sim.Config{DT: 0.1, Lookahead: 10, Weights: planner.Weights{FwdWeight: 1}}, nil)
	require.NoError(t, err)
	tick := r.Step()

	term := NewTerminal(screen, a, f, 100, 100, zaptest.NewLogger(t))
	require.NoError(t, term.ObserveTick(tick))

	assert.Contains(t, row(screen, 0), "tick 0 | target 1 | arrivals 0")

	text := screenText(screen)
	assert.Contains(t, text, string(runeAgent))
	assert.Contains(t, text, string(runeTarget))
	assert.Contains(t, text, string(runeObstacle))
	assert.Contains(t, text, string(runeCandidate))
}

func TestTerminal_SkipsObstaclesBeforeTarget(t *testing.T) {
	screen := newSimScreen(t)
	defer screen.Fini()
	a, f := newWorld(t)

	term := NewTerminal(screen, a, f, 100, 100, nil)
	term.Draw(sim.Tick{From: a.Pose()})

	// Obstacle 0 at (10, 10) sits before the target and is not drawn.
	col, line, ok := term.cell(geometry.Point{X: 15, Y: 10})
	require.True(t, ok)
	r, _, _, _ := screen.GetContent(col, line)
	assert.NotEqual(t, runeObstacle, r)

	col, line, ok = term.cell(geometry.Point{X: 26, Y: 90})
	require.True(t, ok)
	r, _, _, _ = screen.GetContent(col, line)
	assert.Equal(t, runeObstacle, r)
}

func TestTerminal_CellMapping(t *testing.T) {
	screen := newSimScreen(t)
	defer screen.Fini()
	a, f := newWorld(t)
	term := NewTerminal(screen, a, f, 100, 100, nil)

	tests := []struct {
		p        geometry.Point
		col, row int
		ok       bool
	}{
		{geometry.Point{X: 0, Y: 0}, 0, 1, true},
		{geometry.Point{X: 100, Y: 100}, 79, 23, true},
		{geometry.Point{X: 50, Y: 50}, 39, 12, true},
		{geometry.Point{X: -1, Y: 50}, 0, 0, false},
		{geometry.Point{X: 50, Y: 101}, 0, 0, false},
	}
	for _, tt := range tests {
		col, line, ok := term.cell(tt.p)
		assert.Equal(t, tt.ok, ok, "%+v", tt.p)
		if tt.ok {
			assert.Equal(t, tt.col, col, "col of %+v", tt.p)
			assert.Equal(t, tt.row, line, "row of %+v", tt.p)
		}
	}
}

func TestTerminal_QuitKeyStopsRun(t *testing.T) {
	for _, key := range []struct {
		name string
		key  tcell.Key
		r    rune
	}{
		{"q", tcell.KeyRune, 'q'},
		{"escape", tcell.KeyEscape, 0},
		{"ctrl-c", tcell.KeyCtrlC, 0},
	} {
		t.Run(key.name, func(t *testing.T) {
			screen := newSimScreen(t)
			a, f := newWorld(t)
			term := NewTerminal(screen, a, f, 100, 100, nil)
			term.Start()
			defer term.Close()

			r, err := sim.NewRunner(a, f, sim.Config{DT: 0.1, Lookahead: 10, TickRate: 200}, nil, term)
			require.NoError(t, err)

			screen.InjectKey(key.key, key.r, tcell.ModNone)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			summary, err := r.Run(ctx, 0)
			require.NoError(t, err)
			assert.Greater(t, summary.Ticks, 0)
		})
	}
}

func TestTerminal_IgnoresOtherKeys(t *testing.T) {
	screen := newSimScreen(t)
	a, f := newWorld(t)
	term := NewTerminal(screen, a, f, 100, 100, nil)
	term.Start()

	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, term.ObserveTick(sim.Tick{From: a.Pose()}))

	term.Close()
}
