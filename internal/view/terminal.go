// Package view draws a running simulation into a terminal.
package view

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Rocky14683/dwa-visualizer/internal/field"
	"github.com/Rocky14683/dwa-visualizer/internal/geometry"
	"github.com/Rocky14683/dwa-visualizer/internal/planner"
	"github.com/Rocky14683/dwa-visualizer/internal/render"
	"github.com/Rocky14683/dwa-visualizer/internal/sim"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

var (
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	styleObstacle  = tcell.StyleDefault.Foreground(tcell.NewRGBColor(128, 128, 128))
	styleTarget    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleHistory   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleCandidate = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleAgent     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

const (
	runeObstacle  = 'o'
	runeTarget    = '#'
	runeHistory   = '.'
	runeCandidate = '+'
	runeAgent     = '@'
	runeHeading   = '*'
)

// Open creates and initialises the terminal screen.
func Open() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

// Terminal is a sim.Observer that redraws the world after every tick. The
// world rectangle [0,width]x[0,height] is stretched over the screen below a
// one-line status bar.
type Terminal struct {
	screen tcell.Screen
	agent  *planner.Agent
	field  *field.Field
	width  float64
	height float64
	logger *zap.Logger

	quit     atomic.Bool
	arrivals int
	wg       sync.WaitGroup
}

// NewTerminal binds a screen to the agent and field it depicts.
func NewTerminal(screen tcell.Screen, a *planner.Agent, f *field.Field, width, height float64, logger *zap.Logger) *Terminal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Terminal{
		screen: screen,
		agent:  a,
		field:  f,
		width:  width,
		height: height,
		logger: logger,
	}
}

// Start begins handling keyboard input. Esc, Ctrl+C and q ask the run to stop.
func (t *Terminal) Start() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					t.logger.Debug("Quit requested from terminal")
					t.quit.Store(true)
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
		}
	}()
}

// Close releases the screen and waits for the input loop to exit.
func (t *Terminal) Close() {
	t.screen.Fini()
	t.wg.Wait()
}

// ObserveTick redraws the scene, or returns sim.ErrStop once a quit key was pressed.
func (t *Terminal) ObserveTick(tick sim.Tick) error {
	if t.quit.Load() {
		return sim.ErrStop
	}
	if tick.Arrived {
		t.arrivals++
	}
	t.Draw(tick)
	return nil
}

// Draw paints one frame for tick.
func (t *Terminal) Draw(tick sim.Tick) {
	scene := render.SceneOf(tick, t.agent, t.field)
	t.screen.Clear()

	for _, o := range scene.Obstacles {
		t.plot(render.Circle(o.Center, o.Radius, render.DefaultSteps), runeObstacle, styleObstacle)
	}
	t.plot(render.Circle(scene.Target.Center, scene.Target.Radius, render.DefaultSteps), runeTarget, styleTarget)

	for _, p := range scene.History {
		t.set(p.Position, runeHistory, styleHistory)
	}
	for _, trace := range scene.Traces(render.DefaultSteps) {
		t.plot(trace, runeCandidate, styleCandidate)
	}

	t.plot(render.Circle(scene.Agent.Position, scene.AgentRadius, render.DefaultSteps), runeAgent, styleAgent)
	t.set(scene.Agent.Position.Add(scene.Agent.Heading().Scale(scene.AgentRadius)), runeHeading, styleAgent)

	t.status(fmt.Sprintf(" tick %d | target %d | arrivals %d | cmd %.2f %.2f | q to quit",
		tick.Index, tick.TargetIndex, t.arrivals, tick.Command.Left, tick.Command.Right))
	t.screen.Show()
}

func (t *Terminal) plot(pts []geometry.Point, r rune, style tcell.Style) {
	for _, p := range pts {
		t.set(p, r, style)
	}
}

// set draws r at the cell covering world point p, if it is on screen.
func (t *Terminal) set(p geometry.Point, r rune, style tcell.Style) {
	col, row, ok := t.cell(p)
	if ok {
		t.screen.SetContent(col, row, r, nil, style)
	}
}

func (t *Terminal) cell(p geometry.Point) (col, row int, ok bool) {
	cols, rows := t.screen.Size()
	rows-- // status bar
	if cols <= 0 || rows <= 0 || p.X < 0 || p.Y < 0 || p.X > t.width || p.Y > t.height {
		return 0, 0, false
	}
	col = int(p.X / t.width * float64(cols-1))
	row = 1 + int(p.Y/t.height*float64(rows-1))
	return col, row, true
}

func (t *Terminal) status(text string) {
	cols, _ := t.screen.Size()
	for x := 0; x < cols; x++ {
		t.screen.SetContent(x, 0, ' ', nil, styleStatus)
	}
	x := 0
	for _, r := range text {
		if x >= cols {
			break
		}
		t.screen.SetContent(x, 0, r, nil, styleStatus)
		x++
	}
}
