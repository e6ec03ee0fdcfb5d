package cmd

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// simulatedScreen returns an openScreen replacement whose first input is key.
func simulatedScreen(t *testing.T, key tcell.Key, r rune) func() (tcell.Screen, error) {
	t.Helper()
	return func() (tcell.Screen, error) {
		screen := tcell.NewSimulationScreen("UTF-8")
		if err := screen.Init(); err != nil {
			return nil, err
		}
		screen.SetSize(80, 24)
		screen.InjectKey(key, r, tcell.ModNone)
		return screen, nil
	}
}

func TestViewCmd_QuitsOnKey(t *testing.T) {
	resetForTest(t)
	openScreen = simulatedScreen(t, tcell.KeyRune, 'q')

	_, err := executeCommand(t, "view", "--seed", "5", "--ticks", "0", "--tick-rate", "500")
	require.NoError(t, err)
}

func TestViewCmd_StopsAfterTicks(t *testing.T) {
	resetForTest(t)
	// An ignored key leaves the run to finish on its tick budget.
	openScreen = simulatedScreen(t, tcell.KeyRune, 'x')

	_, err := executeCommand(t, "view", "--seed", "5", "--ticks", "10", "--tick-rate", "0")
	require.NoError(t, err)
}

func TestViewCmd_ScreenFailure(t *testing.T) {
	resetForTest(t)
	openScreen = func() (tcell.Screen, error) { return nil, errors.New("no tty") }

	_, err := executeCommand(t, "view", "--ticks", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open terminal")
}
