// File: cmd/dwasim/main_test.go
package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/Rocky14683/dwa-visualizer/internal/config"
	"github.com/Rocky14683/dwa-visualizer/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// resetMocks restores the original function implementations.
func resetMocks() {
	osWriteFile = os.WriteFile
	osExit = os.Exit
	stdin = os.Stdin
	stdout = os.Stdout
	stderr = os.Stderr
	commandContext = defaultCommandContext
}

var defaultCommandContext = commandContext

// silenceLogger keeps the run command's logging out of the test output.
func silenceLogger(t *testing.T) {
	t.Helper()
	observability.ResetForTest()
	observability.Initialize(config.LoggerConfig{Level: "error", Format: "json"}, zapcore.AddSync(io.Discard))
	t.Cleanup(observability.ResetForTest)
}

func TestHandlePanic(t *testing.T) {
	t.Run("writes the panic log and exits 2", func(t *testing.T) {
		defer resetMocks()

		var written string
		osWriteFile = func(name string, data []byte, _ os.FileMode) error {
			assert.Equal(t, panicLogFile, name)
			written = string(data)
			return nil
		}
		exitCode := -1
		osExit = func(code int) { exitCode = code }
		var errOut bytes.Buffer
		stderr = &errOut

		func() {
			defer handlePanic()
			panic("planner exploded")
		}()

		assert.Equal(t, 2, exitCode)
		assert.Contains(t, written, "panic: planner exploded")
		assert.Contains(t, written, "goroutine")
		assert.Contains(t, errOut.String(), panicLogFile)
	})

	t.Run("falls back to stderr when the log cannot be written", func(t *testing.T) {
		defer resetMocks()

		osWriteFile = func(string, []byte, os.FileMode) error { return errors.New("read-only") }
		exitCode := -1
		osExit = func(code int) { exitCode = code }
		var errOut bytes.Buffer
		stderr = &errOut

		func() {
			defer handlePanic()
			panic("boom")
		}()

		assert.Equal(t, 1, exitCode)
		assert.Contains(t, errOut.String(), "Failed to write panic log")
		assert.Contains(t, errOut.String(), "panic: boom")
	})

	t.Run("does nothing without a panic", func(t *testing.T) {
		defer resetMocks()
		osExit = func(int) { t.Fatal("unexpected exit") }

		func() {
			defer handlePanic()
		}()
	})
}

func TestInteractive(t *testing.T) {
	defer resetMocks()

	var out, errOut bytes.Buffer
	stdout = &out
	stderr = &errOut

	in := strings.NewReader("\nversion\nbogus\nexit\nversion\n")
	require.NoError(t, interactive(context.Background(), in))

	// One version line before exit; the command after exit never runs.
	assert.Equal(t, 1, strings.Count(out.String(), "dwasim version"))
	assert.Contains(t, out.String(), "Exiting dwasim.")
	assert.Contains(t, errOut.String(), "Error:")
}

func TestInteractive_InterruptOnlyStopsCurrentCommand(t *testing.T) {
	defer resetMocks()
	silenceLogger(t)

	var out, errOut bytes.Buffer
	stdout = &out
	stderr = &errOut

	// The first command behaves as if Ctrl+C arrived while it was running.
	calls := 0
	commandContext = func(parent context.Context) (context.Context, context.CancelFunc) {
		calls++
		ctx, cancel := context.WithCancel(parent)
		if calls == 1 {
			cancel()
		}
		return ctx, cancel
	}

	in := strings.NewReader("run --ticks 3 --seed 5 --obstacles 4\nrun --ticks 3 --seed 5 --obstacles 4\n")
	require.NoError(t, interactive(context.Background(), in))

	assert.Equal(t, 2, calls)
	assert.Contains(t, errOut.String(), context.Canceled.Error())
	assert.Contains(t, out.String(), ": 0 ticks")
	assert.Contains(t, out.String(), ": 3 ticks", "the next command must get a live context")
}

func TestInteractive_StopsWhenSessionIsDone(t *testing.T) {
	defer resetMocks()

	var out bytes.Buffer
	stdout = &out
	stderr = &bytes.Buffer{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, interactive(ctx, strings.NewReader("version\n")))
	assert.NotContains(t, out.String(), "dwasim version")
	assert.Contains(t, out.String(), "Exiting dwasim.")
}
