// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Rocky14683/dwa-visualizer/internal/config"
	"github.com/Rocky14683/dwa-visualizer/internal/observability"
	"github.com/Rocky14683/dwa-visualizer/internal/view"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// resetForTest provides the single source of truth for resetting test state.
func resetForTest(t *testing.T) {
	t.Helper()

	// Silence the global logger; later InitializeLogger calls are no-ops.
	observability.ResetForTest()
	observability.Initialize(config.LoggerConfig{Level: "fatal", Format: "console", ServiceName: "test"}, zapcore.AddSync(io.Discard))

	openScreen = view.Open
	t.Cleanup(func() {
		openScreen = view.Open
		observability.ResetForTest()
	})
}

// executeCommand runs a fresh command tree with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := NewRootCommand()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// createTempConfig writes content to a config file in a temp dir.
func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
