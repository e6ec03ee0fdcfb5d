// File: cmd/dwasim/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/Rocky14683/dwa-visualizer/cmd"
	"github.com/Rocky14683/dwa-visualizer/internal/observability"
)

const panicLogFile = "panic.log"

const banner = `
   .--.      dwasim %s
  ( () )     dynamic window planner
   '--'      type a command (run, view, version), or exit
`

// Swapped in tests.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
	stdin       io.Reader = os.Stdin
	stdout      io.Writer = os.Stdout
	stderr      io.Writer = os.Stderr

	// commandContext scopes signal handling to one interactive command, so
	// an interrupt stops that command and not the rest of the session.
	commandContext = func(parent context.Context) (context.Context, context.CancelFunc) {
		return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	}
)

func main() {
	defer handlePanic()

	if len(os.Args) > 1 {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cmd.Execute(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				osExit(0)
			} else {
				osExit(1)
			}
		}
		return
	}

	if err := interactive(context.Background(), stdin); err != nil {
		fmt.Fprintln(stderr, "Error reading from stdin:", err)
		osExit(1)
	}
}

// interactive reads commands line by line until EOF, "exit" or ctx is done.
func interactive(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(stdout, banner, cmd.Version)
	scanner := bufio.NewScanner(in)

	for ctx.Err() == nil {
		fmt.Fprint(stdout, "dwasim > ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		executeInteractiveCommand(ctx, line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Fprintln(stdout, "Exiting dwasim.")
	return nil
}

// executeInteractiveCommand runs one line on a fresh command tree so flags
// never leak between runs. A panicking command does not end the session.
func executeInteractiveCommand(parent context.Context, line string) {
	ctx, stop := commandContext(parent)
	defer stop()

	rootCmd := cmd.NewRootCommand()
	rootCmd.SetArgs(strings.Fields(line))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "Error: command panicked: %v\n", r)
		}
	}()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
}

// handlePanic records a crash in panicLogFile and exits non-zero.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()

	panicMessage := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := osWriteFile(panicLogFile, []byte(panicMessage), 0o644); err != nil {
		fmt.Fprintf(stderr, "CRITICAL: Failed to write panic log: %v\n", err)
		fmt.Fprintf(stderr, "Panic details:\n%s\n", panicMessage)
		osExit(1)
		return
	}

	fmt.Fprintf(stderr, "\ndwasim crashed. Details logged to %s\n", panicLogFile)
	osExit(2)
}
