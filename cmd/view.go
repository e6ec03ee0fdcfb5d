package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rocky14683/dwa-visualizer/internal/observability"
	"github.com/Rocky14683/dwa-visualizer/internal/sim"
	"github.com/Rocky14683/dwa-visualizer/internal/view"
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// openScreen is swapped for a simulation screen in tests.
var openScreen = view.Open

func newViewCmd() *cobra.Command {
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Watch the planner live in the terminal",
		Long: `Draw the agent, the obstacles in play, the trail and the candidate
motions of every tick in the terminal. Press q, Esc or Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}

			runID := uuid.New().String()
			logger := observability.ForRun(runID)

			// Core components stay quiet while the screen owns the terminal.
			w, err := newWorld(cfg, zap.NewNop())
			if err != nil {
				return err
			}

			screen, err := openScreen()
			if err != nil {
				return fmt.Errorf("failed to open terminal: %w", err)
			}
			screen.SetStyle(tcell.StyleDefault)
			term := view.NewTerminal(screen, w.agent, w.field,
				float64(cfg.Field().Width), float64(cfg.Field().Height), zap.NewNop())
			term.Start()

			runner, err := sim.NewRunner(w.agent, w.field, cfg.RunConfig(), zap.NewNop(), term)
			if err != nil {
				term.Close()
				return fmt.Errorf("failed to create runner: %w", err)
			}

			summary, runErr := runner.Run(ctx, cfg.Sim().Ticks)
			term.Close()

			logger.Info("View closed",
				zap.Int64("seed", w.seed),
				zap.Int("ticks", summary.Ticks),
				zap.Int("arrivals", summary.Arrivals),
				zap.Float64("distance", summary.Distance),
			)
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return fmt.Errorf("view failed: %w", runErr)
			}
			return nil
		},
	}

	viewCmd.Flags().Int("ticks", 2000, "stop after this many ticks (0 = until quit)")
	viewCmd.Flags().Int64("seed", 0, "random seed for the obstacle field (0 = time based)")
	viewCmd.Flags().Float64("tick-rate", 60, "ticks per second")
	viewCmd.Flags().Int("obstacles", 20, "number of obstacles to generate")
	return viewCmd
}
