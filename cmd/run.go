package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/Rocky14683/dwa-visualizer/internal/config"
	"github.com/Rocky14683/dwa-visualizer/internal/field"
	"github.com/Rocky14683/dwa-visualizer/internal/observability"
	"github.com/Rocky14683/dwa-visualizer/internal/planner"
	"github.com/Rocky14683/dwa-visualizer/internal/render"
	"github.com/Rocky14683/dwa-visualizer/internal/report"
	"github.com/Rocky14683/dwa-visualizer/internal/sim"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
)

// plotSize is the edge length of the square PNG written by --plot.
const plotSize = 8 * vg.Inch

// world is everything one simulation needs, built from the config.
type world struct {
	seed  int64
	field *field.Field
	agent *planner.Agent
}

// newWorld generates the field and the agent. A zero seed is replaced by
// the current time so every run differs; the seed actually used is written
// back to cfg.
func newWorld(cfg config.Interface, logger *zap.Logger) (*world, error) {
	seed := cfg.Sim().Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		cfg.SetSimSeed(seed)
	}
	rng := rand.New(rand.NewSource(seed))

	fld, err := field.Generate(cfg.GenerateConfig(), rng, logger.Named("field"))
	if err != nil {
		return nil, fmt.Errorf("failed to generate field: %w", err)
	}
	agent, err := planner.NewAgent(cfg.PlannerConfig(),
		planner.WithLogger(logger.Named("planner")),
		planner.WithConcurrency(cfg.Sim().Concurrency),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	return &world{seed: seed, field: fld, agent: agent}, nil
}

func newRunCmd() *cobra.Command {
	var candidates bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the planner headless and print a summary",
		Long: `Run the planner without a display for a fixed number of ticks.

Ticks are not paced; the run finishes as fast as the planner allows. Use
--output to keep a JSON log of every tick and --plot to render the final
state as a PNG.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runHeadless(ctx, cmd, cfg, candidates)
		},
	}

	runCmd.Flags().Int("ticks", 2000, "number of control ticks to run")
	runCmd.Flags().Int64("seed", 0, "random seed for the obstacle field (0 = time based)")
	runCmd.Flags().Int("concurrency", 1, "workers evaluating candidate commands")
	runCmd.Flags().Int("obstacles", 20, "number of obstacles to generate")
	runCmd.Flags().StringP("output", "o", "", "write the JSON run log to this file (- for stdout)")
	runCmd.Flags().String("plot", "", "write a PNG of the final tick to this file")
	runCmd.Flags().BoolVar(&candidates, "candidates", false, "include every candidate motion in the run log")
	return runCmd
}

func runHeadless(ctx context.Context, cmd *cobra.Command, cfg config.Interface, candidates bool) error {
	cfg.SetSimTickRate(0)
	runID := uuid.New().String()
	logger := observability.ForRun(runID)

	w, err := newWorld(cfg, logger)
	if err != nil {
		return err
	}

	var last sim.Tick
	observers := []sim.Observer{sim.ObserverFunc(func(t sim.Tick) error {
		last = t
		return nil
	})}

	var recorder *report.Recorder
	if cfg.Output().Path != "" {
		opts := []report.RecorderOption{report.WithSettings(cfg)}
		if candidates {
			opts = append(opts, report.WithCandidates())
		}
		recorder = report.NewRecorder(runID, w.agent.Pose(), w.field, opts...)
		observers = append(observers, recorder)
	}

	runner, err := sim.NewRunner(w.agent, w.field, cfg.RunConfig(), logger.Named("sim"), observers...)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	logger.Info("Run started",
		zap.Int64("seed", w.seed),
		zap.Int("ticks", cfg.Sim().Ticks),
		zap.Int("obstacles", w.field.Len()),
		zap.Int("target", w.field.TargetIndex()),
	)
	summary, runErr := runner.Run(ctx, cfg.Sim().Ticks)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run failed: %w", runErr)
	}

	// Partial runs still get their artifacts.
	if recorder != nil {
		if err := report.Save(cfg.Output().Path, recorder.Finish(summary)); err != nil {
			return err
		}
		logger.Info("Run log written", zap.String("path", cfg.Output().Path))
	}
	if cfg.Output().Plot != "" && summary.Ticks > 0 {
		title := fmt.Sprintf("run %s, tick %d", runID[:8], last.Index)
		if err := render.SavePNG(render.SceneOf(last, w.agent, w.field), title, cfg.Output().Plot, plotSize); err != nil {
			return err
		}
		logger.Info("Plot written", zap.String("path", cfg.Output().Plot))
	}

	logger.Info("Run finished",
		zap.Int("ticks", summary.Ticks),
		zap.Int("arrivals", summary.Arrivals),
		zap.Float64("distance", summary.Distance),
	)
	// Keep stdout clean when the run log itself goes there.
	if cfg.Output().Path != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d ticks, %d arrivals, %.1f travelled, final pose (%.1f, %.1f, %.3f)\n",
			runID, summary.Ticks, summary.Arrivals, summary.Distance,
			summary.FinalPose.Position.X, summary.FinalPose.Position.Y, summary.FinalPose.Orientation)
	}
	return runErr
}
