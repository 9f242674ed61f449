package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/i474232898/co2-offset-dashboard/internal/catalog"
	"github.com/i474232898/co2-offset-dashboard/internal/common"
	"github.com/i474232898/co2-offset-dashboard/internal/compensation"
	"github.com/i474232898/co2-offset-dashboard/internal/config"
	"github.com/i474232898/co2-offset-dashboard/internal/logging"
	"github.com/i474232898/co2-offset-dashboard/internal/offset"
	"github.com/i474232898/co2-offset-dashboard/internal/tui"
)

type simulateOptions struct {
	emission  float64
	productID int64
	trees     int
	sunHours  float64
	waterFlow float64
	plain     bool
}

func newSimulateCmd() *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Animate how long each method needs to offset an emission",
		Example: `  co2-offset-dashboard simulate --emission 23.4 --sun-hours 5.2 --water-flow 110
  co2-offset-dashboard simulate --product 12 --trees 50 --sun-hours 5.2 --water-flow 110 --plain`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("emission") && opts.productID == 0 {
				return errors.New("either --emission or --product is required")
			}
			return runSimulate(cmd, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.emission, "emission", 0, "emission to compensate in kg CO2")
	cmd.Flags().Int64Var(&opts.productID, "product", 0, "catalog product id to take the emission from")
	cmd.Flags().IntVar(&opts.trees, "trees", -1, "number of trees (default from DEFAULT_TREES)")
	cmd.Flags().Float64Var(&opts.sunHours, "sun-hours", 0, "hours of sunlight per day")
	cmd.Flags().Float64Var(&opts.waterFlow, "water-flow", 0, "river discharge in m³/s")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print ticks as lines instead of the interactive view")
	_ = cmd.MarkFlagRequired("sun-hours")
	_ = cmd.MarkFlagRequired("water-flow")
	return cmd
}

func runSimulate(cmd *cobra.Command, opts simulateOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Log output would tear the terminal view.
	logging.InitWithWriter(cfg.LogLevel, io.Discard)

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	emission := opts.emission
	if opts.productID != 0 {
		p, err := lookupProduct(ctx, cfg.DBPath, opts.productID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%s): %s\n", p.Name, p.Category, common.FormatKg(p.Emission))
		emission = p.Emission
	}

	trees := opts.trees
	if trees < 0 {
		trees = cfg.DefaultTrees
	}
	rates, err := cfg.Offset.ComputeRates(offset.EnvironmentalReading{
		SunHours:      opts.sunHours,
		NumTrees:      trees,
		WaterFlowRate: opts.waterFlow,
	})
	if err != nil {
		return err
	}

	sched, err := compensation.Build(emission, rates, cfg.Pacing)
	if errors.Is(err, compensation.ErrNothingToCompensate) {
		fmt.Fprintln(out, "This product has no CO2 emission to compensate.")
		return nil
	}
	if err != nil {
		return err
	}

	var final compensation.Progress
	if opts.plain {
		final = runPlain(ctx, out, sched)
	} else if final, err = tui.RunSimulation(sched, rates); err != nil {
		return err
	}

	if errors.Is(final.Err(), compensation.ErrCancelled) {
		fmt.Fprintf(out, "cancelled after %s\n", final.Elapsed)
		return nil
	}
	fmt.Fprintf(out, "completed after %s\n", final.Elapsed)
	return nil
}

func lookupProduct(ctx context.Context, dbPath string, id int64) (catalog.Product, error) {
	cat, err := catalog.Open(ctx, dbPath)
	if err != nil {
		return catalog.Product{}, err
	}
	defer cat.Close()
	return cat.Get(ctx, id)
}

// runPlain drives the schedule until completion or SIGINT/SIGTERM.
func runPlain(ctx context.Context, out io.Writer, sched *compensation.Schedule) compensation.Progress {
	for _, d := range sched.Durations {
		if d.Available {
			fmt.Fprintf(out, "%-32s %s\n", d.Method.Label(), compensation.FormatDays(d.Days))
		} else {
			fmt.Fprintf(out, "%-32s not available: %s\n", d.Method.Label(), d.Reason)
		}
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return compensation.Run(sigCtx, sched, func(p compensation.Progress) {
		fmt.Fprintln(out, progressLine(p))
	})
}

func progressLine(p compensation.Progress) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s", p.Elapsed)
	for _, m := range offset.Methods() {
		if pct, ok := p.Percent[m]; ok {
			fmt.Fprintf(&b, "  %s %3d%%", m, pct)
		}
	}
	return b.String()
}
