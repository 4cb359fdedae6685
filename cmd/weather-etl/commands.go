package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	httpadapter "github.com/couchcryptid/city-weather-etl/internal/adapter/http"
	"github.com/couchcryptid/city-weather-etl/internal/pipeline"
	"github.com/couchcryptid/city-weather-etl/internal/scheduler"
	"github.com/spf13/cobra"
)

func addCollectFlags(cmd *cobra.Command, f *collectFlags, withToggle bool) {
	if withToggle {
		cmd.Flags().BoolVar(&f.collect, "collect", false, "Fetch fresh data from QWeather before aggregating")
	}
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "QWeather API key (overrides QWEATHER_API_KEY)")
	cmd.Flags().StringVar(&f.startDate, "start-date", "", "First date to collect (YYYY-MM-DD); skips the forecast")
	cmd.Flags().StringVar(&f.endDate, "end-date", "", "Last date to collect (YYYY-MM-DD)")
}

// --- run command ---

var runFlags collectFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once: [collect] -> daily -> monthly -> yearly -> provincial -> statistics -> comfort",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var w wiring
		defer w.close()
		opts, err := w.options(runFlags, true)
		if err != nil {
			return err
		}

		p := pipeline.New(pipeline.Stages(opts, logger), logger, metrics)
		res, err := p.Run(ctx)
		printResult(cmd.OutOrStdout(), res)
		pushMetrics(context.WithoutCancel(ctx))
		return err
	},
}

// --- collect command ---

var collectOnlyFlags = collectFlags{collect: true}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch raw daily files from QWeather without aggregating",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var w wiring
		defer w.close()
		opts, err := w.options(collectOnlyFlags, false)
		if err != nil {
			return err
		}

		stage := &pipeline.CollectStage{
			ReferencePath: opts.Paths.Reference,
			Window:        opts.Window,
			Days:          opts.CollectDays,
			Collector:     opts.Collector,
		}
		p := pipeline.New([]pipeline.Stage{stage}, logger, metrics)
		res, err := p.Run(ctx)
		printResult(cmd.OutOrStdout(), res)
		pushMetrics(context.WithoutCancel(ctx))
		return err
	},
}

// --- schedule command ---

var scheduleFlags collectFlags

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline every SCHEDULE_INTERVAL and serve health and metrics endpoints",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if scheduleFlags.startDate != "" || scheduleFlags.endDate != "" {
			return errors.New("schedule always collects a rolling window; --start-date/--end-date are not allowed")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var w wiring
		defer w.close()
		opts, err := w.options(scheduleFlags, true)
		if err != nil {
			return err
		}

		p := pipeline.New(pipeline.Stages(opts, logger), logger, metrics)
		srv := httpadapter.NewServer(cfg.HTTPAddr, p, metrics.Gatherer(), logger)

		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()

		sched := scheduler.New(cfg.ScheduleInterval, func(ctx context.Context) error {
			_, err := p.Run(ctx)
			pushMetrics(context.WithoutCancel(ctx))
			return err
		}, logger)
		if err := sched.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()
		logger.Info("shutting down")
		sched.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		logger.Info("shutdown complete")
		return nil
	},
}

func init() {
	addCollectFlags(runCmd, &runFlags, true)
	addCollectFlags(collectCmd, &collectOnlyFlags, false)
	addCollectFlags(scheduleCmd, &scheduleFlags, true)
}

// printResult writes a per-stage summary table.
func printResult(out io.Writer, res pipeline.Result) {
	if len(res.Steps) == 0 {
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "STAGE\tIN\tOUT\tREJECTED\tDURATION\tSTATUS\n")
	for _, s := range res.Steps {
		status := "ok"
		if s.Err != nil {
			status = "failed: " + s.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n",
			s.Stage, s.Report.RowsIn, s.Report.RowsOut, s.Report.Rejected, s.Duration.Round(time.Millisecond), status)
	}
	_ = tw.Flush()
	if res.OK() {
		fmt.Fprintf(out, "run %s completed\n", res.RunID)
	} else {
		fmt.Fprintf(out, "run %s failed: %v\n", res.RunID, res.Err)
	}
}
