package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/city-weather-etl/internal/domain"
	"github.com/couchcryptid/city-weather-etl/internal/observability"
	"github.com/google/uuid"
)

// ErrRunInProgress is returned when Run is called while another run is active.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Stage is one step of the pipeline. It reads its persisted input, writes
// its persisted output, and reports row counts.
type Stage interface {
	Name() string
	Run(ctx context.Context) (Report, error)
}

// Report summarizes what a stage consumed and produced.
type Report struct {
	RowsIn   int
	RowsOut  int
	Rejected int
	Output   string
}

// StepResult is the outcome of one stage within a run.
type StepResult struct {
	Stage    string
	Report   Report
	Duration time.Duration
	Err      error
}

// Result is the outcome of a whole run.
type Result struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Steps    []StepResult
	Err      error
}

// OK reports whether every stage succeeded.
func (r Result) OK() bool { return r.Err == nil }

// StageError names the stage that halted a run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Pipeline runs an ordered list of stages, stopping at the first failure.
// Artifacts of stages that already succeeded are left in place.
type Pipeline struct {
	stages  []Stage
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
	running atomic.Bool

	mu   sync.Mutex
	last *Result
}

// New creates a Pipeline over stages, which run in slice order.
func New(stages []Stage, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		stages:  stages,
		logger:  logger,
		metrics: metrics,
	}
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// CheckReadiness returns nil once a run has completed successfully,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a successful run yet")
	}
	return nil
}

// LastResult returns the most recent run result, if any.
func (p *Pipeline) LastResult() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Result{}, false
	}
	return *p.last, true
}

// Run executes every stage once, in order. The returned error is the
// *StageError of the failed stage, or ErrRunInProgress.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if !p.running.CompareAndSwap(false, true) {
		return Result{}, ErrRunInProgress
	}
	defer p.running.Store(false)

	res := Result{RunID: uuid.NewString(), Started: domain.Now()}
	ctx = domain.WithRunID(ctx, res.RunID)
	logger := p.logger.With("run_id", res.RunID)

	logger.Info("pipeline started", "stages", len(p.stages))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for _, stage := range p.stages {
		step := p.runStage(ctx, logger, stage)
		res.Steps = append(res.Steps, step)
		if step.Err != nil {
			res.Err = &StageError{Stage: step.Stage, Err: step.Err}
			break
		}
	}
	res.Finished = domain.Now()

	p.mu.Lock()
	p.last = &res
	p.mu.Unlock()

	if res.Err != nil {
		p.metrics.PipelineRuns.WithLabelValues("error").Inc()
		logger.Error("pipeline failed", "error", res.Err, "duration", res.Finished.Sub(res.Started))
		return res, res.Err
	}

	p.metrics.PipelineRuns.WithLabelValues("success").Inc()
	p.metrics.LastSuccess.Set(float64(res.Finished.Unix()))
	p.ready.Store(true)
	logger.Info("pipeline completed", "duration", res.Finished.Sub(res.Started))
	return res, nil
}

func (p *Pipeline) runStage(ctx context.Context, logger *slog.Logger, stage Stage) StepResult {
	name := stage.Name()
	logger = logger.With("stage", name)
	start := time.Now()

	var (
		report Report
		err    error
	)
	if err = ctx.Err(); err == nil {
		report, err = stage.Run(ctx)
	}
	elapsed := time.Since(start)

	p.metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	p.metrics.RowsRead.WithLabelValues(name).Add(float64(report.RowsIn))
	p.metrics.RowsWritten.WithLabelValues(name).Add(float64(report.RowsOut))
	p.metrics.RowsRejected.WithLabelValues(name).Add(float64(report.Rejected))

	step := StepResult{Stage: name, Report: report, Duration: elapsed, Err: err}
	if err != nil {
		p.metrics.StageRuns.WithLabelValues(name, "error").Inc()
		logger.Error("stage failed", "error", err, "duration", elapsed)
		return step
	}

	p.metrics.StageRuns.WithLabelValues(name, "success").Inc()
	logger.Info("stage completed",
		"rows_in", report.RowsIn,
		"rows_out", report.RowsOut,
		"rejected", report.Rejected,
		"output", report.Output,
		"duration", elapsed,
	)
	return step
}
