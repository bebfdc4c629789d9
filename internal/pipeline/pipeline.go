// Package pipeline sequences the batch stages that turn raw downloads into
// the projected 2065 outputs: acquire, clean, forecast, project and upload.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"climate-migration-pipeline/internal/observability"
)

// Stage is one pipeline phase. Stages run in order and the first failure
// stops the run; later stages depend on the files earlier ones produce.
type Stage interface {
	Name() string
	Run(ctx context.Context) error
}

// NamedStage wraps a bare run function as a Stage.
func NamedStage(name string, run func(context.Context) error) Stage {
	return funcStage{name: name, run: run}
}

type funcStage struct {
	name string
	run  func(context.Context) error
}

func (s funcStage) Name() string                  { return s.name }
func (s funcStage) Run(ctx context.Context) error { return s.run(ctx) }

// StageResult records one completed stage.
type StageResult struct {
	Name     string
	Duration time.Duration
}

// Result summarizes a finished run.
type Result struct {
	Stages []StageResult
}

// Duration is the total wall time across completed stages.
func (r Result) Duration() time.Duration {
	var total time.Duration
	for _, s := range r.Stages {
		total += s.Duration
	}
	return total
}

// Pipeline runs the configured stages in order.
type Pipeline struct {
	stages  []Stage
	logger  *slog.Logger
	metrics *observability.Metrics
	current atomic.Value // name of the running stage
	done    atomic.Bool
}

func New(logger *slog.Logger, metrics *observability.Metrics, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, logger: logger, metrics: metrics}
}

// CheckReadiness reports nil once a run has completed every stage, or an
// error describing where the run currently is.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.done.Load() {
		return nil
	}
	if name, ok := p.current.Load().(string); ok && name != "" {
		return fmt.Errorf("pipeline stage %q still running", name)
	}
	return errors.New("pipeline has not started")
}

// Run executes the stages in order, timing each one.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.logger.Info("pipeline started", "stages", p.names())
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	var res Result
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p.current.Store(stage.Name())
		start := clock.Now()
		err := stage.Run(ctx)
		elapsed := clock.Since(start)
		p.metrics.StageDuration.WithLabelValues(stage.Name()).Observe(elapsed.Seconds())
		if err != nil {
			p.logger.Error("stage failed", "stage", stage.Name(), "duration", elapsed, "error", err)
			return res, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		res.Stages = append(res.Stages, StageResult{Name: stage.Name(), Duration: elapsed})
		p.logger.Info("stage finished", "stage", stage.Name(), "duration", elapsed)
	}
	p.done.Store(true)
	p.current.Store("")
	return res, nil
}

func (p *Pipeline) names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
