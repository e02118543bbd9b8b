package exec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pairpad/backend/internal/infrastructure/logging"
	"github.com/pairpad/backend/internal/shared/id"
)

// Orchestrator coordinates sandboxed executions: workspace lifecycle,
// outer timeout, and the cap on concurrent runs. Runs share no mutable
// state; isolation comes entirely from workspace-name uniqueness.
type Orchestrator struct {
	runner    SandboxRunner
	timeout   time.Duration
	sem       chan struct{}
	logger    *logging.Logger
	onRun     func(language, status string, duration time.Duration)
	onCleanup func()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRunHook registers a callback invoked after every completed run,
// used for metrics.
func WithRunHook(fn func(language, status string, duration time.Duration)) Option {
	return func(o *Orchestrator) { o.onRun = fn }
}

// WithCleanupFailureHook registers a callback invoked when workspace
// teardown fails.
func WithCleanupFailureHook(fn func()) Option {
	return func(o *Orchestrator) { o.onCleanup = fn }
}

// NewOrchestrator creates an orchestrator. timeout is the outer bound on
// one whole invocation; maxConcurrent caps simultaneous sandboxes.
func NewOrchestrator(runner SandboxRunner, timeout time.Duration, maxConcurrent int, logger *logging.Logger, opts ...Option) *Orchestrator {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	o := &Orchestrator{
		runner:  runner,
		timeout: timeout,
		sem:     make(chan struct{}, maxConcurrent),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes code for a supported language and returns captured output.
// Sandbox failures of any kind (compile error, crash, timeout) are folded
// into the result's Stderr; the returned error is non-nil only for an
// unsupported language or a context cancelled before execution started.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	lang, err := ParseLanguage(req.Language)
	if err != nil {
		return RunResult{}, err
	}
	pipeline, _ := PipelineFor(lang)

	select {
	case o.sem <- struct{}{}:
		defer func() { <-o.sem }()
	case <-ctx.Done():
		return RunResult{}, ctx.Err()
	}

	runID := id.NewRunID()
	start := time.Now()
	result, status := o.execute(ctx, runID, pipeline, req)

	o.logger.Info("Run finished",
		zap.String("run_id", runID.String()),
		zap.String("language", string(lang)),
		zap.String("status", status),
		zap.Duration("duration", time.Since(start)),
	)
	if o.onRun != nil {
		o.onRun(string(lang), status, time.Since(start))
	}

	return result, nil
}

func (o *Orchestrator) execute(ctx context.Context, runID id.RunID, pipeline Pipeline, req RunRequest) (RunResult, string) {
	ws, err := o.runner.Provision(pipeline, req.Code, req.Stdin)
	if err != nil {
		o.logger.Error("Workspace provisioning failed",
			zap.String("run_id", runID.String()), zap.Error(err))
		return RunResult{Stderr: fmt.Sprintf("failed to prepare execution environment: %v", err)}, "provision_error"
	}

	// Teardown happens before returning, whatever the outcome. A failed
	// removal is logged and counted but never reaches the caller.
	defer func() {
		if err := o.runner.Teardown(ws); err != nil {
			o.logger.Error("Workspace cleanup failed",
				zap.String("run_id", runID.String()), zap.Error(err))
			if o.onCleanup != nil {
				o.onCleanup()
			}
		}
	}()

	execCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	stdout, stderr, err := o.runner.Execute(execCtx, ws, pipeline)
	switch {
	case err == nil:
		return RunResult{Stdout: stdout, Stderr: stderr}, "ok"
	case errors.Is(execCtx.Err(), context.DeadlineExceeded):
		return RunResult{
			Stdout: stdout,
			Stderr: appendFailure(stderr, fmt.Sprintf("execution timed out after %s", o.timeout)),
		}, "timeout"
	default:
		return RunResult{
			Stdout: stdout,
			Stderr: appendFailure(stderr, err.Error()),
		}, "error"
	}
}

// appendFailure keeps whatever the sandbox already wrote to stderr and
// adds the orchestration-level failure description after it.
func appendFailure(stderr, failure string) string {
	if stderr == "" {
		return failure
	}
	return stderr + "\n" + failure
}
