// Package runner is the execution pipeline core: it resolves a filter to a
// device set, fans a task out across the set with per-device isolation,
// applies one wall-clock timeout to the whole batch, and normalizes the
// per-device outcomes into uniform envelopes.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"netmcp/internal/domain"
	"netmcp/internal/inventory"
	"netmcp/internal/metrics"
)

// Options tune a single Execute call.
type Options struct {
	// Timeout bounds the whole batch; zero uses the runner default.
	Timeout time.Duration
	// Strict makes a zero-device match an error instead of an empty
	// success. Single-device call sites (ping, traceroute, file push)
	// use it.
	Strict bool
}

// Runner dispatches tasks across device sets. It holds no per-operation
// state: every Execute takes a fresh inventory snapshot, so a device that
// failed in one call is fully eligible in the next.
type Runner struct {
	provider       domain.InventoryProvider
	defaultTimeout time.Duration
	logger         *slog.Logger
}

func New(provider domain.InventoryProvider, defaultTimeout time.Duration, logger *slog.Logger) *Runner {
	if defaultTimeout <= 0 {
		defaultTimeout = 2 * time.Minute
	}
	return &Runner{provider: provider, defaultTimeout: defaultTimeout, logger: logger}
}

// Snapshot exposes a fresh inventory view for call sites that only need
// to look at devices (inventory tools, pre-flight validation).
func (r *Runner) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	return r.provider.Snapshot(ctx)
}

// Resolve resolves a filter against a fresh snapshot without executing
// anything.
func (r *Runner) Resolve(ctx context.Context, f inventory.Filter, strict bool) ([]domain.Device, error) {
	snap, err := r.provider.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory snapshot: %w", err)
	}
	if strict {
		return inventory.ResolveStrict(snap, f)
	}
	return inventory.Resolve(snap, f)
}

// Execute runs task against every device matched by f. The returned map
// has exactly one envelope per targeted device; failures that precede or
// abort the whole batch appear once under domain.BatchKey instead.
// Execute never returns an error: everything is reported as data.
func (r *Runner) Execute(ctx context.Context, f inventory.Filter, task domain.Task, opts Options) domain.BatchResult {
	runID := uuid.NewString()
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	metrics.RunsTotal.Inc()

	snap, err := r.provider.Snapshot(ctx)
	if err != nil {
		return batchFailure(domain.KindInventoryError, fmt.Sprintf("inventory snapshot: %v", err))
	}

	devices, err := resolve(snap, f, opts.Strict)
	if err != nil {
		return resolveFailure(err)
	}
	if len(devices) == 0 {
		// Default-open resolved to nothing: an empty success, by policy.
		return domain.BatchResult{}
	}

	r.logger.Info("dispatching batch",
		"run_id", runID, "task", task.Name(),
		"devices", len(devices), "timeout", timeout)
	metrics.DevicesTotal.Add(int64(len(devices)))

	outcomes := r.fanOut(ctx, runID, devices, task, timeout)
	if outcomes == nil {
		metrics.TimeoutsTotal.Inc()
		r.logger.Warn("batch timed out", "run_id", runID, "task", task.Name(), "timeout", timeout)
		return batchFailure(domain.KindTimeout,
			fmt.Sprintf("operation timed out after %s; per-device completion state is unknown", timeout))
	}

	result := Normalize(devices, outcomes)
	ok, failed := result.Counts()
	metrics.FailuresTotal.Add(int64(failed))
	r.logger.Info("batch complete", "run_id", runID, "task", task.Name(), "ok", ok, "failed", failed)
	return result
}

// fanOut runs task once per device on its own goroutine and joins. Each
// goroutine writes only its own slice slot, so the results need no lock;
// the slice is read only after the join. A nil return means the batch
// timed out and the outcomes must be discarded: once the batch is
// abandoned, partial completion cannot be told apart from never-ran.
func (r *Runner) fanOut(ctx context.Context, runID string, devices []domain.Device, task domain.Task, timeout time.Duration) []Outcome {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([]Outcome, len(devices))
	done := make(chan struct{})
	go func() {
		defer close(done)
		joined := make(chan int, len(devices))
		for i := range devices {
			go func(i int, dev domain.Device) {
				defer func() {
					if rec := recover(); rec != nil {
						outcomes[i] = Outcome{Recorded: true, Err: fmt.Errorf("panic in task: %v", rec)}
						r.logger.Error("task panicked", "run_id", runID, "device", dev.Name, "panic", rec)
					}
					joined <- i
				}()
				value, err := task.Run(taskCtx, dev)
				outcomes[i] = Outcome{Recorded: true, Value: value, Err: err}
			}(i, devices[i])
		}
		for range devices {
			<-joined
		}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return outcomes
	case <-timer.C:
		// Abandon in-flight work, best effort.
		cancel()
		return nil
	case <-ctx.Done():
		cancel()
		return nil
	}
}

func resolve(snap *domain.Snapshot, f inventory.Filter, strict bool) ([]domain.Device, error) {
	if strict {
		return inventory.ResolveStrict(snap, f)
	}
	return inventory.Resolve(snap, f)
}

func resolveFailure(err error) domain.BatchResult {
	var syntaxErr *domain.FilterSyntaxError
	if errors.As(err, &syntaxErr) {
		return batchFailure(domain.KindFilterSyntax, err.Error())
	}
	var noMatch *domain.NoMatchError
	if errors.As(err, &noMatch) {
		return batchFailure(domain.KindNoMatch, err.Error())
	}
	return batchFailure(domain.KindInventoryError, err.Error())
}

func batchFailure(kind, message string) domain.BatchResult {
	return domain.BatchResult{
		domain.BatchKey: domain.Fail(kind, message, nil),
	}
}
