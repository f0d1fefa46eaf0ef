// Package driver executes declarative verification plans against one browser
// page and persists screenshot artifacts at named checkpoints.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/uuid"

	"github.com/networkteam/pagecheck/checkpoint"
	"github.com/networkteam/pagecheck/engine"
)

// ErrorArtifactName is the artifact name used for the best-effort diagnostic
// screenshot taken when a run fails outside checkpoint processing.
const ErrorArtifactName = "error"

// runState tracks the per-run state machine:
// NotStarted -> Navigating -> {Waiting -> Interacting -> Capturing}* -> Completed | Failed
type runState string

const (
	stateNotStarted  runState = "not_started"
	stateNavigating  runState = "navigating"
	stateWaiting     runState = "waiting"
	stateInteracting runState = "interacting"
	stateCapturing   runState = "capturing"
	stateCompleted   runState = "completed"
	stateFailed      runState = "failed"
)

// Options configures a Driver.
type Options struct {
	// Logger receives human-readable progress lines.
	// Default: slog.Default()
	Logger *slog.Logger

	// EventCapacity is the number of page events retained per session.
	// Default: engine.DefaultEventCapacity
	EventCapacity int
}

// Driver runs verification plans. One driver can execute multiple runs, each
// with its own exclusively owned browser session.
type Driver struct {
	engine        engine.Engine
	logger        *slog.Logger
	eventCapacity int
}

// New creates a driver on the given engine.
func New(eng engine.Engine, options Options) *Driver {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		engine:        eng,
		logger:        logger,
		eventCapacity: options.EventCapacity,
	}
}

// run carries the mutable state of one verification pass.
type run struct {
	driver  *Driver
	plan    *checkpoint.Plan
	session engine.Session
	store   *Store
	logger  *slog.Logger
	result  *Result
	state   runState
}

func (r *run) transition(to runState) {
	r.logger.Debug("state transition", "from", string(r.state), "to", string(to))
	r.state = to
}

// Run executes the plan as a single deterministic pass: one browser session,
// checkpoints strictly in order, no retries.
//
// Errors of the known taxonomy (navigation failure, readiness timeout, missing
// interaction target, capture failure) are folded into the Result and do not
// surface as a returned error. The returned error is reserved for faults
// outside a run, like an invalid plan or an unwritable output directory. The
// session is closed exactly once on the way out, success or failure.
func (d *Driver) Run(ctx context.Context, plan *checkpoint.Plan) (*Result, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	store, err := NewStore(plan.OutputDir)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.Must(uuid.NewV7()),
		TargetURL: plan.TargetURL,
		Engine:    d.engine.Name(),
		StartedAt: time.Now(),
	}

	logger := d.logger.With("run_id", result.RunID.String())
	r := &run{
		driver: d,
		plan:   plan,
		store:  store,
		logger: logger,
		result: result,
		state:  stateNotStarted,
	}

	logger.Info("starting verification run",
		"target_url", plan.TargetURL,
		"engine", result.Engine,
		"viewport", fmt.Sprintf("%dx%d", plan.Viewport.Width, plan.Viewport.Height),
		"checkpoints", len(plan.Checkpoints),
		"output_dir", store.Dir())

	r.execute(ctx)

	result.FinishedAt = time.Now()
	logger.Info("verification run finished",
		"state", string(r.state),
		"processed", len(result.Checkpoints),
		"counts", result.Counts(),
		"error", result.Error)

	return result, nil
}

func (r *run) execute(ctx context.Context) {
	r.transition(stateNavigating)

	session, err := r.driver.engine.Launch(ctx, engine.Options{
		Width:         r.plan.Viewport.Width,
		Height:        r.plan.Viewport.Height,
		Headless:      r.plan.HeadlessEnabled(),
		Logger:        r.logger,
		EventCapacity: r.driver.eventCapacity,
	})
	if err != nil {
		r.logger.Error("failed to start browser session", "error", err)
		r.result.setErr(&NavigationError{URL: r.plan.TargetURL, Err: err})
		r.transition(stateFailed)
		return
	}
	r.session = session
	defer func() {
		if cerr := session.Close(); cerr != nil {
			r.logger.Error("failed to close browser session", "error", cerr)
		}
	}()

	r.logger.Info("navigating", "url", r.plan.TargetURL)
	if err := session.Navigate(ctx, r.plan.TargetURL, r.plan.NavigationTimeout.Std()); err != nil {
		r.logger.Error("navigation failed", "error", err)
		r.captureErrorArtifact(ctx)
		r.result.setErr(&NavigationError{URL: r.plan.TargetURL, Err: err})
		r.transition(stateFailed)
		return
	}

	for _, cp := range r.plan.Checkpoints {
		cpResult, cpErr := r.runCheckpoint(ctx, cp)
		r.result.Checkpoints = append(r.result.Checkpoints, cpResult)

		// Later checkpoints assume the earlier ones held, so guessing at
		// subsequent UI state would produce misleading artifacts.
		halt := cpResult.Status == StatusFailed ||
			(cpResult.Status == StatusDegraded && !cp.Optional)
		if halt {
			r.logger.Warn("halting remaining checkpoints", "checkpoint", cp.Name, "status", string(cpResult.Status))
			r.result.setErr(cpErr)
			r.transition(stateFailed)
			return
		}
	}

	r.transition(stateCompleted)
}

func (r *run) runCheckpoint(ctx context.Context, cp checkpoint.Checkpoint) (CheckpointResult, error) {
	start := time.Now()
	logger := r.logger.With("checkpoint", cp.Name)
	cpResult := CheckpointResult{Name: cp.Name, Status: StatusOK}

	defer func() {
		cpResult.Duration = checkpoint.Duration(time.Since(start))
	}()

	r.transition(stateWaiting)
	if cp.Wait != nil {
		if err := r.wait(ctx, cp, logger); err != nil {
			rt := &ReadinessTimeout{
				Checkpoint: cp.Name,
				Condition:  waitCondition(cp.Wait),
				Timeout:    cp.Wait.Timeout.Std(),
				Err:        err,
			}
			logger.Error("readiness signal not observed", "condition", rt.Condition, "timeout", rt.Timeout, "error", err)
			cpResult.Status = StatusFailed
			cpResult.Error = rt.Error()
			r.capture(ctx, cp, &cpResult, logger)
			return cpResult, rt
		}
	}

	r.transition(stateInteracting)
	if cp.Click != nil {
		logger.Info("clicking", "target", cp.Click.Target())
		if err := r.click(ctx, cp.Click); err != nil {
			if errors.Is(err, engine.ErrTargetMissing) {
				atm := &ActionTargetMissing{Checkpoint: cp.Name, Target: cp.Click.Target(), Err: err}
				logger.Warn("interaction target missing", "target", cp.Click.Target())
				cpResult.Status = StatusDegraded
				cpResult.Error = atm.Error()
				err = atm
			} else {
				logger.Error("interaction failed", "error", err)
				cpResult.Status = StatusFailed
				cpResult.Error = err.Error()
			}
			r.capture(ctx, cp, &cpResult, logger)
			return cpResult, err
		}
	}

	if cp.Repeat != nil {
		logger.Info("repeating clicks", "at", fmt.Sprintf("(%d,%d)", cp.Repeat.At.X, cp.Repeat.At.Y), "count", cp.Repeat.Count)
		for i := 0; i < cp.Repeat.Count; i++ {
			if err := r.session.ClickAt(ctx, cp.Repeat.At.X, cp.Repeat.At.Y); err != nil {
				logger.Error("repeated click failed", "iteration", i+1, "error", err)
				cpResult.Status = StatusFailed
				cpResult.Error = err.Error()
				r.capture(ctx, cp, &cpResult, logger)
				return cpResult, err
			}
			if err := sleep(ctx, cp.Repeat.Delay.Std()); err != nil {
				cpResult.Status = StatusFailed
				cpResult.Error = err.Error()
				return cpResult, err
			}
		}
	}

	if cp.Settle > 0 {
		logger.Info("settling", "delay", cp.Settle.Std())
		if err := sleep(ctx, cp.Settle.Std()); err != nil {
			cpResult.Status = StatusFailed
			cpResult.Error = err.Error()
			return cpResult, err
		}
	}

	r.capture(ctx, cp, &cpResult, logger)
	return cpResult, nil
}

func (r *run) wait(ctx context.Context, cp checkpoint.Checkpoint, logger *slog.Logger) error {
	w := cp.Wait
	switch {
	case w.Selector != "":
		logger.Info("waiting for element", "selector", w.Selector, "timeout", w.Timeout.Std())
		return r.session.WaitVisible(ctx, w.Selector, w.Timeout.Std())
	case w.Text != "":
		logger.Info("waiting for text", "text", w.Text, "timeout", w.Timeout.Std())
		return r.session.WaitText(ctx, w.Text, w.Timeout.Std())
	default:
		logger.Info("waiting fixed delay", "delay", w.Delay.Std())
		return sleep(ctx, w.Delay.Std())
	}
}

func (r *run) click(ctx context.Context, c *checkpoint.Click) error {
	switch {
	case c.Text != "":
		return r.session.ClickText(ctx, c.Text, c.Timeout.Std())
	case c.Selector != "":
		return r.session.ClickSelector(ctx, c.Selector, c.Timeout.Std())
	default:
		return r.session.ClickAt(ctx, c.At.X, c.At.Y)
	}
}

// capture takes the checkpoint's screenshot artifact. Capture failures are
// logged as CaptureError and never change the status determined by waiting
// and interacting.
func (r *run) capture(ctx context.Context, cp checkpoint.Checkpoint, cpResult *CheckpointResult, logger *slog.Logger) {
	if !cp.CaptureEnabled() {
		return
	}

	r.transition(stateCapturing)

	data, err := r.session.Screenshot(ctx)
	if err != nil {
		logger.Error("capture failed", "error", &CaptureError{Checkpoint: cp.Name, Err: err})
		return
	}

	path, err := r.store.Save(cp.Name, data)
	if err != nil {
		logger.Error("capture failed", "error", &CaptureError{Checkpoint: cp.Name, Err: err})
		return
	}

	cpResult.ArtifactPath = path
	logger.Info("captured artifact", "path", path)
}

// captureErrorArtifact takes a best-effort diagnostic screenshot when the run
// fails outside checkpoint processing.
func (r *run) captureErrorArtifact(ctx context.Context) {
	data, err := r.session.Screenshot(ctx)
	if err != nil {
		r.logger.Warn("could not capture error artifact", "error", err)
		return
	}
	path, err := r.store.Save(ErrorArtifactName, data)
	if err != nil {
		r.logger.Warn("could not write error artifact", "error", err)
		return
	}
	r.logger.Info("captured error artifact", "path", path)
}

func waitCondition(w *checkpoint.Wait) string {
	switch {
	case w.Selector != "":
		return fmt.Sprintf("selector %q", w.Selector)
	case w.Text != "":
		return fmt.Sprintf("text %q", w.Text)
	default:
		return fmt.Sprintf("delay %s", w.Delay.Std())
	}
}

// sleep pauses for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
