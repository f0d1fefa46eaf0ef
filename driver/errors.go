package driver

import (
	"fmt"
	"time"
)

// NavigationError reports that the target URL was unreachable or did not load
// within the navigation timeout. It is fatal to the run.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// ReadinessTimeout reports that a checkpoint's readiness signal never
// appeared. The checkpoint is marked failed and the remaining sequence is
// skipped, since later checkpoints assume the signal held.
type ReadinessTimeout struct {
	Checkpoint string
	Condition  string
	Timeout    time.Duration
	Err        error
}

func (e *ReadinessTimeout) Error() string {
	return fmt.Sprintf("checkpoint %q: readiness signal (%s) not observed within %s: %v", e.Checkpoint, e.Condition, e.Timeout, e.Err)
}

func (e *ReadinessTimeout) Unwrap() error {
	return e.Err
}

// ActionTargetMissing reports that a checkpoint's primary interaction target
// was not found or not visible. The checkpoint is marked degraded; a
// diagnostic artifact is still captured.
type ActionTargetMissing struct {
	Checkpoint string
	Target     string
	Err        error
}

func (e *ActionTargetMissing) Error() string {
	return fmt.Sprintf("checkpoint %q: interaction target %s missing: %v", e.Checkpoint, e.Target, e.Err)
}

func (e *ActionTargetMissing) Unwrap() error {
	return e.Err
}

// CaptureError reports a screenshot failure. It is logged but never escalates
// a checkpoint's status beyond what waiting and interacting already
// determined.
type CaptureError struct {
	Checkpoint string
	Err        error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("checkpoint %q: capture failed: %v", e.Checkpoint, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}
