package driver

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"

	"github.com/networkteam/pagecheck/checkpoint"
)

// Status is the outcome of one processed checkpoint.
type Status string

const (
	// StatusOK means the checkpoint fully succeeded.
	StatusOK Status = "ok"
	// StatusDegraded means the primary action could not be performed but a
	// diagnostic artifact was still captured.
	StatusDegraded Status = "degraded"
	// StatusFailed means the checkpoint's readiness signal never appeared or
	// an interaction failed unexpectedly.
	StatusFailed Status = "failed"
)

// CheckpointResult is the outcome of one checkpoint, in execution order.
// Checkpoints skipped after a halt do not appear in the result.
type CheckpointResult struct {
	Name         string              `json:"name"`
	Status       Status              `json:"status"`
	ArtifactPath string              `json:"artifact_path,omitempty"`
	Error        string              `json:"error,omitempty"`
	Duration     checkpoint.Duration `json:"duration"`
}

// Result is the authoritative machine-usable output of a run.
type Result struct {
	RunID       uuid.UUID          `json:"run_id"`
	TargetURL   string             `json:"target_url"`
	Engine      string             `json:"engine"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	Checkpoints []CheckpointResult `json:"checkpoints"`
	Error       string             `json:"error,omitempty"`

	err error
}

// Err returns the run-level error: the navigation failure or the checkpoint
// error that halted the sequence. It is nil when the sequence ran to
// completion, even if optional checkpoints were degraded.
func (r *Result) Err() error {
	return r.err
}

func (r *Result) setErr(err error) {
	r.err = err
	if err != nil {
		r.Error = err.Error()
	}
}

// OK reports whether the run completed with every checkpoint ok.
func (r *Result) OK() bool {
	if r.err != nil {
		return false
	}
	return lo.EveryBy(r.Checkpoints, func(cr CheckpointResult) bool {
		return cr.Status == StatusOK
	})
}

// Counts returns the number of checkpoints per status.
func (r *Result) Counts() map[Status]int {
	return lo.CountValuesBy(r.Checkpoints, func(cr CheckpointResult) Status {
		return cr.Status
	})
}

// ArtifactPaths returns the paths of all captured artifacts in order.
func (r *Result) ArtifactPaths() []string {
	return lo.FilterMap(r.Checkpoints, func(cr CheckpointResult, _ int) (string, bool) {
		return cr.ArtifactPath, cr.ArtifactPath != ""
	})
}

// WriteJSON persists the result to a file, overwriting any prior result.
func (r *Result) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result %s: %w", path, err)
	}
	return nil
}
