// Package pagecheck is a deterministic, replayable UI-driven verification
// harness for canvas-based web applications.
//
// A verification run opens one headless browser page, executes a declarative
// sequence of checkpoints (wait for a readiness signal, interact, capture a
// screenshot) and persists the artifacts plus a typed result. The target
// application is treated purely as a black box reachable by URL and DOM
// queries.
package pagecheck

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/networkteam/pagecheck/checkpoint"
	"github.com/networkteam/pagecheck/driver"
	"github.com/networkteam/pagecheck/engine"
)

// ResultFileName is the name of the result file written to the output
// directory.
const ResultFileName = "result.json"

// Options configures a verification run.
type Options struct {
	// Logger receives human-readable progress lines.
	// Default: slog.Default()
	Logger *slog.Logger

	// Engine overrides the engine selected by the plan's engine name. Used by
	// tests to inject a fake.
	Engine engine.Engine

	// EventCapacity is the number of page events retained per session.
	// Default: engine.DefaultEventCapacity
	EventCapacity int

	// DisableResultFile skips writing result.json to the output directory.
	DisableResultFile bool
}

// Run executes a verification plan as a single deterministic pass and writes
// the result file next to the artifacts.
//
// The returned Result folds all known failure modes (navigation errors,
// readiness timeouts, missing interaction targets, capture failures) into
// per-checkpoint statuses and a run-level error; the returned error is
// reserved for faults outside a run, like an invalid plan.
func Run(ctx context.Context, plan *checkpoint.Plan, options Options) (*driver.Result, error) {
	eng := options.Engine
	if eng == nil {
		var err error
		eng, err = EngineByName(plan.Engine)
		if err != nil {
			return nil, err
		}
	}

	d := driver.New(eng, driver.Options{
		Logger:        options.Logger,
		EventCapacity: options.EventCapacity,
	})

	result, err := d.Run(ctx, plan)
	if err != nil {
		return nil, err
	}

	if !options.DisableResultFile {
		path := filepath.Join(plan.OutputDir, ResultFileName)
		if werr := result.WriteJSON(path); werr != nil {
			logger := options.Logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Error("failed to write result file", "path", path, "error", werr)
		}
	}

	return result, nil
}

// EngineByName resolves an engine name from a plan or CLI flag. An empty name
// selects the default engine.
func EngineByName(name string) (engine.Engine, error) {
	switch name {
	case "", checkpoint.DefaultEngine:
		return engine.Playwright(), nil
	case "chromedp":
		return engine.Chromedp(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q (valid: playwright, chromedp)", name)
	}
}
