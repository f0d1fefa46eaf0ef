//go:build acceptance
// +build acceptance

package acceptance

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/pagecheck"
	"github.com/networkteam/pagecheck/checkpoint"
	"github.com/networkteam/pagecheck/driver"
)

// gamePlan returns a plan for the test game with settle times cut down for
// test speed. Set HEADLESS=false to watch the run for debugging.
func gamePlan(url, outputDir string) *checkpoint.Plan {
	headless := os.Getenv("HEADLESS") != "false"
	plan := &checkpoint.Plan{
		TargetURL: url,
		OutputDir: outputDir,
		Headless:  &headless,
		Checkpoints: []checkpoint.Checkpoint{
			{
				Name:   "menu",
				Wait:   &checkpoint.Wait{Selector: "canvas"},
				Settle: checkpoint.Duration(200 * time.Millisecond),
			},
			{
				Name:   "start",
				Click:  &checkpoint.Click{Text: "INITIATE STORY MODE"},
				Settle: checkpoint.Duration(200 * time.Millisecond),
			},
			{
				Name: "intro",
				Repeat: &checkpoint.Repeat{
					At:    checkpoint.Point{X: 640, Y: 360},
					Count: 3,
					Delay: checkpoint.Duration(100 * time.Millisecond),
				},
				Settle: checkpoint.Duration(200 * time.Millisecond),
			},
			{
				Name: "gameplay",
				Wait: &checkpoint.Wait{Delay: checkpoint.Duration(200 * time.Millisecond)},
			},
		},
	}
	plan.ApplyDefaults()
	return plan
}

// TestVerifyGameSequence runs the full menu / start / intro / gameplay
// sequence against the test game and expects every checkpoint to pass.
func TestVerifyGameSequence(t *testing.T) {
	game := NewTestGame(t, TestGameOptions{})
	defer game.Close()

	outputDir := t.TempDir()
	plan := gamePlan(game.URL, outputDir)

	result, err := pagecheck.Run(context.Background(), plan, pagecheck.Options{})
	require.NoError(t, err)
	require.NoError(t, result.Err())

	assert.True(t, result.OK())
	require.Len(t, result.Checkpoints, 4)
	for _, cp := range result.Checkpoints {
		assert.Equal(t, driver.StatusOK, cp.Status, "checkpoint %s", cp.Name)
		assert.FileExists(t, cp.ArtifactPath)
	}
	assert.FileExists(t, filepath.Join(outputDir, pagecheck.ResultFileName))
}

// TestMissingStartControl verifies that a missing interaction target degrades
// the checkpoint, captures a diagnostic screenshot and halts the sequence.
func TestMissingStartControl(t *testing.T) {
	game := NewTestGame(t, TestGameOptions{WithoutStartControl: true})
	defer game.Close()

	outputDir := t.TempDir()
	plan := gamePlan(game.URL, outputDir)
	// Do not sit out the full click timeout on a control that never appears.
	plan.Checkpoints[1].Click.Timeout = checkpoint.Duration(time.Second)

	result, err := pagecheck.Run(context.Background(), plan, pagecheck.Options{})
	require.NoError(t, err)

	require.Len(t, result.Checkpoints, 2, "sequence should halt after the degraded checkpoint")
	assert.Equal(t, driver.StatusOK, result.Checkpoints[0].Status)
	assert.Equal(t, driver.StatusDegraded, result.Checkpoints[1].Status)

	var targetMissing *driver.ActionTargetMissing
	require.ErrorAs(t, result.Err(), &targetMissing)
	assert.Equal(t, "start", targetMissing.Checkpoint)

	// The diagnostic screenshot shows the page as the click saw it.
	assert.FileExists(t, filepath.Join(outputDir, "start.png"))
}

// TestNavigationFailure verifies that an unreachable target produces a
// navigation error and a diagnostic error screenshot without running any
// checkpoint.
func TestNavigationFailure(t *testing.T) {
	outputDir := t.TempDir()
	plan := gamePlan("http://127.0.0.1:1/", outputDir)
	plan.NavigationTimeout = checkpoint.Duration(3 * time.Second)

	result, err := pagecheck.Run(context.Background(), plan, pagecheck.Options{})
	require.NoError(t, err)

	var navErr *driver.NavigationError
	require.ErrorAs(t, result.Err(), &navErr)
	assert.Empty(t, result.Checkpoints)
	assert.FileExists(t, filepath.Join(outputDir, "error.png"))
}

// TestRerunIsIdempotent verifies that a second run against the same output
// directory succeeds and overwrites the previous artifacts.
func TestRerunIsIdempotent(t *testing.T) {
	game := NewTestGame(t, TestGameOptions{})
	defer game.Close()

	outputDir := t.TempDir()

	for i := 0; i < 2; i++ {
		plan := gamePlan(game.URL, outputDir)
		result, err := pagecheck.Run(context.Background(), plan, pagecheck.Options{})
		require.NoError(t, err)
		assert.True(t, result.OK(), "run %d", i)
	}

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Len(t, entries, 5, "four screenshots plus the result file")
}
