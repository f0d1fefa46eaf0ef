package driver_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/networkteam/pagecheck/driver"
)

func TestResult_Counts(t *testing.T) {
	result := &driver.Result{
		Checkpoints: []driver.CheckpointResult{
			{Name: "menu", Status: driver.StatusOK},
			{Name: "start", Status: driver.StatusDegraded},
			{Name: "intro", Status: driver.StatusOK},
		},
	}

	counts := result.Counts()
	assert.Equal(t, 2, counts[driver.StatusOK])
	assert.Equal(t, 1, counts[driver.StatusDegraded])
	assert.Equal(t, 0, counts[driver.StatusFailed])

	assert.False(t, result.OK())
}

func TestResult_ArtifactPaths(t *testing.T) {
	result := &driver.Result{
		Checkpoints: []driver.CheckpointResult{
			{Name: "menu", Status: driver.StatusOK, ArtifactPath: "out/menu.png"},
			{Name: "start", Status: driver.StatusOK},
			{Name: "intro", Status: driver.StatusOK, ArtifactPath: "out/intro.png"},
		},
	}

	assert.Equal(t, []string{"out/menu.png", "out/intro.png"}, result.ArtifactPaths())
}

func TestErrorTaxonomy_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")

	navErr := &driver.NavigationError{URL: "http://host/app", Err: cause}
	assert.ErrorIs(t, navErr, cause)
	assert.Contains(t, navErr.Error(), "http://host/app")

	rt := &driver.ReadinessTimeout{Checkpoint: "menu", Condition: `selector "canvas"`, Err: cause}
	assert.ErrorIs(t, rt, cause)
	assert.Contains(t, rt.Error(), "menu")

	atm := &driver.ActionTargetMissing{Checkpoint: "start", Target: `text "START"`, Err: cause}
	assert.ErrorIs(t, atm, cause)
	assert.Contains(t, atm.Error(), "start")
}
