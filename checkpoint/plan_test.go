package checkpoint_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/pagecheck/checkpoint"
)

func TestParse_FullPlan(t *testing.T) {
	yml := `
target_url: http://localhost:4323/neo-tokyo-rival-academies
viewport:
  width: 1280
  height: 720
output_dir: /tmp/verification
headless: true
engine: playwright
checkpoints:
  - name: menu
    wait:
      selector: canvas
      timeout: 30s
    settle: 5s
  - name: start
    click:
      text: "INITIATE STORY MODE"
    settle: 2s
  - name: intro
    repeat:
      at: {x: 640, y: 360}
      count: 5
      delay: 1s
  - name: gameplay
    wait:
      delay: 3s
`
	plan, err := checkpoint.Parse(strings.NewReader(yml))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4323/neo-tokyo-rival-academies", plan.TargetURL)
	assert.Equal(t, 1280, plan.Viewport.Width)
	assert.True(t, plan.HeadlessEnabled())
	require.Len(t, plan.Checkpoints, 4)

	menu := plan.Checkpoints[0]
	assert.Equal(t, "canvas", menu.Wait.Selector)
	assert.Equal(t, 30*time.Second, menu.Wait.Timeout.Std())
	assert.Equal(t, 5*time.Second, menu.Settle.Std())
	assert.True(t, menu.CaptureEnabled())

	start := plan.Checkpoints[1]
	assert.Equal(t, "INITIATE STORY MODE", start.Click.Text)
	// Unset click timeout gets the default
	assert.Equal(t, checkpoint.DefaultClickTimeout, start.Click.Timeout.Std())

	intro := plan.Checkpoints[2]
	assert.Equal(t, checkpoint.Point{X: 640, Y: 360}, intro.Repeat.At)
	assert.Equal(t, 5, intro.Repeat.Count)
	assert.Equal(t, time.Second, intro.Repeat.Delay.Std())

	gameplay := plan.Checkpoints[3]
	assert.Equal(t, 3*time.Second, gameplay.Wait.Delay.Std())
}

func TestParse_AppliesDefaults(t *testing.T) {
	yml := `
checkpoints:
  - name: menu
    wait:
      selector: canvas
`
	plan, err := checkpoint.Parse(strings.NewReader(yml))
	require.NoError(t, err)

	assert.Equal(t, checkpoint.DefaultTargetURL, plan.TargetURL)
	assert.Equal(t, checkpoint.DefaultOutputDir, plan.OutputDir)
	assert.Equal(t, checkpoint.DefaultEngine, plan.Engine)
	assert.Equal(t, checkpoint.DefaultViewportWidth, plan.Viewport.Width)
	assert.Equal(t, checkpoint.DefaultViewportHeight, plan.Viewport.Height)
	assert.True(t, plan.HeadlessEnabled())
	assert.Equal(t, checkpoint.DefaultNavigationTimeout, plan.NavigationTimeout.Std())
	assert.Equal(t, checkpoint.DefaultWaitTimeout, plan.Checkpoints[0].Wait.Timeout.Std())
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	yml := `
target_url: http://host/app
checkpoinst:
  - name: menu
`
	_, err := checkpoint.Parse(strings.NewReader(yml))
	require.Error(t, err)
}

func TestParse_RejectsInvalidDuration(t *testing.T) {
	yml := `
checkpoints:
  - name: menu
    settle: five seconds
`
	_, err := checkpoint.Parse(strings.NewReader(yml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestValidate_DuplicateNames(t *testing.T) {
	plan := &checkpoint.Plan{
		TargetURL: "http://host/app",
		Checkpoints: []checkpoint.Checkpoint{
			{Name: "menu", Wait: &checkpoint.Wait{Selector: "canvas"}},
			{Name: "menu", Wait: &checkpoint.Wait{Selector: "canvas"}},
		},
	}
	plan.ApplyDefaults()

	err := plan.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate checkpoint names")
}

func TestValidate_NoCheckpoints(t *testing.T) {
	plan := &checkpoint.Plan{TargetURL: "http://host/app"}
	plan.ApplyDefaults()

	err := plan.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no checkpoints")
}

func TestDefaultPlan(t *testing.T) {
	plan := checkpoint.DefaultPlan()
	require.NoError(t, plan.Validate())

	require.Len(t, plan.Checkpoints, 4)
	assert.Equal(t, "menu", plan.Checkpoints[0].Name)
	assert.Equal(t, "canvas", plan.Checkpoints[0].Wait.Selector)
	assert.Equal(t, "INITIATE STORY MODE", plan.Checkpoints[1].Click.Text)
	assert.Equal(t, 5, plan.Checkpoints[2].Repeat.Count)
	assert.Equal(t, "gameplay", plan.Checkpoints[3].Name)
	assert.True(t, plan.HeadlessEnabled())
}
