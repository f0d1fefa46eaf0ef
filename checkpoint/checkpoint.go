// Package checkpoint defines the declarative plan format for verification runs.
//
// A plan is an ordered sequence of checkpoints executed against one browser
// page. Each checkpoint waits for a readiness signal, optionally interacts with
// the page and captures a screenshot artifact. Plans are plain data, so
// sequence variants live in plan files instead of code.
package checkpoint

import (
	"fmt"
)

// Point is a viewport coordinate in CSS pixels.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Wait describes the readiness signal of a checkpoint. Exactly one of
// Selector, Text or Delay should be set. Selector and text waits poll for the
// element to become visible, bounded by Timeout. A delay wait is a fixed sleep
// for load-settling where the target application exposes no reliable DOM
// signal.
type Wait struct {
	Selector string   `yaml:"selector,omitempty" json:"selector,omitempty"`
	Text     string   `yaml:"text,omitempty" json:"text,omitempty"`
	Delay    Duration `yaml:"delay,omitempty" json:"delay,omitempty"`
	Timeout  Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

func (w Wait) validate() error {
	set := 0
	if w.Selector != "" {
		set++
	}
	if w.Text != "" {
		set++
	}
	if w.Delay > 0 {
		set++
	}
	if set == 0 {
		return fmt.Errorf("wait needs one of selector, text or delay")
	}
	if set > 1 {
		return fmt.Errorf("wait must set only one of selector, text or delay")
	}
	return nil
}

// Click is the primary action of a checkpoint. Exactly one of Text, Selector
// or At should be set. Text clicks the element matched by visible text, which
// is how start controls like "INITIATE STORY MODE" are addressed.
type Click struct {
	Text     string   `yaml:"text,omitempty" json:"text,omitempty"`
	Selector string   `yaml:"selector,omitempty" json:"selector,omitempty"`
	At       *Point   `yaml:"at,omitempty" json:"at,omitempty"`
	Timeout  Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

func (c Click) validate() error {
	set := 0
	if c.Text != "" {
		set++
	}
	if c.Selector != "" {
		set++
	}
	if c.At != nil {
		set++
	}
	if set == 0 {
		return fmt.Errorf("click needs one of text, selector or at")
	}
	if set > 1 {
		return fmt.Errorf("click must set only one of text, selector or at")
	}
	return nil
}

// Target describes the click target for log output.
func (c Click) Target() string {
	switch {
	case c.Text != "":
		return fmt.Sprintf("text %q", c.Text)
	case c.Selector != "":
		return fmt.Sprintf("selector %q", c.Selector)
	case c.At != nil:
		return fmt.Sprintf("point (%d,%d)", c.At.X, c.At.Y)
	}
	return "unset"
}

// Repeat is a repeated coordinate click, used to advance click-driven
// dialogue/intro sequences. Each click is followed by Delay.
type Repeat struct {
	At    Point    `yaml:"at" json:"at"`
	Count int      `yaml:"count" json:"count"`
	Delay Duration `yaml:"delay,omitempty" json:"delay,omitempty"`
}

func (r Repeat) validate() error {
	if r.Count < 1 {
		return fmt.Errorf("repeat count must be at least 1")
	}
	return nil
}

// Checkpoint is one ordered step in a verification sequence.
//
// Execution order within a checkpoint: wait, click, repeat, settle, screenshot.
// By default a checkpoint whose click target is missing degrades and halts the
// remaining sequence, since later checkpoints assume the action succeeded.
// Optional relaxes this to continue-on-degraded.
type Checkpoint struct {
	Name       string   `yaml:"name" json:"name"`
	Wait       *Wait    `yaml:"wait,omitempty" json:"wait,omitempty"`
	Click      *Click   `yaml:"click,omitempty" json:"click,omitempty"`
	Repeat     *Repeat  `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	Settle     Duration `yaml:"settle,omitempty" json:"settle,omitempty"`
	Screenshot *bool    `yaml:"screenshot,omitempty" json:"screenshot,omitempty"`
	Optional   bool     `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// CaptureEnabled reports whether the checkpoint captures a screenshot artifact.
// Screenshots are on unless explicitly disabled.
func (c Checkpoint) CaptureEnabled() bool {
	return c.Screenshot == nil || *c.Screenshot
}

// Validate checks the checkpoint definition for structural errors.
func (c Checkpoint) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("checkpoint name is required")
	}
	if c.Wait != nil {
		if err := c.Wait.validate(); err != nil {
			return fmt.Errorf("checkpoint %q: %w", c.Name, err)
		}
	}
	if c.Click != nil {
		if err := c.Click.validate(); err != nil {
			return fmt.Errorf("checkpoint %q: %w", c.Name, err)
		}
	}
	if c.Repeat != nil {
		if err := c.Repeat.validate(); err != nil {
			return fmt.Errorf("checkpoint %q: %w", c.Name, err)
		}
	}
	return nil
}
