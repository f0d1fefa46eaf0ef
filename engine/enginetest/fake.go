// Package enginetest provides a scriptable fake engine for driver tests, so
// the run loop can be exercised without a real browser.
package enginetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/networkteam/pagecheck/engine"
)

// PNGStub is a minimal valid PNG header, enough for tests asserting that
// artifacts were written.
var PNGStub = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// FakeEngine launches a single scripted FakeSession.
type FakeEngine struct {
	// LaunchErr makes Launch fail.
	LaunchErr error

	Session  *FakeSession
	Launches int
}

// New creates a fake engine with a default session that succeeds at
// everything.
func New() *FakeEngine {
	return &FakeEngine{Session: NewSession()}
}

func (e *FakeEngine) Name() string {
	return "fake"
}

func (e *FakeEngine) Launch(ctx context.Context, options engine.Options) (engine.Session, error) {
	e.Launches++
	if e.LaunchErr != nil {
		return nil, e.LaunchErr
	}
	e.Session.Options = options
	return e.Session, nil
}

var _ engine.Engine = (*FakeEngine)(nil)

// FakeSession records every operation and returns scripted errors. The zero
// behavior is that every operation succeeds and screenshots return PNGStub.
type FakeSession struct {
	mu sync.Mutex

	Options engine.Options

	// NavigateErr makes Navigate fail.
	NavigateErr error
	// WaitErrs maps a selector or text to a wait error.
	WaitErrs map[string]error
	// MissingTargets marks click texts/selectors that report
	// engine.ErrTargetMissing.
	MissingTargets map[string]bool
	// ScreenshotErr makes Screenshot fail.
	ScreenshotErr error
	// ScreenshotData overrides the captured bytes.
	ScreenshotData []byte

	calls      []string
	closeCount int
	events     *engine.EventLog
}

// NewSession creates a fake session that succeeds at everything.
func NewSession() *FakeSession {
	return &FakeSession{
		WaitErrs:       map[string]error{},
		MissingTargets: map[string]bool{},
		events:         engine.NewEventLog(0),
	}
}

var _ engine.Session = (*FakeSession)(nil)

func (s *FakeSession) record(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded operations in order.
func (s *FakeSession) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// CloseCount returns how often Close was called.
func (s *FakeSession) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCount
}

func (s *FakeSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	s.record("navigate %s", url)
	return s.NavigateErr
}

func (s *FakeSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	s.record("wait-visible %s", selector)
	return s.WaitErrs[selector]
}

func (s *FakeSession) WaitText(ctx context.Context, text string, timeout time.Duration) error {
	s.record("wait-text %s", text)
	return s.WaitErrs[text]
}

func (s *FakeSession) ClickText(ctx context.Context, text string, timeout time.Duration) error {
	s.record("click-text %s", text)
	if s.MissingTargets[text] {
		return fmt.Errorf("text %q: %w", text, engine.ErrTargetMissing)
	}
	return nil
}

func (s *FakeSession) ClickSelector(ctx context.Context, selector string, timeout time.Duration) error {
	s.record("click-selector %s", selector)
	if s.MissingTargets[selector] {
		return fmt.Errorf("selector %q: %w", selector, engine.ErrTargetMissing)
	}
	return nil
}

func (s *FakeSession) ClickAt(ctx context.Context, x, y int) error {
	s.record("click-at %d,%d", x, y)
	return nil
}

func (s *FakeSession) Screenshot(ctx context.Context) ([]byte, error) {
	s.record("screenshot")
	if s.ScreenshotErr != nil {
		return nil, s.ScreenshotErr
	}
	if s.ScreenshotData != nil {
		return s.ScreenshotData, nil
	}
	return PNGStub, nil
}

func (s *FakeSession) Events() *engine.EventLog {
	return s.events
}

func (s *FakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCount++
	return nil
}
