// Package engine abstracts the browser automation backend behind a small
// session interface. The driver only needs navigation, visibility waits,
// clicks and screenshots; everything else about the target page is treated as
// a black box.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrTargetMissing reports that an interaction target was not found or not
// visible. Callers match it with errors.Is to distinguish a missing control
// from an unexpected backend failure.
var ErrTargetMissing = errors.New("interaction target not found or not visible")

// DefaultEventCapacity is the number of page events retained per session.
const DefaultEventCapacity = 200

// Options configures a browser session.
type Options struct {
	// Width and Height set the fixed page viewport.
	Width  int
	Height int

	// Headless runs the browser without a visible window.
	Headless bool

	// Logger receives forwarded console messages and page errors.
	// Default: slog.Default()
	Logger *slog.Logger

	// EventCapacity is the maximum number of page events to retain.
	// Default: DefaultEventCapacity
	EventCapacity int
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) eventCapacity() int {
	if o.EventCapacity > 0 {
		return o.EventCapacity
	}
	return DefaultEventCapacity
}

// Engine launches browser sessions.
type Engine interface {
	// Name identifies the engine in plans and results.
	Name() string

	// Launch starts a browser and opens one page with the given options.
	Launch(ctx context.Context, options Options) (Session, error)
}

// Session is one browser-context lifetime owning exactly one page. A session
// is exclusively owned by a single run; Close is safe to call more than once
// and releases the browser.
type Session interface {
	// Navigate loads the given URL and waits for the load event, bounded by
	// timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// WaitVisible waits until the element matched by the CSS selector is
	// visible, bounded by timeout.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// WaitText waits until an element with the given visible text is visible,
	// bounded by timeout.
	WaitText(ctx context.Context, text string, timeout time.Duration) error

	// ClickText clicks the element matched by visible text. Returns an error
	// wrapping ErrTargetMissing if the element is absent or not visible.
	ClickText(ctx context.Context, text string, timeout time.Duration) error

	// ClickSelector clicks the element matched by the CSS selector. Returns an
	// error wrapping ErrTargetMissing if the element is absent or not visible.
	ClickSelector(ctx context.Context, selector string, timeout time.Duration) error

	// ClickAt performs a pointer click at fixed viewport coordinates.
	ClickAt(ctx context.Context, x, y int) error

	// Screenshot captures the current page as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	// Events returns the session's page event log.
	Events() *EventLog

	// Close releases the browser. Idempotent.
	Close() error
}
