package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ChromedpEngine drives Chrome directly over the DevTools protocol. It avoids
// the Playwright driver download, at the cost of requiring a local Chrome.
type ChromedpEngine struct{}

// Chromedp creates a CDP-backed engine.
func Chromedp() *ChromedpEngine {
	return &ChromedpEngine{}
}

func (e *ChromedpEngine) Name() string {
	return "chromedp"
}

// Launch starts a Chrome instance with the configured window size. The browser
// lifetime is bound to the session, not to the launch context, so teardown
// stays deterministic.
func (e *ChromedpEngine) Launch(ctx context.Context, options Options) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(options.Width, options.Height),
	)
	if !options.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)

	s := &chromedpSession{
		ctx:         taskCtx,
		cancelTask:  cancelTask,
		cancelAlloc: cancelAlloc,
		logger:      options.logger(),
		events:      NewEventLog(options.eventCapacity()),
	}
	s.listen()

	// Start the browser eagerly so a missing Chrome binary fails here instead
	// of at the first checkpoint.
	if err := chromedp.Run(taskCtx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	return s, nil
}

type chromedpSession struct {
	ctx         context.Context
	cancelTask  context.CancelFunc
	cancelAlloc context.CancelFunc
	logger      *slog.Logger
	events      *EventLog

	closeOnce sync.Once
}

func (s *chromedpSession) listen() {
	chromedp.ListenTarget(s.ctx, func(ev any) {
		switch ev := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			parts := make([]string, 0, len(ev.Args))
			for _, arg := range ev.Args {
				if arg.Value != nil {
					parts = append(parts, string(arg.Value))
				}
			}
			text := strings.Join(parts, " ")
			s.events.Add(PageEvent{Kind: EventConsole, Type: string(ev.Type), Text: text})
			s.logger.Debug("page console", "type", string(ev.Type), "text", text)

		case *runtime.EventExceptionThrown:
			text := ev.ExceptionDetails.Text
			if ev.ExceptionDetails.Exception != nil && ev.ExceptionDetails.Exception.Description != "" {
				text = ev.ExceptionDetails.Exception.Description
			}
			s.events.Add(PageEvent{Kind: EventPageError, Text: text})
			s.logger.Warn("page error", "error", text)
		}
	})
}

// run executes actions bounded by timeout. The timeout context is derived from
// the tab context, so a fired timeout aborts the actions but keeps the tab.
func (s *chromedpSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx := s.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (s *chromedpSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := s.run(ctx, timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *chromedpSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := s.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("element %q did not become visible: %w", selector, err)
	}
	return nil
}

func (s *chromedpSession) WaitText(ctx context.Context, text string, timeout time.Duration) error {
	if err := s.run(ctx, timeout, chromedp.WaitVisible(textXPath(text), chromedp.BySearch)); err != nil {
		return fmt.Errorf("text %q did not become visible: %w", text, err)
	}
	return nil
}

func (s *chromedpSession) ClickText(ctx context.Context, text string, timeout time.Duration) error {
	err := s.run(ctx, timeout, chromedp.Click(textXPath(text), chromedp.BySearch, chromedp.NodeVisible))
	if err != nil {
		// CDP gives no way to tell "never appeared" from "not actionable";
		// both degrade the checkpoint.
		return fmt.Errorf("text %q: %w (%v)", text, ErrTargetMissing, err)
	}
	return nil
}

func (s *chromedpSession) ClickSelector(ctx context.Context, selector string, timeout time.Duration) error {
	err := s.run(ctx, timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
	if err != nil {
		return fmt.Errorf("selector %q: %w (%v)", selector, ErrTargetMissing, err)
	}
	return nil
}

func (s *chromedpSession) ClickAt(ctx context.Context, x, y int) error {
	if err := s.run(ctx, 0, chromedp.MouseClickXY(float64(x), float64(y))); err != nil {
		return fmt.Errorf("failed to click at (%d,%d): %w", x, y, err)
	}
	return nil
}

func (s *chromedpSession) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, 0, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

func (s *chromedpSession) Events() *EventLog {
	return s.events
}

func (s *chromedpSession) Close() error {
	s.closeOnce.Do(func() {
		// Cancel gives Chrome a chance to exit cleanly before the allocator
		// kills the process.
		_ = chromedp.Cancel(s.ctx)
		s.cancelTask()
		s.cancelAlloc()
	})
	return nil
}

// textXPath matches visible elements whose own text contains the given string.
func textXPath(text string) string {
	return fmt.Sprintf(`//*[text()[contains(., %s)]]`, xpathLiteral(text))
}

// xpathLiteral quotes a string for use in an XPath expression. XPath 1.0 has
// no escape sequences, so strings containing both quote kinds need concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	parts := strings.Split(s, `"`)
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return "concat(" + strings.Join(parts, `, '"', `) + ")"
}
