package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

var (
	pwOnce     sync.Once
	pwInstance *playwright.Playwright
	pwErr      error
)

// runPlaywright returns the process-wide Playwright instance, installing the
// Chromium browser on first use.
func runPlaywright() (*playwright.Playwright, error) {
	pwOnce.Do(func() {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			pwErr = fmt.Errorf("failed to install playwright browsers: %w", err)
			return
		}

		pw, err := playwright.Run()
		if err != nil {
			pwErr = fmt.Errorf("failed to start playwright: %w", err)
			return
		}
		pwInstance = pw
	})

	return pwInstance, pwErr
}

// PlaywrightEngine drives Chromium through Playwright. It is the default
// engine.
type PlaywrightEngine struct{}

// Playwright creates a Playwright-backed engine.
func Playwright() *PlaywrightEngine {
	return &PlaywrightEngine{}
}

func (e *PlaywrightEngine) Name() string {
	return "playwright"
}

// Launch starts a Chromium browser and opens one page with the configured
// viewport. Console messages and page errors are forwarded to the logger and
// retained in the session's event log.
func (e *PlaywrightEngine) Launch(ctx context.Context, options Options) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := runPlaywright()
	if err != nil {
		return nil, err
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(options.Headless),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{Width: options.Width, Height: options.Height},
	})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	s := &playwrightSession{
		browser: browser,
		page:    page,
		logger:  options.logger(),
		events:  NewEventLog(options.eventCapacity()),
	}
	s.listen()

	return s, nil
}

type playwrightSession struct {
	browser playwright.Browser
	page    playwright.Page
	logger  *slog.Logger
	events  *EventLog

	closeOnce sync.Once
	closeErr  error
}

func (s *playwrightSession) listen() {
	s.page.OnConsole(func(msg playwright.ConsoleMessage) {
		s.events.Add(PageEvent{Kind: EventConsole, Type: msg.Type(), Text: msg.Text()})
		s.logger.Debug("page console", "type", msg.Type(), "text", msg.Text())
	})
	s.page.OnPageError(func(err error) {
		s.events.Add(PageEvent{Kind: EventPageError, Text: err.Error()})
		s.logger.Warn("page error", "error", err)
	})
}

func (s *playwrightSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *playwrightSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("element %q did not become visible: %w", selector, err)
	}
	return nil
}

func (s *playwrightSession) WaitText(ctx context.Context, text string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.page.GetByText(text).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("text %q did not become visible: %w", text, err)
	}
	return nil
}

func (s *playwrightSession) ClickText(ctx context.Context, text string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.clickLocator(s.page.GetByText(text).First(), fmt.Sprintf("text %q", text), timeout)
}

func (s *playwrightSession) ClickSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.clickLocator(s.page.Locator(selector).First(), fmt.Sprintf("selector %q", selector), timeout)
}

func (s *playwrightSession) clickLocator(locator playwright.Locator, target string, timeout time.Duration) error {
	visible, err := locator.IsVisible()
	if err != nil {
		return fmt.Errorf("failed to check visibility of %s: %w", target, err)
	}
	if !visible {
		return fmt.Errorf("%s: %w", target, ErrTargetMissing)
	}

	err = locator.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		// The element disappeared or never became actionable between the
		// visibility check and the click.
		return fmt.Errorf("%s: %w (%v)", target, ErrTargetMissing, err)
	}
	return nil
}

func (s *playwrightSession) ClickAt(ctx context.Context, x, y int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.page.Mouse().Click(float64(x), float64(y)); err != nil {
		return fmt.Errorf("failed to click at (%d,%d): %w", x, y, err)
	}
	return nil
}

func (s *playwrightSession) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.page.Screenshot(playwright.PageScreenshotOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return data, nil
}

func (s *playwrightSession) Events() *EventLog {
	return s.events
}

// Close releases the browser. The shared Playwright instance stays up for
// subsequent runs in the same process.
func (s *playwrightSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.browser.Close()
	})
	return s.closeErr
}
