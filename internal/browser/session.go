package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/xkilldash9x/marketprobe/api/schemas"
	"github.com/xkilldash9x/marketprobe/internal/config"
	"github.com/xkilldash9x/marketprobe/internal/probes"
)

// Session is one isolated browsing context with a single page. The embedded
// slot channel is the session's one execution permit: plans are serialized
// structurally, not with ambient locks.
type Session struct {
	id      string
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     *config.BrowserConfig
	logger  *zap.Logger
	manager *Manager
	slot    chan struct{}
}

var (
	_ schemas.PageSession = (*Session)(nil)
	_ probes.Page         = (*Session)(nil)
)

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Acquire claims the session's execution slot, blocking until it is free or
// ctx ends. The returned release must be called exactly once.
func (s *Session) Acquire(ctx context.Context) (func(), error) {
	select {
	case s.slot <- struct{}{}:
		return func() { <-s.slot }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for session execution slot: %w", ctx.Err())
	case <-s.ctx.Done():
		return nil, fmt.Errorf("session closed while waiting for execution slot: %w", s.ctx.Err())
	}
}

// run executes chromedp actions against this session's page, bounded by the
// caller's context plus the given timeout (the session default when zero).
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if timeout <= 0 {
		timeout = s.cfg.DefaultTimeout
	}
	combined, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	tctx, tcancel := context.WithTimeout(combined, timeout)
	defer tcancel()

	err := chromedp.Run(tctx, actions...)
	if err != nil && ctx.Err() == nil && tctx.Err() == context.DeadlineExceeded {
		// Make the bounded-wait expiry distinguishable from caller cancellation.
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

// Navigate loads url and returns the page's resulting location. The wait
// extends to the page load event, a stronger condition than DOM readiness;
// plans gate on specific elements with wait_for when that matters.
func (s *Session) Navigate(ctx context.Context, url string) (string, error) {
	var location string
	err := s.run(ctx, 0,
		chromedp.Navigate(url),
		chromedp.Location(&location),
	)
	if err != nil {
		return "", fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return location, nil
}

// Click clicks the first element matching selector within timeout.
func (s *Session) Click(ctx context.Context, selector string, timeout time.Duration) error {
	err := s.run(ctx, timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("click %q failed: %w", selector, err)
	}
	return nil
}

// Fill sets the value of the first element matching selector and optionally
// presses Enter afterwards.
func (s *Session) Fill(ctx context.Context, selector, text string, pressEnter bool) error {
	actions := []chromedp.Action{
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SetValue(selector, text, chromedp.ByQuery),
	}
	if pressEnter {
		actions = append(actions, chromedp.SendKeys(selector, kb.Enter, chromedp.ByQuery))
	}
	if err := s.run(ctx, 0, actions...); err != nil {
		return fmt.Errorf("type into %q failed: %w", selector, err)
	}
	return nil
}

// WaitFor blocks until the first element matching selector reaches state,
// bounded by timeout.
func (s *Session) WaitFor(ctx context.Context, selector string, state schemas.WaitState, timeout time.Duration) error {
	var action chromedp.Action
	switch state {
	case schemas.WaitAttached:
		action = chromedp.WaitReady(selector, chromedp.ByQuery)
	case schemas.WaitVisible:
		action = chromedp.WaitVisible(selector, chromedp.ByQuery)
	case schemas.WaitHidden:
		action = chromedp.WaitNotVisible(selector, chromedp.ByQuery)
	case schemas.WaitDetached:
		action = chromedp.WaitNotPresent(selector, chromedp.ByQuery)
	default:
		return fmt.Errorf("unknown wait state %q", state)
	}
	if err := s.run(ctx, timeout, action); err != nil {
		return fmt.Errorf("wait_for %q (%s) failed: %w", selector, state, err)
	}
	return nil
}

// WaitVisible implements probes.Page.
func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// DocumentHTML returns the full serialized document.
func (s *Session) DocumentHTML(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, 0, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return html, nil
}

// OuterHTML returns the serialized first element matching selector.
func (s *Session) OuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	if err := s.run(ctx, 0, chromedp.OuterHTML(selector, &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read %q: %w", selector, err)
	}
	return html, nil
}

// ClickButtonIndex clicks the i-th button element in document order. Indexed
// clicking keeps the cookie probe's document-order semantics without needing
// a stable selector for the overlay.
func (s *Session) ClickButtonIndex(ctx context.Context, index int) error {
	expr := fmt.Sprintf(
		`(() => { const b = document.querySelectorAll("button")[%d]; if (!b) return false; b.click(); return true; })()`,
		index,
	)
	var clicked bool
	if err := s.run(ctx, 0, chromedp.Evaluate(expr, &clicked)); err != nil {
		return fmt.Errorf("failed to click button %d: %w", index, err)
	}
	if !clicked {
		return fmt.Errorf("button %d no longer present", index)
	}
	return nil
}

// DismissCookieBanner implements the consent-overlay probe over this page.
func (s *Session) DismissCookieBanner(ctx context.Context) (bool, error) {
	return probes.DismissCookieBanner(ctx, s, s.cfg.CookieGrace, s.logger)
}

// ExtractTopListing implements the top-gainer probe over this page.
func (s *Session) ExtractTopListing(ctx context.Context) (schemas.GainerPayload, error) {
	return probes.ExtractTopListing(ctx, s, s.cfg.ExtractTimeout)
}

// Describe builds the structured snapshot of the current page.
func (s *Session) Describe(ctx context.Context) (*schemas.PageSnapshot, error) {
	var location, title string
	if err := s.run(ctx, 0, chromedp.Location(&location), chromedp.Title(&title)); err != nil {
		return nil, fmt.Errorf("failed to read page identity: %w", err)
	}
	html, err := s.DocumentHTML(ctx)
	if err != nil {
		return nil, err
	}
	return probes.BuildSnapshot(html, location, title)
}

// Close releases the page and its browsing context. Must be called once per
// session; the manager closes the browser process itself at shutdown.
func (s *Session) Close(ctx context.Context) error {
	s.cancel()
	if s.manager != nil {
		s.manager.unregisterSession(s.id)
	}
	s.logger.Debug("Browser session closed", zap.String("session_id", s.id))
	return nil
}
