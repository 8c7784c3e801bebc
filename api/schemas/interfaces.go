package schemas

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout marks bounded-wait expiry. It is reported as the literal error
// string "timeout" in step results so callers can tell it apart from logical
// failures.
var ErrTimeout = errors.New("timeout")

// ErrNoListing marks a logical extraction failure: the listing rendered but
// no ticker link or numeric-looking price cell could be found in it.
var ErrNoListing = errors.New("listing not found")

// PageSession is one live browser page plus the probe operations defined over
// it. Implementations own no browser resources beyond their page; the session
// manager retains ownership of the underlying process.
type PageSession interface {
	ID() string

	// Acquire claims the session's single execution slot. Exactly one plan
	// may drive the page at a time; the returned release func must be called
	// once the run finishes.
	Acquire(ctx context.Context) (release func(), err error)

	// Browser primitives.
	Navigate(ctx context.Context, url string) (string, error)
	Click(ctx context.Context, selector string, timeout time.Duration) error
	Fill(ctx context.Context, selector, text string, pressEnter bool) error
	WaitFor(ctx context.Context, selector string, state WaitState, timeout time.Duration) error

	// Page probes.
	DismissCookieBanner(ctx context.Context) (bool, error)
	ExtractTopListing(ctx context.Context) (GainerPayload, error)

	// Describe builds the structured snapshot served by describe_page.
	Describe(ctx context.Context) (*PageSnapshot, error)

	// Close releases the page and its browsing context. Best-effort; errors
	// are reported but must not block teardown of sibling resources.
	Close(ctx context.Context) error
}

// SessionManager owns the browser process lifecycle and mints page sessions.
type SessionManager interface {
	NewSession(ctx context.Context) (PageSession, error)
	Shutdown(ctx context.Context) error
}
