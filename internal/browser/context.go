package browser

import "context"

// combineContext derives a context from sessionCtx (keeping its values, which
// carry the chromedp target) that is additionally cancelled when opCtx ends.
// Callers control timeouts through opCtx while chromedp keeps the session
// information it needs.
func combineContext(sessionCtx, opCtx context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(sessionCtx)

	go func() {
		select {
		case <-opCtx.Done():
			cancel()
		case <-combined.Done():
		}
	}()

	return combined, cancel
}
