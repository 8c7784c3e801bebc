package probes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/xkilldash9x/marketprobe/api/schemas"
)

// Page is the minimal browser surface the probes need. *browser.Session
// satisfies it.
type Page interface {
	DocumentHTML(ctx context.Context) (string, error)
	ClickButtonIndex(ctx context.Context, index int) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	OuterHTML(ctx context.Context, selector string) (string, error)
}

// DismissCookieBanner waits a short grace period for a consent overlay to
// render, then clicks the first button whose text mentions accepting cookies.
// Scan failures are swallowed and logged so the probe never aborts a plan;
// only unrecoverable setup errors (page gone, context cancelled) surface.
func DismissCookieBanner(ctx context.Context, page Page, grace time.Duration, logger *zap.Logger) (bool, error) {
	select {
	case <-time.After(grace):
	case <-ctx.Done():
		return false, ctx.Err()
	}

	html, err := page.DocumentHTML(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read page for cookie scan: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("Could not parse page for cookie banner scan", zap.Error(err))
		return false, nil
	}

	idx := cookieButtonIndex(doc)
	if idx < 0 {
		return false, nil
	}

	if err := page.ClickButtonIndex(ctx, idx); err != nil {
		logger.Warn("Could not click cookie banner button", zap.Int("index", idx), zap.Error(err))
		return false, nil
	}
	logger.Info("Dismissed cookie banner", zap.Int("button_index", idx))
	return true, nil
}

// ExtractTopListing waits (bounded) for the listing to render a row, then
// reads the ticker and price out of the first one. A wait expiry surfaces as
// schemas.ErrTimeout; a rendered row with no ticker link or numeric cell
// surfaces as schemas.ErrNoListing so callers can tell the two apart.
func ExtractTopListing(ctx context.Context, page Page, timeout time.Duration) (schemas.GainerPayload, error) {
	var payload schemas.GainerPayload

	if err := page.WaitVisible(ctx, RowsSelector, timeout); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return payload, fmt.Errorf("waiting for listing rows: %w", schemas.ErrTimeout)
		}
		return payload, fmt.Errorf("waiting for listing rows: %w", err)
	}

	rowHTML, err := page.OuterHTML(ctx, RowsSelector)
	if err != nil {
		return payload, fmt.Errorf("failed to read first listing row: %w", err)
	}

	// Re-wrap the fragment: the HTML parser drops tr/td elements that appear
	// outside a table context.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table><tbody>" + rowHTML + "</tbody></table>"))
	if err != nil {
		return payload, fmt.Errorf("failed to parse first listing row: %w", err)
	}
	row := doc.Find("tr").First()
	if row.Length() == 0 {
		return payload, fmt.Errorf("no ticker link in first row: %w", schemas.ErrNoListing)
	}

	ticker, ok := tickerFromRow(row)
	if !ok {
		return payload, fmt.Errorf("no ticker link in first row: %w", schemas.ErrNoListing)
	}
	price, ok := priceFromRow(row)
	if !ok {
		return payload, fmt.Errorf("no numeric price cell in first row: %w", schemas.ErrNoListing)
	}

	payload.Ticker = ticker
	payload.Price = price
	return payload, nil
}
