// Package probes implements the two page-content operations the interpreter
// dispatches to: cookie-banner dismissal and top-listing extraction. The DOM
// heuristics run over HTML snapshots with goquery so they stay testable
// without a live browser; only the waits and clicks touch the page itself.
package probes

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fixed selectors for the gainers listing. These are also advertised to plan
// authors through the describe_page snapshot.
const (
	RowsSelector       = "table tbody tr"
	TopRowSelector     = "table tbody tr:first-of-type"
	TickerLinkSelector = `a[href*="/quote/"]`
)

// numericLooking reports whether a cell's text is a bare decimal: all digits
// with at most one '.'. Thousands separators, signs, and currency symbols all
// fail it. No locale handling.
func numericLooking(text string) bool {
	s := strings.TrimSpace(text)
	s = strings.Replace(s, ".", "", 1)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// cookieButtonIndex scans button elements in document order and returns the
// index of the first whose text contains both "accept" and "cookie"
// (case-insensitive), or -1. Per-element read errors cannot occur on a parsed
// snapshot, so skip-and-continue reduces to the empty-text check.
func cookieButtonIndex(doc *goquery.Document) int {
	found := -1
	doc.Find("button").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		name := strings.ToLower(strings.TrimSpace(sel.Text()))
		if name == "" {
			return true
		}
		if strings.Contains(name, "accept") && strings.Contains(name, "cookie") {
			found = i
			return false
		}
		return true
	})
	return found
}

// tickerFromRow pulls the first quote link's text out of a listing row.
func tickerFromRow(row *goquery.Selection) (string, bool) {
	link := row.Find(TickerLinkSelector).First()
	if link.Length() == 0 {
		return "", false
	}
	ticker := strings.TrimSpace(link.Text())
	if ticker == "" {
		return "", false
	}
	return ticker, true
}

// priceFromRow scans a row's cells in document order for the first
// numeric-looking one.
func priceFromRow(row *goquery.Selection) (string, bool) {
	price := ""
	row.Find("td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		text := strings.TrimSpace(cell.Text())
		if numericLooking(text) {
			price = text
			return false
		}
		return true
	})
	return price, price != ""
}
