package probes

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/xkilldash9x/marketprobe/api/schemas"
)

// snapshotCap bounds each collection in a page snapshot.
const snapshotCap = 50

// BuildSnapshot assembles the structured page description a plan author works
// from: common controls plus the gainers-table hint when rows are present.
func BuildSnapshot(html, url, title string) (*schemas.PageSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	snap := &schemas.PageSnapshot{
		URL:     url,
		Title:   title,
		Buttons: make([]schemas.ButtonHint, 0),
		Links:   make([]schemas.LinkHint, 0),
		Inputs:  make([]schemas.InputHint, 0),
	}

	doc.Find("button").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			snap.Buttons = append(snap.Buttons, schemas.ButtonHint{Text: text, Selector: "button"})
		}
		return len(snap.Buttons) < snapshotCap
	})

	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		href := sel.AttrOr("href", "")
		if text != "" || href != "" {
			snap.Links = append(snap.Links, schemas.LinkHint{Text: text, Href: href})
		}
		return len(snap.Links) < snapshotCap
	})

	doc.Find(`input, textarea, [contenteditable="true"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		snap.Inputs = append(snap.Inputs, schemas.InputHint{
			Type:        sel.AttrOr("type", ""),
			Placeholder: sel.AttrOr("placeholder", ""),
		})
		return len(snap.Inputs) < snapshotCap
	})

	if doc.Find(RowsSelector).Length() > 0 {
		snap.TableHint = &schemas.ListingTable{
			RowsSelector:       RowsSelector,
			TopRowSelector:     TopRowSelector,
			TickerLinkSelector: TickerLinkSelector,
		}
	}

	return snap, nil
}
