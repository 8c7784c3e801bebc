package schemas

// PageSnapshot is the structured page description handed to a plan author.
// Collections are capped at 50 entries each.
type PageSnapshot struct {
	URL       string        `json:"url"`
	Title     string        `json:"title"`
	Buttons   []ButtonHint  `json:"buttons"`
	Links     []LinkHint    `json:"links"`
	Inputs    []InputHint   `json:"inputs"`
	TableHint *ListingTable `json:"gainers_table"`
}

// ButtonHint describes one clickable control with a generic selector hint.
type ButtonHint struct {
	Text     string `json:"text"`
	Selector string `json:"selector"`
}

// LinkHint describes one anchor.
type LinkHint struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// InputHint describes one input-like element.
type InputHint struct {
	Type        string `json:"type"`
	Placeholder string `json:"placeholder"`
}

// ListingTable carries the fixed selectors a plan author needs to target the
// gainers table, present only when at least one row was detected.
type ListingTable struct {
	RowsSelector       string `json:"rows_selector"`
	TopRowSelector     string `json:"top_row_selector"`
	TickerLinkSelector string `json:"ticker_link_selector"`
}
