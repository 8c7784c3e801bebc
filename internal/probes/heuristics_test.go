package probes

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestNumericLooking(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"12.34", true},
		{"1234", true},
		{"  42.5  ", true},
		{"0.01", true},
		{"", false},
		{"   ", false},
		{".", false},
		{"+1.23", false},
		{"-4.56", false},
		{"1,234.56", false},
		{"$12.34", false},
		{"1.2.3", false},
		{"+1.2%", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, numericLooking(tt.text))
		})
	}
}

func TestCookieButtonIndex(t *testing.T) {
	t.Run("no buttons", func(t *testing.T) {
		doc := parseDoc(t, `<html><body><p>hello</p></body></html>`)
		assert.Equal(t, -1, cookieButtonIndex(doc))
	})

	t.Run("buttons without consent wording", func(t *testing.T) {
		doc := parseDoc(t, `<html><body><button>OK</button><button>Accept terms</button></body></html>`)
		assert.Equal(t, -1, cookieButtonIndex(doc))
	})

	t.Run("matches first consent button in document order", func(t *testing.T) {
		doc := parseDoc(t, `<html><body>
			<button>Sign in</button>
			<button>Accept all cookies</button>
			<button>Accept cookies too</button>
		</body></html>`)
		assert.Equal(t, 1, cookieButtonIndex(doc))
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		doc := parseDoc(t, `<html><body><button>ACCEPT COOKIES</button></body></html>`)
		assert.Equal(t, 0, cookieButtonIndex(doc))
	})

	t.Run("both words are required", func(t *testing.T) {
		doc := parseDoc(t, `<html><body><button>Cookies settings</button><button>Accept</button></body></html>`)
		assert.Equal(t, -1, cookieButtonIndex(doc))
	})
}

func TestRowHeuristics(t *testing.T) {
	const rowHTML = `<table><tbody><tr>
		<td><a href="/quote/AAA">AAA</a></td>
		<td>Great Co</td>
		<td>12.34</td>
		<td>+5.6%</td>
	</tr></tbody></table>`

	doc := parseDoc(t, rowHTML)
	row := doc.Find("tr").First()
	require.Equal(t, 1, row.Length())

	ticker, ok := tickerFromRow(row)
	require.True(t, ok)
	assert.Equal(t, "AAA", ticker)

	price, ok := priceFromRow(row)
	require.True(t, ok)
	assert.Equal(t, "12.34", price)
}

func TestRowHeuristicsMissingPieces(t *testing.T) {
	t.Run("no quote link", func(t *testing.T) {
		doc := parseDoc(t, `<table><tbody><tr><td>AAA</td><td>12.34</td></tr></tbody></table>`)
		_, ok := tickerFromRow(doc.Find("tr").First())
		assert.False(t, ok)
	})

	t.Run("no numeric cell", func(t *testing.T) {
		doc := parseDoc(t, `<table><tbody><tr>
			<td><a href="/quote/BBB">BBB</a></td>
			<td>+5.6%</td>
			<td>N/A</td>
		</tr></tbody></table>`)
		_, ok := priceFromRow(doc.Find("tr").First())
		assert.False(t, ok)
	})
}
