package probes

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/marketprobe/api/schemas"
)

// fakePage is a scripted probes.Page backed by static HTML.
type fakePage struct {
	html         string
	rowHTML      string
	waitErr      error
	documentErr  error
	outerErr     error
	clickErr     error
	clickedIndex int
}

func (f *fakePage) DocumentHTML(ctx context.Context) (string, error) {
	if f.documentErr != nil {
		return "", f.documentErr
	}
	return f.html, nil
}

func (f *fakePage) ClickButtonIndex(ctx context.Context, index int) error {
	if f.clickErr != nil {
		return f.clickErr
	}
	f.clickedIndex = index
	return nil
}

func (f *fakePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return f.waitErr
}

func (f *fakePage) OuterHTML(ctx context.Context, selector string) (string, error) {
	if f.outerErr != nil {
		return "", f.outerErr
	}
	return f.rowHTML, nil
}

func TestDismissCookieBanner(t *testing.T) {
	logger := zap.NewNop()

	t.Run("clicks matching button and reports accepted", func(t *testing.T) {
		page := &fakePage{
			html:         `<html><body><button>Menu</button><button>Accept all cookies</button></body></html>`,
			clickedIndex: -1,
		}
		accepted, err := DismissCookieBanner(context.Background(), page, 0, logger)
		require.NoError(t, err)
		assert.True(t, accepted)
		assert.Equal(t, 1, page.clickedIndex)
	})

	t.Run("no banner returns false without error", func(t *testing.T) {
		page := &fakePage{html: `<html><body><button>Menu</button></body></html>`}
		accepted, err := DismissCookieBanner(context.Background(), page, 0, logger)
		require.NoError(t, err)
		assert.False(t, accepted)
	})

	t.Run("click failure is swallowed", func(t *testing.T) {
		page := &fakePage{
			html:     `<html><body><button>Accept cookies</button></body></html>`,
			clickErr: errors.New("element detached"),
		}
		accepted, err := DismissCookieBanner(context.Background(), page, 0, logger)
		require.NoError(t, err)
		assert.False(t, accepted)
	})

	t.Run("unreadable page surfaces as setup error", func(t *testing.T) {
		page := &fakePage{documentErr: errors.New("target closed")}
		_, err := DismissCookieBanner(context.Background(), page, 0, logger)
		require.Error(t, err)
	})

	t.Run("cancelled context aborts the grace wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		page := &fakePage{html: "<html></html>"}
		_, err := DismissCookieBanner(ctx, page, time.Minute, logger)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestExtractTopListing(t *testing.T) {
	t.Run("reads ticker and price from the first row", func(t *testing.T) {
		page := &fakePage{
			rowHTML: `<tr><td><a href="/quote/AAA?p=AAA">AAA</a></td><td>Great Co</td><td>12.34</td><td>+5.6%</td></tr>`,
		}
		payload, err := ExtractTopListing(context.Background(), page, time.Second)
		require.NoError(t, err)
		assert.Equal(t, schemas.GainerPayload{Ticker: "AAA", Price: "12.34"}, payload)
	})

	t.Run("wait expiry maps to the timeout error", func(t *testing.T) {
		page := &fakePage{
			waitErr: fmt.Errorf("%w: waiting for selector", context.DeadlineExceeded),
		}
		_, err := ExtractTopListing(context.Background(), page, time.Second)
		require.ErrorIs(t, err, schemas.ErrTimeout)
	})

	t.Run("other wait errors pass through", func(t *testing.T) {
		page := &fakePage{waitErr: errors.New("target crashed")}
		_, err := ExtractTopListing(context.Background(), page, time.Second)
		require.Error(t, err)
		assert.NotErrorIs(t, err, schemas.ErrTimeout)
	})

	t.Run("row without ticker link is a listing failure", func(t *testing.T) {
		page := &fakePage{rowHTML: `<tr><td>AAA</td><td>12.34</td></tr>`}
		_, err := ExtractTopListing(context.Background(), page, time.Second)
		require.ErrorIs(t, err, schemas.ErrNoListing)
	})

	t.Run("row without numeric cell is a listing failure", func(t *testing.T) {
		page := &fakePage{rowHTML: `<tr><td><a href="/quote/BBB">BBB</a></td><td>N/A</td></tr>`}
		_, err := ExtractTopListing(context.Background(), page, time.Second)
		require.ErrorIs(t, err, schemas.ErrNoListing)
	})

	t.Run("unreadable row surfaces directly", func(t *testing.T) {
		page := &fakePage{outerErr: errors.New("node gone")}
		_, err := ExtractTopListing(context.Background(), page, time.Second)
		require.Error(t, err)
		assert.NotErrorIs(t, err, schemas.ErrNoListing)
	})
}
