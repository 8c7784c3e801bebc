package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/marketprobe/api/schemas"
	"github.com/xkilldash9x/marketprobe/internal/mocks"
)

type stubExecutor struct {
	report *schemas.ExecutionReport
	err    error
	plan   *schemas.Plan
}

func (s *stubExecutor) Execute(ctx context.Context, sess schemas.PageSession, plan *schemas.Plan) (*schemas.ExecutionReport, error) {
	s.plan = plan
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestOpenURL(t *testing.T) {
	t.Run("returns the marked location", func(t *testing.T) {
		sess := &mocks.MockPageSession{}
		sess.ExpectAcquire()
		sess.On("Navigate", mock.Anything, "https://example.com").Return("https://example.com/landed", nil)

		srv := New(zap.NewNop(), sess, &stubExecutor{}, nil)
		res, _, err := srv.OpenURL(context.Background(), &mcp.CallToolRequest{}, OpenURLArgs{URL: "https://example.com"})
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, "navigated:https://example.com/landed", textOf(t, res))
		sess.AssertExpectations(t)
	})

	t.Run("navigation failure is a tool error not a protocol error", func(t *testing.T) {
		sess := &mocks.MockPageSession{}
		sess.ExpectAcquire()
		sess.On("Navigate", mock.Anything, "https://bad.invalid").Return("", errors.New("net::ERR_NAME_NOT_RESOLVED"))

		srv := New(zap.NewNop(), sess, &stubExecutor{}, nil)
		res, _, err := srv.OpenURL(context.Background(), &mcp.CallToolRequest{}, OpenURLArgs{URL: "https://bad.invalid"})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), "error navigating to https://bad.invalid")
	})
}

func TestDescribePage(t *testing.T) {
	sess := &mocks.MockPageSession{}
	sess.ExpectAcquire()
	sess.On("Describe", mock.Anything).Return(&schemas.PageSnapshot{
		URL:     "https://example.com/gainers",
		Title:   "Gainers",
		Buttons: []schemas.ButtonHint{{Text: "Accept all cookies", Selector: "button"}},
	}, nil)

	srv := New(zap.NewNop(), sess, &stubExecutor{}, nil)
	res, _, err := srv.DescribePage(context.Background(), &mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var snap schemas.PageSnapshot
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &snap))
	assert.Equal(t, "Gainers", snap.Title)
	require.Len(t, snap.Buttons, 1)
	assert.Equal(t, "Accept all cookies", snap.Buttons[0].Text)
}

func TestExecutePlan(t *testing.T) {
	t.Run("parse failure returns structured error without touching the browser", func(t *testing.T) {
		sess := &mocks.MockPageSession{}

		srv := New(zap.NewNop(), sess, &stubExecutor{}, nil)
		res, _, err := srv.ExecutePlan(context.Background(), &mcp.CallToolRequest{}, ExecutePlanArgs{PlanJSON: `{"steps": []}`})
		require.NoError(t, err)
		assert.False(t, res.IsError)

		var body map[string]any
		require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &body))
		assert.Equal(t, false, body["ok"])
		assert.Contains(t, body["error"], "at least one step")
		sess.AssertNotCalled(t, "Acquire", mock.Anything)
	})

	t.Run("returns the execution report", func(t *testing.T) {
		sess := &mocks.MockPageSession{}
		exec := &stubExecutor{report: &schemas.ExecutionReport{
			OK: true,
			Results: []schemas.StepResult{
				{Step: 1, Op: schemas.OpGoto, OK: true, URL: "https://example.com"},
			},
		}}

		srv := New(zap.NewNop(), sess, exec, nil)
		res, _, err := srv.ExecutePlan(context.Background(), &mcp.CallToolRequest{},
			ExecutePlanArgs{PlanJSON: `{"steps": [{"op": "goto", "url": "https://example.com"}]}`})
		require.NoError(t, err)

		var report schemas.ExecutionReport
		require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &report))
		assert.True(t, report.OK)
		require.Len(t, report.Results, 1)

		// The plan reached the executor with defaults normalized.
		require.NotNil(t, exec.plan)
		assert.Equal(t, schemas.DefaultStepTimeoutMs, exec.plan.Steps[0].TimeoutMs)
	})

	t.Run("executor failure is a tool error", func(t *testing.T) {
		sess := &mocks.MockPageSession{}
		exec := &stubExecutor{err: errors.New("session closed")}

		srv := New(zap.NewNop(), sess, exec, nil)
		res, _, err := srv.ExecutePlan(context.Background(), &mcp.CallToolRequest{},
			ExecutePlanArgs{PlanJSON: `{"steps": [{"op": "accept_cookies"}]}`})
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}
