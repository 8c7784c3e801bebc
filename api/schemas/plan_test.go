package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlan(t *testing.T) {
	t.Run("rejects malformed JSON", func(t *testing.T) {
		_, err := ParsePlan([]byte(`{"steps": [`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid plan")
	})

	t.Run("rejects empty step list", func(t *testing.T) {
		_, err := ParsePlan([]byte(`{"steps": []}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one step")
	})

	t.Run("rejects missing steps field", func(t *testing.T) {
		_, err := ParsePlan([]byte(`{}`))
		require.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		plan, err := ParsePlan([]byte(`{"steps": [{"op": "wait_for", "selector": "table"}]}`))
		require.NoError(t, err)
		require.Len(t, plan.Steps, 1)
		assert.Equal(t, WaitVisible, plan.Steps[0].State)
		assert.Equal(t, DefaultStepTimeoutMs, plan.Steps[0].TimeoutMs)
	})

	t.Run("preserves explicit timeout and state", func(t *testing.T) {
		plan, err := ParsePlan([]byte(`{"steps": [{"op": "wait_for", "selector": "#x", "state": "hidden", "timeout_ms": 5000}]}`))
		require.NoError(t, err)
		assert.Equal(t, WaitHidden, plan.Steps[0].State)
		assert.Equal(t, 5000, plan.Steps[0].TimeoutMs)
	})

	t.Run("unknown op survives parsing", func(t *testing.T) {
		// Unknown ops must fail at execution, as a step result, not here.
		plan, err := ParsePlan([]byte(`{"steps": [{"op": "teleport"}]}`))
		require.NoError(t, err)
		assert.Equal(t, Op("teleport"), plan.Steps[0].Op)
	})
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		wantErr string
	}{
		{
			name:    "empty plan",
			plan:    Plan{},
			wantErr: "at least one step",
		},
		{
			name:    "step missing op",
			plan:    Plan{Steps: []Step{{Selector: "#x"}}},
			wantErr: "step 1 is missing op",
		},
		{
			name:    "unknown state",
			plan:    Plan{Steps: []Step{{Op: OpWaitFor, Selector: "#x", State: "lurking"}}},
			wantErr: `unknown state "lurking"`,
		},
		{
			name:    "negative timeout",
			plan:    Plan{Steps: []Step{{Op: OpGoto, URL: "https://example.com", TimeoutMs: -1}}},
			wantErr: "negative timeout_ms",
		},
		{
			name: "valid multi-step plan",
			plan: Plan{Steps: []Step{
				{Op: OpGoto, URL: "https://example.com"},
				{Op: OpAcceptCookies},
				{Op: OpExtractTopGainer},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestReportFirstError(t *testing.T) {
	report := &ExecutionReport{
		Results: []StepResult{
			{Step: 1, OK: true},
			{Step: 2, OK: false, Error: "timeout"},
		},
	}
	assert.Equal(t, "timeout", report.FirstError())

	clean := &ExecutionReport{Results: []StepResult{{Step: 1, OK: true}}}
	assert.Equal(t, "", clean.FirstError())
}
