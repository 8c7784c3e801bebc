// Package interp executes validated plans against a page session. Execution
// is strictly sequential and halts on the first step failure; every step's
// outcome is captured in the report so callers can see exactly how far a plan
// progressed.
package interp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/marketprobe/api/schemas"
)

// Interpreter runs plans. Stateless between executions; safe for concurrent
// use against distinct sessions.
type Interpreter struct {
	logger *zap.Logger
}

// New creates an interpreter.
func New(logger *zap.Logger) *Interpreter {
	return &Interpreter{logger: logger.With(zap.String("component", "interpreter"))}
}

// Execute runs plan against sess, one step at a time. Step failures never
// escape as errors; they end up in the report's result log. The returned
// error covers only session-level problems (the execution slot could not be
// acquired before ctx ended).
func (i *Interpreter) Execute(ctx context.Context, sess schemas.PageSession, plan *schemas.Plan) (*schemas.ExecutionReport, error) {
	release, err := sess.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	report := &schemas.ExecutionReport{
		OK:      true,
		Results: make([]schemas.StepResult, 0, len(plan.Steps)),
	}

	logger := i.logger.With(zap.String("session_id", sess.ID()))
	logger.Info("Executing plan", zap.Int("steps", len(plan.Steps)))

	for idx, step := range plan.Steps {
		result := i.executeStep(ctx, sess, idx+1, step)
		report.Results = append(report.Results, result)

		if !result.OK {
			logger.Warn("Plan halted on step failure",
				zap.Int("step", result.Step),
				zap.String("op", string(result.Op)),
				zap.String("error", result.Error))
			break
		}
		if result.Data != nil {
			// Only the last successful extraction is authoritative.
			report.Final = result.Data
		}
	}

	logger.Info("Plan execution finished",
		zap.Int("executed", len(report.Results)),
		zap.Bool("extracted", report.Final != nil))
	return report, nil
}

// executeStep dispatches one step and converts any failure into result data.
func (i *Interpreter) executeStep(ctx context.Context, sess schemas.PageSession, idx int, step schemas.Step) schemas.StepResult {
	result := schemas.StepResult{Step: idx, Op: step.Op}
	timeout := time.Duration(step.TimeoutMs) * time.Millisecond

	var err error
	switch step.Op {
	case schemas.OpGoto:
		if step.URL == "" {
			err = fmt.Errorf("goto requires url")
			break
		}
		result.URL, err = sess.Navigate(ctx, step.URL)

	case schemas.OpClick:
		if step.Selector == "" {
			err = fmt.Errorf("click requires selector")
			break
		}
		err = sess.Click(ctx, step.Selector, timeout)

	case schemas.OpType:
		if step.Selector == "" {
			err = fmt.Errorf("type requires selector")
			break
		}
		err = sess.Fill(ctx, step.Selector, step.Text, step.PressEnter)

	case schemas.OpWaitFor:
		if step.Selector == "" {
			err = fmt.Errorf("wait_for requires selector")
			break
		}
		err = sess.WaitFor(ctx, step.Selector, step.State, timeout)

	case schemas.OpAcceptCookies:
		var accepted bool
		accepted, err = sess.DismissCookieBanner(ctx)
		if err == nil {
			result.Accepted = &accepted
		}

	case schemas.OpExtractTopGainer:
		var payload schemas.GainerPayload
		payload, err = sess.ExtractTopListing(ctx)
		if err == nil {
			result.Data = &payload
		}

	default:
		err = fmt.Errorf("unknown op: %s", step.Op)
	}

	if err != nil {
		result.OK = false
		result.Error = classify(err)
		return result
	}
	result.OK = true
	return result
}

// classify maps bounded-wait expiry onto the fixed "timeout" error string;
// everything else keeps its description.
func classify(err error) string {
	if errors.Is(err, schemas.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return err.Error()
}
