package schemas

import (
	"encoding/json"
	"fmt"
)

// Op identifies a single plan operation. The set is closed; the interpreter
// dispatches on it exhaustively. Unknown values survive parsing on purpose so
// that a plan containing one fails as a step result, not as a plan rejection.
type Op string

const (
	OpGoto             Op = "goto"
	OpClick            Op = "click"
	OpType             Op = "type"
	OpWaitFor          Op = "wait_for"
	OpAcceptCookies    Op = "accept_cookies"
	OpExtractTopGainer Op = "extract_top_gainer"
)

// WaitState mirrors the element lifecycle states a wait_for step can target.
type WaitState string

const (
	WaitAttached WaitState = "attached"
	WaitVisible  WaitState = "visible"
	WaitHidden   WaitState = "hidden"
	WaitDetached WaitState = "detached"
)

// DefaultStepTimeoutMs bounds element-targeting operations unless the step
// overrides it.
const DefaultStepTimeoutMs = 30000

// Step is one declarative browser instruction. Field presence requirements
// depend on Op and are enforced at execution time, matching the per-step
// failure semantics of the interpreter.
type Step struct {
	Op         Op        `json:"op"`
	URL        string    `json:"url,omitempty"`
	Selector   string    `json:"selector,omitempty"`
	Text       string    `json:"text,omitempty"`
	PressEnter bool      `json:"pressEnter,omitempty"`
	State      WaitState `json:"state,omitempty"`
	TimeoutMs  int       `json:"timeout_ms,omitempty"`
}

// Plan is an ordered, non-empty sequence of steps. It is never mutated after
// validation.
type Plan struct {
	Steps []Step `json:"steps"`
}

// ParsePlan decodes and validates an external plan representation. It fails
// closed: any shape violation rejects the whole plan before the browser is
// touched.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks plan-level shape and normalizes per-step defaults
// (state=visible, timeout_ms=30000). It never partially accepts a plan.
func (p *Plan) Validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("invalid plan: steps must contain at least one step")
	}
	for i := range p.Steps {
		s := &p.Steps[i]
		if s.Op == "" {
			return fmt.Errorf("invalid plan: step %d is missing op", i+1)
		}
		switch s.State {
		case "":
			s.State = WaitVisible
		case WaitAttached, WaitVisible, WaitHidden, WaitDetached:
		default:
			return fmt.Errorf("invalid plan: step %d has unknown state %q", i+1, s.State)
		}
		if s.TimeoutMs < 0 {
			return fmt.Errorf("invalid plan: step %d has negative timeout_ms", i+1)
		}
		if s.TimeoutMs == 0 {
			s.TimeoutMs = DefaultStepTimeoutMs
		}
	}
	return nil
}
