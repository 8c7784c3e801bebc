package schemas

// GainerPayload is the semantic result of the top-listing probe. Price stays
// a string; source pages disagree on formatting and parsing it is not our job.
type GainerPayload struct {
	Ticker string `json:"ticker"`
	Price  string `json:"price"`
}

// StepResult records the outcome of one executed step. Created once by the
// interpreter, appended to the result log, never mutated afterward.
type StepResult struct {
	Step     int            `json:"step"`
	Op       Op             `json:"op"`
	OK       bool           `json:"ok"`
	URL      string         `json:"url,omitempty"`
	Accepted *bool          `json:"accepted,omitempty"`
	Data     *GainerPayload `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// ExecutionReport is the final output of one plan execution. OK reflects only
// that the interpreter itself ran to completion; callers inspect the
// individual results for step-level success.
type ExecutionReport struct {
	OK      bool           `json:"ok"`
	Error   string         `json:"error,omitempty"`
	Results []StepResult   `json:"results"`
	Final   *GainerPayload `json:"final"`
}

// FirstError returns the error text of the first failed step, or "" when all
// recorded steps succeeded.
func (r *ExecutionReport) FirstError() string {
	for _, res := range r.Results {
		if !res.OK {
			return res.Error
		}
	}
	return ""
}
