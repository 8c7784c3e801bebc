// Package task holds the built-in extraction plan used by the fixed-task
// front-ends.
package task

import (
	"github.com/xkilldash9x/marketprobe/api/schemas"
	"github.com/xkilldash9x/marketprobe/internal/probes"
)

// FixedPlan returns the hardwired navigate, accept-cookies, wait, extract
// sequence against targetURL. The plan is freshly built per call; validation
// normalizes its defaults.
func FixedPlan(targetURL string) *schemas.Plan {
	plan := &schemas.Plan{
		Steps: []schemas.Step{
			{Op: schemas.OpGoto, URL: targetURL},
			{Op: schemas.OpAcceptCookies},
			{Op: schemas.OpWaitFor, Selector: probes.RowsSelector},
			{Op: schemas.OpExtractTopGainer},
		},
	}
	// The fixed plan is shape-correct by construction.
	_ = plan.Validate()
	return plan
}
