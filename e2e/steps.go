package e2e

import (
	"github.com/cucumber/godog"

	"stacia/e2e/steps/analysis"
	"stacia/e2e/steps/common"
	"stacia/e2e/steps/consent"
)

// RegisterSteps wires the shared HTTP steps first so feature-specific
// packages can build on the remembered variables they set.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	consent.RegisterSteps(ctx, tc)
	analysis.RegisterSteps(ctx, tc)
}
