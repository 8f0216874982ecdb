package e2e

import (
	"github.com/cucumber/godog"

	"sendgate/e2e/steps/common"
	"sendgate/e2e/steps/gate"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and response assertions
	common.RegisterSteps(ctx, tc)

	// Identity observation, send gating and prompt decisions
	gate.RegisterSteps(ctx, tc)
}
