package e2e

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/cucumber/godog"
)

// TestFeatures runs the Gherkin scenarios against a live server. Set
// SENDGATE_E2E_BASE_URL and SENDGATE_E2E_TOKEN (a bearer token signed with the
// server's key) to enable it.
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("SENDGATE_E2E_BASE_URL")
	token := os.Getenv("SENDGATE_E2E_TOKEN")
	if baseURL == "" || token == "" {
		t.Skip("SENDGATE_E2E_BASE_URL and SENDGATE_E2E_TOKEN are required")
	}

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			tc := NewTestContext(baseURL, token)
			ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
				tc.Remember("run", strconv.FormatInt(time.Now().UnixNano(), 36))
				return ctx, nil
			})
			RegisterSteps(ctx, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
