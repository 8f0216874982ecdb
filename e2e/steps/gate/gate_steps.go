package gate

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	PUT(path string, body any) error
	GET(path string) error
	POSTAnonymous(path string, body any) error
	GetResponseField(field string) (any, error)
	Remember(key, value string)
	Recall(key string) string
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &gateSteps{tc: tc}

	ctx.Step(`^recipient "([^"]*)" presents identity key "([^"]*)"$`, steps.recipientPresentsKey)
	ctx.Step(`^recipient "([^"]*)" is saved as "([^"]*)"$`, steps.saveContact)
	ctx.Step(`^I send to "([^"]*)"$`, steps.sendTo)
	ctx.Step(`^I send to "([^"]*)" without authentication$`, steps.sendWithoutAuth)
	ctx.Step(`^I answer the prompt with "([^"]*)"$`, steps.answerPrompt)
	ctx.Step(`^I fetch the prompt$`, steps.fetchPrompt)
}

type gateSteps struct {
	tc TestContext
}

// uniqueID scopes recipient names to the scenario run so reruns against the
// same server start from a clean slate.
func (s *gateSteps) uniqueID(name string) string {
	run := s.tc.Recall("run")
	if run == "" {
		return name
	}
	return name + "-" + run
}

func (s *gateSteps) recipients(list string) []string {
	var ids []string
	for _, name := range strings.Split(list, ",") {
		ids = append(ids, s.uniqueID(strings.TrimSpace(name)))
	}
	return ids
}

func (s *gateSteps) recipientPresentsKey(_ context.Context, recipient, key string) error {
	return s.tc.POST("/v1/identities", map[string]any{
		"recipient_id": s.uniqueID(recipient),
		"identity_key": base64.StdEncoding.EncodeToString([]byte(key)),
	})
}

func (s *gateSteps) saveContact(_ context.Context, recipient, name string) error {
	return s.tc.PUT("/v1/contacts/"+s.uniqueID(recipient), map[string]any{"display_name": name})
}

func (s *gateSteps) sendTo(_ context.Context, list string) error {
	if err := s.tc.POST("/v1/sends/gate", map[string]any{"recipient_ids": s.recipients(list)}); err != nil {
		return err
	}
	if promptID, err := s.tc.GetResponseField("prompt_id"); err == nil {
		s.tc.Remember("prompt_id", fmt.Sprint(promptID))
	}
	return nil
}

func (s *gateSteps) sendWithoutAuth(_ context.Context, list string) error {
	return s.tc.POSTAnonymous("/v1/sends/gate", map[string]any{"recipient_ids": s.recipients(list)})
}

func (s *gateSteps) answerPrompt(_ context.Context, choice string) error {
	promptID := s.tc.Recall("prompt_id")
	if promptID == "" {
		return fmt.Errorf("no prompt was raised in this scenario")
	}
	return s.tc.POST("/v1/prompts/"+promptID+"/decision", map[string]any{"choice": choice})
}

func (s *gateSteps) fetchPrompt(_ context.Context) error {
	promptID := s.tc.Recall("prompt_id")
	if promptID == "" {
		return fmt.Errorf("no prompt was raised in this scenario")
	}
	return s.tc.GET("/v1/prompts/" + promptID)
}
