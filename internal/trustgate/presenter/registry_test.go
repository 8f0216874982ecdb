package presenter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sendgate/internal/identity/store"
	"sendgate/internal/platform/logger"
	"sendgate/internal/trustgate"
	"sendgate/internal/trustgate/models"
	id "sendgate/pkg/domain"
	dErrors "sendgate/pkg/domain-errors"
	"sendgate/pkg/requestcontext"
)

type fakeFingerprints struct{}

func (fakeFingerprints) Build(_ context.Context, recipientID id.RecipientID, _ []byte) (*models.Fingerprint, error) {
	return &models.Fingerprint{RecipientID: recipientID, DisplayText: "12345"}, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type RegistrySuite struct {
	suite.Suite
	clock    *clock
	store    *store.InMemoryStore
	registry *Registry
	gate     *trustgate.Gate
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = &clock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	s.store = store.NewInMemoryStore()
	s.store.Put(&models.RecipientIdentity{RecipientID: "bob", IdentityKey: []byte("kb")})
	s.registry = NewRegistry(WithTTL(time.Minute), WithClock(s.clock.Now), WithLogger(logger.Discard()))
	s.gate = trustgate.New(s.store, fakeFingerprints{}, nil, s.registry, trustgate.WithLogger(logger.Discard()))
	s.ctx = requestcontext.WithAccountID(context.Background(), "sender-1")
}

// raise opens a gate for bob and returns the prompt ID.
func (s *RegistrySuite) raise() (id.PromptID, *Ticket) {
	ctx, ticket := s.registry.NewTicket(s.ctx)
	raised, err := s.gate.PresentIfNecessary(ctx, []id.RecipientID{"bob"}, "Send", ticket.Complete)
	s.Require().NoError(err)
	s.Require().True(raised)
	promptID, ok := ticket.PromptID()
	s.Require().True(ok)
	return promptID, ticket
}

func (s *RegistrySuite) TestApproveRecordsOutcome() {
	promptID, _ := s.raise()

	view, err := s.registry.Get(s.ctx, "sender-1", promptID)
	s.Require().NoError(err)
	s.Equal(StatusPending, view.Status)
	s.Equal("bob", view.Prompt.DisplayName)

	view, err = s.registry.Decide(s.ctx, "sender-1", promptID, models.DecisionApproved)
	s.Require().NoError(err)
	s.Equal(StatusAnswered, view.Status)
	s.Require().NotNil(view.Outcome)
	s.True(view.Outcome.Proceed)

	blocking, err := s.store.BlockingIdentity(s.ctx, "bob")
	s.Require().NoError(err)
	s.Nil(blocking)
}

func (s *RegistrySuite) TestInspectAttachesFingerprint() {
	promptID, _ := s.raise()

	view, err := s.registry.Decide(s.ctx, "sender-1", promptID, models.DecisionInspected)
	s.Require().NoError(err)
	s.False(view.Outcome.Proceed)
	s.Require().NotNil(view.Fingerprint)
	s.Equal("12345", view.Fingerprint.DisplayText)
}

func (s *RegistrySuite) TestSecondAnswerConflicts() {
	promptID, _ := s.raise()

	_, err := s.registry.Decide(s.ctx, "sender-1", promptID, models.DecisionCancelled)
	s.Require().NoError(err)

	_, err = s.registry.Decide(s.ctx, "sender-1", promptID, models.DecisionApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *RegistrySuite) TestOtherAccountsCannotSeePrompt() {
	promptID, _ := s.raise()

	_, err := s.registry.Get(s.ctx, "sender-2", promptID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.registry.Decide(s.ctx, "sender-2", promptID, models.DecisionApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *RegistrySuite) TestExpiryDismissesPrompt() {
	promptID, _ := s.raise()

	s.Equal(0, s.registry.Sweep(s.ctx))
	s.clock.Advance(time.Minute)
	s.Equal(1, s.registry.Sweep(s.ctx))

	view, err := s.registry.Get(s.ctx, "sender-1", promptID)
	s.Require().NoError(err)
	s.Equal(StatusExpired, view.Status)
	s.Require().NotNil(view.Outcome)
	s.False(view.Outcome.Proceed)
	s.Equal(models.DecisionCancelled, view.Outcome.Decision)

	_, err = s.registry.Decide(s.ctx, "sender-1", promptID, models.DecisionApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	blocking, err := s.store.BlockingIdentity(s.ctx, "bob")
	s.Require().NoError(err)
	s.NotNil(blocking)

	s.clock.Advance(time.Minute)
	s.registry.Sweep(s.ctx)
	s.Equal(0, s.registry.Len())
}

func (s *RegistrySuite) TestDecideTimesOutWhenOutcomeNeverArrives() {
	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()

	prompt := models.Prompt{ID: id.NewPromptID(), RecipientID: "carol"}
	s.registry.PresentChoice(s.ctx, prompt, func(models.Decision) {})

	_, err := s.registry.Decide(ctx, "sender-1", prompt.ID, models.DecisionApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

func (s *RegistrySuite) TestSweepKeepsAnsweredPromptUntilOutcomeArrives() {
	ctx, ticket := s.registry.NewTicket(s.ctx)
	prompt := models.Prompt{ID: id.NewPromptID(), RecipientID: "carol"}
	s.registry.PresentChoice(ctx, prompt, func(models.Decision) {})

	waitCtx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()
	_, err := s.registry.Decide(waitCtx, "sender-1", prompt.ID, models.DecisionApproved)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeTimeout))

	s.clock.Advance(3 * time.Minute)
	s.Equal(0, s.registry.Sweep(s.ctx))
	s.Equal(1, s.registry.Len(), "a commit still in flight keeps its prompt")

	ticket.Complete(models.Outcome{Proceed: true, Decision: models.DecisionApproved})
	view, err := s.registry.Get(s.ctx, "sender-1", prompt.ID)
	s.Require().NoError(err)
	s.Require().NotNil(view.Outcome)
	s.True(view.Outcome.Proceed)

	s.registry.Sweep(s.ctx)
	s.Equal(0, s.registry.Len())
}

func (s *RegistrySuite) TestUnknownPrompt() {
	_, err := s.registry.Get(s.ctx, "sender-1", id.NewPromptID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
