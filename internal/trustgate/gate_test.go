package trustgate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"sendgate/internal/platform/logger"
	"sendgate/internal/trustgate/metrics"
	"sendgate/internal/trustgate/mocks"
	"sendgate/internal/trustgate/models"
	id "sendgate/pkg/domain"
	dErrors "sendgate/pkg/domain-errors"
	"sendgate/pkg/platform/audit"
	"sendgate/pkg/platform/sentinel"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

type GateSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	store        *mocks.MockTrustStore
	fingerprints *mocks.MockFingerprintService
	names        *mocks.MockNameResolver
	presenter    *mocks.MockPresenter
	metrics      *metrics.Metrics
	spans        *tracetest.SpanRecorder
	gate         *Gate
	ctx          context.Context
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockTrustStore(s.ctrl)
	s.fingerprints = mocks.NewMockFingerprintService(s.ctrl)
	s.names = mocks.NewMockNameResolver(s.ctrl)
	s.presenter = mocks.NewMockPresenter(s.ctrl)
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	s.spans = tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(s.spans))
	s.gate = New(s.store, s.fingerprints, s.names, s.presenter,
		WithLogger(logger.Discard()),
		WithMetrics(s.metrics),
		WithTracer(tp.Tracer("trustgate-test")),
	)
	s.ctx = context.Background()
}

func blocking(recipientID id.RecipientID, key string) *models.RecipientIdentity {
	return &models.RecipientIdentity{RecipientID: recipientID, IdentityKey: []byte(key)}
}

// raise evaluates ids, expects a prompt, and returns it with its choice callback.
func (s *GateSuite) raise(ids []id.RecipientID, outcomes *[]models.Outcome) (models.Prompt, func(models.Decision)) {
	var prompt models.Prompt
	var onChoice func(models.Decision)
	s.presenter.EXPECT().PresentChoice(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p models.Prompt, cb func(models.Decision)) {
			prompt, onChoice = p, cb
		})

	raised, err := s.gate.PresentIfNecessary(s.ctx, ids, "Send", func(o models.Outcome) {
		*outcomes = append(*outcomes, o)
	})
	s.Require().NoError(err)
	s.Require().True(raised)
	s.Require().NotNil(onChoice)
	return prompt, onChoice
}

func (s *GateSuite) TestNoBlockingIdentityClearsSend() {
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("A")).Return(nil, nil)
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("B")).Return(nil, nil)

	called := false
	raised, err := s.gate.PresentIfNecessary(s.ctx, []id.RecipientID{"A", "B"}, "Send", func(models.Outcome) {
		called = true
	})

	s.Require().NoError(err)
	s.False(raised)
	s.False(called)
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Evaluations.WithLabelValues("cleared")))
}

func (s *GateSuite) TestSelectsFirstBlockingRecipientInInputOrder() {
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("A")).Return(nil, nil)
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("B")).Return(blocking("B", "kb"), nil)
	s.names.EXPECT().DisplayName(gomock.Any(), id.RecipientID("B")).Return("Bea", true, nil)

	var outcomes []models.Outcome
	prompt, _ := s.raise([]id.RecipientID{"A", "B", "C"}, &outcomes)

	s.Equal(id.RecipientID("B"), prompt.RecipientID)
	s.Equal([]byte("kb"), prompt.IdentityKey)
	s.Equal("Bea", prompt.DisplayName)
	s.Equal("Send", prompt.ConfirmationText)
	s.False(prompt.ID.IsNil())
	s.Empty(outcomes)
}

func (s *GateSuite) TestDisplayNameFallsBackToRecipientID() {
	s.Run("no saved name", func() {
		s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("+15550001")).Return(blocking("+15550001", "k"), nil)
		s.names.EXPECT().DisplayName(gomock.Any(), id.RecipientID("+15550001")).Return("", false, nil)

		selection, err := s.gate.Evaluate(s.ctx, []id.RecipientID{"+15550001"})
		s.Require().NoError(err)
		s.Equal("+15550001", selection.DisplayName)
	})

	s.Run("resolver failure is not an error", func() {
		s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("+15550002")).Return(blocking("+15550002", "k"), nil)
		s.names.EXPECT().DisplayName(gomock.Any(), id.RecipientID("+15550002")).Return("", false, errors.New("directory offline"))

		selection, err := s.gate.Evaluate(s.ctx, []id.RecipientID{"+15550002"})
		s.Require().NoError(err)
		s.Equal("+15550002", selection.DisplayName)
	})
}

func (s *GateSuite) TestEvaluateErrors() {
	s.Run("empty batch", func() {
		_, err := s.gate.Evaluate(s.ctx, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("store failure is never a clear", func() {
		s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("A")).Return(nil, sentinel.ErrUnavailable)

		raised, err := s.gate.PresentIfNecessary(s.ctx, []id.RecipientID{"A"}, "", func(models.Outcome) {
			s.Fail("completion must not fire")
		})
		s.False(raised)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
		s.ErrorIs(err, sentinel.ErrUnavailable)
	})
}

func (s *GateSuite) TestApproveCommitsBothLevelsThenProceeds() {
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("B")).Return(blocking("B", "kb"), nil)
	s.names.EXPECT().DisplayName(gomock.Any(), gomock.Any()).Return("", false, nil)

	var outcomes []models.Outcome
	_, onChoice := s.raise([]id.RecipientID{"B"}, &outcomes)

	s.store.EXPECT().Approve(gomock.Any(), id.RecipientID("B"), []byte("kb"), true, true).Return(nil)
	onChoice(models.Decision{Kind: models.DecisionApproved})

	s.Require().Len(outcomes, 1)
	s.True(outcomes[0].Proceed)
	s.Equal(models.DecisionApproved, outcomes[0].Decision)
	s.NoError(outcomes[0].Err)
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Decisions.WithLabelValues("approved")))
}

func (s *GateSuite) TestCommitFailureIsDistinguishable() {
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("B")).Return(blocking("B", "kb"), nil)
	s.names.EXPECT().DisplayName(gomock.Any(), gomock.Any()).Return("", false, nil)

	var outcomes []models.Outcome
	prompt, onChoice := s.raise([]id.RecipientID{"B"}, &outcomes)

	s.store.EXPECT().Approve(gomock.Any(), id.RecipientID("B"), []byte("kb"), true, true).Return(sentinel.ErrConflict)
	onChoice(models.Approve(prompt.Identity()))

	s.Require().Len(outcomes, 1)
	s.False(outcomes[0].Proceed)
	s.True(outcomes[0].Failed())
	s.True(dErrors.HasCode(outcomes[0].Err, dErrors.CodeCommitFailed))
	s.ErrorIs(outcomes[0].Err, sentinel.ErrConflict)
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.CommitFailures))
}

func (s *GateSuite) TestCancelNeverMutates() {
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("B")).Return(blocking("B", "kb"), nil)
	s.names.EXPECT().DisplayName(gomock.Any(), gomock.Any()).Return("", false, nil)

	var outcomes []models.Outcome
	_, onChoice := s.raise([]id.RecipientID{"B"}, &outcomes)
	onChoice(models.Cancel())

	s.Require().Len(outcomes, 1)
	s.False(outcomes[0].Proceed)
	s.Equal(models.DecisionCancelled, outcomes[0].Decision)
	s.NoError(outcomes[0].Err)
}

func (s *GateSuite) TestInspectPresentsFingerprintAndAbandonsSend() {
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("B")).Return(blocking("B", "kb"), nil)
	s.names.EXPECT().DisplayName(gomock.Any(), gomock.Any()).Return("Bea", true, nil)

	var outcomes []models.Outcome
	prompt, onChoice := s.raise([]id.RecipientID{"B"}, &outcomes)

	fp := &models.Fingerprint{RecipientID: "B", DisplayText: "12345 67890"}
	s.fingerprints.EXPECT().Build(gomock.Any(), id.RecipientID("B"), []byte("kb")).Return(fp, nil)
	s.presenter.EXPECT().PresentFingerprint(gomock.Any(), gomock.Any(), fp).
		Do(func(_ context.Context, p models.Prompt, _ *models.Fingerprint) {
			s.Equal("Bea", p.DisplayName)
		})
	onChoice(models.Inspect(prompt.Identity()))

	s.Require().Len(outcomes, 1)
	s.False(outcomes[0].Proceed)
	s.Equal(models.DecisionInspected, outcomes[0].Decision)
}

func (s *GateSuite) TestInspectStillAbandonsWhenFingerprintFails() {
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("B")).Return(blocking("B", "kb"), nil)
	s.names.EXPECT().DisplayName(gomock.Any(), gomock.Any()).Return("", false, nil)

	var outcomes []models.Outcome
	_, onChoice := s.raise([]id.RecipientID{"B"}, &outcomes)

	s.fingerprints.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("no local key"))
	onChoice(models.Decision{Kind: models.DecisionInspected})

	s.Require().Len(outcomes, 1)
	s.False(outcomes[0].Proceed)
	s.NoError(outcomes[0].Err)
}

func (s *GateSuite) TestOnlyFirstDecisionCounts() {
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("B")).Return(blocking("B", "kb"), nil)
	s.names.EXPECT().DisplayName(gomock.Any(), gomock.Any()).Return("", false, nil)

	var outcomes []models.Outcome
	_, onChoice := s.raise([]id.RecipientID{"B"}, &outcomes)

	onChoice(models.Cancel())
	onChoice(models.Decision{Kind: models.DecisionApproved})

	s.Require().Len(outcomes, 1)
	s.Equal(models.DecisionCancelled, outcomes[0].Decision)
}

func (s *GateSuite) TestDecisionForAnotherIdentityIsCancelled() {
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("B")).Return(blocking("B", "kb"), nil)
	s.names.EXPECT().DisplayName(gomock.Any(), gomock.Any()).Return("", false, nil)

	var outcomes []models.Outcome
	_, onChoice := s.raise([]id.RecipientID{"B"}, &outcomes)

	onChoice(models.Approve(blocking("B", "stale-key")))

	s.Require().Len(outcomes, 1)
	s.False(outcomes[0].Proceed)
	s.Equal(models.DecisionCancelled, outcomes[0].Decision)
}

func (s *GateSuite) TestResolveDirectly() {
	s.Run("cancel", func() {
		var got []models.Outcome
		s.gate.Resolve(s.ctx, models.Cancel(), func(o models.Outcome) { got = append(got, o) })
		s.Require().Len(got, 1)
		s.False(got[0].Proceed)
	})

	s.Run("approve is idempotent through the store", func() {
		s.store.EXPECT().Approve(gomock.Any(), id.RecipientID("C"), []byte("kc"), true, true).Return(nil).Times(2)

		var got []models.Outcome
		decision := models.Approve(blocking("C", "kc"))
		s.gate.Resolve(s.ctx, decision, func(o models.Outcome) { got = append(got, o) })
		s.gate.Resolve(s.ctx, decision, func(o models.Outcome) { got = append(got, o) })

		s.Require().Len(got, 2)
		s.True(got[0].Proceed)
		s.True(got[1].Proceed)
	})
}

func (s *GateSuite) TestAwaitDeliversOneOutcomeThenCloses() {
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("B")).Return(blocking("B", "kb"), nil)
	s.names.EXPECT().DisplayName(gomock.Any(), gomock.Any()).Return("", false, nil)
	s.presenter.EXPECT().PresentChoice(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, _ models.Prompt, cb func(models.Decision)) {
			cb(models.Cancel())
		})

	outcomes, raised, err := s.gate.Await(s.ctx, []id.RecipientID{"B"}, "Send")
	s.Require().NoError(err)
	s.Require().True(raised)

	outcome, ok := <-outcomes
	s.True(ok)
	s.False(outcome.Proceed)
	_, ok = <-outcomes
	s.False(ok)
}

func (s *GateSuite) TestAwaitWithoutGate() {
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("A")).Return(nil, nil)

	outcomes, raised, err := s.gate.Await(s.ctx, []id.RecipientID{"A"}, "Send")
	s.Require().NoError(err)
	s.False(raised)
	s.Nil(outcomes)
}

func (s *GateSuite) TestPendingListsEveryBlockingIdentity() {
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("A")).Return(blocking("A", "ka"), nil)
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("B")).Return(nil, nil)
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("C")).Return(blocking("C", "kc"), nil)
	s.names.EXPECT().DisplayName(gomock.Any(), id.RecipientID("A")).Return("Ann", true, nil)
	s.names.EXPECT().DisplayName(gomock.Any(), id.RecipientID("C")).Return("", false, nil)

	pending, err := s.gate.Pending(s.ctx, []id.RecipientID{"A", "B", "C"})
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal("Ann", pending[0].DisplayName)
	s.Equal("C", pending[1].DisplayName)
}

func (s *GateSuite) TestSpansCoverEvaluateAndCommit() {
	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("B")).Return(blocking("B", "kb"), nil)
	s.names.EXPECT().DisplayName(gomock.Any(), gomock.Any()).Return("", false, nil)
	s.store.EXPECT().Approve(gomock.Any(), gomock.Any(), gomock.Any(), true, true).Return(nil)

	var outcomes []models.Outcome
	_, onChoice := s.raise([]id.RecipientID{"B"}, &outcomes)
	onChoice(models.Decision{Kind: models.DecisionApproved})

	var names []string
	for _, span := range s.spans.Ended() {
		names = append(names, span.Name())
	}
	s.Contains(names, "trustgate.evaluate")
	s.Contains(names, "trustgate.commit")
}

func (s *GateSuite) TestAuditTrail() {
	publisher := mocks.NewMockAuditPublisher(s.ctrl)
	gate := New(s.store, s.fingerprints, nil, s.presenter,
		WithLogger(logger.Discard()),
		WithAuditPublisher(publisher),
	)

	s.store.EXPECT().BlockingIdentity(gomock.Any(), id.RecipientID("B")).Return(blocking("B", "kb"), nil)
	s.store.EXPECT().Approve(gomock.Any(), gomock.Any(), gomock.Any(), true, true).Return(nil)
	s.presenter.EXPECT().PresentChoice(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, p models.Prompt, cb func(models.Decision)) {
			s.Equal("B", p.DisplayName)
			cb(models.Decision{Kind: models.DecisionApproved})
		})

	gomock.InOrder(
		publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventGateRaised), e.Action)
			return nil
		}),
		publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventIdentityApproved), e.Action)
			s.Equal(string(models.DecisionApproved), e.Decision)
			s.Equal(models.ShortKey([]byte("kb")), e.KeyFingerprint)
			return nil
		}),
	)

	raised, err := gate.PresentIfNecessary(s.ctx, []id.RecipientID{"B"}, "Send", nil)
	s.Require().NoError(err)
	s.True(raised)
}

func (s *GateSuite) TestPresentSafetyNumberWithoutPendingSend() {
	fp := &models.Fingerprint{RecipientID: "D", DisplayText: "55555"}
	s.names.EXPECT().DisplayName(gomock.Any(), id.RecipientID("D")).Return("Dee", true, nil)
	s.fingerprints.EXPECT().Build(gomock.Any(), id.RecipientID("D"), []byte("kd")).Return(fp, nil)
	s.presenter.EXPECT().PresentFingerprint(gomock.Any(), gomock.Any(), fp).
		Do(func(_ context.Context, p models.Prompt, _ *models.Fingerprint) {
			s.Equal("Dee", p.DisplayName)
			s.True(p.ID.IsNil())
		})

	got, err := s.gate.PresentSafetyNumber(s.ctx, "D", []byte("kd"), "")
	s.Require().NoError(err)
	s.Same(fp, got)
}

func TestCommitFailureReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"superseded key", fmt.Errorf("approve: %w", sentinel.ErrConflict), "key_superseded"},
		{"missing identity", sentinel.ErrNotFound, "identity_missing"},
		{"store outage", errors.New("connection reset"), "store_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commitFailureReason(tt.err); got != tt.want {
				t.Errorf("commitFailureReason() = %q, want %q", got, tt.want)
			}
		})
	}
}
