// Package trustgate intercepts sends to recipients whose identity key changed
// since the sender last trusted it. A gate round trip is Evaluate, a prompt
// answered through the Presenter, then Resolve; the caller learns through a
// single completion whether the send may proceed.
package trustgate

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"sendgate/internal/platform/dispatch"
	"sendgate/internal/trustgate/metrics"
	"sendgate/internal/trustgate/models"
	"sendgate/pkg/attrs"
	id "sendgate/pkg/domain"
	dErrors "sendgate/pkg/domain-errors"
	"sendgate/pkg/platform/audit"
	"sendgate/pkg/platform/sentinel"
	"sendgate/pkg/requestcontext"
)

const defaultConfirmationText = "Send anyway"

// Gate evaluates recipient batches and resolves the sender's decision. It
// holds no per-send state; everything a round trip needs travels in the
// prompt and the completion closure.
type Gate struct {
	store        TrustStore
	fingerprints FingerprintService
	names        NameResolver
	presenter    Presenter

	commits     dispatch.Executor
	interactive dispatch.Executor
	inflight    singleflight.Group

	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	tracer         trace.Tracer
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(g *Gate) {
		g.auditPublisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(g *Gate) {
		g.tracer = tracer
	}
}

// WithCommitQueue sets where approval writes run. Defaults to the caller's goroutine.
func WithCommitQueue(executor dispatch.Executor) Option {
	return func(g *Gate) {
		if executor != nil {
			g.commits = executor
		}
	}
}

// WithInteractiveQueue sets where completions are delivered. Defaults to the
// goroutine that produced the outcome.
func WithInteractiveQueue(executor dispatch.Executor) Option {
	return func(g *Gate) {
		if executor != nil {
			g.interactive = executor
		}
	}
}

// New constructs a Gate. names may be nil, in which case raw recipient IDs are shown.
func New(store TrustStore, fingerprints FingerprintService, names NameResolver, presenter Presenter, opts ...Option) *Gate {
	g := &Gate{
		store:        store,
		fingerprints: fingerprints,
		names:        names,
		presenter:    presenter,
		commits:      dispatch.Inline,
		interactive:  dispatch.Inline,
		logger:       slog.Default(),
		tracer:       otel.Tracer("sendgate/trustgate"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate returns the identity to confirm before sending to recipientIDs, or
// nil when nothing blocks. Only the first recipient in input order with a
// blocking identity is selected; the rest surface on the next attempt.
func (g *Gate) Evaluate(ctx context.Context, recipientIDs []id.RecipientID) (*models.Selection, error) {
	ctx, span := g.tracer.Start(ctx, "trustgate.evaluate",
		trace.WithAttributes(attribute.Int("recipients", len(recipientIDs))))
	defer span.End()

	if len(recipientIDs) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one recipient is required")
	}
	for _, recipientID := range recipientIDs {
		identity, err := g.store.BlockingIdentity(ctx, recipientID)
		if err != nil {
			g.metrics.IncrementEvaluation("error")
			span.RecordError(err)
			span.SetStatus(codes.Error, "blocking identity lookup failed")
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to query blocking identity")
		}
		if identity == nil {
			continue
		}
		g.metrics.IncrementEvaluation("raised")
		span.SetAttributes(attribute.String("recipient_id", recipientID.String()))
		return &models.Selection{
			Identity:    identity,
			DisplayName: g.displayName(ctx, recipientID),
		}, nil
	}
	g.metrics.IncrementEvaluation("cleared")
	return nil, nil
}

// Pending lists every blocking identity in the batch, in input order. It is a
// read-only preview; a gate only ever presents the first.
func (g *Gate) Pending(ctx context.Context, recipientIDs []id.RecipientID) ([]*models.Selection, error) {
	if len(recipientIDs) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one recipient is required")
	}
	identities, err := g.blockingIdentities(ctx, recipientIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to query blocking identities")
	}
	pending := make([]*models.Selection, 0, len(identities))
	for _, identity := range identities {
		pending = append(pending, &models.Selection{
			Identity:    identity,
			DisplayName: g.displayName(ctx, identity.RecipientID),
		})
	}
	return pending, nil
}

// blockingIdentities uses the store's batch query when it has one.
func (g *Gate) blockingIdentities(ctx context.Context, recipientIDs []id.RecipientID) ([]*models.RecipientIdentity, error) {
	if batch, ok := g.store.(BatchTrustStore); ok {
		return batch.BlockingIdentities(ctx, recipientIDs)
	}
	var identities []*models.RecipientIdentity
	for _, recipientID := range recipientIDs {
		identity, err := g.store.BlockingIdentity(ctx, recipientID)
		if err != nil {
			return nil, err
		}
		if identity != nil {
			identities = append(identities, identity)
		}
	}
	return identities, nil
}

// PresentIfNecessary raises a gate when any recipient has an identity to
// confirm. It returns false when nothing blocks, and onComplete is then never
// called: the caller proceeds on its own. When it returns true, onComplete is
// called exactly once with the outcome of the sender's decision.
func (g *Gate) PresentIfNecessary(ctx context.Context, recipientIDs []id.RecipientID, confirmationText string, onComplete func(models.Outcome)) (bool, error) {
	selection, err := g.Evaluate(ctx, recipientIDs)
	if err != nil {
		return false, err
	}
	if selection == nil {
		return false, nil
	}
	if confirmationText == "" {
		confirmationText = defaultConfirmationText
	}

	prompt := models.Prompt{
		ID:               id.NewPromptID(),
		RecipientID:      selection.Identity.RecipientID,
		IdentityKey:      selection.Identity.IdentityKey,
		DisplayName:      selection.DisplayName,
		ConfirmationText: confirmationText,
		CreatedAt:        requestcontext.Now(ctx),
	}
	// The sender answers long after the request that raised the gate is gone.
	decisionCtx := context.WithoutCancel(ctx)
	complete := exactlyOnce(onComplete)

	var answered atomic.Bool
	onChoice := func(decision models.Decision) {
		if !answered.CompareAndSwap(false, true) {
			g.logger.WarnContext(decisionCtx, "ignoring repeated decision for trust prompt",
				"prompt_id", prompt.ID.String(),
				"decision", string(decision.Kind),
			)
			return
		}
		g.resolve(decisionCtx, prompt, g.reconcile(decisionCtx, prompt, decision), complete)
	}

	g.logEvent(ctx, slog.LevelInfo, audit.EventGateRaised, prompt.Identity(), "",
		"prompt_id", prompt.ID.String())
	g.presenter.PresentChoice(ctx, prompt, onChoice)
	return true, nil
}

// PresentIfNecessaryForRecipient is PresentIfNecessary for a single recipient.
func (g *Gate) PresentIfNecessaryForRecipient(ctx context.Context, recipientID id.RecipientID, confirmationText string, onComplete func(models.Outcome)) (bool, error) {
	return g.PresentIfNecessary(ctx, []id.RecipientID{recipientID}, confirmationText, onComplete)
}

// Await is PresentIfNecessary with the completion delivered on a channel that
// receives exactly one outcome and is then closed. The channel is nil when no
// gate was raised.
func (g *Gate) Await(ctx context.Context, recipientIDs []id.RecipientID, confirmationText string) (<-chan models.Outcome, bool, error) {
	outcomes := make(chan models.Outcome, 1)
	raised, err := g.PresentIfNecessary(ctx, recipientIDs, confirmationText, func(outcome models.Outcome) {
		outcomes <- outcome
		close(outcomes)
	})
	if err != nil || !raised {
		return nil, raised, err
	}
	return outcomes, true, nil
}

// Resolve applies a decision outside a presented prompt, for instance when a
// decision is replayed from another device. done is called exactly once.
func (g *Gate) Resolve(ctx context.Context, decision models.Decision, done func(models.Outcome)) {
	prompt := models.Prompt{
		RecipientID: decision.RecipientID,
		IdentityKey: decision.IdentityKey,
	}
	if decision.Kind == models.DecisionInspected {
		prompt.DisplayName = g.displayName(ctx, decision.RecipientID)
	}
	g.resolve(ctx, prompt, decision, exactlyOnce(done))
}

// PresentSafetyNumber builds the safety number for a recipient key and hands it
// to the presenter. It does not touch the trust store.
func (g *Gate) PresentSafetyNumber(ctx context.Context, recipientID id.RecipientID, identityKey []byte, displayName string) (*models.Fingerprint, error) {
	if displayName == "" {
		displayName = g.displayName(ctx, recipientID)
	}
	return g.presentSafetyNumber(ctx, models.Prompt{
		RecipientID: recipientID,
		IdentityKey: identityKey,
		DisplayName: displayName,
		CreatedAt:   requestcontext.Now(ctx),
	})
}

func (g *Gate) presentSafetyNumber(ctx context.Context, prompt models.Prompt) (*models.Fingerprint, error) {
	ctx, span := g.tracer.Start(ctx, "trustgate.safety_number",
		trace.WithAttributes(attribute.String("recipient_id", prompt.RecipientID.String())))
	defer span.End()

	fingerprint, err := g.fingerprints.Build(ctx, prompt.RecipientID, prompt.IdentityKey)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fingerprint build failed")
		return nil, err
	}
	g.presenter.PresentFingerprint(ctx, prompt, fingerprint)
	g.logEvent(ctx, slog.LevelInfo, audit.EventSafetyNumberViewed, prompt.Identity(), string(models.DecisionInspected))
	return fingerprint, nil
}

func (g *Gate) resolve(ctx context.Context, prompt models.Prompt, decision models.Decision, complete func(models.Outcome)) {
	g.metrics.IncrementDecision(string(decision.Kind))
	switch decision.Kind {
	case models.DecisionApproved:
		g.commit(ctx, decision, complete)
	case models.DecisionInspected:
		prompt.RecipientID, prompt.IdentityKey = decision.RecipientID, decision.IdentityKey
		if _, err := g.presentSafetyNumber(ctx, prompt); err != nil {
			g.logger.ErrorContext(ctx, "failed to build safety number",
				"recipient_id", decision.RecipientID.String(),
				"error", err,
			)
		}
		g.deliver(complete, models.Outcome{Decision: models.DecisionInspected})
	default:
		g.logEvent(ctx, slog.LevelInfo, audit.EventGateCancelled, prompt.Identity(), string(models.DecisionCancelled))
		g.deliver(complete, models.Outcome{Decision: models.DecisionCancelled})
	}
}

// commit persists an approval on the commit queue and only then schedules the
// completion on the interactive queue.
func (g *Gate) commit(ctx context.Context, decision models.Decision, complete func(models.Outcome)) {
	ctx = context.WithoutCancel(ctx)
	queued := time.Now()
	g.commits.Submit(func() {
		err := g.approve(ctx, decision)
		g.metrics.ObserveCommit(time.Since(queued), err != nil)

		identity := &models.RecipientIdentity{RecipientID: decision.RecipientID, IdentityKey: decision.IdentityKey}
		outcome := models.Outcome{Decision: models.DecisionApproved}
		if err != nil {
			outcome.Err = dErrors.Wrap(err, dErrors.CodeCommitFailed, "failed to record identity approval")
			g.logEvent(ctx, slog.LevelError, audit.EventIdentityApprovalFailed, identity, string(models.DecisionApproved),
				"error", err,
				"reason", commitFailureReason(err))
		} else {
			outcome.Proceed = true
			g.logEvent(ctx, slog.LevelInfo, audit.EventIdentityApproved, identity, string(models.DecisionApproved))
		}
		g.deliver(complete, outcome)
	})
}

// approve coalesces concurrent approvals of the same recipient and key into one
// store write. Approving both levels together is intentional.
func (g *Gate) approve(ctx context.Context, decision models.Decision) error {
	ctx, span := g.tracer.Start(ctx, "trustgate.commit",
		trace.WithAttributes(attribute.String("recipient_id", decision.RecipientID.String())))
	defer span.End()

	key := decision.RecipientID.String() + "/" + hex.EncodeToString(decision.IdentityKey)
	_, err, shared := g.inflight.Do(key, func() (any, error) {
		return nil, g.store.Approve(ctx, decision.RecipientID, decision.IdentityKey, true, true)
	})
	span.SetAttributes(attribute.Bool("shared", shared))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "approval commit failed")
	}
	return err
}

// reconcile checks a presenter's decision against the prompt it answers. A
// decision without an identity refers to the prompted one; a decision naming
// a different identity is treated as a dismissal.
func (g *Gate) reconcile(ctx context.Context, prompt models.Prompt, decision models.Decision) models.Decision {
	switch decision.Kind {
	case models.DecisionApproved, models.DecisionInspected:
	default:
		return models.Cancel()
	}
	if decision.RecipientID.IsNil() && len(decision.IdentityKey) == 0 {
		decision.RecipientID = prompt.RecipientID
		decision.IdentityKey = prompt.IdentityKey
		return decision
	}
	if !prompt.Identity().Matches(decision.RecipientID, decision.IdentityKey) {
		g.logger.WarnContext(ctx, "decision does not match prompted identity, treating as cancelled",
			"prompt_id", prompt.ID.String(),
			"recipient_id", prompt.RecipientID.String(),
			"decision_recipient_id", decision.RecipientID.String(),
		)
		return models.Cancel()
	}
	return decision
}

func (g *Gate) deliver(complete func(models.Outcome), outcome models.Outcome) {
	g.interactive.Submit(func() { complete(outcome) })
}

// displayName falls back to the raw recipient ID when no name is known.
func (g *Gate) displayName(ctx context.Context, recipientID id.RecipientID) string {
	if g.names == nil {
		return recipientID.String()
	}
	name, ok, err := g.names.DisplayName(ctx, recipientID)
	if err != nil {
		g.logger.DebugContext(ctx, "display name lookup failed, using recipient id",
			"recipient_id", recipientID.String(),
			"error", err,
		)
		return recipientID.String()
	}
	if !ok || name == "" {
		return recipientID.String()
	}
	return name
}

func (g *Gate) logEvent(ctx context.Context, level slog.Level, event audit.AuditEvent, identity *models.RecipientIdentity, decision string, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	args := append([]any{
		"event", string(event),
		"log_type", "audit",
		"recipient_id", identity.RecipientID.String(),
		"key", identity.KeyHex(),
		"request_id", requestID,
	}, attributes...)
	g.logger.Log(ctx, level, string(event), args...)

	if g.auditPublisher == nil {
		return
	}
	_ = g.auditPublisher.Emit(ctx, audit.Event{
		AccountID:      requestcontext.AccountID(ctx),
		RecipientID:    identity.RecipientID,
		Action:         string(event),
		Decision:       decision,
		Reason:         attrs.ExtractString(attributes, "reason"),
		KeyFingerprint: identity.KeyHex(),
		RequestID:      requestID,
	})
}

func commitFailureReason(err error) string {
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return "key_superseded"
	case errors.Is(err, sentinel.ErrNotFound):
		return "identity_missing"
	default:
		return "store_error"
	}
}

func exactlyOnce(done func(models.Outcome)) func(models.Outcome) {
	var once sync.Once
	return func(outcome models.Outcome) {
		once.Do(func() {
			if done != nil {
				done(outcome)
			}
		})
	}
}
