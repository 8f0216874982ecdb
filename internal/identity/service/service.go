package service

import (
	"context"
	"log/slog"
	"time"

	"sendgate/internal/trustgate/models"
	"sendgate/pkg/attrs"
	id "sendgate/pkg/domain"
	dErrors "sendgate/pkg/domain-errors"
	"sendgate/pkg/platform/audit"
	"sendgate/pkg/requestcontext"
)

// maxIdentityKeyBytes bounds what a client may submit as a public identity key.
const maxIdentityKeyBytes = 64

// Store is the identity record lifecycle the service drives.
type Store interface {
	Get(ctx context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error)
	Observe(ctx context.Context, recipientID id.RecipientID, key []byte, now time.Time) (*models.RecipientIdentity, bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Observation is the result of recording a presented identity key.
type Observation struct {
	Identity   *models.RecipientIdentity
	Created    bool
	Superseded bool
}

// Service records the identity keys recipients present and answers lookups.
// Trust decisions are left to the gate; this service only moves records
// through observe and supersede.
type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe records the key a recipient currently presents. The first key is
// trusted on first use; a different key supersedes the record and will block
// the next send until the sender approves it.
func (s *Service) Observe(ctx context.Context, recipientID id.RecipientID, key []byte) (*Observation, error) {
	if recipientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "recipient_id is required")
	}
	if len(key) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "identity_key is required")
	}
	if len(key) > maxIdentityKeyBytes {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "identity_key is too long")
	}

	previous, err := s.store.Get(ctx, recipientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load identity")
	}
	record, superseded, err := s.store.Observe(ctx, recipientID, key, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to record identity")
	}

	obs := &Observation{Identity: record, Created: previous == nil, Superseded: superseded}
	switch {
	case obs.Superseded:
		s.logAudit(ctx, audit.EventIdentitySuperseded, record,
			"previous_key", previous.KeyHex(),
			"reason", "identity_key_changed")
	case obs.Created:
		s.logAudit(ctx, audit.EventIdentityObserved, record)
	}
	return obs, nil
}

// Get returns the recipient's current identity record.
func (s *Service) Get(ctx context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error) {
	record, err := s.store.Get(ctx, recipientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load identity")
	}
	if record == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	return record, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, record *models.RecipientIdentity, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if s.logger != nil {
		args := append([]any{
			"event", string(event),
			"log_type", "audit",
			"recipient_id", record.RecipientID.String(),
			"key", record.KeyHex(),
			"request_id", requestID,
		}, attributes...)
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		AccountID:      requestcontext.AccountID(ctx),
		RecipientID:    record.RecipientID,
		Action:         string(event),
		Reason:         attrs.ExtractString(attributes, "reason"),
		KeyFingerprint: record.KeyHex(),
		RequestID:      requestID,
	})
}
