package audit

import (
	"context"
	"time"

	id "sendgate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers trust decisions a sender made about a recipient's
	// identity. These require durable storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers identity key changes and failed approvals.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine gate activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category    EventCategory
	Timestamp   time.Time
	AccountID   id.AccountID
	RecipientID id.RecipientID
	Action      string
	Decision    string
	Reason      string
	// KeyFingerprint is a short hex prefix of the identity key involved. Raw key
	// bytes never enter the audit trail.
	KeyFingerprint string
	RequestID      string
}

type AuditEvent string

const (
	EventIdentityObserved       AuditEvent = "identity_observed"
	EventIdentitySuperseded     AuditEvent = "identity_superseded"
	EventIdentityApproved       AuditEvent = "identity_approved"
	EventIdentityApprovalFailed AuditEvent = "identity_approval_failed"
	EventGateRaised             AuditEvent = "trust_gate_raised"
	EventGateCancelled          AuditEvent = "trust_gate_cancelled"
	EventSafetyNumberViewed     AuditEvent = "safety_number_viewed"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventIdentityApproved:   CategoryCompliance,
	EventSafetyNumberViewed: CategoryCompliance,

	EventIdentityObserved:       CategorySecurity,
	EventIdentitySuperseded:     CategorySecurity,
	EventIdentityApprovalFailed: CategorySecurity,

	EventGateRaised:    CategoryOperations,
	EventGateCancelled: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Emitter emits audit events.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Reader lists persisted events for a recipient, oldest first.
type Reader interface {
	ListByRecipient(ctx context.Context, recipientID id.RecipientID) ([]Event, error)
}
