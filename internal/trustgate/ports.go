package trustgate

import (
	"context"

	"sendgate/internal/trustgate/models"
	id "sendgate/pkg/domain"
	"sendgate/pkg/platform/audit"
)

// TrustStore answers the blocking-identity query and records approvals. It is
// responsible for making an approval atomic per recipient and key, and for
// treating a repeated approval as a no-op.
type TrustStore interface {
	// BlockingIdentity returns nil, nil when the recipient has nothing to confirm.
	BlockingIdentity(ctx context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error)
	Approve(ctx context.Context, recipientID id.RecipientID, identityKey []byte, blocking, nonBlocking bool) error
}

// BatchTrustStore is optionally implemented by a TrustStore that answers the
// blocking query for many recipients in one round trip. Hits come back in
// input order.
type BatchTrustStore interface {
	BlockingIdentities(ctx context.Context, recipientIDs []id.RecipientID) ([]*models.RecipientIdentity, error)
}

// FingerprintService builds the safety number shown when a sender inspects a key.
type FingerprintService interface {
	Build(ctx context.Context, recipientID id.RecipientID, identityKey []byte) (*models.Fingerprint, error)
}

// NameResolver looks up the display name a sender saved for a recipient.
type NameResolver interface {
	DisplayName(ctx context.Context, recipientID id.RecipientID) (string, bool, error)
}

// Presenter shows prompts to the sender. PresentChoice must eventually call
// onChoice with the sender's decision; a dismissed prompt reports a
// cancellation.
type Presenter interface {
	PresentChoice(ctx context.Context, prompt models.Prompt, onChoice func(models.Decision))
	PresentFingerprint(ctx context.Context, prompt models.Prompt, fingerprint *models.Fingerprint)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
