package httptransport

import (
	"context"

	identitysvc "sendgate/internal/identity/service"
	"sendgate/internal/trustgate/models"
	"sendgate/internal/trustgate/presenter"
	id "sendgate/pkg/domain"
)

//go:generate mockgen -source=services.go -destination=mocks/mocks.go -package=mocks

// GateService raises trust prompts for a send and previews what would block it.
type GateService interface {
	PresentIfNecessary(ctx context.Context, recipientIDs []id.RecipientID, confirmationText string, onComplete func(models.Outcome)) (bool, error)
	Pending(ctx context.Context, recipientIDs []id.RecipientID) ([]*models.Selection, error)
	PresentSafetyNumber(ctx context.Context, recipientID id.RecipientID, identityKey []byte, displayName string) (*models.Fingerprint, error)
}

// PromptRegistry holds prompts raised through the API until they are answered.
type PromptRegistry interface {
	NewTicket(ctx context.Context) (context.Context, *presenter.Ticket)
	Get(ctx context.Context, accountID id.AccountID, promptID id.PromptID) (*presenter.View, error)
	Decide(ctx context.Context, accountID id.AccountID, promptID id.PromptID, kind models.DecisionKind) (*presenter.View, error)
}

// IdentityService records the identity keys seen for recipients.
type IdentityService interface {
	Observe(ctx context.Context, recipientID id.RecipientID, key []byte) (*identitysvc.Observation, error)
	Get(ctx context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error)
}

// ContactDirectory stores display names.
type ContactDirectory interface {
	Put(ctx context.Context, recipientID id.RecipientID, name string) error
}
