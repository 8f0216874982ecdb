package httptransport

import (
	"encoding/base64"
	"strings"

	"sendgate/internal/contacts"
	"sendgate/internal/trustgate/models"
	id "sendgate/pkg/domain"
	dErrors "sendgate/pkg/domain-errors"
)

const maxConfirmationTextLength = 128

// SendGateRequest asks whether a send to the given recipients may proceed.
type SendGateRequest struct {
	RecipientIDs     []string `json:"recipient_ids"`
	ConfirmationText string   `json:"confirmation_text"`
}

// Normalize trims the confirmation text.
func (r *SendGateRequest) Normalize() {
	r.ConfirmationText = strings.TrimSpace(r.ConfirmationText)
}

// Validate parses the recipient batch. Order and duplicates are preserved.
func (r *SendGateRequest) Validate() ([]id.RecipientID, error) {
	if len(r.ConfirmationText) > maxConfirmationTextLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "confirmation_text is too long")
	}
	return id.ParseRecipientIDs(r.RecipientIDs)
}

// DecisionRequest answers a pending prompt.
type DecisionRequest struct {
	Choice string `json:"choice"`
}

func (r *DecisionRequest) Validate() (models.DecisionKind, error) {
	kind, ok := models.ParseDecisionKind(strings.ToLower(strings.TrimSpace(r.Choice)))
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "choice must be one of approve, verify or cancel")
	}
	return kind, nil
}

// ObserveIdentityRequest reports the identity key currently seen for a recipient.
type ObserveIdentityRequest struct {
	RecipientID string `json:"recipient_id"`
	IdentityKey string `json:"identity_key"`
}

func (r *ObserveIdentityRequest) Validate() (id.RecipientID, []byte, error) {
	recipientID, err := id.ParseRecipientID(r.RecipientID)
	if err != nil {
		return "", nil, err
	}
	key, err := base64.StdEncoding.DecodeString(r.IdentityKey)
	if err != nil {
		return "", nil, dErrors.New(dErrors.CodeInvalidInput, "identity_key must be base64")
	}
	return recipientID, key, nil
}

// PutContactRequest sets a recipient's display name.
type PutContactRequest struct {
	DisplayName string `json:"display_name"`
}

func (r *PutContactRequest) Validate() (string, error) {
	return contacts.NormalizeDisplayName(r.DisplayName)
}

// VerifySafetyNumberRequest carries the scannable payload read from the
// recipient's device.
type VerifySafetyNumberRequest struct {
	Scanned string `json:"scanned"`
}

func (r *VerifySafetyNumberRequest) Validate() ([]byte, error) {
	scanned, err := base64.StdEncoding.DecodeString(r.Scanned)
	if err != nil || len(scanned) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "scanned must be non-empty base64")
	}
	return scanned, nil
}
