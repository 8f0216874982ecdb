package models

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"time"

	id "sendgate/pkg/domain"
)

// RecipientIdentity is one recipient's currently observed identity key and its
// approval state. When returned by a blocking query, ApprovedBlocking is false.
type RecipientIdentity struct {
	RecipientID         id.RecipientID
	IdentityKey         []byte
	FirstSeenAt         time.Time
	ApprovedBlocking    bool
	ApprovedNonBlocking bool
}

// IsBlocking reports whether the key still requires confirmation before a
// blocking send. The non-blocking flag does not affect the answer.
func (r *RecipientIdentity) IsBlocking() bool {
	return r != nil && !r.ApprovedBlocking
}

// Matches reports whether the record refers to the given recipient and key.
func (r *RecipientIdentity) Matches(recipientID id.RecipientID, key []byte) bool {
	return r != nil && r.RecipientID == recipientID && bytes.Equal(r.IdentityKey, key)
}

// KeyHex is a short hex rendering of the key used in logs.
func (r *RecipientIdentity) KeyHex() string {
	if r == nil {
		return ""
	}
	return ShortKey(r.IdentityKey)
}

func (r *RecipientIdentity) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s/%s", r.RecipientID, r.KeyHex())
}

// ShortKey renders the first 8 bytes of a key in hex.
func ShortKey(key []byte) string {
	if len(key) > 8 {
		key = key[:8]
	}
	return hex.EncodeToString(key)
}

// DecisionKind is the user's resolution of a trust prompt.
type DecisionKind string

const (
	// DecisionApproved accepts the new key for this and future sends.
	DecisionApproved DecisionKind = "approved"
	// DecisionInspected shows verification material and abandons the current send.
	DecisionInspected DecisionKind = "inspected"
	// DecisionCancelled dismisses the prompt without acting.
	DecisionCancelled DecisionKind = "cancelled"
)

// ParseDecisionKind maps transport choices onto decision kinds.
func ParseDecisionKind(s string) (DecisionKind, bool) {
	switch s {
	case "approve", string(DecisionApproved):
		return DecisionApproved, true
	case "verify", "inspect", string(DecisionInspected):
		return DecisionInspected, true
	case "cancel", "dismiss", string(DecisionCancelled):
		return DecisionCancelled, true
	}
	return "", false
}

// Decision is the outcome reported by a presenter for a single prompt.
// RecipientID and IdentityKey are empty for DecisionCancelled.
type Decision struct {
	Kind        DecisionKind
	RecipientID id.RecipientID
	IdentityKey []byte
}

// Approve builds an approval for the given identity.
func Approve(identity *RecipientIdentity) Decision {
	return Decision{Kind: DecisionApproved, RecipientID: identity.RecipientID, IdentityKey: identity.IdentityKey}
}

// Inspect builds an inspection decision for the given identity.
func Inspect(identity *RecipientIdentity) Decision {
	return Decision{Kind: DecisionInspected, RecipientID: identity.RecipientID, IdentityKey: identity.IdentityKey}
}

// Cancel builds a cancellation.
func Cancel() Decision {
	return Decision{Kind: DecisionCancelled}
}

// Outcome is the single completion signal delivered to the caller of a gate.
// Proceed is true only after an approval has been durably committed. Err is set
// only when that commit failed, so callers can tell "declined" from "failed".
type Outcome struct {
	Proceed  bool
	Decision DecisionKind
	Err      error
}

// Failed reports whether the outcome carries a commit failure.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Prompt is what a presenter shows to the sender for a blocking identity.
type Prompt struct {
	ID               id.PromptID
	RecipientID      id.RecipientID
	IdentityKey      []byte
	DisplayName      string
	ConfirmationText string
	CreatedAt        time.Time
}

// Identity returns the prompt's identity pair as a record.
func (p Prompt) Identity() *RecipientIdentity {
	return &RecipientIdentity{RecipientID: p.RecipientID, IdentityKey: p.IdentityKey}
}

// Fingerprint is the comparison artifact passed through to presenters unmodified.
type Fingerprint struct {
	RecipientID id.RecipientID
	DisplayText string
	Scannable   []byte
}

// Selection is the single blocking identity chosen for presentation.
type Selection struct {
	Identity    *RecipientIdentity
	DisplayName string
}
