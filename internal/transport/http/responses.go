package httptransport

import (
	"encoding/base64"
	"time"

	identitysvc "sendgate/internal/identity/service"
	"sendgate/internal/trustgate/models"
	"sendgate/internal/trustgate/presenter"
)

const (
	sendStatusCleared = "cleared"
	sendStatusPending = "pending"
)

// SendGateResponse is returned when no prompt was raised.
type SendGateResponse struct {
	Status string `json:"status"`
}

type OutcomeResponse struct {
	Proceed  bool   `json:"proceed"`
	Decision string `json:"decision"`
}

type FingerprintResponse struct {
	RecipientID string `json:"recipient_id"`
	DisplayText string `json:"display_text"`
	Scannable   string `json:"scannable"`
}

// PromptResponse describes a prompt raised by a send.
type PromptResponse struct {
	PromptID         string               `json:"prompt_id"`
	Status           string               `json:"status"`
	RecipientID      string               `json:"recipient_id"`
	DisplayName      string               `json:"display_name"`
	ConfirmationText string               `json:"confirmation_text"`
	IdentityKey      string               `json:"identity_key"`
	CreatedAt        time.Time            `json:"created_at"`
	ExpiresAt        time.Time            `json:"expires_at"`
	Outcome          *OutcomeResponse     `json:"outcome,omitempty"`
	Fingerprint      *FingerprintResponse `json:"fingerprint,omitempty"`
}

// DecisionResponse reports what happened to the send after a decision.
type DecisionResponse struct {
	PromptID    string               `json:"prompt_id"`
	Proceed     bool                 `json:"proceed"`
	Decision    string               `json:"decision"`
	Fingerprint *FingerprintResponse `json:"fingerprint,omitempty"`
}

type IdentityResponse struct {
	RecipientID         string    `json:"recipient_id"`
	IdentityKey         string    `json:"identity_key"`
	FirstSeenAt         time.Time `json:"first_seen_at"`
	ApprovedBlocking    bool      `json:"approved_blocking"`
	ApprovedNonBlocking bool      `json:"approved_non_blocking"`
}

type ObserveIdentityResponse struct {
	IdentityResponse
	Created    bool `json:"created"`
	Superseded bool `json:"superseded"`
}

type PendingIdentity struct {
	RecipientID string    `json:"recipient_id"`
	DisplayName string    `json:"display_name"`
	IdentityKey string    `json:"identity_key"`
	FirstSeenAt time.Time `json:"first_seen_at"`
}

type PendingResponse struct {
	Pending []PendingIdentity `json:"pending"`
}

type VerifySafetyNumberResponse struct {
	Match bool `json:"match"`
}

func toPromptResponse(v *presenter.View) *PromptResponse {
	resp := &PromptResponse{
		PromptID:         v.Prompt.ID.String(),
		Status:           string(v.Status),
		RecipientID:      v.Prompt.RecipientID.String(),
		DisplayName:      v.Prompt.DisplayName,
		ConfirmationText: v.Prompt.ConfirmationText,
		IdentityKey:      base64.StdEncoding.EncodeToString(v.Prompt.IdentityKey),
		CreatedAt:        v.Prompt.CreatedAt,
		ExpiresAt:        v.ExpiresAt,
		Fingerprint:      toFingerprintResponse(v.Fingerprint),
	}
	if v.Outcome != nil {
		resp.Outcome = &OutcomeResponse{Proceed: v.Outcome.Proceed, Decision: string(v.Outcome.Decision)}
	}
	return resp
}

func toFingerprintResponse(fp *models.Fingerprint) *FingerprintResponse {
	if fp == nil {
		return nil
	}
	return &FingerprintResponse{
		RecipientID: fp.RecipientID.String(),
		DisplayText: fp.DisplayText,
		Scannable:   base64.StdEncoding.EncodeToString(fp.Scannable),
	}
}

func toIdentityResponse(r *models.RecipientIdentity) IdentityResponse {
	return IdentityResponse{
		RecipientID:         r.RecipientID.String(),
		IdentityKey:         base64.StdEncoding.EncodeToString(r.IdentityKey),
		FirstSeenAt:         r.FirstSeenAt,
		ApprovedBlocking:    r.ApprovedBlocking,
		ApprovedNonBlocking: r.ApprovedNonBlocking,
	}
}

func toObserveResponse(o *identitysvc.Observation) *ObserveIdentityResponse {
	return &ObserveIdentityResponse{
		IdentityResponse: toIdentityResponse(o.Identity),
		Created:          o.Created,
		Superseded:       o.Superseded,
	}
}

func toPendingResponse(selections []*models.Selection) *PendingResponse {
	resp := &PendingResponse{Pending: make([]PendingIdentity, 0, len(selections))}
	for _, s := range selections {
		resp.Pending = append(resp.Pending, PendingIdentity{
			RecipientID: s.Identity.RecipientID.String(),
			DisplayName: s.DisplayName,
			IdentityKey: base64.StdEncoding.EncodeToString(s.Identity.IdentityKey),
			FirstSeenAt: s.Identity.FirstSeenAt,
		})
	}
	return resp
}
