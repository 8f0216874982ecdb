package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sendgate/internal/fingerprint"
	id "sendgate/pkg/domain"
	"sendgate/pkg/platform/httputil"
	"sendgate/pkg/platform/middleware/request"
	pstrings "sendgate/pkg/platform/strings"
)

// IdentityHandler exposes identity key observation, the pending preview,
// safety numbers and contact names.
type IdentityHandler struct {
	identities IdentityService
	gate       GateService
	contacts   ContactDirectory
	logger     *slog.Logger
}

func NewIdentityHandler(identities IdentityService, gate GateService, contacts ContactDirectory, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{identities: identities, gate: gate, contacts: contacts, logger: logger}
}

func (h *IdentityHandler) Register(r chi.Router) {
	r.Post("/identities", h.HandleObserve)
	r.Get("/identities/pending", h.HandlePending)
	r.Get("/identities/{recipient_id}/safety-number", h.HandleSafetyNumber)
	r.Post("/identities/{recipient_id}/safety-number/verify", h.HandleVerifySafetyNumber)
	r.Put("/contacts/{recipient_id}", h.HandlePutContact)
}

// HandleObserve records the key currently presented by a recipient. A new
// record answers 201, an existing one 200.
func (h *IdentityHandler) HandleObserve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ObserveIdentityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	recipientID, key, err := req.Validate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	obs, err := h.identities.Observe(ctx, recipientID, key)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to observe identity",
			"error", err,
			"recipient_id", recipientID.String(),
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if obs.Created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, toObserveResponse(obs))
}

// HandlePending previews every recipient that would block a send. Repeated
// recipient_id parameters are collapsed.
func (h *IdentityHandler) HandlePending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recipientIDs, err := id.ParseRecipientIDs(pstrings.DedupeAndTrim(r.URL.Query()["recipient_id"]))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pending, err := h.gate.Pending(ctx, recipientIDs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPendingResponse(pending))
}

func (h *IdentityHandler) HandleSafetyNumber(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recipientID, err := id.ParseRecipientID(chi.URLParam(r, "recipient_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.identities.Get(ctx, recipientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	fp, err := h.gate.PresentSafetyNumber(ctx, recipientID, record.IdentityKey, "")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toFingerprintResponse(fp))
}

// HandleVerifySafetyNumber compares a payload scanned from the recipient's
// device with the locally computed safety number.
func (h *IdentityHandler) HandleVerifySafetyNumber(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recipientID, err := id.ParseRecipientID(chi.URLParam(r, "recipient_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req VerifySafetyNumberRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	scanned, err := req.Validate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.identities.Get(ctx, recipientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	fp, err := h.gate.PresentSafetyNumber(ctx, recipientID, record.IdentityKey, "")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	match, err := fingerprint.MatchesScanned(fp, scanned)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VerifySafetyNumberResponse{Match: match})
}

func (h *IdentityHandler) HandlePutContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recipientID, err := id.ParseRecipientID(chi.URLParam(r, "recipient_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req PutContactRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	name, err := req.Validate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.contacts.Put(ctx, recipientID, name); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
