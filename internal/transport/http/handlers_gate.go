package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "sendgate/pkg/domain"
	dErrors "sendgate/pkg/domain-errors"
	"sendgate/pkg/platform/httputil"
	"sendgate/pkg/platform/middleware/request"
	"sendgate/pkg/requestcontext"
)

// GateHandler raises trust prompts for sends and takes the sender's answers.
type GateHandler struct {
	gate         GateService
	prompts      PromptRegistry
	logger       *slog.Logger
	decisionWait time.Duration
}

func NewGateHandler(gate GateService, prompts PromptRegistry, logger *slog.Logger, decisionWait time.Duration) *GateHandler {
	return &GateHandler{gate: gate, prompts: prompts, logger: logger, decisionWait: decisionWait}
}

// Register mounts the gate routes. The caller applies authentication.
func (h *GateHandler) Register(r chi.Router) {
	r.Post("/sends/gate", h.HandleSendGate)
	r.Get("/prompts/{prompt_id}", h.HandleGetPrompt)
	r.Post("/prompts/{prompt_id}/decision", h.HandleDecision)
}

// HandleSendGate answers 200 when the send may go ahead and 202 with the
// raised prompt when the sender has to confirm a recipient's new identity.
func (h *GateHandler) HandleSendGate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	accountID := requestcontext.AccountID(ctx)

	var req SendGateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	recipientIDs, err := req.Validate()
	if err != nil {
		h.logger.WarnContext(ctx, "invalid send gate request",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	ctx, ticket := h.prompts.NewTicket(ctx)
	raised, err := h.gate.PresentIfNecessary(ctx, recipientIDs, req.ConfirmationText, ticket.Complete)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to evaluate send",
			"error", err,
			"request_id", requestID,
			"recipients", len(recipientIDs),
		)
		httputil.WriteError(w, err)
		return
	}
	if !raised {
		httputil.WriteJSON(w, http.StatusOK, SendGateResponse{Status: sendStatusCleared})
		return
	}

	promptID, ok := ticket.PromptID()
	if !ok {
		h.logger.ErrorContext(ctx, "gate raised without a registered prompt", "request_id", requestID)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "prompt was not registered"))
		return
	}
	view, err := h.prompts.Get(ctx, accountID, promptID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, toPromptResponse(view))
}

func (h *GateHandler) HandleGetPrompt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	promptID, err := id.ParsePromptID(chi.URLParam(r, "prompt_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.prompts.Get(ctx, requestcontext.AccountID(ctx), promptID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPromptResponse(view))
}

// HandleDecision answers a prompt and holds the response until the outcome is
// known, so a 200 with proceed=true means the approval is already stored.
func (h *GateHandler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	promptID, err := id.ParsePromptID(chi.URLParam(r, "prompt_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req DecisionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	kind, err := req.Validate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	waitCtx, cancel := context.WithTimeout(ctx, h.decisionWait)
	defer cancel()
	view, err := h.prompts.Decide(waitCtx, requestcontext.AccountID(ctx), promptID, kind)
	if err != nil {
		h.logger.WarnContext(ctx, "decision not applied",
			"error", err,
			"prompt_id", promptID.String(),
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	if view.Outcome == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "decision has no outcome"))
		return
	}
	if view.Outcome.Failed() {
		httputil.WriteError(w, view.Outcome.Err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, DecisionResponse{
		PromptID:    promptID.String(),
		Proceed:     view.Outcome.Proceed,
		Decision:    string(view.Outcome.Decision),
		Fingerprint: toFingerprintResponse(view.Fingerprint),
	})
}
