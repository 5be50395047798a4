package http

import (
	"io"
	"net/http"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/service"
	"github.com/aussiebroadwan/bluezscript/pkg/httpx"
	"github.com/aussiebroadwan/bluezscript/pkg/triggersdk"
)

// TriggerHandler is the HTTP transport for authentication messages.
type TriggerHandler struct {
	Validator *service.Validator
	Actions   *service.ActionRunner
}

// decisionStatus maps a decision onto a status code. The body always carries
// the outcome and public reason.
func decisionStatus(d domain.Decision) int {
	switch {
	case d.Accepted():
		return http.StatusOK
	case d.Reason == domain.ReasonMalformedMessage:
		return http.StatusBadRequest
	case d.Reason == domain.ReasonInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusForbidden
	}
}

// ServeHTTP handles POST /v1/trigger
//
//	@Summary		Submit Trigger
//	@Description	Evaluates an authentication message from a paired companion. Accepted TRIGGER messages run the configured hook in the background.
//	@Tags			Trigger
//	@Accept			json
//	@Produce		json
//	@Param			request	body		triggersdk.TriggerRequest	true	"device_id, totp, timestamp, action"
//	@Success		200		{object}	triggersdk.TriggerResponse	"accepted"
//	@Failure		400		{object}	triggersdk.TriggerResponse	"rejected: malformed_message"
//	@Failure		403		{object}	triggersdk.TriggerResponse	"rejected with reason"
//	@Failure		429		{object}	triggersdk.ErrorResponse	"error, error_description"
//	@Router			/v1/trigger [post].
func (h *TriggerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// One byte past the cap is enough for the validator to reject it as malformed.
	payload, err := io.ReadAll(io.LimitReader(r.Body, domain.MaxMessageSize+1))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, triggersdk.ErrorCodeInvalidRequest, "failed to read request body")
		return
	}

	d := h.Validator.Evaluate(r.Context(), payload)
	if h.Actions != nil {
		h.Actions.Dispatch(d)
	}

	httpx.WriteJSON(w, decisionStatus(d), triggersdk.TriggerResponse{
		Outcome: string(d.Outcome),
		Reason:  string(d.Reason),
	})
}
