package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/store"
	"github.com/aussiebroadwan/bluezscript/pkg/httpx"
	"github.com/aussiebroadwan/bluezscript/pkg/triggersdk"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type AuditHandler struct {
	Events store.AuditEvents
}

// ServeHTTP handles GET /v1/audit-events
//
//	@Summary		Recent Audit Events
//	@Description	Most recent authentication decisions, newest first. Never contains secrets or codes.
//	@Tags			Reporting
//	@Produce		json
//	@Security		BearerAuth
//	@Param			device_id	query		string								false	"Only events for this device id"
//	@Param			limit		query		int									false	"Maximum events (default 50, max 500)"
//	@Success		200			{object}	triggersdk.ListAuditEventsResponse	"events"
//	@Failure		400			{object}	triggersdk.ErrorResponse			"error, error_description"
//	@Failure		401			{object}	triggersdk.ErrorResponse			"error, error_description"
//	@Router			/v1/audit-events [get].
func (h *AuditHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	limit := defaultAuditLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, triggersdk.ErrorCodeInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditLimit)
	}

	events, err := h.Events.ListRecentAuditEvents(ctx, q.Get("device_id"), limit)
	if err != nil {
		writeServiceError(ctx, w, err, "list audit events")
		return
	}

	out := make([]triggersdk.AuditEvent, len(events))
	for i, e := range events {
		out[i] = triggersdk.AuditEvent{
			ID:         e.ID,
			DeviceID:   e.DeviceID,
			Outcome:    string(e.Outcome),
			Reason:     string(e.Reason),
			Action:     e.Action,
			OccurredAt: e.OccurredAt,
		}
	}

	httpx.WriteJSON(w, http.StatusOK, triggersdk.ListAuditEventsResponse{Events: out})
}
