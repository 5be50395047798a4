package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/service"
	"github.com/aussiebroadwan/bluezscript/pkg/httpx"
	"github.com/aussiebroadwan/bluezscript/pkg/triggersdk"
)

type StatsHandler struct {
	Stats    *service.Stats
	Registry *service.Registry
}

// ServeHTTP handles GET /v1/stats
//
//	@Summary		Authentication Statistics
//	@Description	Counters since process start plus active device counts.
//	@Tags			Reporting
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	triggersdk.StatsResponse	"statistics"
//	@Failure		401	{object}	triggersdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	triggersdk.ErrorResponse	"error, error_description"
//	@Router			/v1/stats [get].
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s, err := h.Stats.Report(ctx, h.Registry, time.Now())
	if err != nil {
		writeServiceError(ctx, w, err, "load statistics")
		return
	}

	byReason := make(map[string]uint64, len(s.RejectedByReason))
	for reason, n := range s.RejectedByReason {
		byReason[string(reason)] = n
	}

	httpx.WriteJSON(w, http.StatusOK, triggersdk.StatsResponse{
		TotalAttempts:    s.TotalAttempts,
		Accepted:         s.Accepted,
		Rejected:         s.Rejected,
		RejectedByReason: byReason,
		ActionsExecuted:  s.ActionsExecuted,
		ActionsFailed:    s.ActionsFailed,
		ActiveDevices:    s.ActiveDevices,
		Active24h:        s.Active24h,
	})
}
