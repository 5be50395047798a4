package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/store/drivers/sqlite/gen"
)

type auditEventsRepo struct {
	q *gen.Queries
}

func (r *auditEventsRepo) CreateAuditEvent(ctx context.Context, e domain.AuditEvent) error {
	err := r.q.CreateAuditEvent(ctx, gen.CreateAuditEventParams{
		ID:         e.ID,
		DeviceID:   e.DeviceID,
		Outcome:    string(e.Outcome),
		Reason:     string(e.Reason),
		Action:     e.Action,
		OccurredAt: utc(e.OccurredAt),
	})
	return mapConstraint(err)
}

func (r *auditEventsRepo) ListRecentAuditEvents(ctx context.Context, deviceID string, limit int) ([]domain.AuditEvent, error) {
	var (
		rows []gen.AuditEvent
		err  error
	)
	if deviceID == "" {
		rows, err = r.q.ListRecentAuditEvents(ctx, int64(limit))
	} else {
		rows, err = r.q.ListRecentAuditEventsByDevice(ctx, gen.ListRecentAuditEventsByDeviceParams{
			DeviceID: deviceID,
			Limit:    int64(limit),
		})
	}
	if err != nil {
		return nil, err
	}

	events := make([]domain.AuditEvent, len(rows))
	for i, row := range rows {
		events[i] = mapAuditEvent(row)
	}
	return events, nil
}

func (r *auditEventsRepo) DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.q.DeleteAuditEventsBefore(ctx, utc(cutoff))
}
