package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/store/drivers/sqlite/gen"
)

type usedCodesRepo struct {
	q *gen.Queries
}

func (r *usedCodesRepo) RecordUsedCode(ctx context.Context, deviceID string, step uint64, expiresAt time.Time) (bool, error) {
	n, err := r.q.InsertUsedCode(ctx, gen.InsertUsedCodeParams{
		DeviceID:  deviceID,
		Step:      int64(step),
		ExpiresAt: utc(expiresAt),
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *usedCodesRepo) DeleteExpiredUsedCodes(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredUsedCodes(ctx, utc(now))
}
