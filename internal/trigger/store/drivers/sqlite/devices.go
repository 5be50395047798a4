package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/store/drivers/sqlite/gen"
)

type devicesRepo struct {
	q *gen.Queries
}

func (r *devicesRepo) CreateDevice(ctx context.Context, d domain.Device) error {
	err := r.q.CreateDevice(ctx, gen.CreateDeviceParams{
		ID:              d.ID,
		Name:            d.Name,
		SecretEncrypted: d.SecretEncrypted,
		RegisteredAt:    utc(d.RegisteredAt),
	})
	return mapConstraint(err)
}

func (r *devicesRepo) GetDeviceByID(ctx context.Context, id string) (domain.Device, error) {
	row, err := r.q.GetDeviceByID(ctx, id)
	if err != nil {
		return domain.Device{}, mapNotFound(err)
	}
	return mapDevice(row), nil
}

func (r *devicesRepo) ListActiveDevices(ctx context.Context) ([]domain.Device, error) {
	rows, err := r.q.ListActiveDevices(ctx)
	if err != nil {
		return nil, err
	}

	devices := make([]domain.Device, len(rows))
	for i, row := range rows {
		devices[i] = mapDevice(row)
	}
	return devices, nil
}

func (r *devicesRepo) CountActiveDevices(ctx context.Context) (int64, error) {
	return r.q.CountActiveDevices(ctx)
}

func (r *devicesRepo) CountDevicesAuthenticatedSince(ctx context.Context, since time.Time) (int64, error) {
	return r.q.CountDevicesAuthenticatedSince(ctx, sql.NullTime{Time: utc(since), Valid: true})
}

func (r *devicesRepo) RevokeDevice(ctx context.Context, id string) error {
	return mapAffected(r.q.RevokeDevice(ctx, id))
}

func (r *devicesRepo) UpdateDeviceName(ctx context.Context, id, name string) error {
	return mapAffected(r.q.UpdateDeviceName(ctx, gen.UpdateDeviceNameParams{
		Name: name,
		ID:   id,
	}))
}

func (r *devicesRepo) TouchDeviceLastAuthenticated(ctx context.Context, id string, at time.Time) error {
	return mapAffected(r.q.TouchDeviceLastAuthenticated(ctx, gen.TouchDeviceLastAuthenticatedParams{
		LastAuthenticatedAt: sql.NullTime{Time: utc(at), Valid: true},
		ID:                  id,
	}))
}
