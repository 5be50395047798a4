package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this and
// expose sub-repositories so a Tx can hand out the same repositories scoped to
// one transaction.
type Store interface {
	Devices() Devices
	AuditEvents() AuditEvents
	UsedCodes() UsedCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns nil
	// and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Devices interface {
	// CreateDevice inserts a new device. Any existing row with the same id,
	// revoked or not, yields ErrAlreadyExists.
	CreateDevice(ctx context.Context, d domain.Device) error

	// GetDeviceByID returns the device regardless of its active flag.
	GetDeviceByID(ctx context.Context, id string) (domain.Device, error)

	// ListActiveDevices returns active devices, newest registration first.
	ListActiveDevices(ctx context.Context) ([]domain.Device, error)

	CountActiveDevices(ctx context.Context) (int64, error)

	// CountDevicesAuthenticatedSince counts active devices whose last accepted
	// trigger is at or after since.
	CountDevicesAuthenticatedSince(ctx context.Context, since time.Time) (int64, error)

	// RevokeDevice flips active to false. Unknown ids yield ErrNotFound.
	RevokeDevice(ctx context.Context, id string) error

	UpdateDeviceName(ctx context.Context, id, name string) error

	TouchDeviceLastAuthenticated(ctx context.Context, id string, at time.Time) error
}

type AuditEvents interface {
	// CreateAuditEvent appends an event. Events are never updated.
	CreateAuditEvent(ctx context.Context, e domain.AuditEvent) error

	// ListRecentAuditEvents returns up to limit events, newest first. An empty
	// deviceID lists events for every device.
	ListRecentAuditEvents(ctx context.Context, deviceID string, limit int) ([]domain.AuditEvent, error)

	// DeleteAuditEventsBefore removes events older than cutoff (housekeeping).
	DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type UsedCodes interface {
	// RecordUsedCode marks the time step of an accepted code as consumed. It
	// returns false when the step was already recorded for this device.
	RecordUsedCode(ctx context.Context, deviceID string, step uint64, expiresAt time.Time) (bool, error)

	// DeleteExpiredUsedCodes removes entries whose expiry is before now.
	DeleteExpiredUsedCodes(ctx context.Context, now time.Time) (int64, error)
}
