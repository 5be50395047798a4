package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/store"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/store/drivers/sqlite/gen"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// SQLite allows one writer at a time, and every pooled connection to
	// ":memory:" would otherwise get its own empty database.
	db.SetMaxOpenConns(1)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Devices() store.Devices         { return &devicesRepo{q: s.q} }
func (s *Store) AuditEvents() store.AuditEvents { return &auditEventsRepo{q: s.q} }
func (s *Store) UsedCodes() store.UsedCodes     { return &usedCodesRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint turns primary key and unique violations into ErrAlreadyExists.
func mapConstraint(err error) error {
	var serr *msqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return store.ErrAlreadyExists
		}
	}
	return err
}

// mapAffected reports ErrNotFound for updates that matched no row.
func mapAffected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

// utc normalises timestamps before they reach SQLite, which compares the
// stored text form lexically.
func utc(t time.Time) time.Time { return t.UTC() }

func mapDevice(row gen.Device) domain.Device {
	return domain.Device{
		ID:                  row.ID,
		Name:                row.Name,
		SecretEncrypted:     row.SecretEncrypted,
		RegisteredAt:        row.RegisteredAt,
		LastAuthenticatedAt: mapNullTimePtr(row.LastAuthenticatedAt),
		Active:              row.Active,
	}
}

func mapAuditEvent(row gen.AuditEvent) domain.AuditEvent {
	return domain.AuditEvent{
		ID:         row.ID,
		DeviceID:   row.DeviceID,
		Outcome:    domain.Outcome(row.Outcome),
		Reason:     domain.Reason(row.Reason),
		Action:     row.Action,
		OccurredAt: row.OccurredAt,
	}
}
