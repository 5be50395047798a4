package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/store"
)

// HousekeepingService periodically removes expired replay-guard entries and,
// when a retention is configured, old audit events.
type HousekeepingService struct {
	Store          store.Store
	Logger         *slog.Logger
	Interval       time.Duration
	AuditRetention time.Duration // 0 keeps audit events forever
	Now            func() time.Time

	started atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, auditRetention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:          store,
		Logger:         logger,
		Interval:       interval,
		AuditRetention: auditRetention,
		Now:            time.Now,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "audit_retention", s.AuditRetention)
}

// Started reports whether Start has been called.
func (s *HousekeepingService) Started() bool { return s.started.Load() }

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup deletes expired records. Each deletion is independent.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	now := s.Now()

	usedCodes, err := s.Store.UsedCodes().DeleteExpiredUsedCodes(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired used codes", "error", err)
	}

	var auditEvents int64
	if s.AuditRetention > 0 {
		auditEvents, err = s.Store.AuditEvents().DeleteAuditEventsBefore(ctx, now.Add(-s.AuditRetention))
		if err != nil {
			s.Logger.Error("failed to delete old audit events", "error", err)
		}
	}

	s.Logger.Info("housekeeping cleanup completed",
		"used_codes_deleted", usedCodes,
		"audit_events_deleted", auditEvents,
	)
}
