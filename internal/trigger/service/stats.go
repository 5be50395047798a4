package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
)

// Stats counts evaluations and hook runs since startup.
type Stats struct {
	total           atomic.Uint64
	accepted        atomic.Uint64
	rejected        atomic.Uint64
	actionsExecuted atomic.Uint64
	actionsFailed   atomic.Uint64

	mu       sync.Mutex
	byReason map[domain.Reason]uint64
}

func NewStats() *Stats {
	return &Stats{byReason: make(map[domain.Reason]uint64)}
}

func (s *Stats) Record(d domain.Decision) {
	s.total.Add(1)
	if d.Accepted() {
		s.accepted.Add(1)
		return
	}

	s.rejected.Add(1)
	s.mu.Lock()
	s.byReason[d.Reason]++
	s.mu.Unlock()
}

func (s *Stats) ActionExecuted() { s.actionsExecuted.Add(1) }

func (s *Stats) ActionFailed() { s.actionsFailed.Add(1) }

// Snapshot returns the counters. Device counts are left zero.
func (s *Stats) Snapshot() domain.Stats {
	s.mu.Lock()
	byReason := make(map[domain.Reason]uint64, len(s.byReason))
	for k, v := range s.byReason {
		byReason[k] = v
	}
	s.mu.Unlock()

	return domain.Stats{
		TotalAttempts:    s.total.Load(),
		Accepted:         s.accepted.Load(),
		Rejected:         s.rejected.Load(),
		RejectedByReason: byReason,
		ActionsExecuted:  s.actionsExecuted.Load(),
		ActionsFailed:    s.actionsFailed.Load(),
	}
}

// Report combines the counters with the registry's device counts.
func (s *Stats) Report(ctx context.Context, reg *Registry, now time.Time) (domain.Stats, error) {
	out := s.Snapshot()

	active, err := reg.CountActive(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("failed to count devices: %w", err)
	}
	recent, err := reg.CountAuthenticatedSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return domain.Stats{}, fmt.Errorf("failed to count recent devices: %w", err)
	}

	out.ActiveDevices = active
	out.Active24h = recent
	return out, nil
}
