package syncer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type runStats struct {
	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalCycles         atomic.Int64
	totalVendorFailures atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string

	triggerCh chan struct{}
}

type Stats struct {
	StartedAt           time.Time  `json:"startedAt"`
	LastCycleAt         *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt       *time.Time `json:"lastTriggerAt,omitempty"`
	TotalCycles         int64      `json:"totalCycles"`
	TotalVendorFailures int64      `json:"totalVendorFailures"`
	LastError           string     `json:"lastError,omitempty"`
}

// Trigger forces an immediate sync cycle (best-effort, non-blocking).
// A cycle already pending absorbs the trigger.
func (s *Syncer) Trigger() {
	s.stats.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case s.stats.triggerCh <- struct{}{}:
	default:
	}
}

func (s *Syncer) Stats() Stats {
	st := Stats{
		StartedAt:           time.Unix(0, s.stats.startedAtUnixNano).UTC(),
		TotalCycles:         s.stats.totalCycles.Load(),
		TotalVendorFailures: s.stats.totalVendorFailures.Load(),
	}
	if n := s.stats.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := s.stats.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	s.stats.lastErrorMu.Lock()
	st.LastError = s.stats.lastError
	s.stats.lastErrorMu.Unlock()
	return st
}

// Run loops full sync cycles on a fixed interval until ctx is cancelled.
// An immediate first cycle runs on startup so the daemon never sits idle
// for a whole interval with an empty database.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	s.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.runCycle(ctx)
		case <-s.stats.triggerCh:
			s.runCycle(ctx)
		}
	}
}

func (s *Syncer) runCycle(ctx context.Context) {
	s.stats.lastCycleUnixNano.Store(time.Now().UTC().UnixNano())
	s.stats.totalCycles.Add(1)

	results, err := s.SyncAll(ctx)
	if err != nil {
		slog.Error("sync cycle failed", "error", err.Error())
		s.stats.lastErrorMu.Lock()
		s.stats.lastError = err.Error()
		s.stats.lastErrorMu.Unlock()
		return
	}
	for code, res := range results {
		if !res.Success {
			s.stats.totalVendorFailures.Add(1)
			s.stats.lastErrorMu.Lock()
			s.stats.lastError = code + ": " + res.Error
			s.stats.lastErrorMu.Unlock()
		}
	}
}
