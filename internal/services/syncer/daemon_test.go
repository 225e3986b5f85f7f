package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/LockerBox/internal/models"
	"github.com/BearBump/LockerBox/internal/vendors"
	"github.com/stretchr/testify/require"
)

func TestSyncer_Run_stopsOnContextCancel(t *testing.T) {
	st := newFakeStore()
	st.vendors = []models.Vendor{}

	s := New(st, map[string]vendors.Adapter{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := s.Run(ctx, 5*time.Millisecond)
	require.Error(t, err)

	stats := s.Stats()
	require.GreaterOrEqual(t, stats.TotalCycles, int64(1))
	require.NotNil(t, stats.LastCycleAt)
}

func TestSyncer_Trigger_isNonBlocking(t *testing.T) {
	s := New(newFakeStore(), nil)

	// Repeated triggers without a running loop must not block.
	s.Trigger()
	s.Trigger()
	s.Trigger()

	stats := s.Stats()
	require.NotNil(t, stats.LastTriggerAt)
}

func TestSyncer_Stats_recordsVendorFailures(t *testing.T) {
	st := newFakeStore()
	st.vendors = []models.Vendor{{ID: 1, Code: "broken", Active: true}}
	st.feeds[1] = []models.Feed{{VendorID: 1, URL: "http://x"}}

	s := New(st, map[string]vendors.Adapter{})
	s.runCycle(context.Background())

	stats := s.Stats()
	require.Equal(t, int64(1), stats.TotalVendorFailures)
	require.Contains(t, stats.LastError, "broken")
}
