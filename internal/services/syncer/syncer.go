package syncer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/BearBump/LockerBox/internal/broker/messages"
	"github.com/BearBump/LockerBox/internal/metrics"
	"github.com/BearBump/LockerBox/internal/models"
	"github.com/BearBump/LockerBox/internal/vendors"
	"github.com/pkg/errors"
)

// Store is the persistence surface the sync pipeline owns: vendor/feed
// lookup, location reconciliation, run bookkeeping and payload snapshots.
type Store interface {
	ActiveVendors(ctx context.Context) ([]models.Vendor, error)
	FeedsByVendor(ctx context.Context, vendorID int64) ([]models.Feed, error)

	LocationExists(ctx context.Context, vendorID int64, vendorLocationID string) (bool, error)
	UpsertLocation(ctx context.Context, vendorID int64, rec models.LocationRecord) error
	MarkInactiveByVendor(ctx context.Context, vendorID int64, thresholdDays int) (int64, error)

	StartSyncRun(ctx context.Context, vendorID int64) (int64, error)
	CompleteSyncRun(ctx context.Context, runID int64, created, updated, inactivated int) error
	FailSyncRun(ctx context.Context, runID int64, errMsg string) error

	SaveSnapshot(ctx context.Context, vendorID int64, payload []byte) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type VendorResult struct {
	Success     bool   `json:"success"`
	Created     int    `json:"created"`
	Updated     int    `json:"updated"`
	Inactivated int    `json:"inactivated"`
	Total       int    `json:"total"`
	Error       string `json:"error,omitempty"`
}

type Syncer struct {
	store    Store
	adapters map[string]vendors.Adapter

	producer Producer
	topic    string

	retryAttempts         int
	retryDelay            time.Duration
	inactiveThresholdDays int

	stats runStats
}

func New(store Store, adapters map[string]vendors.Adapter) *Syncer {
	return &Syncer{
		store:                 store,
		adapters:              adapters,
		retryAttempts:         3,
		retryDelay:            5 * time.Second,
		inactiveThresholdDays: 7,
		stats: runStats{
			startedAtUnixNano: time.Now().UTC().UnixNano(),
			triggerCh:         make(chan struct{}, 1),
		},
	}
}

func (s *Syncer) WithRetry(attempts int, delay time.Duration) *Syncer {
	if attempts > 0 {
		s.retryAttempts = attempts
	}
	if delay >= 0 {
		s.retryDelay = delay
	}
	return s
}

func (s *Syncer) WithInactiveThreshold(days int) *Syncer {
	if days > 0 {
		s.inactiveThresholdDays = days
	}
	return s
}

func (s *Syncer) WithProducer(p Producer, topic string) *Syncer {
	s.producer = p
	s.topic = topic
	return s
}

// SyncAll runs every active vendor sequentially. A failure syncing one
// vendor is recorded in its result entry and never aborts the rest; only a
// failure to enumerate vendors at all is fatal.
func (s *Syncer) SyncAll(ctx context.Context) (map[string]VendorResult, error) {
	vs, err := s.store.ActiveVendors(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list active vendors")
	}

	results := make(map[string]VendorResult, len(vs))
	for _, v := range vs {
		res, err := s.syncVendor(ctx, v)
		if err != nil {
			slog.Error("vendor sync failed", "vendor", v.Code, "error", err.Error())
			res = VendorResult{Success: false, Error: err.Error()}
			metrics.VendorSyncsTotal.WithLabelValues(v.Code, "failed").Inc()
		} else {
			metrics.VendorSyncsTotal.WithLabelValues(v.Code, "completed").Inc()
			metrics.LocationsCreatedTotal.WithLabelValues(v.Code).Add(float64(res.Created))
			metrics.LocationsUpdatedTotal.WithLabelValues(v.Code).Add(float64(res.Updated))
			metrics.LocationsInactivatedTotal.WithLabelValues(v.Code).Add(float64(res.Inactivated))
		}
		results[v.Code] = res
		s.publishResult(ctx, v, res)
	}
	return results, nil
}

// syncVendor drives one vendor through the run state machine:
// running -> completed, or running -> failed. No retries at this level.
func (s *Syncer) syncVendor(ctx context.Context, v models.Vendor) (VendorResult, error) {
	slog.Info("starting sync", "vendor", v.Code)

	runID, err := s.store.StartSyncRun(ctx, v.ID)
	if err != nil {
		return VendorResult{}, errors.Wrap(err, "start sync run")
	}

	res, err := s.syncFeeds(ctx, v)
	if err != nil {
		if failErr := s.store.FailSyncRun(ctx, runID, err.Error()); failErr != nil {
			slog.Error("fail sync run", "vendor", v.Code, "error", failErr.Error())
		}
		return VendorResult{}, err
	}

	if err := s.store.CompleteSyncRun(ctx, runID, res.Created, res.Updated, res.Inactivated); err != nil {
		return VendorResult{}, errors.Wrap(err, "complete sync run")
	}

	slog.Info("sync completed", "vendor", v.Code,
		"created", res.Created, "updated", res.Updated, "inactivated", res.Inactivated, "total", res.Total)
	return res, nil
}

func (s *Syncer) syncFeeds(ctx context.Context, v models.Vendor) (VendorResult, error) {
	adapter, ok := s.adapters[v.Code]
	if !ok {
		return VendorResult{}, errors.Errorf("no adapter registered for vendor %s", v.Code)
	}

	feeds, err := s.store.FeedsByVendor(ctx, v.ID)
	if err != nil {
		return VendorResult{}, errors.Wrap(err, "list feeds")
	}
	if len(feeds) == 0 {
		// Migration shim: vendors created before multi-feed support carry a
		// single legacy api_url instead of feed rows.
		if v.APIURL == "" {
			return VendorResult{}, errors.Errorf("vendor %s has no feeds configured", v.Code)
		}
		feeds = []models.Feed{{VendorID: v.ID, URL: v.APIURL}}
	}

	var created, updated, total int
	for _, feed := range feeds {
		raw, err := FetchWithRetry(ctx, adapter, feed.URL, s.retryAttempts, s.retryDelay)
		if err != nil {
			return VendorResult{}, err
		}

		if err := s.store.SaveSnapshot(ctx, v.ID, raw); err != nil {
			return VendorResult{}, errors.Wrap(err, "save payload snapshot")
		}

		recs, err := adapter.Parse(raw)
		if err != nil {
			return VendorResult{}, err
		}
		total += len(recs)

		for _, rec := range recs {
			// Namespacing per feed so two regional feeds of one vendor can
			// never collide on the same raw id.
			if feed.FeedKey != "" {
				rec.VendorLocationID = feed.FeedKey + "_" + rec.VendorLocationID
			}

			exists, err := s.store.LocationExists(ctx, v.ID, rec.VendorLocationID)
			if err != nil {
				return VendorResult{}, errors.Wrap(err, "check location")
			}
			if err := s.store.UpsertLocation(ctx, v.ID, rec); err != nil {
				return VendorResult{}, errors.Wrap(err, "upsert location")
			}
			if exists {
				updated++
			} else {
				created++
			}
		}
	}

	inactivated, err := s.store.MarkInactiveByVendor(ctx, v.ID, s.inactiveThresholdDays)
	if err != nil {
		return VendorResult{}, errors.Wrap(err, "mark inactive")
	}

	return VendorResult{
		Success:     true,
		Created:     created,
		Updated:     updated,
		Inactivated: int(inactivated),
		Total:       total,
	}, nil
}

// publishResult emits the per-vendor summary for downstream consumers.
// Best-effort: the sync outcome is already durable in sync_runs.
func (s *Syncer) publishResult(ctx context.Context, v models.Vendor, res VendorResult) {
	if s.producer == nil || s.topic == "" {
		return
	}

	msg := messages.VendorSynced{
		VendorID:    v.ID,
		VendorCode:  v.Code,
		FinishedAt:  time.Now().UTC(),
		Success:     res.Success,
		Created:     res.Created,
		Updated:     res.Updated,
		Inactivated: res.Inactivated,
		Total:       res.Total,
	}
	if res.Error != "" {
		msg.Error = &res.Error
	}

	b, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal vendor synced message", "vendor", v.Code, "error", err.Error())
		return
	}
	if err := s.producer.Publish(ctx, s.topic, []byte(v.Code), b); err != nil {
		slog.Warn("publish vendor synced message", "vendor", v.Code, "error", err.Error())
	}
}
