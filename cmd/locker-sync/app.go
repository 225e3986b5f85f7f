package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/BearBump/LockerBox/config"
	"github.com/BearBump/LockerBox/internal/broker/kafka"
	"github.com/BearBump/LockerBox/internal/models"
	"github.com/BearBump/LockerBox/internal/services/syncer"
	"github.com/BearBump/LockerBox/internal/storage/pglocker"
	"github.com/BearBump/LockerBox/internal/vendors"
	"github.com/BearBump/LockerBox/internal/vendors/fake"
	"github.com/BearBump/LockerBox/internal/vendors/foxpost"
	"github.com/BearBump/LockerBox/internal/vendors/gls"
	"github.com/BearBump/LockerBox/internal/vendors/mpl"
	"github.com/BearBump/LockerBox/internal/vendors/sameday"
	"github.com/pkg/errors"
)

type syncStorage interface {
	syncer.Store
	UpsertVendor(ctx context.Context, v models.Vendor) (int64, error)
	ReplaceFeeds(ctx context.Context, vendorID int64, feeds []models.Feed) error
}

type syncFactories struct {
	newStorage  func(cfg *config.Config) (st syncStorage, closeFn func(), err error)
	newProducer func(cfg *config.Config) syncer.Producer
	newAdapters func(cfg *config.Config) map[string]vendors.Adapter
}

func defaultSyncFactories() syncFactories {
	return syncFactories{
		newStorage: func(cfg *config.Config) (syncStorage, func(), error) {
			st, err := pglocker.New(cfg.Database.DSN())
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newProducer: func(cfg *config.Config) syncer.Producer {
			return kafka.NewProducer([]string{cfg.Kafka.Addr()})
		},
		newAdapters: newAdapters,
	}
}

func newAdapters(cfg *config.Config) map[string]vendors.Adapter {
	connect := time.Duration(cfg.Locker.FetchConnectTimeoutSeconds) * time.Second
	total := time.Duration(cfg.Locker.FetchTotalTimeoutSeconds) * time.Second

	return map[string]vendors.Adapter{
		"foxpost": foxpost.New(connect, total),
		"gls":     gls.New(connect, total),
		"mpl":     mpl.New(connect, total),
		"sameday": sameday.New(connect, total),
		// Deterministic demo vendor for local stacks without real feeds.
		"fake": fake.New("fake", 50),
	}
}

// seedVendors upserts configured vendors and their feeds so a fresh
// database is usable without manual provisioning. Vendors absent from the
// config are left untouched.
func seedVendors(ctx context.Context, st syncStorage, seeds []config.VendorSeed) error {
	for _, seed := range seeds {
		id, err := st.UpsertVendor(ctx, models.Vendor{
			Code:   seed.Code,
			Name:   seed.Name,
			APIURL: seed.APIURL,
			Active: true,
		})
		if err != nil {
			return errors.Wrapf(err, "seed vendor %s", seed.Code)
		}
		if len(seed.Feeds) == 0 {
			continue
		}
		feeds := make([]models.Feed, 0, len(seed.Feeds))
		for _, f := range seed.Feeds {
			feeds = append(feeds, models.Feed{VendorID: id, URL: f.URL, FeedKey: f.Key})
		}
		if err := st.ReplaceFeeds(ctx, id, feeds); err != nil {
			return errors.Wrapf(err, "seed feeds for %s", seed.Code)
		}
	}
	return nil
}

// RunLockerSync runs the sync pipeline. With sync_interval_seconds > 0 it
// loops as a daemon with an admin HTTP server; otherwise it runs one full
// cycle for cron-style use. Individual vendor failures are logged and
// recorded in their sync runs; only a failure of the cycle itself makes
// the one-shot mode exit non-zero.
func RunLockerSync(ctx context.Context, cfg *config.Config, f syncFactories) error {
	st, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	if err := seedVendors(ctx, st, cfg.Vendors); err != nil {
		return err
	}

	topic := cfg.Kafka.VendorSyncedTopicName
	if topic == "" {
		topic = "locker.vendor.synced"
	}

	retryDelay := time.Duration(cfg.Locker.SyncRetryDelaySeconds) * time.Second
	if cfg.Locker.SyncRetryDelaySeconds == 0 {
		retryDelay = 5 * time.Second
	}

	s := syncer.New(st, f.newAdapters(cfg)).
		WithRetry(cfg.Locker.SyncRetryAttempts, retryDelay).
		WithInactiveThreshold(cfg.Locker.InactiveThresholdDays).
		WithProducer(f.newProducer(cfg), topic)

	if cfg.Locker.SyncIntervalSeconds > 0 {
		interval := time.Duration(cfg.Locker.SyncIntervalSeconds) * time.Second

		go func() {
			err := runSyncHTTPServer(ctx, syncHTTPOpts{
				httpAddr: cfg.Locker.AdminHTTPAddr,
				syncer:   s,
				cfg:      cfg,
			})
			if err != nil && err != http.ErrServerClosed {
				slog.Error("admin http server", "error", err.Error())
			}
		}()

		return s.Run(ctx, interval)
	}

	results, err := s.SyncAll(ctx)
	if err != nil {
		return err
	}
	for code, res := range results {
		if !res.Success {
			slog.Warn("vendor sync failed", "vendor", code, "error", res.Error)
			continue
		}
		slog.Info("vendor synced", "vendor", code,
			"created", res.Created, "updated", res.Updated, "inactivated", res.Inactivated)
	}
	return nil
}
