package locations

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/BearBump/LockerBox/internal/broker/messages"
	"github.com/BearBump/LockerBox/internal/cache"
	"github.com/BearBump/LockerBox/internal/models"
	"github.com/BearBump/LockerBox/internal/storage/pglocker"
	"github.com/pkg/errors"
)

const (
	defaultLimit = 1000
	maxLimit     = 5000
)

type Repository interface {
	SearchLocations(ctx context.Context, p pglocker.SearchParams) ([]models.LocationView, error)
	CountsByVendor(ctx context.Context) ([]models.VendorCount, error)
	ActiveVendors(ctx context.Context) ([]models.Vendor, error)
}

type Service struct {
	repo      Repository
	cache     cache.BytesCache
	countsTTL time.Duration
}

func New(repo Repository, c cache.BytesCache, countsTTL time.Duration) *Service {
	return &Service{repo: repo, cache: c, countsTTL: countsTTL}
}

// Search runs a filtered location query. The limit is clamped so one
// request can never pull the whole table.
func (s *Service) Search(ctx context.Context, p pglocker.SearchParams) ([]models.LocationView, error) {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.BBox != nil {
		b := *p.BBox
		if b[0] > b[2] || b[1] > b[3] {
			return nil, errors.New("invalid bbox: min corner must be south-west of max corner")
		}
	}
	return s.repo.SearchLocations(ctx, p)
}

func (s *Service) Vendors(ctx context.Context) ([]models.Vendor, error) {
	return s.repo.ActiveVendors(ctx)
}

const countsKey = "lockerbox:counts:vendor"

// CountsByVendor serves the per-vendor active location totals, cached in
// redis. Best-effort caching: redis being down degrades to the DB query.
func (s *Service) CountsByVendor(ctx context.Context) ([]models.VendorCount, error) {
	if s.cache != nil && s.countsTTL > 0 {
		b, ok, err := s.cache.Get(ctx, countsKey)
		if err == nil && ok {
			var counts []models.VendorCount
			if json.Unmarshal(b, &counts) == nil {
				return counts, nil
			}
		}
	}

	counts, err := s.repo.CountsByVendor(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count locations")
	}

	if s.cache != nil && s.countsTTL > 0 {
		if b, err := json.Marshal(counts); err == nil {
			_ = s.cache.Set(ctx, countsKey, b, s.countsTTL)
		}
	}
	return counts, nil
}

// ApplyVendorSynced reacts to a finished vendor sync by dropping the
// cached counts so the next read sees fresh totals.
func (s *Service) ApplyVendorSynced(ctx context.Context, msg messages.VendorSynced) error {
	if !msg.Success {
		return nil
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Del(ctx, countsKey); err != nil {
		slog.Warn("invalidate counts cache", "vendor", msg.VendorCode, "error", err.Error())
		return err
	}
	return nil
}
