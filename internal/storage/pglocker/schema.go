package pglocker

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS vendors (
  id BIGSERIAL PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  api_url TEXT NOT NULL DEFAULT '',
  active BOOLEAN NOT NULL DEFAULT TRUE
)`,
		`
CREATE TABLE IF NOT EXISTS vendor_feeds (
  id BIGSERIAL PRIMARY KEY,
  vendor_id BIGINT NOT NULL REFERENCES vendors(id) ON DELETE CASCADE,
  url TEXT NOT NULL,
  feed_key TEXT NOT NULL DEFAULT '',
  position INT NOT NULL DEFAULT 0
)`,
		`CREATE INDEX IF NOT EXISTS idx_vendor_feeds_vendor_id ON vendor_feeds(vendor_id, position)`,
		`
CREATE TABLE IF NOT EXISTS locations (
  id BIGSERIAL PRIMARY KEY,
  vendor_id BIGINT NOT NULL REFERENCES vendors(id) ON DELETE CASCADE,
  vendor_location_id TEXT NOT NULL,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  status TEXT NOT NULL,
  lat DOUBLE PRECISION NOT NULL,
  lon DOUBLE PRECISION NOT NULL,
  address_line TEXT NULL,
  city TEXT NULL,
  postcode TEXT NULL,
  country TEXT NOT NULL DEFAULT 'HU',
  services JSONB NULL,
  opening_hours TEXT NULL,
  last_seen_at TIMESTAMPTZ NOT NULL,
  last_updated_at TIMESTAMPTZ NOT NULL,
  active BOOLEAN NOT NULL DEFAULT TRUE,
  UNIQUE (vendor_id, vendor_location_id)
)`,
		`CREATE INDEX IF NOT EXISTS idx_locations_lat_lon ON locations(lat, lon)`,
		`CREATE INDEX IF NOT EXISTS idx_locations_vendor_active ON locations(vendor_id, active)`,
		`
CREATE TABLE IF NOT EXISTS sync_runs (
  id BIGSERIAL PRIMARY KEY,
  vendor_id BIGINT NOT NULL REFERENCES vendors(id) ON DELETE CASCADE,
  status TEXT NOT NULL,
  started_at TIMESTAMPTZ NOT NULL,
  ended_at TIMESTAMPTZ NULL,
  created INT NOT NULL DEFAULT 0,
  updated INT NOT NULL DEFAULT 0,
  inactivated INT NOT NULL DEFAULT 0,
  error TEXT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_runs_vendor_started ON sync_runs(vendor_id, started_at DESC)`,
		`
CREATE TABLE IF NOT EXISTS vendor_payload_snapshots (
  id BIGSERIAL PRIMARY KEY,
  vendor_id BIGINT NOT NULL REFERENCES vendors(id) ON DELETE CASCADE,
  content_hash TEXT NOT NULL,
  payload BYTEA NOT NULL,
  stored_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		// Append-only; this index is what a retention job would prune by.
		`CREATE INDEX IF NOT EXISTS idx_snapshots_vendor_stored ON vendor_payload_snapshots(vendor_id, stored_at DESC)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
