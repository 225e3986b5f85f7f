package pglocker

import (
	"context"

	"github.com/BearBump/LockerBox/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) ActiveVendors(ctx context.Context) ([]models.Vendor, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, code, name, api_url, active
FROM vendors
WHERE active = TRUE
ORDER BY name
`)
	if err != nil {
		return nil, errors.Wrap(err, "select vendors")
	}
	defer rows.Close()

	var out []models.Vendor
	for rows.Next() {
		var v models.Vendor
		if err := rows.Scan(&v.ID, &v.Code, &v.Name, &v.APIURL, &v.Active); err != nil {
			return nil, errors.Wrap(err, "scan vendor")
		}
		out = append(out, v)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) VendorByCode(ctx context.Context, code string) (*models.Vendor, error) {
	var v models.Vendor
	err := s.db.QueryRow(ctx, `
SELECT id, code, name, api_url, active
FROM vendors
WHERE code = $1
`, code).Scan(&v.ID, &v.Code, &v.Name, &v.APIURL, &v.Active)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select vendor by code")
	}
	return &v, nil
}

// UpsertVendor registers or refreshes a vendor by its stable code.
func (s *Storage) UpsertVendor(ctx context.Context, v models.Vendor) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
INSERT INTO vendors (code, name, api_url, active)
VALUES ($1, $2, $3, $4)
ON CONFLICT (code)
DO UPDATE SET name = EXCLUDED.name, api_url = EXCLUDED.api_url, active = EXCLUDED.active
RETURNING id
`, v.Code, v.Name, v.APIURL, v.Active).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "upsert vendor")
	}
	return id, nil
}

// ReplaceFeeds swaps the vendor's feed list in one transaction, keeping the
// configured order.
func (s *Storage) ReplaceFeeds(ctx context.Context, vendorID int64, feeds []models.Feed) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM vendor_feeds WHERE vendor_id = $1`, vendorID); err != nil {
		return errors.Wrap(err, "delete feeds")
	}
	for i, f := range feeds {
		if _, err := tx.Exec(ctx, `
INSERT INTO vendor_feeds (vendor_id, url, feed_key, position)
VALUES ($1, $2, $3, $4)
`, vendorID, f.URL, f.FeedKey, i); err != nil {
			return errors.Wrap(err, "insert feed")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

func (s *Storage) FeedsByVendor(ctx context.Context, vendorID int64) ([]models.Feed, error) {
	rows, err := s.db.Query(ctx, `
SELECT vendor_id, url, feed_key
FROM vendor_feeds
WHERE vendor_id = $1
ORDER BY position
`, vendorID)
	if err != nil {
		return nil, errors.Wrap(err, "select feeds")
	}
	defer rows.Close()

	var out []models.Feed
	for rows.Next() {
		var f models.Feed
		if err := rows.Scan(&f.VendorID, &f.URL, &f.FeedKey); err != nil {
			return nil, errors.Wrap(err, "scan feed")
		}
		out = append(out, f)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
