package pglocker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BearBump/LockerBox/internal/models"
	"github.com/pkg/errors"
)

func (s *Storage) LocationExists(ctx context.Context, vendorID int64, vendorLocationID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
SELECT EXISTS (
  SELECT 1 FROM locations WHERE vendor_id = $1 AND vendor_location_id = $2
)
`, vendorID, vendorLocationID).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "select location exists")
	}
	return exists, nil
}

// UpsertLocation inserts or overwrites the row keyed by
// (vendor_id, vendor_location_id). A location reappearing in a feed is
// evidence it is live again, so active is forced back to TRUE.
func (s *Storage) UpsertLocation(ctx context.Context, vendorID int64, rec models.LocationRecord) error {
	var services any
	if len(rec.Services) > 0 {
		b, err := json.Marshal(rec.Services)
		if err != nil {
			return errors.Wrap(err, "marshal services")
		}
		services = b
	}

	_, err := s.db.Exec(ctx, `
INSERT INTO locations (
  vendor_id, vendor_location_id, name, type, status,
  lat, lon, address_line, city, postcode, country,
  services, opening_hours,
  last_seen_at, last_updated_at, active
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, now(), now(), TRUE)
ON CONFLICT (vendor_id, vendor_location_id)
DO UPDATE SET
  name = EXCLUDED.name,
  type = EXCLUDED.type,
  status = EXCLUDED.status,
  lat = EXCLUDED.lat,
  lon = EXCLUDED.lon,
  address_line = EXCLUDED.address_line,
  city = EXCLUDED.city,
  postcode = EXCLUDED.postcode,
  country = EXCLUDED.country,
  services = EXCLUDED.services,
  opening_hours = EXCLUDED.opening_hours,
  last_seen_at = now(),
  last_updated_at = now(),
  active = TRUE
`, vendorID, rec.VendorLocationID, rec.Name, rec.Type, rec.Status,
		rec.Lat, rec.Lon, rec.AddressLine, rec.City, rec.Postcode, rec.Country,
		services, rec.OpeningHours)
	if err != nil {
		return errors.Wrap(err, "upsert location")
	}
	return nil
}

// MarkInactiveByVendor retires every active location of the vendor not seen
// for thresholdDays. Returns the number of rows flipped.
func (s *Storage) MarkInactiveByVendor(ctx context.Context, vendorID int64, thresholdDays int) (int64, error) {
	tag, err := s.db.Exec(ctx, `
UPDATE locations
SET active = FALSE, last_updated_at = now()
WHERE vendor_id = $1
  AND active = TRUE
  AND last_seen_at < now() - make_interval(days => $2)
`, vendorID, thresholdDays)
	if err != nil {
		return 0, errors.Wrap(err, "mark inactive")
	}
	return tag.RowsAffected(), nil
}

type SearchParams struct {
	// BBox is [minLon, minLat, maxLon, maxLat]; nil means no spatial filter.
	BBox     *[4]float64
	Vendors  []string
	Types    []string
	Statuses []string
	Query    string
	Limit    int
}

func (s *Storage) SearchLocations(ctx context.Context, p SearchParams) ([]models.LocationView, error) {
	if p.Limit <= 0 {
		p.Limit = 1000
	}

	where := []string{"l.active = TRUE"}
	args := []any{}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.BBox != nil {
		where = append(where,
			fmt.Sprintf("l.lat BETWEEN %s AND %s", arg(p.BBox[1]), arg(p.BBox[3])),
			fmt.Sprintf("l.lon BETWEEN %s AND %s", arg(p.BBox[0]), arg(p.BBox[2])),
		)
	}
	if len(p.Vendors) > 0 {
		where = append(where, fmt.Sprintf("v.code = ANY(%s)", arg(p.Vendors)))
	}
	if len(p.Types) > 0 {
		where = append(where, fmt.Sprintf("l.type = ANY(%s)", arg(p.Types)))
	}
	if len(p.Statuses) > 0 {
		where = append(where, fmt.Sprintf("l.status = ANY(%s)", arg(p.Statuses)))
	}
	if q := strings.TrimSpace(p.Query); q != "" {
		ph := arg("%" + q + "%")
		where = append(where, fmt.Sprintf(
			"(l.name ILIKE %s OR l.address_line ILIKE %s OR l.city ILIKE %s OR l.postcode ILIKE %s)",
			ph, ph, ph, ph))
	}

	query := fmt.Sprintf(`
SELECT
  l.id, l.vendor_id, l.vendor_location_id, l.name, l.type, l.status,
  l.lat, l.lon, l.address_line, l.city, l.postcode, l.country,
  l.services, l.opening_hours, l.last_seen_at, l.last_updated_at, l.active,
  v.code, v.name
FROM locations l
JOIN vendors v ON v.id = l.vendor_id
WHERE %s
ORDER BY l.id
LIMIT %s
`, strings.Join(where, " AND "), arg(p.Limit))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select locations")
	}
	defer rows.Close()

	var out []models.LocationView
	for rows.Next() {
		var lv models.LocationView
		var services []byte
		if err := rows.Scan(
			&lv.ID, &lv.VendorID, &lv.VendorLocationID, &lv.Name, &lv.Type, &lv.Status,
			&lv.Lat, &lv.Lon, &lv.AddressLine, &lv.City, &lv.Postcode, &lv.Country,
			&services, &lv.OpeningHours, &lv.LastSeenAt, &lv.LastUpdatedAt, &lv.Active,
			&lv.VendorCode, &lv.VendorName,
		); err != nil {
			return nil, errors.Wrap(err, "scan location")
		}
		if len(services) > 0 {
			_ = json.Unmarshal(services, &lv.Services)
		}
		out = append(out, lv)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) CountsByVendor(ctx context.Context) ([]models.VendorCount, error) {
	rows, err := s.db.Query(ctx, `
SELECT v.id, v.code, v.name, COUNT(l.id)
FROM vendors v
LEFT JOIN locations l ON l.vendor_id = v.id AND l.active = TRUE
WHERE v.active = TRUE
GROUP BY v.id, v.code, v.name
ORDER BY v.name
`)
	if err != nil {
		return nil, errors.Wrap(err, "select vendor counts")
	}
	defer rows.Close()

	var out []models.VendorCount
	for rows.Next() {
		var c models.VendorCount
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Count); err != nil {
			return nil, errors.Wrap(err, "scan vendor count")
		}
		out = append(out, c)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
