package pglocker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/BearBump/LockerBox/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// SaveSnapshot appends the raw payload for audit/replay, keyed by content
// hash. Duplicate payloads produce duplicate rows; the hash is there for
// identification, not uniqueness.
func (s *Storage) SaveSnapshot(ctx context.Context, vendorID int64, payload []byte) error {
	sum := sha256.Sum256(payload)
	_, err := s.db.Exec(ctx, `
INSERT INTO vendor_payload_snapshots (vendor_id, content_hash, payload)
VALUES ($1, $2, $3)
`, vendorID, hex.EncodeToString(sum[:]), payload)
	return errors.Wrap(err, "insert snapshot")
}

func (s *Storage) LatestSnapshot(ctx context.Context, vendorID int64) (*models.PayloadSnapshot, error) {
	var snap models.PayloadSnapshot
	err := s.db.QueryRow(ctx, `
SELECT id, vendor_id, content_hash, payload, stored_at
FROM vendor_payload_snapshots
WHERE vendor_id = $1
ORDER BY stored_at DESC, id DESC
LIMIT 1
`, vendorID).Scan(&snap.ID, &snap.VendorID, &snap.ContentHash, &snap.Payload, &snap.StoredAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select snapshot")
	}
	return &snap, nil
}
