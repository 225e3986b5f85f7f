package pglocker

import (
	"context"

	"github.com/BearBump/LockerBox/internal/models"
	"github.com/pkg/errors"
)

// StartSyncRun opens the audit record for one vendor sync attempt.
func (s *Storage) StartSyncRun(ctx context.Context, vendorID int64) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
INSERT INTO sync_runs (vendor_id, status, started_at)
VALUES ($1, $2, now())
RETURNING id
`, vendorID, models.SyncRunRunning).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "insert sync run")
	}
	return id, nil
}

func (s *Storage) CompleteSyncRun(ctx context.Context, runID int64, created, updated, inactivated int) error {
	_, err := s.db.Exec(ctx, `
UPDATE sync_runs
SET status = $2, ended_at = now(), created = $3, updated = $4, inactivated = $5
WHERE id = $1
`, runID, models.SyncRunCompleted, created, updated, inactivated)
	return errors.Wrap(err, "complete sync run")
}

func (s *Storage) FailSyncRun(ctx context.Context, runID int64, errMsg string) error {
	_, err := s.db.Exec(ctx, `
UPDATE sync_runs
SET status = $2, ended_at = now(), error = $3
WHERE id = $1
`, runID, models.SyncRunFailed, errMsg)
	return errors.Wrap(err, "fail sync run")
}

func (s *Storage) GetSyncRun(ctx context.Context, runID int64) (*models.SyncRun, error) {
	var r models.SyncRun
	err := s.db.QueryRow(ctx, `
SELECT id, vendor_id, status, started_at, ended_at, created, updated, inactivated, error
FROM sync_runs
WHERE id = $1
`, runID).Scan(
		&r.ID, &r.VendorID, &r.Status, &r.StartedAt, &r.EndedAt,
		&r.Created, &r.Updated, &r.Inactivated, &r.Error,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select sync run")
	}
	return &r, nil
}
