package syncer

import (
	"context"
	"errors"
	"testing"

	"github.com/BearBump/LockerBox/internal/models"
	"github.com/BearBump/LockerBox/internal/vendors"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	vendors    []models.Vendor
	vendorsErr error
	feeds      map[int64][]models.Feed

	locations map[string]bool
	upserts   []string

	runs      int
	completed int
	failed    int
	failMsg   string

	snapshots [][]byte

	inactivated int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		feeds:     map[int64][]models.Feed{},
		locations: map[string]bool{},
	}
}

func (f *fakeStore) ActiveVendors(ctx context.Context) ([]models.Vendor, error) {
	return f.vendors, f.vendorsErr
}

func (f *fakeStore) FeedsByVendor(ctx context.Context, vendorID int64) ([]models.Feed, error) {
	return f.feeds[vendorID], nil
}

func (f *fakeStore) LocationExists(ctx context.Context, vendorID int64, vendorLocationID string) (bool, error) {
	return f.locations[vendorLocationID], nil
}

func (f *fakeStore) UpsertLocation(ctx context.Context, vendorID int64, rec models.LocationRecord) error {
	f.locations[rec.VendorLocationID] = true
	f.upserts = append(f.upserts, rec.VendorLocationID)
	return nil
}

func (f *fakeStore) MarkInactiveByVendor(ctx context.Context, vendorID int64, thresholdDays int) (int64, error) {
	return f.inactivated, nil
}

func (f *fakeStore) StartSyncRun(ctx context.Context, vendorID int64) (int64, error) {
	f.runs++
	return int64(f.runs), nil
}

func (f *fakeStore) CompleteSyncRun(ctx context.Context, runID int64, created, updated, inactivated int) error {
	f.completed++
	return nil
}

func (f *fakeStore) FailSyncRun(ctx context.Context, runID int64, errMsg string) error {
	f.failed++
	f.failMsg = errMsg
	return nil
}

func (f *fakeStore) SaveSnapshot(ctx context.Context, vendorID int64, payload []byte) error {
	f.snapshots = append(f.snapshots, payload)
	return nil
}

type fakeAdapter struct {
	payload    []byte
	fetchCalls int
	fetchErr   error
	recs       []models.LocationRecord
	parseErr   error
}

func (a *fakeAdapter) Fetch(ctx context.Context, url string) ([]byte, error) {
	a.fetchCalls++
	if a.fetchErr != nil {
		return nil, a.fetchErr
	}
	return a.payload, nil
}

func (a *fakeAdapter) Parse(raw []byte) ([]models.LocationRecord, error) {
	return a.recs, a.parseErr
}

type capturingProducer struct {
	topics []string
	keys   [][]byte
	values [][]byte
}

func (p *capturingProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, key)
	p.values = append(p.values, value)
	return nil
}

func TestSyncer_SyncAll_createdUpdatedCounting(t *testing.T) {
	st := newFakeStore()
	st.vendors = []models.Vendor{{ID: 1, Code: "foxpost", Active: true}}
	st.feeds[1] = []models.Feed{{VendorID: 1, URL: "http://x"}}
	st.locations["old"] = true

	ad := &fakeAdapter{
		payload: []byte(`[]`),
		recs: []models.LocationRecord{
			{VendorLocationID: "old"},
			{VendorLocationID: "new"},
		},
	}

	s := New(st, map[string]vendors.Adapter{"foxpost": ad})
	results, err := s.SyncAll(context.Background())
	require.NoError(t, err)

	res := results["foxpost"]
	require.True(t, res.Success)
	require.Equal(t, 1, res.Created)
	require.Equal(t, 1, res.Updated)
	require.Equal(t, 2, res.Total)
	require.Equal(t, 1, st.completed)
	require.Len(t, st.snapshots, 1)
}

func TestSyncer_SyncAll_vendorFailureIsIsolated(t *testing.T) {
	st := newFakeStore()
	st.vendors = []models.Vendor{
		{ID: 1, Code: "broken", Active: true},
		{ID: 2, Code: "healthy", Active: true},
	}
	st.feeds[1] = []models.Feed{{VendorID: 1, URL: "http://a"}}
	st.feeds[2] = []models.Feed{{VendorID: 2, URL: "http://b"}}

	adapters := map[string]vendors.Adapter{
		"broken":  &fakeAdapter{fetchErr: errors.New("boom")},
		"healthy": &fakeAdapter{payload: []byte(`[]`), recs: []models.LocationRecord{{VendorLocationID: "1"}}},
	}

	s := New(st, adapters).WithRetry(1, 0)
	results, err := s.SyncAll(context.Background())
	require.NoError(t, err)

	require.False(t, results["broken"].Success)
	require.NotEmpty(t, results["broken"].Error)
	require.True(t, results["healthy"].Success)
	require.Equal(t, 1, results["healthy"].Created)
	require.Equal(t, 1, st.failed)
	require.Equal(t, 1, st.completed)
}

func TestSyncer_SyncAll_storeErrorIsFatal(t *testing.T) {
	st := newFakeStore()
	st.vendorsErr = errors.New("db down")

	s := New(st, nil)
	_, err := s.SyncAll(context.Background())
	require.Error(t, err)
}

func TestSyncer_syncFeeds_multiFeedNamespacing(t *testing.T) {
	st := newFakeStore()
	st.feeds[1] = []models.Feed{
		{VendorID: 1, URL: "http://cz", FeedKey: "cz"},
		{VendorID: 1, URL: "http://sk", FeedKey: "sk"},
	}

	ad := &fakeAdapter{
		payload: []byte(`[]`),
		recs:    []models.LocationRecord{{VendorLocationID: "42"}},
	}

	s := New(st, map[string]vendors.Adapter{"packeta": ad})
	res, err := s.syncFeeds(context.Background(), models.Vendor{ID: 1, Code: "packeta"})
	require.NoError(t, err)

	require.Equal(t, []string{"cz_42", "sk_42"}, st.upserts)
	require.Equal(t, 2, res.Created)
	require.Equal(t, 0, res.Updated)
	require.Len(t, st.snapshots, 2)
}

func TestSyncer_syncFeeds_legacyAPIURLFallback(t *testing.T) {
	st := newFakeStore()
	ad := &fakeAdapter{payload: []byte(`[]`), recs: []models.LocationRecord{{VendorLocationID: "1"}}}

	s := New(st, map[string]vendors.Adapter{"gls": ad})
	res, err := s.syncFeeds(context.Background(), models.Vendor{ID: 7, Code: "gls", APIURL: "http://legacy"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)
	// No feed key means raw ids pass through unchanged.
	require.Equal(t, []string{"1"}, st.upserts)
}

func TestSyncer_syncFeeds_noFeedsNoURL(t *testing.T) {
	st := newFakeStore()
	s := New(st, map[string]vendors.Adapter{"gls": &fakeAdapter{}})
	_, err := s.syncFeeds(context.Background(), models.Vendor{ID: 7, Code: "gls"})
	require.Error(t, err)
}

func TestSyncer_syncFeeds_missingAdapter(t *testing.T) {
	st := newFakeStore()
	s := New(st, map[string]vendors.Adapter{})
	_, err := s.syncFeeds(context.Background(), models.Vendor{ID: 1, Code: "unknown"})
	require.Error(t, err)
}

func TestSyncer_syncVendor_parseErrorFailsRun(t *testing.T) {
	st := newFakeStore()
	st.feeds[1] = []models.Feed{{VendorID: 1, URL: "http://x"}}
	ad := &fakeAdapter{payload: []byte(`{`), parseErr: &vendors.ParseError{Vendor: "mpl", Err: errors.New("bad xml")}}

	s := New(st, map[string]vendors.Adapter{"mpl": ad})
	_, err := s.syncVendor(context.Background(), models.Vendor{ID: 1, Code: "mpl"})
	require.Error(t, err)
	require.Equal(t, 1, st.failed)
	require.Contains(t, st.failMsg, "mpl")
	// Snapshot is taken before parsing, so the bad payload is kept for replay.
	require.Len(t, st.snapshots, 1)
}

func TestSyncer_SyncAll_publishesVendorSynced(t *testing.T) {
	st := newFakeStore()
	st.vendors = []models.Vendor{{ID: 1, Code: "foxpost", Active: true}}
	st.feeds[1] = []models.Feed{{VendorID: 1, URL: "http://x"}}
	ad := &fakeAdapter{payload: []byte(`[]`)}

	fp := &capturingProducer{}
	s := New(st, map[string]vendors.Adapter{"foxpost": ad}).WithProducer(fp, "locker.vendor.synced")

	_, err := s.SyncAll(context.Background())
	require.NoError(t, err)
	require.Len(t, fp.values, 1)
	require.Equal(t, "locker.vendor.synced", fp.topics[0])
	require.Equal(t, []byte("foxpost"), fp.keys[0])
	require.Contains(t, string(fp.values[0]), `"vendor_code":"foxpost"`)
}
