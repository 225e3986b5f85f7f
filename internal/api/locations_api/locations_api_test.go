package locations_api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BearBump/LockerBox/internal/geocode"
	"github.com/BearBump/LockerBox/internal/models"
	"github.com/BearBump/LockerBox/internal/storage/pglocker"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type fakeSvc struct {
	searchIn  pglocker.SearchParams
	searchOut []models.LocationView
	searchErr error

	vendorsOut []models.Vendor
	countsOut  []models.VendorCount
}

func (f *fakeSvc) Search(ctx context.Context, p pglocker.SearchParams) ([]models.LocationView, error) {
	f.searchIn = p
	return f.searchOut, f.searchErr
}
func (f *fakeSvc) Vendors(ctx context.Context) ([]models.Vendor, error) {
	return f.vendorsOut, nil
}
func (f *fakeSvc) CountsByVendor(ctx context.Context) ([]models.VendorCount, error) {
	return f.countsOut, nil
}

type fakeGeocoder struct {
	out []geocode.Result
	err error
}

func (g *fakeGeocoder) Geocode(ctx context.Context, query string) ([]geocode.Result, error) {
	return g.out, g.err
}

func newTestRouter(svc *fakeSvc, g Geocoder) http.Handler {
	r := chi.NewRouter()
	New(svc, g).Routes(r)
	return r
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSearchLockers_parsesFilters(t *testing.T) {
	svc := &fakeSvc{searchOut: []models.LocationView{}}
	h := newTestRouter(svc, nil)

	rec := doGet(t, h, "/api/lockers?bbox=19.0,47.4,19.5,47.6&vendor=foxpost,mpl&type=locker&status=active&q=tesco&limit=50")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, svc.searchIn.BBox)
	require.Equal(t, [4]float64{19.0, 47.4, 19.5, 47.6}, *svc.searchIn.BBox)
	require.Equal(t, []string{"foxpost", "mpl"}, svc.searchIn.Vendors)
	require.Equal(t, []string{"locker"}, svc.searchIn.Types)
	require.Equal(t, []string{"active"}, svc.searchIn.Statuses)
	require.Equal(t, "tesco", svc.searchIn.Query)
	require.Equal(t, 50, svc.searchIn.Limit)
}

func TestSearchLockers_badBBox(t *testing.T) {
	h := newTestRouter(&fakeSvc{}, nil)

	rec := doGet(t, h, "/api/lockers?bbox=19.0,47.4,19.5")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doGet(t, h, "/api/lockers?bbox=a,b,c,d")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchLockers_badLimit(t *testing.T) {
	h := newTestRouter(&fakeSvc{}, nil)

	rec := doGet(t, h, "/api/lockers?limit=abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doGet(t, h, "/api/lockers?limit=-1")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchLockers_responseEnvelope(t *testing.T) {
	svc := &fakeSvc{searchOut: []models.LocationView{
		{Location: models.Location{ID: 1, Name: "Tesco Arena"}, VendorCode: "foxpost"},
	}}
	h := newTestRouter(svc, nil)

	rec := doGet(t, h, "/api/lockers")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []models.LocationView `json:"items"`
		Meta  struct {
			Count int `json:"count"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Meta.Count)
	require.Len(t, body.Items, 1)
	require.Equal(t, "foxpost", body.Items[0].VendorCode)
}

func TestListVendors(t *testing.T) {
	svc := &fakeSvc{vendorsOut: []models.Vendor{{ID: 1, Code: "gls", Name: "GLS"}}}
	h := newTestRouter(svc, nil)

	rec := doGet(t, h, "/api/vendors")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"gls"`)
}

func TestVendorCounts(t *testing.T) {
	svc := &fakeSvc{countsOut: []models.VendorCount{{Code: "mpl", Count: 12}}}
	h := newTestRouter(svc, nil)

	rec := doGet(t, h, "/api/vendors/counts")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"mpl"`)
}

func TestGeocode(t *testing.T) {
	g := &fakeGeocoder{out: []geocode.Result{{Lat: 47.5, Lon: 19.0, DisplayName: "Budapest"}}}
	h := newTestRouter(&fakeSvc{}, g)

	rec := doGet(t, h, "/api/geocode?q=Budapest")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Budapest")
}

func TestGeocode_missingQuery(t *testing.T) {
	h := newTestRouter(&fakeSvc{}, &fakeGeocoder{})

	rec := doGet(t, h, "/api/geocode")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeocode_rateLimited(t *testing.T) {
	g := &fakeGeocoder{err: geocode.ErrRateLimited}
	h := newTestRouter(&fakeSvc{}, g)

	rec := doGet(t, h, "/api/geocode?q=Budapest")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestGeocode_notConfigured(t *testing.T) {
	h := newTestRouter(&fakeSvc{}, nil)

	rec := doGet(t, h, "/api/geocode?q=Budapest")
	require.Equal(t, http.StatusNotImplemented, rec.Code)
}
