package sameday

import (
	"testing"

	"github.com/BearBump/LockerBox/internal/models"
	"github.com/BearBump/LockerBox/internal/vendors"
	"github.com/stretchr/testify/require"
)

func TestAdapter_Parse_bareArray(t *testing.T) {
	raw := []byte(`[
	  {
	    "lockerId": "1234",
	    "name": "easybox Mega Image",
	    "lat": 44.4268,
	    "lng": 26.1025,
	    "address": "Strada Exemplu 1",
	    "city": "Bucuresti",
	    "postalCode": "010101",
	    "countryCode": "ro",
	    "county": "Bucuresti"
	  }
	]`)

	a := New(0, 0)
	recs, err := a.Parse(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	require.Equal(t, "1234", rec.VendorLocationID)
	require.Equal(t, models.TypeLocker, rec.Type)
	require.InDelta(t, 44.4268, rec.Lat, 0.0001)
	require.Equal(t, "RO", rec.Country)
	require.Equal(t, "Bucuresti", rec.Services["county"])
}

func TestAdapter_Parse_wrappedPayloads(t *testing.T) {
	for _, wrapper := range []string{"data", "lockers", "items"} {
		raw := []byte(`{"` + wrapper + `": [{"id": "1", "lat": 44.4, "lng": 26.1}]}`)

		a := New(0, 0)
		recs, err := a.Parse(raw)
		require.NoError(t, err, wrapper)
		require.Len(t, recs, 1, wrapper)
		require.Equal(t, "easybox 1", recs[0].Name, wrapper)
	}
}

func TestAdapter_Parse_coordinateAliases(t *testing.T) {
	cases := []struct {
		name string
		item string
	}{
		{"latitude-longitude", `{"id": "1", "latitude": 44.4, "longitude": 26.1}`},
		{"location-pair", `{"id": "1", "location": [44.4, 26.1]}`},
		{"geo-object", `{"id": "1", "geo": {"lat": 44.4, "lng": 26.1}}`},
		{"string-coords", `{"id": "1", "lat": "44.4", "lng": "26.1"}`},
	}

	for _, tc := range cases {
		a := New(0, 0)
		recs, err := a.Parse([]byte(`[` + tc.item + `]`))
		require.NoError(t, err, tc.name)
		require.Len(t, recs, 1, tc.name)
		require.InDelta(t, 44.4, recs[0].Lat, 0.0001, tc.name)
		require.InDelta(t, 26.1, recs[0].Lon, 0.0001, tc.name)
	}
}

func TestAdapter_Parse_oohTypeBecomesPickupPoint(t *testing.T) {
	raw := []byte(`[
	  {"id": "box", "lat": 44.4, "lng": 26.1, "oohType": 0},
	  {"id": "partner", "lat": 44.5, "lng": 26.2, "oohType": 1}
	]`)

	a := New(0, 0)
	recs, err := a.Parse(raw)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, models.TypeLocker, recs[0].Type)
	require.Equal(t, models.TypePickupPoint, recs[1].Type)
}

func TestAdapter_Parse_dropsItemsWithoutCoords(t *testing.T) {
	raw := []byte(`[
	  {"id": "ok", "lat": 44.4, "lng": 26.1},
	  {"id": "none"},
	  {"id": "bad", "lat": 123.0, "lng": 26.1}
	]`)

	a := New(0, 0)
	recs, err := a.Parse(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "ok", recs[0].VendorLocationID)
}

func TestAdapter_Parse_invalidPayload(t *testing.T) {
	a := New(0, 0)

	_, err := a.Parse([]byte(`not json`))
	require.Error(t, err)

	_, err = a.Parse([]byte(`{"unexpected": {}}`))
	require.Error(t, err)

	var parseErr *vendors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "sameday", parseErr.Vendor)
}
