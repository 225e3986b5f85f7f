package mpl

import (
	"testing"

	"github.com/BearBump/LockerBox/internal/models"
	"github.com/BearBump/LockerBox/internal/vendors"
	"github.com/stretchr/testify/require"
)

func TestAdapter_Parse(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<posts>
  <post isPostPoint="1" zipCode="1087">
    <ID>163</ID>
    <name>Arena Mall Csomagautomata</name>
    <city>Budapest</city>
    <ServicePointType>PM</ServicePointType>
    <gpsData>
      <WGSLat>47,5009</WGSLat>
      <WGSLon>19,1021</WGSLon>
    </gpsData>
    <street>
      <name>Kerepesi</name>
      <type>ut</type>
      <houseNumber>9</houseNumber>
    </street>
    <workingHours>
      <days>
        <day>1</day>
        <From1>08:00</From1>
        <To1>20:00</To1>
      </days>
      <days>
        <day>2</day>
        <from>08:00</from>
        <to>18:00</to>
      </days>
    </workingHours>
  </post>
  <post isPostPoint="0">
    <ID>999</ID>
    <name>Nem csomagpont</name>
    <gpsData><WGSLat>47,5</WGSLat><WGSLon>19,1</WGSLon></gpsData>
  </post>
</posts>`)

	a := New(0, 0)
	recs, err := a.Parse(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	require.Equal(t, "163", rec.VendorLocationID)
	require.Equal(t, "Arena Mall Csomagautomata", rec.Name)
	require.Equal(t, models.TypeLocker, rec.Type)
	require.Equal(t, models.StatusActive, rec.Status)
	// Comma decimal separators must parse.
	require.InDelta(t, 47.5009, rec.Lat, 0.0001)
	require.InDelta(t, 19.1021, rec.Lon, 0.0001)
	require.Equal(t, "Kerepesi ut 9, 1087 Budapest", *rec.AddressLine)
	require.Equal(t, "Budapest", *rec.City)
	require.Equal(t, "1087", *rec.Postcode)
	require.Equal(t, "HU", rec.Country)
	require.Equal(t, "PM", rec.Services["ServicePointType"])
	require.NotNil(t, rec.OpeningHours)
	require.Contains(t, *rec.OpeningHours, "08:00-20:00")
	require.Contains(t, *rec.OpeningHours, "08:00-18:00")
}

func TestAdapter_Parse_rootElementNameVaries(t *testing.T) {
	raw := []byte(`<export><data><post isPostPoint="1">
	  <ID>1</ID>
	  <gpsData><WGSLat>47,5</WGSLat><WGSLon>19,1</WGSLon></gpsData>
	</post></data></export>`)

	a := New(0, 0)
	recs, err := a.Parse(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "MPL 1", recs[0].Name)
	require.Equal(t, "CS", recs[0].Services["ServicePointType"])
}

func TestAdapter_Parse_skipsBrokenPosts(t *testing.T) {
	raw := []byte(`<posts>
  <post isPostPoint="1"><gpsData><WGSLat>47,5</WGSLat><WGSLon>19,1</WGSLon></gpsData></post>
  <post isPostPoint="1"><ID>nocoords</ID></post>
  <post isPostPoint="1"><ID>badlat</ID><gpsData><WGSLat>99,9</WGSLat><WGSLon>19,1</WGSLon></gpsData></post>
  <post isPostPoint="1"><ID>ok</ID><gpsData><WGSLat>47,5</WGSLat><WGSLon>19,1</WGSLon></gpsData></post>
</posts>`)

	a := New(0, 0)
	recs, err := a.Parse(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "ok", recs[0].VendorLocationID)
}

func TestAdapter_Parse_emptyFeedYieldsNoRecords(t *testing.T) {
	a := New(0, 0)
	recs, err := a.Parse([]byte(`<posts></posts>`))
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestAdapter_Parse_nonXMLPayload(t *testing.T) {
	a := New(0, 0)
	_, err := a.Parse([]byte(`{"items":[]}`))
	require.Error(t, err)

	var parseErr *vendors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "mpl", parseErr.Vendor)
}

func TestBuildAddress(t *testing.T) {
	p := post{}
	p.Street.Name = "Kerepesi"
	p.Street.Type = "ut"
	p.Street.HouseNumber = "9"
	require.Equal(t, "Kerepesi ut 9, 1087 Budapest", buildAddress(p, "Budapest", "1087"))

	empty := post{}
	require.Equal(t, "1087 Budapest", buildAddress(empty, "Budapest", "1087"))
	require.Equal(t, "", buildAddress(empty, "", ""))
}
