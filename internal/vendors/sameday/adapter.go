// Package sameday imports Sameday easybox lockers (RO/HU/BG). The CDN has
// shipped both a bare array and an object wrapping it under data/lockers/items,
// so the parser accepts either shape.
package sameday

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/BearBump/LockerBox/internal/models"
	"github.com/BearBump/LockerBox/internal/vendors"
	"github.com/pkg/errors"
)

const vendorCode = "sameday"

type Adapter struct {
	httpc *http.Client
}

func New(connectTimeout, totalTimeout time.Duration) *Adapter {
	return &Adapter{httpc: vendors.NewHTTPClient(connectTimeout, totalTimeout)}
}

func (a *Adapter) Fetch(ctx context.Context, url string) ([]byte, error) {
	return vendors.Get(ctx, a.httpc, vendorCode, url)
}

func (a *Adapter) Parse(raw []byte) ([]models.LocationRecord, error) {
	items, err := unwrapItems(raw)
	if err != nil {
		return nil, &vendors.ParseError{Vendor: vendorCode, Err: err}
	}

	out := make([]models.LocationRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		id, ok := vendors.FirstString(item, "lockerId", "id")
		if !ok {
			slog.Warn("sameday: skip item without lockerId/id")
			continue
		}

		lat, lon, ok := coords(item)
		if !ok || !vendors.ValidCoords(lat, lon) {
			slog.Warn("sameday: skip item with missing or invalid coordinates", "id", id)
			continue
		}

		name, ok := vendors.FirstString(item, "name")
		if !ok {
			name = "easybox " + id
		}
		addr, _ := vendors.FirstString(item, "address")
		city, _ := vendors.FirstString(item, "city")
		zip, _ := vendors.FirstString(item, "postalCode", "postcode")
		country, ok := vendors.FirstString(item, "countryCode")
		if !ok {
			country = "RO"
		}

		services := map[string]any{}
		if county, ok := vendors.FirstString(item, "county"); ok {
			services["county"] = county
		}

		// oohType 1 marks an out-of-home pickup partner rather than a box.
		typ := models.TypeLocker
		if ooh, ok := vendors.FirstFloat(item, "oohType"); ok && int(ooh) == 1 {
			typ = models.TypePickupPoint
		}

		out = append(out, models.LocationRecord{
			VendorLocationID: id,
			Name:             name,
			Type:             typ,
			Status:           models.StatusActive,
			Lat:              lat,
			Lon:              lon,
			AddressLine:      vendors.StrPtr(addr),
			City:             vendors.StrPtr(city),
			Postcode:         vendors.StrPtr(zip),
			Country:          strings.ToUpper(country),
			Services:         services,
			OpeningHours:     nil,
		})
	}

	slog.Info("sameday: parsed locations", "count", len(out))
	return out, nil
}

func unwrapItems(raw []byte) ([]map[string]any, error) {
	var arr []map[string]any
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decode json")
	}
	for _, key := range []string{"data", "lockers", "items"} {
		inner, ok := doc[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &arr); err == nil {
			return arr, nil
		}
	}
	return nil, errors.New("no locker array under data/lockers/items")
}

// coords tries the known coordinate encodings in priority order:
// lat+lng, latitude+longitude, location[0..1], geo object.
func coords(item map[string]any) (float64, float64, bool) {
	if lat, ok := vendors.FirstFloat(item, "lat"); ok {
		if lon, ok := vendors.FirstFloat(item, "lng"); ok {
			return lat, lon, true
		}
	}
	if lat, ok := vendors.FirstFloat(item, "latitude"); ok {
		if lon, ok := vendors.FirstFloat(item, "longitude"); ok {
			return lat, lon, true
		}
	}
	if loc, ok := vendors.FirstSlice(item, "location"); ok && len(loc) >= 2 {
		lat, latOK := vendors.AsFloat(loc[0])
		lon, lonOK := vendors.AsFloat(loc[1])
		if latOK && lonOK {
			return lat, lon, true
		}
	}
	if geo, ok := vendors.FirstMap(item, "geo"); ok {
		lat, latOK := vendors.FirstFloat(geo, "lat", "latitude")
		lon, lonOK := vendors.FirstFloat(geo, "lng", "lon", "longitude")
		if latOK && lonOK {
			return lat, lon, true
		}
	}
	return 0, 0, false
}
