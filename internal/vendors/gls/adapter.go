// Package gls imports GLS delivery-point feeds
// (e.g. https://map.gls-hungary.com/data/deliveryPoints/hu.json).
// One adapter serves every regional feed; the syncer keys records per feed.
package gls

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

const vendorCode = "gls"

type Adapter struct {
	httpc *http.Client
}

func New(connectTimeout, totalTimeout time.Duration) *Adapter {
	return &Adapter{httpc: vendors.NewHTTPClient(connectTimeout, totalTimeout)}
}

func (a *Adapter) Fetch(ctx context.Context, url string) ([]byte, error) {
	return vendors.Get(ctx, a.httpc, vendorCode, url)
}

type feedDoc struct {
	Items []map[string]any `json:"items"`
}

func (a *Adapter) Parse(raw []byte) ([]models.LocationRecord, error) {
	var doc feedDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &vendors.ParseError{Vendor: vendorCode, Err: errors.Wrap(err, "decode json object")}
	}

	out := make([]models.LocationRecord, 0, len(doc.Items))
	for _, item := range doc.Items {
		if item == nil {
			continue
		}

		id, ok := vendors.FirstString(item, "id")
		if !ok {
			slog.Warn("gls: skip item without id")
			continue
		}

		// Coordinates arrive as location: [lat, lon].
		loc, _ := vendors.FirstSlice(item, "location")
		if len(loc) < 2 {
			slog.Warn("gls: skip item without location pair", "id", id)
			continue
		}
		lat, latOK := vendors.AsFloat(loc[0])
		lon, lonOK := vendors.AsFloat(loc[1])
		if !latOK || !lonOK || !vendors.ValidCoords(lat, lon) {
			slog.Warn("gls: skip item with invalid coordinates", "id", id, "lat", lat, "lon", lon)
			continue
		}

		name, ok := vendors.FirstString(item, "name")
		if !ok {
			name = "GLS " + id
		}

		var addr, city, zip, country string
		if contact, ok := vendors.FirstMap(item, "contact"); ok {
			addr, _ = vendors.FirstString(contact, "address")
			city, _ = vendors.FirstString(contact, "city")
			zip, _ = vendors.FirstString(contact, "postalCode")
			country, _ = vendors.FirstString(contact, "countryCode")
		}
		if country == "" {
			country = "HU"
		}

		rawType, _ := vendors.FirstString(item, "type")

		services := map[string]any{}
		if features, ok := vendors.FirstSlice(item, "features"); ok {
			services["features"] = features
		}
		if pt, ok := vendors.FirstString(item, "pickupTime"); ok {
			services["pickup_time"] = pt
		}
		if wheelchair, ok := vendors.FirstBool(item, "hasWheelchairAccess"); ok && wheelchair {
			services["wheelchair_accessible"] = true
		}
		if sat, ok := vendors.FirstFloat(item, "lockerSaturation"); ok {
			services["locker_saturation"] = sat
		}

		var openingHours *string
		if hours, ok := vendors.FirstMap(item, "hours"); ok {
			if b, err := json.Marshal(hours); err == nil {
				openingHours = vendors.StrPtr(string(b))
			}
		}

		out = append(out, models.LocationRecord{
			VendorLocationID: id,
			Name:             name,
			Type:             normalizeType(rawType),
			Status:           models.StatusActive, // the feed only lists operating points
			Lat:              lat,
			Lon:              lon,
			AddressLine:      vendors.StrPtr(addr),
			City:             vendors.StrPtr(city),
			Postcode:         vendors.StrPtr(zip),
			Country:          strings.ToUpper(country),
			Services:         services,
			OpeningHours:     openingHours,
		})
	}

	slog.Info("gls: parsed locations", "count", len(out))
	return out, nil
}

func normalizeType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "parcel-locker":
		return models.TypeLocker
	case "parcel-shop", "parcel_shop":
		return models.TypeParcelShop
	default:
		return models.TypeLocker
	}
}
