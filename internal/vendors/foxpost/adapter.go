// Package foxpost imports the Foxpost APM feed
// (e.g. https://cdn.foxpost.hu/foxplus.json): a flat JSON array of lockers.
package foxpost

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

const vendorCode = "foxpost"

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
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &vendors.ParseError{Vendor: vendorCode, Err: errors.Wrap(err, "decode json array")}
	}

	out := make([]models.LocationRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		id, ok := vendors.FirstString(item, "place_id", "id")
		if !ok {
			slog.Warn("foxpost: skip item without place_id/id")
			continue
		}
		lat, latOK := vendors.FirstFloat(item, "geolat", "latitude")
		lon, lonOK := vendors.FirstFloat(item, "geolng", "longitude")
		if !latOK || !lonOK {
			slog.Warn("foxpost: skip item without coordinates", "place_id", id)
			continue
		}
		if !vendors.ValidCoords(lat, lon) {
			slog.Warn("foxpost: skip item with invalid coordinates", "place_id", id, "lat", lat, "lon", lon)
			continue
		}

		rawType, _ := vendors.FirstString(item, "apmType", "type")
		rawStatus, _ := vendors.FirstString(item, "status")

		name, ok := vendors.FirstString(item, "name", "title")
		if !ok {
			name = "Foxpost " + id
		}
		addr, _ := vendors.FirstString(item, "address", "address_line")
		city, _ := vendors.FirstString(item, "city")
		zip, _ := vendors.FirstString(item, "zip", "postcode")
		country, ok := vendors.FirstString(item, "country")
		if !ok {
			country = "HU"
		}

		services := map[string]any{}
		if svc, ok := vendors.FirstSlice(item, "service"); ok {
			services["service"] = svc
		}
		if pay, ok := vendors.FirstSlice(item, "paymentOptions"); ok {
			services["payment_options"] = pay
		}
		if card, ok := vendors.FirstBool(item, "cardPayment"); ok {
			services["card_payment"] = card
		}
		if outdoor, ok := vendors.FirstBool(item, "isOutdoor"); ok {
			services["indoor"] = !outdoor
		}
		if variant, ok := vendors.FirstString(item, "variant"); ok {
			services["variant"] = variant
		}

		var openingHours *string
		if open, ok := vendors.FirstMap(item, "open"); ok {
			services["available_24_7"] = allDayEveryDay(open)
			if b, err := json.Marshal(open); err == nil {
				openingHours = vendors.StrPtr(string(b))
			}
		} else if oh, ok := vendors.FirstString(item, "opening_hours"); ok {
			openingHours = vendors.StrPtr(oh)
		}

		out = append(out, models.LocationRecord{
			VendorLocationID: id,
			Name:             name,
			Type:             normalizeType(rawType),
			Status:           normalizeStatus(rawStatus),
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

	slog.Info("foxpost: parsed locations", "count", len(out))
	return out, nil
}

// allDayEveryDay reports whether every listed day is "00:00-24:00".
func allDayEveryDay(open map[string]any) bool {
	if len(open) == 0 {
		return false
	}
	for _, v := range open {
		s, _ := v.(string)
		if s != "00:00-24:00" {
			return false
		}
	}
	return true
}

var typeMap = map[string]string{
	"locker":        models.TypeLocker,
	"parcel_locker": models.TypeLocker,
	"automata":      models.TypeLocker,
	"rollkon":       models.TypeLocker,
	"cleveron":      models.TypeLocker,
	"keba":          models.TypeLocker,
	"parcel_shop":   models.TypeParcelShop,
	"shop":          models.TypeParcelShop,
	"dropoff":       models.TypeDropoffPoint,
	"drop_off":      models.TypeDropoffPoint,
	"pickup":        models.TypePickupPoint,
	"pick_up":       models.TypePickupPoint,
}

func normalizeType(raw string) string {
	if t, ok := typeMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t
	}
	return models.TypeLocker
}

var statusMap = map[string]string{
	"active":         models.StatusActive,
	"available":      models.StatusActive,
	"inactive":       models.StatusInactive,
	"unavailable":    models.StatusInactive,
	"closed":         models.StatusInactive,
	"out_of_service": models.StatusOutOfService,
	"maintenance":    models.StatusOutOfService,
}

func normalizeStatus(raw string) string {
	if s, ok := statusMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return models.StatusActive
}
