package fake

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/BearBump/LockerBox/internal/models"
)

// Adapter is a deterministic stand-in vendor for demos and wiring tests.
// Fetch never touches the network; Parse ignores the payload and generates
// a stable set of lockers seeded by the configured code.
type Adapter struct {
	code  string
	count int
}

func New(code string, count int) *Adapter {
	if count <= 0 {
		count = 10
	}
	return &Adapter{code: code, count: count}
}

func (a *Adapter) Fetch(ctx context.Context, url string) ([]byte, error) {
	return []byte(url), nil
}

func (a *Adapter) Parse(_ []byte) ([]models.LocationRecord, error) {
	out := make([]models.LocationRecord, 0, a.count)
	for i := 0; i < a.count; i++ {
		id := fmt.Sprintf("%s-%d", a.code, i)

		h := fnv.New32a()
		_, _ = h.Write([]byte(id))
		v := h.Sum32()

		// Scatter inside a Budapest-ish box so the map demo looks alive.
		lat := 47.3 + float64(v%500)/1000.0
		lon := 18.9 + float64((v/500)%500)/1000.0

		typ := models.TypeLocker
		if v%4 == 0 {
			typ = models.TypeParcelShop
		}

		out = append(out, models.LocationRecord{
			VendorLocationID: id,
			Name:             "Demo locker " + id,
			Type:             typ,
			Status:           models.StatusActive,
			Lat:              lat,
			Lon:              lon,
			Country:          "HU",
			Services:         map[string]any{"demo": true},
		})
	}
	return out, nil
}
