package vendors

import (
	"context"
	"fmt"

	"github.com/BearBump/LockerBox/internal/models"
)

// Adapter converts one vendor feed into normalized location records.
// Fetch performs exactly one network request; retries belong to the syncer.
// Parse is a pure function and must fail only on structurally malformed
// payloads, never on individual bad records (those are skipped and logged).
type Adapter interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Parse(raw []byte) ([]models.LocationRecord, error)
}

// FetchError is a transport/HTTP-layer failure. Retryable.
type FetchError struct {
	Vendor string
	URL    string
	Status int // 0 when the request never got an HTTP response
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s fetch %s: http %d", e.Vendor, e.URL, e.Status)
	}
	return fmt.Sprintf("%s fetch %s: %v", e.Vendor, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is a malformed top-level payload. Not retryable.
type ParseError struct {
	Vendor string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse: %v", e.Vendor, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidCoords reports whether a coordinate pair is within WGS84 bounds.
func ValidCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
