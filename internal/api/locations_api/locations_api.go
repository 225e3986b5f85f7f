package locations_api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/BearBump/LockerBox/internal/geocode"
	"github.com/BearBump/LockerBox/internal/models"
	"github.com/BearBump/LockerBox/internal/storage/pglocker"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

type LocationsService interface {
	Search(ctx context.Context, p pglocker.SearchParams) ([]models.LocationView, error)
	Vendors(ctx context.Context) ([]models.Vendor, error)
	CountsByVendor(ctx context.Context) ([]models.VendorCount, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]geocode.Result, error)
}

type LocationsAPI struct {
	svc      LocationsService
	geocoder Geocoder
}

func New(svc LocationsService, geocoder Geocoder) *LocationsAPI {
	return &LocationsAPI{svc: svc, geocoder: geocoder}
}

func (a *LocationsAPI) Routes(r chi.Router) {
	r.Get("/api/lockers", a.searchLockers)
	r.Get("/api/vendors", a.listVendors)
	r.Get("/api/vendors/counts", a.vendorCounts)
	r.Get("/api/geocode", a.geocodeQuery)
}

type listMeta struct {
	Count int `json:"count"`
	Limit int `json:"limit,omitempty"`
}

type listResponse struct {
	Items any      `json:"items"`
	Meta  listMeta `json:"meta"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// searchLockers handles GET /api/lockers.
//
// Query parameters:
//
//	bbox    minLon,minLat,maxLon,maxLat
//	vendor  comma-separated vendor codes
//	type    comma-separated location types
//	status  comma-separated statuses
//	q       free-text match over name/address/city/postcode
//	limit   row cap, clamped server-side
func (a *LocationsAPI) searchLockers(w http.ResponseWriter, r *http.Request) {
	var p pglocker.SearchParams

	if raw := r.URL.Query().Get("bbox"); raw != "" {
		bbox, err := parseBBox(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		p.BBox = bbox
	}

	p.Vendors = csvParam(r, "vendor")
	p.Types = csvParam(r, "type")
	p.Statuses = csvParam(r, "status")
	p.Query = strings.TrimSpace(r.URL.Query().Get("q"))

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		p.Limit = limit
	}

	items, err := a.svc.Search(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Items: items,
		Meta:  listMeta{Count: len(items), Limit: p.Limit},
	})
}

func (a *LocationsAPI) listVendors(w http.ResponseWriter, r *http.Request) {
	vs, err := a.svc.Vendors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: vs, Meta: listMeta{Count: len(vs)}})
}

func (a *LocationsAPI) vendorCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := a.svc.CountsByVendor(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: counts, Meta: listMeta{Count: len(counts)}})
}

func (a *LocationsAPI) geocodeQuery(w http.ResponseWriter, r *http.Request) {
	if a.geocoder == nil {
		writeError(w, http.StatusNotImplemented, errors.New("geocoding is not configured"))
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, errors.New("q is required"))
		return
	}

	results, err := a.geocoder.Geocode(r.Context(), q)
	if err != nil {
		if errors.Is(err, geocode.ErrRateLimited) {
			writeError(w, http.StatusTooManyRequests, err)
			return
		}
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: results, Meta: listMeta{Count: len(results)}})
}

// parseBBox parses "minLon,minLat,maxLon,maxLat".
func parseBBox(raw string) (*[4]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, errors.New("bbox must be minLon,minLat,maxLon,maxLat")
	}
	var bbox [4]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.Errorf("bbox component %d is not a number", i+1)
		}
		bbox[i] = v
	}
	return &bbox, nil
}

func csvParam(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
