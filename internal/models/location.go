package models

import "time"

// Canonical location types.
const (
	TypeLocker       = "locker"
	TypeParcelShop   = "parcel_shop"
	TypePickupPoint  = "pickup_point"
	TypeDropoffPoint = "dropoff_point"
)

// Canonical location statuses.
const (
	StatusActive       = "active"
	StatusInactive     = "inactive"
	StatusOutOfService = "out_of_service"
)

type Vendor struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	APIURL string `json:"-"` // legacy single-feed URL, used when no feed rows exist
	Active bool   `json:"active"`
}

// Feed is one endpoint of a vendor. FeedKey disambiguates multi-region
// vendors sharing one adapter; empty string means a single feed.
type Feed struct {
	VendorID int64
	URL      string
	FeedKey  string
}

// LocationRecord is the adapter output: one normalized location before it
// is attributed to a vendor row in the store.
type LocationRecord struct {
	VendorLocationID string
	Name             string
	Type             string
	Status           string
	Lat              float64
	Lon              float64
	AddressLine      *string
	City             *string
	Postcode         *string
	Country          string
	Services         map[string]any
	OpeningHours     *string
}

type Location struct {
	ID               int64          `json:"id"`
	VendorID         int64          `json:"vendorId"`
	VendorLocationID string         `json:"vendorLocationId"`
	Name             string         `json:"name"`
	Type             string         `json:"type"`
	Status           string         `json:"status"`
	Lat              float64        `json:"lat"`
	Lon              float64        `json:"lon"`
	AddressLine      *string        `json:"addressLine,omitempty"`
	City             *string        `json:"city,omitempty"`
	Postcode         *string        `json:"postcode,omitempty"`
	Country          string         `json:"country"`
	Services         map[string]any `json:"services,omitempty"`
	OpeningHours     *string        `json:"openingHours,omitempty"`
	LastSeenAt       time.Time      `json:"lastSeenAt"`
	LastUpdatedAt    time.Time      `json:"lastUpdatedAt"`
	Active           bool           `json:"active"`
}

// SyncRun statuses.
const (
	SyncRunRunning   = "running"
	SyncRunCompleted = "completed"
	SyncRunFailed    = "failed"
)

type SyncRun struct {
	ID          int64
	VendorID    int64
	Status      string
	StartedAt   time.Time
	EndedAt     *time.Time
	Created     int
	Updated     int
	Inactivated int
	Error       *string
}

// LocationView is a Location joined with its vendor, the shape the query
// API serves.
type LocationView struct {
	Location
	VendorCode string `json:"vendorCode"`
	VendorName string `json:"vendorName"`
}

type VendorCount struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type PayloadSnapshot struct {
	ID          int64
	VendorID    int64
	ContentHash string
	Payload     []byte
	StoredAt    time.Time
}
