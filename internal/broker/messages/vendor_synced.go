package messages

import "time"

// VendorSynced is published after each vendor sync attempt, successful or
// not. Consumers use it to refresh caches and dashboards; it is not part of
// the sync critical path.
type VendorSynced struct {
	VendorID   int64     `json:"vendor_id"`
	VendorCode string    `json:"vendor_code"`
	FinishedAt time.Time `json:"finished_at"`

	Success     bool `json:"success"`
	Created     int  `json:"created,omitempty"`
	Updated     int  `json:"updated,omitempty"`
	Inactivated int  `json:"inactivated,omitempty"`
	Total       int  `json:"total,omitempty"`

	Error *string `json:"error,omitempty"`
}
