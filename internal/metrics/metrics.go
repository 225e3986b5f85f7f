package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LocationsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lockerbox_locations_created_total",
		Help: "Locations inserted during sync, per vendor.",
	}, []string{"vendor"})

	LocationsUpdatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lockerbox_locations_updated_total",
		Help: "Locations refreshed during sync, per vendor.",
	}, []string{"vendor"})

	LocationsInactivatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lockerbox_locations_inactivated_total",
		Help: "Locations retired by the staleness pass, per vendor.",
	}, []string{"vendor"})

	VendorSyncsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lockerbox_vendor_syncs_total",
		Help: "Vendor sync attempts by outcome.",
	}, []string{"vendor", "result"})
)
