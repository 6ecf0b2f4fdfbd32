// Package metrics defines and registers all custom Prometheus metrics for the
// routing API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics register themselves with the default Prometheus registry at import
// time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "routing"

// RoutesCalculatedTotal counts routes successfully computed.
// Labels:
//   - profile: the routing profile used (e.g. "driving-traffic")
//   - kind: "single", "multi_stop", or "driver_optimization"
var RoutesCalculatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "routes_calculated_total",
		Help:      "Total number of routes successfully calculated.",
	},
	[]string{"profile", "kind"},
)

// ProviderErrorsTotal counts failed directions provider calls.
// Label:
//   - reason: short description of the failure (e.g. "http_error", "no_route", "malformed_response")
var ProviderErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_errors_total",
		Help:      "Total number of directions provider calls that failed.",
	},
	[]string{"reason"},
)

// ProviderRequestDuration measures the round-trip time of directions provider calls.
// Label:
//   - outcome: "ok" or "error"
var ProviderRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of directions provider HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// ETAsPersistedTotal counts delivery estimates written back to order records.
var ETAsPersistedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "etas_persisted_total",
		Help:      "Total number of order ETAs persisted.",
	},
)

// DriverLocationUpdatesTotal counts driver position reports accepted.
var DriverLocationUpdatesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "driver_location_updates_total",
		Help:      "Total number of driver location updates accepted.",
	},
)

// RefreshQueueDepth tracks the number of ETA refresh jobs waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var RefreshQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "refresh_queue_depth",
		Help:      "Current number of ETA refresh jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
