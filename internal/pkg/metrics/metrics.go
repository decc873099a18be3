// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersPlacedTotal counts orders committed to the ledger.
var OrdersPlacedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders committed to the ledger.",
	},
)

// OrderedQuantityTotal sums the quantity of all committed orders.
var OrderedQuantityTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ordered_quantity_total",
		Help:      "Total quantity across all committed orders.",
	},
)

// OrdersRejectedTotal counts orders that were refused.
// Label:
//   - reason: "insufficient_quantity", "forbidden", "listing_not_found", "invalid_input", "store_error"
var OrdersRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_rejected_total",
		Help:      "Total number of order placements that were rejected, by reason.",
	},
	[]string{"reason"},
)

// OrdersReplayedTotal counts idempotent replays that returned an existing order.
var OrdersReplayedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_replayed_total",
		Help:      "Total number of order requests answered from an idempotency key.",
	},
)

// ListingLockContentionTotal counts placements that had to wait for another
// order on the same listing.
var ListingLockContentionTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_lock_contention_total",
		Help:      "Number of order placements that waited on a busy listing.",
	},
)

// ListingLockWaitDuration measures how long a placement waited to enter the
// per-listing critical section.
var ListingLockWaitDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "listing_lock_wait_seconds",
		Help:      "Time spent waiting for the per-listing order lock.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	},
)

// OrderPlacementDuration measures the end-to-end placement time.
// Label:
//   - outcome: "committed", "replayed" or "rejected"
var OrderPlacementDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_placement_duration_seconds",
		Help:      "Duration of order placement from validation to commit.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// ── Catalog & identity metrics ────────────────────────────────────────────────

// ListingsCreatedTotal counts newly published listings.
var ListingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total number of listings created.",
	},
)

// SessionsIssuedTotal counts issued session tokens.
// Label:
//   - kind: "register" or "login"
var SessionsIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_issued_total",
		Help:      "Total number of session tokens issued, by kind.",
	},
	[]string{"kind"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsPublishedTotal counts domain events by type and result.
// Labels:
//   - type: event type (e.g. "order.placed.v1")
//   - result: "ok", "error" or "dropped"
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of domain events handed to the broker, by type and result.",
	},
	[]string{"type", "result"},
)

// EventsQueueDepth tracks the number of events waiting in each dispatcher worker channel.
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
