// Package metrics defines the storefront's Prometheus metrics. Counters are
// registered on the default registry at init; gauges that read live state are
// registered by RegisterGauges once the stores exist.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// Label values shared by the result label of every counter.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// AuthAttemptsTotal counts login attempts.
//   - result: ok, rejected (bad credentials) or error
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Login attempts by result.",
	},
	[]string{"result"},
)

// SignupsTotal counts signups.
//   - result: ok, duplicate, invalid or error
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Signup attempts by result.",
	},
	[]string{"result"},
)

// CartOperationsTotal counts cart mutations.
//   - op: add or remove
//   - result: ok, rejected or error
var CartOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Cart mutations by operation and result.",
	},
	[]string{"op", "result"},
)

// CheckoutsTotal counts checkout attempts.
//   - result: ok, empty, insufficient_stock, unavailable or error
var CheckoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Checkout attempts by result.",
	},
	[]string{"result"},
)

// RegisterGauges registers callback-backed metrics for live sessions and
// dropped audit events on reg.
func RegisterGauges(reg prometheus.Registerer, sessions func() float64, auditDropped func() float64) {
	factory := promauto.With(reg)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Sessions currently held in the session store.",
	}, sessions)
	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Audit events discarded because the dispatcher was full or closed.",
	}, auditDropped)
}
