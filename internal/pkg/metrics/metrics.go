// Package metrics defines and registers all custom Prometheus metrics for the
// user service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on import, so
// the /metrics handler exposes them without further wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "users"

// ── Account metrics ───────────────────────────────────────────────────────────

// AccountsRegisteredTotal counts successful registrations.
// Label:
//   - role: FARMER, LABOUR or ADMIN
var AccountsRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_registered_total",
		Help:      "Total number of accounts registered, by role.",
	},
	[]string{"role"},
)

// AccountsDeactivatedTotal counts deactivation requests that succeeded.
var AccountsDeactivatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_deactivated_total",
		Help:      "Total number of successful account deactivation requests.",
	},
)

// AccountErrorsTotal counts failed account operations.
// Labels:
//   - operation: register, get, list, update_profile, deactivate
//   - reason: already_exists, not_found, invalid_input, store_unavailable, internal
var AccountErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_errors_total",
		Help:      "Total number of failed account operations.",
	},
	[]string{"operation", "reason"},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// AccountCacheTotal counts account cache lookups and dropped fills.
// Label:
//   - result: "hit", "miss", "error" or "stale" (fill dropped after a concurrent invalidation)
var AccountCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_cache_total",
		Help:      "Total number of account cache lookups and fills, labelled by result.",
	},
	[]string{"result"},
)
