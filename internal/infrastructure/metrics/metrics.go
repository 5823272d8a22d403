// Package metrics exposes Prometheus instrumentation for the study platform.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alem-hub/studyhub/internal/domain/shared"
)

const namespace = "studyhub"

// =============================================================================
// Collectors
// =============================================================================

var (
	// operationsTotal counts command and query executions.
	// Labels: operation, outcome (ok, not_found, conflict, invalid, insufficient_funds, forbidden, error)
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "app",
		Name:      "operations_total",
		Help:      "Operations executed by outcome",
	}, []string{"operation", "outcome"})

	// operationDuration measures operation latency including lock waits.
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "app",
		Name:      "operation_duration_seconds",
		Help:      "Operation latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
	}, []string{"operation"})

	// tokensCredited sums tokens minted by reward reason.
	tokensCredited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "tokens_credited_total",
		Help:      "Study tokens credited by reason",
	}, []string{"reason"})

	// tokensTransferred sums tokens moved between users.
	tokensTransferred = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "tokens_transferred_total",
		Help:      "Study tokens moved by peer transfers",
	})

	// streakResets counts streaks restarted after a gap.
	streakResets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "streak",
		Name:      "resets_total",
		Help:      "Streaks restarted after more than a day of inactivity",
	})

	// streakMilestones counts bonus-earning streak days.
	streakMilestones = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "streak",
		Name:      "milestones_total",
		Help:      "Streak milestones reached",
	})

	// storeConflicts counts optimistic transaction retries.
	storeConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "conflicts_total",
		Help:      "Transaction conflicts retried by the record store",
	})

	// eventsPublished counts domain events by type.
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Domain events published",
	}, []string{"type"})

	// eventHandlerDuration measures subscriber latency.
	// Labels: type, status (ok, error)
	eventHandlerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "handler_duration_seconds",
		Help:      "Event handler latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"type", "status"})

	// httpRequests counts HTTP requests.
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"method", "route", "code"})

	// httpDuration measures HTTP latency.
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// =============================================================================
// Recording functions
// =============================================================================

// RecordOperation records one operation outcome and its latency.
func RecordOperation(operation string, duration time.Duration, err error) {
	operationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCredit records tokens minted for reason.
func RecordCredit(reason string, amount uint64) {
	tokensCredited.WithLabelValues(reason).Add(float64(amount))
}

// RecordTransfer records a committed peer transfer.
func RecordTransfer(amount uint64) {
	tokensTransferred.Add(float64(amount))
}

// RecordStreak records a streak transition.
func RecordStreak(reset, milestone bool) {
	if reset {
		streakResets.Inc()
	}
	if milestone {
		streakMilestones.Inc()
	}
}

// RecordStoreConflict records one retried transaction conflict.
func RecordStoreConflict() {
	storeConflicts.Inc()
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, code int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Outcome classifies err into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case shared.IsNotFound(err):
		return "not_found"
	case shared.IsConflict(err):
		return "conflict"
	case shared.IsInsufficientFunds(err):
		return "insufficient_funds"
	case shared.IsForbidden(err):
		return "forbidden"
	case shared.IsValidation(err):
		return "invalid"
	case errors.Is(err, shared.ErrLockNotAcquired):
		return "lock_timeout"
	default:
		return "error"
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// =============================================================================
// Event bus observer
// =============================================================================

// EventObserver feeds event bus activity into the collectors above.
type EventObserver struct{}

// ObservePublish implements messaging.Observer.
func (EventObserver) ObservePublish(eventType shared.EventType) {
	eventsPublished.WithLabelValues(string(eventType)).Inc()
}

// ObserveHandler implements messaging.Observer.
func (EventObserver) ObserveHandler(eventType shared.EventType, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	eventHandlerDuration.WithLabelValues(string(eventType), status).Observe(duration.Seconds())
}
