// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Auth failure reasons.
const (
	ReasonMissingKey = "missing_key"
	ReasonUnknownKey = "unknown_key"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Registration metrics
	IncRegistration(outcome string) // outcome: "success" or "failed"

	// Coffee metrics
	IncCoffeeAdded()
	IncCoffeeRejected()
	IncCoffeeListed()

	// Key resolution metrics
	IncAuthFailure(reason string) // reason: "missing_key" or "unknown_key"
	IncKeyCacheHit()
	IncKeyCacheMiss()

	// Store latency, labelled by operation name
	ObserveStoreDuration(op string, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
