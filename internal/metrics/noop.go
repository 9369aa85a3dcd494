package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration(outcome string) {}

// IncCoffeeAdded is a no-op.
func (n *NoopRecorder) IncCoffeeAdded() {}

// IncCoffeeRejected is a no-op.
func (n *NoopRecorder) IncCoffeeRejected() {}

// IncCoffeeListed is a no-op.
func (n *NoopRecorder) IncCoffeeListed() {}

// IncAuthFailure is a no-op.
func (n *NoopRecorder) IncAuthFailure(reason string) {}

// IncKeyCacheHit is a no-op.
func (n *NoopRecorder) IncKeyCacheHit() {}

// IncKeyCacheMiss is a no-op.
func (n *NoopRecorder) IncKeyCacheMiss() {}

// ObserveStoreDuration is a no-op.
func (n *NoopRecorder) ObserveStoreDuration(op string, duration time.Duration) {}
