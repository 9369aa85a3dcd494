package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Registrations          uint64
	RegistrationsFailed    uint64
	CoffeeAdded            uint64
	CoffeeRejected         uint64
	CoffeeListed           uint64
	AuthMissingKey         uint64
	AuthUnknownKey         uint64
	KeyCacheHits           uint64
	KeyCacheMisses         uint64
	StoreDurationCount     uint64
	StoreDurationTotalNs   int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	registrations        uint64
	registrationsFailed  uint64
	coffeeAdded          uint64
	coffeeRejected       uint64
	coffeeListed         uint64
	authMissingKey       uint64
	authUnknownKey       uint64
	keyCacheHits         uint64
	keyCacheMisses       uint64
	storeDurationCount   uint64
	storeDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Registrations:        atomic.LoadUint64(&m.registrations),
		RegistrationsFailed:  atomic.LoadUint64(&m.registrationsFailed),
		CoffeeAdded:          atomic.LoadUint64(&m.coffeeAdded),
		CoffeeRejected:       atomic.LoadUint64(&m.coffeeRejected),
		CoffeeListed:         atomic.LoadUint64(&m.coffeeListed),
		AuthMissingKey:       atomic.LoadUint64(&m.authMissingKey),
		AuthUnknownKey:       atomic.LoadUint64(&m.authUnknownKey),
		KeyCacheHits:         atomic.LoadUint64(&m.keyCacheHits),
		KeyCacheMisses:       atomic.LoadUint64(&m.keyCacheMisses),
		StoreDurationCount:   atomic.LoadUint64(&m.storeDurationCount),
		StoreDurationTotalNs: atomic.LoadInt64(&m.storeDurationTotalNs),
	}
}

// IncRegistration counts a registration by outcome.
func (m *InMemoryRecorder) IncRegistration(outcome string) {
	if outcome == OutcomeSuccess {
		atomic.AddUint64(&m.registrations, 1)
		return
	}
	atomic.AddUint64(&m.registrationsFailed, 1)
}

// IncCoffeeAdded increments the added counter.
func (m *InMemoryRecorder) IncCoffeeAdded() {
	atomic.AddUint64(&m.coffeeAdded, 1)
}

// IncCoffeeRejected increments the rejected counter.
func (m *InMemoryRecorder) IncCoffeeRejected() {
	atomic.AddUint64(&m.coffeeRejected, 1)
}

// IncCoffeeListed increments the listed counter.
func (m *InMemoryRecorder) IncCoffeeListed() {
	atomic.AddUint64(&m.coffeeListed, 1)
}

// IncAuthFailure counts an auth failure by reason.
func (m *InMemoryRecorder) IncAuthFailure(reason string) {
	if reason == ReasonMissingKey {
		atomic.AddUint64(&m.authMissingKey, 1)
		return
	}
	atomic.AddUint64(&m.authUnknownKey, 1)
}

// IncKeyCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncKeyCacheHit() {
	atomic.AddUint64(&m.keyCacheHits, 1)
}

// IncKeyCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncKeyCacheMiss() {
	atomic.AddUint64(&m.keyCacheMisses, 1)
}

// ObserveStoreDuration records store call duration.
func (m *InMemoryRecorder) ObserveStoreDuration(op string, duration time.Duration) {
	atomic.AddUint64(&m.storeDurationCount, 1)
	atomic.AddInt64(&m.storeDurationTotalNs, duration.Nanoseconds())
}
