package careerframe

import (
	"time"

	"github.com/goksnair/careerframe/store"
)

// Option configures a Manager.
type Option func(*Manager)

// WithStore sets the session store. Defaults to an in-memory store.
func WithStore(s store.Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithMaxTurns bounds per-session turn history. When the bound is hit, the
// oldest turns after the seeded opening are dropped before persisting. Zero
// (the default) keeps history unbounded.
func WithMaxTurns(n int) Option {
	return func(m *Manager) { m.maxTurns = n }
}

// WithProviderTimeout imposes a deadline on each text-generation call. An
// exceeded deadline surfaces as a service_timeout error. Zero disables the
// engine-side deadline and leaves timeouts entirely to the caller's context.
func WithProviderTimeout(d time.Duration) Option {
	return func(m *Manager) { m.providerTimeout = d }
}

// WithClock overrides the time source. Tests use this for deterministic
// timestamps and durations.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}
