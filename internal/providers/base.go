package providers

import (
	"sync/atomic"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
)

// Base carries the state every provider variant shares.
// Subsystem callbacks write it from one goroutine; CurrentReading and
// OnReading may be called from any goroutine.
type Base struct {
	kind domain.ProviderKind

	handler   atomic.Pointer[driven.ReadingHandler]
	reading   atomic.Pointer[domain.HeadingReading]
	calibrate atomic.Bool
	started   atomic.Bool
	stopped   atomic.Bool
}

// NewBase creates the shared state for a provider of the given kind.
func NewBase(kind domain.ProviderKind) *Base {
	return &Base{kind: kind}
}

// Kind returns which source backs the provider.
func (b *Base) Kind() domain.ProviderKind {
	return b.kind
}

// CurrentReading returns the last accepted reading, or domain.NoReading.
func (b *Base) CurrentReading() domain.HeadingReading {
	if r := b.reading.Load(); r != nil {
		return *r
	}
	return domain.NoReading()
}

// OnReading replaces the handler. Nil clears it.
func (b *Base) OnReading(handler driven.ReadingHandler) {
	if handler == nil {
		b.handler.Store(nil)
		return
	}
	b.handler.Store(&handler)
}

// NeedsCalibration returns the last calibration flag reported by the source.
func (b *Base) NeedsCalibration() bool {
	return b.calibrate.Load()
}

// SetNeedsCalibration records the calibration flag for subsequent readings.
func (b *Base) SetNeedsCalibration(v bool) {
	b.calibrate.Store(v)
}

// Publish stores an accepted reading and hands it to the handler.
// Returns false if the provider is stopped, in which case nothing happens.
func (b *Base) Publish(reading domain.HeadingReading) bool {
	if b.stopped.Load() {
		return false
	}
	b.reading.Store(&reading)
	if h := b.handler.Load(); h != nil {
		(*h)(reading)
	}
	return true
}

// BeginStart marks the provider started.
func (b *Base) BeginStart() error {
	if b.stopped.Load() {
		return domain.ErrProviderDisposed
	}
	if !b.started.CompareAndSwap(false, true) {
		return domain.ErrProviderStarted
	}
	return nil
}

// AbortStart undoes BeginStart after a failed registration.
func (b *Base) AbortStart() {
	b.started.Store(false)
}

// BeginStop marks the provider stopped and clears the handler.
// It returns true only for the call that stopped a started provider, so
// the caller knows it must unregister from its subsystem.
func (b *Base) BeginStop() bool {
	if !b.stopped.CompareAndSwap(false, true) {
		return false
	}
	b.handler.Store(nil)
	return b.started.Load()
}

// Stopped returns true once Stop has been called.
func (b *Base) Stopped() bool {
	return b.stopped.Load()
}
