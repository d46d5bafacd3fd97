package services

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
	"github.com/custodia-labs/compassx/internal/core/ports/driving"
	"github.com/custodia-labs/compassx/internal/logger"
	"github.com/custodia-labs/compassx/internal/providers"
)

// Ensure HeadingStream implements the interface.
var _ driving.Subscription = (*HeadingStream)(nil)

// StreamConfig holds what a HeadingStream needs to resolve its provider.
type StreamConfig struct {
	Heading  domain.HeadingKind
	Sink     driven.EventSink
	Probe    func() domain.Capabilities
	Selector *ProviderSelector
	Factory  driven.ProviderFactory
	Settings domain.CompassSettings

	// OnDispose is called once when the stream reaches Disposed.
	OnDispose func(*HeadingStream)
}

// binding is the provider a started stream forwards from.
type binding struct {
	provider driven.HeadingProvider
	kind     domain.ProviderKind
}

// HeadingStream connects one provider to one sink.
//
// The lifecycle is Idle -> Active -> Disposed. Disposed is terminal: once
// reached, nothing else is delivered to the sink, including readings
// already in flight on a subsystem goroutine.
type HeadingStream struct {
	id  string
	cfg StreamConfig

	state    atomic.Int32
	starting atomic.Bool
	bound    atomic.Pointer[binding]
	disposed atomic.Bool

	// Touched only from the provider's callback goroutine.
	gate        *providers.NoiseGate
	calibrating bool
	forwarded   bool

	log *logger.Logger
}

// NewHeadingStream creates an idle stream.
func NewHeadingStream(cfg StreamConfig) *HeadingStream {
	if cfg.Selector == nil {
		cfg.Selector = NewProviderSelector()
	}
	return &HeadingStream{
		id:   uuid.New().String(),
		cfg:  cfg,
		gate: providers.NewNoiseGate(cfg.Settings.Noise.ThresholdDegrees),
		log:  logger.Named("stream"),
	}
}

// ID uniquely identifies the stream.
func (s *HeadingStream) ID() string {
	return s.id
}

// Heading returns the channel the stream serves.
func (s *HeadingStream) Heading() domain.HeadingKind {
	return s.cfg.Heading
}

// State returns the current lifecycle state.
func (s *HeadingStream) State() domain.SubscriptionState {
	return domain.SubscriptionState(s.state.Load())
}

// Provider returns the kind of the bound provider.
func (s *HeadingStream) Provider() domain.ProviderKind {
	if b := s.bound.Load(); b != nil {
		return b.kind
	}
	return domain.ProviderUnavailable
}

// CurrentReading returns the provider's last accepted reading.
func (s *HeadingStream) CurrentReading() domain.HeadingReading {
	if b := s.bound.Load(); b != nil {
		return b.provider.CurrentReading()
	}
	return domain.NoReading()
}

// Start selects and starts a provider. The stream stays Idle until the
// provider is running. If none can be started the sink receives one
// terminal error and the end of the stream, and the stream goes straight
// to Disposed. The returned error mirrors what the sink was told.
func (s *HeadingStream) Start() error {
	if s.disposed.Load() {
		return domain.ErrSubscriptionDisposed
	}
	if !s.starting.CompareAndSwap(false, true) {
		if s.disposed.Load() {
			return domain.ErrSubscriptionDisposed
		}
		return domain.ErrSubscriptionStarted
	}

	caps := s.cfg.Probe()
	kind, err := s.cfg.Selector.Select(s.cfg.Heading, caps)
	if err != nil {
		s.fail(err)
		return err
	}
	s.log.Debug("%s %s heading: selected %s (caps=%+v)", s.id, s.cfg.Heading, kind, caps)

	provider, err := s.cfg.Factory.Create(kind, driven.ProviderOptions{
		Heading:  s.cfg.Heading,
		Settings: s.cfg.Settings,
	})
	if err != nil {
		s.fail(err)
		return err
	}

	s.bound.Store(&binding{provider: provider, kind: kind})
	provider.OnReading(s.forward)

	if err := provider.Start(); err != nil {
		provider.OnReading(nil)
		provider.Stop()
		s.fail(err)
		return err
	}

	// Cancel may have run before the binding was visible to it.
	if s.disposed.Load() || !s.state.CompareAndSwap(int32(domain.SubscriptionIdle), int32(domain.SubscriptionActive)) {
		provider.OnReading(nil)
		provider.Stop()
		return domain.ErrSubscriptionDisposed
	}

	s.log.Info("%s started on %s", s.id, provider.Kind().Description())
	return nil
}

// Cancel stops the provider and disposes the stream. Idempotent.
func (s *HeadingStream) Cancel() {
	if !s.dispose() {
		return
	}
	if b := s.bound.Load(); b != nil {
		b.provider.OnReading(nil)
		b.provider.Stop()
	}
	s.log.Debug("%s cancelled", s.id)
}

// fail reports err to the sink as the terminal event, unless the stream
// was already disposed.
func (s *HeadingStream) fail(err error) {
	if !s.dispose() {
		return
	}

	code, message := domain.CodeSensorNotFound, err.Error()
	if su, ok := domain.AsSourceUnavailable(err); ok {
		code, message = su.Code, su.Reason
	}
	s.log.Warn("%s %s heading unavailable: %v", s.id, s.cfg.Heading, err)

	s.cfg.Sink.EmitError(code, message)
	s.cfg.Sink.EndOfStream()
}

// dispose moves the stream to Disposed. It returns true only for the
// call that made the transition.
func (s *HeadingStream) dispose() bool {
	if !s.disposed.CompareAndSwap(false, true) {
		return false
	}
	s.state.Store(int32(domain.SubscriptionDisposed))
	if s.cfg.OnDispose != nil {
		s.cfg.OnDispose(s)
	}
	return true
}

// forward is the provider callback.
func (s *HeadingStream) forward(reading domain.HeadingReading) {
	if s.disposed.Load() {
		return
	}

	changed := s.forwarded && reading.NeedsCalibration != s.calibrating
	if changed {
		s.log.Info("%s calibration needed: %t", s.id, reading.NeedsCalibration)
	}
	s.calibrating = reading.NeedsCalibration
	s.forwarded = true

	if s.Provider().NoiseGated() && !s.gate.Accept(reading.Heading) && !changed {
		return
	}

	// Re-check: Cancel may have run while the gate was evaluated.
	if s.disposed.Load() {
		return
	}
	s.cfg.Sink.Emit(reading)
}
