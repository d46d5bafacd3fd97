package mcp

import (
	"time"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
	"github.com/custodia-labs/compassx/internal/core/ports/driving"
)

// mockSubscription is a mock implementation of driving.Subscription.
type mockSubscription struct {
	heading   domain.HeadingKind
	provider  domain.ProviderKind
	cancelled bool
}

func (m *mockSubscription) ID() string                            { return "sub-1" }
func (m *mockSubscription) Heading() domain.HeadingKind           { return m.heading }
func (m *mockSubscription) State() domain.SubscriptionState       { return domain.SubscriptionActive }
func (m *mockSubscription) Provider() domain.ProviderKind         { return m.provider }
func (m *mockSubscription) CurrentReading() domain.HeadingReading { return domain.NoReading() }
func (m *mockSubscription) Cancel()                               { m.cancelled = true }

// mockCompassService is a mock implementation of driving.CompassService.
// On Subscribe it replays readings, then the error if set.
type mockCompassService struct {
	readings  []domain.HeadingReading
	errCode   string
	errMsg    string
	subErr    error
	provider  domain.ProviderKind
	selection driving.Selection

	decl     float64
	declErr  error
	declAt   time.Time
	declArgs [3]float64

	lastKind domain.HeadingKind
	lastSub  *mockSubscription
}

func (m *mockCompassService) SubscribeTrueHeading(sink driven.EventSink) driving.Subscription {
	sub, _ := m.Subscribe(domain.HeadingTrue, sink)
	return sub
}

func (m *mockCompassService) SubscribeMagneticHeading(sink driven.EventSink) driving.Subscription {
	sub, _ := m.Subscribe(domain.HeadingMagnetic, sink)
	return sub
}

func (m *mockCompassService) Subscribe(kind domain.HeadingKind, sink driven.EventSink) (driving.Subscription, error) {
	if m.subErr != nil {
		return nil, m.subErr
	}
	m.lastKind = kind
	for _, r := range m.readings {
		sink.Emit(r)
	}
	if m.errCode != "" {
		sink.EmitError(m.errCode, m.errMsg)
		sink.EndOfStream()
	}
	m.lastSub = &mockSubscription{heading: kind, provider: m.provider}
	return m.lastSub, nil
}

func (m *mockCompassService) Capabilities() domain.Capabilities {
	return m.selection.Capabilities
}

func (m *mockCompassService) Selection() driving.Selection {
	return m.selection
}

func (m *mockCompassService) Declination(lat, lon, alt float64, at time.Time) (float64, error) {
	m.declArgs = [3]float64{lat, lon, alt}
	m.declAt = at
	return m.decl, m.declErr
}

func (m *mockCompassService) Active() int { return 2 }

func (m *mockCompassService) Detach() {}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.CompassSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.CompassSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(_ *domain.CompassSettings) error { return m.err }

func (m *mockSettingsService) SetSamplingRate(_ domain.SamplingRate) error { return m.err }

func (m *mockSettingsService) SetNoiseThreshold(_ float64) error { return m.err }

func (m *mockSettingsService) SetLocation(_ bool, _ time.Duration, _ float64) error {
	return m.err
}

func (m *mockSettingsService) GetDefaults() domain.CompassSettings {
	return domain.DefaultCompassSettings()
}
