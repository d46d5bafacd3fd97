package services

import (
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
)

// recordingSink implements driven.EventSink for testing.
type recordingSink struct {
	mu       sync.Mutex
	readings []domain.HeadingReading
	codes    []string
	messages []string
	ended    int
}

func (s *recordingSink) Emit(r domain.HeadingReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, r)
}

func (s *recordingSink) EmitError(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, code)
	s.messages = append(s.messages, message)
}

func (s *recordingSink) EndOfStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended++
}

func (s *recordingSink) Readings() []domain.HeadingReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.HeadingReading(nil), s.readings...)
}

// fakeProvider implements driven.HeadingProvider for testing.
type fakeProvider struct {
	kind     domain.ProviderKind
	startErr error

	mu          sync.Mutex
	handler     driven.ReadingHandler
	last        domain.HeadingReading
	started     int
	stopped     int
	emitOnStart *domain.HeadingReading

	// onStart runs inside Start, before the provider reports its result.
	onStart func()
}

func newFakeProvider(kind domain.ProviderKind) *fakeProvider {
	return &fakeProvider{kind: kind, last: domain.NoReading()}
}

func (p *fakeProvider) Kind() domain.ProviderKind { return p.kind }

func (p *fakeProvider) Start() error {
	p.mu.Lock()
	p.started++
	r := p.emitOnStart
	p.mu.Unlock()
	if p.onStart != nil {
		p.onStart()
	}
	if p.startErr != nil {
		return p.startErr
	}
	if r != nil {
		p.push(*r)
	}
	return nil
}

func (p *fakeProvider) CurrentReading() domain.HeadingReading {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *fakeProvider) OnReading(h driven.ReadingHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = h
}

func (p *fakeProvider) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped++
}

// push simulates the provider accepting a reading. Unlike a real provider
// it keeps calling the handler it captured, like a callback already in
// flight when the stream is cancelled.
func (p *fakeProvider) push(r domain.HeadingReading) {
	p.mu.Lock()
	p.last = r
	h := p.handler
	p.mu.Unlock()
	if h != nil {
		h(r)
	}
}

// handlerSnapshot returns the currently registered handler.
func (p *fakeProvider) handlerSnapshot() driven.ReadingHandler {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handler
}

// fakeFactory implements driven.ProviderFactory for testing.
type fakeFactory struct {
	providers map[domain.ProviderKind]*fakeProvider
	createErr error
	created   []domain.ProviderKind
	opts      []driven.ProviderOptions
}

func (f *fakeFactory) Create(kind domain.ProviderKind, opts driven.ProviderOptions) (driven.HeadingProvider, error) {
	f.created = append(f.created, kind)
	f.opts = append(f.opts, opts)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if kind == domain.ProviderUnavailable {
		return nil, unavailableError(opts.Heading)
	}
	p, ok := f.providers[kind]
	if !ok {
		p = newFakeProvider(kind)
		if f.providers == nil {
			f.providers = make(map[domain.ProviderKind]*fakeProvider)
		}
		f.providers[kind] = p
	}
	return p, nil
}

func (f *fakeFactory) Register(domain.ProviderKind, driven.ProviderBuilder) {}

func (f *fakeFactory) SupportedKinds() []domain.ProviderKind { return nil }

// mockSensors implements driven.SensorSubsystem for testing.
type mockSensors struct {
	mu        sync.Mutex
	present   map[domain.SensorType]bool
	listeners map[driven.SensorListener]domain.SensorType
}

func newMockSensors(types ...domain.SensorType) *mockSensors {
	m := &mockSensors{
		present:   make(map[domain.SensorType]bool),
		listeners: make(map[driven.SensorListener]domain.SensorType),
	}
	for _, t := range types {
		m.present[t] = true
	}
	return m
}

func (m *mockSensors) HasSensor(t domain.SensorType) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present[t]
}

func (m *mockSensors) RegisterListener(l driven.SensorListener, t domain.SensorType, _ domain.SamplingRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present[t] {
		return domain.ErrSensorNotPresent
	}
	m.listeners[l] = t
	return nil
}

func (m *mockSensors) UnregisterListener(l driven.SensorListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listeners, l)
}

func (m *mockSensors) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

// publish delivers an event to every listener registered for its sensor.
func (m *mockSensors) publish(e domain.SensorEvent) {
	m.mu.Lock()
	var targets []driven.SensorListener
	for l, t := range m.listeners {
		if t == e.Sensor {
			targets = append(targets, l)
		}
	}
	m.mu.Unlock()
	for _, l := range targets {
		l.OnSensorChanged(e)
	}
}

// mockFused implements driven.FusedOrientationService for testing.
type mockFused struct {
	available bool
	listener  driven.OrientationListener
}

func (m *mockFused) IsAvailable() bool { return m.available }

func (m *mockFused) RequestOrientationUpdates(_ domain.OrientationRequest, l driven.OrientationListener) error {
	if !m.available {
		return domain.ErrServiceNotAvailable
	}
	m.listener = l
	return nil
}

func (m *mockFused) RemoveOrientationUpdates(driven.OrientationListener) {
	m.listener = nil
}

// mockLocation implements driven.LocationSubsystem for testing.
type mockLocation struct {
	mu        sync.Mutex
	listeners []driven.LocationListener
}

func (m *mockLocation) RequestUpdates(_ time.Duration, _ float64, l driven.LocationListener) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
	return nil
}

func (m *mockLocation) RemoveUpdates(l driven.LocationListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, x := range m.listeners {
		if x == l {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return
		}
	}
}

func (m *mockLocation) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

func (m *mockLocation) deliver(fix domain.LocationFix) {
	m.mu.Lock()
	targets := append([]driven.LocationListener(nil), m.listeners...)
	m.mu.Unlock()
	for _, l := range targets {
		l.OnLocationChanged(fix)
	}
}

var errModel = errors.New("outside model range")

// mockModel implements driven.GeomagneticModel for testing.
// Declination is latitude/10 degrees.
type mockModel struct{}

func (mockModel) Name() string { return "mock" }

func (mockModel) Declination(lat, _, _ float64, _ time.Time) (float64, error) {
	if lat > 89 {
		return 0, errModel
	}
	return lat / 10, nil
}
