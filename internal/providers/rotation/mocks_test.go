package rotation

import (
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
)

// mockSensors implements driven.SensorSubsystem for testing.
type mockSensors struct {
	mu          sync.Mutex
	present     map[domain.SensorType]bool
	registerErr error
	listeners   map[driven.SensorListener]domain.SamplingRate
	unregisters int
}

func newMockSensors(present ...domain.SensorType) *mockSensors {
	m := &mockSensors{
		present:   make(map[domain.SensorType]bool),
		listeners: make(map[driven.SensorListener]domain.SamplingRate),
	}
	for _, s := range present {
		m.present[s] = true
	}
	return m
}

func (m *mockSensors) HasSensor(sensor domain.SensorType) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present[sensor]
}

func (m *mockSensors) RegisterListener(l driven.SensorListener, _ domain.SensorType, rate domain.SamplingRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registerErr != nil {
		return m.registerErr
	}
	m.listeners[l] = rate
	return nil
}

func (m *mockSensors) UnregisterListener(l driven.SensorListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listeners, l)
	m.unregisters++
}

func (m *mockSensors) registered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

// mockLocation implements driven.LocationSubsystem for testing.
type mockLocation struct {
	requestErr  error
	listener    driven.LocationListener
	minInterval time.Duration
	minDistance float64
	removed     int
}

func (m *mockLocation) RequestUpdates(minInterval time.Duration, minDistance float64, l driven.LocationListener) error {
	if m.requestErr != nil {
		return m.requestErr
	}
	m.listener = l
	m.minInterval = minInterval
	m.minDistance = minDistance
	return nil
}

func (m *mockLocation) RemoveUpdates(l driven.LocationListener) {
	if m.listener == l {
		m.listener = nil
	}
	m.removed++
}

// mockModel implements driven.GeomagneticModel with a declination of
// latitude/10 + longitude/100.
type mockModel struct {
	calls int
}

var errBadLatitude = errors.New("latitude out of range")

func (m *mockModel) Name() string { return "mock" }

func (m *mockModel) Declination(lat, lon, _ float64, _ time.Time) (float64, error) {
	m.calls++
	if lat > 90 || lat < -90 {
		return 0, errBadLatitude
	}
	return lat/10 + lon/100, nil
}

// recorder collects readings delivered to a handler.
type recorder struct {
	mu       sync.Mutex
	readings []domain.HeadingReading
}

func (r *recorder) handle(reading domain.HeadingReading) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings = append(r.readings, reading)
}

func (r *recorder) all() []domain.HeadingReading {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.HeadingReading(nil), r.readings...)
}

func rotationEvent(azimuthDeg, accuracyRad float64) domain.SensorEvent {
	values := append(VectorForAzimuth(azimuthDeg), accuracyRad)
	return domain.SensorEvent{Sensor: domain.SensorRotationVector, Values: values}
}
