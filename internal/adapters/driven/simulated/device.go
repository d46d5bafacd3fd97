// Package simulated provides an in-process device implementing the
// sensor, fused orientation and location ports. Readings are pushed into
// it by a motion generator, a trace replay or tests.
package simulated

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	geo "github.com/kellydunn/golang-geo"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
	"github.com/custodia-labs/compassx/internal/logger"
)

// Ensure Device implements the interfaces.
var (
	_ driven.SensorSubsystem         = (*Device)(nil)
	_ driven.FusedOrientationService = (*Device)(nil)
	_ driven.LocationSubsystem       = (*Device)(nil)
)

// Config describes the hardware a simulated device exposes.
type Config struct {
	// Sensors lists the sensors present.
	Sensors []domain.SensorType

	// FusedAvailable reports whether the fused orientation service works.
	FusedAvailable bool

	// Clock drives timestamps and location gating. Defaults to the wall clock.
	Clock clock.Clock
}

type sensorSub struct {
	id     string
	sensor domain.SensorType
	rate   domain.SamplingRate
}

type orientationSub struct {
	id     string
	period time.Duration
}

type locationSub struct {
	id            string
	limiter       *rate.Limiter
	minDistanceKm float64
	last          *geo.Point
}

// Device is a simulated phone. It is safe for concurrent use; listeners
// are always called without the device lock held.
type Device struct {
	clock clock.Clock
	log   *logger.Logger

	mu             sync.Mutex
	present        map[domain.SensorType]bool
	fusedAvailable bool
	sensors        map[driven.SensorListener]*sensorSub
	orientation    map[driven.OrientationListener]*orientationSub
	location       map[driven.LocationListener]*locationSub
}

// NewDevice creates a simulated device.
func NewDevice(cfg Config) *Device {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	d := &Device{
		clock:          cfg.Clock,
		log:            logger.Named("device"),
		present:        make(map[domain.SensorType]bool),
		fusedAvailable: cfg.FusedAvailable,
		sensors:        make(map[driven.SensorListener]*sensorSub),
		orientation:    make(map[driven.OrientationListener]*orientationSub),
		location:       make(map[driven.LocationListener]*locationSub),
	}
	for _, s := range cfg.Sensors {
		d.present[s] = true
	}
	return d
}

// Clock returns the device clock.
func (d *Device) Clock() clock.Clock {
	return d.clock
}

// SetSensorPresent adds or removes a sensor. Removing a sensor does not
// drop listeners already registered for it.
func (d *Device) SetSensorPresent(sensor domain.SensorType, present bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.present[sensor] = present
}

// SetSensors replaces the set of present sensors.
func (d *Device) SetSensors(sensors []domain.SensorType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.present = make(map[domain.SensorType]bool, len(sensors))
	for _, s := range sensors {
		d.present[s] = true
	}
}

// SetFusedAvailable toggles the fused orientation service.
func (d *Device) SetFusedAvailable(available bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fusedAvailable = available
}

// HasSensor reports whether the sensor exists.
func (d *Device) HasSensor(sensor domain.SensorType) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.present[sensor]
}

// RegisterListener subscribes l to one sensor.
func (d *Device) RegisterListener(l driven.SensorListener, sensor domain.SensorType, samplingRate domain.SamplingRate) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.present[sensor] {
		return domain.ErrSensorNotPresent
	}
	sub := &sensorSub{id: uuid.New().String(), sensor: sensor, rate: samplingRate}
	d.sensors[l] = sub
	d.log.Debug("sensor listener %s registered for %s at %s", sub.id, sensor, samplingRate)
	return nil
}

// UnregisterListener removes l from every sensor.
func (d *Device) UnregisterListener(l driven.SensorListener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if sub, ok := d.sensors[l]; ok {
		delete(d.sensors, l)
		d.log.Debug("sensor listener %s unregistered", sub.id)
	}
}

// IsAvailable reports whether the fused orientation service works.
func (d *Device) IsAvailable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fusedAvailable
}

// RequestOrientationUpdates subscribes l to fused orientation updates.
func (d *Device) RequestOrientationUpdates(req domain.OrientationRequest, l driven.OrientationListener) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.fusedAvailable {
		return domain.ErrServiceNotAvailable
	}
	sub := &orientationSub{id: uuid.New().String(), period: req.Period}
	d.orientation[l] = sub
	d.log.Debug("orientation listener %s registered (period=%s)", sub.id, req.Period)
	return nil
}

// RemoveOrientationUpdates unsubscribes l.
func (d *Device) RemoveOrientationUpdates(l driven.OrientationListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.orientation, l)
}

// RequestUpdates subscribes l to location fixes. A fix is delivered only
// if at least minInterval has passed and the device moved at least
// minDistanceMeters since the last fix delivered to l. The first fix is
// always delivered.
func (d *Device) RequestUpdates(minInterval time.Duration, minDistanceMeters float64, l driven.LocationListener) error {
	if minInterval < 0 || minDistanceMeters < 0 || math.IsNaN(minDistanceMeters) {
		return domain.ErrInvalidInput
	}

	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	sub := &locationSub{
		id:            uuid.New().String(),
		limiter:       rate.NewLimiter(limit, 1),
		minDistanceKm: minDistanceMeters / 1000,
	}
	d.location[l] = sub
	d.log.Debug("location listener %s registered (interval=%s, distance=%.0fm)", sub.id, minInterval, minDistanceMeters)
	return nil
}

// RemoveUpdates unsubscribes l.
func (d *Device) RemoveUpdates(l driven.LocationListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.location, l)
}

// PublishSensor delivers a sample to the listeners of its sensor.
// A zero timestamp is filled from the device clock.
func (d *Device) PublishSensor(event domain.SensorEvent) int {
	if event.Timestamp.IsZero() {
		event.Timestamp = d.clock.Now()
	}

	d.mu.Lock()
	var targets []driven.SensorListener
	for l, sub := range d.sensors {
		if sub.sensor == event.Sensor {
			targets = append(targets, l)
		}
	}
	d.mu.Unlock()

	for _, l := range targets {
		l.OnSensorChanged(event)
	}
	return len(targets)
}

// PublishAccuracy delivers an accuracy change to the listeners of a sensor.
func (d *Device) PublishAccuracy(sensor domain.SensorType, accuracy domain.SensorAccuracy) int {
	d.mu.Lock()
	var targets []driven.SensorListener
	for l, sub := range d.sensors {
		if sub.sensor == sensor {
			targets = append(targets, l)
		}
	}
	d.mu.Unlock()

	for _, l := range targets {
		l.OnAccuracyChanged(sensor, accuracy)
	}
	return len(targets)
}

// PublishOrientation delivers a fused update to every orientation listener.
func (d *Device) PublishOrientation(o domain.DeviceOrientation) int {
	if o.Time.IsZero() {
		o.Time = d.clock.Now()
	}

	d.mu.Lock()
	targets := make([]driven.OrientationListener, 0, len(d.orientation))
	for l := range d.orientation {
		targets = append(targets, l)
	}
	d.mu.Unlock()

	for _, l := range targets {
		l.OnDeviceOrientationChanged(o)
	}
	return len(targets)
}

// PublishLocation offers a fix to every location listener, subject to
// each listener's interval and distance limits. It returns the number of
// listeners the fix was delivered to.
func (d *Device) PublishLocation(fix domain.LocationFix) int {
	if fix.Time.IsZero() {
		fix.Time = d.clock.Now()
	}
	now := d.clock.Now()
	point := geo.NewPoint(fix.Latitude, fix.Longitude)

	d.mu.Lock()
	var targets []driven.LocationListener
	for l, sub := range d.location {
		if sub.last != nil && sub.last.GreatCircleDistance(point) < sub.minDistanceKm {
			continue
		}
		if !sub.limiter.AllowN(now, 1) {
			continue
		}
		sub.last = point
		targets = append(targets, l)
	}
	d.mu.Unlock()

	for _, l := range targets {
		l.OnLocationChanged(fix)
	}
	return len(targets)
}

// Listeners reports how many listeners of each kind are registered.
func (d *Device) Listeners() (sensors, orientation, location int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sensors), len(d.orientation), len(d.location)
}
