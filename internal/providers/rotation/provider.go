// Package rotation provides the rotation-vector heading provider.
// It derives azimuth from the device attitude and, when a location
// subsystem is available, shifts it by the local magnetic declination to
// yield true heading.
package rotation

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
	"github.com/custodia-labs/compassx/internal/logger"
	"github.com/custodia-labs/compassx/internal/providers"
)

// Ensure Provider implements the interfaces.
var (
	_ driven.HeadingProvider  = (*Provider)(nil)
	_ driven.SensorListener   = (*Provider)(nil)
	_ driven.LocationListener = (*Provider)(nil)
)

// Config holds the collaborators of a rotation-vector provider.
type Config struct {
	// Sensors is required.
	Sensors driven.SensorSubsystem

	// Location is optional. Without it declination stays at zero and the
	// provider yields magnetic heading.
	Location driven.LocationSubsystem

	// Model is optional. Without it location fixes are ignored.
	Model driven.GeomagneticModel

	SamplingRate      domain.SamplingRate
	MinInterval       time.Duration
	MinDistanceMeters float64
}

// ConfigFromSettings fills the tunables of a Config from settings.
func ConfigFromSettings(settings domain.CompassSettings) Config {
	return Config{
		SamplingRate:      settings.Sensor.SamplingRate,
		MinInterval:       settings.Location.MinInterval,
		MinDistanceMeters: settings.Location.MinDistanceMeters,
	}
}

// Provider computes heading from a rotation vector sensor.
type Provider struct {
	*providers.Base

	sensors   driven.SensorSubsystem
	location  driven.LocationSubsystem
	corrector *DeclinationCorrector
	gate      *providers.NoiseGate
	cfg       Config
	log       *logger.Logger

	locationBound bool
}

// New creates a rotation-vector provider. It does not touch the
// subsystem until Start.
func New(cfg Config) *Provider {
	if !cfg.SamplingRate.IsValid() {
		cfg.SamplingRate = domain.SamplingGame
	}
	return &Provider{
		Base:      providers.NewBase(domain.ProviderRotationVector),
		sensors:   cfg.Sensors,
		location:  cfg.Location,
		corrector: NewDeclinationCorrector(cfg.Model),
		gate:      providers.NewNoiseGate(domain.DefaultNoiseThreshold),
		cfg:       cfg,
		log:       logger.Named("rotation"),
	}
}

// Start registers for rotation vector events and, if configured, for
// location updates.
func (p *Provider) Start() error {
	if err := p.BeginStart(); err != nil {
		return err
	}

	if p.sensors == nil || !p.sensors.HasSensor(domain.SensorRotationVector) {
		p.AbortStart()
		return domain.ErrNoRotationSensor()
	}

	if err := p.sensors.RegisterListener(p, domain.SensorRotationVector, p.cfg.SamplingRate); err != nil {
		p.AbortStart()
		if errors.Is(err, domain.ErrSensorNotPresent) {
			su := domain.ErrNoRotationSensor()
			su.Err = err
			return su
		}
		return fmt.Errorf("register rotation vector listener: %w", err)
	}

	if p.location != nil && p.corrector.model != nil {
		if err := p.location.RequestUpdates(p.cfg.MinInterval, p.cfg.MinDistanceMeters, p); err != nil {
			// Declination stays at zero; heading is still usable.
			p.log.Warn("location updates unavailable: %v", err)
		} else {
			p.locationBound = true
		}
	}

	p.log.Debug("started (rate=%s, location=%t)", p.cfg.SamplingRate, p.locationBound)
	return nil
}

// Stop unregisters the sensor listener and the location subscription.
func (p *Provider) Stop() {
	if !p.BeginStop() {
		return
	}
	p.sensors.UnregisterListener(p)
	if p.locationBound {
		p.location.RemoveUpdates(p)
	}
	p.log.Debug("stopped")
}

// Declination returns the declination state currently applied.
func (p *Provider) Declination() domain.DeclinationState {
	return p.corrector.State()
}

// OnSensorChanged handles a rotation vector sample.
func (p *Provider) OnSensorChanged(event domain.SensorEvent) {
	if p.Stopped() || event.Sensor != domain.SensorRotationVector {
		return
	}
	if !event.Finite(3) {
		return
	}

	azimuth := AzimuthDegrees(event.Values)
	heading := domain.ApplyDeclination(azimuth, p.corrector.Offset())

	accuracy := domain.UnknownAccuracy
	if radians := event.Value(domain.RotationVectorAccuracyIndex, domain.UnknownAccuracy); radians != domain.UnknownAccuracy && !math.IsNaN(radians) && !math.IsInf(radians, 0) {
		accuracy = radians * 180 / math.Pi
	}

	if !p.gate.Accept(heading) {
		return
	}

	p.Publish(domain.HeadingReading{
		Heading:          heading,
		Accuracy:         accuracy,
		NeedsCalibration: p.NeedsCalibration(),
	})
}

// OnAccuracyChanged tracks the sensor's confidence level.
func (p *Provider) OnAccuracyChanged(sensor domain.SensorType, accuracy domain.SensorAccuracy) {
	if sensor != domain.SensorRotationVector {
		return
	}
	p.SetNeedsCalibration(accuracy.NeedsCalibration())
}

// OnLocationChanged refreshes the declination offset.
func (p *Provider) OnLocationChanged(fix domain.LocationFix) {
	if p.Stopped() {
		return
	}
	p.corrector.Update(fix.Latitude, fix.Longitude, fix.Altitude, fix.TimestampMillis())
}
