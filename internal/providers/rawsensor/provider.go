// Package rawsensor provides the heading provider backed by a platform
// heading sensor, which reports heading and accuracy directly.
package rawsensor

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
	"github.com/custodia-labs/compassx/internal/logger"
	"github.com/custodia-labs/compassx/internal/providers"
)

// Ensure Provider implements the interfaces.
var (
	_ driven.HeadingProvider = (*Provider)(nil)
	_ driven.SensorListener  = (*Provider)(nil)
)

// Provider forwards heading sensor samples.
type Provider struct {
	*providers.Base

	sensors driven.SensorSubsystem
	rate    domain.SamplingRate
	gate    *providers.NoiseGate
	log     *logger.Logger
}

// New creates a heading sensor provider.
func New(sensors driven.SensorSubsystem, rate domain.SamplingRate) *Provider {
	if !rate.IsValid() {
		rate = domain.SamplingGame
	}
	return &Provider{
		Base:    providers.NewBase(domain.ProviderRawSensor),
		sensors: sensors,
		rate:    rate,
		gate:    providers.NewNoiseGate(domain.DefaultNoiseThreshold),
		log:     logger.Named("rawsensor"),
	}
}

// Start registers for heading sensor events.
func (p *Provider) Start() error {
	if err := p.BeginStart(); err != nil {
		return err
	}

	if p.sensors == nil || !p.sensors.HasSensor(domain.SensorHeading) {
		p.AbortStart()
		return domain.ErrNoHeadingSensor()
	}

	if err := p.sensors.RegisterListener(p, domain.SensorHeading, p.rate); err != nil {
		p.AbortStart()
		if errors.Is(err, domain.ErrSensorNotPresent) {
			su := domain.ErrNoHeadingSensor()
			su.Err = err
			return su
		}
		return fmt.Errorf("register heading listener: %w", err)
	}

	p.log.Debug("started (rate=%s)", p.rate)
	return nil
}

// Stop unregisters the listener.
func (p *Provider) Stop() {
	if !p.BeginStop() {
		return
	}
	p.sensors.UnregisterListener(p)
	p.log.Debug("stopped")
}

// OnSensorChanged handles a heading sample.
func (p *Provider) OnSensorChanged(event domain.SensorEvent) {
	if p.Stopped() || event.Sensor != domain.SensorHeading {
		return
	}
	if !event.Finite(domain.HeadingAccuracyIndex + 1) {
		return
	}

	heading := domain.NormalizeDegrees(event.Values[domain.HeadingValueIndex])
	if !p.gate.Accept(heading) {
		return
	}

	p.Publish(domain.HeadingReading{
		Heading:          heading,
		Accuracy:         event.Values[domain.HeadingAccuracyIndex],
		NeedsCalibration: p.NeedsCalibration(),
	})
}

// OnAccuracyChanged tracks the sensor's confidence level.
func (p *Provider) OnAccuracyChanged(sensor domain.SensorType, accuracy domain.SensorAccuracy) {
	if sensor != domain.SensorHeading {
		return
	}
	p.SetNeedsCalibration(accuracy.NeedsCalibration())
}
