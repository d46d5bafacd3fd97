package simulated

import (
	"context"
	"math"
	"time"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/providers/rotation"
)

// MotionConfig describes a device turning at a steady rate.
type MotionConfig struct {
	// StartAzimuth is the magnetic azimuth at the first tick, in degrees.
	StartAzimuth float64

	// TurnRate is the rotation speed in degrees per second, positive clockwise.
	TurnRate float64

	// Wobble is the amplitude of a slow oscillation added to the azimuth,
	// in degrees, to exercise the noise gate.
	Wobble float64

	// Period is the tick interval. Defaults to the game sampling period.
	Period time.Duration

	// HeadingErrorDegrees is reported by the heading sensor and the fused
	// service; the rotation vector reports it in radians.
	HeadingErrorDegrees float64

	// Location, if set, is published once at start.
	Location *domain.LocationFix
}

// wobblePeriod is the period of the azimuth oscillation.
const wobblePeriod = 1700 * time.Millisecond

// Motion drives a Device from a synthetic trajectory.
type Motion struct {
	dev   *Device
	cfg   MotionConfig
	start time.Time
}

// NewMotion creates a generator for dev.
func NewMotion(dev *Device, cfg MotionConfig) *Motion {
	if cfg.Period <= 0 {
		cfg.Period = domain.SamplingGame.Period()
	}
	return &Motion{dev: dev, cfg: cfg}
}

// AzimuthAt returns the magnetic azimuth after elapsed time.
func (m *Motion) AzimuthAt(elapsed time.Duration) float64 {
	s := elapsed.Seconds()
	az := m.cfg.StartAzimuth + m.cfg.TurnRate*s
	if m.cfg.Wobble != 0 {
		az += m.cfg.Wobble * math.Sin(2*math.Pi*s/wobblePeriod.Seconds())
	}
	return domain.NormalizeDegrees(az)
}

// Step publishes one sample on every source at the given instant.
func (m *Motion) Step(now time.Time) {
	if m.start.IsZero() {
		m.start = now
	}
	az := m.AzimuthAt(now.Sub(m.start))
	errDeg := m.cfg.HeadingErrorDegrees

	rv := append(rotation.VectorForAzimuth(az), errDeg*math.Pi/180)
	m.dev.PublishSensor(domain.SensorEvent{Sensor: domain.SensorRotationVector, Values: rv, Timestamp: now})
	m.dev.PublishSensor(domain.SensorEvent{Sensor: domain.SensorHeading, Values: []float64{az, errDeg}, Timestamp: now})
	m.dev.PublishOrientation(domain.DeviceOrientation{
		HeadingDegrees:      az,
		HeadingErrorDegrees: errDeg,
		Time:                now,
	})
}

// Run ticks until ctx is done. It publishes the configured location
// first, then one Step per period.
func (m *Motion) Run(ctx context.Context) error {
	clk := m.dev.Clock()
	if m.cfg.Location != nil {
		m.dev.PublishLocation(*m.cfg.Location)
	}

	ticker := clk.Ticker(m.cfg.Period)
	defer ticker.Stop()

	m.Step(clk.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			m.Step(now)
		}
	}
}
