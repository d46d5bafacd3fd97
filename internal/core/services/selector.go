package services

import (
	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
)

// ProviderSelector maps probed capabilities to a provider kind.
// It holds no state; every subscription selects afresh.
type ProviderSelector struct{}

// NewProviderSelector creates a selector.
func NewProviderSelector() *ProviderSelector {
	return &ProviderSelector{}
}

// SelectTrueHeading picks the best source for true heading:
// fused service, then rotation vector, then heading sensor.
func (s *ProviderSelector) SelectTrueHeading(caps domain.Capabilities) domain.ProviderKind {
	switch {
	case caps.FusedService:
		return domain.ProviderFusedService
	case caps.RotationVector:
		return domain.ProviderRotationVector
	case caps.RawHeading:
		return domain.ProviderRawSensor
	default:
		return domain.ProviderUnavailable
	}
}

// SelectMagneticHeading picks the source for magnetic heading. Only the
// rotation vector can report it; there is no fallback.
func (s *ProviderSelector) SelectMagneticHeading(caps domain.Capabilities) domain.ProviderKind {
	if caps.RotationVector {
		return domain.ProviderRotationVector
	}
	return domain.ProviderUnavailable
}

// Select dispatches on the heading channel.
func (s *ProviderSelector) Select(heading domain.HeadingKind, caps domain.Capabilities) (domain.ProviderKind, error) {
	switch heading {
	case domain.HeadingTrue:
		return s.SelectTrueHeading(caps), nil
	case domain.HeadingMagnetic:
		return s.SelectMagneticHeading(caps), nil
	default:
		return domain.ProviderUnavailable, domain.ErrUnsupportedKind
	}
}

// unavailableError is the terminal error a channel reports when the
// selector finds nothing.
func unavailableError(heading domain.HeadingKind) *domain.SourceUnavailableError {
	if heading == domain.HeadingMagnetic {
		return domain.ErrNoRotationSensor()
	}
	return domain.ErrSensorNotFound()
}

// Platform bundles the driven ports heading providers are built on.
// Any field may be nil when the platform lacks that subsystem.
type Platform struct {
	Sensors  driven.SensorSubsystem
	Fused    driven.FusedOrientationService
	Location driven.LocationSubsystem
	Model    driven.GeomagneticModel
}

// Capabilities probes the platform for heading sources.
func (p Platform) Capabilities() domain.Capabilities {
	var caps domain.Capabilities
	if p.Fused != nil {
		caps.FusedService = p.Fused.IsAvailable()
	}
	if p.Sensors != nil {
		caps.RotationVector = p.Sensors.HasSensor(domain.SensorRotationVector)
		caps.RawHeading = p.Sensors.HasSensor(domain.SensorHeading)
	}
	caps.Location = p.Location != nil
	return caps
}
