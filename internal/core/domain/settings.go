package domain

import "time"

const unknownDescription = "Unknown"

// CompassSettings holds the tunables of the heading pipeline.
type CompassSettings struct {
	Sensor   SensorSettings
	Noise    NoiseSettings
	Location LocationSettings
	Fused    FusedSettings
	Geomag   GeomagSettings
}

// SensorSettings configures hardware sensor registration.
type SensorSettings struct {
	// SamplingRate is the hint passed when registering listeners.
	SamplingRate SamplingRate
}

// NoiseSettings configures sub-threshold suppression.
type NoiseSettings struct {
	// ThresholdDegrees is the minimum heading change a stream forwards.
	// Sensor providers drop changes below DefaultNoiseThreshold regardless.
	ThresholdDegrees float64
}

// LocationSettings configures the declination refresh stream.
// Defaults favour low cost over tracking precision.
type LocationSettings struct {
	// Enabled binds true-heading rotation providers to location updates.
	Enabled bool

	// MinInterval is the minimum time between delivered fixes.
	MinInterval time.Duration

	// MinDistanceMeters is the minimum displacement between delivered fixes.
	MinDistanceMeters float64
}

// FusedSettings configures the fused orientation request.
type FusedSettings struct {
	// Period is the requested update interval.
	Period time.Duration
}

// GeomagSettings configures the geomagnetic model.
type GeomagSettings struct {
	// CoefficientsFile is a WMM.COF file. Empty uses the embedded model.
	CoefficientsFile string
}

// DefaultNoiseThreshold is the smallest heading change worth reporting.
const DefaultNoiseThreshold = 0.1

// DefaultCompassSettings returns sensible defaults.
func DefaultCompassSettings() CompassSettings {
	return CompassSettings{
		Sensor: SensorSettings{
			SamplingRate: SamplingGame,
		},
		Noise: NoiseSettings{
			ThresholdDegrees: DefaultNoiseThreshold,
		},
		Location: LocationSettings{
			Enabled:           true,
			MinInterval:       15 * time.Minute,
			MinDistanceMeters: 5000,
		},
		Fused: FusedSettings{
			Period: 20 * time.Millisecond,
		},
	}
}

// Validate checks settings for values the pipeline cannot use.
func (s CompassSettings) Validate() error {
	if !s.Sensor.SamplingRate.IsValid() {
		return ErrInvalidInput
	}
	if s.Noise.ThresholdDegrees < 0 || s.Noise.ThresholdDegrees >= 360 {
		return ErrInvalidInput
	}
	if s.Location.MinInterval < 0 || s.Location.MinDistanceMeters < 0 {
		return ErrInvalidInput
	}
	if s.Fused.Period < 0 {
		return ErrInvalidInput
	}
	return nil
}
