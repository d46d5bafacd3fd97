package domain

import (
	"math"
	"time"
)

// SensorType identifies a hardware sensor exposed by the sensor subsystem.
type SensorType string

const (
	// SensorRotationVector reports device attitude as a rotation vector.
	SensorRotationVector SensorType = "rotation_vector"

	// SensorHeading reports a heading and its accuracy directly.
	SensorHeading SensorType = "heading"
)

// IsValid returns true if the sensor type is recognised.
func (t SensorType) IsValid() bool {
	return t == SensorRotationVector || t == SensorHeading
}

// String returns the string representation.
func (t SensorType) String() string {
	return string(t)
}

// SensorAccuracy is the confidence level a sensor reports about itself.
type SensorAccuracy int

// Confidence levels, lowest first.
const (
	SensorAccuracyUnreliable SensorAccuracy = iota
	SensorAccuracyLow
	SensorAccuracyMedium
	SensorAccuracyHigh
)

// NeedsCalibration returns true for anything below the highest level.
func (a SensorAccuracy) NeedsCalibration() bool {
	return a != SensorAccuracyHigh
}

// String returns the string representation.
func (a SensorAccuracy) String() string {
	switch a {
	case SensorAccuracyUnreliable:
		return "unreliable"
	case SensorAccuracyLow:
		return "low"
	case SensorAccuracyMedium:
		return "medium"
	case SensorAccuracyHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseSensorAccuracy converts a name produced by String back to a level.
func ParseSensorAccuracy(s string) (SensorAccuracy, bool) {
	for a := SensorAccuracyUnreliable; a <= SensorAccuracyHigh; a++ {
		if a.String() == s {
			return a, true
		}
	}
	return SensorAccuracyUnreliable, false
}

// SamplingRate is a hint passed to the sensor subsystem.
type SamplingRate string

const (
	SamplingFastest SamplingRate = "fastest"
	SamplingGame    SamplingRate = "game"
	SamplingUI      SamplingRate = "ui"
	SamplingNormal  SamplingRate = "normal"
)

// AllSamplingRates returns the sampling hints, fastest first.
func AllSamplingRates() []SamplingRate {
	return []SamplingRate{SamplingFastest, SamplingGame, SamplingUI, SamplingNormal}
}

// IsValid returns true if the sampling rate is recognised.
func (r SamplingRate) IsValid() bool {
	switch r {
	case SamplingFastest, SamplingGame, SamplingUI, SamplingNormal:
		return true
	default:
		return false
	}
}

// Period returns the nominal delivery interval for the hint.
func (r SamplingRate) Period() time.Duration {
	switch r {
	case SamplingFastest:
		return 5 * time.Millisecond
	case SamplingGame:
		return 20 * time.Millisecond
	case SamplingUI:
		return 60 * time.Millisecond
	default:
		return 200 * time.Millisecond
	}
}

// String returns the string representation.
func (r SamplingRate) String() string {
	return string(r)
}

// Rotation-vector value layout.
const (
	// RotationVectorAccuracyIndex holds the heading accuracy in radians, or -1.
	RotationVectorAccuracyIndex = 4

	// HeadingValueIndex and HeadingAccuracyIndex address heading sensor values.
	HeadingValueIndex    = 0
	HeadingAccuracyIndex = 1
)

// SensorEvent is one sample pushed by the sensor subsystem.
//
// For SensorRotationVector, Values[0..2] are x, y, z (axis * sin(theta/2)),
// Values[3] is the optional scalar part and Values[4] the estimated heading
// accuracy in radians (-1 if unavailable).
// For SensorHeading, Values[0] is the heading in degrees and Values[1] its
// accuracy in degrees.
type SensorEvent struct {
	Sensor    SensorType
	Values    []float64
	Timestamp time.Time
}

// Value returns Values[i], or fallback if the event is too short.
func (e SensorEvent) Value(i int, fallback float64) float64 {
	if i < 0 || i >= len(e.Values) {
		return fallback
	}
	return e.Values[i]
}

// Finite returns true if the first n values exist and are finite numbers.
func (e SensorEvent) Finite(n int) bool {
	if len(e.Values) < n {
		return false
	}
	for _, v := range e.Values[:n] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// DeviceOrientation is an update from a fused orientation service.
type DeviceOrientation struct {
	HeadingDegrees      float64
	HeadingErrorDegrees float64

	// ConservativeHeadingErrorDegrees is only meaningful when
	// HasConservativeHeadingError is set.
	ConservativeHeadingErrorDegrees float64
	HasConservativeHeadingError     bool

	Time time.Time
}

// HeadingError returns the conservative estimate when present, else the
// plain estimate.
func (o DeviceOrientation) HeadingError() float64 {
	if o.HasConservativeHeadingError {
		return o.ConservativeHeadingErrorDegrees
	}
	return o.HeadingErrorDegrees
}

// NoSignalErrorDegrees is the heading error at or above which the fused
// service is treated as having no usable signal.
const NoSignalErrorDegrees = 180.0

// OrientationRequest configures fused orientation delivery.
type OrientationRequest struct {
	// Period is the requested interval between updates.
	Period time.Duration
}
