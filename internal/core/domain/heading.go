package domain

import "math"

// Sentinel values used before a provider has produced anything.
const (
	// NoHeading is the heading reported before the first accepted reading.
	NoHeading = -1000.0

	// UnknownAccuracy marks an accuracy the source could not estimate.
	UnknownAccuracy = -1.0
)

// HeadingReading is a single normalised compass reading.
// Readings are values: a newer reading supersedes an older one, it never
// mutates it.
type HeadingReading struct {
	// Heading is in degrees, within [0, 360).
	Heading float64 `json:"heading"`

	// Accuracy is the estimated error in degrees, or UnknownAccuracy.
	Accuracy float64 `json:"accuracy"`

	// NeedsCalibration is set when the source reports degraded confidence.
	NeedsCalibration bool `json:"shouldCalibrate"`
}

// NoReading returns the reading exposed by a provider that has not yet
// accepted any sample.
func NoReading() HeadingReading {
	return HeadingReading{
		Heading:  NoHeading,
		Accuracy: UnknownAccuracy,
	}
}

// IsZeroReading reports whether r is the pre-start sentinel.
func (r HeadingReading) IsZeroReading() bool {
	return r.Heading == NoHeading
}

// HasAccuracy returns true if the source supplied an accuracy estimate.
func (r HeadingReading) HasAccuracy() bool {
	return r.Accuracy != UnknownAccuracy
}

// Payload returns the wire record delivered to event sinks.
func (r HeadingReading) Payload() map[string]any {
	return map[string]any{
		"heading":         r.Heading,
		"accuracy":        r.Accuracy,
		"shouldCalibrate": r.NeedsCalibration,
	}
}

// NormalizeDegrees wraps an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	// math.Mod can round -tiny up to exactly 360.
	if d >= 360 {
		d = 0
	}
	return d
}

// ApplyDeclination turns a magnetic azimuth into a heading using
// (azimuth + declination + 360) mod 360, wrapped into [0, 360).
func ApplyDeclination(azimuthDeg, declinationDeg float64) float64 {
	return NormalizeDegrees(math.Mod(azimuthDeg+declinationDeg+360, 360))
}
