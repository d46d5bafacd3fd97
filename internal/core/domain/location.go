package domain

import "time"

// LocationFix is a geographic position delivered by the location subsystem.
type LocationFix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  float64   `json:"altitude"`
	Time      time.Time `json:"time"`
}

// TimestampMillis returns the fix time as Unix milliseconds.
func (f LocationFix) TimestampMillis() int64 {
	return f.Time.UnixMilli()
}

// DeclinationState is the magnetic declination currently applied by a
// rotation-vector provider.
type DeclinationState struct {
	// OffsetDegrees is positive east of true north.
	OffsetDegrees float64

	// LastUpdatedAt is when the offset was computed. Zero means never.
	LastUpdatedAt time.Time
}

// IsSet returns true once a location fix has produced an offset.
func (s DeclinationState) IsSet() bool {
	return !s.LastUpdatedAt.IsZero()
}
