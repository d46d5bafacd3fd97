package driven

import "time"

// GeomagneticModel evaluates the Earth's magnetic field.
type GeomagneticModel interface {
	// Name identifies the model and its epoch (e.g. "WMM-2020").
	Name() string

	// Declination returns the angle between magnetic and true north in
	// degrees, positive east, for a geodetic position at a given time.
	// The result must be a pure function of its inputs.
	Declination(latitude, longitude, altitudeMeters float64, at time.Time) (float64, error)
}
