package domain

// ProviderKind identifies the heading source backing a subscription.
type ProviderKind string

// Available provider kinds, in descending priority for true heading.
const (
	// ProviderFusedService is a vendor fused-orientation service.
	ProviderFusedService ProviderKind = "fused_service"

	// ProviderRotationVector is a rotation-vector sensor plus declination.
	ProviderRotationVector ProviderKind = "rotation_vector"

	// ProviderRawSensor is a platform heading sensor.
	ProviderRawSensor ProviderKind = "raw_sensor"

	// ProviderUnavailable means no usable source exists.
	ProviderUnavailable ProviderKind = "unavailable"
)

// IsValid returns true if the provider kind is recognised.
func (k ProviderKind) IsValid() bool {
	switch k {
	case ProviderFusedService, ProviderRotationVector, ProviderRawSensor, ProviderUnavailable:
		return true
	default:
		return false
	}
}

// IsAvailable returns true for every kind except ProviderUnavailable.
func (k ProviderKind) IsAvailable() bool {
	return k.IsValid() && k != ProviderUnavailable
}

// Priority orders kinds for true-heading selection. Higher wins.
func (k ProviderKind) Priority() int {
	switch k {
	case ProviderFusedService:
		return 3
	case ProviderRotationVector:
		return 2
	case ProviderRawSensor:
		return 1
	default:
		return 0
	}
}

// NoiseGated returns true if readings from this kind need sub-threshold
// filtering. The fused service delivers pre-filtered output.
func (k ProviderKind) NoiseGated() bool {
	return k == ProviderRotationVector || k == ProviderRawSensor
}

// String returns the string representation.
func (k ProviderKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k ProviderKind) Description() string {
	switch k {
	case ProviderFusedService:
		return "Fused orientation service"
	case ProviderRotationVector:
		return "Rotation vector sensor"
	case ProviderRawSensor:
		return "Heading sensor"
	case ProviderUnavailable:
		return "Unavailable"
	default:
		return unknownDescription
	}
}

// HeadingKind selects which subscription channel a consumer listens on.
type HeadingKind string

const (
	// HeadingMagnetic is rotation-vector only, declination forced to zero.
	HeadingMagnetic HeadingKind = "magnetic"

	// HeadingTrue is priority-selected across all provider kinds.
	HeadingTrue HeadingKind = "true"
)

// IsValid returns true if the heading kind is recognised.
func (k HeadingKind) IsValid() bool {
	return k == HeadingMagnetic || k == HeadingTrue
}

// String returns the string representation.
func (k HeadingKind) String() string {
	return string(k)
}

// Capabilities is the result of probing the platform for heading sources.
type Capabilities struct {
	FusedService   bool `json:"fused_service"`
	RotationVector bool `json:"rotation_vector"`
	RawHeading     bool `json:"raw_heading"`
	Location       bool `json:"location"`
}

// Any returns true if at least one heading source is present.
func (c Capabilities) Any() bool {
	return c.FusedService || c.RotationVector || c.RawHeading
}
