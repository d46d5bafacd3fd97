// Package domain defines the core entities for compassx.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - HeadingReading: A normalised heading with accuracy and calibration flag
//   - ProviderKind: Which heading source backs a subscription
//   - SensorEvent / DeviceOrientation / LocationFix: Raw inputs from the platform
//   - DeclinationState: The declination offset owned by a rotation-vector provider
//   - CompassSettings: Tunables read from configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
