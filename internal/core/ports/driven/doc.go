// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SensorSubsystem: Hardware sensors (rotation vector, heading)
//   - EventSink: Receives readings and terminal errors for one subscription
//   - GeomagneticModel: Converts a position and time into declination
//   - HeadingProvider: A started source of normalised readings
//   - ProviderFactory: Builds a HeadingProvider for a selected kind
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - FusedOrientationService: Vendor fused orientation. Without it, true
//     heading falls back to the rotation vector or heading sensor.
//   - LocationSubsystem: Position fixes. Without it, declination stays at
//     zero and "true" heading is magnetic heading.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or provider package
package driven
