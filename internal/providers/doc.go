// Package providers provides implementations of the HeadingProvider
// interface for each heading source a device can expose. Each provider
// knows how to register with one subsystem and normalise what it delivers
// into a domain.HeadingReading.
//
// Subpackages:
//   - fused: vendor fused orientation service
//   - rotation: rotation vector sensor plus declination correction
//   - rawsensor: platform heading sensor
//
// This package holds the pieces they share: the handler slot, the reading
// cell and the noise gate.
package providers
