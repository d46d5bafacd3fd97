package providers

import "math"

// NoiseGate drops headings that differ from the last accepted one by less
// than a threshold. The first heading is always accepted.
// Not safe for concurrent use; a gate belongs to one callback source.
type NoiseGate struct {
	threshold float64
	last      float64
	primed    bool
}

// NewNoiseGate creates a gate. A negative threshold is treated as zero.
func NewNoiseGate(threshold float64) *NoiseGate {
	if threshold < 0 {
		threshold = 0
	}
	return &NoiseGate{threshold: threshold}
}

// Accept returns true and remembers heading if it clears the threshold.
func (g *NoiseGate) Accept(heading float64) bool {
	if g.primed && math.Abs(heading-g.last) < g.threshold {
		return false
	}
	g.last = heading
	g.primed = true
	return true
}

// Threshold returns the configured threshold in degrees.
func (g *NoiseGate) Threshold() float64 {
	return g.threshold
}

// Reset forgets the last accepted heading.
func (g *NoiseGate) Reset() {
	g.primed = false
	g.last = 0
}
