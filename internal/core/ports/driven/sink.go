package driven

import "github.com/custodia-labs/compassx/internal/core/domain"

// EventSink is the transport a subscription reports to.
// The heading stream controller is its only writer.
type EventSink interface {
	// Emit delivers one accepted reading.
	Emit(reading domain.HeadingReading)

	// EmitError delivers a terminal error with a stable code.
	EmitError(code, message string)

	// EndOfStream signals that nothing else will be delivered.
	EndOfStream()
}
