package sink

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
	"github.com/custodia-labs/compassx/internal/logger"
)

// Ensure WriterSink implements the interface.
var _ driven.EventSink = (*WriterSink)(nil)

// Event is one line written by a WriterSink.
type Event struct {
	Type string `json:"type"`

	// Set for reading events.
	Heading         *float64 `json:"heading,omitempty"`
	Accuracy        *float64 `json:"accuracy,omitempty"`
	ShouldCalibrate *bool    `json:"shouldCalibrate,omitempty"`

	// Set for error events.
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Event types.
const (
	EventReading = "reading"
	EventError   = "error"
	EventEnd     = "end"
)

// WriterSink encodes each emission as one JSON object per line.
// Nothing is written after EndOfStream.
type WriterSink struct {
	mu    sync.Mutex
	enc   *json.Encoder
	ended bool
	err   error
	log   *logger.Logger
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{
		enc: json.NewEncoder(w),
		log: logger.Named("sink"),
	}
}

// Emit writes a reading event.
func (s *WriterSink) Emit(reading domain.HeadingReading) {
	s.write(ReadingEvent(reading))
}

// EmitError writes an error event.
func (s *WriterSink) EmitError(code, message string) {
	s.write(Event{Type: EventError, Code: code, Message: message})
}

// EndOfStream writes an end event. Later calls are ignored.
func (s *WriterSink) EndOfStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.encode(Event{Type: EventEnd})
	s.ended = true
}

// Err returns the first write error, if any.
func (s *WriterSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *WriterSink) write(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.encode(e)
}

// encode writes e (caller must hold lock). Write errors are kept and
// reported once.
func (s *WriterSink) encode(e Event) {
	if s.err != nil {
		return
	}
	if err := s.enc.Encode(e); err != nil {
		s.err = err
		s.log.Warn("write failed: %v", err)
	}
}

// ReadingEvent converts a reading into its wire event.
func ReadingEvent(r domain.HeadingReading) Event {
	heading, accuracy, calibrate := r.Heading, r.Accuracy, r.NeedsCalibration
	return Event{
		Type:            EventReading,
		Heading:         &heading,
		Accuracy:        &accuracy,
		ShouldCalibrate: &calibrate,
	}
}
