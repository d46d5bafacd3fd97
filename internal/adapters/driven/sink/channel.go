package sink

import (
	"sync"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
)

// Ensure ChannelSink implements the interface.
var _ driven.EventSink = (*ChannelSink)(nil)

// StreamError is a terminal error reported through a sink.
type StreamError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return e.Code + ": " + e.Message
}

// ChannelSink delivers readings on a buffered channel. When the buffer is
// full the oldest reading is dropped so a slow consumer always sees the
// freshest heading. Readings is closed on EndOfStream.
type ChannelSink struct {
	readings chan domain.HeadingReading

	mu      sync.Mutex
	closed  bool
	err     *StreamError
	dropped int
}

// NewChannelSink creates a sink with the given buffer size (minimum 1).
func NewChannelSink(buffer int) *ChannelSink {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelSink{readings: make(chan domain.HeadingReading, buffer)}
}

// Readings returns the delivery channel.
func (s *ChannelSink) Readings() <-chan domain.HeadingReading {
	return s.readings
}

// Emit queues a reading, evicting the oldest one if the buffer is full.
func (s *ChannelSink) Emit(reading domain.HeadingReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.readings <- reading:
			return
		default:
		}
		select {
		case <-s.readings:
			s.dropped++
		default:
		}
	}
}

// EmitError records the terminal error.
func (s *ChannelSink) EmitError(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.err != nil {
		return
	}
	s.err = &StreamError{Code: code, Message: message}
}

// EndOfStream closes Readings. Idempotent.
func (s *ChannelSink) EndOfStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.readings)
}

// Err returns the terminal error, or nil.
func (s *ChannelSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return nil
	}
	return s.err
}

// Dropped returns how many readings were evicted unread.
func (s *ChannelSink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Ended reports whether EndOfStream was called.
func (s *ChannelSink) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
