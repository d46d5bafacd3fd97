package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/custodia-labs/compassx/internal/adapters/driven/sink"
	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/core/ports/driven"
)

var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// cardinal names the nearest of the 16 compass points.
func cardinal(heading float64) string {
	idx := int(math.Floor(domain.NormalizeDegrees(heading)/22.5+0.5)) % len(compassPoints)
	return compassPoints[idx]
}

func formatReading(r domain.HeadingReading) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%6.1f° %-3s", r.Heading, cardinal(r.Heading))
	if r.HasAccuracy() {
		fmt.Fprintf(&b, "  ±%.1f°", r.Accuracy)
	} else {
		b.WriteString("  ±?")
	}
	if r.NeedsCalibration {
		b.WriteString("  calibrate: move the device in a figure 8")
	}
	return b.String()
}

// terminalWidth returns the width of w if it is a terminal.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80, true
	}
	return width, true
}

// liveSink redraws a single status line on a terminal.
type liveSink struct {
	mu    sync.Mutex
	out   io.Writer
	width int
	drawn bool
}

func newLiveSink(out io.Writer, width int) *liveSink {
	return &liveSink{out: out, width: width}
}

func (s *liveSink) Emit(r domain.HeadingReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := formatReading(r)
	if pad := s.width - 1 - len([]rune(line)); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	fmt.Fprint(s.out, "\r"+line)
	s.drawn = true
}

func (s *liveSink) EmitError(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakLine()
	fmt.Fprintf(s.out, "error %s: %s\n", code, message)
}

func (s *liveSink) EndOfStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakLine()
}

// breakLine ends the status line (caller must hold lock).
func (s *liveSink) breakLine() {
	if s.drawn {
		fmt.Fprintln(s.out)
		s.drawn = false
	}
}

// statusSink forwards to another sink and remembers the terminal error.
type statusSink struct {
	driven.EventSink

	mu       sync.Mutex
	readings int
	err      *sink.StreamError
}

func (s *statusSink) Emit(r domain.HeadingReading) {
	s.mu.Lock()
	s.readings++
	s.mu.Unlock()
	s.EventSink.Emit(r)
}

func (s *statusSink) EmitError(code, message string) {
	s.mu.Lock()
	if s.err == nil {
		s.err = &sink.StreamError{Code: code, Message: message}
	}
	s.mu.Unlock()
	s.EventSink.EmitError(code, message)
}

// Err returns the terminal error, or nil.
func (s *statusSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return nil
	}
	return s.err
}

// Readings returns how many readings were forwarded.
func (s *statusSink) Readings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readings
}
