package simulated

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/compassx/internal/core/domain"
	"github.com/custodia-labs/compassx/internal/logger"
)

// RecordType identifies what a trace line carries.
type RecordType string

// Trace record types.
const (
	// RecordDevice declares the hardware: Sensors and Fused.
	RecordDevice RecordType = "device"

	// RecordSensor is a sensor sample: Sensor and Values.
	RecordSensor RecordType = "sensor"

	// RecordAccuracy is an accuracy change: Sensor and Accuracy.
	RecordAccuracy RecordType = "accuracy"

	// RecordOrientation is a fused update: Heading, HeadingError and
	// optionally ConservativeError.
	RecordOrientation RecordType = "orientation"

	// RecordLocation is a position fix: Latitude, Longitude, Altitude.
	RecordLocation RecordType = "location"
)

// Record is one line of a JSON-lines sensor trace.
type Record struct {
	// T is the offset from the start of the trace in milliseconds.
	T    int64      `json:"t"`
	Type RecordType `json:"type"`

	Sensors []domain.SensorType `json:"sensors,omitempty"`
	Fused   bool                `json:"fused,omitempty"`

	Sensor   domain.SensorType `json:"sensor,omitempty"`
	Values   []float64         `json:"values,omitempty"`
	Accuracy string            `json:"accuracy,omitempty"`

	Heading           float64  `json:"heading,omitempty"`
	HeadingError      float64  `json:"headingError,omitempty"`
	ConservativeError *float64 `json:"conservativeError,omitempty"`

	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Altitude  float64 `json:"altitude,omitempty"`
}

// Replayer feeds trace records into a Device.
type Replayer struct {
	dev   *Device
	paced bool
	log   *logger.Logger

	base    time.Time
	lastT   int64
	started bool
}

// NewReplayer creates a replayer. When paced, records are delivered at
// their recorded offsets on the device clock; otherwise as fast as read.
func NewReplayer(dev *Device, paced bool) *Replayer {
	return &Replayer{
		dev:   dev,
		paced: paced,
		log:   logger.Named("trace"),
	}
}

// Apply delivers one record to the device.
func (r *Replayer) Apply(rec Record) error {
	at := r.timeOf(rec.T)

	switch rec.Type {
	case RecordDevice:
		r.dev.SetSensors(rec.Sensors)
		r.dev.SetFusedAvailable(rec.Fused)

	case RecordSensor:
		if !rec.Sensor.IsValid() {
			return fmt.Errorf("%w: sensor %q", domain.ErrInvalidInput, rec.Sensor)
		}
		r.dev.PublishSensor(domain.SensorEvent{Sensor: rec.Sensor, Values: rec.Values, Timestamp: at})

	case RecordAccuracy:
		acc, ok := domain.ParseSensorAccuracy(rec.Accuracy)
		if !ok || !rec.Sensor.IsValid() {
			return fmt.Errorf("%w: accuracy %q for %q", domain.ErrInvalidInput, rec.Accuracy, rec.Sensor)
		}
		r.dev.PublishAccuracy(rec.Sensor, acc)

	case RecordOrientation:
		o := domain.DeviceOrientation{
			HeadingDegrees:      rec.Heading,
			HeadingErrorDegrees: rec.HeadingError,
			Time:                at,
		}
		if rec.ConservativeError != nil {
			o.ConservativeHeadingErrorDegrees = *rec.ConservativeError
			o.HasConservativeHeadingError = true
		}
		r.dev.PublishOrientation(o)

	case RecordLocation:
		r.dev.PublishLocation(domain.LocationFix{
			Latitude:  rec.Latitude,
			Longitude: rec.Longitude,
			Altitude:  rec.Altitude,
			Time:      at,
		})

	default:
		return fmt.Errorf("%w: record type %q", domain.ErrInvalidInput, rec.Type)
	}
	return nil
}

// Replay reads records from in until EOF or ctx is done. Blank lines and
// lines starting with '#' are skipped. It returns the number of records
// applied.
func (r *Replayer) Replay(ctx context.Context, in io.Reader) (int, error) {
	scanner := bufio.NewScanner(in)
	applied := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		ok, err := r.handleLine(ctx, scanner.Text())
		if err != nil {
			return applied, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if ok {
			applied++
		}
	}
	if err := scanner.Err(); err != nil {
		return applied, fmt.Errorf("read trace: %w", err)
	}
	return applied, nil
}

// ApplyHeader applies the leading device records of a trace and stops at
// the first other record, so hardware can be declared before anything
// subscribes. It returns the number of records applied.
func (r *Replayer) ApplyHeader(in io.Reader) (int, error) {
	scanner := bufio.NewScanner(in)
	applied := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return applied, fmt.Errorf("decode record: %w", err)
		}
		if rec.Type != RecordDevice {
			break
		}
		r.dev.SetSensors(rec.Sensors)
		r.dev.SetFusedAvailable(rec.Fused)
		applied++
	}
	return applied, scanner.Err()
}

// Follow replays path and then keeps applying lines appended to it until
// ctx is done, like tail -f. Malformed appended lines are logged and
// skipped.
func (r *Replayer) Follow(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	reader := bufio.NewReader(f)
	var pending strings.Builder
	drain := func() error {
		for {
			chunk, err := reader.ReadString('\n')
			pending.WriteString(chunk)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			line := pending.String()
			pending.Reset()
			if _, err := r.handleLine(ctx, line); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.log.Warn("skipping record: %v", err)
			}
		}
	}

	if err := drain(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				return fmt.Errorf("trace %s was removed", path)
			}
			if event.Has(fsnotify.Write) {
				if err := drain(); err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return nil
					}
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watcher: %v", err)
		}
	}
}

// handleLine decodes and applies one line, waiting for its offset when
// paced. It returns false for skipped lines.
func (r *Replayer) handleLine(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}

	var rec Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return false, fmt.Errorf("decode record: %w", err)
	}

	if err := r.wait(ctx, rec.T); err != nil {
		return false, err
	}
	if err := r.Apply(rec); err != nil {
		return false, err
	}
	return true, nil
}

// wait blocks until the record offset is due on the device clock.
func (r *Replayer) wait(ctx context.Context, t int64) error {
	if !r.paced || !r.started || t <= r.lastT {
		return ctx.Err()
	}
	d := time.Duration(t-r.lastT) * time.Millisecond
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.dev.Clock().After(d):
		return nil
	}
}

// timeOf maps a trace offset to a device time. The first record anchors
// the trace at the current device time.
func (r *Replayer) timeOf(t int64) time.Time {
	if !r.started {
		r.base = r.dev.Clock().Now().Add(-time.Duration(t) * time.Millisecond)
		r.started = true
	}
	if t > r.lastT {
		r.lastT = t
	}
	return r.base.Add(time.Duration(t) * time.Millisecond)
}
