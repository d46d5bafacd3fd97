package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/compassx/internal/adapters/driven/sink"
	"github.com/custodia-labs/compassx/internal/core/domain"
)

const (
	defaultReadTimeout = 2 * time.Second
	maxReadTimeout     = 30 * time.Second
)

// CurrentHeadingInput is the input schema for the current_heading tool.
type CurrentHeadingInput struct {
	Heading   string `json:"heading,omitempty" jsonschema:"channel to read: true (default) or magnetic"`
	TimeoutMs int    `json:"timeout_ms,omitempty" jsonschema:"how long to wait for the first reading in milliseconds (default 2000)"`
}

// CurrentHeadingOutput is the output schema for the current_heading tool.
type CurrentHeadingOutput struct {
	Heading         float64 `json:"heading"`
	Accuracy        float64 `json:"accuracy"`
	ShouldCalibrate bool    `json:"should_calibrate"`
	Channel         string  `json:"channel"`
	Provider        string  `json:"provider"`
}

// DeclinationInput is the input schema for the declination tool.
type DeclinationInput struct {
	Latitude       float64 `json:"latitude" jsonschema:"geodetic latitude in degrees, -90 to 90"`
	Longitude      float64 `json:"longitude" jsonschema:"longitude in degrees, -180 to 180"`
	AltitudeMeters float64 `json:"altitude_meters,omitempty" jsonschema:"height above the ellipsoid in meters"`
	Date           string  `json:"date,omitempty" jsonschema:"RFC 3339 date or YYYY-MM-DD (default now)"`
}

// DeclinationOutput is the output schema for the declination tool.
type DeclinationOutput struct {
	DeclinationDegrees float64 `json:"declination_degrees"`
	Date               string  `json:"date"`
}

// CapabilitiesInput is the (empty) input schema for the capabilities tool.
type CapabilitiesInput struct{}

// CapabilitiesOutput is the output schema for the capabilities tool.
type CapabilitiesOutput struct {
	Capabilities     domain.Capabilities `json:"capabilities"`
	TrueProvider     string              `json:"true_provider"`
	MagneticProvider string              `json:"magnetic_provider"`
	Active           int                 `json:"active_subscriptions"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "current_heading",
		Description: "Read the current compass heading in degrees from north",
	}, s.handleCurrentHeading)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "declination",
		Description: "Magnetic declination at a position from the World Magnetic Model",
	}, s.handleDeclination)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "capabilities",
		Description: "List the heading sources on this device and which one each channel uses",
	}, s.handleCapabilities)
}

// handleCurrentHeading opens a short-lived subscription and returns its
// first reading.
func (s *Server) handleCurrentHeading(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CurrentHeadingInput,
) (*mcp.CallToolResult, CurrentHeadingOutput, error) {
	kind := domain.HeadingTrue
	if input.Heading != "" {
		kind = domain.HeadingKind(input.Heading)
	}

	timeout := s.readTimeout
	if input.TimeoutMs > 0 {
		timeout = min(time.Duration(input.TimeoutMs)*time.Millisecond, maxReadTimeout)
	}

	out := sink.NewChannelSink(1)
	sub, err := s.ports.Compass.Subscribe(kind, out)
	if err != nil {
		return nil, CurrentHeadingOutput{}, err
	}
	defer sub.Cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reading, ok := <-out.Readings():
		if !ok {
			if err := out.Err(); err != nil {
				return nil, CurrentHeadingOutput{}, err
			}
			return nil, CurrentHeadingOutput{}, ErrStreamEnded
		}
		return nil, CurrentHeadingOutput{
			Heading:         reading.Heading,
			Accuracy:        reading.Accuracy,
			ShouldCalibrate: reading.NeedsCalibration,
			Channel:         kind.String(),
			Provider:        sub.Provider().String(),
		}, nil
	case <-timer.C:
		return nil, CurrentHeadingOutput{}, fmt.Errorf("%w (%s)", ErrNoReading, timeout)
	case <-ctx.Done():
		return nil, CurrentHeadingOutput{}, ctx.Err()
	}
}

// handleDeclination evaluates the geomagnetic model.
func (s *Server) handleDeclination(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input DeclinationInput,
) (*mcp.CallToolResult, DeclinationOutput, error) {
	at := time.Now().UTC()
	if input.Date != "" {
		parsed, err := parseDate(input.Date)
		if err != nil {
			return nil, DeclinationOutput{}, err
		}
		at = parsed
	}

	decl, err := s.ports.Compass.Declination(input.Latitude, input.Longitude, input.AltitudeMeters, at)
	if err != nil {
		return nil, DeclinationOutput{}, err
	}

	return nil, DeclinationOutput{
		DeclinationDegrees: decl,
		Date:               at.Format(time.RFC3339),
	}, nil
}

// handleCapabilities probes the device.
func (s *Server) handleCapabilities(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ CapabilitiesInput,
) (*mcp.CallToolResult, CapabilitiesOutput, error) {
	sel := s.ports.Compass.Selection()
	return nil, CapabilitiesOutput{
		Capabilities:     sel.Capabilities,
		TrueProvider:     sel.True.String(),
		MagneticProvider: sel.Magnetic.String(),
		Active:           s.ports.Compass.Active(),
	}, nil
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", domain.ErrInvalidInput, s)
	}
	return t, nil
}
