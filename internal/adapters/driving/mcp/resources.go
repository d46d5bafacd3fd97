package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for compassx resources.
	uriScheme = "compassx://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "settings",
		Name:        "settings",
		Description: "Active compass settings",
		MIMEType:    "application/json",
	}, s.handleSettingsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "capabilities",
		Name:        "capabilities",
		Description: "Heading sources present on the device",
		MIMEType:    "application/json",
	}, s.handleCapabilitiesResource)
}

// settingsInfo is the wire form of the settings resource.
type settingsInfo struct {
	SamplingRate           string  `json:"sampling_rate"`
	NoiseThresholdDegrees  float64 `json:"noise_threshold_degrees"`
	LocationEnabled        bool    `json:"location_enabled"`
	LocationMinInterval    string  `json:"location_min_interval"`
	LocationMinDistanceM   float64 `json:"location_min_distance_meters"`
	FusedPeriod            string  `json:"fused_period"`
	GeomagCoefficientsFile string  `json:"geomag_coefficients_file,omitempty"`
}

// handleSettingsResource returns the active settings, or defaults when no
// settings service is wired.
func (s *Server) handleSettingsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Settings == nil {
		return jsonResource(req.Params.URI, map[string]any{})
	}

	settings, err := s.ports.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}

	return jsonResource(req.Params.URI, settingsInfo{
		SamplingRate:           settings.Sensor.SamplingRate.String(),
		NoiseThresholdDegrees:  settings.Noise.ThresholdDegrees,
		LocationEnabled:        settings.Location.Enabled,
		LocationMinInterval:    settings.Location.MinInterval.String(),
		LocationMinDistanceM:   settings.Location.MinDistanceMeters,
		FusedPeriod:            settings.Fused.Period.String(),
		GeomagCoefficientsFile: settings.Geomag.CoefficientsFile,
	})
}

// handleCapabilitiesResource returns the capability probe.
func (s *Server) handleCapabilitiesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Compass.Capabilities())
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
