package server

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names exposed to the protocol layer.
const (
	toolCurrentWeather  = "get_current_weather"
	toolWeatherForecast = "get_weather_forecast"
	toolSearchLocation  = "search_location"
)

// handleTool funnels every tool call through the dispatcher, which owns
// all argument validation and error rendering.
func (d *Dispatcher) handleTool(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return d.Invoke(ctx, req.Params.Name, req.Params.Arguments), nil
}

// registerTools adds the weather tool catalog to the MCP server.
func registerTools(s *mcp.Server, d *Dispatcher) {
	s.AddTool(&mcp.Tool{
		Name:        toolCurrentWeather,
		Description: "Get current weather conditions for a location",
		InputSchema: locationSchema(nil),
	}, d.handleTool)

	s.AddTool(&mcp.Tool{
		Name:        toolWeatherForecast,
		Description: "Get a multi-day weather forecast for a location",
		InputSchema: locationSchema(map[string]*jsonschema.Schema{
			"days": {
				Type:        "integer",
				Description: "Number of forecast days (default 3, maximum 16)",
				Default:     json.RawMessage("3"),
				Minimum:     ptr(1.0),
				Maximum:     ptr(16.0),
			},
		}),
	}, d.handleTool)

	s.AddTool(&mcp.Tool{
		Name:        toolSearchLocation,
		Description: "Find coordinates for a city by name",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"city_name": {
					Type:        "string",
					Description: "City name to search for",
				},
			},
			Required: []string{"city_name"},
		},
	}, d.handleTool)
}

// locationSchema builds the shared location/lat/lon argument schema,
// merged with any tool-specific extra properties.
func locationSchema(extra map[string]*jsonschema.Schema) *jsonschema.Schema {
	props := map[string]*jsonschema.Schema{
		"location": {
			Type:        "string",
			Description: "City name or coordinates as \"lat,lon\" (optional)",
		},
		"lat": {
			Type:        "number",
			Description: "Latitude (optional, used together with lon)",
		},
		"lon": {
			Type:        "number",
			Description: "Longitude (optional, used together with lat)",
		},
	}
	for name, schema := range extra {
		props[name] = schema
	}
	return &jsonschema.Schema{Type: "object", Properties: props}
}

func ptr[T any](v T) *T { return &v }
