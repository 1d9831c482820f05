package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerPrompts adds ready-made prompts that steer a model toward the
// weather tools.
func registerPrompts(s *mcp.Server) {
	s.AddPrompt(&mcp.Prompt{
		Name:        "current_weather",
		Description: "Quickly look up the current weather",
		Arguments: []*mcp.PromptArgument{
			{Name: "location", Description: "City name or coordinates (optional)"},
		},
	}, currentWeatherPrompt)

	s.AddPrompt(&mcp.Prompt{
		Name:        "weather_forecast",
		Description: "Look up a multi-day weather forecast",
		Arguments: []*mcp.PromptArgument{
			{Name: "location", Description: "City name or coordinates (optional)"},
			{Name: "days", Description: "Number of forecast days (default 3)"},
		},
	}, weatherForecastPrompt)

	s.AddPrompt(&mcp.Prompt{
		Name:        "weather_summary",
		Description: "Weather summary with recommendations",
		Arguments: []*mcp.PromptArgument{
			{Name: "location", Description: "City name or coordinates (optional)"},
		},
	}, weatherSummaryPrompt)
}

func currentWeatherPrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := "Get the current weather using the get_current_weather tool"
	if loc := req.Params.Arguments["location"]; loc != "" {
		text = fmt.Sprintf("Get the current weather for %s using the get_current_weather tool", loc)
	}
	return userPrompt(text), nil
}

func weatherForecastPrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	days := req.Params.Arguments["days"]
	if days == "" {
		days = "3"
	}
	text := fmt.Sprintf("Get the %s-day weather forecast using the get_weather_forecast tool", days)
	if loc := req.Params.Arguments["location"]; loc != "" {
		text = fmt.Sprintf("Get the %s-day weather forecast for %s using the get_weather_forecast tool", days, loc)
	}
	return userPrompt(text), nil
}

func weatherSummaryPrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := "Get the current weather using the get_current_weather tool and provide a summary with recommendations"
	if loc := req.Params.Arguments["location"]; loc != "" {
		text = fmt.Sprintf("Get the current weather for %s using the get_current_weather tool and provide a summary with recommendations", loc)
	}
	return userPrompt(text), nil
}

func userPrompt(text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}
}
