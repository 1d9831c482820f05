// Package server assembles the MCP server: the tool dispatcher, the
// coordinate resolver, and the tool and prompt catalogs.
package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "weather-mcp-server"
	serverVersion = "1.1.0"
)

// New builds the MCP server backed by the given dispatcher.
func New(d *Dispatcher) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(s, d)
	registerPrompts(s)
	return s
}
