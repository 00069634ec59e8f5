package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewSchemactlMCPServer creates a new MCP server with every schemactl tool and
// resource registered. The projectPath is the directory holding
// .schemactl.yaml; it is re-read on every call.
func NewSchemactlMCPServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"schemactl",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath)
	registerResources(s, projectPath)

	return s
}
