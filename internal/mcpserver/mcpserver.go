// Package mcpserver exposes CodeSleuth analyses as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wisegam/codesleuth/pkg/config"
)

// Server wraps the MCP server and its registered tools.
type Server struct {
	server *mcp.Server
	config *config.Config
}

// NewServer creates an MCP server. cfg supplies the defaults each tool
// call starts from; nil means built-in defaults.
func NewServer(version string, cfg *config.Config) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "codesleuth",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, config: cfg}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run serves over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_project",
		Description: describeAnalyzeProject(),
	}, s.handleAnalyzeProject)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dependency_graph",
		Description: describeDependencyGraph(),
	}, s.handleDependencyGraph)
}
