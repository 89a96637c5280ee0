package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/scopedoc/internal/features"
	"github.com/ziadkadry99/scopedoc/internal/scope"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the feature catalog, pricing and
// progress calculations to assistants.
type Server struct {
	catalog *features.Catalog
	synth   *scope.Synthesizer
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server over catalog.
func NewServer(catalog *features.Catalog) *Server {
	s := &Server{
		catalog: catalog,
		synth:   scope.NewSynthesizer(catalog),
	}

	s.mcp = server.NewMCPServer(
		"scopedoc",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listFeaturesTool, s.handleListFeatures)
	s.mcp.AddTool(checkFeaturesTool, s.handleCheckFeatures)
	s.mcp.AddTool(priceFeaturesTool, s.handlePriceFeatures)
	s.mcp.AddTool(progressForTool, s.handleProgressFor)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
