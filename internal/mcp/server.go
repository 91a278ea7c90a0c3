package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/gocodequality/internal/analyzer"
	"github.com/dshills/gocodequality/internal/app"
)

const (
	// ServerName is the MCP server name
	ServerName = "gocodequality"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp  *server.MCPServer
	app  *app.App
	lock analyzer.RunLock
}

// NewServer creates a new MCP server instance. The server owns a and closes
// it when Serve returns.
func NewServer(a *app.App) (*Server, error) {
	// Create MCP server
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcp: mcpServer,
		app: a,
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.app.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(evaluateFileTool(), s.handleEvaluateFile)
	s.mcp.AddTool(analyzeFolderTool(), s.handleAnalyzeFolder)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	return nil
}
