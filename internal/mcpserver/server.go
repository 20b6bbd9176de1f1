// Package mcpserver exposes the rules engine over the Model Context
// Protocol so agent clients can seat a table, drive turns, and inspect
// game state through typed tools. The server speaks stdio and holds the
// same single-session invariant as the HTTP driver.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/storage"
)

const (
	serverName = "Koningsdag MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Config configures the MCP server.
type Config struct {
	// Catalog supplies role and event definitions. Nil uses the
	// embedded defaults.
	Catalog *catalog.Catalog
	// Store persists game documents. Nil keeps games in memory only.
	Store storage.GameStore
}

// Server hosts the MCP server over the in-process engine.
type Server struct {
	mcpServer *mcp.Server
	svc       *service
}

// New creates a configured MCP server with all game tools registered.
func New(cfg Config) (*Server, error) {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	svc := newService(cat, cfg.Store)

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	if err := registerGameTools(mcpServer, svc); err != nil {
		return nil, fmt.Errorf("register game tools: %w", err)
	}
	return &Server{mcpServer: mcpServer, svc: svc}, nil
}

// Run serves MCP over stdio until the context is canceled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("mcp server is not configured")
	}
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func registerGameTools(server *mcp.Server, svc *service) error {
	mcp.AddTool(server, RolesListTool(), RolesListHandler(svc))
	mcp.AddTool(server, GameStartTool(), GameStartHandler(svc))
	mcp.AddTool(server, GameStateTool(), GameStateHandler(svc))
	mcp.AddTool(server, GameActionTool(), GameActionHandler(svc))
	mcp.AddTool(server, GameLogsTool(), GameLogsHandler(svc))
	mcp.AddTool(server, GameResetTool(), GameResetHandler(svc))
	mcp.AddTool(server, WinrateGetTool(), WinrateGetHandler(svc))
	mcp.AddTool(server, RecordsListTool(), RecordsListHandler(svc))
	return nil
}
