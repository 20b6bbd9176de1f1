// Package mcp parses MCP command flags and runs the stdio protocol
// adapter over the in-process engine.
package mcp

import (
	"context"
	"flag"
	"fmt"

	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/mcpserver"
	platformcmd "github.com/louisbranch/koningsdag/internal/platform/cmd"
	"github.com/louisbranch/koningsdag/internal/storage/sqlite"
)

// Config holds the MCP command configuration.
type Config struct {
	DBPath  string `env:"KONINGSDAG_DB_PATH" envDefault:"koningsdag.db"`
	DataDir string `env:"KONINGSDAG_DATA_DIR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "catalog directory overriding the embedded bundle")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP stdio server and blocks until the client
// disconnects or the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMCP, func(ctx context.Context) error {
		cat, err := catalog.Load(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		srv, err := mcpserver.New(mcpserver.Config{Catalog: cat, Store: store})
		if err != nil {
			return fmt.Errorf("init mcp server: %w", err)
		}
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("serve mcp: %w", err)
		}
		return nil
	})
}
