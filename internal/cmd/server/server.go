// Package server parses game server flags and runs the HTTP driver.
package server

import (
	"context"
	"flag"
	"fmt"

	"github.com/louisbranch/koningsdag/internal/catalog"
	platformcmd "github.com/louisbranch/koningsdag/internal/platform/cmd"
	gameserver "github.com/louisbranch/koningsdag/internal/server"
	"github.com/louisbranch/koningsdag/internal/storage/sqlite"
)

// Config holds the game server command configuration.
type Config struct {
	HTTPAddr string `env:"KONINGSDAG_HTTP_ADDR" envDefault:"localhost:8080"`
	DBPath   string `env:"KONINGSDAG_DB_PATH"   envDefault:"koningsdag.db"`
	// DataDir overrides the embedded role/event catalog with an
	// on-disk directory of the same layout. Empty uses the bundle.
	DataDir string `env:"KONINGSDAG_DATA_DIR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "catalog directory overriding the embedded bundle")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the HTTP game server and blocks until shutdown.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceServer, func(ctx context.Context) error {
		cat, err := catalog.Load(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		srv, err := gameserver.NewServer(ctx, gameserver.Config{
			HTTPAddr: cfg.HTTPAddr,
			Catalog:  cat,
			Store:    store,
		})
		if err != nil {
			return fmt.Errorf("init game server: %w", err)
		}
		defer srv.Close()

		if err := srv.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve game: %w", err)
		}
		return nil
	})
}
