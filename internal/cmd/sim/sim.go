// Package sim parses simulator flags and runs unattended game batches.
package sim

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/louisbranch/koningsdag/internal/catalog"
	platformcmd "github.com/louisbranch/koningsdag/internal/platform/cmd"
	"github.com/louisbranch/koningsdag/internal/random"
	"github.com/louisbranch/koningsdag/internal/sim"
	"github.com/louisbranch/koningsdag/internal/storage"
	"github.com/louisbranch/koningsdag/internal/storage/memory"
	"github.com/louisbranch/koningsdag/internal/storage/sqlite"
)

// Config holds the simulator command configuration.
type Config struct {
	// ScenarioPath names a YAML scenario file. Empty builds a scenario
	// from the roster/games/seed flags instead.
	ScenarioPath string
	Roster       string
	Games        int
	Seed         int64
	Verbose      bool
	// DBPath records winrates into a SQLite store. Empty keeps the
	// batch in memory.
	DBPath  string `env:"KONINGSDAG_SIM_DB_PATH"`
	DataDir string `env:"KONINGSDAG_DATA_DIR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.ScenarioPath, "scenario", cfg.ScenarioPath, "YAML scenario file")
	fs.StringVar(&cfg.Roster, "roster", cfg.Roster, "comma-separated role ids to seat")
	fs.IntVar(&cfg.Games, "games", cfg.Games, "number of games to play")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "RNG seed, 0 for random")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "stream game transcripts")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path for winrate records")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "catalog directory overriding the embedded bundle")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// scenario resolves the batch to play: the YAML file when given, the
// flags otherwise.
func scenario(cfg Config) (sim.Scenario, error) {
	if cfg.ScenarioPath != "" {
		sc, err := sim.LoadScenario(cfg.ScenarioPath)
		if err != nil {
			return sim.Scenario{}, err
		}
		if cfg.Games > 0 {
			sc.Games = cfg.Games
		}
		if cfg.Seed != 0 {
			sc.Seed = cfg.Seed
		}
		return sc, nil
	}
	sc := sim.Scenario{Games: cfg.Games, Seed: cfg.Seed}
	for _, roleID := range strings.Split(cfg.Roster, ",") {
		if roleID = strings.TrimSpace(roleID); roleID != "" {
			sc.Roster = append(sc.Roster, roleID)
		}
	}
	return sc, nil
}

// Run plays the configured batch and prints the winrate summary.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceSim, func(ctx context.Context) error {
		cat, err := catalog.Load(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		var store storage.GameStore
		if cfg.DBPath != "" {
			sqlStore, err := sqlite.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer sqlStore.Close()
			store = sqlStore
		} else {
			store = memory.New()
		}

		sc, err := scenario(cfg)
		if err != nil {
			return err
		}

		rng, err := random.NewRand()
		if err != nil {
			return fmt.Errorf("seed rng: %w", err)
		}
		if sc.Seed != 0 {
			rng = rand.New(rand.NewSource(sc.Seed))
		}

		runner := sim.NewRunner(cat, store, rng)
		runner.Verbose = cfg.Verbose
		results, err := runner.Run(ctx, sc)
		if err != nil {
			return fmt.Errorf("run simulation: %w", err)
		}
		sim.WriteSummary(os.Stdout, cat, results)
		return nil
	})
}
