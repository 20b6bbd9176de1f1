package sim

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/storage/memory"
)

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	doc := strings.Join([]string{
		"roster:",
		"  - role_vendor",
		"  - role_performer",
		"games: 5",
		"seed: 42",
		"max_steps: 800",
	}, "\n")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if len(sc.Roster) != 2 || sc.Roster[0] != "role_vendor" {
		t.Fatalf("roster = %v, want [role_vendor role_performer]", sc.Roster)
	}
	if sc.Games != 5 || sc.Seed != 42 || sc.MaxSteps != 800 {
		t.Fatalf("scenario = %+v, want games 5 seed 42 max_steps 800", sc)
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing scenario file")
	}
}

func TestRunIsDeterministicForASeed(t *testing.T) {
	ctx := context.Background()
	sc := Scenario{
		Roster:   []string{"role_vendor", "role_performer"},
		Games:    3,
		Seed:     11,
		MaxSteps: 4000,
	}

	play := func() []Result {
		runner := NewRunner(catalog.Default(), memory.New(), rand.New(rand.NewSource(1)))
		results, err := runner.Run(ctx, sc)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return results
	}

	first := play()
	second := play()

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("results = %d and %d, want 3 each", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Steps != b.Steps || a.Rounds != b.Rounds || a.Reason != b.Reason {
			t.Fatalf("game %d diverged: %+v vs %+v", i+1, a, b)
		}
		if strings.Join(a.Winners, ",") != strings.Join(b.Winners, ",") {
			t.Fatalf("game %d winners diverged: %v vs %v", i+1, a.Winners, b.Winners)
		}
	}
}

func TestRunSeatsRequiredRoles(t *testing.T) {
	runner := NewRunner(catalog.Default(), memory.New(), rand.New(rand.NewSource(3)))
	results, err := runner.Run(context.Background(), Scenario{MaxSteps: 4000})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	res := results[0]
	if res.GameID == "" {
		t.Fatal("game id should be set")
	}
	if res.Steps < 1 {
		t.Fatalf("steps = %d, want at least 1", res.Steps)
	}
	joined := strings.Join(res.Players, ",")
	if !strings.Contains(joined, "role_finn") || !strings.Contains(joined, "role_tourist") {
		t.Fatalf("players = %v, want required roles seated", res.Players)
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Winners: []string{"role_finn"}, Rounds: 10, Reason: "victory"},
		{Winners: []string{"role_finn", "role_vendor"}, Rounds: 6, Reason: "victory"},
		{Winners: nil, Rounds: 8, Reason: "event_game_over"},
		{Reason: ReasonMaxSteps},
	}

	sum := Summarize(results)
	if sum.Games != 4 || sum.Finished != 3 || sum.Abandoned != 1 {
		t.Fatalf("summary = %+v, want 4 games, 3 finished, 1 abandoned", sum)
	}
	if sum.NoWinner != 1 {
		t.Fatalf("no-winner = %d, want 1", sum.NoWinner)
	}
	if sum.Wins["role_finn"] != 2 || sum.Wins["role_vendor"] != 1 {
		t.Fatalf("wins = %v, want finn 2 vendor 1", sum.Wins)
	}
	if sum.Rounds != 24 {
		t.Fatalf("rounds = %d, want 24", sum.Rounds)
	}
}

func TestWriteSummary(t *testing.T) {
	var sb strings.Builder
	WriteSummary(&sb, catalog.Default(), []Result{
		{Winners: []string{"role_finn"}, Rounds: 4, Reason: "victory"},
		{Winners: nil, Rounds: 2, Reason: "event_game_over"},
	})

	out := sb.String()
	if !strings.Contains(out, "games: 2  finished: 2  abandoned: 0") {
		t.Fatalf("summary = %q, want batch counts", out)
	}
	if !strings.Contains(out, "Finn") {
		t.Fatalf("summary = %q, want winner row", out)
	}
	if !strings.Contains(out, "(no winner)") {
		t.Fatalf("summary = %q, want no-winner row", out)
	}
}
