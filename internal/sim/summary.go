package sim

import (
	"fmt"
	"io"
	"sort"

	"github.com/louisbranch/koningsdag/internal/catalog"
)

// Summary aggregates a batch of results.
type Summary struct {
	Games     int
	Finished  int
	Abandoned int
	NoWinner  int
	Rounds    int
	Wins      map[string]int
}

// Summarize folds per-game results into batch totals. Shared wins
// count once per winner.
func Summarize(results []Result) Summary {
	sum := Summary{Games: len(results), Wins: make(map[string]int)}
	for _, res := range results {
		if res.Reason == ReasonMaxSteps {
			sum.Abandoned++
			continue
		}
		sum.Finished++
		sum.Rounds += res.Rounds
		if len(res.Winners) == 0 {
			sum.NoWinner++
			continue
		}
		for _, winner := range res.Winners {
			sum.Wins[winner]++
		}
	}
	return sum
}

// WriteSummary renders the winrate table. Rows are sorted by wins,
// ties alphabetically.
func WriteSummary(w io.Writer, cat *catalog.Catalog, results []Result) {
	sum := Summarize(results)

	fmt.Fprintf(w, "=== Simulation Summary ===\n")
	fmt.Fprintf(w, "games: %d  finished: %d  abandoned: %d\n", sum.Games, sum.Finished, sum.Abandoned)
	if sum.Finished > 0 {
		fmt.Fprintf(w, "avg rounds: %.1f\n", float64(sum.Rounds)/float64(sum.Finished))
	}

	type row struct {
		name string
		wins int
	}
	rows := make([]row, 0, len(sum.Wins))
	for roleID, wins := range sum.Wins {
		rows = append(rows, row{name: cat.RoleName(roleID), wins: wins})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].wins != rows[j].wins {
			return rows[i].wins > rows[j].wins
		}
		return rows[i].name < rows[j].name
	})

	fmt.Fprintf(w, "%-20s %5s %8s\n", "role", "wins", "winrate")
	for _, r := range rows {
		fmt.Fprintf(w, "%-20s %5d %7.1f%%\n", r.name, r.wins, percent(r.wins, sum.Finished))
	}
	if sum.NoWinner > 0 {
		fmt.Fprintf(w, "%-20s %5d %7.1f%%\n", "(no winner)", sum.NoWinner, percent(sum.NoWinner, sum.Finished))
	}
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
