// Package sim plays unattended games against the rules engine and
// reports winrates. Every seat follows the same self-interested
// heuristics: advance its own victory, spend as little as possible on
// everyone else.
package sim

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/game"
	"github.com/louisbranch/koningsdag/internal/platform/id"
	"github.com/louisbranch/koningsdag/internal/storage"
)

const defaultMaxSteps = 5000

// Scenario configures one simulation batch.
type Scenario struct {
	// Roster lists the seated roles. Required roles are added when
	// missing.
	Roster []string `yaml:"roster"`
	// Games is the number of games to play. Defaults to 1.
	Games int `yaml:"games"`
	// Seed fixes the RNG. Zero keeps the runner's seed.
	Seed int64 `yaml:"seed"`
	// MaxSteps aborts a game that refuses to finish. Defaults to 5000.
	MaxSteps int `yaml:"max_steps"`
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return sc, nil
}

// ReasonMaxSteps marks a game abandoned at the step cap.
const ReasonMaxSteps = "max_steps"

// Result summarizes one finished game.
type Result struct {
	GameID  string
	Players []string
	Winners []string
	Rounds  int
	Steps   int
	Reason  string
}

// Runner plays simulation batches against a catalog and a store.
type Runner struct {
	cat   *catalog.Catalog
	store storage.GameStore
	rng   *rand.Rand

	// Verbose streams every transcript line through log.Printf.
	Verbose bool
}

// NewRunner creates a simulation runner. The store may be nil; winrate
// and game records are skipped in that case.
func NewRunner(cat *catalog.Catalog, store storage.GameStore, rng *rand.Rand) *Runner {
	return &Runner{cat: cat, store: store, rng: rng}
}

// Run plays the scenario's batch and returns per-game results.
func (r *Runner) Run(ctx context.Context, sc Scenario) ([]Result, error) {
	if sc.Seed != 0 {
		r.rng = rand.New(rand.NewSource(sc.Seed))
	}
	games := sc.Games
	if games <= 0 {
		games = 1
	}
	maxSteps := sc.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	results := make([]Result, 0, games)
	for i := 0; i < games; i++ {
		res, err := r.playOne(ctx, sc.Roster, maxSteps)
		if err != nil {
			return results, fmt.Errorf("game %d: %w", i+1, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) playOne(ctx context.Context, roster []string, maxSteps int) (Result, error) {
	gameID, err := id.NewID()
	if err != nil {
		return Result{}, fmt.Errorf("generate game id: %w", err)
	}
	g, err := game.NewGame(r.cat, gameID, roster)
	if err != nil {
		return Result{}, err
	}
	flow := game.NewFlow(r.cat, g, r.store, r.rng)

	info, err := flow.StartGame(ctx)
	if err != nil {
		return Result{}, err
	}
	r.drain(flow)

	steps := 0
	for !info.GameOver {
		if steps >= maxSteps {
			// Abandon, do not finalize: an unfinished game counts
			// toward nobody's winrate.
			return Result{
				GameID:  gameID,
				Players: g.Session.Players,
				Rounds:  g.Session.RoundsCompleted,
				Steps:   steps,
				Reason:  ReasonMaxSteps,
			}, nil
		}
		steps++
		info, err = r.step(ctx, flow, info)
		if err != nil {
			return Result{}, err
		}
		r.drain(flow)
	}

	return Result{
		GameID:  gameID,
		Players: g.Session.Players,
		Winners: info.Winners,
		Rounds:  g.Session.RoundsCompleted,
		Steps:   steps,
		Reason:  info.Reason,
	}, nil
}

// step answers the current prompt with the heuristic decision and
// advances the flow by exactly one input.
func (r *Runner) step(ctx context.Context, flow *game.Flow, info game.Info) (game.Info, error) {
	g := flow.Game()
	pol := flow.PendingPolicy()

	switch info.UIMode {
	case game.ModePhotoTarget, game.ModeWearTarget:
		return flow.PhotoChooseTarget(ctx, pickTargetHighProgress(g, info.Targets))
	case game.ModePhotoConsent:
		return flow.PhotoConsent(ctx, decidePhotoConsent(g, pol, info.TargetID))
	case game.ModeHelpDecision:
		return flow.VolunteerHelp(ctx, decideHelp(g, info.HelpAction))
	case game.ModeFoodOfferDecide:
		return flow.FoodOfferDecide(ctx, info.TargetID, decideFoodAccept(g, pol, info))
	case game.ModeFoodOfferForce:
		return flow.FoodOfferDecide(ctx, info.TargetID, true)
	case game.ModePerformDecide:
		return flow.PerformWatchDecide(ctx, info.TargetID, decidePerformWatch(g, info.TargetID))
	case game.ModePerformBenefit:
		return flow.PerformWatchBenefit(ctx, info.TargetID, choosePerformBenefit(g, info.TargetID))
	case game.ModeGiftTarget:
		return flow.GiftChooseTarget(ctx, pickTargetLowProgress(g, info.Targets))
	case game.ModeExchangeTarget:
		return flow.ExchangeChooseTarget(ctx, pickTargetOrangeRich(g, info.Targets))
	case game.ModeExchangeChoice:
		return flow.ExchangeChooseOption(ctx, pickExchangeOption(info.Options, info.Stage == "target_item"))
	case game.ModeExchangeConsent:
		return flow.ExchangeConsent(ctx, decideExchangeConsent(pol, info))
	case game.ModeEventTarget:
		return flow.EventChooseTarget(ctx, pickTargetLowProgress(g, info.Targets))
	case game.ModeWatchDecide:
		return flow.WatchDecide(ctx, info.TargetID, statusOf(g, info.TargetID, "curiosity") <= 1)
	case game.ModeTradeItem:
		return flow.TradeChooseItem(ctx, chooseTradeItem(g, info.RoleID, info.Items))
	case game.ModeTradePartner:
		return flow.TradeChoosePartner(ctx, pickTradePartner(g, info.Partners))
	case game.ModeTradeConsent:
		buyer := info.PartnerID
		if buyer == "" {
			buyer = info.TargetID
		}
		return flow.TradeConsent(ctx, decideTradeConsent(g, pol, info, buyer))
	case game.ModeDrawCostChoice:
		return flow.ChooseDrawCost(ctx, chooseDrawCost(g, info.RoleID, info.Choices))
	case game.ModePostRoleEffect:
		if info.CanTrigger {
			return flow.TriggerRoleEffect(ctx)
		}
		return flow.SkipRoleEffect(ctx)
	case game.ModeNoDrawChoice:
		if info.HasSkill {
			return flow.UseActiveSkill(ctx)
		}
		return flow.SkipTurn(ctx)
	case game.ModeTurn:
		if info.CanDraw {
			return flow.RequestDraw(ctx)
		}
		if info.CanUseSkill || info.HasSkill {
			return flow.UseActiveSkill(ctx)
		}
		return flow.SkipTurn(ctx)
	}

	return game.Info{}, fmt.Errorf("no decision for ui mode %q", info.UIMode)
}

func (r *Runner) drain(flow *game.Flow) {
	lines := flow.ConsumeLogs()
	if !r.Verbose {
		return
	}
	for _, line := range lines {
		log.Printf("%s", line)
	}
}
