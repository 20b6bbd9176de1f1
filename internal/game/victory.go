package game

import (
	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/game/state"
)

// Victory ids from the shared definitions.
const (
	victoryWearOrange      = "wear_n_orange_items"
	victoryTakePhotos      = "take_n_photo"
	victoryVendorTrade     = "vendor_trade_dynamic"
	victoryFoodVendorTrade = "food_vendor_trade_dynamic"
	victoryFoodOffers      = "food_vendor_offer_goal"
	victoryPerform         = "perform_n_times"
	victoryHelpTypes       = "volunteer_help_n_types"
)

// VictoryCheck evaluates one player's win predicate. Checks run after
// every turn and may not mutate anything beyond their own player's
// progress detail.
type VictoryCheck func(g *Game, roleID string, params catalog.Params) bool

// newVictoryChecks builds the victory predicate table. Built once,
// never mutated.
func newVictoryChecks() map[string]VictoryCheck {
	return map[string]VictoryCheck{
		victoryWearOrange: func(g *Game, roleID string, params catalog.Params) bool {
			return g.Player(roleID).Counters.OrangeWorn >= params.Int("n", 3)
		},
		victoryTakePhotos: func(g *Game, roleID string, params catalog.Params) bool {
			p := g.Player(roleID)
			// Small tables cannot offer three distinct subjects.
			needUnique := 3
			if len(g.Session.Players) <= 3 {
				needUnique = 2
			}
			return p.Counters.Photo >= params.Int("n", 3) &&
				state.CountUnique(p.Counters.PhotoTargets, roleID) >= needUnique
		},
		victoryVendorTrade:     tradeDynamic(1),
		victoryFoodVendorTrade: tradeDynamic(2),
		victoryFoodOffers: func(g *Game, roleID string, params catalog.Params) bool {
			p := g.Player(roleID)
			n := params.Int("n", 2)
			return p.Counters.FeedSuccesses >= n &&
				state.CountUnique(p.Counters.FeedEaters, roleID) >= n
		},
		victoryPerform: func(g *Game, roleID string, params catalog.Params) bool {
			return g.Player(roleID).Counters.Perform >= params.Int("n", 2)
		},
		victoryHelpTypes: func(g *Game, roleID string, params catalog.Params) bool {
			return state.CountUnique(g.Player(roleID).Counters.HelpTypes, "") >= params.Int("n", 3)
		},
	}
}

// tradeDynamic scales the sell goal with the table size: trades_done
// must reach the other-player count and unique partners that count
// minus slack. The current standing is mirrored into progress detail
// on every evaluation.
func tradeDynamic(slack int) VictoryCheck {
	return func(g *Game, roleID string, params catalog.Params) bool {
		p := g.Player(roleID)
		if p == nil {
			return false
		}
		needTrades := len(g.Session.Players) - 1
		if needTrades < 0 {
			needTrades = 0
		}
		needUnique := needTrades - slack
		if needUnique < 0 {
			needUnique = 0
		}
		unique := state.CountUnique(p.Counters.TradePartners, roleID)
		p.ProgressDetail = &state.ProgressDetail{
			TargetTrades:         needTrades,
			TargetUniquePartners: needUnique,
			TradesDone:           p.Counters.TradesDone,
			UniquePartners:       unique,
		}
		return p.Counters.TradesDone >= needTrades && unique >= needUnique
	}
}

// calcWinners returns the winning role ids: explicit win flags first,
// otherwise the highest progress with ties sharing the win. Nobody
// wins a game where all progress stayed at zero.
func (g *Game) calcWinners() []string {
	winners := make([]string, 0, len(g.Session.Players))
	for _, id := range g.Session.Players {
		if g.Player(id).WinGame {
			winners = append(winners, id)
		}
	}
	if len(winners) > 0 {
		return winners
	}
	best := 0
	for _, id := range g.Session.Players {
		if v := g.Player(id).Get(state.ResourceProgress); v > best {
			best = v
		}
	}
	if best == 0 {
		return nil
	}
	for _, id := range g.Session.Players {
		if g.Player(id).Get(state.ResourceProgress) == best {
			winners = append(winners, id)
		}
	}
	return winners
}
