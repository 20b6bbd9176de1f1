package game

import (
	"fmt"

	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/game/state"
)

// Session game-over reasons.
const (
	reasonEventGameOver = "event_game_over"
	reasonVictory       = "victory"
)

// GlobalEffect is one table-wide event effect. The zero value is a
// no-op, which is also how unknown ids resolve.
type GlobalEffect struct {
	// NeedsTarget pauses the draw until the current player picks a
	// target; the choice lands in the session event context.
	NeedsTarget bool
	// WatchRound pauses the draw for a per-player watch decision round.
	WatchRound bool

	apply func(g *Game, params catalog.Params, current string)
}

// newGlobalEffects builds the global effect table. Built once, never
// mutated.
func newGlobalEffects() map[string]GlobalEffect {
	return map[string]GlobalEffect{
		"all_role_stat_plus": {apply: func(g *Game, params catalog.Params, current string) {
			stat := params.String("stat", "")
			amount := params.Int("amount", 1)
			if stat == "" || amount == 0 {
				return
			}
			for _, id := range g.Session.Players {
				g.Player(id).Add(stat, amount)
			}
		}},
		"current_player_stat_plus": {apply: func(g *Game, params catalog.Params, current string) {
			stat := params.String("stat", "")
			amount := params.Int("amount", 1)
			if stat == "" || amount == 0 {
				return
			}
			if p := g.Player(current); p != nil {
				p.Add(stat, amount)
			}
		}},
		"selected_player_stat_plus": {NeedsTarget: true, apply: func(g *Game, params catalog.Params, current string) {
			target := ""
			if g.Session.LastEventContext != nil {
				target = g.Session.LastEventContext.SelectedTarget
			}
			stat := params.String("stat", "")
			amount := params.Int("amount", 1)
			if target == "" || stat == "" || amount == 0 {
				return
			}
			if p := g.Player(target); p != nil {
				p.Add(stat, amount)
			}
		}},
		// Watchers are credited one by one during the round itself.
		"watch_street_parade": {WatchRound: true},
		"all_price_multiplier": {apply: func(g *Game, params catalog.Params, current string) {
			factor := params.Int("factor", 2)
			if factor <= 1 {
				return
			}
			for _, id := range g.Session.Players {
				trade := g.Player(id).Trade()
				mod := trade.PriceMod
				if mod < 1 {
					mod = 1
				}
				trade.PriceMod = mod * factor
			}
		}},
		"global_price_multiplier": {apply: func(g *Game, params catalog.Params, current string) {
			factor := params.Int("factor", 2)
			mod := g.Session.GlobalTradeState.PriceMod
			if mod < 1 {
				mod = 1
			}
			mod *= factor
			if mod < 1 {
				mod = 1
			}
			g.Session.GlobalTradeState.PriceMod = mod
		}},
		"game_end_immediately": {apply: func(g *Game, params catalog.Params, current string) {
			g.Session.EndGame(reasonEventGameOver)
		}},
	}
}

// RoleEffect is a registered role-card effect. Interactive ones hand
// back pendings; simple ones mutate state and finish.
type RoleEffect struct {
	Interactive bool
	run         func(g *Game, actor string, params catalog.Params) Outcome
}

// newRoleEffects builds the role-card effect table. Built once, never
// mutated.
func newRoleEffects() map[string]RoleEffect {
	return map[string]RoleEffect{
		"current_player_stat_plus": {run: func(g *Game, actor string, params catalog.Params) Outcome {
			stat := params.String("stat", "")
			amount := params.Int("amount", 1)
			if stat == "" || amount == 0 {
				return Outcome{}
			}
			g.Player(actor).Add(stat, amount)
			return Outcome{}
		}},
		"try_take_photo": {Interactive: true, run: func(g *Game, actor string, params catalog.Params) Outcome {
			return g.startPhoto(actor, policyFromParams(params))
		}},
		"try_trade": {Interactive: true, run: func(g *Game, actor string, params catalog.Params) Outcome {
			return g.startTrade(actor, policyFromParams(params))
		}},
		"try_exchange": {Interactive: true, run: func(g *Game, actor string, params catalog.Params) Outcome {
			return g.startExchange(actor, policyFromParams(params))
		}},
		"try_perform": {Interactive: true, run: func(g *Game, actor string, params catalog.Params) Outcome {
			return g.startPerform(actor, policyFromParams(params))
		}},
		"try_food_offer": {Interactive: true, run: func(g *Game, actor string, params catalog.Params) Outcome {
			return g.startFood(actor, policyFromParams(params))
		}},
		"give_gift": {Interactive: true, run: func(g *Game, actor string, params catalog.Params) Outcome {
			return g.startGift(actor, policyFromParams(params))
		}},
		"wear_then_photo": {Interactive: true, run: func(g *Game, actor string, params catalog.Params) Outcome {
			pol := policyFromParams(params)
			pol.WearFirst = true
			pol.ForceAgree = true
			return g.startPhoto(actor, pol)
		}},
		"vendor_price_double_all": {run: func(g *Game, actor string, params catalog.Params) Outcome {
			mod := g.Session.GlobalTradeState.PriceMod
			if mod < 1 {
				mod = 1
			}
			g.Session.GlobalTradeState.PriceMod = mod * 2
			return Outcome{}
		}},
		// Doubles the actor's next orange-item sale. The buff is consumed
		// by the sale, or dropped when the seller loses a worn item.
		"vendor_orange_force_once": {run: func(g *Game, actor string, params catalog.Params) Outcome {
			g.Player(actor).Trade().OrangeForceOnce = true
			return Outcome{}
		}},
		"finn_wear_orange_plus_curiosity": {run: func(g *Game, actor string, params catalog.Params) Outcome {
			p := g.Player(actor)
			// Each worn item makes the next one harder to pull off.
			need := 2 + p.Get(state.ResourceOrangeWorn)
			if p.Get(state.ResourceCuriosity) < need {
				return done(Payload{Reason: fmt.Sprintf("curiosity_lt_%d", need)})
			}
			if p.Get(state.ResourceOrange) < 1 {
				return done(Payload{Reason: "orange_product_lt_1"})
			}
			if p.Get(state.ResourceStamina) < 1 {
				return done(Payload{Reason: "stamina_lt_1"})
			}
			p.Add(state.ResourceStamina, -1)
			p.Add(state.ResourceOrange, -1)
			p.Add(state.ResourceOrangeWorn, 1)
			p.Add(state.ResourceCuriosity, 1)
			p.Add(state.ResourceProgress, 1)
			p.Counters.OrangeWorn++
			return done(Payload{OK: true, Detail: map[string]any{"effect": "finn_wear_orange_plus_curiosity"}})
		}},
	}
}

// runRoleEffect dispatches a role-card effect id. An unknown id is a
// programming error in the card data; the flow logs it and ends the
// turn.
func runRoleEffect(reg map[string]RoleEffect, g *Game, id, actor string, params catalog.Params) (Outcome, error) {
	eff, ok := reg[id]
	if !ok {
		return Outcome{}, fmt.Errorf("unknown role effect: %s", id)
	}
	return eff.run(g, actor, params), nil
}

// needHelp pauses a failed resource gate for the volunteer's decision.
// Without a volunteer to ask, the failed outcome stands immediately.
func (g *Game) needHelp(failing, action string, waived, failed func() Outcome) Outcome {
	helper := g.helper(failing)
	if helper == "" {
		return failed()
	}
	return Outcome{
		Kind:    OutcomeNeedHelp,
		Payload: Payload{HelpAction: action, TargetID: failing},
		Pending: &helpPending{actor: helper, action: action, resume: waived, decline: failed},
	}
}

// decideHelp resolves the volunteer's answer. Agreeing waives the gate
// once and credits the helped situation type toward the volunteer's
// goal.
func (g *Game) decideHelp(p *helpPending, agree bool) Outcome {
	if !agree {
		return p.decline()
	}
	v := g.Player(p.actor)
	v.Counters.HelpTypes = state.AddUnique(v.Counters.HelpTypes, p.action)
	return p.resume()
}

// startEventTarget asks the current player to pick who the drawn card
// affects.
func (g *Game) startEventTarget(actor, effectID string) Outcome {
	targets := g.Others(actor)
	if len(targets) == 0 {
		return fail("no_targets")
	}
	p := &eventTargetPending{actor: actor, targets: targets, effect: effectID}
	return Outcome{Kind: OutcomeNeedTarget, Payload: Payload{Targets: targets}, Pending: p}
}

func (g *Game) chooseEventTarget(p *eventTargetPending, targetID string) Outcome {
	if !contains(p.targets, targetID) {
		return Outcome{
			Kind:    OutcomeNeedTarget,
			Payload: Payload{Targets: p.targets, Error: "invalid_target"},
			Pending: p,
		}
	}
	g.Session.Context().SelectedTarget = targetID
	return done(Payload{OK: true, TargetID: targetID})
}

// startWatchRound walks every seated player in turn order asking
// whether they stop to watch the parade.
func (g *Game) startWatchRound(actor string) Outcome {
	p := &watchRoundPending{actor: actor, players: append([]string(nil), g.Session.Players...)}
	return Outcome{Kind: OutcomeNeedDecision, Payload: Payload{TargetID: p.current()}, Pending: p}
}

func (g *Game) decideWatch(p *watchRoundPending, targetID string, watch bool) Outcome {
	cur := p.current()
	if cur == "" {
		return fail("bad_stage")
	}
	if targetID != cur {
		return Outcome{
			Kind:    OutcomeNeedDecision,
			Payload: Payload{TargetID: cur, Error: "invalid_target"},
			Pending: p,
		}
	}
	if watch {
		g.Player(cur).Add(state.ResourceCuriosity, 1)
		p.watchers = append(p.watchers, cur)
		ctx := g.Session.Context()
		ctx.Watchers = state.AddUnique(ctx.Watchers, cur)
	}
	p.index++
	if next := p.current(); next != "" {
		return Outcome{Kind: OutcomeNeedDecision, Payload: Payload{TargetID: next}, Pending: p}
	}
	return done(Payload{OK: true, Detail: map[string]any{"watchers": len(p.watchers)}})
}
