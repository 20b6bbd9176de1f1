package game

import "github.com/louisbranch/koningsdag/internal/game/state"

// Benefit ids a watcher picks from after agreeing to watch a show.
const (
	// BenefitStamina rests the watcher at the cost of interest.
	BenefitStamina = "stamina_plus_curiosity_minus"
	// BenefitMoney tips the performer and stokes the watcher's interest.
	BenefitMoney = "money_minus_curiosity_plus"
)

func benefitOptions() []SwapOption {
	return []SwapOption{
		{Kind: BenefitStamina, Label: "rest a while: stamina +1, curiosity -1"},
		{Kind: BenefitMoney, Label: "tip the performer: money -1, curiosity +1"},
	}
}

func (g *Game) startPerform(actor string, pol Policy) Outcome {
	candidates := g.selectTargets(actor, pol.Targets, g.Others(actor))
	if len(candidates) == 0 {
		return fail("no_watchers")
	}
	performer := g.Player(actor)
	if !pol.IgnoreGate && !pol.SkipCost && performer.Get(state.ResourceStamina) < 2 {
		return g.needHelp(actor, "perform",
			func() Outcome { return g.beginPerform(actor, pol, candidates) },
			func() Outcome { return done(Payload{Reason: "stamina_lt_2"}) })
	}
	return g.beginPerform(actor, pol, candidates)
}

func (g *Game) beginPerform(actor string, pol Policy, candidates []string) Outcome {
	p := &performPending{stage: performWatchDecide, actor: actor, watchers: candidates, policy: pol}
	return Outcome{Kind: OutcomeNeedDecision, Payload: Payload{TargetID: p.current()}, Pending: p}
}

func (g *Game) decidePerformWatch(p *performPending, targetID string, watch bool) Outcome {
	if p.stage != performWatchDecide {
		return fail("bad_stage")
	}
	watcher := p.current()
	if watcher == "" {
		return fail("bad_stage")
	}
	if targetID != watcher {
		return Outcome{
			Kind:    OutcomeNeedDecision,
			Payload: Payload{TargetID: watcher, Error: "invalid_target"},
			Pending: p,
		}
	}
	if !watch {
		return g.nextWatcher(p)
	}
	if !p.policy.IgnoreGate && g.Player(watcher).Get(state.ResourceCuriosity) < 2 {
		return g.needHelp(watcher, "perform",
			func() Outcome { return g.offerBenefit(p) },
			func() Outcome { return g.nextWatcher(p) })
	}
	return g.offerBenefit(p)
}

func (g *Game) offerBenefit(p *performPending) Outcome {
	p.stage = performBenefit
	return Outcome{
		Kind:    OutcomeNeedChoice,
		Payload: Payload{TargetID: p.current(), Options: benefitOptions()},
		Pending: p,
	}
}

func (g *Game) choosePerformBenefit(p *performPending, targetID, choice string) Outcome {
	if p.stage != performBenefit {
		return fail("bad_stage")
	}
	watcher := p.current()
	if watcher == "" {
		return fail("bad_stage")
	}
	if targetID != watcher {
		return Outcome{
			Kind:    OutcomeNeedChoice,
			Payload: Payload{TargetID: watcher, Options: benefitOptions(), Error: "invalid_target"},
			Pending: p,
		}
	}
	switch choice {
	case BenefitStamina:
		w := g.Player(watcher)
		w.Add(state.ResourceStamina, 1)
		w.Add(state.ResourceCuriosity, -1)
		return g.countWatcher(p, watcher)
	case BenefitMoney:
		if !p.policy.IgnoreGate && g.Player(watcher).Get(state.ResourceMoney) < 1 {
			return g.needHelp(watcher, "perform",
				func() Outcome { return g.applyMoneyBenefit(p, watcher) },
				func() Outcome {
					return Outcome{
						Kind:    OutcomeNeedChoice,
						Payload: Payload{TargetID: watcher, Options: benefitOptions(), Error: "money_lt_1"},
						Pending: p,
					}
				})
		}
		return g.applyMoneyBenefit(p, watcher)
	default:
		return Outcome{
			Kind:    OutcomeNeedChoice,
			Payload: Payload{TargetID: watcher, Options: benefitOptions(), Error: "invalid_choice"},
			Pending: p,
		}
	}
}

func (g *Game) applyMoneyBenefit(p *performPending, watcher string) Outcome {
	w := g.Player(watcher)
	w.Add(state.ResourceMoney, -1)
	w.Add(state.ResourceCuriosity, 1)
	g.Player(p.actor).Add(state.ResourceMoney, 1)
	return g.countWatcher(p, watcher)
}

func (g *Game) countWatcher(p *performPending, watcher string) Outcome {
	p.agreed = state.AddUnique(p.agreed, watcher)
	return g.nextWatcher(p)
}

func (g *Game) nextWatcher(p *performPending) Outcome {
	p.stage = performWatchDecide
	p.index++
	if next := p.current(); next != "" {
		return Outcome{Kind: OutcomeNeedDecision, Payload: Payload{TargetID: next}, Pending: p}
	}
	return g.finishPerform(p)
}

func (g *Game) finishPerform(p *performPending) Outcome {
	performer := g.Player(p.actor)
	if len(p.agreed) < p.policy.RequiredSuccess {
		if !p.policy.SkipCost {
			performer.Add(state.ResourceStamina, -1)
		}
		return done(Payload{
			Reason: "not_enough_watchers",
			Detail: map[string]any{"watchers": len(p.agreed)},
		})
	}
	if !p.policy.SkipCost {
		performer.Add(state.ResourceStamina, -2)
	}
	if p.policy.BonusStamina > 0 {
		performer.Add(state.ResourceStamina, p.policy.BonusStamina)
	}
	performer.Add(state.ResourceProgress, 1)
	performer.Counters.Perform++
	for _, w := range p.agreed {
		performer.Counters.PerformWatchers = state.AddUnique(performer.Counters.PerformWatchers, w)
	}
	return done(Payload{OK: true, Detail: map[string]any{"watchers": len(p.agreed)}})
}
