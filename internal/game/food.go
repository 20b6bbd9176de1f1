package game

import "github.com/louisbranch/koningsdag/internal/game/state"

func (g *Game) startFood(actor string, pol Policy) Outcome {
	eaters := g.selectTargets(actor, pol.Targets, g.Others(actor))
	if len(eaters) == 0 {
		return fail("no_eaters")
	}
	p := &foodPending{actor: actor, eaters: eaters, price: pol.Price, policy: pol}
	return Outcome{Kind: OutcomeNeedDecision, Payload: Payload{TargetID: p.current(), Price: p.price}, Pending: p}
}

func (g *Game) decideFoodOffer(p *foodPending, targetID string, accept bool) Outcome {
	eater := p.current()
	if eater == "" {
		return fail("bad_stage")
	}
	if targetID != eater {
		return Outcome{
			Kind:    OutcomeNeedDecision,
			Payload: Payload{TargetID: eater, Price: p.price, Error: "invalid_target"},
			Pending: p,
		}
	}
	if p.policy.ForceAccept {
		accept = true
	}
	if !accept {
		return g.nextEater(p)
	}
	if !p.policy.IgnoreGate && !g.foodGate(p, eater) {
		return g.needHelp(eater, "food",
			func() Outcome { return g.feedEater(p, eater) },
			func() Outcome { return g.nextEater(p) })
	}
	return g.feedEater(p, eater)
}

// foodGate checks one eater's appetite and means. Finn eats free when
// the offer says so.
func (g *Game) foodGate(p *foodPending, eater string) bool {
	e := g.Player(eater)
	if e.Get(state.ResourceCuriosity) < 2+p.policy.CostPlus {
		return false
	}
	if p.policy.FinnFree && eater == state.RoleFinn {
		return true
	}
	return e.Get(state.ResourceMoney) >= p.price
}

func (g *Game) feedEater(p *foodPending, eater string) Outcome {
	e := g.Player(eater)
	free := p.policy.FinnFree && eater == state.RoleFinn
	if !free {
		e.Add(state.ResourceMoney, -p.price)
		g.Player(p.actor).Add(state.ResourceMoney, p.price)
	}
	e.Add(state.ResourceStamina, 1+p.policy.BonusStamina)
	p.fed = state.AddUnique(p.fed, eater)
	return g.nextEater(p)
}

func (g *Game) nextEater(p *foodPending) Outcome {
	p.index++
	if next := p.current(); next != "" {
		return Outcome{Kind: OutcomeNeedDecision, Payload: Payload{TargetID: next, Price: p.price}, Pending: p}
	}
	return g.finishFood(p)
}

func (g *Game) finishFood(p *foodPending) Outcome {
	// Individual purchases stand even when the round falls short.
	if len(p.fed) < p.policy.MinEaters {
		return done(Payload{
			Reason: "not_enough_eaters",
			Detail: map[string]any{"eaters": len(p.fed)},
		})
	}
	seller := g.Player(p.actor)
	seller.Add(state.ResourceProgress, 1)
	seller.Counters.FeedSuccesses++
	for _, eater := range p.fed {
		seller.Counters.FeedEaters = state.AddUnique(seller.Counters.FeedEaters, eater)
	}
	return done(Payload{OK: true, Detail: map[string]any{"eaters": len(p.fed)}})
}
