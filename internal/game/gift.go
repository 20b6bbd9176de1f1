package game

func (g *Game) startGift(actor string, pol Policy) Outcome {
	targets := g.selectTargets(actor, pol.Targets, g.Others(actor))
	if len(targets) == 0 {
		return fail("no_targets")
	}
	p := &giftPending{actor: actor, targets: targets, policy: pol}
	return Outcome{Kind: OutcomeNeedTarget, Payload: Payload{Targets: targets}, Pending: p}
}

func (g *Game) chooseGiftTarget(p *giftPending, targetID string) Outcome {
	if !contains(p.targets, targetID) {
		return Outcome{
			Kind:    OutcomeNeedTarget,
			Payload: Payload{Targets: p.targets, Error: "invalid_target"},
			Pending: p,
		}
	}
	if p.policy.Stat == "" || p.policy.Amount == 0 {
		return done(Payload{Reason: "nothing_to_give", TargetID: targetID})
	}
	g.Player(targetID).Add(p.policy.Stat, p.policy.Amount)
	return done(Payload{
		OK:       true,
		TargetID: targetID,
		Detail:   map[string]any{"stat": p.policy.Stat, "amount": p.policy.Amount},
	})
}
