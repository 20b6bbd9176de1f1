package game

import "github.com/louisbranch/koningsdag/internal/game/state"

// photoEligible lists who the actor may photograph: others with
// curiosity >= 2 holding an orange item, worn or carried. Finn himself
// is a valid subject only while wearing one; a carried item is not
// enough. The wear-first variant instead needs an unworn item the
// target can put on.
func (g *Game) photoEligible(actor string, pol Policy) []string {
	eligible := make([]string, 0, len(g.Session.Players))
	for _, id := range g.Others(actor) {
		p := g.Player(id)
		if p.Get(state.ResourceCuriosity) < 2 {
			continue
		}
		switch {
		case pol.WearFirst:
			if p.Get(state.ResourceOrange) < 1 {
				continue
			}
		case id == state.RoleFinn:
			if p.Get(state.ResourceOrangeWorn) < 1 {
				continue
			}
		default:
			if p.Get(state.ResourceOrangeWorn)+p.Get(state.ResourceOrange) < 1 {
				continue
			}
		}
		eligible = append(eligible, id)
	}
	return g.selectTargets(actor, pol.Targets, eligible)
}

func (g *Game) startPhoto(actor string, pol Policy) Outcome {
	targets := g.photoEligible(actor, pol)
	if len(targets) == 0 {
		return fail("no_targets")
	}
	p := &photoPending{stage: photoChooseTarget, actor: actor, targets: targets, policy: pol}
	return Outcome{Kind: OutcomeNeedTarget, Payload: Payload{Targets: targets}, Pending: p}
}

func (g *Game) choosePhotoTarget(p *photoPending, targetID string) Outcome {
	if p.stage != photoChooseTarget {
		return fail("bad_stage")
	}
	if !contains(p.targets, targetID) {
		return Outcome{
			Kind:    OutcomeNeedTarget,
			Payload: Payload{Targets: p.targets, Error: "invalid_target"},
			Pending: p,
		}
	}
	p.targetID = targetID
	if p.policy.WearFirst {
		// The target puts on one of their own items before the shot.
		t := g.Player(targetID)
		t.Add(state.ResourceOrange, -1)
		t.Add(state.ResourceOrangeWorn, 1)
		t.Counters.OrangeWorn++
	}
	p.stage = photoConsent
	return Outcome{Kind: OutcomeNeedConsent, Payload: Payload{TargetID: targetID}, Pending: p}
}

func (g *Game) consentPhoto(p *photoPending, agree bool) Outcome {
	if p.stage != photoConsent || p.targetID == "" {
		return fail("bad_stage")
	}
	target := g.Player(p.targetID)
	switch {
	case p.policy.ForceAgree:
		agree = true
	case p.targetID == state.RoleFinn:
		// Finn never refuses a photo.
		agree = true
	case p.policy.ForceWear && target.Get(state.ResourceOrangeWorn) >= 1:
		agree = true
	}

	// The actor's means are checked before the answer counts.
	actor := g.Player(p.actor)
	if !p.policy.IgnoreGate && !p.policy.SkipCost &&
		(actor.Get(state.ResourceMoney) < 1 || actor.Get(state.ResourceStamina) < 1) {
		pay := agree
		return g.needHelp(p.actor, "photo",
			func() Outcome { return g.finishPhoto(p, pay) },
			func() Outcome { return done(Payload{Reason: "gate_failed", TargetID: p.targetID}) })
	}
	return g.finishPhoto(p, agree)
}

func (g *Game) finishPhoto(p *photoPending, agree bool) Outcome {
	target := g.Player(p.targetID)
	if !agree {
		if d := p.policy.RefuseCuriosityDelta; d != 0 {
			target.Add(state.ResourceCuriosity, d)
		}
		return done(Payload{Reason: "rejected", TargetID: p.targetID})
	}
	actor := g.Player(p.actor)
	if !p.policy.SkipCost {
		actor.Add(state.ResourceMoney, -1)
		actor.Add(state.ResourceStamina, -1)
	}
	target.Add(state.ResourceMoney, 1)
	actor.Counters.Photo++
	actor.Counters.PhotoTargets = state.AddUnique(actor.Counters.PhotoTargets, p.targetID)
	if p.actor == state.RoleTourist {
		actor.Add(state.ResourceProgress, 1)
	}
	return done(Payload{OK: true, TargetID: p.targetID})
}
