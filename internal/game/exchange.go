package game

import "github.com/louisbranch/koningsdag/internal/game/state"

// swapKinds are the item kinds an exchange may move, in offer order.
var swapKinds = []SwapOption{
	{Kind: state.ResourceProduct, Label: "local product"},
	{Kind: state.ResourceOrange, Label: "orange product"},
	{Kind: state.ResourceOrangeWorn, Label: "worn orange item"},
}

// swapOptions lists the kinds the player currently holds.
func (g *Game) swapOptions(roleID string) []SwapOption {
	p := g.Player(roleID)
	options := make([]SwapOption, 0, len(swapKinds))
	for _, opt := range swapKinds {
		if p.Get(opt.Kind) > 0 {
			options = append(options, opt)
		}
	}
	return options
}

// transferKind maps a given-away kind to what the receiver gains. A
// worn item comes off its wearer and arrives as a plain orange item.
func transferKind(kind string) string {
	if kind == state.ResourceOrangeWorn {
		return state.ResourceOrange
	}
	return kind
}

func (g *Game) startExchange(actor string, pol Policy) Outcome {
	if len(g.swapOptions(actor)) == 0 {
		return fail("no_items")
	}
	eligible := make([]string, 0, len(g.Session.Players))
	for _, id := range g.Others(actor) {
		if len(g.swapOptions(id)) > 0 {
			eligible = append(eligible, id)
		}
	}
	targets := g.selectTargets(actor, pol.Targets, eligible)
	if len(targets) == 0 {
		return fail("no_targets")
	}
	p := &exchangePending{stage: exchangeChooseTarget, actor: actor, targets: targets, policy: pol}
	return Outcome{Kind: OutcomeNeedTarget, Payload: Payload{Targets: targets}, Pending: p}
}

func (g *Game) chooseExchangeTarget(p *exchangePending, targetID string) Outcome {
	if p.stage != exchangeChooseTarget {
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
	p.stage = exchangeActorItem
	p.options = g.swapOptions(p.actor)
	return Outcome{Kind: OutcomeNeedChoice, Payload: Payload{Options: p.options, TargetID: targetID}, Pending: p}
}

func (g *Game) chooseExchangeOption(p *exchangePending, index int) Outcome {
	switch p.stage {
	case exchangeActorItem:
		if index < 0 || index >= len(p.options) {
			return Outcome{
				Kind:    OutcomeNeedChoice,
				Payload: Payload{Options: p.options, TargetID: p.targetID, Error: "invalid_option"},
				Pending: p,
			}
		}
		p.actorItem = p.options[index]
		p.stage = exchangeTargetItem
		p.options = g.swapOptions(p.targetID)
		if len(p.options) == 0 {
			return fail("no_items")
		}
		return Outcome{Kind: OutcomeNeedChoice, Payload: Payload{Options: p.options, TargetID: p.targetID}, Pending: p}
	case exchangeTargetItem:
		if index < 0 || index >= len(p.options) {
			return Outcome{
				Kind:    OutcomeNeedChoice,
				Payload: Payload{Options: p.options, TargetID: p.targetID, Error: "invalid_option"},
				Pending: p,
			}
		}
		p.targetItem = p.options[index]
		p.stage = exchangeConsent
		return Outcome{
			Kind:    OutcomeNeedConsent,
			Payload: Payload{TargetID: p.targetID, Options: []SwapOption{p.actorItem, p.targetItem}},
			Pending: p,
		}
	default:
		return fail("bad_stage")
	}
}

func (g *Game) consentExchange(p *exchangePending, agree bool) Outcome {
	if p.stage != exchangeConsent {
		return fail("bad_stage")
	}
	if p.policy.ForceAgree {
		agree = true
	}
	if !agree {
		switch p.policy.OnRefuse {
		case RefusePhotoFallback:
			// A refused swap turns into a photo the target cannot
			// decline.
			fallback := &photoPending{
				stage:    photoConsent,
				actor:    p.actor,
				targetID: p.targetID,
				policy:   Policy{ForceAgree: true},
			}
			return Outcome{
				Kind:    OutcomeNeedConsent,
				Payload: Payload{TargetID: p.targetID},
				Pending: fallback,
			}
		case RefuseRefund:
			g.Player(p.actor).Add(state.ResourceMoney, 1)
			p.refundPaid = true
			return done(Payload{
				Reason:   "rejected",
				TargetID: p.targetID,
				Detail:   map[string]any{"refund": 1},
			})
		default:
			return done(Payload{Reason: "rejected", TargetID: p.targetID})
		}
	}
	actor := g.Player(p.actor)
	target := g.Player(p.targetID)
	if actor.Get(p.actorItem.Kind) < 1 || target.Get(p.targetItem.Kind) < 1 {
		return done(Payload{Reason: "item_missing", TargetID: p.targetID})
	}
	actor.Add(p.actorItem.Kind, -1)
	target.Add(transferKind(p.actorItem.Kind), 1)
	target.Add(p.targetItem.Kind, -1)
	actor.Add(transferKind(p.targetItem.Kind), 1)
	if p.actorItem.Kind == state.ResourceOrangeWorn {
		actor.ClearWornBuffs()
	}
	if p.targetItem.Kind == state.ResourceOrangeWorn {
		target.ClearWornBuffs()
	}
	return done(Payload{
		OK:       true,
		TargetID: p.targetID,
		Detail:   map[string]any{"gave": p.actorItem.Kind, "received": p.targetItem.Kind},
	})
}
