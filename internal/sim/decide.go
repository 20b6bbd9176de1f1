package sim

import (
	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/game"
	"github.com/louisbranch/koningsdag/internal/game/state"
)

func statusOf(g *game.Game, roleID, key string) int {
	p := g.Player(roleID)
	if p == nil {
		return 0
	}
	return p.Get(key)
}

func orangeTotal(g *game.Game, roleID string) int {
	return statusOf(g, roleID, state.ResourceOrange) + statusOf(g, roleID, state.ResourceOrangeWorn)
}

// pickTargetHighProgress aims at the player closest to winning, ties
// broken by money then curiosity.
func pickTargetHighProgress(g *game.Game, targets []string) string {
	return pickBy(targets, func(a, b string) bool {
		return compareStatus(g, a, b,
			state.ResourceProgress, state.ResourceMoney, state.ResourceCuriosity) > 0
	})
}

// pickTargetLowProgress aims at the player furthest from winning.
func pickTargetLowProgress(g *game.Game, targets []string) string {
	return pickBy(targets, func(a, b string) bool {
		return compareStatus(g, a, b,
			state.ResourceProgress, state.ResourceMoney, state.ResourceCuriosity) < 0
	})
}

// pickTradePartner prefers the richest counterparty.
func pickTradePartner(g *game.Game, partners []string) string {
	return pickBy(partners, func(a, b string) bool {
		return compareStatus(g, a, b,
			state.ResourceMoney, state.ResourceCuriosity, state.ResourceProgress) > 0
	})
}

// pickTargetOrangeRich prefers the target holding the most orange
// goods, worn or not.
func pickTargetOrangeRich(g *game.Game, targets []string) string {
	return pickBy(targets, func(a, b string) bool {
		if d := orangeTotal(g, a) - orangeTotal(g, b); d != 0 {
			return d > 0
		}
		return statusOf(g, a, state.ResourceProgress) > statusOf(g, b, state.ResourceProgress)
	})
}

// pickBy returns the first element that beats every later one.
func pickBy(ids []string, better func(a, b string) bool) string {
	if len(ids) == 0 {
		return ""
	}
	best := ids[0]
	for _, id := range ids[1:] {
		if better(id, best) {
			best = id
		}
	}
	return best
}

// compareStatus compares two players on an ordered key list. Positive
// means a ranks higher.
func compareStatus(g *game.Game, a, b string, keys ...string) int {
	for _, key := range keys {
		if d := statusOf(g, a, key) - statusOf(g, b, key); d != 0 {
			return d
		}
	}
	return 0
}

// itemValue ranks exchangeable goods: worn orange beats loose orange
// beats plain product.
func itemValue(kind string) int {
	switch kind {
	case state.ResourceProduct:
		return 1
	case state.ResourceOrange:
		return 2
	case state.ResourceOrangeWorn:
		return 3
	}
	return 0
}

// pickExchangeOption picks the most valuable item to receive, the
// least valuable to give away.
func pickExchangeOption(options []game.SwapOption, preferHigh bool) int {
	if len(options) == 0 {
		return 0
	}
	best := 0
	for i, opt := range options {
		v := itemValue(opt.Kind)
		cur := itemValue(options[best].Kind)
		if preferHigh && v > cur {
			best = i
		}
		if !preferHigh && v < cur {
			best = i
		}
	}
	return best
}

// chooseTradeItem sells the item quoting the highest price.
func chooseTradeItem(g *game.Game, seller string, items []game.TradeItem) int {
	if len(items) == 0 {
		return 0
	}
	best := 0
	bestPrice := g.TradePrice(seller, items[0].Kind)
	for i, item := range items[1:] {
		if price := g.TradePrice(seller, item.Kind); price > bestPrice {
			best = i + 1
			bestPrice = price
		}
	}
	return best
}

// drawCostWeights price each resource for the OR-draw choice. Stamina
// and curiosity are dearest, plain product cheapest.
var drawCostWeights = map[string]int{
	state.ResourceStamina:    3,
	state.ResourceCuriosity:  3,
	state.ResourceMoney:      2,
	state.ResourceOrange:     2,
	state.ResourceOrangeWorn: 2,
	state.ResourceProduct:    1,
}

// chooseDrawCost scores each option by the weighted holdings left
// after paying it and takes the least painful one.
func chooseDrawCost(g *game.Game, roleID string, choices []catalog.CostOption) int {
	if len(choices) == 0 {
		return 0
	}
	best := 0
	bestScore := drawCostScore(g, roleID, choices[0])
	for i, choice := range choices[1:] {
		if score := drawCostScore(g, roleID, choice); score > bestScore {
			best = i + 1
			bestScore = score
		}
	}
	return best
}

func drawCostScore(g *game.Game, roleID string, choice catalog.CostOption) int {
	score := 0
	for key, weight := range drawCostWeights {
		score += statusOf(g, roleID, key) * weight
	}
	for _, cost := range choice.Costs {
		score += cost.Delta * drawCostWeights[cost.Resource]
	}
	return score
}

// decidePhotoConsent agrees when forced, when refusal would cost
// curiosity the target cannot spare, or when the fee is welcome money.
func decidePhotoConsent(g *game.Game, pol game.Policy, targetID string) bool {
	if targetID == "" {
		return false
	}
	if pol.ForceAgree {
		return true
	}
	if targetID == state.RoleFinn {
		return true
	}
	if pol.ForceWear && statusOf(g, targetID, state.ResourceOrangeWorn) >= 1 {
		return true
	}
	if pol.RefuseCuriosityDelta < 0 &&
		statusOf(g, targetID, state.ResourceCuriosity)+pol.RefuseCuriosityDelta < 2 {
		return true
	}
	return statusOf(g, targetID, state.ResourceMoney) <= 0
}

// decideTradeConsent buys only what the buyer can afford and does not
// already own.
func decideTradeConsent(g *game.Game, pol game.Policy, info game.Info, buyer string) bool {
	if pol.ForceAgree {
		return true
	}
	if buyer == "" || len(info.Items) == 0 {
		return false
	}
	if statusOf(g, buyer, state.ResourceMoney) <= info.Price {
		return false
	}
	switch info.Items[0].Kind {
	case state.ResourceOrange:
		return orangeTotal(g, buyer) < 1
	case state.ResourceProduct:
		return statusOf(g, buyer, state.ResourceProduct) < 1
	}
	return false
}

// decideExchangeConsent swaps only when the offered item is at least
// as valuable as the one given up.
func decideExchangeConsent(pol game.Policy, info game.Info) bool {
	if pol.ForceAgree {
		return true
	}
	if len(info.Options) < 2 {
		return false
	}
	return itemValue(info.Options[0].Kind) >= itemValue(info.Options[1].Kind)
}

// decideFoodAccept eats only when tired, curious enough, and able to
// pay.
func decideFoodAccept(g *game.Game, pol game.Policy, info game.Info) bool {
	eater := info.TargetID
	if eater == "" {
		return false
	}
	needCuriosity := 2 + pol.CostPlus
	if statusOf(g, eater, state.ResourceCuriosity) < needCuriosity {
		return false
	}
	free := pol.FinnFree && eater == state.RoleFinn
	if !free && statusOf(g, eater, state.ResourceMoney) < info.Price {
		return false
	}
	return statusOf(g, eater, state.ResourceStamina) <= 1
}

// decidePerformWatch watches when the show restores something the
// watcher is short on.
func decidePerformWatch(g *game.Game, watcher string) bool {
	if watcher == "" {
		return false
	}
	if statusOf(g, watcher, state.ResourceCuriosity) < 2 {
		return false
	}
	if statusOf(g, watcher, state.ResourceStamina) <= 1 {
		return true
	}
	return statusOf(g, watcher, state.ResourceCuriosity) <= 2 &&
		statusOf(g, watcher, state.ResourceMoney) >= 1
}

// choosePerformBenefit restores stamina when tired, buys curiosity
// when flush.
func choosePerformBenefit(g *game.Game, watcher string) string {
	if statusOf(g, watcher, state.ResourceStamina) <= 1 &&
		statusOf(g, watcher, state.ResourceCuriosity) > 2 {
		return game.BenefitStamina
	}
	if statusOf(g, watcher, state.ResourceMoney) >= 1 &&
		statusOf(g, watcher, state.ResourceCuriosity) <= 2 {
		return game.BenefitMoney
	}
	return game.BenefitStamina
}

// decideHelp agrees only when the action type is new to the
// volunteer's tally.
func decideHelp(g *game.Game, action string) bool {
	p := g.Player(state.RoleVolunteer)
	if p == nil {
		return false
	}
	for _, seen := range p.Counters.HelpTypes {
		if seen == action {
			return false
		}
	}
	return true
}
