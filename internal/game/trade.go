package game

import "github.com/louisbranch/koningsdag/internal/game/state"

// tradeItems lists what the seller can put on offer right now. The
// food vendor's snack tray is always on offer and never runs out.
func (g *Game) tradeItems(seller string) []TradeItem {
	p := g.Player(seller)
	items := make([]TradeItem, 0, 3)
	if p.Get(state.ResourceProduct) > 0 {
		items = append(items, TradeItem{Kind: state.ResourceProduct, Amount: 1, Label: "local product"})
	}
	if p.Get(state.ResourceOrange) > 0 {
		items = append(items, TradeItem{Kind: state.ResourceOrange, Amount: 1, Label: "orange product"})
	}
	if seller == state.RoleFoodVendor {
		items = append(items, TradeItem{Kind: state.ResourceFood, Amount: 1, Label: "festival food"})
	}
	return items
}

// tradePartners lists others curious enough to haggle, narrowed by the
// policy partner filter.
func (g *Game) tradePartners(seller string, pol Policy) []string {
	eligible := make([]string, 0, len(g.Session.Players))
	for _, id := range g.Others(seller) {
		if g.Player(id).Get(state.ResourceCuriosity) >= 2 {
			eligible = append(eligible, id)
		}
	}
	return g.selectTargets(seller, pol.Partner, eligible)
}

// TradePrice computes the sale price of one item: the seller's
// override or the table default, times the seller and global price
// multipliers, doubled once by the vendor's orange buff, floored at 1.
func (g *Game) TradePrice(seller, kind string) int {
	trade := g.Player(seller).TradeState
	base := 0
	if trade != nil {
		base = trade.PriceOverride[kind]
	}
	if base == 0 {
		base = g.cat.TradeDefaults().PriceOverride[kind]
	}
	if base == 0 {
		base = 1
	}
	sellerMod := 1
	if trade != nil && trade.PriceMod > 1 {
		sellerMod = trade.PriceMod
	}
	globalMod := 1
	if m := g.Session.GlobalTradeState.PriceMod; m > 1 {
		globalMod = m
	}
	price := base * sellerMod * globalMod
	if trade != nil && trade.OrangeForceOnce && kind == state.ResourceOrange {
		price *= 2
	}
	if price < 1 {
		price = 1
	}
	return price
}

func (g *Game) startTrade(actor string, pol Policy) Outcome {
	items := g.tradeItems(actor)
	if len(items) == 0 {
		return fail("no_trade_items")
	}
	p := &tradePending{stage: tradeChooseItem, actor: actor, items: items, policy: pol}
	return Outcome{Kind: OutcomeNeedItem, Payload: Payload{Items: items}, Pending: p}
}

func (g *Game) chooseTradeItem(p *tradePending, index int) Outcome {
	if p.stage != tradeChooseItem {
		return fail("bad_stage")
	}
	// Holdings may have changed since the offer was listed.
	p.items = g.tradeItems(p.actor)
	if index < 0 || index >= len(p.items) {
		return Outcome{
			Kind:    OutcomeNeedItem,
			Payload: Payload{Items: p.items, Error: "invalid_item"},
			Pending: p,
		}
	}
	p.item = p.items[index]
	partners := g.tradePartners(p.actor, p.policy)
	if len(partners) == 0 {
		return fail("no_partners")
	}
	p.partners = partners
	p.stage = tradeChoosePartner
	return Outcome{Kind: OutcomeNeedPartner, Payload: Payload{Partners: partners}, Pending: p}
}

func (g *Game) chooseTradePartner(p *tradePending, partnerID string) Outcome {
	if p.stage != tradeChoosePartner {
		return fail("bad_stage")
	}
	if !contains(p.partners, partnerID) {
		return Outcome{
			Kind:    OutcomeNeedPartner,
			Payload: Payload{Partners: p.partners, Error: "invalid_partner"},
			Pending: p,
		}
	}
	p.partnerID = partnerID
	p.stage = tradeConsent
	price := g.TradePrice(p.actor, p.item.Kind)
	return Outcome{
		Kind:    OutcomeNeedConsent,
		Payload: Payload{PartnerID: partnerID, Items: []TradeItem{p.item}, Price: price},
		Pending: p,
	}
}

func (g *Game) consentTrade(p *tradePending, agree bool) Outcome {
	if p.stage != tradeConsent || p.partnerID == "" {
		return fail("bad_stage")
	}
	if p.policy.ForceAgree {
		agree = true
	}
	price := g.TradePrice(p.actor, p.item.Kind)
	if !agree {
		return done(Payload{Reason: "rejected", PartnerID: p.partnerID, Price: price})
	}
	if reason := g.tradeGate(p.actor, p.partnerID, price, p.policy); reason != "" {
		failing := tradeFailing(reason, p.actor, p.partnerID)
		return g.needHelp(failing, "trade",
			func() Outcome { return g.applyTrade(p, price) },
			func() Outcome { return done(Payload{Reason: reason, PartnerID: p.partnerID, Price: price}) })
	}
	return g.applyTrade(p, price)
}

// tradeGate checks both sides of a sale and returns the first unmet
// condition, empty when the trade may proceed. The buyer must keep at
// least one coin after paying.
func (g *Game) tradeGate(seller, buyer string, price int, pol Policy) string {
	if pol.IgnoreGate {
		return ""
	}
	s, b := g.Player(seller), g.Player(buyer)
	switch {
	case s.Get(state.ResourceCuriosity) < 2:
		return "seller_curiosity_lt_2"
	case b.Get(state.ResourceCuriosity) < 2:
		return "buyer_curiosity_lt_2"
	case s.Get(state.ResourceStamina) < 1:
		return "seller_stamina_lt_1"
	case b.Get(state.ResourceMoney) <= price:
		return "buyer_money_not_enough"
	}
	return ""
}

// tradeFailing names the party that fell short of the gate.
func tradeFailing(reason, seller, buyer string) string {
	switch reason {
	case "seller_curiosity_lt_2", "seller_stamina_lt_1":
		return seller
	default:
		return buyer
	}
}

func (g *Game) applyTrade(p *tradePending, price int) Outcome {
	seller := g.Player(p.actor)
	buyer := g.Player(p.partnerID)
	kind := p.item.Kind

	if kind != state.ResourceFood {
		seller.Add(kind, -1)
	}
	buyer.Add(kind, 1)
	seller.Add(state.ResourceMoney, price)
	buyer.Add(state.ResourceMoney, -price)
	seller.Add(state.ResourceStamina, -1)

	if t := seller.TradeState; t != nil && t.OrangeForceOnce && kind == state.ResourceOrange {
		t.OrangeForceOnce = false
	}

	if p.actor == state.RoleVendor || p.actor == state.RoleFoodVendor {
		seller.Add(state.ResourceProgress, 1)
		seller.Counters.TradesDone++
		seller.Counters.TradePartners = state.AddUnique(seller.Counters.TradePartners, p.partnerID)
	}

	return done(Payload{
		OK:        true,
		PartnerID: p.partnerID,
		Price:     price,
		Detail:    map[string]any{"item": kind},
	})
}
