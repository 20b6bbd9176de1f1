package game

// UI modes the flow hands to drivers. Interactive pendings map their
// current stage to one of these.
const (
	ModeTurn            = "TURN"
	ModeNoDrawChoice    = "NO_DRAW_CHOICE"
	ModeDrawCostChoice  = "DRAW_NEED_COST_CHOICE"
	ModePostRoleEffect  = "POST_ROLE_EFFECT"
	ModePhotoTarget     = "PHOTO_NEED_TARGET"
	ModePhotoConsent    = "PHOTO_NEED_CONSENT"
	ModeWearTarget      = "WEAR_NEED_TARGET"
	ModeTradeItem       = "TRADE_NEED_ITEM"
	ModeTradePartner    = "TRADE_NEED_PARTNER"
	ModeTradeConsent    = "TRADE_NEED_CONSENT"
	ModeExchangeTarget  = "EXCHANGE_NEED_TARGET"
	ModeExchangeChoice  = "EXCHANGE_NEED_CHOICE"
	ModeExchangeConsent = "EXCHANGE_NEED_CONSENT"
	ModeFoodOfferDecide = "FOOD_OFFER_DECIDE"
	ModeFoodOfferForce  = "FOOD_OFFER_FORCE"
	ModePerformDecide   = "PERFORM_WATCH_DECIDE"
	ModePerformBenefit  = "PERFORM_WATCH_BENEFIT"
	ModeGiftTarget      = "GIFT_NEED_TARGET"
	ModeEventTarget     = "EVENT_NEED_TARGET"
	ModeWatchDecide     = "WATCH_DECIDE"
	ModeHelpDecision    = "HELP_DECISION"
	ModeGameOver        = "GAME_OVER"
)

// Pending is an interactive protocol paused for input. The flow holds
// at most one at a time; each step validates that the live pending is
// the one it expects before mutating anything.
type Pending interface {
	// Actor is the player who started the protocol.
	Actor() string
	// Mode is the UI mode for the current stage.
	Mode() string
}

type photoStage int

const (
	photoChooseTarget photoStage = iota
	photoConsent
)

type photoPending struct {
	stage    photoStage
	actor    string
	targets  []string
	targetID string
	policy   Policy
}

func (p *photoPending) Actor() string { return p.actor }

func (p *photoPending) Mode() string {
	if p.stage == photoChooseTarget {
		if p.policy.WearFirst {
			return ModeWearTarget
		}
		return ModePhotoTarget
	}
	return ModePhotoConsent
}

type tradeStage int

const (
	tradeChooseItem tradeStage = iota
	tradeChoosePartner
	tradeConsent
)

type tradePending struct {
	stage     tradeStage
	actor     string
	items     []TradeItem
	item      TradeItem
	partners  []string
	partnerID string
	policy    Policy
}

func (p *tradePending) Actor() string { return p.actor }

func (p *tradePending) Mode() string {
	switch p.stage {
	case tradeChooseItem:
		return ModeTradeItem
	case tradeChoosePartner:
		return ModeTradePartner
	default:
		return ModeTradeConsent
	}
}

type exchangeStage int

const (
	exchangeChooseTarget exchangeStage = iota
	exchangeActorItem
	exchangeTargetItem
	exchangeConsent
)

type exchangePending struct {
	stage      exchangeStage
	actor      string
	targets    []string
	targetID   string
	options    []SwapOption
	actorItem  SwapOption
	targetItem SwapOption
	refundPaid bool
	policy     Policy
}

func (p *exchangePending) Actor() string { return p.actor }

func (p *exchangePending) Mode() string {
	switch p.stage {
	case exchangeChooseTarget:
		return ModeExchangeTarget
	case exchangeActorItem, exchangeTargetItem:
		return ModeExchangeChoice
	default:
		return ModeExchangeConsent
	}
}

type performStage int

const (
	performWatchDecide performStage = iota
	performBenefit
)

type performPending struct {
	stage    performStage
	actor    string
	watchers []string
	index    int
	agreed   []string
	policy   Policy
}

func (p *performPending) Actor() string { return p.actor }

func (p *performPending) Mode() string {
	if p.stage == performBenefit {
		return ModePerformBenefit
	}
	return ModePerformDecide
}

// current returns the watcher whose decision is pending.
func (p *performPending) current() string {
	if p.index < 0 || p.index >= len(p.watchers) {
		return ""
	}
	return p.watchers[p.index]
}

type foodPending struct {
	actor  string
	eaters []string
	index  int
	fed    []string
	price  int
	policy Policy
}

func (p *foodPending) Actor() string { return p.actor }

func (p *foodPending) Mode() string {
	if p.policy.ForceAccept {
		return ModeFoodOfferForce
	}
	return ModeFoodOfferDecide
}

func (p *foodPending) current() string {
	if p.index < 0 || p.index >= len(p.eaters) {
		return ""
	}
	return p.eaters[p.index]
}

type giftPending struct {
	actor   string
	targets []string
	policy  Policy
}

func (p *giftPending) Actor() string { return p.actor }
func (p *giftPending) Mode() string  { return ModeGiftTarget }

type eventTargetPending struct {
	actor   string
	targets []string
	effect  string
	policy  Policy
}

func (p *eventTargetPending) Actor() string { return p.actor }
func (p *eventTargetPending) Mode() string  { return ModeEventTarget }

type watchRoundPending struct {
	actor    string
	players  []string
	index    int
	watchers []string
}

func (p *watchRoundPending) Actor() string { return p.actor }
func (p *watchRoundPending) Mode() string  { return ModeWatchDecide }

func (p *watchRoundPending) current() string {
	if p.index < 0 || p.index >= len(p.players) {
		return ""
	}
	return p.players[p.index]
}

// helpPending interrupts another protocol: the volunteer chooses to
// cover a failed resource gate or let the attempt fail.
type helpPending struct {
	actor  string
	action string
	// resume continues the interrupted step as if the gate had passed.
	resume func() Outcome
	// decline delivers the outcome the gate failure would have produced.
	decline func() Outcome
}

func (p *helpPending) Actor() string { return p.actor }
func (p *helpPending) Mode() string  { return ModeHelpDecision }
