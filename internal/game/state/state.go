// Package state holds the mutable per-game records: player resource
// stores, accumulating counters, trade pricing state, and the game
// session document.
//
// Status values are non-negative integers; every mutation that would go
// below zero clamps to zero. Counters accumulate and are read by the
// victory predicates. All types round-trip through the keyed document
// store as JSON.
package state

// Resource names used by the status store.
const (
	ResourceStamina    = "stamina"
	ResourceCuriosity  = "curiosity"
	ResourceMoney      = "money"
	ResourceProduct    = "product"
	ResourceOrange     = "orange_product"
	ResourceOrangeWorn = "orange_wear_product"
	ResourceFood       = "food"
	ResourceProgress   = "progress"
)

// Role ids with hard-coded rule behavior.
const (
	RoleFinn       = "role_finn"
	RoleTourist    = "role_tourist"
	RoleVendor     = "role_vendor"
	RoleFoodVendor = "role_food_vendor"
	RolePerformer  = "role_performer"
	RoleVolunteer  = "role_volunteer"
)

// Player is one participant's full mutable state.
type Player struct {
	RoleID         string          `json:"role_id"`
	Status         map[string]int  `json:"status"`
	Counters       Counters        `json:"counters,omitempty"`
	TradeState     *TradeState     `json:"trade_state,omitempty"`
	ProgressDetail *ProgressDetail `json:"progress_detail,omitempty"`
	WinGame        bool            `json:"win_game,omitempty"`
}

// NewPlayer creates an empty player record for the given role.
func NewPlayer(roleID string) *Player {
	return &Player{
		RoleID: roleID,
		Status: make(map[string]int),
	}
}

// Get returns the named status value, zero when missing.
func (p *Player) Get(key string) int {
	if p == nil || p.Status == nil {
		return 0
	}
	return p.Status[key]
}

// Set stores a status value, clamped at zero.
func (p *Player) Set(key string, value int) {
	if p.Status == nil {
		p.Status = make(map[string]int)
	}
	if value < 0 {
		value = 0
	}
	p.Status[key] = value
}

// Add applies a delta to a status value, clamping the result at zero.
// Going negative is deliberately lossy: spending 2 from a pool of 1
// leaves 0, not an error.
func (p *Player) Add(key string, delta int) {
	p.Set(key, p.Get(key)+delta)
}

// CanPay reports whether applying delta would keep the value at or
// above zero. Deltas are usually negative.
func (p *Player) CanPay(key string, delta int) bool {
	return p.Get(key)+delta >= 0
}

// Trade returns the player's trade state, creating it on first use.
func (p *Player) Trade() *TradeState {
	if p.TradeState == nil {
		p.TradeState = &TradeState{}
	}
	return p.TradeState
}

// ClearWornBuffs drops the trade buffs tied to a worn orange item.
// Called when a worn item leaves its wearer.
func (p *Player) ClearWornBuffs() {
	if p.TradeState != nil {
		p.TradeState.OrangeForceOnce = false
	}
}

// Counters accumulate protocol successes for victory checks. Ints only
// grow; the string slices are unordered unique sets.
type Counters struct {
	Photo           int      `json:"photo,omitempty"`
	PhotoTargets    []string `json:"photo_targets,omitempty"`
	TradesDone      int      `json:"trades_done,omitempty"`
	TradePartners   []string `json:"trade_partners,omitempty"`
	Perform         int      `json:"perform,omitempty"`
	PerformWatchers []string `json:"perform_watchers,omitempty"`
	FeedSuccesses   int      `json:"feed_successes,omitempty"`
	FeedEaters      []string `json:"feed_eaters,omitempty"`
	OrangeWorn      int      `json:"orange_worn,omitempty"`
	HelpTypes       []string `json:"help_types,omitempty"`
}

// AddUnique appends value to set when absent and returns the set.
func AddUnique(set []string, value string) []string {
	if value == "" {
		return set
	}
	for _, v := range set {
		if v == value {
			return set
		}
	}
	return append(set, value)
}

// CountUnique counts distinct non-empty members, skipping exclude.
func CountUnique(set []string, exclude string) int {
	seen := make(map[string]bool, len(set))
	for _, v := range set {
		if v == "" || v == exclude {
			continue
		}
		seen[v] = true
	}
	return len(seen)
}

// TradeState carries per-player pricing modifiers mutated by skills and
// events.
type TradeState struct {
	PriceMod      int            `json:"price_mod,omitempty"`
	PriceOverride map[string]int `json:"price_override,omitempty"`
	// OrangeForceOnce doubles the next orange-item sale price, then
	// clears itself.
	OrangeForceOnce bool `json:"vendor_orange_force_once,omitempty"`
}

// ProgressDetail mirrors the dynamic trade-victory targets for display.
type ProgressDetail struct {
	TargetTrades         int `json:"target_trades"`
	TargetUniquePartners int `json:"target_unique_partners"`
	TradesDone           int `json:"trades_done"`
	UniquePartners       int `json:"unique_partners"`
}

// Session is the single mutable game record: roster, deck history, and
// the game-over flag.
type Session struct {
	ID               string        `json:"id"`
	Players          []string      `json:"players"`
	GameOver         bool          `json:"game_over"`
	GameOverReason   string        `json:"game_over_reason"`
	EventsDrawn      []string      `json:"events_drawn"`
	RoundsCompleted  int           `json:"rounds_completed"`
	GlobalTradeState GlobalTrade   `json:"global_trade_state,omitempty"`
	LastEventContext *EventContext `json:"last_event_context,omitempty"`
}

// GlobalTrade is the session-wide price multiplier.
type GlobalTrade struct {
	PriceMod int `json:"price_mod,omitempty"`
}

// EventContext holds transient choices made while resolving the most
// recent event card. It is cleared at the end of every turn.
type EventContext struct {
	SelectedTarget string   `json:"selected_target,omitempty"`
	Watchers       []string `json:"watchers,omitempty"`
}

// Context returns the session's event context, creating it on first use.
func (s *Session) Context() *EventContext {
	if s.LastEventContext == nil {
		s.LastEventContext = &EventContext{}
	}
	return s.LastEventContext
}

// EndGame flips the session to game over with the given reason. The
// first reason recorded wins.
func (s *Session) EndGame(reason string) {
	if s.GameOver {
		return
	}
	s.GameOver = true
	s.GameOverReason = reason
}

// MarkDrawn records an event id as drawn this game.
func (s *Session) MarkDrawn(eventID string) {
	s.EventsDrawn = append(s.EventsDrawn, eventID)
}

// Drawn reports whether the event id was already drawn this game.
func (s *Session) Drawn(eventID string) bool {
	for _, id := range s.EventsDrawn {
		if id == eventID {
			return true
		}
	}
	return false
}
