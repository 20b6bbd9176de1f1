// Package game is the rules engine: the seated table, the transaction
// protocols, the effect and victory registries, and the turn flow that
// drives them. It has no transport or storage concerns; drivers call
// the Flow and persist through the storage interfaces.
package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/game/state"
)

// RequiredRoles are seated in every game regardless of the requested
// roster.
var RequiredRoles = []string{state.RoleFinn, state.RoleTourist}

// Game is one live table: the shared session document plus every
// player's mutable state keyed by role id. Seating order is
// Session.Players.
type Game struct {
	cat     *catalog.Catalog
	Session *state.Session
	Players map[string]*state.Player
}

// NewGame seats the requested roster and deals starting state from the
// role cards. Required roles are added when missing; duplicate entries
// keep their first seat.
func NewGame(cat *catalog.Catalog, id string, roles []string) (*Game, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	roster := normalizeRoster(roles)
	players := make(map[string]*state.Player, len(roster))
	for _, roleID := range roster {
		role, err := cat.Role(roleID)
		if err != nil {
			return nil, err
		}
		players[roleID] = seatPlayer(role)
	}
	return &Game{
		cat:     cat,
		Session: &state.Session{ID: id, Players: roster},
		Players: players,
	}, nil
}

// Resume rebuilds a table from persisted session and player records.
func Resume(cat *catalog.Catalog, sess *state.Session, players map[string]*state.Player) (*Game, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if sess == nil || len(sess.Players) == 0 {
		return nil, fmt.Errorf("session has no roster")
	}
	seated := make(map[string]*state.Player, len(sess.Players))
	for _, roleID := range sess.Players {
		p := players[roleID]
		if p == nil {
			p = state.NewPlayer(roleID)
		}
		seated[roleID] = p
	}
	return &Game{cat: cat, Session: sess, Players: seated}, nil
}

func normalizeRoster(roles []string) []string {
	ordered := make([]string, 0, len(roles)+len(RequiredRoles))
	ordered = append(ordered, RequiredRoles...)
	ordered = append(ordered, roles...)
	seen := make(map[string]bool, len(ordered))
	roster := make([]string, 0, len(ordered))
	for _, id := range ordered {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		roster = append(roster, id)
	}
	return roster
}

func seatPlayer(role catalog.Role) *state.Player {
	p := state.NewPlayer(role.ID)
	for stat, value := range role.InitStatus() {
		p.Set(stat, value)
	}
	// Every player tracks progress even when the card omits it.
	if _, ok := p.Status[state.ResourceProgress]; !ok {
		p.Set(state.ResourceProgress, 0)
	}
	if seed := role.TradeSeed; seed != nil {
		trade := p.Trade()
		trade.PriceMod = seed.PriceMod
		if len(seed.PriceOverride) > 0 {
			trade.PriceOverride = make(map[string]int, len(seed.PriceOverride))
			for kind, price := range seed.PriceOverride {
				trade.PriceOverride[kind] = price
			}
		}
	}
	if v := role.Victory; v != nil {
		switch v.ID {
		case victoryVendorTrade, victoryFoodVendorTrade:
			p.ProgressDetail = &state.ProgressDetail{}
		}
	}
	return p
}

// Player returns the seated player for a role id, nil when absent.
func (g *Game) Player(roleID string) *state.Player {
	return g.Players[roleID]
}

// Others returns every seated role except roleID, in seating order.
func (g *Game) Others(roleID string) []string {
	out := make([]string, 0, len(g.Session.Players))
	for _, id := range g.Session.Players {
		if id != roleID {
			out = append(out, id)
		}
	}
	return out
}

// selectTargets narrows the already-eligible candidates by the policy
// target strategy. Candidates arrive in seating order; ties on the
// lowest-stat strategies keep the earliest seat.
func (g *Game) selectTargets(actor string, strategy TargetStrategy, eligible []string) []string {
	switch strategy {
	case TargetLowestCuriosity:
		return g.lowestBy(eligible, state.ResourceCuriosity)
	case TargetLowestStamina:
		return g.lowestBy(eligible, state.ResourceStamina)
	case TargetEventSelected:
		selected := ""
		if g.Session.LastEventContext != nil {
			selected = g.Session.LastEventContext.SelectedTarget
		}
		if selected == "" || selected == actor {
			return eligible
		}
		for _, id := range eligible {
			if id == selected {
				return []string{selected}
			}
		}
		return nil
	case TargetWatcherList:
		if g.Session.LastEventContext == nil {
			return nil
		}
		watchers := g.Session.LastEventContext.Watchers
		out := make([]string, 0, len(watchers))
		for _, id := range eligible {
			for _, w := range watchers {
				if id == w {
					out = append(out, id)
					break
				}
			}
		}
		return out
	default:
		return eligible
	}
}

func (g *Game) lowestBy(candidates []string, stat string) []string {
	best := ""
	bestVal := 0
	for _, id := range candidates {
		v := g.Player(id).Get(stat)
		if best == "" || v < bestVal {
			best, bestVal = id, v
		}
	}
	if best == "" {
		return nil
	}
	return []string{best}
}

// helper returns the volunteer's role id when one is seated and is not
// the player whose gate failed. An empty string means no help offer.
func (g *Game) helper(failingActor string) string {
	if failingActor == state.RoleVolunteer {
		return ""
	}
	if _, ok := g.Players[state.RoleVolunteer]; !ok {
		return ""
	}
	return state.RoleVolunteer
}

// seated reports whether roleID is in the roster.
func (g *Game) seated(roleID string) bool {
	_, ok := g.Players[roleID]
	return ok
}

// undrawnEvents returns the event ids still in the deck, in deck order.
func (g *Game) undrawnEvents() []string {
	ids := g.cat.EventIDs()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !g.Session.Drawn(id) {
			out = append(out, id)
		}
	}
	return out
}

// CanDraw reports whether the player may draw a card: the deck is
// non-empty and at least one cost option is fully payable.
func (g *Game) CanDraw(roleID string) bool {
	if len(g.undrawnEvents()) == 0 {
		return false
	}
	role, err := g.cat.Role(roleID)
	if err != nil {
		return false
	}
	for _, opt := range role.DrawCost.Options {
		if g.canPayOption(roleID, opt) {
			return true
		}
	}
	return false
}

// canPayOption reports whether every step of the option is payable.
// An option with no steps is malformed data and never counts.
func (g *Game) canPayOption(roleID string, opt catalog.CostOption) bool {
	if len(opt.Costs) == 0 {
		return false
	}
	p := g.Player(roleID)
	for _, step := range opt.Costs {
		if !p.CanPay(step.Resource, step.Delta) {
			return false
		}
	}
	return true
}

// payOption deducts every step of the option and returns the
// transcript fragment, "stamina-1" per step joined by ", ".
func (g *Game) payOption(roleID string, opt catalog.CostOption) string {
	p := g.Player(roleID)
	parts := make([]string, 0, len(opt.Costs))
	for _, step := range opt.Costs {
		p.Add(step.Resource, step.Delta)
		parts = append(parts, fmt.Sprintf("%s%+d", step.Resource, step.Delta))
	}
	return strings.Join(parts, ", ")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// statusLine renders one player's status for the transcript, keys
// sorted for stable output.
func (g *Game) statusLine(roleID string) string {
	p := g.Player(roleID)
	keys := make([]string, 0, len(p.Status))
	for k := range p.Status {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, p.Status[k]))
	}
	return fmt.Sprintf("[%s] %s", roleID, strings.Join(parts, ", "))
}
