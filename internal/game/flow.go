package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/game/state"
	"github.com/louisbranch/koningsdag/internal/random"
	"github.com/louisbranch/koningsdag/internal/stats"
	"github.com/louisbranch/koningsdag/internal/storage"
)

// EventInfo describes the most recently drawn card for display. It is
// set at draw time and cleared when the turn ends.
type EventInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	GlobalLabel string `json:"global_label,omitempty"`
	RoleLabel   string `json:"role_label,omitempty"`
}

// costChoice is the paused OR-logic draw payment.
type costChoice struct {
	roleID  string
	options []catalog.CostOption
}

// roleEffectOffer is the drawn card's effect for the current player,
// waiting on the trigger-or-skip decision.
type roleEffectOffer struct {
	actor string
	ref   catalog.EffectRef
}

// Flow drives one game session: turn order, draw resolution, the
// single pending interaction slot, victory sweeps, and the transcript.
// It is not safe for concurrent use; drivers serialize access.
type Flow struct {
	cat   *catalog.Catalog
	game  *Game
	store storage.GameStore
	rng   *rand.Rand

	recorder *stats.Recorder

	turn int
	logs []string
	last Info

	event     *catalog.Event
	eventInfo *EventInfo

	pendingCost       *costChoice
	pendingRoleEffect *roleEffectOffer
	pending           Pending

	globals     map[string]GlobalEffect
	roleEffects map[string]RoleEffect
	victories   map[string]VictoryCheck

	recorded bool
}

// NewFlow creates a flow over a game. A nil store keeps everything in
// memory; a nil rng gets a crypto-seeded one.
func NewFlow(cat *catalog.Catalog, g *Game, store storage.GameStore, rng *rand.Rand) *Flow {
	if rng == nil {
		r, err := random.NewRand()
		if err != nil {
			r = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		rng = r
	}
	return &Flow{
		cat:         cat,
		game:        g,
		store:       store,
		rng:         rng,
		recorder:    stats.NewRecorder(store),
		globals:     newGlobalEffects(),
		roleEffects: newRoleEffects(),
		victories:   newVictoryChecks(),
	}
}

// Game exposes the table the flow drives.
func (f *Flow) Game() *Game { return f.game }

// Current returns the role whose turn it is.
func (f *Flow) Current() string {
	players := f.game.Session.Players
	if len(players) == 0 {
		return ""
	}
	return players[f.turn%len(players)]
}

// UI returns the most recent info document handed to a driver.
func (f *Flow) UI() Info { return f.last }

// CurrentEvent returns the drawn card of the turn in progress, nil
// between turns.
func (f *Flow) CurrentEvent() *EventInfo { return f.eventInfo }

// PendingPolicy returns the policy of the paused transaction, zero
// when nothing is pending. Unattended drivers read it to answer
// consents the way a live player would.
func (f *Flow) PendingPolicy() Policy {
	switch p := f.pending.(type) {
	case *photoPending:
		return p.policy
	case *tradePending:
		return p.policy
	case *exchangePending:
		return p.policy
	case *performPending:
		return p.policy
	case *foodPending:
		return p.policy
	case *giftPending:
		return p.policy
	case *eventTargetPending:
		return p.policy
	}
	return Policy{}
}

// ConsumeLogs drains the transcript. A second call without new
// activity returns nothing.
func (f *Flow) ConsumeLogs() []string {
	out := f.logs
	f.logs = nil
	return out
}

func (f *Flow) logf(format string, args ...any) {
	f.logs = append(f.logs, fmt.Sprintf(format, args...))
}

// StartGame logs the opening state and begins the first turn.
func (f *Flow) StartGame(ctx context.Context) (Info, error) {
	f.logf("=== Game Started ===")
	for _, id := range f.game.Session.Players {
		f.logf("%s", f.game.statusLine(id))
	}
	return f.startTurn(ctx)
}

// Reset discards the game's persisted documents. The in-memory table
// is untouched; drivers build a fresh flow afterwards.
func (f *Flow) Reset(ctx context.Context) error {
	if f.store == nil {
		return nil
	}
	return f.store.DeleteGame(ctx, f.game.Session.ID)
}

func (f *Flow) startTurn(ctx context.Context) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameEnd(ctx)
	}
	players := f.game.Session.Players
	if len(players) == 0 {
		f.logf("[ERROR] No players in current game.")
		return Info{UIMode: ModeGameOver, GameOver: true, Error: "no_players"}, nil
	}
	f.pending = nil
	f.pendingCost = nil
	f.pendingRoleEffect = nil

	current := f.Current()
	f.logf("\n--- Turn: %s ---", f.cat.RoleName(current))
	return f.saveInfo(ctx, f.turnMenu(current))
}

func (f *Flow) turnMenu(roleID string) Info {
	info := Info{
		UIMode:   ModeTurn,
		RoleID:   roleID,
		RoleName: f.cat.RoleName(roleID),
		ActorID:  roleID,
		CanDraw:  f.game.CanDraw(roleID),
		CanSkip:  true,
	}
	if role, err := f.cat.Role(roleID); err == nil && role.ActiveSkill != nil {
		if _, ok := f.roleEffects[role.ActiveSkill.ID]; ok {
			info.CanUseSkill = true
			info.HasSkill = true
		}
	}
	return info
}

// RequestDraw resolves the current player's draw: pays the role's cost
// and draws one event card. A role that cannot pay falls back to the
// no-draw menu.
func (f *Flow) RequestDraw(ctx context.Context) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	current := f.Current()
	if !f.game.CanDraw(current) {
		f.logf("[DRAW] Cannot draw -> treated as NO DRAW.")
		return f.noDrawMenu(ctx)
	}
	role, err := f.cat.Role(current)
	if err != nil {
		f.logf("[DRAW] Cannot draw -> treated as NO DRAW.")
		return f.noDrawMenu(ctx)
	}
	if role.DrawCost.NormalLogic() == catalog.DrawLogicOr {
		payable := make([]catalog.CostOption, 0, len(role.DrawCost.Options))
		for _, opt := range role.DrawCost.Options {
			if f.game.canPayOption(current, opt) {
				payable = append(payable, opt)
			}
		}
		if len(payable) == 0 {
			f.logf("[DRAW] Cannot draw -> treated as NO DRAW.")
			return f.noDrawMenu(ctx)
		}
		f.pendingCost = &costChoice{roleID: current, options: payable}
		f.logf("[DRAW] Choose cost (OR): %s", renderOptions(payable))
		info := Info{
			UIMode:   ModeDrawCostChoice,
			RoleID:   current,
			RoleName: f.cat.RoleName(current),
			ActorID:  current,
			Choices:  payable,
		}
		return f.saveInfo(ctx, info)
	}
	// THEN pays the first fully affordable option, or the first one
	// regardless when none is.
	opt := role.DrawCost.Options[0]
	for _, candidate := range role.DrawCost.Options {
		if f.game.canPayOption(current, candidate) {
			opt = candidate
			break
		}
	}
	f.logf("[DRAW] Paid (THEN): %s", f.game.payOption(current, opt))
	return f.drawEvent(ctx)
}

// ChooseDrawCost resolves the paused OR-logic payment. A stale pending
// restarts the turn; an out-of-range index re-prompts untouched.
func (f *Flow) ChooseDrawCost(ctx context.Context, index int) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	choice := f.pendingCost
	if choice == nil {
		return f.startTurn(ctx)
	}
	if choice.roleID != f.Current() {
		f.pendingCost = nil
		return f.startTurn(ctx)
	}
	if index < 0 || index >= len(choice.options) {
		info := Info{
			UIMode:   ModeDrawCostChoice,
			RoleID:   choice.roleID,
			RoleName: f.cat.RoleName(choice.roleID),
			ActorID:  choice.roleID,
			Choices:  choice.options,
			Error:    "invalid_choice",
		}
		return f.saveInfo(ctx, info)
	}
	opt := choice.options[index]
	f.pendingCost = nil
	f.logf("[DRAW] Paid (OR): %s", f.game.payOption(choice.roleID, opt))
	return f.drawEvent(ctx)
}

func (f *Flow) drawEvent(ctx context.Context) (Info, error) {
	if len(f.cat.EventIDs()) == 0 {
		f.logf("[EVENT] No event files found.")
		return f.endTurn(ctx)
	}
	undrawn := f.game.undrawnEvents()
	if len(undrawn) == 0 {
		f.logf("[EVENT] No remaining event cards (all drawn this game).")
		return f.endTurn(ctx)
	}
	id := undrawn[f.rng.Intn(len(undrawn))]
	ev, err := f.cat.Event(id)
	if err != nil {
		f.logf("[EVENT] draw failed.")
		return f.endTurn(ctx)
	}
	f.game.Session.MarkDrawn(id)
	f.logf("[EVENT] Drew event card: %q (%s)", ev.Name, ev.ID)
	f.event = &ev
	f.eventInfo = f.buildEventInfo(ev)

	if ev.GlobalEffect == nil {
		f.logf("[EVENT] (No global effect)")
		return f.offerRoleEffect(ctx)
	}
	ref := *ev.GlobalEffect
	f.logf("[EVENT] Global effect: %s", f.cat.EffectLabel(ref))
	eff := f.globals[ref.ID]
	switch {
	case eff.NeedsTarget:
		out := f.game.startEventTarget(f.Current(), ref.ID)
		if out.Pending == nil {
			// Nobody to pick; the effect fizzles.
			return f.afterGlobalEffect(ctx)
		}
		f.pending = out.Pending
		return f.saveInfo(ctx, f.pendingInfo(out))
	case eff.WatchRound:
		out := f.game.startWatchRound(f.Current())
		f.pending = out.Pending
		return f.saveInfo(ctx, f.pendingInfo(out))
	default:
		if eff.apply != nil {
			eff.apply(f.game, f.cat.EffectParams(ref), f.Current())
		}
		return f.afterGlobalEffect(ctx)
	}
}

func (f *Flow) buildEventInfo(ev catalog.Event) *EventInfo {
	info := &EventInfo{ID: ev.ID, Name: ev.Name}
	if ev.GlobalEffect != nil {
		info.GlobalLabel = f.cat.EffectLabel(*ev.GlobalEffect)
	}
	if ref, ok := ev.RoleEffects[f.Current()]; ok {
		info.RoleLabel = f.cat.EffectLabel(ref)
	}
	return info
}

// applyGlobalEffect runs the held card's global effect. Used after an
// event pre-step resolves.
func (f *Flow) applyGlobalEffect() {
	if f.event == nil || f.event.GlobalEffect == nil {
		return
	}
	ref := *f.event.GlobalEffect
	eff := f.globals[ref.ID]
	if eff.apply != nil {
		eff.apply(f.game, f.cat.EffectParams(ref), f.Current())
	}
}

func (f *Flow) afterGlobalEffect(ctx context.Context) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameEnd(ctx)
	}
	return f.offerRoleEffect(ctx)
}

// offerRoleEffect puts the drawn card's effect for the current player
// up for the trigger-or-skip decision.
func (f *Flow) offerRoleEffect(ctx context.Context) (Info, error) {
	if f.event == nil {
		return f.endTurn(ctx)
	}
	ref, ok := f.event.RoleEffects[f.Current()]
	if !ok {
		return f.endTurn(ctx)
	}
	current := f.Current()
	f.pendingRoleEffect = &roleEffectOffer{actor: current, ref: ref}
	f.logf("[ROLE_EFFECT] Trigger (-1 stamina) or skip?")
	effType := "simple"
	if f.roleEffects[ref.ID].Interactive {
		effType = "interactive"
	}
	info := Info{
		UIMode:          ModePostRoleEffect,
		RoleID:          current,
		RoleName:        f.cat.RoleName(current),
		ActorID:         current,
		CanTrigger:      f.game.Player(current).Get(state.ResourceStamina) >= 1,
		RoleEffectID:    ref.ID,
		RoleEffectType:  effType,
		RoleEffectLabel: f.cat.EffectLabel(ref),
	}
	return f.saveInfo(ctx, info)
}

// TriggerRoleEffect pays 1 stamina and runs the offered card effect.
func (f *Flow) TriggerRoleEffect(ctx context.Context) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	offer := f.pendingRoleEffect
	if offer == nil {
		f.logf("[ROLE_EFFECT] No pending role effect.")
		return f.startTurn(ctx)
	}
	f.pendingRoleEffect = nil
	f.game.Player(offer.actor).Add(state.ResourceStamina, -1)
	f.logf("[ROLE_EFFECT] Paid: stamina -1")
	out, err := runRoleEffect(f.roleEffects, f.game, offer.ref.ID, offer.actor, f.cat.EffectParams(offer.ref))
	if err != nil {
		f.logf("[ROLE_EFFECT] Execute failed: %v", err)
		return f.endTurn(ctx)
	}
	return f.resolveProtocol(ctx, "ROLE_EFFECT", out)
}

// SkipRoleEffect declines the offered card effect and ends the turn.
func (f *Flow) SkipRoleEffect(ctx context.Context) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	if f.pendingRoleEffect == nil {
		f.logf("[ROLE_EFFECT] No pending role effect.")
		return f.startTurn(ctx)
	}
	f.pendingRoleEffect = nil
	f.logf("[ROLE_EFFECT] Skipped.")
	return f.endTurn(ctx)
}

// RequestNoDrawChoice opens the skill-or-skip menu.
func (f *Flow) RequestNoDrawChoice(ctx context.Context) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	return f.noDrawMenu(ctx)
}

func (f *Flow) noDrawMenu(ctx context.Context) (Info, error) {
	f.logf("[NO_DRAW] Choose: SKILL or SKIP")
	menu := f.turnMenu(f.Current())
	menu.UIMode = ModeNoDrawChoice
	return f.saveInfo(ctx, menu)
}

// UseActiveSkill runs the current role's configured skill.
func (f *Flow) UseActiveSkill(ctx context.Context) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	current := f.Current()
	role, err := f.cat.Role(current)
	if err != nil || role.ActiveSkill == nil {
		f.logf("[SKILL] No active_skill.")
		return f.endTurn(ctx)
	}
	skill := role.ActiveSkill
	if _, ok := f.roleEffects[skill.ID]; !ok {
		f.logf("[SKILL] Invalid skill id.")
		return f.endTurn(ctx)
	}
	f.logf("[SKILL] Execute: %s", skill.ID)
	ref := catalog.EffectRef{ID: skill.ID, Params: skill.Params}
	out, err := runRoleEffect(f.roleEffects, f.game, skill.ID, current, f.cat.EffectParams(ref))
	if err != nil {
		f.logf("[SKILL] Execute failed: %v", err)
		return f.endTurn(ctx)
	}
	return f.resolveProtocol(ctx, "SKILL", out)
}

// SkipTurn does nothing and ends the turn.
func (f *Flow) SkipTurn(ctx context.Context) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	f.logf("[SKIP] Do nothing.")
	return f.endTurn(ctx)
}

// PhotoChooseTarget picks who the pending photo goes after.
func (f *Flow) PhotoChooseTarget(ctx context.Context, targetID string) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*photoPending)
	if !ok {
		f.logf("[PHOTO] No pending interactive.")
		return f.startTurn(ctx)
	}
	return f.resolveProtocol(ctx, "PHOTO", f.game.choosePhotoTarget(p, targetID))
}

// PhotoConsent answers for the chosen photo subject.
func (f *Flow) PhotoConsent(ctx context.Context, agree bool) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*photoPending)
	if !ok {
		f.logf("[PHOTO] No pending interactive.")
		return f.startTurn(ctx)
	}
	return f.resolveProtocol(ctx, "PHOTO", f.game.consentPhoto(p, agree))
}

// TradeChooseItem picks which item the pending trade offers.
func (f *Flow) TradeChooseItem(ctx context.Context, index int) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*tradePending)
	if !ok {
		f.logf("[TRADE] No pending interactive.")
		return f.startTurn(ctx)
	}
	return f.resolveProtocol(ctx, "TRADE", f.game.chooseTradeItem(p, index))
}

// TradeChoosePartner picks who the pending trade is offered to.
func (f *Flow) TradeChoosePartner(ctx context.Context, partnerID string) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*tradePending)
	if !ok {
		f.logf("[TRADE] No pending interactive.")
		return f.startTurn(ctx)
	}
	return f.resolveProtocol(ctx, "TRADE", f.game.chooseTradePartner(p, partnerID))
}

// TradeConsent answers for the chosen trade partner.
func (f *Flow) TradeConsent(ctx context.Context, agree bool) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*tradePending)
	if !ok {
		f.logf("[TRADE] No pending interactive.")
		return f.startTurn(ctx)
	}
	return f.resolveProtocol(ctx, "TRADE", f.game.consentTrade(p, agree))
}

// ExchangeChooseTarget picks who the pending swap addresses.
func (f *Flow) ExchangeChooseTarget(ctx context.Context, targetID string) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*exchangePending)
	if !ok {
		f.logf("[EXCHANGE] No pending interactive.")
		return f.startTurn(ctx)
	}
	return f.resolveProtocol(ctx, "EXCHANGE", f.game.chooseExchangeTarget(p, targetID))
}

// ExchangeChooseOption picks an item for whichever side is choosing.
func (f *Flow) ExchangeChooseOption(ctx context.Context, index int) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*exchangePending)
	if !ok {
		f.logf("[EXCHANGE] No pending interactive.")
		return f.startTurn(ctx)
	}
	return f.resolveProtocol(ctx, "EXCHANGE", f.game.chooseExchangeOption(p, index))
}

// ExchangeConsent answers for the swap counterparty.
func (f *Flow) ExchangeConsent(ctx context.Context, agree bool) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*exchangePending)
	if !ok {
		f.logf("[EXCHANGE] No pending interactive.")
		return f.startTurn(ctx)
	}
	return f.resolveProtocol(ctx, "EXCHANGE", f.game.consentExchange(p, agree))
}

// PerformWatchDecide answers whether the asked player stops to watch.
func (f *Flow) PerformWatchDecide(ctx context.Context, targetID string, watch bool) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*performPending)
	if !ok {
		f.logf("[PERFORM] No pending interactive.")
		return f.startTurn(ctx)
	}
	return f.resolveProtocol(ctx, "PERFORM", f.game.decidePerformWatch(p, targetID, watch))
}

// PerformWatchBenefit picks the watching player's reward.
func (f *Flow) PerformWatchBenefit(ctx context.Context, targetID, choice string) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*performPending)
	if !ok {
		f.logf("[PERFORM] No pending interactive.")
		return f.startTurn(ctx)
	}
	return f.resolveProtocol(ctx, "PERFORM", f.game.choosePerformBenefit(p, targetID, choice))
}

// FoodOfferDecide answers whether the asked player buys a snack.
func (f *Flow) FoodOfferDecide(ctx context.Context, targetID string, accept bool) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*foodPending)
	if !ok {
		f.logf("[FOOD] No pending interactive.")
		return f.startTurn(ctx)
	}
	return f.resolveProtocol(ctx, "FOOD", f.game.decideFoodOffer(p, targetID, accept))
}

// GiftChooseTarget picks who receives the pending gift.
func (f *Flow) GiftChooseTarget(ctx context.Context, targetID string) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*giftPending)
	if !ok {
		f.logf("[GIFT] No pending interactive.")
		return f.startTurn(ctx)
	}
	return f.resolveProtocol(ctx, "GIFT", f.game.chooseGiftTarget(p, targetID))
}

// EventChooseTarget picks who the drawn card's global effect lands on,
// then resumes the draw.
func (f *Flow) EventChooseTarget(ctx context.Context, targetID string) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*eventTargetPending)
	if !ok {
		f.logf("[EVENT] No pending interactive.")
		return f.startTurn(ctx)
	}
	out := f.game.chooseEventTarget(p, targetID)
	if out.Pending != nil {
		f.pending = out.Pending
		return f.saveInfo(ctx, f.pendingInfo(out))
	}
	f.pending = nil
	if out.Kind == OutcomeDone {
		f.applyGlobalEffect()
	}
	return f.afterGlobalEffect(ctx)
}

// WatchDecide answers one player's parade decision, then resumes the
// draw once the round completes.
func (f *Flow) WatchDecide(ctx context.Context, targetID string, watch bool) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*watchRoundPending)
	if !ok {
		f.logf("[EVENT] No pending interactive.")
		return f.startTurn(ctx)
	}
	out := f.game.decideWatch(p, targetID, watch)
	if out.Pending != nil {
		f.pending = out.Pending
		return f.saveInfo(ctx, f.pendingInfo(out))
	}
	f.pending = nil
	if out.Kind.Terminal() {
		f.logf("[EVENT] %s: %s", out.Kind, out.Payload.describe())
	}
	return f.afterGlobalEffect(ctx)
}

// VolunteerHelp resolves the volunteer's decision on a failed gate.
func (f *Flow) VolunteerHelp(ctx context.Context, agree bool) (Info, error) {
	if f.game.Session.GameOver {
		return f.gameOverInfo(), nil
	}
	p, ok := f.pending.(*helpPending)
	if !ok {
		f.logf("[HELP] No pending interactive.")
		return f.startTurn(ctx)
	}
	return f.resolveProtocol(ctx, "HELP", f.game.decideHelp(p, agree))
}

// resolveProtocol routes a protocol outcome: pendings go back to the
// driver, terminal results are logged and end the turn.
func (f *Flow) resolveProtocol(ctx context.Context, tag string, out Outcome) (Info, error) {
	if out.Pending != nil {
		f.pending = out.Pending
		return f.saveInfo(ctx, f.pendingInfo(out))
	}
	f.pending = nil
	if out.Kind.Terminal() {
		f.logf("[%s] %s: %s", tag, out.Kind, out.Payload.describe())
	}
	return f.endTurn(ctx)
}

// pendingInfo maps a paused outcome to the driver document.
func (f *Flow) pendingInfo(out Outcome) Info {
	p := out.Pending
	current := f.Current()
	info := Info{
		UIMode:     p.Mode(),
		RoleID:     current,
		RoleName:   f.cat.RoleName(current),
		ActorID:    p.Actor(),
		Targets:    out.Payload.Targets,
		TargetID:   out.Payload.TargetID,
		Partners:   out.Payload.Partners,
		PartnerID:  out.Payload.PartnerID,
		Items:      out.Payload.Items,
		Options:    out.Payload.Options,
		Price:      out.Payload.Price,
		HelpAction: out.Payload.HelpAction,
		Error:      out.Payload.Error,
	}
	if ex, ok := p.(*exchangePending); ok {
		switch ex.stage {
		case exchangeActorItem:
			info.Stage = "actor_item"
		case exchangeTargetItem:
			info.Stage = "target_item"
		}
	}
	return info
}

func (f *Flow) endTurn(ctx context.Context) (Info, error) {
	f.game.Session.LastEventContext = nil
	f.event = nil
	f.eventInfo = nil
	f.pending = nil
	f.pendingCost = nil
	f.pendingRoleEffect = nil

	for _, id := range f.game.Session.Players {
		f.logf("%s", f.game.statusLine(id))
	}

	if f.sweepVictories() || f.game.Session.GameOver {
		return f.gameEnd(ctx)
	}

	f.turn++
	if f.turn >= len(f.game.Session.Players) {
		f.turn = 0
		f.game.Session.RoundsCompleted++
	}
	return f.startTurn(ctx)
}

// sweepVictories checks every player's win predicate. All predicates
// firing on the same sweep co-win.
func (f *Flow) sweepVictories() bool {
	fired := false
	for _, roleID := range f.game.Session.Players {
		p := f.game.Player(roleID)
		if p.WinGame {
			fired = true
			continue
		}
		role, err := f.cat.Role(roleID)
		if err != nil || role.Victory == nil {
			continue
		}
		check, ok := f.victories[role.Victory.ID]
		if !ok {
			continue
		}
		if check(f.game, roleID, f.cat.VictoryParams(*role.Victory)) {
			p.WinGame = true
			fired = true
			f.logf("[VICTORY] %s reached their goal!", f.cat.RoleName(roleID))
		}
	}
	if fired {
		f.game.Session.EndGame(reasonVictory)
	}
	return fired
}

func (f *Flow) gameEnd(ctx context.Context) (Info, error) {
	sess := f.game.Session
	winners := f.game.calcWinners()
	info := Info{
		UIMode:   ModeGameOver,
		GameOver: true,
		Reason:   sess.GameOverReason,
		Winners:  winners,
	}
	if f.recorded {
		f.last = info
		return info, nil
	}
	f.recorded = true

	f.logf("\n=== GAME OVER ===")
	if len(winners) == 0 {
		f.logf("No winner.")
	} else {
		names := make([]string, len(winners))
		for i, id := range winners {
			names[i] = f.cat.RoleName(id)
		}
		f.logf("Winner(s): %s", strings.Join(names, ", "))
	}

	if err := f.saveAll(ctx); err != nil {
		return info, err
	}
	if err := stats.UpdateWinrate(ctx, f.store, sess.Players, winners); err != nil {
		return info, fmt.Errorf("update winrate: %w", err)
	}
	record := storage.GameRecord{
		ID:          sess.ID,
		Players:     sess.Players,
		Winners:     winners,
		Rounds:      sess.RoundsCompleted,
		EventsDrawn: sess.EventsDrawn,
		Reason:      sess.GameOverReason,
	}
	if err := f.recorder.Record(ctx, record); err != nil {
		return info, fmt.Errorf("record game: %w", err)
	}
	f.last = info
	return info, nil
}

func (f *Flow) gameOverInfo() Info {
	sess := f.game.Session
	return Info{
		UIMode:   ModeGameOver,
		GameOver: true,
		Reason:   sess.GameOverReason,
		Winners:  f.game.calcWinners(),
	}
}

func (f *Flow) saveAll(ctx context.Context) error {
	if f.store == nil {
		return nil
	}
	sess := f.game.Session
	for _, id := range sess.Players {
		if err := f.store.PutPlayer(ctx, sess.ID, *f.game.Player(id)); err != nil {
			return fmt.Errorf("save player %s: %w", id, err)
		}
	}
	if err := f.store.PutSession(ctx, *sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (f *Flow) saveInfo(ctx context.Context, info Info) (Info, error) {
	if err := f.saveAll(ctx); err != nil {
		return info, err
	}
	f.last = info
	return info, nil
}

// renderOptions flattens cost options for the transcript, steps joined
// by commas and options by pipes.
func renderOptions(options []catalog.CostOption) string {
	parts := make([]string, 0, len(options))
	for _, opt := range options {
		steps := make([]string, 0, len(opt.Costs))
		for _, step := range opt.Costs {
			steps = append(steps, fmt.Sprintf("%s%+d", step.Resource, step.Delta))
		}
		parts = append(parts, strings.Join(steps, ", "))
	}
	return strings.Join(parts, " | ")
}
