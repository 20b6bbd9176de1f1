package game

import (
	"context"
	"fmt"

	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/errors"
)

// Info is the document a driver renders after every operation: the UI
// mode plus whatever that mode needs. Empty fields are omitted on the
// wire.
type Info struct {
	UIMode   string `json:"ui_mode"`
	RoleID   string `json:"role_id,omitempty"`
	RoleName string `json:"role_name,omitempty"`
	// ActorID is the player the prompt addresses, which differs from
	// RoleID while a consent or decision is pending.
	ActorID string `json:"actor_id,omitempty"`

	CanDraw     bool `json:"can_draw,omitempty"`
	CanUseSkill bool `json:"can_use_skill,omitempty"`
	CanSkip     bool `json:"can_skip,omitempty"`
	HasSkill    bool `json:"has_skill,omitempty"`
	CanTrigger  bool `json:"can_trigger,omitempty"`

	RoleEffectID    string `json:"role_effect_id,omitempty"`
	RoleEffectType  string `json:"role_effect_type,omitempty"`
	RoleEffectLabel string `json:"role_effect_label,omitempty"`

	// Stage disambiguates multi-step choices within one UI mode.
	Stage string `json:"stage,omitempty"`

	Targets    []string             `json:"targets,omitempty"`
	TargetID   string               `json:"target_id,omitempty"`
	Partners   []string             `json:"partners,omitempty"`
	PartnerID  string               `json:"partner_id,omitempty"`
	Items      []TradeItem          `json:"items,omitempty"`
	Options    []SwapOption         `json:"options,omitempty"`
	Choices    []catalog.CostOption `json:"choices,omitempty"`
	Price      int                  `json:"price,omitempty"`
	HelpAction string               `json:"help_action,omitempty"`
	Error      string               `json:"error,omitempty"`

	GameOver bool     `json:"game_over,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Winners  []string `json:"winners,omitempty"`
}

// ActionParams carries the optional arguments of a dispatched action.
// Pointers tell an absent field apart from a zero value.
type ActionParams struct {
	Index       *int   `json:"index,omitempty"`
	ItemIndex   *int   `json:"item_index,omitempty"`
	OptionIndex *int   `json:"option_index,omitempty"`
	TargetID    string `json:"target_id,omitempty"`
	PartnerID   string `json:"partner_id,omitempty"`
	Choice      string `json:"choice,omitempty"`
	Agree       *bool  `json:"agree,omitempty"`
	Watch       *bool  `json:"watch,omitempty"`
	Accept      *bool  `json:"accept,omitempty"`
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Dispatch routes one named action to its flow operation. The action
// vocabulary is the engine's wire contract; every driver speaks it.
func (f *Flow) Dispatch(ctx context.Context, action string, params ActionParams) (Info, error) {
	switch action {
	case "request_draw":
		return f.RequestDraw(ctx)
	case "choose_draw_cost":
		return f.ChooseDrawCost(ctx, intOr(params.Index, -1))
	case "request_no_draw_choice":
		return f.RequestNoDrawChoice(ctx)
	case "use_active_skill":
		return f.UseActiveSkill(ctx)
	case "skip_turn":
		return f.SkipTurn(ctx)
	case "trigger_role_effect":
		return f.TriggerRoleEffect(ctx)
	case "skip_role_effect":
		return f.SkipRoleEffect(ctx)
	case "event_choose_target":
		return f.EventChooseTarget(ctx, params.TargetID)
	case "watch_decide":
		return f.WatchDecide(ctx, params.TargetID, boolOr(params.Watch, false))
	case "photo_choose_target":
		return f.PhotoChooseTarget(ctx, params.TargetID)
	case "photo_consent":
		return f.PhotoConsent(ctx, boolOr(params.Agree, false))
	case "trade_choose_item":
		return f.TradeChooseItem(ctx, intOr(params.ItemIndex, -1))
	case "trade_choose_partner":
		return f.TradeChoosePartner(ctx, params.PartnerID)
	case "trade_consent":
		return f.TradeConsent(ctx, boolOr(params.Agree, false))
	case "food_offer_decide":
		return f.FoodOfferDecide(ctx, params.TargetID, boolOr(params.Accept, false))
	case "perform_watch_decide":
		return f.PerformWatchDecide(ctx, params.TargetID, boolOr(params.Watch, false))
	case "perform_watch_benefit":
		return f.PerformWatchBenefit(ctx, params.TargetID, params.Choice)
	case "gift_choose_target":
		return f.GiftChooseTarget(ctx, params.TargetID)
	case "exchange_choose_target":
		return f.ExchangeChooseTarget(ctx, params.TargetID)
	case "exchange_choose_option":
		return f.ExchangeChooseOption(ctx, intOr(params.OptionIndex, -1))
	case "exchange_consent":
		return f.ExchangeConsent(ctx, boolOr(params.Agree, false))
	case "volunteer_help":
		return f.VolunteerHelp(ctx, boolOr(params.Agree, false))
	default:
		return Info{}, errors.New(errors.CodeActionUnknown, fmt.Sprintf("Unknown action: %s", action))
	}
}
