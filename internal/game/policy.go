package game

import "github.com/louisbranch/koningsdag/internal/catalog"

// TargetStrategy selects which players a transaction may address.
type TargetStrategy string

const (
	// TargetAllOthers offers every eligible player except the actor.
	TargetAllOthers TargetStrategy = ""
	// TargetLowestCuriosity restricts the offer to the least curious
	// eligible player.
	TargetLowestCuriosity TargetStrategy = "lowest_curiosity"
	// TargetLowestStamina restricts the offer to the most tired
	// eligible player.
	TargetLowestStamina TargetStrategy = "lowest_stamina"
	// TargetEventSelected addresses the player picked during the event
	// card's target step.
	TargetEventSelected TargetStrategy = "event_selected"
	// TargetWatcherList addresses the players who watched the parade
	// this event.
	TargetWatcherList TargetStrategy = "watcher_list"
)

// RefusePolicy is what happens when a counterparty refuses.
type RefusePolicy string

const (
	// RefuseNone ends the attempt with a rejected result.
	RefuseNone RefusePolicy = ""
	// RefusePhotoFallback converts a refused exchange into a forced
	// photo attempt against the same target.
	RefusePhotoFallback RefusePolicy = "photo_fallback"
	// RefuseRefund returns 1 money to the actor on refusal.
	RefuseRefund RefusePolicy = "refund"
)

// Policy tunes one transaction run. Event cards and skills bind the
// same protocols with different policies instead of shipping one
// wrapper function per variant.
type Policy struct {
	Targets TargetStrategy
	Partner TargetStrategy

	ForceAgree  bool
	ForceAccept bool
	IgnoreGate  bool
	SkipCost    bool

	// ForceWear forces consent when the photo target wears at least
	// one orange item.
	ForceWear bool
	// WearFirst makes the chosen photo target put on an orange item
	// before the forced shot.
	WearFirst bool
	// RefuseCuriosityDelta is applied to the target's curiosity when
	// they refuse a photo.
	RefuseCuriosityDelta int

	OnRefuse RefusePolicy

	MinEaters    int
	Price        int
	CostPlus     int
	BonusStamina int
	FinnFree     bool

	RequiredSuccess int

	// Stat and Amount parameterize the plain stat effects and gifts.
	Stat   string
	Amount int
}

// policyFromParams binds card parameters to a policy. Missing keys keep
// the protocol defaults.
func policyFromParams(params catalog.Params) Policy {
	return Policy{
		Targets: TargetStrategy(params.String("target", "")),
		Partner: TargetStrategy(params.String("partner_filter", "")),

		ForceAgree:  params.Bool("force_agree", false),
		ForceAccept: params.Bool("force_accept", false),
		IgnoreGate:  params.Bool("ignore_gate", false),
		SkipCost:    params.Bool("skip_cost", false),

		ForceWear:            params.Bool("force_if_target_wear", false),
		RefuseCuriosityDelta: params.Int("reject_target_curiosity_delta", 0),

		OnRefuse: RefusePolicy(params.String("on_refuse", "")),

		MinEaters:    params.Int("min_eaters", 2),
		Price:        params.Int("price", 1),
		CostPlus:     params.Int("cost_plus", 0),
		BonusStamina: params.Int("bonus_stamina", 0),
		FinnFree:     params.Bool("finn_free", false),

		RequiredSuccess: params.Int("required_success", 2),

		Stat:   params.String("stat", ""),
		Amount: params.Int("amount", 0),
	}
}
