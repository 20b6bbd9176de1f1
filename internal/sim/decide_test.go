package sim

import (
	"testing"

	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/game"
	"github.com/louisbranch/koningsdag/internal/game/state"
)

func testGame(t *testing.T, roles ...string) *game.Game {
	t.Helper()
	g, err := game.NewGame(catalog.Default(), "sim-test", roles)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g
}

func setStatus(g *game.Game, roleID string, pairs map[string]int) {
	p := g.Player(roleID)
	for key, value := range pairs {
		p.Set(key, value)
	}
}

func TestPickTargetsByProgress(t *testing.T) {
	g := testGame(t, state.RoleVendor)
	setStatus(g, state.RoleFinn, map[string]int{state.ResourceProgress: 2})
	setStatus(g, state.RoleTourist, map[string]int{state.ResourceProgress: 1, state.ResourceMoney: 5})
	setStatus(g, state.RoleVendor, map[string]int{state.ResourceProgress: 1, state.ResourceMoney: 3})

	targets := []string{state.RoleFinn, state.RoleTourist, state.RoleVendor}
	if got := pickTargetHighProgress(g, targets); got != state.RoleFinn {
		t.Fatalf("high pick = %q, want %q", got, state.RoleFinn)
	}
	if got := pickTargetLowProgress(g, targets); got != state.RoleVendor {
		t.Fatalf("low pick = %q, want %q", got, state.RoleVendor)
	}
	if got := pickTargetHighProgress(g, nil); got != "" {
		t.Fatalf("empty pick = %q, want empty", got)
	}
}

func TestPickTradePartnerPrefersMoney(t *testing.T) {
	g := testGame(t, state.RoleVendor)
	setStatus(g, state.RoleTourist, map[string]int{state.ResourceMoney: 1})
	setStatus(g, state.RoleVendor, map[string]int{state.ResourceMoney: 4})

	got := pickTradePartner(g, []string{state.RoleTourist, state.RoleVendor})
	if got != state.RoleVendor {
		t.Fatalf("partner = %q, want %q", got, state.RoleVendor)
	}
}

func TestPickTargetOrangeRich(t *testing.T) {
	g := testGame(t, state.RoleVendor)
	setStatus(g, state.RoleTourist, map[string]int{state.ResourceOrangeWorn: 1})
	setStatus(g, state.RoleVendor, map[string]int{state.ResourceOrange: 2})

	got := pickTargetOrangeRich(g, []string{state.RoleTourist, state.RoleVendor})
	if got != state.RoleVendor {
		t.Fatalf("target = %q, want %q", got, state.RoleVendor)
	}
}

func TestPickExchangeOption(t *testing.T) {
	options := []game.SwapOption{
		{Kind: state.ResourceProduct},
		{Kind: state.ResourceOrangeWorn},
		{Kind: state.ResourceOrange},
	}

	if got := pickExchangeOption(options, true); got != 1 {
		t.Fatalf("high option = %d, want 1", got)
	}
	if got := pickExchangeOption(options, false); got != 0 {
		t.Fatalf("low option = %d, want 0", got)
	}
}

func TestChooseDrawCostPrefersCheapResource(t *testing.T) {
	g := testGame(t)
	setStatus(g, state.RoleFinn, map[string]int{
		state.ResourceStamina: 3,
		state.ResourceMoney:   3,
	})

	moneyOption := catalog.CostOption{Costs: []catalog.CostStep{{Resource: state.ResourceMoney, Delta: -1}}}
	staminaOption := catalog.CostOption{Costs: []catalog.CostStep{{Resource: state.ResourceStamina, Delta: -1}}}

	if got := chooseDrawCost(g, state.RoleFinn, []catalog.CostOption{moneyOption, staminaOption}); got != 0 {
		t.Fatalf("choice = %d, want money option", got)
	}
	if got := chooseDrawCost(g, state.RoleFinn, []catalog.CostOption{staminaOption, moneyOption}); got != 1 {
		t.Fatalf("choice = %d, want money option after reorder", got)
	}
}

func TestDecidePhotoConsent(t *testing.T) {
	tests := []struct {
		name   string
		target string
		pol    game.Policy
		status map[string]int
		want   bool
	}{
		{name: "no target", target: "", want: false},
		{name: "finn always agrees", target: state.RoleFinn, want: true},
		{
			name:   "forced consent",
			target: state.RoleVendor,
			pol:    game.Policy{ForceAgree: true},
			status: map[string]int{state.ResourceMoney: 9},
			want:   true,
		},
		{
			name:   "broke target takes the fee",
			target: state.RoleVendor,
			status: map[string]int{state.ResourceMoney: 0, state.ResourceCuriosity: 5},
			want:   true,
		},
		{
			name:   "rich target refuses",
			target: state.RoleVendor,
			status: map[string]int{state.ResourceMoney: 2, state.ResourceCuriosity: 5},
			want:   false,
		},
		{
			name:   "wearing orange forces consent",
			target: state.RoleVendor,
			pol:    game.Policy{ForceWear: true},
			status: map[string]int{state.ResourceMoney: 2, state.ResourceOrangeWorn: 1, state.ResourceCuriosity: 5},
			want:   true,
		},
		{
			name:   "refusal penalty too steep",
			target: state.RoleVendor,
			pol:    game.Policy{RefuseCuriosityDelta: -1},
			status: map[string]int{state.ResourceMoney: 2, state.ResourceCuriosity: 2},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGame(t, state.RoleVendor)
			if tt.target != "" && tt.status != nil {
				setStatus(g, tt.target, tt.status)
			}
			if got := decidePhotoConsent(g, tt.pol, tt.target); got != tt.want {
				t.Fatalf("consent = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestDecideTradeConsent(t *testing.T) {
	orangeOffer := game.Info{Items: []game.TradeItem{{Kind: state.ResourceOrange}}, Price: 2}

	tests := []struct {
		name   string
		pol    game.Policy
		info   game.Info
		status map[string]int
		want   bool
	}{
		{name: "forced", pol: game.Policy{ForceAgree: true}, info: orangeOffer, want: true},
		{
			name:   "cannot outspend the price",
			info:   orangeOffer,
			status: map[string]int{state.ResourceMoney: 2},
			want:   false,
		},
		{
			name:   "wants a first orange",
			info:   orangeOffer,
			status: map[string]int{state.ResourceMoney: 3},
			want:   true,
		},
		{
			name:   "already owns orange",
			info:   orangeOffer,
			status: map[string]int{state.ResourceMoney: 3, state.ResourceOrangeWorn: 1},
			want:   false,
		},
		{
			name:   "festival food never tempts",
			info:   game.Info{Items: []game.TradeItem{{Kind: state.ResourceFood}}, Price: 1},
			status: map[string]int{state.ResourceMoney: 5},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGame(t)
			if tt.status != nil {
				setStatus(g, state.RoleTourist, tt.status)
			}
			if got := decideTradeConsent(g, tt.pol, tt.info, state.RoleTourist); got != tt.want {
				t.Fatalf("consent = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestDecideExchangeConsent(t *testing.T) {
	offer := game.Info{Options: []game.SwapOption{
		{Kind: state.ResourceOrange},
		{Kind: state.ResourceProduct},
	}}
	if !decideExchangeConsent(game.Policy{}, offer) {
		t.Fatal("should accept receiving the better item")
	}

	badDeal := game.Info{Options: []game.SwapOption{
		{Kind: state.ResourceProduct},
		{Kind: state.ResourceOrangeWorn},
	}}
	if decideExchangeConsent(game.Policy{}, badDeal) {
		t.Fatal("should refuse trading down")
	}
	if !decideExchangeConsent(game.Policy{ForceAgree: true}, badDeal) {
		t.Fatal("forced consent should accept anything")
	}
}

func TestDecideFoodAccept(t *testing.T) {
	tests := []struct {
		name   string
		pol    game.Policy
		eater  string
		status map[string]int
		want   bool
	}{
		{
			name:   "not curious enough",
			eater:  state.RoleTourist,
			status: map[string]int{state.ResourceCuriosity: 1, state.ResourceMoney: 3, state.ResourceStamina: 1},
			want:   false,
		},
		{
			name:   "not tired enough",
			eater:  state.RoleTourist,
			status: map[string]int{state.ResourceCuriosity: 3, state.ResourceMoney: 3, state.ResourceStamina: 3},
			want:   false,
		},
		{
			name:   "tired curious and funded",
			eater:  state.RoleTourist,
			status: map[string]int{state.ResourceCuriosity: 3, state.ResourceMoney: 3, state.ResourceStamina: 1},
			want:   true,
		},
		{
			name:   "broke eater declines",
			eater:  state.RoleTourist,
			status: map[string]int{state.ResourceCuriosity: 3, state.ResourceMoney: 0, state.ResourceStamina: 1},
			want:   false,
		},
		{
			name:   "finn eats free",
			pol:    game.Policy{FinnFree: true},
			eater:  state.RoleFinn,
			status: map[string]int{state.ResourceCuriosity: 3, state.ResourceMoney: 0, state.ResourceStamina: 1},
			want:   true,
		},
		{
			name:   "surcharge raises the bar",
			pol:    game.Policy{CostPlus: 1},
			eater:  state.RoleTourist,
			status: map[string]int{state.ResourceCuriosity: 2, state.ResourceMoney: 3, state.ResourceStamina: 1},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGame(t)
			setStatus(g, tt.eater, tt.status)
			info := game.Info{TargetID: tt.eater, Price: 1}
			if got := decideFoodAccept(g, tt.pol, info); got != tt.want {
				t.Fatalf("accept = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestDecidePerformWatchAndBenefit(t *testing.T) {
	g := testGame(t)

	setStatus(g, state.RoleTourist, map[string]int{
		state.ResourceCuriosity: 1, state.ResourceStamina: 1, state.ResourceMoney: 3,
	})
	if decidePerformWatch(g, state.RoleTourist) {
		t.Fatal("low curiosity should skip the show")
	}

	setStatus(g, state.RoleTourist, map[string]int{
		state.ResourceCuriosity: 4, state.ResourceStamina: 1,
	})
	if !decidePerformWatch(g, state.RoleTourist) {
		t.Fatal("tired watcher should watch")
	}
	if got := choosePerformBenefit(g, state.RoleTourist); got != game.BenefitStamina {
		t.Fatalf("benefit = %q, want %q", got, game.BenefitStamina)
	}

	setStatus(g, state.RoleTourist, map[string]int{
		state.ResourceCuriosity: 2, state.ResourceStamina: 3, state.ResourceMoney: 1,
	})
	if !decidePerformWatch(g, state.RoleTourist) {
		t.Fatal("cheap curiosity should draw a watcher")
	}
	if got := choosePerformBenefit(g, state.RoleTourist); got != game.BenefitMoney {
		t.Fatalf("benefit = %q, want %q", got, game.BenefitMoney)
	}
}

func TestDecideHelpOnlyForNewActionTypes(t *testing.T) {
	g := testGame(t, state.RoleVolunteer)
	vol := g.Player(state.RoleVolunteer)
	vol.Counters.HelpTypes = []string{"try_photo"}

	if decideHelp(g, "try_photo") {
		t.Fatal("repeat help type should be declined")
	}
	if !decideHelp(g, "try_trade") {
		t.Fatal("new help type should be accepted")
	}

	noVolunteer := testGame(t)
	if decideHelp(noVolunteer, "try_photo") {
		t.Fatal("absent volunteer cannot help")
	}
}
