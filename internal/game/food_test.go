package game

import (
	"testing"

	"github.com/louisbranch/koningsdag/internal/game/state"
)

func TestFoodOfferRoundSuccess(t *testing.T) {
	g := testGame(t, state.RoleFoodVendor)
	seller := g.Player(state.RoleFoodVendor)

	out := g.startFood(state.RoleFoodVendor, Policy{MinEaters: 2, Price: 1})
	if out.Kind != OutcomeNeedDecision || out.Payload.Price != 1 {
		t.Fatalf("expected the first offer, got %s %+v", out.Kind, out.Payload)
	}
	p := out.Pending.(*foodPending)

	out = g.decideFoodOffer(p, state.RoleFinn, true)
	if out.Kind != OutcomeNeedDecision || out.Payload.TargetID != state.RoleTourist {
		t.Fatalf("expected the next eater, got %s %+v", out.Kind, out.Payload)
	}
	out = g.decideFoodOffer(p, state.RoleTourist, true)
	if out.Kind != OutcomeDone || !out.Payload.OK {
		t.Fatalf("expected the round to succeed, got %s %+v", out.Kind, out.Payload)
	}

	finn := g.Player(state.RoleFinn)
	if finn.Get(state.ResourceMoney) != 1 || finn.Get(state.ResourceStamina) != 5 {
		t.Fatalf("eater side wrong: %v", finn.Status)
	}
	if seller.Get(state.ResourceMoney) != 4 {
		t.Fatalf("expected two sales collected, got %d", seller.Get(state.ResourceMoney))
	}
	if seller.Get(state.ResourceProgress) != 1 || seller.Counters.FeedSuccesses != 1 {
		t.Fatalf("seller not credited: %v %+v", seller.Status, seller.Counters)
	}
	if len(seller.Counters.FeedEaters) != 2 {
		t.Fatalf("expected both eaters remembered, got %v", seller.Counters.FeedEaters)
	}
}

func TestFoodOfferRoundFallsShort(t *testing.T) {
	g := testGame(t, state.RoleFoodVendor)
	seller := g.Player(state.RoleFoodVendor)
	finn := g.Player(state.RoleFinn)

	out := g.startFood(state.RoleFoodVendor, Policy{MinEaters: 2, Price: 1})
	p := out.Pending.(*foodPending)

	g.decideFoodOffer(p, state.RoleFinn, true)
	out = g.decideFoodOffer(p, state.RoleTourist, false)
	if out.Kind != OutcomeDone || out.Payload.OK || out.Payload.Reason != "not_enough_eaters" {
		t.Fatalf("expected the round to fall short, got %s %+v", out.Kind, out.Payload)
	}

	// Finn's purchase stands even though the round failed.
	if finn.Get(state.ResourceMoney) != 1 || finn.Get(state.ResourceStamina) != 5 {
		t.Fatalf("expected the individual sale kept: %v", finn.Status)
	}
	if seller.Get(state.ResourceMoney) != 3 {
		t.Fatalf("expected one sale collected, got %d", seller.Get(state.ResourceMoney))
	}
	if seller.Get(state.ResourceProgress) != 0 || seller.Counters.FeedSuccesses != 0 {
		t.Fatal("expected no round credit when falling short")
	}
}

func TestFoodGate(t *testing.T) {
	tests := []struct {
		name  string
		eater string
		pol   Policy
		setup func(g *Game)
		want  bool
	}{
		{
			name:  "curious and funded",
			eater: state.RoleFinn,
			pol:   Policy{Price: 1},
			setup: func(g *Game) {},
			want:  true,
		},
		{
			name:  "not curious enough",
			eater: state.RoleFinn,
			pol:   Policy{Price: 1},
			setup: func(g *Game) { g.Player(state.RoleFinn).Set(state.ResourceCuriosity, 1) },
			want:  false,
		},
		{
			name:  "raised appetite bar",
			eater: state.RoleFinn,
			pol:   Policy{Price: 1, CostPlus: 2},
			setup: func(g *Game) {},
			want:  false,
		},
		{
			name:  "broke",
			eater: state.RoleFinn,
			pol:   Policy{Price: 1},
			setup: func(g *Game) { g.Player(state.RoleFinn).Set(state.ResourceMoney, 0) },
			want:  false,
		},
		{
			name:  "finn eats free",
			eater: state.RoleFinn,
			pol:   Policy{Price: 1, FinnFree: true},
			setup: func(g *Game) { g.Player(state.RoleFinn).Set(state.ResourceMoney, 0) },
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGame(t, state.RoleFoodVendor)
			tt.setup(g)
			p := &foodPending{actor: state.RoleFoodVendor, price: tt.pol.Price, policy: tt.pol}
			if got := g.foodGate(p, tt.eater); got != tt.want {
				t.Fatalf("expected %t, got %t", tt.want, got)
			}
		})
	}
}

func TestFoodFinnFreeMovesNoMoney(t *testing.T) {
	g := testGame(t, state.RoleFoodVendor)
	seller := g.Player(state.RoleFoodVendor)
	finn := g.Player(state.RoleFinn)
	finn.Set(state.ResourceMoney, 0)

	out := g.startFood(state.RoleFoodVendor, Policy{MinEaters: 1, Price: 1, FinnFree: true})
	p := out.Pending.(*foodPending)
	g.decideFoodOffer(p, state.RoleFinn, true)
	out = g.decideFoodOffer(p, state.RoleTourist, false)
	if !out.Payload.OK {
		t.Fatalf("expected the giveaway round to succeed, got %+v", out.Payload)
	}
	if finn.Get(state.ResourceMoney) != 0 || seller.Get(state.ResourceMoney) != 2 {
		t.Fatal("expected no money to move for finn's free snack")
	}
	if finn.Get(state.ResourceStamina) != 5 {
		t.Fatalf("expected the free snack to restore stamina, got %d", finn.Get(state.ResourceStamina))
	}
}

func TestFoodForceAcceptStillGated(t *testing.T) {
	g := testGame(t, state.RoleFoodVendor)
	tourist := g.Player(state.RoleTourist)
	tourist.Set(state.ResourceMoney, 0)

	out := g.startFood(state.RoleFoodVendor, Policy{MinEaters: 1, Price: 1, ForceAccept: true})
	p := out.Pending.(*foodPending)
	if p.Mode() != ModeFoodOfferForce {
		t.Fatalf("expected the forced offer mode, got %s", p.Mode())
	}

	// Declining is overridden, but the broke eater still fails the gate.
	out = g.decideFoodOffer(p, state.RoleFinn, false)
	if out.Kind != OutcomeNeedDecision || out.Payload.TargetID != state.RoleTourist {
		t.Fatalf("expected finn fed and the next eater asked, got %s %+v", out.Kind, out.Payload)
	}
	out = g.decideFoodOffer(p, state.RoleTourist, false)
	if !out.Payload.OK {
		t.Fatalf("expected the round to succeed on finn alone, got %+v", out.Payload)
	}
	if tourist.Get(state.ResourceStamina) != 4 {
		t.Fatal("expected the broke eater skipped despite the force")
	}
}

func TestFoodInvalidTargetReprompts(t *testing.T) {
	g := testGame(t, state.RoleFoodVendor)

	out := g.startFood(state.RoleFoodVendor, Policy{MinEaters: 1, Price: 1})
	p := out.Pending.(*foodPending)

	out = g.decideFoodOffer(p, state.RoleTourist, true)
	if out.Kind != OutcomeNeedDecision || out.Payload.Error != "invalid_target" {
		t.Fatalf("expected the out-of-turn answer refused, got %s %+v", out.Kind, out.Payload)
	}
	if out.Payload.TargetID != state.RoleFinn {
		t.Fatalf("expected the prompt to stay on finn, got %q", out.Payload.TargetID)
	}
}
