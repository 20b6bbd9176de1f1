package state

import (
	"encoding/json"
	"testing"

	"pgregory.net/rapid"
)

func TestPlayerGetMissingKey(t *testing.T) {
	p := NewPlayer(RoleFinn)
	if got := p.Get(ResourceMoney); got != 0 {
		t.Fatalf("expected 0 for missing key, got %d", got)
	}

	var nilPlayer *Player
	if got := nilPlayer.Get(ResourceMoney); got != 0 {
		t.Fatalf("expected 0 for nil player, got %d", got)
	}
}

func TestPlayerAddClampsAtZero(t *testing.T) {
	tests := []struct {
		name  string
		start int
		delta int
		want  int
	}{
		{name: "gain", start: 2, delta: 3, want: 5},
		{name: "spend", start: 2, delta: -1, want: 1},
		{name: "overspend clamps", start: 1, delta: -2, want: 0},
		{name: "spend from empty", start: 0, delta: -5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer(RoleTourist)
			p.Set(ResourceStamina, tt.start)
			p.Add(ResourceStamina, tt.delta)
			if got := p.Get(ResourceStamina); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestPlayerCanPay(t *testing.T) {
	p := NewPlayer(RoleVendor)
	p.Set(ResourceMoney, 1)

	if !p.CanPay(ResourceMoney, -1) {
		t.Fatal("expected to afford exact balance")
	}
	if p.CanPay(ResourceMoney, -2) {
		t.Fatal("expected overspend to be unaffordable")
	}
	if !p.CanPay(ResourceMoney, 0) {
		t.Fatal("expected zero delta to be payable")
	}
}

func TestPlayerStatusNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := NewPlayer(RolePerformer)
		keys := []string{ResourceStamina, ResourceCuriosity, ResourceMoney, ResourceProduct}

		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			key := rapid.SampledFrom(keys).Draw(t, "key")
			delta := rapid.IntRange(-10, 10).Draw(t, "delta")
			p.Add(key, delta)
		}

		for _, key := range keys {
			if p.Get(key) < 0 {
				t.Fatalf("status %q went negative: %d", key, p.Get(key))
			}
		}
	})
}

func TestAddUnique(t *testing.T) {
	set := AddUnique(nil, RoleFinn)
	set = AddUnique(set, RoleTourist)
	set = AddUnique(set, RoleFinn)
	set = AddUnique(set, "")

	if len(set) != 2 {
		t.Fatalf("expected 2 members, got %d: %v", len(set), set)
	}
}

func TestCountUniqueExcludesSelf(t *testing.T) {
	set := []string{RoleFinn, RoleTourist, RoleVendor, RoleVendor, ""}
	if got := CountUnique(set, RoleVendor); got != 2 {
		t.Fatalf("expected 2 unique members, got %d", got)
	}
	if got := CountUnique(set, ""); got != 3 {
		t.Fatalf("expected 3 unique members, got %d", got)
	}
}

func TestSessionEndGameKeepsFirstReason(t *testing.T) {
	s := &Session{ID: "game-1"}
	s.EndGame("first")
	s.EndGame("second")

	if !s.GameOver {
		t.Fatal("expected game over")
	}
	if s.GameOverReason != "first" {
		t.Fatalf("expected first reason to stick, got %q", s.GameOverReason)
	}
}

func TestSessionDrawnTracking(t *testing.T) {
	s := &Session{ID: "game-1"}
	if s.Drawn("event_1") {
		t.Fatal("expected event_1 undrawn")
	}

	s.MarkDrawn("event_1")
	s.MarkDrawn("event_5")

	if !s.Drawn("event_1") || !s.Drawn("event_5") {
		t.Fatal("expected drawn events to be tracked")
	}
	if s.Drawn("event_2") {
		t.Fatal("expected event_2 undrawn")
	}
}

func TestPlayerJSONRoundTrip(t *testing.T) {
	p := NewPlayer(RoleVendor)
	p.Set(ResourceMoney, 3)
	p.Counters.TradesDone = 2
	p.Counters.TradePartners = []string{RoleFinn, RoleTourist}
	p.Trade().PriceMod = 2
	p.Trade().PriceOverride = map[string]int{ResourceProduct: 1}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal player: %v", err)
	}

	var got Player
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal player: %v", err)
	}
	if got.RoleID != RoleVendor || got.Get(ResourceMoney) != 3 {
		t.Fatalf("unexpected round trip result: %+v", got)
	}
	if got.Counters.TradesDone != 2 || len(got.Counters.TradePartners) != 2 {
		t.Fatalf("counters lost in round trip: %+v", got.Counters)
	}
	if got.TradeState == nil || got.TradeState.PriceMod != 2 {
		t.Fatalf("trade state lost in round trip: %+v", got.TradeState)
	}
}
