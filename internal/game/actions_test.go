package game

import (
	"context"
	"testing"

	"github.com/louisbranch/koningsdag/internal/errors"
	"github.com/louisbranch/koningsdag/internal/game/state"
)

func TestDispatchUnknownAction(t *testing.T) {
	f := testFlow(t)
	f.StartGame(context.Background())

	_, err := f.Dispatch(context.Background(), "dance", ActionParams{})
	if !errors.IsCode(err, errors.CodeActionUnknown) {
		t.Fatalf("expected an unknown-action error, got %v", err)
	}
	if got := err.Error(); got != "Unknown action: dance" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestDispatchRoutesActions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		action string
		params ActionParams
		mode   string
	}{
		{"skip advances the turn", "skip_turn", ActionParams{}, ModeTurn},
		{"draw opens the cost choice", "request_draw", ActionParams{}, ModeDrawCostChoice},
		{"no-draw menu", "request_no_draw_choice", ActionParams{}, ModeNoDrawChoice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFlow(t)
			f.StartGame(ctx)
			info, err := f.Dispatch(ctx, tt.action, tt.params)
			if err != nil {
				t.Fatalf("dispatch %s: %v", tt.action, err)
			}
			if info.UIMode != tt.mode {
				t.Fatalf("expected %s, got %s", tt.mode, info.UIMode)
			}
		})
	}
}

func TestDispatchMissingIndexReprompts(t *testing.T) {
	f := testFlow(t)
	ctx := context.Background()
	leaveOnly(f, "event_12")
	f.StartGame(ctx)
	f.Dispatch(ctx, "request_draw", ActionParams{})

	// Without an index the choice defaults out of range and the prompt
	// repeats.
	info, err := f.Dispatch(ctx, "choose_draw_cost", ActionParams{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if info.UIMode != ModeDrawCostChoice || info.Error != "invalid_choice" {
		t.Fatalf("expected a re-prompt, got %+v", info)
	}

	idx := 1
	info, err = f.Dispatch(ctx, "choose_draw_cost", ActionParams{Index: &idx})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if info.Error == "invalid_choice" {
		t.Fatalf("expected the explicit index accepted, got %+v", info)
	}
	if f.game.Player(state.RoleFinn).Get(state.ResourceCuriosity) != 2 {
		t.Fatal("expected the second option paid")
	}
}

func TestDispatchConsentParams(t *testing.T) {
	f := testFlow(t)
	ctx := context.Background()
	f.StartGame(ctx)
	f.Dispatch(ctx, "skip_turn", ActionParams{}) // finn
	f.game.Player(state.RoleFinn).Set(state.ResourceOrangeWorn, 1)

	if _, err := f.Dispatch(ctx, "use_active_skill", ActionParams{}); err != nil {
		t.Fatalf("skill: %v", err)
	}
	if _, err := f.Dispatch(ctx, "photo_choose_target", ActionParams{TargetID: state.RoleFinn}); err != nil {
		t.Fatalf("target: %v", err)
	}
	agree := true
	info, err := f.Dispatch(ctx, "photo_consent", ActionParams{Agree: &agree})
	if err != nil {
		t.Fatalf("consent: %v", err)
	}
	if info.UIMode != ModeTurn {
		t.Fatalf("expected the protocol finished, got %+v", info)
	}
	if f.game.Player(state.RoleTourist).Counters.Photo != 1 {
		t.Fatal("expected the photo recorded")
	}
}
