//go:build scenario

package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/game"
	"github.com/louisbranch/koningsdag/internal/storage/memory"
)

// runner drives one scripted game against an in-memory store and
// fails the test on the first expectation that does not hold.
type runner struct {
	t        *testing.T
	scenario *Scenario

	roster []string
	flow   *game.Flow
	info   game.Info
	logs   []string
}

func newRunner(t *testing.T, scenario *Scenario) *runner {
	return &runner{t: t, scenario: scenario}
}

func (r *runner) run(ctx context.Context) {
	r.t.Helper()
	for i, step := range r.scenario.Steps {
		if err := r.exec(ctx, step); err != nil {
			r.t.Fatalf("step %d (%s): %v", i+1, step.Kind, err)
		}
	}
}

func (r *runner) exec(ctx context.Context, step Step) error {
	switch step.Kind {
	case "seat":
		roles, _ := step.Args["roles"].([]any)
		for _, role := range roles {
			r.roster = append(r.roster, fmt.Sprint(role))
		}
		return nil
	case "start":
		return r.start(ctx)
	case "set_status":
		return r.setStatus(step.Args)
	case "action":
		return r.action(ctx, step.Args)
	case "expect_mode":
		return r.expectMode(step.Args)
	case "expect_actor":
		return r.expectActor(step.Args)
	case "expect_status":
		return r.expectStatus(step.Args)
	case "expect_counter":
		return r.expectCounter(step.Args)
	case "expect_log":
		return r.expectLog(step.Args)
	case "expect_game_over":
		return r.expectGameOver(step.Args)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *runner) start(ctx context.Context) error {
	cat := catalog.Default()
	g, err := game.NewGame(cat, r.scenario.Name, r.roster)
	if err != nil {
		return fmt.Errorf("new game: %w", err)
	}
	seed := r.scenario.Seed
	if seed == 0 {
		seed = 1
	}
	r.flow = game.NewFlow(cat, g, memory.New(), rand.New(rand.NewSource(seed)))
	info, err := r.flow.StartGame(ctx)
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	r.info = info
	r.drainLogs()
	return nil
}

func (r *runner) setStatus(args map[string]any) error {
	if r.flow == nil {
		return fmt.Errorf("set_status before start")
	}
	role := stringArg(args, "role")
	p := r.flow.Game().Player(role)
	if p == nil {
		return fmt.Errorf("role %q not seated", role)
	}
	p.Set(stringArg(args, "key"), intArg(args, "value"))
	return nil
}

func (r *runner) action(ctx context.Context, args map[string]any) error {
	if r.flow == nil {
		return fmt.Errorf("action before start")
	}
	name := stringArg(args, "name")
	var params game.ActionParams
	if raw, ok := args["params"].(map[string]any); ok {
		buf, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
		if err := json.Unmarshal(buf, &params); err != nil {
			return fmt.Errorf("decode params: %w", err)
		}
	}
	info, err := r.flow.Dispatch(ctx, name, params)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", name, err)
	}
	r.info = info
	r.drainLogs()
	return nil
}

func (r *runner) expectMode(args map[string]any) error {
	want := stringArg(args, "mode")
	if r.info.UIMode != want {
		return fmt.Errorf("ui mode = %q, want %q", r.info.UIMode, want)
	}
	return nil
}

func (r *runner) expectActor(args map[string]any) error {
	want := stringArg(args, "role")
	actor := r.info.ActorID
	if actor == "" {
		actor = r.info.RoleID
	}
	if actor != want {
		return fmt.Errorf("actor = %q, want %q", actor, want)
	}
	return nil
}

func (r *runner) expectStatus(args map[string]any) error {
	role := stringArg(args, "role")
	key := stringArg(args, "key")
	want := intArg(args, "value")
	p := r.flow.Game().Player(role)
	if p == nil {
		return fmt.Errorf("role %q not seated", role)
	}
	if got := p.Get(key); got != want {
		return fmt.Errorf("%s %s = %d, want %d", role, key, got, want)
	}
	return nil
}

func (r *runner) expectCounter(args map[string]any) error {
	role := stringArg(args, "role")
	name := stringArg(args, "counter")
	want := intArg(args, "value")
	p := r.flow.Game().Player(role)
	if p == nil {
		return fmt.Errorf("role %q not seated", role)
	}
	var got int
	switch name {
	case "photo":
		got = p.Counters.Photo
	case "trades_done":
		got = p.Counters.TradesDone
	case "perform":
		got = p.Counters.Perform
	case "feed_successes":
		got = p.Counters.FeedSuccesses
	case "orange_worn":
		got = p.Counters.OrangeWorn
	default:
		return fmt.Errorf("unknown counter %q", name)
	}
	if got != want {
		return fmt.Errorf("%s counter %s = %d, want %d", role, name, got, want)
	}
	return nil
}

func (r *runner) expectLog(args map[string]any) error {
	want := stringArg(args, "substr")
	for _, line := range r.logs {
		if strings.Contains(line, want) {
			return nil
		}
	}
	return fmt.Errorf("no transcript line contains %q (have %d lines)", want, len(r.logs))
}

func (r *runner) expectGameOver(args map[string]any) error {
	if !r.info.GameOver {
		return fmt.Errorf("game not over, ui mode %q", r.info.UIMode)
	}
	winners, ok := args["winners"].([]any)
	if !ok {
		return nil
	}
	if len(winners) != len(r.info.Winners) {
		return fmt.Errorf("winners = %v, want %v", r.info.Winners, winners)
	}
	for i, w := range winners {
		if fmt.Sprint(w) != r.info.Winners[i] {
			return fmt.Errorf("winners = %v, want %v", r.info.Winners, winners)
		}
	}
	return nil
}

func (r *runner) drainLogs() {
	r.logs = append(r.logs, r.flow.ConsumeLogs()...)
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func intArg(args map[string]any, key string) int {
	v, _ := args[key].(int)
	return v
}
