package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultBundleLoads(t *testing.T) {
	c := Default()

	roles := c.Roles()
	if len(roles) != 6 {
		t.Fatalf("expected 6 roles, got %d", len(roles))
	}
	for i := 1; i < len(roles); i++ {
		if roles[i-1].Name > roles[i].Name {
			t.Fatalf("roles not sorted by name: %q before %q", roles[i-1].Name, roles[i].Name)
		}
	}

	events := c.EventIDs()
	if len(events) != 16 {
		t.Fatalf("expected 16 events, got %d", len(events))
	}
	seen := make(map[string]bool)
	for _, id := range events {
		if seen[id] {
			t.Fatalf("duplicate event id %q", id)
		}
		seen[id] = true
		if _, err := c.Event(id); err != nil {
			t.Fatalf("event %q not loadable: %v", id, err)
		}
	}
}

func TestDefaultBundleReferencesKnownDefs(t *testing.T) {
	c := Default()

	for _, role := range c.Roles() {
		if role.Victory == nil {
			continue
		}
		if _, ok := c.VictoryDef(role.Victory.ID); !ok {
			t.Fatalf("role %s references unknown victory %q", role.ID, role.Victory.ID)
		}
	}

	for _, id := range c.EventIDs() {
		event, err := c.Event(id)
		if err != nil {
			t.Fatalf("event %s: %v", id, err)
		}
		if event.GlobalEffect == nil {
			continue
		}
		if _, ok := c.GlobalEffectDef(event.GlobalEffect.ID); !ok {
			t.Fatalf("event %s references unknown global effect %q", id, event.GlobalEffect.ID)
		}
	}
}

func TestRoleInitStatus(t *testing.T) {
	c := Default()

	role, err := c.Role("role_finn")
	if err != nil {
		t.Fatalf("load finn: %v", err)
	}
	status := role.InitStatus()
	if status["stamina"] != 4 || status["orange_product"] != 2 {
		t.Fatalf("unexpected finn init status: %v", status)
	}
	if status["orange_wear_product"] != 0 {
		t.Fatalf("expected explicit zero for worn items, got %d", status["orange_wear_product"])
	}
}

func TestCostOptionUnmarshalShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "multi step", in: `{"costs": [{"resource": "stamina", "delta": -1}, {"resource": "curiosity", "delta": -1}]}`, want: 2},
		{name: "single shorthand", in: `{"resource": "money", "delta": -1}`, want: 1},
		{name: "empty object", in: `{}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opt CostOption
			if err := json.Unmarshal([]byte(tt.in), &opt); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(opt.Costs) != tt.want {
				t.Fatalf("expected %d steps, got %d", tt.want, len(opt.Costs))
			}
		})
	}
}

func TestDrawCostNormalLogic(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "THEN", want: DrawLogicThen},
		{in: "or", want: DrawLogicOr},
		{in: " OR ", want: DrawLogicOr},
		{in: "", want: DrawLogicThen},
		{in: "bogus", want: DrawLogicThen},
	}

	for _, tt := range tests {
		got := DrawCost{Logic: tt.in}.NormalLogic()
		if got != tt.want {
			t.Fatalf("logic %q: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestParamsCoercion(t *testing.T) {
	var p Params
	if err := json.Unmarshal([]byte(`{"n": 3, "flag": true, "stat": "money", "junk": [1]}`), &p); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}

	if got := p.Int("n", 0); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := p.Int("missing", 7); got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}
	if got := p.Int("junk", 7); got != 7 {
		t.Fatalf("expected default for non-numeric, got %d", got)
	}
	if !p.Bool("flag", false) {
		t.Fatal("expected flag true")
	}
	if got := p.String("stat", ""); got != "money" {
		t.Fatalf("expected money, got %q", got)
	}
}

func TestParamsMerged(t *testing.T) {
	defaults := Params{"n": 3.0, "stat": "curiosity"}
	override := Params{"n": 5.0}

	merged := override.Merged(defaults)
	if merged.Int("n", 0) != 5 {
		t.Fatalf("expected override to win, got %d", merged.Int("n", 0))
	}
	if merged.String("stat", "") != "curiosity" {
		t.Fatalf("expected default to survive, got %q", merged.String("stat", ""))
	}
	if defaults.Int("n", 0) != 3 {
		t.Fatal("expected defaults untouched")
	}
}

func TestVictoryLabelRendering(t *testing.T) {
	c := Default()

	role, err := c.Role("role_tourist")
	if err != nil {
		t.Fatalf("load tourist: %v", err)
	}
	label := c.VictoryLabel(*role.Victory)
	if label != "Take 3 photos of different partygoers" {
		t.Fatalf("unexpected victory label %q", label)
	}
}

func TestEffectLabelPrefersCardLabel(t *testing.T) {
	c := Default()

	ref := EffectRef{ID: "all_role_stat_plus", Label: "card says so"}
	if got := c.EffectLabel(ref); got != "card says so" {
		t.Fatalf("expected card label, got %q", got)
	}

	ref = EffectRef{ID: "all_role_stat_plus", Params: Params{"stat": "stamina", "amount": 2.0}}
	if got := c.EffectLabel(ref); got != "Every player gains 2 stamina" {
		t.Fatalf("unexpected rendered label %q", got)
	}
}

func TestLoadSkipsMalformedCards(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "global_defs.json"), `{"victory_defs": [], "global_effect_defs": []}`)
	mustWrite(t, filepath.Join(dir, "roles", "good.json"), `{
		"id": "role_finn", "name": "Finn",
		"init_number": {"stamina": {"number": 2}}
	}`)
	mustWrite(t, filepath.Join(dir, "roles", "broken.json"), `{not json`)
	mustWrite(t, filepath.Join(dir, "roles", "incomplete.json"), `{"id": "role_x"}`)
	mustWrite(t, filepath.Join(dir, "events", "good.json"), `{"id": "event_1", "name": "Opening"}`)
	mustWrite(t, filepath.Join(dir, "events", "broken.json"), `[]`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Roles()) != 1 {
		t.Fatalf("expected 1 role, got %d", len(c.Roles()))
	}
	if len(c.EventIDs()) != 1 {
		t.Fatalf("expected 1 event, got %d", len(c.EventIDs()))
	}
	if !c.HasRole("role_finn") {
		t.Fatal("expected role_finn present")
	}
}

func TestLoadEmptyDirFallsBackToEmbedded(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Roles()) != 6 {
		t.Fatalf("expected embedded bundle, got %d roles", len(c.Roles()))
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
