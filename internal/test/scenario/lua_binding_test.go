//go:build scenario

package scenario

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is a scripted game: a roster, a fixed seed, and the ordered
// steps that drive and check the flow.
type Scenario struct {
	Name  string
	Seed  int64
	Steps []Step
}

// Step is one scripted operation.
type Step struct {
	Kind string
	Args map[string]any
}

func (s *Scenario) push(kind string, args map[string]any) {
	s.Steps = append(s.Steps, Step{Kind: kind, Args: args})
}

func loadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerScenarioType(state)
	registerScenarioConstructor(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{
		{Name: "new", Function: scenarioNew},
	}, 0)
	state.SetGlobal("Scenario")
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	scenario := &Scenario{Name: name}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "seat", Function: scenarioSeat},
	{Name: "seed", Function: scenarioSeed},
	{Name: "start", Function: scenarioStart},
	{Name: "set_status", Function: scenarioSetStatus},
	{Name: "action", Function: scenarioAction},
	{Name: "use_skill", Function: scenarioUseSkill},
	{Name: "skip", Function: scenarioSkip},
	{Name: "expect_mode", Function: scenarioExpectMode},
	{Name: "expect_actor", Function: scenarioExpectActor},
	{Name: "expect_status", Function: scenarioExpectStatus},
	{Name: "expect_counter", Function: scenarioExpectCounter},
	{Name: "expect_log", Function: scenarioExpectLog},
	{Name: "expect_game_over", Function: scenarioExpectGameOver},
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		lua.Errorf(state, "scenario method on non-scenario value")
		return nil
	}
	return scenario
}

func scenarioSeat(state *lua.State) int {
	scenario := checkScenario(state)
	roles := make([]any, 0, state.Top()-1)
	for i := 2; i <= state.Top(); i++ {
		roles = append(roles, lua.CheckString(state, i))
	}
	scenario.push("seat", map[string]any{"roles": roles})
	return 0
}

func scenarioSeed(state *lua.State) int {
	scenario := checkScenario(state)
	scenario.Seed = int64(lua.CheckInteger(state, 2))
	return 0
}

func scenarioStart(state *lua.State) int {
	scenario := checkScenario(state)
	scenario.push("start", nil)
	return 0
}

func scenarioSetStatus(state *lua.State) int {
	scenario := checkScenario(state)
	scenario.push("set_status", map[string]any{
		"role":  lua.CheckString(state, 2),
		"key":   lua.CheckString(state, 3),
		"value": lua.CheckInteger(state, 4),
	})
	return 0
}

func scenarioAction(state *lua.State) int {
	scenario := checkScenario(state)
	args := map[string]any{"name": lua.CheckString(state, 2)}
	if state.Top() >= 3 {
		lua.CheckType(state, 3, lua.TypeTable)
		args["params"] = tableToMap(state, 3)
	}
	scenario.push("action", args)
	return 0
}

func scenarioUseSkill(state *lua.State) int {
	scenario := checkScenario(state)
	scenario.push("action", map[string]any{"name": "use_active_skill"})
	return 0
}

func scenarioSkip(state *lua.State) int {
	scenario := checkScenario(state)
	scenario.push("action", map[string]any{"name": "skip_turn"})
	return 0
}

func scenarioExpectMode(state *lua.State) int {
	scenario := checkScenario(state)
	scenario.push("expect_mode", map[string]any{"mode": lua.CheckString(state, 2)})
	return 0
}

func scenarioExpectActor(state *lua.State) int {
	scenario := checkScenario(state)
	scenario.push("expect_actor", map[string]any{"role": lua.CheckString(state, 2)})
	return 0
}

func scenarioExpectStatus(state *lua.State) int {
	scenario := checkScenario(state)
	scenario.push("expect_status", map[string]any{
		"role":  lua.CheckString(state, 2),
		"key":   lua.CheckString(state, 3),
		"value": lua.CheckInteger(state, 4),
	})
	return 0
}

func scenarioExpectCounter(state *lua.State) int {
	scenario := checkScenario(state)
	scenario.push("expect_counter", map[string]any{
		"role":    lua.CheckString(state, 2),
		"counter": lua.CheckString(state, 3),
		"value":   lua.CheckInteger(state, 4),
	})
	return 0
}

func scenarioExpectLog(state *lua.State) int {
	scenario := checkScenario(state)
	scenario.push("expect_log", map[string]any{"substr": lua.CheckString(state, 2)})
	return 0
}

func scenarioExpectGameOver(state *lua.State) int {
	scenario := checkScenario(state)
	args := map[string]any{}
	if state.Top() >= 2 {
		lua.CheckType(state, 2, lua.TypeTable)
		args["winners"] = tableToList(state, 2)
	}
	scenario.push("expect_game_over", args)
	return 0
}

// tableToMap converts a Lua table at idx into a Go map. Values keep
// their Lua types: strings, booleans, and integers.
func tableToMap(state *lua.State, idx int) map[string]any {
	out := map[string]any{}
	idx = state.AbsIndex(idx)
	state.PushNil()
	for state.Next(idx) {
		key, _ := state.ToString(-2)
		out[key] = luaValue(state, -1)
		state.Pop(1)
	}
	return out
}

// tableToList converts a Lua array table at idx into a Go slice.
func tableToList(state *lua.State, idx int) []any {
	out := []any{}
	idx = state.AbsIndex(idx)
	for i := 1; ; i++ {
		state.RawGetInt(idx, i)
		if state.TypeOf(-1) == lua.TypeNil {
			state.Pop(1)
			return out
		}
		out = append(out, luaValue(state, -1))
		state.Pop(1)
	}
}

func luaValue(state *lua.State, idx int) any {
	switch state.TypeOf(idx) {
	case lua.TypeBoolean:
		return state.ToBoolean(idx)
	case lua.TypeNumber:
		n, _ := state.ToInteger(idx)
		return n
	default:
		s, _ := state.ToString(idx)
		return s
	}
}
