package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/koningsdag/internal/game"
	"github.com/louisbranch/koningsdag/internal/platform/i18n"
	"github.com/louisbranch/koningsdag/internal/storage"
)

// RolesListInput represents the MCP tool input for listing roles.
type RolesListInput struct {
	Lang string `json:"lang,omitempty" jsonschema:"optional BCP 47 language tag for display names (en-US, nl-NL)"`
}

// RoleEntry is one playable role.
type RoleEntry struct {
	ID          string `json:"id" jsonschema:"role identifier"`
	Name        string `json:"name" jsonschema:"role display name"`
	SkillID     string `json:"skill_id,omitempty" jsonschema:"active skill identifier, if any"`
	SkillLabel  string `json:"skill_label,omitempty" jsonschema:"active skill description"`
	VictoryID   string `json:"victory_id,omitempty" jsonschema:"victory condition identifier"`
	VictoryGoal string `json:"victory_goal,omitempty" jsonschema:"victory condition description"`
}

// RolesListResult represents the MCP tool output for listing roles.
type RolesListResult struct {
	Roles []RoleEntry `json:"roles" jsonschema:"playable roles sorted by display name"`
}

// RolesListTool defines the MCP tool schema for listing roles.
func RolesListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roles_list",
		Description: "Lists the playable roles with their skills and victory conditions. Finn and Tourist are seated in every game.",
	}
}

// RolesListHandler executes a roles list request.
func RolesListHandler(svc *service) mcp.ToolHandlerFor[RolesListInput, RolesListResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input RolesListInput) (*mcp.CallToolResult, RolesListResult, error) {
		tag := i18n.MatchTag(input.Lang)
		roles := svc.cat.Roles()
		result := RolesListResult{Roles: make([]RoleEntry, 0, len(roles))}
		for _, role := range roles {
			entry := RoleEntry{
				ID:   role.ID,
				Name: i18n.RoleName(tag, role.ID, role.Name),
			}
			if role.ActiveSkill != nil {
				entry.SkillID = role.ActiveSkill.ID
				entry.SkillLabel = role.ActiveSkill.Description
			}
			if role.Victory != nil {
				entry.VictoryID = role.Victory.ID
				entry.VictoryGoal = svc.cat.VictoryLabel(*role.Victory)
			}
			result.Roles = append(result.Roles, entry)
		}
		return nil, result, nil
	}
}

// GameStartInput represents the MCP tool input for starting a game.
type GameStartInput struct {
	Roles []string `json:"roles,omitempty" jsonschema:"role ids to seat; Finn and Tourist are added when missing"`
	Lang  string   `json:"lang,omitempty" jsonschema:"optional BCP 47 language tag for display names"`
}

// GameStartTool defines the MCP tool schema for starting a game.
func GameStartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "game_start",
		Description: "Seats a new game with the requested roster and begins the first turn. Replaces any running game.",
	}
}

// GameStartHandler executes a game start request.
func GameStartHandler(svc *service) mcp.ToolHandlerFor[GameStartInput, TableState] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GameStartInput) (*mcp.CallToolResult, TableState, error) {
		doc, err := svc.Start(ctx, input.Roles, i18n.MatchTag(input.Lang))
		if err != nil {
			return nil, TableState{}, err
		}
		return nil, doc, nil
	}
}

// GameStateInput represents the MCP tool input for reading game state.
type GameStateInput struct {
	Lang string `json:"lang,omitempty" jsonschema:"optional BCP 47 language tag for display names"`
}

// GameStateTool defines the MCP tool schema for reading game state.
func GameStateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "game_state",
		Description: "Returns the current table state and the prompt the engine is waiting on, without advancing anything.",
	}
}

// GameStateHandler executes a game state request.
func GameStateHandler(svc *service) mcp.ToolHandlerFor[GameStateInput, TableState] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input GameStateInput) (*mcp.CallToolResult, TableState, error) {
		return nil, svc.State(i18n.MatchTag(input.Lang)), nil
	}
}

// GameActionInput represents the MCP tool input for one game action.
// The action vocabulary matches the engine's dispatch table; the ui
// field of the previous state says which action is expected next.
type GameActionInput struct {
	Action      string `json:"action" jsonschema:"action name, e.g. request_draw, skip_turn, photo_choose_target, trade_consent"`
	Index       *int   `json:"index,omitempty" jsonschema:"choice index for choose_draw_cost"`
	ItemIndex   *int   `json:"item_index,omitempty" jsonschema:"item index for trade_choose_item"`
	OptionIndex *int   `json:"option_index,omitempty" jsonschema:"option index for exchange_choose_option"`
	TargetID    string `json:"target_id,omitempty" jsonschema:"target role id for target and decision actions"`
	PartnerID   string `json:"partner_id,omitempty" jsonschema:"partner role id for trade_choose_partner"`
	Choice      string `json:"choice,omitempty" jsonschema:"benefit choice for perform_watch_benefit (stamina or money)"`
	Agree       *bool  `json:"agree,omitempty" jsonschema:"consent answer for consent and help actions"`
	Watch       *bool  `json:"watch,omitempty" jsonschema:"watch answer for watch decisions"`
	Accept      *bool  `json:"accept,omitempty" jsonschema:"accept answer for food_offer_decide"`
	Lang        string `json:"lang,omitempty" jsonschema:"optional BCP 47 language tag for display names"`
}

// GameActionTool defines the MCP tool schema for one game action.
func GameActionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "game_action",
		Description: "Dispatches one game action and returns the resulting table state. The ui field of the state names the next expected input.",
	}
}

// GameActionHandler executes a game action request.
func GameActionHandler(svc *service) mcp.ToolHandlerFor[GameActionInput, TableState] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GameActionInput) (*mcp.CallToolResult, TableState, error) {
		params := game.ActionParams{
			Index:       input.Index,
			ItemIndex:   input.ItemIndex,
			OptionIndex: input.OptionIndex,
			TargetID:    input.TargetID,
			PartnerID:   input.PartnerID,
			Choice:      input.Choice,
			Agree:       input.Agree,
			Watch:       input.Watch,
			Accept:      input.Accept,
		}
		doc, err := svc.Act(ctx, input.Action, params, i18n.MatchTag(input.Lang))
		if err != nil {
			return nil, TableState{}, err
		}
		return nil, doc, nil
	}
}

// GameLogsInput represents the MCP tool input for draining the
// transcript.
type GameLogsInput struct{}

// GameLogsResult represents the MCP tool output for the transcript.
type GameLogsResult struct {
	Lines []string `json:"lines" jsonschema:"transcript lines since the previous drain"`
}

// GameLogsTool defines the MCP tool schema for draining the transcript.
func GameLogsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "game_logs",
		Description: "Drains the human-readable game transcript. A second call without new activity returns nothing.",
	}
}

// GameLogsHandler executes a transcript drain request.
func GameLogsHandler(svc *service) mcp.ToolHandlerFor[GameLogsInput, GameLogsResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ GameLogsInput) (*mcp.CallToolResult, GameLogsResult, error) {
		lines := svc.Logs()
		if lines == nil {
			lines = []string{}
		}
		return nil, GameLogsResult{Lines: lines}, nil
	}
}

// GameResetInput represents the MCP tool input for resetting the game.
type GameResetInput struct{}

// GameResetResult represents the MCP tool output for resetting.
type GameResetResult struct {
	OK bool `json:"ok" jsonschema:"whether the reset completed"`
}

// GameResetTool defines the MCP tool schema for resetting the game.
func GameResetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "game_reset",
		Description: "Abandons the running game and deletes its persisted documents.",
	}
}

// GameResetHandler executes a game reset request.
func GameResetHandler(svc *service) mcp.ToolHandlerFor[GameResetInput, GameResetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ GameResetInput) (*mcp.CallToolResult, GameResetResult, error) {
		if err := svc.Reset(ctx); err != nil {
			return nil, GameResetResult{}, err
		}
		return nil, GameResetResult{OK: true}, nil
	}
}

// WinrateGetInput represents the MCP tool input for the winrate table.
type WinrateGetInput struct{}

// WinrateGetResult represents the MCP tool output for the winrate
// table.
type WinrateGetResult struct {
	TotalGames  int                             `json:"total_games" jsonschema:"finished games recorded"`
	ByPlayerSet map[string]storage.PlayerSetRow `json:"by_player_set,omitempty" jsonschema:"per-roster win tallies keyed by sorted role ids"`
}

// WinrateGetTool defines the MCP tool schema for the winrate table.
func WinrateGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "winrate_get",
		Description: "Returns the cumulative cross-game winrate statistics.",
	}
}

// WinrateGetHandler executes a winrate request.
func WinrateGetHandler(svc *service) mcp.ToolHandlerFor[WinrateGetInput, WinrateGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ WinrateGetInput) (*mcp.CallToolResult, WinrateGetResult, error) {
		doc, err := svc.Winrate(ctx)
		if err != nil {
			return nil, WinrateGetResult{}, err
		}
		return nil, WinrateGetResult{TotalGames: doc.TotalGames, ByPlayerSet: doc.ByPlayerSet}, nil
	}
}

// RecordsListInput represents the MCP tool input for listing finished
// games.
type RecordsListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum records to return, newest first; defaults to 20"`
}

// RecordsListResult represents the MCP tool output for listing
// finished games.
type RecordsListResult struct {
	Records []storage.GameRecord `json:"records" jsonschema:"finished games, newest first"`
}

// RecordsListTool defines the MCP tool schema for listing finished
// games.
func RecordsListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "records_list",
		Description: "Lists recently finished games with their rosters, winners, and rounds played.",
	}
}

// RecordsListHandler executes a records list request.
func RecordsListHandler(svc *service) mcp.ToolHandlerFor[RecordsListInput, RecordsListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RecordsListInput) (*mcp.CallToolResult, RecordsListResult, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = 20
		}
		records, err := svc.Records(ctx, limit)
		if err != nil {
			return nil, RecordsListResult{}, err
		}
		if records == nil {
			records = []storage.GameRecord{}
		}
		return nil, RecordsListResult{Records: records}, nil
	}
}
