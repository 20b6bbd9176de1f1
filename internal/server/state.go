package server

import (
	"golang.org/x/text/language"

	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/game"
	"github.com/louisbranch/koningsdag/internal/game/state"
	"github.com/louisbranch/koningsdag/internal/platform/i18n"
)

// maxStateLogs caps the transcript slice in the state document.
const maxStateLogs = 500

// webDrawCostChoice is the UI-mode alias the browser client expects for
// the OR-draw cost prompt.
const webDrawCostChoice = "DRAW_COST_CHOICE"

// StateDoc is the full game state document served by the driver.
type StateDoc struct {
	GameStarted     bool            `json:"game_started"`
	GameOver        bool            `json:"game_over"`
	GameOverReason  string          `json:"game_over_reason,omitempty"`
	RoundsCompleted int             `json:"rounds_completed"`
	EventsDrawn     int             `json:"events_drawn"`
	UI              *game.Info      `json:"ui,omitempty"`
	EventInfo       *game.EventInfo `json:"event_info,omitempty"`
	Players         []PlayerDoc     `json:"players"`
	Logs            []string        `json:"logs"`
}

// PlayerDoc is one seated player's public state.
type PlayerDoc struct {
	RoleID         string                `json:"role_id"`
	Name           string                `json:"name"`
	Status         map[string]int        `json:"status"`
	Counters       state.Counters        `json:"counters"`
	ProgressDetail *state.ProgressDetail `json:"progress_detail,omitempty"`
	WinGame        bool                  `json:"win_game"`
	RoleMeta       RoleMeta              `json:"role_meta"`
}

// RoleMeta is the static card summary shipped with each player.
type RoleMeta struct {
	DrawLogic    string   `json:"draw_logic"`
	DrawOptions  []string `json:"draw_options"`
	ActiveSkill  string   `json:"active_skill,omitempty"`
	VictoryID    string   `json:"victory_id,omitempty"`
	VictoryLabel string   `json:"victory_label,omitempty"`
}

// stateDocLocked builds the state document. Callers hold the API mutex.
func (a *API) stateDocLocked(tag language.Tag) StateDoc {
	doc := StateDoc{
		Players: []PlayerDoc{},
		Logs:    a.feed.Tail(maxStateLogs),
	}
	if a.flow == nil {
		return doc
	}

	g := a.flow.Game()
	sess := g.Session
	doc.GameStarted = true
	doc.GameOver = sess.GameOver
	doc.GameOverReason = sess.GameOverReason
	doc.RoundsCompleted = sess.RoundsCompleted
	doc.EventsDrawn = len(sess.EventsDrawn)

	ui := webUI(a.flow.UI())
	doc.UI = &ui
	if ev := a.flow.CurrentEvent(); ev != nil {
		localized := *ev
		localized.Name = i18n.EventName(tag, ev.ID, ev.Name)
		doc.EventInfo = &localized
	}

	for _, roleID := range sess.Players {
		p := g.Player(roleID)
		if p == nil {
			continue
		}
		doc.Players = append(doc.Players, PlayerDoc{
			RoleID:         roleID,
			Name:           i18n.RoleName(tag, roleID, a.cat.RoleName(roleID)),
			Status:         copyStatus(p.Status),
			Counters:       p.Counters,
			ProgressDetail: p.ProgressDetail,
			WinGame:        p.WinGame,
			RoleMeta:       a.roleMeta(roleID),
		})
	}
	return doc
}

// webUI rewrites engine UI modes into the vocabulary the web client
// uses. Only the OR-draw prompt differs.
func webUI(info game.Info) game.Info {
	if info.UIMode == game.ModeDrawCostChoice {
		info.UIMode = webDrawCostChoice
	}
	return info
}

func (a *API) roleMeta(roleID string) RoleMeta {
	role, err := a.cat.Role(roleID)
	if err != nil {
		return RoleMeta{}
	}
	meta := RoleMeta{
		DrawLogic:   role.DrawCost.NormalLogic(),
		DrawOptions: renderCostOptions(role.DrawCost.Options),
	}
	if role.ActiveSkill != nil {
		meta.ActiveSkill = role.ActiveSkill.ID
	}
	if role.Victory != nil {
		meta.VictoryID = role.Victory.ID
		meta.VictoryLabel = a.cat.VictoryLabel(*role.Victory)
	}
	return meta
}

func renderCostOptions(options []catalog.CostOption) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		out = append(out, opt.String())
	}
	return out
}

func copyStatus(status map[string]int) map[string]int {
	out := make(map[string]int, len(status))
	for key, value := range status {
		out[key] = value
	}
	return out
}
