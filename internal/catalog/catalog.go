// Package catalog loads the static game content: role cards, event
// cards, and the shared effect/victory definitions. The bundled data
// ships inside the binary via go:embed; an on-disk directory with the
// same layout can override it for scenario work.
//
// Loading is tolerant. A card that fails to parse or lacks required
// fields is skipped rather than failing the whole catalog, and numeric
// fields degrade to zero through the Params getters.
package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed data
var dataFS embed.FS

// ErrRoleNotFound reports a lookup for a role id absent from the catalog.
var ErrRoleNotFound = errors.New("role not found in catalog")

// ErrEventNotFound reports a lookup for an event id absent from the catalog.
var ErrEventNotFound = errors.New("event not found in catalog")

// Draw cost logic values.
const (
	DrawLogicThen = "THEN"
	DrawLogicOr   = "OR"
)

// CostStep is a single resource delta inside a draw cost option.
type CostStep struct {
	Resource string `json:"resource"`
	Delta    int    `json:"delta"`
}

// CostOption is one way to pay for a card draw. All steps must be
// payable for the option to count.
type CostOption struct {
	Costs []CostStep `json:"costs"`
}

// String renders the option as "resource+delta" steps joined by commas,
// e.g. "stamina-1, curiosity-1".
func (o CostOption) String() string {
	steps := make([]string, 0, len(o.Costs))
	for _, step := range o.Costs {
		steps = append(steps, fmt.Sprintf("%s%+d", step.Resource, step.Delta))
	}
	return strings.Join(steps, ", ")
}

// UnmarshalJSON accepts both the multi-step form {"costs": [...]} and
// the shorthand single-step form {"resource": ..., "delta": ...}.
func (o *CostOption) UnmarshalJSON(data []byte) error {
	var multi struct {
		Costs []CostStep `json:"costs"`
	}
	if err := json.Unmarshal(data, &multi); err == nil && len(multi.Costs) > 0 {
		o.Costs = multi.Costs
		return nil
	}
	var single CostStep
	if err := json.Unmarshal(data, &single); err == nil && single.Resource != "" {
		o.Costs = []CostStep{single}
		return nil
	}
	o.Costs = nil
	return nil
}

// DrawCost is a role's card draw price: either every option in order
// (THEN) or exactly one chosen option (OR).
type DrawCost struct {
	Logic   string       `json:"logic"`
	Options []CostOption `json:"options"`
}

// NormalLogic returns the draw logic uppercased, defaulting to THEN for
// anything unrecognized.
func (d DrawCost) NormalLogic() string {
	logic := strings.ToUpper(strings.TrimSpace(d.Logic))
	if logic != DrawLogicOr {
		return DrawLogicThen
	}
	return DrawLogicOr
}

// Skill is a role's active ability reference.
type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Params      Params `json:"params,omitempty"`
}

// Victory is a role's win condition reference.
type Victory struct {
	ID     string `json:"id"`
	Params Params `json:"params,omitempty"`
}

// InitStat wraps a starting stat value.
type InitStat struct {
	Number int `json:"number"`
}

// TradeSeed is the per-role starting trade state.
type TradeSeed struct {
	PriceMod      int            `json:"price_mod,omitempty"`
	PriceOverride map[string]int `json:"price_override,omitempty"`
}

// Role is one playable role card.
type Role struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	InitNumber  map[string]InitStat `json:"init_number"`
	DrawCost    DrawCost            `json:"draw_card_cost"`
	ActiveSkill *Skill              `json:"active_skill,omitempty"`
	Victory     *Victory            `json:"victory,omitempty"`
	TradeSeed   *TradeSeed          `json:"trade_state_init,omitempty"`
}

// InitStatus flattens the starting stats into a plain map.
func (r Role) InitStatus() map[string]int {
	out := make(map[string]int, len(r.InitNumber))
	for stat, v := range r.InitNumber {
		out[stat] = v.Number
	}
	return out
}

// EffectRef binds an effect id with card-specific parameters.
type EffectRef struct {
	ID     string `json:"id"`
	Params Params `json:"params,omitempty"`
	Label  string `json:"label,omitempty"`
}

// Event is one drawable event card: a table-wide effect plus optional
// per-role effects that the current player may trigger.
type Event struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	GlobalEffect *EffectRef           `json:"global_effect,omitempty"`
	RoleEffects  map[string]EffectRef `json:"role_effects,omitempty"`
}

// EffectDef is a shared definition entry from global_defs.json.
type EffectDef struct {
	ID            string `json:"id"`
	LabelTemplate string `json:"label_template,omitempty"`
	ParamDefaults Params `json:"param_defaults,omitempty"`
}

// TradeDefaults is the table-wide pricing fallback.
type TradeDefaults struct {
	PriceMod      int            `json:"price_mod,omitempty"`
	PriceOverride map[string]int `json:"price_override,omitempty"`
}

// GlobalDefs is the shared definitions document.
type GlobalDefs struct {
	VictoryDefs      []EffectDef   `json:"victory_defs,omitempty"`
	GlobalEffectDefs []EffectDef   `json:"global_effect_defs,omitempty"`
	TradeDefaults    TradeDefaults `json:"trade_defaults,omitempty"`
}

// Catalog is the loaded content set. It is immutable after Load.
type Catalog struct {
	roles       map[string]Role
	events      map[string]Event
	eventOrder  []string
	victoryDefs map[string]EffectDef
	effectDefs  map[string]EffectDef
	trade       TradeDefaults
}

// Default loads the embedded catalog. The bundle is validated at build
// time by tests, so a load failure here is a programming error.
func Default() *Catalog {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded data missing: %v", err))
	}
	c, err := load(sub)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded data invalid: %v", err))
	}
	return c
}

// Load reads a catalog from dir, falling back to the embedded bundle
// when dir is empty.
func Load(dir string) (*Catalog, error) {
	if dir == "" {
		return Default(), nil
	}
	return load(os.DirFS(dir))
}

func load(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{
		roles:       make(map[string]Role),
		events:      make(map[string]Event),
		victoryDefs: make(map[string]EffectDef),
		effectDefs:  make(map[string]EffectDef),
	}

	defs, err := fs.ReadFile(fsys, "global_defs.json")
	if err != nil {
		return nil, fmt.Errorf("read global defs: %w", err)
	}
	var doc GlobalDefs
	if err := json.Unmarshal(defs, &doc); err != nil {
		return nil, fmt.Errorf("parse global defs: %w", err)
	}
	for _, d := range doc.VictoryDefs {
		c.victoryDefs[d.ID] = d
	}
	for _, d := range doc.GlobalEffectDefs {
		c.effectDefs[d.ID] = d
	}
	c.trade = doc.TradeDefaults

	if err := loadDir(fsys, "roles", func(data []byte) {
		var role Role
		if json.Unmarshal(data, &role) != nil {
			return
		}
		if role.ID == "" || role.Name == "" || len(role.InitNumber) == 0 {
			return
		}
		c.roles[role.ID] = role
	}); err != nil {
		return nil, err
	}

	if err := loadDir(fsys, "events", func(data []byte) {
		var event Event
		if json.Unmarshal(data, &event) != nil {
			return
		}
		if event.ID == "" || event.Name == "" {
			return
		}
		if _, dup := c.events[event.ID]; dup {
			return
		}
		c.events[event.ID] = event
		c.eventOrder = append(c.eventOrder, event.ID)
	}); err != nil {
		return nil, err
	}

	return c, nil
}

func loadDir(fsys fs.FS, dir string, accept func(data []byte)) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read %s dir: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			continue
		}
		accept(data)
	}
	return nil
}

// Role returns the role card for id.
func (c *Catalog) Role(id string) (Role, error) {
	role, ok := c.roles[id]
	if !ok {
		return Role{}, fmt.Errorf("%w: %s", ErrRoleNotFound, id)
	}
	return role, nil
}

// HasRole reports whether the role id exists.
func (c *Catalog) HasRole(id string) bool {
	_, ok := c.roles[id]
	return ok
}

// Roles returns all role cards sorted by display name.
func (c *Catalog) Roles() []Role {
	out := make([]Role, 0, len(c.roles))
	for _, role := range c.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// RoleName returns the display name for a role id, falling back to the
// id itself.
func (c *Catalog) RoleName(id string) string {
	if role, ok := c.roles[id]; ok {
		return role.Name
	}
	return id
}

// Event returns the event card for id.
func (c *Catalog) Event(id string) (Event, error) {
	event, ok := c.events[id]
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return event, nil
}

// EventIDs returns every event card id in deck order.
func (c *Catalog) EventIDs() []string {
	out := make([]string, len(c.eventOrder))
	copy(out, c.eventOrder)
	return out
}

// VictoryDef returns the shared victory definition for id.
func (c *Catalog) VictoryDef(id string) (EffectDef, bool) {
	d, ok := c.victoryDefs[id]
	return d, ok
}

// GlobalEffectDef returns the shared effect definition for id.
func (c *Catalog) GlobalEffectDef(id string) (EffectDef, bool) {
	d, ok := c.effectDefs[id]
	return d, ok
}

// TradeDefaults returns the table-wide pricing fallback.
func (c *Catalog) TradeDefaults() TradeDefaults {
	return c.trade
}

// VictoryParams returns the victory's params merged over the shared
// definition defaults.
func (c *Catalog) VictoryParams(v Victory) Params {
	return v.Params.Merged(c.victoryDefs[v.ID].ParamDefaults)
}

// EffectParams returns the effect reference's params merged over the
// shared definition defaults.
func (c *Catalog) EffectParams(ref EffectRef) Params {
	return ref.Params.Merged(c.effectDefs[ref.ID].ParamDefaults)
}

// VictoryLabel renders a human description for a victory reference by
// substituting merged params into the definition's label template.
func (c *Catalog) VictoryLabel(v Victory) string {
	def, ok := c.victoryDefs[v.ID]
	if !ok || def.LabelTemplate == "" {
		return v.ID
	}
	return renderLabel(def.LabelTemplate, c.VictoryParams(v))
}

// EffectLabel renders a human description for an effect reference,
// preferring the card's own label when present.
func (c *Catalog) EffectLabel(ref EffectRef) string {
	if ref.Label != "" {
		return ref.Label
	}
	def, ok := c.effectDefs[ref.ID]
	if !ok || def.LabelTemplate == "" {
		return ref.ID
	}
	return renderLabel(def.LabelTemplate, c.EffectParams(ref))
}

func renderLabel(tpl string, params Params) string {
	out := tpl
	for key, value := range params {
		out = strings.ReplaceAll(out, "{"+key+"}", fmt.Sprint(value))
	}
	return out
}
