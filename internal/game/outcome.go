package game

import (
	"fmt"
	"sort"
	"strings"
)

// OutcomeKind classifies a protocol step result: either the protocol
// needs more input, or it finished.
type OutcomeKind string

const (
	// OutcomeNone is the zero kind: the effect completed with nothing
	// to prompt or report.
	OutcomeNone OutcomeKind = ""
	// OutcomeNeedTarget asks the actor to pick a target player.
	OutcomeNeedTarget OutcomeKind = "need_target"
	// OutcomeNeedConsent asks the chosen counterparty to agree or refuse.
	OutcomeNeedConsent OutcomeKind = "need_consent"
	// OutcomeNeedItem asks the actor to pick an item to offer.
	OutcomeNeedItem OutcomeKind = "need_item"
	// OutcomeNeedPartner asks the actor to pick a trade partner.
	OutcomeNeedPartner OutcomeKind = "need_partner"
	// OutcomeNeedChoice asks the actor to pick one option by index.
	OutcomeNeedChoice OutcomeKind = "need_choice"
	// OutcomeNeedDecision asks a non-actor participant for a per-player
	// decision (watch, eat, benefit pick).
	OutcomeNeedDecision OutcomeKind = "need_decision"
	// OutcomeNeedHelp asks the volunteer whether to bail the actor out
	// of a failed resource gate.
	OutcomeNeedHelp OutcomeKind = "need_help"
	// OutcomeDone ends the protocol; Payload.OK tells success apart
	// from a refused or failed attempt.
	OutcomeDone OutcomeKind = "done"
	// OutcomeFail ends the protocol before it properly started.
	OutcomeFail OutcomeKind = "fail"
)

// Terminal reports whether the outcome ends the protocol.
func (k OutcomeKind) Terminal() bool {
	return k == OutcomeDone || k == OutcomeFail
}

// TradeItem is one sellable item offer.
type TradeItem struct {
	Kind   string `json:"kind"`
	Amount int    `json:"amount"`
	Label  string `json:"label"`
}

// SwapOption is one exchangeable item kind.
type SwapOption struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

// Payload carries the data a driver needs to render the next input or
// report the result. Fields are populated per outcome kind.
type Payload struct {
	OK     bool   `json:"ok,omitempty"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`

	Targets    []string     `json:"targets,omitempty"`
	TargetID   string       `json:"target_id,omitempty"`
	Partners   []string     `json:"partners,omitempty"`
	PartnerID  string       `json:"partner_id,omitempty"`
	Items      []TradeItem  `json:"items,omitempty"`
	Options    []SwapOption `json:"options,omitempty"`
	Price      int          `json:"price,omitempty"`
	HelpAction string       `json:"help_action,omitempty"`

	// Detail carries free-form result fields for done outcomes, such
	// as the traded item and final price.
	Detail map[string]any `json:"detail,omitempty"`
}

// Outcome is one protocol step result. Pending is nil once the
// protocol is over.
type Outcome struct {
	Kind    OutcomeKind
	Payload Payload
	Pending Pending
}

func done(p Payload) Outcome {
	return Outcome{Kind: OutcomeDone, Payload: p}
}

func fail(reason string) Outcome {
	return Outcome{Kind: OutcomeFail, Payload: Payload{Reason: reason}}
}

// describe renders the payload for the transcript, keys sorted for
// stable output.
func (p Payload) describe() string {
	parts := []string{fmt.Sprintf("ok=%t", p.OK)}
	if p.Reason != "" {
		parts = append(parts, "reason="+p.Reason)
	}
	if p.TargetID != "" {
		parts = append(parts, "target="+p.TargetID)
	}
	if p.PartnerID != "" {
		parts = append(parts, "partner="+p.PartnerID)
	}
	if p.Price > 0 {
		parts = append(parts, fmt.Sprintf("price=%d", p.Price))
	}
	if len(p.Detail) > 0 {
		keys := make([]string, 0, len(p.Detail))
		for k := range p.Detail {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, p.Detail[k]))
		}
	}
	return strings.Join(parts, " ")
}
