package game

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ActionKind names an entry of the action vocabulary.
type ActionKind string

const (
	ActionMove           ActionKind = "move"
	ActionBattle         ActionKind = "battle"
	ActionBuild          ActionKind = "build"
	ActionRecruit        ActionKind = "recruit"
	ActionEndPhase       ActionKind = "end_phase"
	ActionEndTurn        ActionKind = "end_turn"
	ActionCraft          ActionKind = "craft"
	ActionDominance      ActionKind = "activate_dominance"
	ActionChooseLeader   ActionKind = "choose_leader"
	ActionAddToDecree    ActionKind = "add_to_decree"
	ActionSpreadSympathy ActionKind = "spread_sympathy"
	ActionRevolt         ActionKind = "revolt"
	ActionSlip           ActionKind = "slip"
	ActionExplore        ActionKind = "explore"
)

// Action is a request submitted by a player.
// ID is optional; when set, a repeated submission is not applied twice.
type Action struct {
	ID      string          `json:"id,omitempty"`
	Kind    ActionKind      `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type MovePayload struct {
	From  int `json:"from"`
	To    int `json:"to"`
	Count int `json:"count"`
}

type BattlePayload struct {
	Defender Faction `json:"defender"`
	Clearing int     `json:"clearing"`
}

type BuildPayload struct {
	BuildingType PieceType `json:"buildingType"`
	Clearing     int       `json:"clearing"`
}

type RecruitPayload struct {
	Clearing int `json:"clearing"`
	Count    int `json:"count"`
}

type CardPayload struct {
	CardID string `json:"cardId"`
}

type LeaderPayload struct {
	Leader string `json:"leader"`
}

type DecreePayload struct {
	CardID string     `json:"cardId"`
	Column ActionKind `json:"column"`
}

type ClearingPayload struct {
	Clearing int `json:"clearing"`
}

type SlipPayload struct {
	To int `json:"to"`
}

type ExplorePayload struct {
	Item string `json:"item"`
}

// NewAction builds an action with a JSON-encoded payload.
func NewAction(kind ActionKind, payload any) Action {
	a := Action{Kind: kind}
	if payload != nil {
		a.Payload, _ = json.Marshal(payload)
	}
	return a
}

// Decode parses and checks the payload for well-formedness. It never looks
// at game state; the returned value is one of the *Payload types above, or
// nil for kinds without a payload.
func (a Action) Decode() (any, error) {
	switch a.Kind {
	case ActionMove:
		var p MovePayload
		if err := decodeStrict(a.Payload, &p); err != nil {
			return nil, err
		}
		if err := checkClearing("from", p.From); err != nil {
			return nil, err
		}
		if err := checkClearing("to", p.To); err != nil {
			return nil, err
		}
		if p.Count < 1 {
			return nil, invalid("count", "must be at least 1")
		}
		return p, nil
	case ActionBattle:
		var p BattlePayload
		if err := decodeStrict(a.Payload, &p); err != nil {
			return nil, err
		}
		if !p.Defender.Valid() {
			return nil, invalid("defender", fmt.Sprintf("unknown faction %q", p.Defender))
		}
		if err := checkClearing("clearing", p.Clearing); err != nil {
			return nil, err
		}
		return p, nil
	case ActionBuild:
		var p BuildPayload
		if err := decodeStrict(a.Payload, &p); err != nil {
			return nil, err
		}
		if !p.BuildingType.IsBuilding() {
			return nil, invalid("buildingType", fmt.Sprintf("%q is not a building", p.BuildingType))
		}
		if err := checkClearing("clearing", p.Clearing); err != nil {
			return nil, err
		}
		return p, nil
	case ActionRecruit:
		var p RecruitPayload
		if err := decodeStrict(a.Payload, &p); err != nil {
			return nil, err
		}
		if err := checkClearing("clearing", p.Clearing); err != nil {
			return nil, err
		}
		if p.Count < 1 {
			return nil, invalid("count", "must be at least 1")
		}
		return p, nil
	case ActionEndPhase, ActionEndTurn:
		if err := decodeStrict(a.Payload, &struct{}{}); err != nil {
			return nil, err
		}
		return nil, nil
	case ActionCraft, ActionDominance:
		var p CardPayload
		if err := decodeStrict(a.Payload, &p); err != nil {
			return nil, err
		}
		if p.CardID == "" {
			return nil, invalid("cardId", "required")
		}
		return p, nil
	case ActionChooseLeader:
		var p LeaderPayload
		if err := decodeStrict(a.Payload, &p); err != nil {
			return nil, err
		}
		if p.Leader == "" {
			return nil, invalid("leader", "required")
		}
		return p, nil
	case ActionAddToDecree:
		var p DecreePayload
		if err := decodeStrict(a.Payload, &p); err != nil {
			return nil, err
		}
		if p.CardID == "" {
			return nil, invalid("cardId", "required")
		}
		if !isDecreeColumn(p.Column) {
			return nil, invalid("column", fmt.Sprintf("unknown decree column %q", p.Column))
		}
		return p, nil
	case ActionSpreadSympathy, ActionRevolt:
		var p ClearingPayload
		if err := decodeStrict(a.Payload, &p); err != nil {
			return nil, err
		}
		if err := checkClearing("clearing", p.Clearing); err != nil {
			return nil, err
		}
		return p, nil
	case ActionSlip:
		var p SlipPayload
		if err := decodeStrict(a.Payload, &p); err != nil {
			return nil, err
		}
		if p.To < 0 || p.To > BoardSize {
			return nil, invalid("to", fmt.Sprintf("clearing %d out of range", p.To))
		}
		return p, nil
	case ActionExplore:
		var p ExplorePayload
		if err := decodeStrict(a.Payload, &p); err != nil {
			return nil, err
		}
		if p.Item == "" {
			return nil, invalid("item", "required")
		}
		return p, nil
	case "":
		return nil, invalid("kind", "required")
	default:
		return nil, invalid("kind", fmt.Sprintf("unknown action %q", a.Kind))
	}
}

// Validate reports whether the action is well formed.
func (a Action) Validate() error {
	_, err := a.Decode()
	return err
}

func decodeStrict(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return invalid("payload", err.Error())
	}
	return nil
}

func checkClearing(field string, id int) error {
	if id < 1 || id > BoardSize {
		return invalid(field, fmt.Sprintf("clearing %d out of range", id))
	}
	return nil
}

func isDecreeColumn(k ActionKind) bool {
	for _, c := range DecreeColumns {
		if c == k {
			return true
		}
	}
	return false
}
