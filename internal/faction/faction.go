// Package faction holds the four asymmetric rule sets. Each rule set acts on
// the game only through a Table supplied by the engine.
package faction

import (
	"fmt"
	"sync"

	"woodland/internal/game"
)

// Table is the part of the engine a rule set may drive.
type Table interface {
	State() *game.State
	// Draw deals up to count cards into a hand and returns how many arrived.
	Draw(seat, count int) int
	// Discard moves a card from a hand to the discard pile.
	Discard(seat int, cardID string) (game.Card, error)
	ScoreVP(f game.Faction, points int) error
	// LoseVP subtracts points, never going below zero.
	LoseVP(f game.Faction, points int)
	PlaceWarriors(f game.Faction, clearing, count int) error
	// PlacePiece adds a building or token, enforcing building capacity only.
	PlacePiece(f game.Faction, t game.PieceType, clearing int) error
	// RemoveEnemies strips every piece not owned by f from a clearing.
	RemoveEnemies(f game.Faction, clearing int) game.Losses
	Log(kind string, payload any)
}

// Step describes what a phase hook or faction action did, or what it requires.
type Step struct {
	Action   string   `json:"action"`
	Amount   int      `json:"amount,omitempty"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// Crafters is the crafting capacity a faction has on the board.
type Crafters struct {
	BySuit map[game.Suit]int
	Wild   int
}

// Info describes a faction for the lobby.
type Info struct {
	ID          game.Faction `json:"id"`
	Name        string       `json:"name"`
	Color       string       `json:"color"`
	Description string       `json:"description"`
	Difficulty  string       `json:"difficulty"`
	Playstyle   string       `json:"playstyle"`
}

// RuleSet is the capability set every faction supplies.
type RuleSet interface {
	Faction() game.Faction
	Info() Info
	InitialState() game.FactionState
	// Setup places starting pieces. reserved lists corners held by other seats.
	Setup(t Table, seat, corner int, reserved []int) error
	Birdsong(t Table, seat int) (Step, error)
	Evening(t Table, seat int) (Step, error)
	BirdsongActions(s *game.State, seat int) []game.ActionKind
	DaylightActions(s *game.State, seat int) []game.ActionKind
	// LeavePhase runs before the seat leaves its current phase. With forced
	// set, requirements are waived but consequences still apply.
	LeavePhase(t Table, seat int, forced bool) error
	// Authorize checks faction preconditions for a standard action and pays its costs.
	Authorize(t Table, seat int, kind game.ActionKind, payload any) error
	// Perform executes a faction-only action.
	Perform(t Table, seat int, kind game.ActionKind, payload any) (Step, error)
	Crafters(s *game.State, seat int) Crafters
}

// Registry holds the rule set for each faction.
type Registry struct {
	mu    sync.RWMutex
	rules map[game.Faction]RuleSet
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[game.Faction]RuleSet)}
}

// Default returns a registry with all four factions registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(Ironwood{})
	r.Register(Eyrie{})
	r.Register(Alliance{})
	r.Register(Wanderer{})
	return r
}

// Register adds a rule set. Panics on duplicate factions.
func (r *Registry) Register(rs RuleSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := rs.Faction()
	if _, exists := r.rules[f]; exists {
		panic(fmt.Sprintf("faction %q already registered", f))
	}
	r.rules[f] = rs
}

// Get returns the rule set for a faction.
func (r *Registry) Get(f game.Faction) (RuleSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.rules[f]
	return rs, ok
}

// List returns info for all registered factions in seating order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]Info, 0, len(r.rules))
	for _, f := range game.Factions {
		if rs, ok := r.rules[f]; ok {
			infos = append(infos, rs.Info())
		}
	}
	return infos
}

// base supplies the defaults shared by every rule set.
type base struct{}

func (base) LeavePhase(Table, int, bool) error { return nil }

func (base) BirdsongActions(*game.State, int) []game.ActionKind { return nil }

func (base) Perform(t Table, seat int, kind game.ActionKind, _ any) (Step, error) {
	f := t.State().Players[seat].Faction
	return Step{}, game.Violation("%s is not a %s action", kind, f)
}

func requirePhase(s *game.State, want game.Phase, kind game.ActionKind) error {
	if s.Phase != want {
		return game.Violation("%s is only allowed in %s, not %s", kind, want, s.Phase)
	}
	return nil
}

// clearingOf returns the clearing a standard action targets.
func clearingOf(payload any) int {
	switch p := payload.(type) {
	case game.MovePayload:
		return p.From
	case game.BattlePayload:
		return p.Clearing
	case game.BuildPayload:
		return p.Clearing
	case game.RecruitPayload:
		return p.Clearing
	}
	return 0
}

// piecesBySuit counts a faction's pieces of type t per clearing suit.
func piecesBySuit(s *game.State, f game.Faction, t game.PieceType) map[game.Suit]int {
	out := make(map[game.Suit]int)
	for _, p := range s.Pieces {
		if p.Faction != f || p.Type != t {
			continue
		}
		if c, ok := s.Clearing(p.Clearing); ok {
			out[c.Suit]++
		}
	}
	return out
}

// payCards discards n hand cards that can pay for suit, preferring exact
// matches over birds. Nothing is discarded unless n cards are available.
func payCards(t Table, seat int, suit game.Suit, n int) error {
	hand := t.State().Players[seat].Hand
	var exact, wild []string
	for _, c := range hand {
		switch {
		case c.Suit == suit:
			exact = append(exact, c.ID)
		case c.Suit == game.Bird:
			wild = append(wild, c.ID)
		}
	}
	ids := append(exact, wild...)
	if len(ids) < n {
		return game.Violation("need %d %s cards, have %d", n, suit, len(ids))
	}
	for _, id := range ids[:n] {
		if _, err := t.Discard(seat, id); err != nil {
			return err
		}
	}
	return nil
}
