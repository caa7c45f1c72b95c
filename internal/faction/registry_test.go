package faction

import (
	"testing"

	"woodland/internal/game"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(Eyrie{})

	got, ok := r.Get(game.Eyrie)
	if !ok {
		t.Fatal("expected to find registered faction")
	}
	if got.Info().Name != "Eyrie Dynasty" {
		t.Fatalf("expected Eyrie Dynasty, got %s", got.Info().Name)
	}

	_, ok = r.Get(game.Alliance)
	if ok {
		t.Fatal("expected not found for unregistered faction")
	}
}

func TestRegistryListInSeatOrder(t *testing.T) {
	infos := Default().List()
	if len(infos) != len(game.Factions) {
		t.Fatalf("expected %d factions, got %d", len(game.Factions), len(infos))
	}
	for i, info := range infos {
		if info.ID != game.Factions[i] {
			t.Fatalf("position %d: expected %s, got %s", i, game.Factions[i], info.ID)
		}
	}
}

func TestRegistryListEmpty(t *testing.T) {
	r := NewRegistry()
	infos := r.List()
	if len(infos) != 0 {
		t.Fatalf("expected 0 factions, got %d", len(infos))
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(Ironwood{})

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	r.Register(Ironwood{}) // should panic
}

func TestInitialStatesMatchFaction(t *testing.T) {
	for _, info := range Default().List() {
		rs, _ := Default().Get(info.ID)
		fs := rs.InitialState()
		if fs.Kind != info.ID {
			t.Fatalf("%s: initial state kind %q", info.ID, fs.Kind)
		}
		if err := fs.Validate(); err != nil {
			t.Fatalf("%s: %v", info.ID, err)
		}
	}
}

func TestPayCardsPrefersExactSuit(t *testing.T) {
	s := &game.State{Players: []game.Player{{Hand: []game.Card{
		{ID: "b", Suit: game.Bird},
		{ID: "f", Suit: game.Fox},
		{ID: "m", Suit: game.Mouse},
	}}}}
	tbl := &stubTable{s: s}

	if err := payCards(tbl, 0, game.Fox, 1); err != nil {
		t.Fatal(err)
	}
	if len(tbl.discarded) != 1 || tbl.discarded[0] != "f" {
		t.Fatalf("expected fox discarded, got %v", tbl.discarded)
	}
	if err := payCards(tbl, 0, game.Fox, 2); !game.IsRuleViolation(err) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if len(tbl.discarded) != 1 {
		t.Fatal("a failed payment must not discard anything")
	}
}

// stubTable records discards and otherwise does nothing.
type stubTable struct {
	s         *game.State
	discarded []string
}

func (t *stubTable) State() *game.State { return t.s }
func (t *stubTable) Draw(int, int) int  { return 0 }
func (t *stubTable) Discard(seat int, id string) (game.Card, error) {
	c, ok := t.s.Players[seat].TakeCard(id)
	if !ok {
		return game.Card{}, game.Violation("missing %s", id)
	}
	t.discarded = append(t.discarded, id)
	return c, nil
}
func (t *stubTable) ScoreVP(game.Faction, int) error                      { return nil }
func (t *stubTable) LoseVP(game.Faction, int)                             {}
func (t *stubTable) PlaceWarriors(game.Faction, int, int) error           { return nil }
func (t *stubTable) PlacePiece(game.Faction, game.PieceType, int) error   { return nil }
func (t *stubTable) RemoveEnemies(game.Faction, int) game.Losses          { return game.Losses{} }
func (t *stubTable) Log(string, any)                                      {}
