package faction

import (
	"sort"

	"woodland/internal/game"
)

// characters lists each wanderer character's starting items.
var characters = map[string][]string{
	"thief":   {"boot", "torch", "tea", "sword"},
	"tinker":  {"boot", "torch", "bag", "hammer"},
	"ranger":  {"boot", "torch", "crossbow", "sword"},
	"vagrant": {"boot", "torch", "coins"},
}

const (
	defaultCharacter = "thief"
	birdsongRefresh  = 3
)

// Wanderer is a lone pawn that slips between clearings exploring ruins.
// It places no pieces and never rules a clearing.
type Wanderer struct {
	base
	// Character selects the starting items; empty means the thief.
	Character string
}

func (Wanderer) Faction() game.Faction { return game.Wanderer }

func (Wanderer) Info() Info {
	return Info{
		ID:          game.Wanderer,
		Name:        "Wandering Vagabond",
		Color:       "#6B7280",
		Description: "A lone wanderer exploring the woodland. Complete quests and forge relationships.",
		Difficulty:  "Medium",
		Playstyle:   "Adventure",
	}
}

func (w Wanderer) InitialState() game.FactionState {
	name := w.Character
	if _, ok := characters[name]; !ok {
		name = defaultCharacter
	}
	return game.FactionState{
		Kind: game.Wanderer,
		Wanderer: &game.WandererState{
			Character: name,
			Ready:     append([]string(nil), characters[name]...),
			Damaged:   []string{},
		},
	}
}

// Setup starts the wanderer in the forest.
func (w Wanderer) Setup(t Table, seat, _ int, _ []int) error {
	t.State().Players[seat].FactionState = w.InitialState()
	return nil
}

func (Wanderer) Birdsong(t Table, seat int) (Step, error) {
	st := t.State().Players[seat].FactionState.Wanderer
	return Step{Action: "refresh", Amount: st.Refresh(birdsongRefresh)}, nil
}

func (Wanderer) Evening(t Table, seat int) (Step, error) {
	s := t.State()
	st := s.Players[seat].FactionState.Wanderer
	if st.InForest(s.Clearings) {
		return Step{Action: "repair", Amount: st.Refresh(len(st.Damaged))}, nil
	}
	return Step{Action: "draw_cards", Amount: t.Draw(seat, 1)}, nil
}

func (Wanderer) DaylightActions(*game.State, int) []game.ActionKind {
	return []game.ActionKind{game.ActionSlip, game.ActionExplore, game.ActionCraft}
}

func (Wanderer) Authorize(_ Table, _ int, kind game.ActionKind, _ any) error {
	return game.Violation("the wanderer cannot %s", kind)
}

func (Wanderer) Perform(t Table, seat int, kind game.ActionKind, payload any) (Step, error) {
	s := t.State()
	st := s.Players[seat].FactionState.Wanderer
	switch p := payload.(type) {
	case game.SlipPayload:
		if err := requirePhase(s, game.PhaseDaylight, kind); err != nil {
			return Step{}, err
		}
		if p.To == st.Clearing {
			return Step{}, game.Violation("already in clearing %d", p.To)
		}
		if p.To != 0 {
			if st.Clearing != 0 {
				from, _ := s.Clearing(st.Clearing)
				if !from.IsAdjacent(p.To) {
					return Step{}, game.Violation("clearing %d is not adjacent to %d", p.To, st.Clearing)
				}
			}
			if !st.Exhaust("boot") {
				return Step{}, game.Violation("slipping needs a ready boot")
			}
		}
		t.Log("slip", map[string]int{"from": st.Clearing, "to": p.To})
		st.Clearing = p.To
		return Step{Action: string(kind), Amount: p.To}, nil

	case game.ExplorePayload:
		if err := requirePhase(s, game.PhaseDaylight, kind); err != nil {
			return Step{}, err
		}
		if st.Clearing == 0 {
			return Step{}, game.Violation("there is nothing to explore in the forest")
		}
		i := sort.SearchInts(st.Explored, st.Clearing)
		if i < len(st.Explored) && st.Explored[i] == st.Clearing {
			return Step{}, game.Violation("clearing %d has already been explored", st.Clearing)
		}
		if s.AvailableItems[p.Item] <= 0 {
			return Step{}, game.Violation("no %s left in the supply", p.Item)
		}
		if !st.Exhaust("torch") {
			return Step{}, game.Violation("exploring needs a ready torch")
		}
		s.AvailableItems[p.Item]--
		st.Ready = append(st.Ready, p.Item)
		st.Explored = append(st.Explored, st.Clearing)
		sort.Ints(st.Explored)
		if err := t.ScoreVP(game.Wanderer, 1); err != nil {
			return Step{}, err
		}
		return Step{Action: string(kind), Amount: 1}, nil
	}
	return base{}.Perform(t, seat, kind, payload)
}

// Crafters gives the wanderer one wild crafter per ready hammer.
func (Wanderer) Crafters(s *game.State, seat int) Crafters {
	n := 0
	for _, it := range s.Players[seat].FactionState.Wanderer.Ready {
		if it == "hammer" {
			n++
		}
	}
	return Crafters{Wild: n}
}
