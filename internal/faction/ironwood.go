package faction

import (
	"sort"

	"woodland/internal/game"
)

// buildTracks is the VP scored for placing a building, indexed by how many
// of that type are already on the map.
var buildTracks = map[game.PieceType][]int{
	game.Sawmill:   {0, 1, 2, 3, 4, 5},
	game.Workshop:  {0, 2, 2, 3, 4, 5},
	game.Recruiter: {0, 1, 2, 3, 3, 4},
}

const maxEveningDraw = 5

// Ironwood is the industrial faction: sawmills make wood, wood pays for
// buildings, workshops draw cards.
type Ironwood struct{ base }

func (Ironwood) Faction() game.Faction { return game.Ironwood }

func (Ironwood) Info() Info {
	return Info{
		ID:          game.Ironwood,
		Name:        "Ironwood Collective",
		Color:       "#D97706",
		Description: "An industrial empire spreading across the woodland. Build structures and maintain order.",
		Difficulty:  "Easy",
		Playstyle:   "Engine Building",
	}
}

func (Ironwood) InitialState() game.FactionState {
	return game.FactionState{
		Kind: game.Ironwood,
		Ironwood: &game.IronwoodState{
			Warriors: 25,
			Supply: map[game.PieceType]int{
				game.Sawmill:   6,
				game.Workshop:  6,
				game.Recruiter: 6,
			},
		},
	}
}

// Setup garrisons the board: keep plus four warriors in the corner, one
// warrior everywhere not held by another seat, and one of each building
// next to the keep.
func (iw Ironwood) Setup(t Table, seat, corner int, reserved []int) error {
	s := t.State()
	s.Players[seat].FactionState = iw.InitialState()
	st := s.Players[seat].FactionState.Ironwood

	if err := t.PlacePiece(game.Ironwood, game.Keep, corner); err != nil {
		return err
	}
	isReserved := func(id int) bool {
		for _, r := range reserved {
			if r == id {
				return true
			}
		}
		return false
	}
	for _, c := range s.Clearings {
		if isReserved(c.ID) {
			continue
		}
		n := 1
		if c.ID == corner {
			n = 4
		}
		if err := t.PlaceWarriors(game.Ironwood, c.ID, n); err != nil {
			return err
		}
		st.Warriors -= n
	}

	keep, _ := s.Clearing(corner)
	candidates := append([]int(nil), keep.Adjacent...)
	sort.Ints(candidates)
	candidates = append(candidates, corner)
	used := map[int]bool{}
	for _, b := range []game.PieceType{game.Sawmill, game.Workshop, game.Recruiter} {
		for _, id := range candidates {
			if isReserved(id) || (used[id] && id != corner) {
				continue
			}
			c, _ := s.Clearing(id)
			if s.Buildings(id) >= c.Slots {
				continue
			}
			if err := t.PlacePiece(game.Ironwood, b, id); err != nil {
				return err
			}
			st.Supply[b]--
			used[id] = true
			break
		}
	}
	return nil
}

func (Ironwood) Birdsong(t Table, seat int) (Step, error) {
	s := t.State()
	st := s.Players[seat].FactionState.Ironwood
	n := s.Count(game.Ironwood, game.Sawmill, 0)
	st.Wood += n
	return Step{Action: "gather_wood", Amount: n}, nil
}

func (Ironwood) Evening(t Table, seat int) (Step, error) {
	workshops := t.State().Count(game.Ironwood, game.Workshop, 0)
	want := min(workshops+1, maxEveningDraw)
	return Step{Action: "draw_cards", Amount: t.Draw(seat, want)}, nil
}

func (Ironwood) DaylightActions(*game.State, int) []game.ActionKind {
	return []game.ActionKind{game.ActionBattle, game.ActionMove, game.ActionBuild, game.ActionRecruit, game.ActionCraft}
}

func (Ironwood) Authorize(t Table, seat int, kind game.ActionKind, payload any) error {
	s := t.State()
	st := s.Players[seat].FactionState.Ironwood
	switch p := payload.(type) {
	case game.RecruitPayload:
		if s.Count(game.Ironwood, game.Recruiter, p.Clearing)+s.Count(game.Ironwood, game.Keep, p.Clearing) == 0 {
			return game.Violation("no recruiter in clearing %d", p.Clearing)
		}
		if p.Count > st.Warriors {
			return game.Violation("only %d warriors in supply", st.Warriors)
		}
		st.Warriors -= p.Count
	case game.BuildPayload:
		track, ok := buildTracks[p.BuildingType]
		if !ok {
			return game.Violation("ironwood cannot build a %s", p.BuildingType)
		}
		if st.Supply[p.BuildingType] == 0 {
			return game.Violation("no %s left in supply", p.BuildingType)
		}
		onBoard := s.Count(game.Ironwood, p.BuildingType, 0)
		if st.Wood < onBoard {
			return game.Violation("a %s costs %d wood, have %d", p.BuildingType, onBoard, st.Wood)
		}
		st.Wood -= onBoard
		st.Supply[p.BuildingType]--
		if onBoard < len(track) {
			return t.ScoreVP(game.Ironwood, track[onBoard])
		}
	}
	return nil
}

func (Ironwood) Crafters(s *game.State, _ int) Crafters {
	return Crafters{BySuit: piecesBySuit(s, game.Ironwood, game.Workshop)}
}
