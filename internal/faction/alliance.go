package faction

import (
	"woodland/internal/game"
)

// sympathyTrack is the VP scored for the nth sympathy token placed.
var sympathyTrack = [10]int{0, 1, 1, 1, 2, 2, 3, 4, 4, 4}

// revoltCost is the number of matching cards a revolt consumes.
const revoltCost = 2

// Alliance is the woodland insurgency: sympathy spreads, revolts seize
// clearings, officers score each evening.
type Alliance struct{ base }

func (Alliance) Faction() game.Faction { return game.Alliance }

func (Alliance) Info() Info {
	return Info{
		ID:          game.Alliance,
		Name:        "Woodland Alliance",
		Color:       "#16A34A",
		Description: "A grassroots movement seeking to overthrow oppression. Spread sympathy and incite revolt.",
		Difficulty:  "Hard",
		Playstyle:   "Insurgency",
	}
}

func (Alliance) InitialState() game.FactionState {
	return game.FactionState{
		Kind: game.Alliance,
		Alliance: &game.AllianceState{
			Sympathy: 10,
			Warriors: 10,
		},
	}
}

// Setup starts the alliance with nothing on the board.
func (a Alliance) Setup(t Table, seat, _ int, _ []int) error {
	t.State().Players[seat].FactionState = a.InitialState()
	return nil
}

func (Alliance) Birdsong(t Table, _ int) (Step, error) {
	return Step{
		Action:  "revolt_or_spread",
		Options: []string{string(game.ActionRevolt), string(game.ActionSpreadSympathy)},
	}, nil
}

func (Alliance) Evening(t Table, seat int) (Step, error) {
	officers := t.State().Players[seat].FactionState.Alliance.Officers
	if err := t.ScoreVP(game.Alliance, officers); err != nil {
		return Step{}, err
	}
	return Step{Action: "score_officers", Amount: officers}, nil
}

func (Alliance) BirdsongActions(*game.State, int) []game.ActionKind {
	return []game.ActionKind{game.ActionSpreadSympathy, game.ActionRevolt}
}

func (Alliance) DaylightActions(*game.State, int) []game.ActionKind {
	return []game.ActionKind{game.ActionMove, game.ActionBattle, game.ActionRecruit, game.ActionCraft}
}

func (Alliance) Authorize(t Table, seat int, kind game.ActionKind, payload any) error {
	s := t.State()
	st := s.Players[seat].FactionState.Alliance
	switch p := payload.(type) {
	case game.RecruitPayload:
		if s.Count(game.Alliance, game.Base, p.Clearing) == 0 {
			return game.Violation("no base in clearing %d", p.Clearing)
		}
		if p.Count > st.Warriors {
			return game.Violation("only %d warriors in supply", st.Warriors)
		}
		st.Warriors -= p.Count
	case game.BuildPayload:
		return game.Violation("the alliance builds bases only by revolting")
	}
	return nil
}

func (Alliance) Perform(t Table, seat int, kind game.ActionKind, payload any) (Step, error) {
	s := t.State()
	st := s.Players[seat].FactionState.Alliance
	p, ok := payload.(game.ClearingPayload)
	if !ok {
		return base{}.Perform(t, seat, kind, payload)
	}
	if err := requirePhase(s, game.PhaseBirdsong, kind); err != nil {
		return Step{}, err
	}
	c, _ := s.Clearing(p.Clearing)

	switch kind {
	case game.ActionSpreadSympathy:
		if st.Sympathy == 0 {
			return Step{}, game.Violation("no sympathy tokens left")
		}
		if s.Count(game.Alliance, game.Sympathy, c.ID) > 0 {
			return Step{}, game.Violation("clearing %d is already sympathetic", c.ID)
		}
		if s.Count(game.Alliance, game.Sympathy, 0) > 0 && !adjacentToSympathy(s, c) {
			return Step{}, game.Violation("clearing %d is not adjacent to sympathy", c.ID)
		}
		if err := payCards(t, seat, c.Suit, 1); err != nil {
			return Step{}, err
		}
		if err := t.PlacePiece(game.Alliance, game.Sympathy, c.ID); err != nil {
			return Step{}, err
		}
		st.Sympathy--
		placed := s.Count(game.Alliance, game.Sympathy, 0)
		vp := sympathyTrack[min(placed, len(sympathyTrack))-1]
		if err := t.ScoreVP(game.Alliance, vp); err != nil {
			return Step{}, err
		}
		return Step{Action: string(kind), Amount: vp}, nil

	case game.ActionRevolt:
		if s.Count(game.Alliance, game.Sympathy, c.ID) == 0 {
			return Step{}, game.Violation("clearing %d is not sympathetic", c.ID)
		}
		if piecesBySuit(s, game.Alliance, game.Base)[c.Suit] > 0 {
			return Step{}, game.Violation("a %s base already stands", c.Suit)
		}
		if err := payCards(t, seat, c.Suit, revoltCost); err != nil {
			return Step{}, err
		}
		losses := t.RemoveEnemies(game.Alliance, c.ID)
		if err := t.ScoreVP(game.Alliance, losses.Buildings+losses.Tokens); err != nil {
			return Step{}, err
		}
		if err := t.PlacePiece(game.Alliance, game.Base, c.ID); err != nil {
			return Step{}, err
		}
		warriors := min(sympatheticOfSuit(s, c.Suit), st.Warriors)
		if warriors > 0 {
			if err := t.PlaceWarriors(game.Alliance, c.ID, warriors); err != nil {
				return Step{}, err
			}
			st.Warriors -= warriors
		}
		st.Officers++
		return Step{Action: string(kind), Amount: losses.Total()}, nil
	}
	return base{}.Perform(t, seat, kind, payload)
}

func adjacentToSympathy(s *game.State, c game.Clearing) bool {
	for _, id := range c.Adjacent {
		if s.Count(game.Alliance, game.Sympathy, id) > 0 {
			return true
		}
	}
	return false
}

func sympatheticOfSuit(s *game.State, suit game.Suit) int {
	n := 0
	for _, p := range s.Pieces {
		if p.Faction != game.Alliance || p.Type != game.Sympathy {
			continue
		}
		if c, ok := s.Clearing(p.Clearing); ok && c.Suit == suit {
			n++
		}
	}
	return n
}

func (Alliance) Crafters(s *game.State, _ int) Crafters {
	return Crafters{BySuit: piecesBySuit(s, game.Alliance, game.Sympathy)}
}
