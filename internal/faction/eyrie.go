package faction

import (
	"slices"

	"woodland/internal/game"
)

// roostVP is scored each evening, indexed by roosts on the map (capped at 7).
var roostVP = [8]int{0, 0, 1, 2, 3, 4, 4, 5}

// leaders maps each Eyrie leader to the decree columns its viziers fill.
var leaders = map[string][2]game.ActionKind{
	"builder":     {game.ActionRecruit, game.ActionMove},
	"charismatic": {game.ActionRecruit, game.ActionBattle},
	"commander":   {game.ActionMove, game.ActionBattle},
	"despot":      {game.ActionMove, game.ActionBuild},
}

var leaderOrder = []string{"builder", "charismatic", "commander", "despot"}

const maxDecreeAdds = 2

// Eyrie is the bird dynasty: each turn it must carry out a growing decree
// or fall into turmoil.
type Eyrie struct{ base }

func (Eyrie) Faction() game.Faction { return game.Eyrie }

func (Eyrie) Info() Info {
	return Info{
		ID:          game.Eyrie,
		Name:        "Eyrie Dynasty",
		Color:       "#3B82F6",
		Description: "A noble bird dynasty ruling from roosts. Follow your decree or fall into turmoil.",
		Difficulty:  "Medium",
		Playstyle:   "Programming",
	}
}

func (Eyrie) InitialState() game.FactionState {
	return game.FactionState{
		Kind: game.Eyrie,
		Eyrie: &game.EyrieState{
			Decree:   emptyDecree(),
			Roosts:   7,
			Warriors: 20,
		},
	}
}

func emptyDecree() map[game.ActionKind][]game.DecreeEntry {
	d := make(map[game.ActionKind][]game.DecreeEntry, len(game.DecreeColumns))
	for _, col := range game.DecreeColumns {
		d[col] = nil
	}
	return d
}

func (e Eyrie) Setup(t Table, seat, corner int, _ []int) error {
	s := t.State()
	s.Players[seat].FactionState = e.InitialState()
	st := s.Players[seat].FactionState.Eyrie
	if err := t.PlacePiece(game.Eyrie, game.Roost, corner); err != nil {
		return err
	}
	st.Roosts--
	if err := t.PlaceWarriors(game.Eyrie, corner, 6); err != nil {
		return err
	}
	st.Warriors -= 6
	return nil
}

func needsLeader(st *game.EyrieState) bool {
	return st.Leader == "" || st.Turmoil
}

// LeaderOptions lists the leaders the Eyrie may choose next. Once every
// leader has fallen they all become available again.
func LeaderOptions(st *game.EyrieState) []string {
	var out []string
	for _, name := range leaderOrder {
		if !slices.Contains(st.UsedLeaders, name) {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return slices.Clone(leaderOrder)
	}
	return out
}

func (Eyrie) Birdsong(t Table, seat int) (Step, error) {
	st := t.State().Players[seat].FactionState.Eyrie
	st.AddedThisTurn = 0
	for _, col := range game.DecreeColumns {
		for i := range st.Decree[col] {
			st.Decree[col][i].Resolved = false
		}
	}
	if needsLeader(st) {
		return Step{Action: "choose_leader", Required: true, Options: LeaderOptions(st)}, nil
	}
	return Step{Action: "add_to_decree", Required: true}, nil
}

func (Eyrie) Evening(t Table, seat int) (Step, error) {
	roosts := min(t.State().Count(game.Eyrie, game.Roost, 0), len(roostVP)-1)
	vp := roostVP[roosts]
	if err := t.ScoreVP(game.Eyrie, vp); err != nil {
		return Step{}, err
	}
	return Step{Action: "score_roosts", Amount: vp}, nil
}

// nextColumn returns the first decree column with unresolved entries.
func nextColumn(st *game.EyrieState) (game.ActionKind, bool) {
	for _, col := range game.DecreeColumns {
		for _, e := range st.Decree[col] {
			if !e.Resolved {
				return col, true
			}
		}
	}
	return "", false
}

func (Eyrie) BirdsongActions(s *game.State, seat int) []game.ActionKind {
	st := s.Players[seat].FactionState.Eyrie
	if needsLeader(st) {
		return []game.ActionKind{game.ActionChooseLeader}
	}
	if st.AddedThisTurn < maxDecreeAdds && len(s.Players[seat].Hand) > 0 {
		return []game.ActionKind{game.ActionAddToDecree}
	}
	return nil
}

func (Eyrie) DaylightActions(s *game.State, seat int) []game.ActionKind {
	st := s.Players[seat].FactionState.Eyrie
	if col, ok := nextColumn(st); ok {
		return []game.ActionKind{col, game.ActionCraft}
	}
	return []game.ActionKind{game.ActionCraft}
}

func (Eyrie) LeavePhase(t Table, seat int, forced bool) error {
	s := t.State()
	st := s.Players[seat].FactionState.Eyrie
	switch s.Phase {
	case game.PhaseBirdsong:
		if forced {
			return nil
		}
		if needsLeader(st) {
			return game.Violation("the eyrie must choose a leader")
		}
		if st.AddedThisTurn == 0 && len(s.Players[seat].Hand) > 0 {
			return game.Violation("the eyrie must add a card to the decree")
		}
	case game.PhaseDaylight:
		if _, pending := nextColumn(st); pending {
			fallIntoTurmoil(t, st)
		}
	}
	return nil
}

func fallIntoTurmoil(t Table, st *game.EyrieState) {
	birds := 0
	for _, col := range game.DecreeColumns {
		for _, e := range st.Decree[col] {
			if e.Suit == game.Bird {
				birds++
			}
		}
	}
	t.LoseVP(game.Eyrie, birds)
	if st.Leader != "" {
		st.UsedLeaders = append(st.UsedLeaders, st.Leader)
	}
	st.Leader = ""
	st.Decree = emptyDecree()
	st.Turmoil = true
	t.Log("turmoil", map[string]int{"lostVP": birds})
}

func (Eyrie) Authorize(t Table, seat int, kind game.ActionKind, payload any) error {
	s := t.State()
	st := s.Players[seat].FactionState.Eyrie
	col, ok := nextColumn(st)
	if !ok {
		return game.Violation("the decree has nothing left to resolve")
	}
	if col != kind {
		return game.Violation("the decree requires %s next", col)
	}
	clearing := clearingOf(payload)
	c, _ := s.Clearing(clearing)
	entry := -1
	for i, e := range st.Decree[col] {
		if !e.Resolved && e.Suit.Matches(c.Suit) {
			entry = i
			break
		}
	}
	if entry < 0 {
		return game.Violation("no %s decree card matches %s clearing %d", col, c.Suit, clearing)
	}

	switch p := payload.(type) {
	case game.RecruitPayload:
		if s.Count(game.Eyrie, game.Roost, p.Clearing) == 0 {
			return game.Violation("no roost in clearing %d", p.Clearing)
		}
		want := 1
		if st.Leader == "charismatic" {
			want = 2
		}
		if p.Count != want {
			return game.Violation("each recruit decree card places %d warriors", want)
		}
		if p.Count > st.Warriors {
			return game.Violation("only %d warriors in supply", st.Warriors)
		}
		st.Warriors -= p.Count
	case game.BuildPayload:
		if p.BuildingType != game.Roost {
			return game.Violation("the eyrie only builds roosts")
		}
		if s.Count(game.Eyrie, game.Roost, p.Clearing) > 0 {
			return game.Violation("clearing %d already has a roost", p.Clearing)
		}
		if st.Roosts == 0 {
			return game.Violation("no roosts left in supply")
		}
		st.Roosts--
	}
	st.Decree[col][entry].Resolved = true
	return nil
}

func (Eyrie) Perform(t Table, seat int, kind game.ActionKind, payload any) (Step, error) {
	s := t.State()
	st := s.Players[seat].FactionState.Eyrie
	switch p := payload.(type) {
	case game.LeaderPayload:
		if err := requirePhase(s, game.PhaseBirdsong, kind); err != nil {
			return Step{}, err
		}
		if !needsLeader(st) {
			return Step{}, game.Violation("a leader is already in charge")
		}
		viziers, known := leaders[p.Leader]
		if !known {
			return Step{}, game.Violation("unknown leader %q", p.Leader)
		}
		if !slices.Contains(LeaderOptions(st), p.Leader) {
			return Step{}, game.Violation("leader %s has already fallen", p.Leader)
		}
		if len(st.UsedLeaders) >= len(leaderOrder) {
			st.UsedLeaders = nil
		}
		st.Leader = p.Leader
		st.Turmoil = false
		st.Decree = emptyDecree()
		for _, col := range viziers {
			st.Decree[col] = append(st.Decree[col], game.DecreeEntry{Suit: game.Bird, Vizier: true})
		}
		return Step{Action: "choose_leader"}, nil

	case game.DecreePayload:
		if err := requirePhase(s, game.PhaseBirdsong, kind); err != nil {
			return Step{}, err
		}
		if needsLeader(st) {
			return Step{}, game.Violation("choose a leader before adding to the decree")
		}
		if st.AddedThisTurn >= maxDecreeAdds {
			return Step{}, game.Violation("at most %d cards may be added per turn", maxDecreeAdds)
		}
		card, err := t.Discard(seat, p.CardID)
		if err != nil {
			return Step{}, err
		}
		st.Decree[p.Column] = append(st.Decree[p.Column], game.DecreeEntry{Suit: card.Suit})
		st.AddedThisTurn++
		return Step{Action: "add_to_decree", Amount: st.AddedThisTurn}, nil
	}
	return base{}.Perform(t, seat, kind, payload)
}

func (Eyrie) Crafters(s *game.State, _ int) Crafters {
	return Crafters{BySuit: piecesBySuit(s, game.Eyrie, game.Roost)}
}
