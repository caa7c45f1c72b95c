package engine

import (
	"github.com/sirupsen/logrus"

	"woodland/internal/faction"
	"woodland/internal/game"
)

// SetupFactions assigns corners in seat order, lets each faction place its
// starting pieces, deals opening hands one seat after another and opens
// the first birdsong.
func (t *Table) SetupFactions() error {
	s := t.s
	if s.Phase != game.PhaseSetup {
		return game.Violation("factions are already set up")
	}
	corners := game.Corners[:len(s.Players)]
	for seat := range s.Players {
		rs, err := t.rulesFor(seat)
		if err != nil {
			return err
		}
		reserved := make([]int, 0, len(corners)-1)
		for i, c := range corners {
			if i != seat {
				reserved = append(reserved, c)
			}
		}
		if err := rs.Setup(t, seat, corners[seat], reserved); err != nil {
			return err
		}
	}
	for seat := range s.Players {
		t.Draw(seat, game.HandSize)
	}
	s.Phase = game.PhaseBirdsong
	s.Turn = 1
	s.CurrentPlayer = 0
	t.Log("setup", map[string]any{"corners": corners})
	t.logger().WithField("players", len(s.Players)).Info("factions set up")
	return t.startBirdsong()
}

// NextPhase advances the state machine by one step and runs the hook of
// the phase entered: birdsong, daylight, evening, then the next player's
// birdsong.
func (t *Table) NextPhase() error {
	switch t.s.Phase {
	case game.PhaseBirdsong:
		t.s.Phase = game.PhaseDaylight
		return nil
	case game.PhaseDaylight:
		t.s.Phase = game.PhaseEvening
		rs, err := t.rulesFor(t.s.CurrentPlayer)
		if err != nil {
			return err
		}
		step, err := rs.Evening(t, t.s.CurrentPlayer)
		if err != nil {
			return err
		}
		t.note(step)
		return nil
	case game.PhaseEvening:
		return t.NextPlayer()
	}
	return game.Violation("no phase follows %s", t.s.Phase)
}

// NextPlayer passes play to the next seat's birdsong. The turn number goes
// up each time play wraps back to the first seat.
func (t *Table) NextPlayer() error {
	s := t.s
	s.CurrentPlayer = (s.CurrentPlayer + 1) % len(s.Players)
	if s.CurrentPlayer == 0 {
		s.Turn++
	}
	s.Phase = game.PhaseBirdsong
	return t.startBirdsong()
}

func (t *Table) startBirdsong() error {
	seat := t.s.CurrentPlayer
	t.checkDominance(seat)
	if t.s.Terminal() {
		return nil
	}
	rs, err := t.rulesFor(seat)
	if err != nil {
		return err
	}
	step, err := rs.Birdsong(t, seat)
	if err != nil {
		return err
	}
	t.note(step)
	return nil
}

func (t *Table) note(step faction.Step) {
	if step.Action != "" {
		t.steps = append(t.steps, step)
	}
}

// advance leaves the current phase. Without forced the faction may refuse
// because its phase requirements are unmet.
func (t *Table) advance(seat int, forced bool) error {
	rs, err := t.rulesFor(seat)
	if err != nil {
		return err
	}
	if err := rs.LeavePhase(t, seat, forced); err != nil {
		return err
	}
	from := t.s.Phase
	if err := t.NextPhase(); err != nil {
		return err
	}
	t.logger().WithFields(logrus.Fields{"seat": seat, "from": from, "to": t.s.Phase}).Debug("phase advanced")
	return nil
}

func (t *Table) endPhase(seat int) error {
	return t.advance(seat, false)
}

// endTurn runs the remaining phases of the seat's turn.
func (t *Table) endTurn(seat int) error {
	for t.s.CurrentPlayer == seat && !t.s.Terminal() {
		if err := t.advance(seat, true); err != nil {
			return err
		}
	}
	return nil
}

// checkDominance ends the game if the seat's active dominance card is met:
// three ruled clearings of its suit, or for birds both clearings of an
// opposite corner pair.
func (t *Table) checkDominance(seat int) {
	p := t.s.Players[seat]
	if p.Dominance == "" {
		return
	}
	if p.Dominance == game.Bird {
		for _, pair := range game.OppositeCorners {
			if t.Ruler(pair[0]) == p.Faction && t.Ruler(pair[1]) == p.Faction {
				t.win(seat, game.WinDominance)
				return
			}
		}
		return
	}
	ruled := 0
	for _, c := range t.s.Clearings {
		if c.Suit == p.Dominance && t.Ruler(c.ID) == p.Faction {
			ruled++
		}
	}
	if ruled >= 3 {
		t.win(seat, game.WinDominance)
	}
}
