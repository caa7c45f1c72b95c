package engine

import (
	"fmt"

	"woodland/internal/faction"
	"woodland/internal/game"
)

// Result summarizes what an applied action did.
type Result struct {
	Kind     game.ActionKind `json:"kind"`
	Summary  string          `json:"summary"`
	Moved    int             `json:"moved,omitempty"`
	Battle   *BattleResult   `json:"battle,omitempty"`
	Steps    []faction.Step  `json:"steps,omitempty"`
	WinnerID string          `json:"winnerId,omitempty"`
}

func (t *Table) apply(seat int, kind game.ActionKind, payload any) (Result, error) {
	rs, err := t.rulesFor(seat)
	if err != nil {
		return Result{}, err
	}
	f := t.s.Players[seat].Faction

	var res Result
	switch p := payload.(type) {
	case nil:
		switch kind {
		case game.ActionEndPhase:
			from := t.s.Phase
			if err := t.endPhase(seat); err != nil {
				return Result{}, err
			}
			res.Summary = fmt.Sprintf("%s ended %s", f, from)
		case game.ActionEndTurn:
			if err := t.endTurn(seat); err != nil {
				return Result{}, err
			}
			res.Summary = fmt.Sprintf("%s ended their turn", f)
		}

	case game.MovePayload:
		if err := t.standard(rs, seat, kind, p); err != nil {
			return Result{}, err
		}
		if t.s.Count(f, game.Warrior, p.From) == 0 {
			return Result{}, game.Violation("%s has no warriors in clearing %d", f, p.From)
		}
		moved, err := t.MoveWarriors(f, p.From, p.To, p.Count)
		if err != nil {
			return Result{}, err
		}
		res.Moved = moved
		res.Summary = fmt.Sprintf("%s moved %d warriors from %d to %d", f, moved, p.From, p.To)

	case game.BattlePayload:
		if err := t.standard(rs, seat, kind, p); err != nil {
			return Result{}, err
		}
		br, err := t.Battle(f, p.Defender, p.Clearing)
		if err != nil {
			return Result{}, err
		}
		res.Battle = &br
		res.Summary = fmt.Sprintf("%s attacked %s in clearing %d: rolled %d/%d, attacker lost %d, defender lost %d",
			f, p.Defender, p.Clearing, br.AttackRoll, br.DefendRoll, br.AttackerLosses.Total(), br.DefenderLosses.Total())

	case game.BuildPayload:
		if err := t.standard(rs, seat, kind, p); err != nil {
			return Result{}, err
		}
		if err := t.PlaceBuilding(f, p.BuildingType, p.Clearing); err != nil {
			return Result{}, err
		}
		res.Summary = fmt.Sprintf("%s built a %s in clearing %d", f, p.BuildingType, p.Clearing)

	case game.RecruitPayload:
		if err := t.standard(rs, seat, kind, p); err != nil {
			return Result{}, err
		}
		if err := t.PlaceWarriors(f, p.Clearing, p.Count); err != nil {
			return Result{}, err
		}
		t.Log("recruited", map[string]any{"faction": f, "clearing": p.Clearing, "count": p.Count})
		res.Summary = fmt.Sprintf("%s recruited %d warriors in clearing %d", f, p.Count, p.Clearing)

	case game.CardPayload:
		if err := requireDaylight(t.s, kind); err != nil {
			return Result{}, err
		}
		var err error
		if kind == game.ActionDominance {
			res.Summary, err = t.activateDominance(seat, p.CardID)
		} else {
			res.Summary, err = t.craft(rs, seat, p.CardID)
		}
		if err != nil {
			return Result{}, err
		}

	default:
		step, err := rs.Perform(t, seat, kind, payload)
		if err != nil {
			return Result{}, err
		}
		t.note(step)
		res.Summary = fmt.Sprintf("%s performed %s", f, kind)
	}
	res.Steps = t.steps
	return res, nil
}

// standard gates the four shared actions: daylight only, then the
// faction's own preconditions and costs.
func (t *Table) standard(rs faction.RuleSet, seat int, kind game.ActionKind, payload any) error {
	if err := requireDaylight(t.s, kind); err != nil {
		return err
	}
	return rs.Authorize(t, seat, kind, payload)
}

func requireDaylight(s *game.State, kind game.ActionKind) error {
	if s.Phase != game.PhaseDaylight {
		return game.Violation("%s is only allowed in daylight, not %s", kind, s.Phase)
	}
	return nil
}
