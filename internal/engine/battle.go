package engine

import (
	"github.com/sirupsen/logrus"

	"woodland/internal/game"
)

// dieFaces is the number of faces on each battle die, numbered 0 to 3.
const dieFaces = 4

// BattleResult reports the dice and casualties of one battle.
type BattleResult struct {
	Attacker       game.Faction `json:"attacker"`
	Defender       game.Faction `json:"defender"`
	Clearing       int          `json:"clearing"`
	AttackRoll     int          `json:"attackRoll"`
	DefendRoll     int          `json:"defendRoll"`
	AttackerHits   int          `json:"attackerHits"`
	DefenderHits   int          `json:"defenderHits"`
	AttackerLosses game.Losses  `json:"attackerLosses"`
	DefenderLosses game.Losses  `json:"defenderLosses"`
	AttackerVP     int          `json:"attackerVp"`
}

// ResolveHits turns two rolls into hits. The attacker deals the higher roll
// and the defender the lower, each capped by the other side's warriors.
func ResolveHits(attackRoll, defendRoll, attackerWarriors, defenderWarriors int) (attackerHits, defenderHits int) {
	attackerHits = min(max(attackRoll, defendRoll), defenderWarriors)
	defenderHits = min(min(attackRoll, defendRoll), attackerWarriors)
	return attackerHits, defenderHits
}

// Battle resolves an attack by attacker on defender's pieces in a clearing.
// The attacker scores a point for every defending building removed.
func (t *Table) Battle(attacker, defender game.Faction, clearing int) (BattleResult, error) {
	if _, err := t.clearing(clearing); err != nil {
		return BattleResult{}, err
	}
	if attacker == defender {
		return BattleResult{}, game.Violation("%s cannot battle itself", attacker)
	}
	if t.s.SeatOf(defender) < 0 {
		return BattleResult{}, game.Violation("faction %s is not in this game", defender)
	}
	attW := t.s.Count(attacker, game.Warrior, clearing)
	if attW == 0 {
		return BattleResult{}, game.Violation("%s has no warriors in clearing %d", attacker, clearing)
	}
	if t.s.PiecesOf(defender, clearing) == 0 {
		return BattleResult{}, game.Violation("%s has no pieces in clearing %d", defender, clearing)
	}
	defW := t.s.Count(defender, game.Warrior, clearing)

	res := BattleResult{
		Attacker:   attacker,
		Defender:   defender,
		Clearing:   clearing,
		AttackRoll: t.e.rng.IntN(dieFaces),
		DefendRoll: t.e.rng.IntN(dieFaces),
	}
	res.AttackerHits, res.DefenderHits = ResolveHits(res.AttackRoll, res.DefendRoll, attW, defW)
	res.DefenderLosses = t.removePieces(defender, clearing, res.AttackerHits)
	res.AttackerLosses = t.removePieces(attacker, clearing, res.DefenderHits)
	res.AttackerVP = res.DefenderLosses.Buildings
	if err := t.ScoreVP(attacker, res.AttackerVP); err != nil {
		return BattleResult{}, err
	}

	t.Log("battle", res)
	t.logger().WithFields(logrus.Fields{
		"attacker": attacker,
		"defender": defender,
		"clearing": clearing,
		"rolls":    []int{res.AttackRoll, res.DefendRoll},
	}).Debug("battle resolved")
	return res, nil
}
