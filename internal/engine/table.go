package engine

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"woodland/internal/deck"
	"woodland/internal/faction"
	"woodland/internal/game"
)

// Table is one game state opened for mutation. It implements faction.Table,
// so rule sets drive the board through the same checked operations as
// standard actions.
type Table struct {
	e        *Engine
	s        *game.State
	actor    string
	actionID string
	steps    []faction.Step
}

var _ faction.Table = (*Table)(nil)

func (t *Table) State() *game.State { return t.s }

func (t *Table) logger() logrus.FieldLogger {
	return t.e.log.WithField("game", t.s.ID)
}

func (t *Table) rulesFor(seat int) (faction.RuleSet, error) {
	f := t.s.Players[seat].Faction
	rs, ok := t.e.rules.Get(f)
	if !ok {
		return nil, game.Violation("no rules registered for faction %q", f)
	}
	return rs, nil
}

// Log appends an entry to the action log.
func (t *Table) Log(kind string, payload any) {
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	t.s.Log = append(t.s.Log, game.LogEntry{
		PlayerID:  t.actor,
		ActionID:  t.actionID,
		Kind:      kind,
		Payload:   raw,
		Timestamp: t.e.now().UTC(),
	})
}

func (t *Table) record(a game.Action) {
	t.s.Log = append(t.s.Log, game.LogEntry{
		PlayerID:  t.actor,
		ActionID:  a.ID,
		Kind:      string(a.Kind),
		Payload:   a.Payload,
		Timestamp: t.e.now().UTC(),
	})
}

// Ruler returns the faction ruling a clearing, or "" when nobody does.
func (t *Table) Ruler(clearing int) game.Faction {
	return t.s.Ruler(clearing)
}

// StateForPlayer returns the masked view for playerID.
func (t *Table) StateForPlayer(playerID string) *game.State {
	return t.s.ViewFor(playerID)
}

func (t *Table) clearing(id int) (game.Clearing, error) {
	c, ok := t.s.Clearing(id)
	if !ok {
		return game.Clearing{}, game.Violation("clearing %d does not exist", id)
	}
	return c, nil
}

// DrawCards pops up to count cards off the shared deck without dealing
// them to anyone.
func (t *Table) DrawCards(count int) []game.Card {
	drawn, pile, discard := deck.Draw(t.s.DrawPile, t.s.DiscardPile, count, t.e.rng)
	t.s.DrawPile, t.s.DiscardPile = pile, discard
	return drawn
}

// Draw deals up to count cards into a player's hand.
func (t *Table) Draw(seat, count int) int {
	drawn := t.DrawCards(count)
	p := &t.s.Players[seat]
	p.Hand = append(p.Hand, drawn...)
	return len(drawn)
}

// Discard moves a card from a player's hand onto the discard pile.
func (t *Table) Discard(seat int, cardID string) (game.Card, error) {
	c, ok := t.s.Players[seat].TakeCard(cardID)
	if !ok {
		return game.Card{}, game.Violation("card %s is not in hand", cardID)
	}
	t.s.DiscardPile = append(t.s.DiscardPile, c)
	return c, nil
}

// ScoreVP adds points for f. Reaching the victory threshold ends the game;
// the winner is recorded once and never replaced.
func (t *Table) ScoreVP(f game.Faction, points int) error {
	if points < 0 {
		return game.Violation("cannot score %d points", points)
	}
	seat := t.s.SeatOf(f)
	if seat < 0 {
		return game.Violation("faction %s is not in this game", f)
	}
	if t.s.Terminal() {
		return nil
	}
	p := &t.s.Players[seat]
	if p.Dominance != "" || points == 0 {
		return nil
	}
	p.VictoryPoints += points
	if p.VictoryPoints >= game.VictoryThreshold {
		t.win(seat, game.WinVictoryPoints)
	}
	return nil
}

func (t *Table) win(seat int, cond game.WinCondition) {
	if t.s.Terminal() {
		return
	}
	p := t.s.Players[seat]
	t.s.WinnerID = p.ID
	t.s.WinCondition = cond
	t.Log("victory", map[string]any{"winnerId": p.ID, "condition": cond})
	t.logger().WithFields(logrus.Fields{"winner": p.ID, "condition": cond}).Info("game won")
}

// LoseVP subtracts points, stopping at zero.
func (t *Table) LoseVP(f game.Faction, points int) {
	seat := t.s.SeatOf(f)
	if seat < 0 || points <= 0 {
		return
	}
	p := &t.s.Players[seat]
	p.VictoryPoints = max(p.VictoryPoints-points, 0)
}

// PlaceWarriors adds count warriors. Where they may legally be recruited is
// for the caller to decide.
func (t *Table) PlaceWarriors(f game.Faction, clearing, count int) error {
	if _, err := t.clearing(clearing); err != nil {
		return err
	}
	if count < 0 {
		return game.Violation("cannot place %d warriors", count)
	}
	for i := 0; i < count; i++ {
		t.s.Pieces = append(t.s.Pieces, game.Piece{Type: game.Warrior, Faction: f, Clearing: clearing})
	}
	return nil
}

// PlacePiece adds a building or token, enforcing building slots only.
func (t *Table) PlacePiece(f game.Faction, pt game.PieceType, clearing int) error {
	c, err := t.clearing(clearing)
	if err != nil {
		return err
	}
	if pt == game.Warrior {
		return t.PlaceWarriors(f, clearing, 1)
	}
	if pt.IsBuilding() && t.s.Buildings(clearing) >= c.Slots {
		return game.Violation("clearing %d has no free building slot", clearing)
	}
	t.s.Pieces = append(t.s.Pieces, game.Piece{Type: pt, Faction: f, Clearing: clearing})
	return nil
}

// PlaceBuilding requires f to rule the clearing and a free slot there. Any
// resource cost is the caller's to pay beforehand.
func (t *Table) PlaceBuilding(f game.Faction, pt game.PieceType, clearing int) error {
	if !pt.IsBuilding() {
		return game.Violation("%s is not a building", pt)
	}
	if _, err := t.clearing(clearing); err != nil {
		return err
	}
	if ruler := t.Ruler(clearing); ruler != f {
		return game.Violation("%s does not rule clearing %d", f, clearing)
	}
	if err := t.PlacePiece(f, pt, clearing); err != nil {
		return err
	}
	t.Log("built", map[string]any{"faction": f, "buildingType": pt, "clearing": clearing})
	return nil
}

// MoveWarriors relocates up to count warriors of f between adjacent
// clearings, one of which f must rule. It returns how many actually moved.
func (t *Table) MoveWarriors(f game.Faction, from, to, count int) (int, error) {
	src, err := t.clearing(from)
	if err != nil {
		return 0, err
	}
	if _, err := t.clearing(to); err != nil {
		return 0, err
	}
	if count < 1 {
		return 0, game.Violation("must move at least one warrior")
	}
	if !src.IsAdjacent(to) {
		return 0, game.Violation("clearings %d and %d are not connected", from, to)
	}
	if t.Ruler(from) != f && t.Ruler(to) != f {
		return 0, game.Violation("%s rules neither clearing %d nor %d", f, from, to)
	}

	moved := 0
	for i := range t.s.Pieces {
		if moved == count {
			break
		}
		p := &t.s.Pieces[i]
		if p.Faction == f && p.Type == game.Warrior && p.Clearing == from {
			p.Clearing = to
			moved++
		}
	}
	t.Log("moved", map[string]any{"faction": f, "from": from, "to": to, "count": moved})
	t.logger().WithFields(logrus.Fields{"faction": f, "from": from, "to": to, "moved": moved}).Debug("warriors moved")
	return moved, nil
}

// removePieces strips up to n pieces of f from a clearing, warriors first,
// then buildings, then tokens. Removed pieces go back to the owner's supply.
func (t *Table) removePieces(f game.Faction, clearing, n int) game.Losses {
	var losses game.Losses
	for _, kind := range []func(game.PieceType) bool{isWarrior, game.PieceType.IsBuilding, game.PieceType.IsToken} {
		for n > 0 {
			i := t.findPiece(f, clearing, kind)
			if i < 0 {
				break
			}
			t.takePiece(i, &losses)
			n--
		}
	}
	return losses
}

// RemoveEnemies removes every piece not owned by f from a clearing.
func (t *Table) RemoveEnemies(f game.Faction, clearing int) game.Losses {
	var losses game.Losses
	for i := len(t.s.Pieces) - 1; i >= 0; i-- {
		p := t.s.Pieces[i]
		if p.Clearing == clearing && p.Faction != f {
			t.takePiece(i, &losses)
		}
	}
	return losses
}

func isWarrior(pt game.PieceType) bool { return pt == game.Warrior }

func (t *Table) findPiece(f game.Faction, clearing int, match func(game.PieceType) bool) int {
	for i, p := range t.s.Pieces {
		if p.Faction == f && p.Clearing == clearing && match(p.Type) {
			return i
		}
	}
	return -1
}

func (t *Table) takePiece(i int, losses *game.Losses) {
	p := t.s.Pieces[i]
	t.s.Pieces = append(t.s.Pieces[:i:i], t.s.Pieces[i+1:]...)
	switch {
	case p.Type == game.Warrior:
		losses.Warriors++
	case p.Type.IsBuilding():
		losses.Buildings++
	default:
		losses.Tokens++
	}
	if seat := t.s.SeatOf(p.Faction); seat >= 0 {
		t.s.Players[seat].FactionState.Return(p.Type, 1)
	}
}
