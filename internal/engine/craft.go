package engine

import (
	"fmt"

	"woodland/internal/faction"
	"woodland/internal/game"
)

// craft pays a card's cost with the faction's crafters and resolves it.
// Items come out of the shared supply and score a point; favors clear
// enemies from every clearing of their suit.
func (t *Table) craft(rs faction.RuleSet, seat int, cardID string) (string, error) {
	p := &t.s.Players[seat]
	i := p.HandIndex(cardID)
	if i < 0 {
		return "", game.Violation("card %s is not in hand", cardID)
	}
	card := p.Hand[i]
	switch card.Type {
	case game.CardAmbush, game.CardDominance:
		return "", game.Violation("%s cannot be crafted", card.Name)
	}
	if !canPay(card.CraftCost, rs.Crafters(t.s, seat)) {
		return "", game.Violation("not enough crafters for %s", card.Name)
	}
	if card.Item != "" && t.s.AvailableItems[card.Item] <= 0 {
		return "", game.Violation("no %s left in the supply", card.Item)
	}
	if _, err := t.Discard(seat, cardID); err != nil {
		return "", err
	}

	switch {
	case card.Type == game.CardFavor:
		var losses game.Losses
		for _, c := range t.s.Clearings {
			if c.Suit == card.Suit {
				losses.Add(t.RemoveEnemies(p.Faction, c.ID))
			}
		}
		if err := t.ScoreVP(p.Faction, losses.Buildings+losses.Tokens); err != nil {
			return "", err
		}
		t.Log("crafted", map[string]any{"card": card.Name, "removed": losses})
		return fmt.Sprintf("%s crafted %s and removed %d enemy pieces", p.Faction, card.Name, losses.Total()), nil
	case card.Item != "":
		t.s.AvailableItems[card.Item]--
		p.CraftedItems = append(p.CraftedItems, card.Item)
		if err := t.ScoreVP(p.Faction, 1); err != nil {
			return "", err
		}
	}
	t.Log("crafted", map[string]any{"card": card.Name, "item": card.Item})
	return fmt.Sprintf("%s crafted %s", p.Faction, card.Name), nil
}

// canPay matches a craft cost against crafters. Suited requirements use
// crafters of that suit first, then wild ones; bird requirements take any.
func canPay(cost []game.Suit, c faction.Crafters) bool {
	left := make(map[game.Suit]int, len(c.BySuit))
	for s, n := range c.BySuit {
		left[s] = n
	}
	wild := c.Wild
	birds := 0
	for _, s := range cost {
		switch {
		case s == game.Bird:
			birds++
		case left[s] > 0:
			left[s]--
		case wild > 0:
			wild--
		default:
			return false
		}
	}
	spare := wild
	for _, n := range left {
		spare += n
	}
	return spare >= birds
}

// activateDominance trades a dominance card for an alternate win condition.
// From then on the player no longer scores points.
func (t *Table) activateDominance(seat int, cardID string) (string, error) {
	p := &t.s.Players[seat]
	if p.Dominance != "" {
		return "", game.Violation("%s dominance is already active", p.Dominance)
	}
	if p.VictoryPoints < dominanceThreshold {
		return "", game.Violation("dominance needs %d victory points, have %d", dominanceThreshold, p.VictoryPoints)
	}
	i := p.HandIndex(cardID)
	if i < 0 {
		return "", game.Violation("card %s is not in hand", cardID)
	}
	if p.Hand[i].Type != game.CardDominance {
		return "", game.Violation("%s is not a dominance card", p.Hand[i].Name)
	}
	card, err := t.Discard(seat, cardID)
	if err != nil {
		return "", err
	}
	p.Dominance = card.Suit
	t.Log("dominance", map[string]any{"suit": card.Suit})
	return fmt.Sprintf("%s activated %s", p.Faction, card.Name), nil
}
