package game

// CardType classifies a card.
type CardType string

const (
	CardAmbush    CardType = "ambush"
	CardItem      CardType = "item"
	CardDominance CardType = "dominance"
	CardFavor     CardType = "favor"
)

// Card is one member of the shared 54-card deck.
type Card struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Suit      Suit     `json:"suit,omitempty"`
	Type      CardType `json:"type,omitempty"`
	CraftCost []Suit   `json:"craftCost,omitempty"`
	Item      string   `json:"item,omitempty"`
	Effect    string   `json:"effect,omitempty"`
	Hidden    bool     `json:"hidden,omitempty"`
}

// HiddenCard is the placeholder that replaces a concealed card.
var HiddenCard = Card{Hidden: true}

// HandIndex returns the position of cardID in the player's hand, or -1.
func (p *Player) HandIndex(cardID string) int {
	for i, c := range p.Hand {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

// TakeCard removes cardID from the hand and returns it.
func (p *Player) TakeCard(cardID string) (Card, bool) {
	i := p.HandIndex(cardID)
	if i < 0 {
		return Card{}, false
	}
	c := p.Hand[i]
	p.Hand = append(p.Hand[:i:i], p.Hand[i+1:]...)
	return c, true
}
