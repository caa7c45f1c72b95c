package game

// Suit is a card and clearing category. Bird is wild.
type Suit string

const (
	Fox    Suit = "fox"
	Rabbit Suit = "rabbit"
	Mouse  Suit = "mouse"
	Bird   Suit = "bird"
)

// Matches reports whether a card of suit s may pay for a requirement of suit want.
func (s Suit) Matches(want Suit) bool {
	return s == Bird || want == Bird || s == want
}

// Clearing is a node of the fixed board graph.
type Clearing struct {
	ID       int   `json:"id"`
	Suit     Suit  `json:"suit"`
	Slots    int   `json:"slots"`
	Adjacent []int `json:"connections"`
	River    bool  `json:"river"`
	Forest   bool  `json:"forest"`
}

// IsAdjacent reports whether id is connected to c.
func (c Clearing) IsAdjacent(id int) bool {
	for _, a := range c.Adjacent {
		if a == id {
			return true
		}
	}
	return false
}

// BoardSize is the number of clearings on the map.
const BoardSize = 12

// Corners are the setup clearings, assigned in seat order.
var Corners = [4]int{1, 3, 7, 12}

// OppositeCorners pairs diagonally opposed corners for bird dominance.
var OppositeCorners = [2][2]int{{1, 12}, {3, 7}}

// DefaultBoard returns a fresh copy of the standard map.
func DefaultBoard() []Clearing {
	return []Clearing{
		{ID: 1, Suit: Fox, Slots: 2, Adjacent: []int{2, 5, 10}},
		{ID: 2, Suit: Rabbit, Slots: 2, Adjacent: []int{1, 3, 6, 10}, River: true},
		{ID: 3, Suit: Mouse, Slots: 2, Adjacent: []int{2, 7, 11}, River: true},
		{ID: 4, Suit: Rabbit, Slots: 1, Adjacent: []int{5, 8}, Forest: true},
		{ID: 5, Suit: Fox, Slots: 2, Adjacent: []int{1, 4, 8, 9}},
		{ID: 6, Suit: Mouse, Slots: 2, Adjacent: []int{2, 9, 10, 11}, River: true},
		{ID: 7, Suit: Fox, Slots: 2, Adjacent: []int{3, 11, 12}, River: true},
		{ID: 8, Suit: Mouse, Slots: 2, Adjacent: []int{4, 5, 9, 12}},
		{ID: 9, Suit: Rabbit, Slots: 2, Adjacent: []int{5, 6, 8, 10, 12}},
		{ID: 10, Suit: Fox, Slots: 1, Adjacent: []int{1, 2, 6, 9}, Forest: true},
		{ID: 11, Suit: Mouse, Slots: 2, Adjacent: []int{3, 6, 7, 12}, River: true},
		{ID: 12, Suit: Rabbit, Slots: 2, Adjacent: []int{7, 8, 9, 11}},
	}
}

// DefaultItems returns the starting item supply.
func DefaultItems() map[string]int {
	return map[string]int{
		"sword": 2, "crossbow": 1, "hammer": 1, "boot": 2,
		"torch": 2, "coins": 2, "bag": 2, "tea": 2,
	}
}
