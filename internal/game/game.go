package game

import (
	"encoding/json"
	"time"
)

// VictoryThreshold is the victory point total that ends the game.
const VictoryThreshold = 30

// HandSize is the number of cards dealt to each player at setup.
const HandSize = 3

// Faction identifies one of the four asymmetric rule sets.
type Faction string

const (
	Ironwood Faction = "ironwood"
	Eyrie    Faction = "eyrie"
	Alliance Faction = "alliance"
	Wanderer Faction = "wanderer"
)

// Factions lists every faction in seating preference order.
var Factions = []Faction{Ironwood, Eyrie, Alliance, Wanderer}

// Valid reports whether f is one of the known factions.
func (f Faction) Valid() bool {
	switch f {
	case Ironwood, Eyrie, Alliance, Wanderer:
		return true
	}
	return false
}

// Phase is a step of the turn state machine.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseBirdsong Phase = "birdsong"
	PhaseDaylight Phase = "daylight"
	PhaseEvening  Phase = "evening"
)

// PieceType is a warrior, a building or a token.
type PieceType string

const (
	Warrior   PieceType = "warrior"
	Keep      PieceType = "keep"
	Sawmill   PieceType = "sawmill"
	Workshop  PieceType = "workshop"
	Recruiter PieceType = "recruiter"
	Roost     PieceType = "roost"
	Base      PieceType = "base"
	Sympathy  PieceType = "sympathy"
)

// IsBuilding reports whether the piece occupies a building slot.
func (t PieceType) IsBuilding() bool {
	switch t {
	case Keep, Sawmill, Workshop, Recruiter, Roost, Base:
		return true
	}
	return false
}

// IsToken reports whether the piece is neither a warrior nor a building.
func (t PieceType) IsToken() bool {
	return t == Sympathy
}

// Piece is one member of the board multiset.
type Piece struct {
	Type     PieceType `json:"type"`
	Faction  Faction   `json:"faction"`
	Clearing int       `json:"clearingId"`
}

// Player is a seat at the table.
type Player struct {
	ID            string       `json:"id"`
	Username      string       `json:"username"`
	Faction       Faction      `json:"faction,omitempty"`
	VictoryPoints int          `json:"victoryPoints"`
	Hand          []Card       `json:"hand"`
	CraftedItems  []string     `json:"craftedItems,omitempty"`
	Dominance     Suit         `json:"dominance,omitempty"`
	FactionState  FactionState `json:"factionState"`
	Connected     bool         `json:"connected"`
}

// Seat is one entry of the finalized roster handed to CreateGame.
type Seat struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Faction  Faction `json:"faction"`
}

// Settings are fixed at creation.
type Settings struct {
	MaxPlayers      int  `json:"maxPlayers"`
	TurnTimeLimit   int  `json:"turnTimeLimit"` // seconds, 0 = no limit
	AllowSpectators bool `json:"allowSpectators"`
}

// TurnLimit returns the turn time limit as a duration.
func (s Settings) TurnLimit() time.Duration {
	return time.Duration(s.TurnTimeLimit) * time.Second
}

// WinCondition records how the game was won.
type WinCondition string

const (
	WinVictoryPoints WinCondition = "victory_points"
	WinDominance     WinCondition = "dominance"
)

// LogEntry is one append-only record of something that happened.
type LogEntry struct {
	PlayerID  string          `json:"playerId,omitempty"`
	ActionID  string          `json:"actionId,omitempty"`
	Kind      string          `json:"actionKind"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// State is the authoritative game state.
type State struct {
	ID             string         `json:"id"`
	Version        int64          `json:"version"`
	Players        []Player       `json:"players"`
	CurrentPlayer  int            `json:"currentPlayerIndex"`
	Phase          Phase          `json:"currentPhase"`
	Turn           int            `json:"turnNumber"`
	Clearings      []Clearing     `json:"clearings"`
	Pieces         []Piece        `json:"pieces"`
	DrawPile       []Card         `json:"drawPile"`
	DiscardPile    []Card         `json:"discardPile"`
	AvailableItems map[string]int `json:"availableItems"`
	Log            []LogEntry     `json:"actionLog"`
	WinnerID       string         `json:"winnerId,omitempty"`
	WinCondition   WinCondition   `json:"winCondition,omitempty"`
	Settings       Settings       `json:"settings"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Terminal reports whether a winner has been declared.
func (s *State) Terminal() bool {
	return s.WinnerID != ""
}

// Current returns the player whose turn it is.
func (s *State) Current() *Player {
	if s.CurrentPlayer < 0 || s.CurrentPlayer >= len(s.Players) {
		return nil
	}
	return &s.Players[s.CurrentPlayer]
}

// Seat returns the index of playerID, or -1.
func (s *State) Seat(playerID string) int {
	for i := range s.Players {
		if s.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// SeatOf returns the index of the player controlling f, or -1.
func (s *State) SeatOf(f Faction) int {
	for i := range s.Players {
		if s.Players[i].Faction == f {
			return i
		}
	}
	return -1
}

// Clearing looks up a clearing by id.
func (s *State) Clearing(id int) (Clearing, bool) {
	for _, c := range s.Clearings {
		if c.ID == id {
			return c, true
		}
	}
	return Clearing{}, false
}

// Count returns how many pieces of type t faction f has in a clearing.
// A clearing of 0 counts across the whole board.
func (s *State) Count(f Faction, t PieceType, clearing int) int {
	n := 0
	for _, p := range s.Pieces {
		if p.Faction == f && p.Type == t && (clearing == 0 || p.Clearing == clearing) {
			n++
		}
	}
	return n
}

// Presence returns warriors plus buildings of f in a clearing.
func (s *State) Presence(f Faction, clearing int) int {
	n := 0
	for _, p := range s.Pieces {
		if p.Faction == f && p.Clearing == clearing && (p.Type == Warrior || p.Type.IsBuilding()) {
			n++
		}
	}
	return n
}

// PiecesOf returns how many pieces of any type f has in a clearing.
func (s *State) PiecesOf(f Faction, clearing int) int {
	n := 0
	for _, p := range s.Pieces {
		if p.Faction == f && p.Clearing == clearing {
			n++
		}
	}
	return n
}

// Buildings returns the number of occupied building slots in a clearing.
func (s *State) Buildings(clearing int) int {
	n := 0
	for _, p := range s.Pieces {
		if p.Clearing == clearing && p.Type.IsBuilding() {
			n++
		}
	}
	return n
}

// Ruler returns the faction with strictly greatest warrior+building presence
// in the clearing. Any tie, including no pieces at all, yields "".
func (s *State) Ruler(clearing int) Faction {
	presence := make(map[Faction]int)
	for _, p := range s.Pieces {
		if p.Clearing != clearing {
			continue
		}
		if p.Type == Warrior || p.Type.IsBuilding() {
			presence[p.Faction]++
		}
	}
	var ruler Faction
	best, tied := 0, false
	for f, n := range presence {
		switch {
		case n > best:
			ruler, best, tied = f, n, false
		case n == best:
			tied = true
		}
	}
	if tied || best == 0 {
		return ""
	}
	return ruler
}

// CardCount returns the total number of cards in circulation.
func (s *State) CardCount() int {
	n := len(s.DrawPile) + len(s.DiscardPile)
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	return n
}

// Losses counts pieces removed from the board.
type Losses struct {
	Warriors  int `json:"warriors"`
	Buildings int `json:"buildings"`
	Tokens    int `json:"tokens"`
}

// Total returns the number of pieces removed.
func (l Losses) Total() int { return l.Warriors + l.Buildings + l.Tokens }

// Add accumulates o into l.
func (l *Losses) Add(o Losses) {
	l.Warriors += o.Warriors
	l.Buildings += o.Buildings
	l.Tokens += o.Tokens
}
