// Package engine applies actions to game state. Nothing in here performs I/O
// or blocks; every transition works on a private copy of the state that is
// returned only when the whole action succeeded.
package engine

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"woodland/internal/deck"
	"woodland/internal/faction"
	"woodland/internal/game"
)

// MinPlayers and MaxPlayers bound the roster size.
const (
	MinPlayers = 2
	MaxPlayers = 4
)

// dominanceThreshold is the VP a player needs to activate a dominance card.
const dominanceThreshold = 10

// Source supplies uniform random integers in [0, n). Dice and shuffles both
// draw from it, so tests can substitute a deterministic one.
type Source interface {
	IntN(n int) int
}

// SystemSource draws from the process-wide math/rand/v2 generator.
type SystemSource struct{}

func (SystemSource) IntN(n int) int { return rand.IntN(n) }

// lockedSource serializes access to a Source shared by concurrent games.
type lockedSource struct {
	mu  sync.Mutex
	src Source
}

func (l *lockedSource) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

// Engine holds what every game shares: the rule sets, the random source,
// the clock and the logger. It is safe for concurrent use across games.
type Engine struct {
	rules *faction.Registry
	rng   *lockedSource
	now   func() time.Time
	log   logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now for log timestamps and creation times.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger used for engine events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an engine. A nil rng uses SystemSource.
func New(rules *faction.Registry, rng Source, opts ...Option) *Engine {
	if rng == nil {
		rng = SystemSource{}
	}
	e := &Engine{
		rules: rules,
		rng:   &lockedSource{src: rng},
		now:   time.Now,
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the faction registry the engine dispatches to.
func (e *Engine) Rules() *faction.Registry { return e.rules }

// Table opens s for direct manipulation. Changes are made in place.
func (e *Engine) Table(s *game.State) *Table {
	return &Table{e: e, s: s}
}

// CreateGame builds the initial state from a finalized roster: phase setup,
// no points, a freshly shuffled deck.
func (e *Engine) CreateGame(id string, seats []game.Seat, settings game.Settings) (*game.State, error) {
	if id == "" {
		return nil, &game.ValidationError{Field: "id", Reason: "required"}
	}
	limit := MaxPlayers
	if settings.MaxPlayers > 0 && settings.MaxPlayers < limit {
		limit = settings.MaxPlayers
	}
	if len(seats) < MinPlayers || len(seats) > limit {
		return nil, &game.ValidationError{Field: "players", Reason: fmt.Sprintf("need %d to %d players, got %d", MinPlayers, limit, len(seats))}
	}
	ids := make(map[string]bool, len(seats))
	factions := make(map[game.Faction]bool, len(seats))
	players := make([]game.Player, 0, len(seats))
	for _, seat := range seats {
		if seat.ID == "" {
			return nil, &game.ValidationError{Field: "players", Reason: "player id required"}
		}
		if ids[seat.ID] {
			return nil, &game.ValidationError{Field: "players", Reason: fmt.Sprintf("duplicate player %s", seat.ID)}
		}
		rs, ok := e.rules.Get(seat.Faction)
		if !ok {
			return nil, &game.ValidationError{Field: "faction", Reason: fmt.Sprintf("unknown faction %q", seat.Faction)}
		}
		if factions[seat.Faction] {
			return nil, &game.ValidationError{Field: "faction", Reason: fmt.Sprintf("faction %s taken twice", seat.Faction)}
		}
		ids[seat.ID] = true
		factions[seat.Faction] = true
		players = append(players, game.Player{
			ID:           seat.ID,
			Username:     seat.Username,
			Faction:      seat.Faction,
			Hand:         []game.Card{},
			FactionState: rs.InitialState(),
		})
	}

	cards := deck.New()
	deck.Shuffle(cards, e.rng)
	return &game.State{
		ID:             id,
		Players:        players,
		Phase:          game.PhaseSetup,
		Clearings:      game.DefaultBoard(),
		Pieces:         []game.Piece{},
		DrawPile:       cards,
		DiscardPile:    []game.Card{},
		AvailableItems: game.DefaultItems(),
		Log:            []game.LogEntry{},
		Settings:       settings,
		CreatedAt:      e.now().UTC(),
	}, nil
}

// CheckTurn rejects playerID unless the game is live and it is their turn.
func CheckTurn(s *game.State, playerID string) (int, error) {
	if s.Terminal() {
		return -1, &game.TerminalStateError{WinnerID: s.WinnerID}
	}
	seat := s.Seat(playerID)
	if seat < 0 {
		return -1, game.Violation("player %s is not seated in this game", playerID)
	}
	if s.Phase == game.PhaseSetup {
		return -1, game.Violation("the game has not been set up")
	}
	if seat != s.CurrentPlayer {
		return -1, game.Violation("it is %s's turn", s.Players[s.CurrentPlayer].ID)
	}
	return seat, nil
}

// Apply validates and executes an action for playerID. The input state is
// never modified; on success the returned state carries the change.
func (e *Engine) Apply(s *game.State, playerID string, a game.Action) (*game.State, Result, error) {
	payload, err := a.Decode()
	if err != nil {
		return nil, Result{}, err
	}
	seat, err := CheckTurn(s, playerID)
	if err != nil {
		return nil, Result{}, err
	}

	next := s.Clone()
	t := &Table{e: e, s: next, actor: playerID, actionID: a.ID}
	t.record(a)
	res, err := t.apply(seat, a.Kind, payload)
	if err != nil {
		return nil, Result{}, err
	}
	res.Kind = a.Kind
	if next.Terminal() && !s.Terminal() {
		res.WinnerID = next.WinnerID
	}
	return next, res, nil
}

// ValidActions lists the action kinds playerID may submit right now.
func (e *Engine) ValidActions(s *game.State, playerID string) []game.ActionKind {
	seat, err := CheckTurn(s, playerID)
	if err != nil {
		return nil
	}
	rs, ok := e.rules.Get(s.Players[seat].Faction)
	if !ok {
		return nil
	}
	var kinds []game.ActionKind
	switch s.Phase {
	case game.PhaseBirdsong:
		kinds = append(kinds, rs.BirdsongActions(s, seat)...)
	case game.PhaseDaylight:
		kinds = append(kinds, rs.DaylightActions(s, seat)...)
		if canActivateDominance(s, seat) {
			kinds = append(kinds, game.ActionDominance)
		}
	}
	return append(kinds, game.ActionEndPhase, game.ActionEndTurn)
}

func canActivateDominance(s *game.State, seat int) bool {
	p := s.Players[seat]
	if p.Dominance != "" || p.VictoryPoints < dominanceThreshold {
		return false
	}
	for _, c := range p.Hand {
		if c.Type == game.CardDominance {
			return true
		}
	}
	return false
}
