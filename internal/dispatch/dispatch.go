// Package dispatch runs the action cycle for every game: validate, lock the
// game, load, apply, persist, broadcast. Cycles for one game never
// interleave; different games proceed in parallel.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"woodland/internal/engine"
	"woodland/internal/game"
	"woodland/internal/storage"
)

// Store holds authoritative game state by id.
type Store interface {
	// Load returns storage.ErrNotFound for unknown games.
	Load(ctx context.Context, gameID string) (*game.State, error)
	// Save persists s. Saving the same version twice is a no-op; saving an
	// older version than the stored one returns storage.ErrStaleVersion.
	Save(ctx context.Context, s *game.State) error
}

// Update is what gets fanned out after a committed change. It only ever
// carries masked views.
type Update struct {
	GameID string
	// Views holds one masked state per seated player.
	Views map[string]*game.State
	// Spectator is the state with every hand hidden.
	Spectator *game.State
	Result    *engine.Result
}

// Broadcaster delivers committed updates to connected clients.
type Broadcaster interface {
	Broadcast(u Update)
}

// Outcome is returned to the submitter of an action.
type Outcome struct {
	State     *game.State
	Views     map[string]*game.State
	Result    engine.Result
	Duplicate bool
}

// Dispatcher serializes the action cycle per game.
type Dispatcher struct {
	engine  *engine.Engine
	store   Store
	bus     Broadcaster
	log     logrus.FieldLogger
	locks   *keyedMutex
	retries uint
	wait    time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// WithSaveRetries sets how many times a save is attempted before giving up,
// and the initial pause between attempts.
func WithSaveRetries(tries uint, wait time.Duration) Option {
	return func(d *Dispatcher) {
		d.retries = max(tries, 1)
		d.wait = wait
	}
}

// New creates a dispatcher. A nil bus discards updates.
func New(e *engine.Engine, store Store, bus Broadcaster, opts ...Option) *Dispatcher {
	if bus == nil {
		bus = discard{}
	}
	d := &Dispatcher{
		engine:  e,
		store:   store,
		bus:     bus,
		log:     logrus.StandardLogger(),
		locks:   newKeyedMutex(),
		retries: 3,
		wait:    50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type discard struct{}

func (discard) Broadcast(Update) {}

// Engine returns the engine actions are applied with.
func (d *Dispatcher) Engine() *engine.Engine { return d.engine }

// CreateGame builds a game from a finalized roster, deals it out and
// stores it.
func (d *Dispatcher) CreateGame(ctx context.Context, seats []game.Seat, settings game.Settings) (*game.State, error) {
	s, err := d.engine.CreateGame(uuid.NewString(), seats, settings)
	if err != nil {
		return nil, err
	}
	if err := d.engine.Table(s).SetupFactions(); err != nil {
		return nil, fmt.Errorf("setup factions: %w", err)
	}
	s.Version = 1
	if err := d.save(ctx, s); err != nil {
		return nil, fmt.Errorf("persist game %s: %w", s.ID, err)
	}
	d.log.WithFields(logrus.Fields{"game": s.ID, "players": len(seats)}).Info("game created")
	return s, nil
}

// Handle runs one action for playerID against gameID. Malformed actions are
// rejected before the game is touched. Nothing is broadcast unless the new
// state was saved.
func (d *Dispatcher) Handle(ctx context.Context, gameID, playerID string, a game.Action) (*Outcome, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	log := d.log.WithFields(logrus.Fields{"game": gameID, "player": playerID, "action": a.Kind})

	unlock := d.locks.lock(gameID)
	defer unlock()

	s, err := d.store.Load(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	if a.ID != "" && applied(s, a.ID) {
		log.WithField("id", a.ID).Debug("duplicate action acknowledged")
		return &Outcome{State: s, Views: s.Views(), Duplicate: true}, nil
	}

	next, res, err := d.engine.Apply(s, playerID, a)
	if err != nil {
		log.WithError(err).Debug("action rejected")
		return nil, err
	}
	next.Version = s.Version + 1

	if err := d.save(ctx, next); err != nil {
		log.WithError(err).WithField("version", next.Version).Error("save failed, keeping previous state")
		return nil, fmt.Errorf("persist game %s: %w", gameID, err)
	}
	log.WithField("version", next.Version).Debug(res.Summary)

	out := &Outcome{State: next, Views: next.Views(), Result: res}
	d.bus.Broadcast(Update{GameID: gameID, Views: out.Views, Spectator: next.ViewFor(""), Result: &res})
	return out, nil
}

// SetConnected records whether a seated player has a live connection.
// Spectators and unchanged flags are ignored.
func (d *Dispatcher) SetConnected(ctx context.Context, gameID, playerID string, connected bool) error {
	unlock := d.locks.lock(gameID)
	defer unlock()

	s, err := d.store.Load(ctx, gameID)
	if err != nil {
		return fmt.Errorf("load game %s: %w", gameID, err)
	}
	seat := s.Seat(playerID)
	if seat < 0 || s.Players[seat].Connected == connected {
		return nil
	}
	next := s.Clone()
	next.Players[seat].Connected = connected
	next.Version = s.Version + 1
	if err := d.save(ctx, next); err != nil {
		return fmt.Errorf("persist game %s: %w", gameID, err)
	}
	d.log.WithFields(logrus.Fields{"game": gameID, "player": playerID, "connected": connected}).Info("connection changed")
	d.bus.Broadcast(Update{GameID: gameID, Views: next.Views(), Spectator: next.ViewFor("")})
	return nil
}

// View returns what playerID may see of a game and the actions open to
// them. Unknown ids get the spectator view.
func (d *Dispatcher) View(ctx context.Context, gameID, playerID string) (*game.State, []game.ActionKind, error) {
	s, err := d.store.Load(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	return s.ViewFor(playerID), d.engine.ValidActions(s, playerID), nil
}

// Load returns the unmasked state of a game. Callers must mask it before
// it leaves the process.
func (d *Dispatcher) Load(ctx context.Context, gameID string) (*game.State, error) {
	s, err := d.store.Load(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	return s, nil
}

func (d *Dispatcher) save(ctx context.Context, s *game.State) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.wait
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := d.store.Save(ctx, s)
		if errors.Is(err, storage.ErrStaleVersion) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(d.retries))
	return err
}

// applied reports whether an action with this id is already in the log.
func applied(s *game.State, actionID string) bool {
	for i := len(s.Log) - 1; i >= 0; i-- {
		if s.Log[i].ActionID == actionID {
			return true
		}
	}
	return false
}
