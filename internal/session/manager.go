// Package session fans committed game updates out to live connections and
// enforces turn time limits.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"woodland/internal/dispatch"
	"woodland/internal/engine"
	"woodland/internal/game"
)

var (
	ErrSpectatorsDisabled = errors.New("spectators are not allowed in this game")
	ErrNotSeated          = errors.New("player is not seated in this game")
)

// StatePayload is pushed to every connection after a committed change.
type StatePayload struct {
	State        *game.State       `json:"state"`
	ValidActions []game.ActionKind `json:"validActions"`
	Result       *engine.Result    `json:"result,omitempty"`
}

// ErrorPayload is sent only to the connection whose request failed.
type ErrorPayload struct {
	Message string `json:"message"`
}

// SubmitFunc runs an action through the dispatcher.
type SubmitFunc func(ctx context.Context, gameID, playerID string, a game.Action) error

// Reaper deletes stored games idle longer than maxAge.
type Reaper interface {
	Reap(ctx context.Context, maxAge time.Duration) ([]string, error)
}

type watchdog struct {
	key   string
	timer *time.Timer
}

// Manager tracks one hub per game and implements dispatch.Broadcaster.
type Manager struct {
	mu     sync.Mutex
	hubs   map[string]*Hub
	watch  map[string]*watchdog
	engine *engine.Engine
	submit SubmitFunc
	limit  func(game.Settings) time.Duration
	log    logrus.FieldLogger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) { m.log = log }
}

// WithTurnLimit overrides how a game's turn time limit is read from its settings.
func WithTurnLimit(fn func(game.Settings) time.Duration) Option {
	return func(m *Manager) { m.limit = fn }
}

// NewManager creates a manager. The engine lists the valid actions sent
// with each state.
func NewManager(e *engine.Engine, opts ...Option) *Manager {
	m := &Manager{
		hubs:   make(map[string]*Hub),
		watch:  make(map[string]*watchdog),
		engine: e,
		limit:  game.Settings.TurnLimit,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetSubmit sets where forced turn ends are sent. Without it turn time
// limits are not enforced.
func (m *Manager) SetSubmit(fn SubmitFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submit = fn
}

// Join registers a connection for a game and sends it the current state.
func (m *Manager) Join(gameID, playerID string, spectator bool, s *game.State) (*Conn, error) {
	if spectator && !s.Settings.AllowSpectators {
		return nil, ErrSpectatorsDisabled
	}
	if !spectator && s.Seat(playerID) < 0 {
		return nil, fmt.Errorf("%s: %w", playerID, ErrNotSeated)
	}
	if spectator {
		playerID = ""
	}
	c := &Conn{PlayerID: playerID, Spectator: spectator, Send: make(chan []byte, 64)}

	m.mu.Lock()
	h, ok := m.hubs[gameID]
	if !ok {
		h = newHub(gameID)
		m.hubs[gameID] = h
	}
	m.mu.Unlock()
	h.add(c)

	m.deliverState(c, s.ViewFor(playerID), nil)
	m.arm(gameID, s)
	m.log.WithFields(logrus.Fields{"game": gameID, "player": playerID, "spectator": spectator}).Debug("connection joined")
	return c, nil
}

// Leave removes a connection. It reports whether the player still has
// another live connection to the game.
func (m *Manager) Leave(gameID string, c *Conn) bool {
	m.mu.Lock()
	h, ok := m.hubs[gameID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	h.remove(c)
	return !c.Spectator && h.Connected(c.PlayerID)
}

// Hub returns the hub for a game, if any connection ever joined it.
func (m *Manager) Hub(gameID string) (*Hub, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hubs[gameID]
	return h, ok
}

// Broadcast sends each connection its own view of the update.
func (m *Manager) Broadcast(u dispatch.Update) {
	if h, ok := m.Hub(u.GameID); ok {
		h.each(func(c *Conn) {
			view := u.Spectator
			if v, ok := u.Views[c.PlayerID]; ok && !c.Spectator {
				view = v
			}
			m.deliverState(c, view, u.Result)
		})
	}
	if u.Spectator != nil {
		m.arm(u.GameID, u.Spectator)
	}
}

func (m *Manager) deliverState(c *Conn, view *game.State, res *engine.Result) {
	c.Deliver(Encode("state", StatePayload{
		State:        view,
		ValidActions: m.engine.ValidActions(view, c.PlayerID),
		Result:       res,
	}))
}

// SendError reports a failed request to a single connection.
func SendError(c *Conn, message string) {
	c.Deliver(Encode("error", ErrorPayload{Message: message}))
}

// arm starts the turn timer when the seat to act changes.
func (m *Manager) arm(gameID string, s *game.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit := m.limit(s.Settings)
	cur := m.watch[gameID]
	if s.Terminal() || limit <= 0 || m.submit == nil || s.Current() == nil {
		if cur != nil {
			cur.timer.Stop()
			delete(m.watch, gameID)
		}
		return
	}
	key := fmt.Sprintf("%d/%d", s.Turn, s.CurrentPlayer)
	if cur != nil {
		if cur.key == key {
			return
		}
		cur.timer.Stop()
	}
	playerID, version := s.Current().ID, s.Version
	m.watch[gameID] = &watchdog{
		key:   key,
		timer: time.AfterFunc(limit, func() { m.expire(gameID, playerID, version, key) }),
	}
}

// expire forces the end of a turn that ran past its limit.
func (m *Manager) expire(gameID, playerID string, version int64, key string) {
	m.mu.Lock()
	submit := m.submit
	m.mu.Unlock()

	a := game.NewAction(game.ActionEndTurn, nil)
	a.ID = fmt.Sprintf("timeout-%s-%d", gameID, version)
	log := m.log.WithFields(logrus.Fields{"game": gameID, "player": playerID, "version": version})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := submit(ctx, gameID, playerID, a)
	switch {
	case err == nil:
		log.Info("turn time limit reached, turn ended")
	case game.IsRuleViolation(err) || game.IsTerminal(err):
		log.WithError(err).Debug("forced turn end skipped")
	default:
		log.WithError(err).Error("forced turn end failed")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.watch[gameID]; ok && w.key == key {
		delete(m.watch, gameID)
	}
}

// CleanupLoop drops empty hubs and reaps idle games until ctx is done.
func (m *Manager) CleanupLoop(ctx context.Context, interval, maxAge time.Duration, r Reaper) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(ctx, maxAge, r)
		}
	}
}

func (m *Manager) cleanup(ctx context.Context, maxAge time.Duration, r Reaper) {
	m.mu.Lock()
	for id, h := range m.hubs {
		if h.Len() == 0 {
			m.dropLocked(id)
		}
	}
	m.mu.Unlock()

	if r == nil {
		return
	}
	ids, err := r.Reap(ctx, maxAge)
	if err != nil {
		m.log.WithError(err).Error("reap games")
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if h, ok := m.hubs[id]; ok {
			h.closeAll()
		}
		m.dropLocked(id)
		m.log.WithField("game", id).Info("cleaning up game")
	}
}

func (m *Manager) dropLocked(gameID string) {
	delete(m.hubs, gameID)
	if w, ok := m.watch[gameID]; ok {
		w.timer.Stop()
		delete(m.watch, gameID)
	}
}
