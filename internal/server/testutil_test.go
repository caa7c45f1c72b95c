package server

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"nhooyr.io/websocket"

	"woodland/internal/dispatch"
	"woodland/internal/engine"
	"woodland/internal/faction"
	"woodland/internal/game"
	"woodland/internal/session"
	"woodland/internal/storage"
)

// --- Test environment ---

type testEnv struct {
	ts    *httptest.Server
	mgr   *session.Manager
	d     *dispatch.Dispatcher
	store *storage.Store
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	log, _ := logtest.NewNullLogger()
	e := engine.New(faction.Default(), rand.New(rand.NewPCG(5, 6)), engine.WithLogger(log))
	mgr := session.NewManager(e, session.WithLogger(log))
	d := dispatch.New(e, store, mgr, dispatch.WithLogger(log))
	mgr.SetSubmit(func(ctx context.Context, gameID, playerID string, a game.Action) error {
		_, err := d.Handle(ctx, gameID, playerID, a)
		return err
	})

	ts := httptest.NewServer(New(d, mgr, WithLogger(log)))
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, mgr: mgr, d: d, store: store}
}

// --- Context helpers ---

func timeoutCtx(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// --- REST API helpers ---

const twoPlayerRoster = `{
	"players": [
		{"id": "alice", "username": "Alice", "faction": "ironwood"},
		{"id": "bob", "username": "Bob", "faction": "alliance"}
	],
	"settings": {"maxPlayers": 2, "allowSpectators": true}
}`

func createGameViaAPI(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/games", "application/json", strings.NewReader(twoPlayerRoster))
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var result createGameResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result.ID
}

// postAction submits an action over REST and returns the status and decoded body.
func postAction(t *testing.T, ts *httptest.Server, gameID, playerID string, a game.Action) (int, actionResponse) {
	t.Helper()
	body, _ := json.Marshal(actionRequest{PlayerID: playerID, Action: a})
	resp, err := http.Post(ts.URL+"/api/games/"+gameID+"/actions", "application/json", strings.NewReader(string(body)))
	if err != nil {
		t.Fatalf("post action: %v", err)
	}
	defer resp.Body.Close()
	var out actionResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode action response: %v", err)
		}
	}
	return resp.StatusCode, out
}

// --- WebSocket helpers ---

func wsURL(ts *httptest.Server, gameID string) string {
	return strings.Replace(ts.URL, "http://", "ws://", 1) + "/api/games/" + gameID + "/ws"
}

// wsConnect dials a WebSocket, sends a join message, and returns the connection.
// The caller is responsible for closing the connection.
func wsConnect(t *testing.T, ts *httptest.Server, gameID string, join joinPayload) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL(ts, gameID), nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	if err := sendWS(ctx, conn, "join", join); err != nil {
		t.Fatalf("send join: %v", err)
	}
	return conn
}

// sendWS marshals and sends a typed WebSocket message. Returns an error on failure.
func sendWS(ctx context.Context, conn *websocket.Conn, msgType string, payload any) error {
	return conn.Write(ctx, websocket.MessageText, session.Encode(msgType, payload))
}

// readWS reads and unmarshals a single WebSocket message. Returns an error on failure.
func readWS(ctx context.Context, conn *websocket.Conn) (session.Message, error) {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return session.Message{}, err
	}
	var msg session.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return session.Message{}, err
	}
	return msg, nil
}

// readState reads a WebSocket message and expects it to be a "state" message.
func readState(t *testing.T, ctx context.Context, conn *websocket.Conn) session.StatePayload {
	t.Helper()
	msg, err := readWS(ctx, conn)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if msg.Type != "state" {
		t.Fatalf("expected state message, got %q: %s", msg.Type, string(msg.Payload))
	}
	var sp session.StatePayload
	if err := json.Unmarshal(msg.Payload, &sp); err != nil {
		t.Fatalf("unmarshal state payload: %v", err)
	}
	return sp
}

// readError reads a WebSocket message and expects it to be an "error" message.
func readError(t *testing.T, ctx context.Context, conn *websocket.Conn) string {
	t.Helper()
	msg, err := readWS(ctx, conn)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if msg.Type != "error" {
		t.Fatalf("expected error message, got %q: %s", msg.Type, string(msg.Payload))
	}
	var ep session.ErrorPayload
	if err := json.Unmarshal(msg.Payload, &ep); err != nil {
		t.Fatalf("unmarshal error payload: %v", err)
	}
	return ep.Message
}

// readUntil reads state messages until fn accepts one.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, fn func(session.StatePayload) bool) session.StatePayload {
	t.Helper()
	for {
		sp := readState(t, ctx, conn)
		if fn(sp) {
			return sp
		}
	}
}

// --- Game helpers ---

func actionMsg(kind game.ActionKind, payload any) actionPayload {
	return actionPayload{Action: game.NewAction(kind, payload)}
}

func handHidden(cards []game.Card) bool {
	for _, c := range cards {
		if !c.Hidden {
			return false
		}
	}
	return true
}

func connected(sp session.StatePayload, playerID string) bool {
	for _, p := range sp.State.Players {
		if p.ID == playerID {
			return p.Connected
		}
	}
	return false
}

