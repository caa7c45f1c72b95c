package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"woodland/internal/faction"
	"woodland/internal/game"
	"woodland/internal/storage"
)

func TestListFactions(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Get(env.ts.URL + "/api/factions")
	if err != nil {
		t.Fatalf("GET /api/factions: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var infos []faction.Info
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) != 4 {
		t.Fatalf("expected 4 factions, got %d", len(infos))
	}
	if infos[0].ID != game.Ironwood {
		t.Fatalf("expected ironwood first, got %s", infos[0].ID)
	}
}

func TestCreateGameValid(t *testing.T) {
	env := setupTestEnv(t)

	id := createGameViaAPI(t, env.ts)
	if id == "" {
		t.Fatal("expected non-empty id")
	}
}

func TestCreateGameInvalid(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{bad`},
		{"one player", `{"players":[{"id":"alice","faction":"ironwood"}],"settings":{"maxPlayers":2}}`},
		{"duplicate faction", `{"players":[{"id":"a","faction":"eyrie"},{"id":"b","faction":"eyrie"}],"settings":{"maxPlayers":2}}`},
		{"unknown faction", `{"players":[{"id":"a","faction":"eyrie"},{"id":"b","faction":"moles"}],"settings":{"maxPlayers":2}}`},
		{"blank id", `{"players":[{"id":" ","faction":"eyrie"},{"id":"b","faction":"alliance"}],"settings":{"maxPlayers":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(env.ts.URL+"/api/games", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestGetGameMasksView(t *testing.T) {
	env := setupTestEnv(t)
	id := createGameViaAPI(t, env.ts)

	resp, err := http.Get(env.ts.URL + "/api/games/" + id + "?player=alice")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var v viewResponse
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if handHidden(v.State.Players[0].Hand) {
		t.Fatal("expected alice's own hand visible")
	}
	if !handHidden(v.State.Players[1].Hand) {
		t.Fatal("expected bob's hand hidden")
	}
	if len(v.State.DrawPile) == 0 || v.State.DrawPile[0].Hidden {
		t.Fatal("expected the draw pile shared")
	}
	if len(v.ValidActions) == 0 {
		t.Fatal("expected actions for alice")
	}
}

func TestGetGameNotFound(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Get(env.ts.URL + "/api/games/nonexistent")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPostAction(t *testing.T) {
	env := setupTestEnv(t)
	id := createGameViaAPI(t, env.ts)

	status, out := postAction(t, env.ts, id, "alice", game.NewAction(game.ActionEndPhase, nil))
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if out.State.Phase != game.PhaseDaylight {
		t.Fatalf("expected daylight, got %s", out.State.Phase)
	}
	if out.Result == nil || out.Result.Kind != game.ActionEndPhase {
		t.Fatalf("expected end_phase result, got %+v", out.Result)
	}
}

func TestPostActionErrors(t *testing.T) {
	env := setupTestEnv(t)
	id := createGameViaAPI(t, env.ts)

	tests := []struct {
		name   string
		player string
		action game.Action
		want   int
	}{
		{"unknown kind", "alice", game.Action{Kind: "fly"}, http.StatusBadRequest},
		{"clearing out of range", "alice", game.NewAction(game.ActionMove, game.MovePayload{From: 0, To: 2, Count: 1}), http.StatusBadRequest},
		{"wrong turn", "bob", game.NewAction(game.ActionEndTurn, nil), http.StatusConflict},
		{"move in birdsong", "alice", game.NewAction(game.ActionMove, game.MovePayload{From: 1, To: 2, Count: 1}), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := postAction(t, env.ts, id, tt.player, tt.action)
			if status != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, status)
			}
		})
	}

	if status, _ := postAction(t, env.ts, "nonexistent", "alice", game.NewAction(game.ActionEndTurn, nil)); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown game, got %d", status)
	}
}

func TestPostActionDuplicateID(t *testing.T) {
	env := setupTestEnv(t)
	id := createGameViaAPI(t, env.ts)

	a := game.NewAction(game.ActionEndTurn, nil)
	a.ID = "turn-1"
	status, first := postAction(t, env.ts, id, "alice", a)
	if status != http.StatusOK || first.Duplicate {
		t.Fatalf("expected applied, got %d %+v", status, first)
	}
	status, again := postAction(t, env.ts, id, "alice", a)
	if status != http.StatusOK || !again.Duplicate {
		t.Fatalf("expected duplicate acknowledged, got %d %+v", status, again)
	}
	if again.State.Version != first.State.Version {
		t.Fatalf("expected version unchanged, got %d and %d", first.State.Version, again.State.Version)
	}
}

func TestPostActionFinishedGame(t *testing.T) {
	env := setupTestEnv(t)
	id := createGameViaAPI(t, env.ts)

	// finish the game behind the dispatcher's back
	st, err := env.d.Load(t.Context(), id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	st.WinnerID = "bob"
	st.WinCondition = game.WinVictoryPoints
	st.Version++
	if err := env.store.Save(t.Context(), st); err != nil {
		t.Fatalf("save: %v", err)
	}

	status, _ := postAction(t, env.ts, id, "alice", game.NewAction(game.ActionEndTurn, nil))
	if status != http.StatusGone {
		t.Fatalf("expected 410, got %d", status)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&game.ValidationError{Field: "kind", Reason: "required"}, http.StatusBadRequest},
		{game.Violation("not yet"), http.StatusConflict},
		{&game.TerminalStateError{WinnerID: "bob"}, http.StatusGone},
		{fmt.Errorf("load: %w", storage.ErrNotFound), http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
