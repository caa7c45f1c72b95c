package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"woodland/internal/game"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testState(id string, version int64) *game.State {
	return &game.State{
		ID:        id,
		Version:   version,
		Phase:     game.PhaseBirdsong,
		Turn:      1,
		Clearings: game.DefaultBoard(),
		Players: []game.Player{
			{ID: "alice", Faction: game.Eyrie, Hand: []game.Card{{ID: "c1", Suit: game.Fox}}},
			{ID: "bob", Faction: game.Alliance},
		},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testState("g1", 1)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Version != 1 || got.Turn != 1 {
		t.Fatalf("unexpected state: version %d turn %d", got.Version, got.Turn)
	}
	if len(got.Players) != 2 || got.Players[0].Hand[0].ID != "c1" {
		t.Fatalf("players not round-tripped: %+v", got.Players)
	}
	if !got.CreatedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("expected created time preserved, got %v", got.CreatedAt)
	}
}

func TestLoadNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveNewerVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Save(ctx, testState("g1", 1))

	next := testState("g1", 2)
	next.Turn = 2
	if err := s.Save(ctx, next); err != nil {
		t.Fatalf("save v2: %v", err)
	}
	got, _ := s.Load(ctx, "g1")
	if got.Version != 2 || got.Turn != 2 {
		t.Fatalf("expected upserted v2, got version %d turn %d", got.Version, got.Turn)
	}
}

func TestSaveSameVersionIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Save(ctx, testState("g1", 3))

	retry := testState("g1", 3)
	retry.Turn = 99
	if err := s.Save(ctx, retry); err != nil {
		t.Fatalf("expected repeated save to succeed, got %v", err)
	}
	got, _ := s.Load(ctx, "g1")
	if got.Turn != 1 {
		t.Fatalf("expected first write kept, got turn %d", got.Turn)
	}
}

func TestSaveStaleVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Save(ctx, testState("g1", 3))

	err := s.Save(ctx, testState("g1", 2))
	if !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}
}

func TestGetGameStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Save(ctx, testState("g1", 1))

	row, err := s.GetGame(ctx, "g1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if row.Status != StatusPlaying {
		t.Fatalf("expected playing, got %s", row.Status)
	}

	done := testState("g1", 2)
	done.WinnerID = "alice"
	done.WinCondition = game.WinVictoryPoints
	s.Save(ctx, done)

	row, _ = s.GetGame(ctx, "g1")
	if row.Status != StatusFinished {
		t.Fatalf("expected finished, got %s", row.Status)
	}
	if row.Version != 2 {
		t.Fatalf("expected version 2, got %d", row.Version)
	}
	if row.UpdatedAt.IsZero() {
		t.Fatal("expected non-zero UpdatedAt")
	}

	if _, err := s.GetGame(ctx, "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListGamesFiltered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Save(ctx, testState("aaa", 1))
	s.Save(ctx, testState("bbb", 1))
	done := testState("ccc", 1)
	done.WinnerID = "bob"
	s.Save(ctx, done)

	rows, err := s.ListGames(ctx, "")
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 games, got %d", len(rows))
	}

	rows, err = s.ListGames(ctx, StatusFinished)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "ccc" {
		t.Fatalf("expected only ccc finished, got %+v", rows)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Save(ctx, testState("g1", 1))

	if err := s.Delete(ctx, "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load(ctx, "g1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestReapIdleGames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return now.Add(-2 * time.Hour) }
	s.Save(ctx, testState("old", 1))
	s.now = func() time.Time { return now }
	s.Save(ctx, testState("fresh", 1))

	ids, err := s.Reap(ctx, time.Hour)
	if err != nil {
		t.Fatalf("reap: %v", err)
	}
	if len(ids) != 1 || ids[0] != "old" {
		t.Fatalf("expected old reaped, got %v", ids)
	}
	if _, err := s.Load(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected old gone, got %v", err)
	}
	if _, err := s.Load(ctx, "fresh"); err != nil {
		t.Fatalf("expected fresh kept, got %v", err)
	}
}

func TestLayeredArchivesFinishedGames(t *testing.T) {
	ctx := context.Background()
	live, archive := newTestStore(t), newTestStore(t)
	l := &Layered{Live: live, Archive: archive}

	l.Save(ctx, testState("g1", 1))
	if _, err := archive.Load(ctx, "g1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected live game kept out of the archive, got %v", err)
	}

	done := testState("g1", 2)
	done.WinnerID = "alice"
	if err := l.Save(ctx, done); err != nil {
		t.Fatalf("save: %v", err)
	}
	live.Delete(ctx, "g1")

	got, err := l.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("load from archive: %v", err)
	}
	if got.WinnerID != "alice" {
		t.Fatalf("expected archived winner alice, got %q", got.WinnerID)
	}
}

type failingStore struct{ err error }

func (f failingStore) Load(context.Context, string) (*game.State, error) { return nil, ErrNotFound }
func (f failingStore) Save(context.Context, *game.State) error { return f.err }

func TestLayeredArchiveFailureKeepsLiveState(t *testing.T) {
	ctx := context.Background()
	live := newTestStore(t)
	l := &Layered{Live: live, Archive: failingStore{err: errors.New("archive down")}}

	if err := l.Save(ctx, testState("g1", 1)); err != nil {
		t.Fatalf("save running game: %v", err)
	}

	done := testState("g1", 2)
	done.WinnerID = "alice"
	if err := l.Save(ctx, done); err == nil {
		t.Fatal("expected archive failure")
	}

	got, err := l.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Version != 1 || got.WinnerID != "" {
		t.Fatalf("expected version 1 without a winner, got version %d winner %q", got.Version, got.WinnerID)
	}
}
