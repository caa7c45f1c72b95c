package storage

import (
	"context"
	"errors"
	"fmt"

	"woodland/internal/game"
)

// GameStore loads and saves game state by id.
type GameStore interface {
	Load(ctx context.Context, gameID string) (*game.State, error)
	Save(ctx context.Context, s *game.State) error
}

// Layered keeps live games in a fast expiring store and copies finished
// games into a durable archive. Reads fall back to the archive once the
// live copy has expired.
type Layered struct {
	Live    GameStore
	Archive GameStore
}

// Save archives a finished game before updating the live copy, so a
// failed archive write leaves the previous live state in place. A retry
// after a failed live write is a no-op on the archive.
func (l *Layered) Save(ctx context.Context, s *game.State) error {
	if s.Terminal() {
		if err := l.Archive.Save(ctx, s); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
	}
	return l.Live.Save(ctx, s)
}

func (l *Layered) Load(ctx context.Context, gameID string) (*game.State, error) {
	s, err := l.Live.Load(ctx, gameID)
	if errors.Is(err, ErrNotFound) {
		return l.Archive.Load(ctx, gameID)
	}
	return s, err
}
