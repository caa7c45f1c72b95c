// Package redisstore keeps live game state in Redis with an idle expiry.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"woodland/internal/game"
	"woodland/internal/storage"
)

// DefaultTTL is how long an untouched game stays in Redis.
const DefaultTTL = 24 * time.Hour

// saveScript writes the state only when its version is newer than the
// stored one. Returns 1 on write, 0 when the version is already stored and
// -1 when the stored version is newer.
var saveScript = redis.NewScript(`
local cur = redis.call("HGET", KEYS[1], "version")
local v = tonumber(ARGV[1])
if cur then
	cur = tonumber(cur)
	if cur == v then
		redis.call("PEXPIRE", KEYS[1], ARGV[3])
		return 0
	end
	if cur > v then
		return -1
	end
end
redis.call("HSET", KEYS[1], "version", ARGV[1], "state", ARGV[2])
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return 1
`)

// Store is a storage.GameStore backed by Redis hashes.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New wraps a client. A zero ttl uses DefaultTTL.
func New(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Dial connects to the Redis server at url (redis://host:port/db) and
// checks it answers.
func Dial(ctx context.Context, url string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(rdb, ttl), nil
}

func key(gameID string) string {
	return "game:" + gameID + ":state"
}

// Save stores s if its version is newer, refreshing the expiry.
func (s *Store) Save(ctx context.Context, st *game.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	res, err := saveScript.Run(ctx, s.rdb, []string{key(st.ID)}, st.Version, data, s.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("save game %s: %w", st.ID, err)
	}
	if res < 0 {
		return fmt.Errorf("game %s version %d: %w", st.ID, st.Version, storage.ErrStaleVersion)
	}
	return nil
}

// Load returns storage.ErrNotFound once the key has expired.
func (s *Store) Load(ctx context.Context, gameID string) (*game.State, error) {
	data, err := s.rdb.HGet(ctx, key(gameID), "state").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	var st game.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &st, nil
}

// Delete drops a game.
func (s *Store) Delete(ctx context.Context, gameID string) error {
	return s.rdb.Del(ctx, key(gameID)).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
