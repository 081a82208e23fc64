package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis pub/sub channel carrying session events.
const EventsChannel = "ringtoss_events"

// RedisStore keeps the latest snapshot of each session in Redis and publishes
// session events.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a store whose snapshots expire after ttl.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func snapshotKey(sessionID string) string {
	return "session:" + sessionID + ":state"
}

// SaveSnapshot writes the snapshot with the store's TTL.
func (s *RedisStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.rdb.SetEx(ctx, snapshotKey(snap.SessionID), data, s.ttl).Err()
}

// LoadSnapshot returns the last saved snapshot, or ErrSessionNotFound.
func (s *RedisStore) LoadSnapshot(ctx context.Context, sessionID string) (*Snapshot, error) {
	data, err := s.rdb.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", sessionID, err)
	}
	return &snap, nil
}

// DeleteSnapshot removes a session's snapshot.
func (s *RedisStore) DeleteSnapshot(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, snapshotKey(sessionID)).Err()
}

// PublishEvent broadcasts ev on EventsChannel.
func (s *RedisStore) PublishEvent(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, EventsChannel, data).Err()
}
