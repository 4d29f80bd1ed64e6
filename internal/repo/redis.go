package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
	"github.com/redis/go-redis/v9"
)

const eventStateKey = "event:state"

type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{
		client: client,
	}
}

// GetEventState returns the cached lifecycle state, or ErrNotFound on
// a cache miss.
func (r *RedisRepository) GetEventState(ctx context.Context) (*model.EventState, error) {
	data, err := r.client.Get(ctx, eventStateKey).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event state from cache: %w", err)
	}

	var state model.EventState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event state: %w", err)
	}
	return &state, nil
}

// SetEventState overwrites the cached lifecycle state. Transitions
// call this after the durable write, so a TTL measured in hours is
// safe.
func (r *RedisRepository) SetEventState(ctx context.Context, state *model.EventState, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal event state: %w", err)
	}
	return r.client.Set(ctx, eventStateKey, data, ttl).Err()
}

// InvalidateEventState drops the cached lifecycle state.
func (r *RedisRepository) InvalidateEventState(ctx context.Context) error {
	return r.client.Del(ctx, eventStateKey).Err()
}

func scoreboardKey(kind string, admin bool) string {
	role := "public"
	if admin {
		role = "admin"
	}
	return fmt.Sprintf("scoreboard:%s:%s", kind, role)
}

// GetScoreboard reads a cached standings payload into out, returning
// ErrNotFound on a miss.
func (r *RedisRepository) GetScoreboard(ctx context.Context, kind string, admin bool, out interface{}) error {
	data, err := r.client.Get(ctx, scoreboardKey(kind, admin)).Result()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get scoreboard from cache: %w", err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("failed to unmarshal scoreboard: %w", err)
	}
	return nil
}

// SetScoreboard caches a standings payload with a short TTL.
func (r *RedisRepository) SetScoreboard(ctx context.Context, kind string, admin bool, standings interface{}, ttl time.Duration) error {
	data, err := json.Marshal(standings)
	if err != nil {
		return fmt.Errorf("failed to marshal scoreboard: %w", err)
	}
	return r.client.Set(ctx, scoreboardKey(kind, admin), data, ttl).Err()
}

// InvalidateScoreboards drops every cached standings variant.
func (r *RedisRepository) InvalidateScoreboards(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, "scoreboard:*").Result()
	if err != nil {
		return fmt.Errorf("failed to list scoreboard keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
