// Package event owns the competition lifecycle singleton: the
// not_started / started / ended state that gates every flag
// submission.
package event

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
)

var (
	ErrAlreadyStarted = errors.New("event already started")
	ErrAlreadyEnded   = errors.New("event already ended")
	ErrNeverStarted   = errors.New("event was never started")
	ErrBadTransition  = errors.New("invalid event transition")
)

// DurableStore is the Mongo-backed source of truth.
type DurableStore interface {
	GetEventState(ctx context.Context) (*model.EventState, error)
	SaveEventState(ctx context.Context, state *model.EventState) error
}

// Cache is the shared out-of-process cache so every instance observes
// transitions performed by any other instance.
type Cache interface {
	GetEventState(ctx context.Context) (*model.EventState, error)
	SetEventState(ctx context.Context, state *model.EventState, ttl time.Duration) error
	InvalidateEventState(ctx context.Context) error
}

// Broadcaster pushes state changes to live subscribers. Fire and
// forget; no acknowledgement.
type Broadcaster interface {
	Broadcast(event model.FeedEvent)
}

type Store struct {
	durable     DurableStore
	cache       Cache
	broadcaster Broadcaster
	cacheTTL    time.Duration
	now         func() time.Time
}

func NewStore(durable DurableStore, cache Cache, broadcaster Broadcaster, cacheTTL time.Duration) *Store {
	return &Store{
		durable:     durable,
		cache:       cache,
		broadcaster: broadcaster,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

// GetState returns the current lifecycle state, cache first. A durable
// read failure logs and falls back to not_started: submissions stay
// blocked by default rather than silently allowed.
func (s *Store) GetState(ctx context.Context) *model.EventState {
	if state, err := s.cache.GetEventState(ctx); err == nil {
		return state
	}

	state, err := s.durable.GetEventState(ctx)
	if err != nil {
		log.Printf("event state read failed, falling back to not_started: %v", err)
		return model.DefaultEventState()
	}

	if err := s.cache.SetEventState(ctx, state, s.cacheTTL); err != nil {
		log.Printf("failed to cache event state: %v", err)
	}
	return state
}

// Transition moves the lifecycle to newStatus on behalf of actorID.
// Allowed moves: not_started->started, started->ended, and
// ended->started (a restart cycle; solve data is untouched).
func (s *Store) Transition(ctx context.Context, newStatus model.EventStatus, actorID string) (*model.EventState, error) {
	state, err := s.durable.GetEventState(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch newStatus {
	case model.EventStarted:
		if state.Status == model.EventStarted {
			return nil, ErrAlreadyStarted
		}
		state.Status = model.EventStarted
		state.StartedAt = &now
		state.StartedBy = actorID
		// a restart opens a fresh cycle; stale end markers from the
		// previous cycle must not survive into it
		state.EndedAt = nil
		state.EndedBy = ""
		state.Cycle++
	case model.EventEnded:
		if state.Status == model.EventEnded {
			return nil, ErrAlreadyEnded
		}
		if state.Status == model.EventNotStarted {
			return nil, ErrNeverStarted
		}
		state.Status = model.EventEnded
		state.EndedAt = &now
		state.EndedBy = actorID
	default:
		return nil, ErrBadTransition
	}

	if err := s.durable.SaveEventState(ctx, state); err != nil {
		return nil, err
	}
	if err := s.cache.SetEventState(ctx, state, s.cacheTTL); err != nil {
		log.Printf("failed to refresh event state cache: %v", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(model.FeedEvent{
			Type: model.FeedEventStateChanged,
			Payload: model.StateChangedPayload{
				Status:    state.Status,
				Cycle:     state.Cycle,
				ActorID:   actorID,
				ChangedAt: now,
			},
		})
	}

	return state, nil
}
