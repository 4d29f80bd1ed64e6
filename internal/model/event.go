package model

import "time"

type FeedEventType string

const (
	FeedEventStateChanged FeedEventType = "event_state_changed"
	FeedSolveAccepted     FeedEventType = "solve_accepted"
)

// FeedEvent is a message pushed to live dashboard subscribers.
// Delivery is fire and forget.
type FeedEvent struct {
	Type    FeedEventType `json:"type"`
	Payload interface{}   `json:"payload"`
}

type StateChangedPayload struct {
	Status    EventStatus `json:"status"`
	Cycle     int         `json:"cycle"`
	ActorID   string      `json:"actor_id"`
	ChangedAt time.Time   `json:"changed_at"`
}

type SolveAcceptedPayload struct {
	UserID      string    `json:"user_id"`
	ChallengeID string    `json:"challenge_id"`
	Points      int       `json:"points"`
	SolvedAt    time.Time `json:"solved_at"`
}
