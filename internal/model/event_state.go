package model

import "time"

type EventStatus string

const (
	EventNotStarted EventStatus = "not_started"
	EventStarted    EventStatus = "started"
	EventEnded      EventStatus = "ended"
)

// EventStateID is the fixed _id of the singleton lifecycle document.
const EventStateID = "event_state"

// EventState is the competition lifecycle singleton. It is created
// lazily with status not_started and only ever mutated through
// explicit start/end transitions.
type EventState struct {
	ID        string      `bson:"_id" json:"-"`
	Status    EventStatus `bson:"status" json:"status"`
	StartedAt *time.Time  `bson:"started_at,omitempty" json:"started_at,omitempty"`
	EndedAt   *time.Time  `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
	StartedBy string      `bson:"started_by,omitempty" json:"started_by,omitempty"`
	EndedBy   string      `bson:"ended_by,omitempty" json:"ended_by,omitempty"`
	// Cycle counts start transitions; a start with Cycle > 1 is a
	// restart of an event that already ended.
	Cycle int `bson:"cycle" json:"cycle"`
}

func DefaultEventState() *EventState {
	return &EventState{
		ID:     EventStateID,
		Status: EventNotStarted,
	}
}
