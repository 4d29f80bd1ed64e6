package model

import "time"

type ScoreboardKind string

const (
	ScoreboardUsers ScoreboardKind = "users"
	ScoreboardTeams ScoreboardKind = "teams"
)

type UserStanding struct {
	Rank          int        `json:"rank"`
	UserID        string     `json:"user_id"`
	Username      string     `json:"username"`
	Points        int        `json:"points"`
	SolveCount    int        `json:"solve_count"`
	LastSolveTime *time.Time `json:"last_solve_time,omitempty"`
}

type TeamStanding struct {
	Rank          int        `json:"rank"`
	TeamID        string     `json:"team_id"`
	Name          string     `json:"name"`
	Points        int        `json:"points"`
	MemberCount   int        `json:"member_count"`
	LastSolveTime *time.Time `json:"last_solve_time,omitempty"`
}

// Standings is the cached scoreboard payload; exactly one of the two
// lists is populated depending on the kind requested.
type Standings struct {
	Kind  ScoreboardKind `json:"kind"`
	Users []UserStanding `json:"users,omitempty"`
	Teams []TeamStanding `json:"teams,omitempty"`
}
