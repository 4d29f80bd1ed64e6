package model

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

type User struct {
	ID               string     `bson:"_id" json:"user_id"`
	Username         string     `bson:"username" json:"username"`
	PasswordHash     string     `bson:"password_hash" json:"-"`
	Role             Role       `bson:"role" json:"role"`
	Points           int        `bson:"points" json:"points"`
	SolvedChallenges []string   `bson:"solved_challenges" json:"solved_challenges"`
	LastSolveTime    *time.Time `bson:"last_solve_time,omitempty" json:"last_solve_time,omitempty"`
	CanSubmitFlags   bool       `bson:"can_submit_flags" json:"can_submit_flags"`
	IsBlocked        bool       `bson:"is_blocked" json:"is_blocked"`
	TeamID           string     `bson:"team_id,omitempty" json:"team_id,omitempty"`
	ShowInScoreboard bool       `bson:"show_in_scoreboard" json:"show_in_scoreboard"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
}

// HasSolved reports whether the challenge is already in the user's
// solve set. Used only as a cheap preflight; the authoritative
// duplicate check is the unique index on submissions.
func (u *User) HasSolved(challengeID string) bool {
	for _, id := range u.SolvedChallenges {
		if id == challengeID {
			return true
		}
	}
	return false
}

type Team struct {
	ID        string    `bson:"_id" json:"team_id"`
	Name      string    `bson:"name" json:"name"`
	Members   []string  `bson:"members" json:"members"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
