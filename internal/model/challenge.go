package model

import "time"

type Category string

const (
	CategoryWeb       Category = "web"
	CategoryCrypto    Category = "crypto"
	CategoryPwn       Category = "pwn"
	CategoryReversing Category = "reversing"
	CategoryForensics Category = "forensics"
	CategoryMisc      Category = "misc"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DynamicScoring holds the CTFd-style decay parameters. When Enabled
// is false the challenge is worth its static Points value.
type DynamicScoring struct {
	Enabled bool `bson:"enabled" json:"enabled"`
	Initial int  `bson:"initial" json:"initial"`
	Minimum int  `bson:"minimum" json:"minimum"`
	Decay   int  `bson:"decay" json:"decay"`
}

type Challenge struct {
	ID                 string         `bson:"_id" json:"challenge_id"`
	Title              string         `bson:"title" json:"title"`
	Description        string         `bson:"description" json:"description"`
	Category           Category       `bson:"category" json:"category"`
	Difficulty         Difficulty     `bson:"difficulty" json:"difficulty"`
	Points             int            `bson:"points" json:"points"`
	Flag               string         `bson:"flag" json:"-"`
	Dynamic            DynamicScoring `bson:"dynamic" json:"dynamic"`
	SolvedBy           []string       `bson:"solved_by" json:"-"`
	IsVisible          bool           `bson:"is_visible" json:"is_visible"`
	SubmissionsAllowed bool           `bson:"submissions_allowed" json:"submissions_allowed"`
	CreatedAt          time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `bson:"updated_at" json:"updated_at"`
}

// SolveCount is the number of distinct users who solved the challenge.
func (c *Challenge) SolveCount() int {
	return len(c.SolvedBy)
}
