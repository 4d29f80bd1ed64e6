package model

import "time"

type Submission struct {
	ID            string    `bson:"_id" json:"submission_id"`
	UserID        string    `bson:"user_id" json:"user_id"`
	ChallengeID   string    `bson:"challenge_id" json:"challenge_id"`
	SubmittedFlag string    `bson:"submitted_flag" json:"submitted_flag"`
	IsCorrect     bool      `bson:"is_correct" json:"is_correct"`
	Points        int       `bson:"points" json:"points"`
	SubmittedAt   time.Time `bson:"submitted_at" json:"submitted_at"`
	IPAddress     string    `bson:"ip_address" json:"ip_address"`
	UserAgent     string    `bson:"user_agent" json:"user_agent"`
}

type SubmissionOutcome string

const (
	OutcomeAccepted       SubmissionOutcome = "accepted"
	OutcomeIncorrect      SubmissionOutcome = "incorrect"
	OutcomeDuplicateSolve SubmissionOutcome = "duplicate_solve"
	OutcomeRejected       SubmissionOutcome = "rejected"
	OutcomeRateLimited    SubmissionOutcome = "rate_limited"
)

// Rejection reasons carried alongside OutcomeRejected.
const (
	ReasonEventNotActive      = "event_not_active"
	ReasonInvalidFlagFormat   = "invalid_flag_format"
	ReasonChallengeNotFound   = "challenge_not_found"
	ReasonSubmissionsDisabled = "submissions_disabled"
	ReasonUserNotFound        = "user_not_found"
	ReasonUserBlocked         = "user_blocked"
	ReasonUserCannotSubmit    = "user_cannot_submit"
)

// SubmissionResult is the typed outcome of one submission request.
// Business-rule rejections land here; only infrastructure faults
// travel as errors.
type SubmissionResult struct {
	Outcome          SubmissionOutcome `json:"outcome"`
	Reason           string            `json:"reason,omitempty"`
	PointsAwarded    int               `json:"points_awarded,omitempty"`
	SolvedAt         *time.Time        `json:"solved_at,omitempty"`
	RemainingSeconds int               `json:"remaining_seconds,omitempty"`
}
