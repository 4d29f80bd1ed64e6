package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
	"github.com/ctfquest07/ctf-server1-sub000/internal/ratelimit"
	"github.com/ctfquest07/ctf-server1-sub000/internal/repo"
	"github.com/ctfquest07/ctf-server1-sub000/internal/scoring"
)

// Narrow store contracts so the processor can be tested against fakes.
// *repo.MongoRepository satisfies all of them.

type ChallengeStore interface {
	GetChallenge(ctx context.Context, challengeID string) (*model.Challenge, error)
	AddSolver(ctx context.Context, challengeID, userID string) error
}

type UserStore interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	ApplySolveCredit(ctx context.Context, userID, challengeID string, points int, solvedAt time.Time) error
}

type SubmissionStore interface {
	RecordAttempt(ctx context.Context, s *model.Submission) error
}

type EventStateSource interface {
	GetState(ctx context.Context) *model.EventState
}

type RateLimiter interface {
	CheckAllowed(key string) ratelimit.Decision
	RecordFailure(key string)
	Clear(key string)
}

type ScoreboardInvalidator interface {
	InvalidateScoreboards(ctx context.Context) error
}

type Broadcaster interface {
	Broadcast(event model.FeedEvent)
}

// SubmitRequest carries one flag attempt through the processor.
type SubmitRequest struct {
	UserID      string
	ChallengeID string
	Flag        string
	IPAddress   string
	UserAgent   string
}

// SubmissionProcessor orchestrates preflight gating, the correctness
// check, the audit write and the point award for flag submissions.
type SubmissionProcessor struct {
	events      EventStateSource
	challenges  ChallengeStore
	users       UserStore
	submissions SubmissionStore
	limiter     RateLimiter
	scoreboard  ScoreboardInvalidator
	broadcaster Broadcaster
	flagPattern *regexp.Regexp
	now         func() time.Time
}

func NewSubmissionProcessor(
	events EventStateSource,
	challenges ChallengeStore,
	users UserStore,
	submissions SubmissionStore,
	limiter RateLimiter,
	scoreboard ScoreboardInvalidator,
	broadcaster Broadcaster,
	flagPrefix string,
) *SubmissionProcessor {
	return &SubmissionProcessor{
		events:      events,
		challenges:  challenges,
		users:       users,
		submissions: submissions,
		limiter:     limiter,
		scoreboard:  scoreboard,
		broadcaster: broadcaster,
		flagPattern: FlagPattern(flagPrefix),
		now:         time.Now,
	}
}

// FlagPattern compiles the wrapper check for submitted flags. The
// payload allows any printable characters; flags are compared as raw
// strings, never HTML-escaped.
func FlagPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `\{[[:print:]]+\}$`)
}

// Submit runs one flag attempt to a terminal outcome. Business-rule
// rejections come back inside SubmissionResult; only infrastructure
// faults are returned as errors.
//
// Preflight order matters and is tested: the event gate runs first,
// so once the event ends every submission reports event_not_active,
// including resubmissions of challenges the user already solved.
func (p *SubmissionProcessor) Submit(ctx context.Context, req SubmitRequest) (*model.SubmissionResult, error) {
	// 1. event must be running
	if state := p.events.GetState(ctx); state.Status != model.EventStarted {
		return rejected(model.ReasonEventNotActive), nil
	}

	// 2. flag wrapper check, before any data access
	flag := strings.TrimSpace(req.Flag)
	if !p.flagPattern.MatchString(flag) {
		return rejected(model.ReasonInvalidFlagFormat), nil
	}

	// 3. challenge gates
	challenge, err := p.challenges.GetChallenge(ctx, req.ChallengeID)
	if errors.Is(err, repo.ErrNotFound) {
		return rejected(model.ReasonChallengeNotFound), nil
	}
	if err != nil {
		return nil, fmt.Errorf("submission preflight: %w", err)
	}
	if !challenge.SubmissionsAllowed {
		return rejected(model.ReasonSubmissionsDisabled), nil
	}

	// 4. user gates
	user, err := p.users.GetUser(ctx, req.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return rejected(model.ReasonUserNotFound), nil
	}
	if err != nil {
		return nil, fmt.Errorf("submission preflight: %w", err)
	}
	if user.IsBlocked {
		return rejected(model.ReasonUserBlocked), nil
	}
	if !user.CanSubmitFlags {
		return rejected(model.ReasonUserCannotSubmit), nil
	}

	// 5. idempotent duplicate check; no audit row, nothing attempted
	if user.HasSolved(challenge.ID) {
		return &model.SubmissionResult{Outcome: model.OutcomeDuplicateSolve}, nil
	}

	// 6. rate limiter
	key := ratelimit.Key(req.UserID, req.ChallengeID)
	if d := p.limiter.CheckAllowed(key); !d.Allowed {
		return &model.SubmissionResult{
			Outcome:          model.OutcomeRateLimited,
			RemainingSeconds: d.RemainingSeconds,
		}, nil
	}

	correct := flag == strings.TrimSpace(challenge.Flag)
	submittedAt := p.now()

	// Every real attempt lands in the audit trail, wrong ones with the
	// raw submitted text. For a correct attempt the same insert is the
	// atomic win decision: the partial unique index admits one winner.
	attempt := &model.Submission{
		UserID:        req.UserID,
		ChallengeID:   req.ChallengeID,
		SubmittedFlag: flag,
		IsCorrect:     correct,
		SubmittedAt:   submittedAt,
		IPAddress:     req.IPAddress,
		UserAgent:     req.UserAgent,
	}

	if !correct {
		if err := p.submissions.RecordAttempt(ctx, attempt); err != nil {
			return nil, fmt.Errorf("failed to persist attempt: %w", err)
		}
		p.limiter.RecordFailure(key)
		return &model.SubmissionResult{Outcome: model.OutcomeIncorrect}, nil
	}

	// Points are read from the challenge state as loaded above, before
	// this solve is counted.
	points := scoring.CurrentValue(challenge)
	attempt.Points = points

	err = p.submissions.RecordAttempt(ctx, attempt)
	if errors.Is(err, repo.ErrAlreadySolved) {
		// race lost: a concurrent identical submission won the index
		return &model.SubmissionResult{Outcome: model.OutcomeDuplicateSolve}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to persist solve: %w", err)
	}

	// Post-win steps are individually idempotent ($inc guarded by the
	// already-persisted win marker, $addToSet appends) so a crash here
	// is detectable and retryable rather than double-awarding.
	p.limiter.Clear(key)

	if err := p.users.ApplySolveCredit(ctx, req.UserID, req.ChallengeID, points, submittedAt); err != nil {
		return nil, fmt.Errorf("failed to credit solve: %w", err)
	}
	if err := p.challenges.AddSolver(ctx, req.ChallengeID, req.UserID); err != nil {
		return nil, fmt.Errorf("failed to record solver: %w", err)
	}

	if err := p.scoreboard.InvalidateScoreboards(ctx); err != nil {
		// standings self-heal on TTL expiry; not worth failing the award
		log.Printf("scoreboard invalidation failed: %v", err)
	}

	if p.broadcaster != nil {
		p.broadcaster.Broadcast(model.FeedEvent{
			Type: model.FeedSolveAccepted,
			Payload: model.SolveAcceptedPayload{
				UserID:      req.UserID,
				ChallengeID: req.ChallengeID,
				Points:      points,
				SolvedAt:    submittedAt,
			},
		})
	}

	return &model.SubmissionResult{
		Outcome:       model.OutcomeAccepted,
		PointsAwarded: points,
		SolvedAt:      &submittedAt,
	}, nil
}

func rejected(reason string) *model.SubmissionResult {
	return &model.SubmissionResult{Outcome: model.OutcomeRejected, Reason: reason}
}
