package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctfquest07/ctf-server1-sub000/internal/config"
	"github.com/ctfquest07/ctf-server1-sub000/internal/event"
	"github.com/ctfquest07/ctf-server1-sub000/internal/jwt"
	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
	"github.com/ctfquest07/ctf-server1-sub000/internal/ratelimit"
	"github.com/ctfquest07/ctf-server1-sub000/internal/repo"
	"github.com/ctfquest07/ctf-server1-sub000/internal/service"
	"github.com/ctfquest07/ctf-server1-sub000/internal/wss"
)

// In-memory collaborators so the HTTP surface can be exercised
// without Mongo or Redis.

type memEventStore struct {
	state *model.EventState
}

func (m *memEventStore) GetEventState(ctx context.Context) (*model.EventState, error) {
	if m.state == nil {
		m.state = model.DefaultEventState()
	}
	cp := *m.state
	return &cp, nil
}

func (m *memEventStore) SaveEventState(ctx context.Context, state *model.EventState) error {
	cp := *state
	m.state = &cp
	return nil
}

type memEventCache struct{}

func (memEventCache) GetEventState(ctx context.Context) (*model.EventState, error) {
	return nil, repo.ErrNotFound
}
func (memEventCache) SetEventState(ctx context.Context, state *model.EventState, ttl time.Duration) error {
	return nil
}
func (memEventCache) InvalidateEventState(ctx context.Context) error { return nil }

type memChallenges struct {
	challenge *model.Challenge
}

func (m *memChallenges) GetChallenge(ctx context.Context, id string) (*model.Challenge, error) {
	if m.challenge == nil || m.challenge.ID != id {
		return nil, repo.ErrNotFound
	}
	cp := *m.challenge
	return &cp, nil
}

func (m *memChallenges) AddSolver(ctx context.Context, challengeID, userID string) error {
	m.challenge.SolvedBy = append(m.challenge.SolvedBy, userID)
	return nil
}

type memUsers struct {
	user *model.User
}

func (m *memUsers) GetUser(ctx context.Context, id string) (*model.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, repo.ErrNotFound
	}
	cp := *m.user
	return &cp, nil
}

func (m *memUsers) ApplySolveCredit(ctx context.Context, userID, challengeID string, points int, at time.Time) error {
	m.user.Points += points
	m.user.SolvedChallenges = append(m.user.SolvedChallenges, challengeID)
	return nil
}

type memSubmissions struct {
	solved map[string]bool
}

func (m *memSubmissions) RecordAttempt(ctx context.Context, s *model.Submission) error {
	if !s.IsCorrect {
		return nil
	}
	if m.solved == nil {
		m.solved = make(map[string]bool)
	}
	key := s.UserID + ":" + s.ChallengeID
	if m.solved[key] {
		return repo.ErrAlreadySolved
	}
	m.solved[key] = true
	return nil
}

type nopInvalidator struct{}

func (nopInvalidator) InvalidateScoreboards(ctx context.Context) error { return nil }

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) InvalidateScoreboards(ctx context.Context) error {
	c.calls++
	return nil
}

type memStandings struct {
	users []model.User
}

func (m *memStandings) ListUsers(ctx context.Context) ([]model.User, error) { return m.users, nil }
func (m *memStandings) ListTeams(ctx context.Context) ([]model.Team, error) { return nil, nil }

type testEnv struct {
	server *Server
	router *gin.Engine
	jwt    *jwt.JWTManager
	events *event.Store
	users  *memUsers
	inval  *countingInvalidator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtManager := jwt.NewJWTManager("test-secret")
	hub := wss.NewHub()
	eventStore := event.NewStore(&memEventStore{}, memEventCache{}, hub, time.Hour)

	users := &memUsers{user: &model.User{
		ID: "u1", Username: "alice", CanSubmitFlags: true, ShowInScoreboard: true,
	}}
	challenges := &memChallenges{challenge: &model.Challenge{
		ID: "c1", Title: "warmup", Points: 100, Flag: "flag{w4rmup}",
		IsVisible: true, SubmissionsAllowed: true,
	}}
	limiter := ratelimit.New(ratelimit.Config{MaxAttempts: 5, Window: time.Minute, Cooldown: 30 * time.Second})
	processor := service.NewSubmissionProcessor(
		eventStore, challenges, users, &memSubmissions{},
		limiter, nopInvalidator{}, hub, "flag",
	)
	scoreboard := service.NewScoreboardAggregator(
		&memStandings{users: []model.User{
			{ID: "u1", Username: "alice", Points: 100, ShowInScoreboard: true},
		}}, nil, time.Second, 20, 100,
	)

	inval := &countingInvalidator{}
	server := NewServer(config.Config{TeamMaxMembers: 2}, nil, inval, eventStore, processor, scoreboard, jwtManager, hub)
	return &testEnv{
		server: server,
		router: server.SetupRouter(),
		jwt:    jwtManager,
		events: eventStore,
		users:  users,
		inval:  inval,
	}
}

func (e *testEnv) token(t *testing.T, role model.Role) string {
	t.Helper()
	token, err := e.jwt.GenerateToken("u1", role, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestGetEventStatus_Public(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/api/v1/event", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "not_started")
}

func TestStartEvent_RequiresAdmin(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/v1/event/start", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/v1/event/start", e.token(t, model.RolePlayer), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPost, "/api/v1/event/start", e.token(t, model.RoleAdmin), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStartEvent_DoubleStartIs400(t *testing.T) {
	e := newTestEnv(t)
	admin := e.token(t, model.RoleAdmin)

	w := e.do(http.MethodPost, "/api/v1/event/start", admin, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/api/v1/event/start", admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitFlag_EndToEnd(t *testing.T) {
	e := newTestEnv(t)
	admin := e.token(t, model.RoleAdmin)
	player := e.token(t, model.RolePlayer)

	// before start, submissions bounce off the event gate
	w := e.do(http.MethodPost, "/api/v1/challenges/c1/submit", player, `{"flag":"flag{w4rmup}"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), model.ReasonEventNotActive)

	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/v1/event/start", admin, "").Code)

	// wrong flag
	w = e.do(http.MethodPost, "/api/v1/challenges/c1/submit", player, `{"flag":"flag{nope}"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "incorrect")

	// right flag
	w = e.do(http.MethodPost, "/api/v1/challenges/c1/submit", player, `{"flag":"flag{w4rmup}"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.SubmissionResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.OutcomeAccepted, resp.Data.Outcome)
	assert.Equal(t, 100, resp.Data.PointsAwarded)

	// resubmission is an idempotent duplicate
	w = e.do(http.MethodPost, "/api/v1/challenges/c1/submit", player, `{"flag":"flag{w4rmup}"}`)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.OutcomeDuplicateSolve, resp.Data.Outcome)
}

func TestSubmitFlag_MissingBody(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodPost, "/api/v1/challenges/c1/submit", e.token(t, model.RolePlayer), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetScoreboard_Public(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/api/v1/scoreboard?kind=users", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestGetScoreboard_BadKind(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/api/v1/scoreboard?kind=bogus", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEndEvent_FreezesScoreboard(t *testing.T) {
	e := newTestEnv(t)
	admin := e.token(t, model.RoleAdmin)
	player := e.token(t, model.RolePlayer)

	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/v1/event/start", admin, "").Code)
	assert.Zero(t, e.inval.calls, "starting the event does not touch the scoreboard cache")

	w := e.do(http.MethodPost, "/api/v1/event/end", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, e.inval.calls, "ending the event drops cached standings so the frozen state is recomputed")

	// no points can land after the end: every submission bounces off
	// the event gate, so standings cannot move
	w = e.do(http.MethodPost, "/api/v1/challenges/c1/submit", player, `{"flag":"flag{w4rmup}"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), model.ReasonEventNotActive)
}

func TestAdminFeed_RejectsAnonymous(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/api/v1/admin/feed", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminFeed_RejectsPlayer(t *testing.T) {
	e := newTestEnv(t)
	player := e.token(t, model.RolePlayer)

	w := e.do(http.MethodGet, "/api/v1/admin/feed", player, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the query-parameter form is gated the same way
	w = e.do(http.MethodGet, "/api/v1/admin/feed?token="+player, "", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminFeed_AdminPassesTokenGate(t *testing.T) {
	e := newTestEnv(t)
	admin := e.token(t, model.RoleAdmin)

	// a plain GET carries no websocket handshake headers, so the
	// upgrader rejects it with 400 once the token gate has passed
	w := e.do(http.MethodGet, "/api/v1/admin/feed?token="+admin, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
