package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
	"github.com/ctfquest07/ctf-server1-sub000/internal/repo"
)

type standingsStore struct {
	users []model.User
	teams []model.Team
}

func (s *standingsStore) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users, nil
}

func (s *standingsStore) ListTeams(ctx context.Context) ([]model.Team, error) {
	return s.teams, nil
}

type memCache struct {
	data map[string]*model.Standings
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]*model.Standings)}
}

func cacheKey(kind string, admin bool) string {
	if admin {
		return kind + ":admin"
	}
	return kind + ":public"
}

func (c *memCache) GetScoreboard(ctx context.Context, kind string, admin bool, out interface{}) error {
	s, ok := c.data[cacheKey(kind, admin)]
	if !ok {
		return repo.ErrNotFound
	}
	*(out.(*model.Standings)) = *s
	return nil
}

func (c *memCache) SetScoreboard(ctx context.Context, kind string, admin bool, standings interface{}, ttl time.Duration) error {
	c.data[cacheKey(kind, admin)] = standings.(*model.Standings)
	c.sets++
	return nil
}

func ts(sec int64) *time.Time {
	t := time.Unix(sec, 0)
	return &t
}

func sampleUsers() []model.User {
	return []model.User{
		{ID: "u1", Username: "alice", Points: 300, LastSolveTime: ts(2000), ShowInScoreboard: true, TeamID: "t1"},
		{ID: "u2", Username: "bob", Points: 300, LastSolveTime: ts(1000), ShowInScoreboard: true, TeamID: "t2"},
		{ID: "u3", Username: "carol", Points: 100, LastSolveTime: ts(1500), ShowInScoreboard: false, TeamID: "t2"},
		{ID: "u4", Username: "dave", Points: 0, ShowInScoreboard: true},
	}
}

func sampleTeams() []model.Team {
	return []model.Team{
		{ID: "t1", Name: "zephyr", Members: []string{"u1"}},
		{ID: "t2", Name: "aurora", Members: []string{"u2", "u3"}},
		{ID: "t3", Name: "ghosts", Members: []string{"u9"}},
	}
}

func TestGetStandings_UsersOrderedAndRanked(t *testing.T) {
	agg := NewScoreboardAggregator(&standingsStore{users: sampleUsers()}, nil, time.Second, 20, 100)

	standings, err := agg.GetStandings(context.Background(), model.ScoreboardUsers, false)
	require.NoError(t, err)

	// carol is hidden for non-admins; bob beats alice on earlier solve
	require.Len(t, standings.Users, 3)
	assert.Equal(t, "bob", standings.Users[0].Username)
	assert.Equal(t, "alice", standings.Users[1].Username)
	assert.Equal(t, "dave", standings.Users[2].Username)
	assert.Equal(t, []int{1, 2, 3}, []int{standings.Users[0].Rank, standings.Users[1].Rank, standings.Users[2].Rank})
}

func TestGetStandings_AdminSeesHiddenUsers(t *testing.T) {
	agg := NewScoreboardAggregator(&standingsStore{users: sampleUsers()}, nil, time.Second, 20, 100)

	standings, err := agg.GetStandings(context.Background(), model.ScoreboardUsers, true)
	require.NoError(t, err)
	assert.Len(t, standings.Users, 4)
}

func TestGetStandings_UserLimitCapsResult(t *testing.T) {
	agg := NewScoreboardAggregator(&standingsStore{users: sampleUsers()}, nil, time.Second, 20, 2)

	standings, err := agg.GetStandings(context.Background(), model.ScoreboardUsers, false)
	require.NoError(t, err)
	assert.Len(t, standings.Users, 2)
}

func TestGetStandings_TeamPointsSummedAtReadTime(t *testing.T) {
	agg := NewScoreboardAggregator(&standingsStore{users: sampleUsers(), teams: sampleTeams()}, nil, time.Second, 20, 100)

	standings, err := agg.GetStandings(context.Background(), model.ScoreboardTeams, false)
	require.NoError(t, err)

	// aurora = bob 300 + carol 100 = 400; ghosts has no visible member
	require.Len(t, standings.Teams, 2)
	assert.Equal(t, "aurora", standings.Teams[0].Name)
	assert.Equal(t, 400, standings.Teams[0].Points)
	assert.Equal(t, 2, standings.Teams[0].MemberCount)
	assert.Equal(t, "zephyr", standings.Teams[1].Name)
	assert.Equal(t, 300, standings.Teams[1].Points)
}

func TestGetStandings_TeamTieBreaksOnEarliestTotal(t *testing.T) {
	users := []model.User{
		{ID: "u1", Username: "a", Points: 200, LastSolveTime: ts(5000), ShowInScoreboard: true},
		{ID: "u2", Username: "b", Points: 200, LastSolveTime: ts(3000), ShowInScoreboard: true},
	}
	teams := []model.Team{
		{ID: "t1", Name: "late", Members: []string{"u1"}},
		{ID: "t2", Name: "early", Members: []string{"u2"}},
	}
	agg := NewScoreboardAggregator(&standingsStore{users: users, teams: teams}, nil, time.Second, 20, 100)

	standings, err := agg.GetStandings(context.Background(), model.ScoreboardTeams, false)
	require.NoError(t, err)
	require.Len(t, standings.Teams, 2)
	assert.Equal(t, "early", standings.Teams[0].Name)
	assert.Equal(t, "late", standings.Teams[1].Name)
}

func TestGetStandings_CacheHitSkipsRecompute(t *testing.T) {
	store := &standingsStore{users: sampleUsers()}
	cache := newMemCache()
	agg := NewScoreboardAggregator(store, cache, 10*time.Second, 20, 100)

	_, err := agg.GetStandings(context.Background(), model.ScoreboardUsers, false)
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	// mutate the backing store; the cached snapshot must win
	store.users[0].Points = 9999
	standings, err := agg.GetStandings(context.Background(), model.ScoreboardUsers, false)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "no recompute on cache hit")
	assert.NotEqual(t, 9999, standings.Users[0].Points)
}

func TestGetStandings_AdminAndPublicCachedSeparately(t *testing.T) {
	cache := newMemCache()
	agg := NewScoreboardAggregator(&standingsStore{users: sampleUsers()}, cache, 10*time.Second, 20, 100)

	pub, err := agg.GetStandings(context.Background(), model.ScoreboardUsers, false)
	require.NoError(t, err)
	adm, err := agg.GetStandings(context.Background(), model.ScoreboardUsers, true)
	require.NoError(t, err)

	assert.Len(t, pub.Users, 3)
	assert.Len(t, adm.Users, 4)
	assert.Equal(t, 2, cache.sets)
}

func TestGetStandings_UnknownKind(t *testing.T) {
	agg := NewScoreboardAggregator(&standingsStore{}, nil, time.Second, 20, 100)
	_, err := agg.GetStandings(context.Background(), model.ScoreboardKind("bogus"), false)
	assert.Error(t, err)
}
