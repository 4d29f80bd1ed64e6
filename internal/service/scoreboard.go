package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
)

type StandingsStore interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	ListTeams(ctx context.Context) ([]model.Team, error)
}

type StandingsCache interface {
	GetScoreboard(ctx context.Context, kind string, admin bool, out interface{}) error
	SetScoreboard(ctx context.Context, kind string, admin bool, standings interface{}, ttl time.Duration) error
}

// ScoreboardAggregator computes ranked standings from solve state.
// Team totals are summed from member points at read time; there is no
// stored team total to drift out of sync.
type ScoreboardAggregator struct {
	store     StandingsStore
	cache     StandingsCache
	cacheTTL  time.Duration
	teamLimit int
	userLimit int
}

func NewScoreboardAggregator(store StandingsStore, cache StandingsCache, cacheTTL time.Duration, teamLimit, userLimit int) *ScoreboardAggregator {
	return &ScoreboardAggregator{
		store:     store,
		cache:     cache,
		cacheTTL:  cacheTTL,
		teamLimit: teamLimit,
		userLimit: userLimit,
	}
}

// GetStandings returns the ranked list for the requested kind. Reads
// absorb bursts through a short-TTL cache; staleness is bounded by
// the TTL and by explicit invalidation on accepted solves.
func (a *ScoreboardAggregator) GetStandings(ctx context.Context, kind model.ScoreboardKind, isAdmin bool) (*model.Standings, error) {
	var cached model.Standings
	if a.cache != nil {
		if err := a.cache.GetScoreboard(ctx, string(kind), isAdmin, &cached); err == nil {
			return &cached, nil
		}
	}

	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users for standings: %w", err)
	}

	var standings *model.Standings
	switch kind {
	case model.ScoreboardTeams:
		teams, err := a.store.ListTeams(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load teams for standings: %w", err)
		}
		standings = a.teamStandings(teams, users, isAdmin)
	case model.ScoreboardUsers:
		standings = a.userStandings(users, isAdmin)
	default:
		return nil, fmt.Errorf("unknown scoreboard kind %q", kind)
	}

	if a.cache != nil {
		if err := a.cache.SetScoreboard(ctx, string(kind), isAdmin, standings, a.cacheTTL); err != nil {
			log.Printf("failed to cache scoreboard: %v", err)
		}
	}
	return standings, nil
}

func (a *ScoreboardAggregator) userStandings(users []model.User, isAdmin bool) *model.Standings {
	entries := make([]model.UserStanding, 0, len(users))
	for i := range users {
		u := &users[i]
		if !isAdmin && !u.ShowInScoreboard {
			continue
		}
		entries = append(entries, model.UserStanding{
			UserID:        u.ID,
			Username:      u.Username,
			Points:        u.Points,
			SolveCount:    len(u.SolvedChallenges),
			LastSolveTime: u.LastSolveTime,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return standingLess(entries[i].Points, entries[j].Points,
			entries[i].LastSolveTime, entries[j].LastSolveTime,
			entries[i].Username, entries[j].Username)
	})

	if len(entries) > a.userLimit {
		entries = entries[:a.userLimit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return &model.Standings{Kind: model.ScoreboardUsers, Users: entries}
}

func (a *ScoreboardAggregator) teamStandings(teams []model.Team, users []model.User, isAdmin bool) *model.Standings {
	byID := make(map[string]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	entries := make([]model.TeamStanding, 0, len(teams))
	for _, team := range teams {
		points := 0
		visible := false
		var lastSolve *time.Time
		members := 0
		for _, memberID := range team.Members {
			u, ok := byID[memberID]
			if !ok {
				continue
			}
			members++
			points += u.Points
			if u.ShowInScoreboard {
				visible = true
			}
			// the team reached its current total at its latest solve
			if u.LastSolveTime != nil && (lastSolve == nil || u.LastSolveTime.After(*lastSolve)) {
				lastSolve = u.LastSolveTime
			}
		}
		if !isAdmin && !visible {
			continue
		}
		entries = append(entries, model.TeamStanding{
			TeamID:        team.ID,
			Name:          team.Name,
			Points:        points,
			MemberCount:   members,
			LastSolveTime: lastSolve,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return standingLess(entries[i].Points, entries[j].Points,
			entries[i].LastSolveTime, entries[j].LastSolveTime,
			entries[i].Name, entries[j].Name)
	})

	if len(entries) > a.teamLimit {
		entries = entries[:a.teamLimit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return &model.Standings{Kind: model.ScoreboardTeams, Teams: entries}
}

// standingLess orders by points desc, then earliest last solve, then
// name. A competitor with no solves sorts after one who solved at any
// time, matching "reached its total earliest".
func standingLess(pi, pj int, ti, tj *time.Time, ni, nj string) bool {
	if pi != pj {
		return pi > pj
	}
	switch {
	case ti != nil && tj != nil && !ti.Equal(*tj):
		return ti.Before(*tj)
	case ti != nil && tj == nil:
		return true
	case ti == nil && tj != nil:
		return false
	}
	return ni < nj
}
