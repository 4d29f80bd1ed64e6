package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
	"github.com/ctfquest07/ctf-server1-sub000/internal/repo"
)

type createTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateTeam registers a new team. Admin only.
func (s *Server) CreateTeam(c *gin.Context) {
	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "team name is required")
		return
	}

	team := &model.Team{Name: req.Name}
	err := s.repo.CreateTeam(c.Request.Context(), team)
	if errors.Is(err, repo.ErrDuplicateKey) {
		writeError(c, http.StatusConflict, "team name already in use")
		return
	}
	if err != nil {
		log.Printf("failed to create team: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to create team")
		return
	}
	writeSuccess(c, http.StatusCreated, gin.H{"team_id": team.ID})
}

type addMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// AddTeamMember puts a user on a team, subject to the roster cap.
func (s *Server) AddTeamMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "user_id is required")
		return
	}
	teamID := c.Param("id")

	if _, err := s.repo.GetUser(c.Request.Context(), req.UserID); errors.Is(err, repo.ErrNotFound) {
		writeError(c, http.StatusNotFound, "user not found")
		return
	} else if err != nil {
		writeError(c, http.StatusInternalServerError, "failed to add member")
		return
	}

	err := s.repo.AddTeamMember(c.Request.Context(), teamID, req.UserID, s.cfg.TeamMaxMembers)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(c, http.StatusConflict, "team missing or already full")
		return
	}
	if err != nil {
		log.Printf("failed to add team member: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to add member")
		return
	}

	if err := s.repo.SetUserTeam(c.Request.Context(), req.UserID, teamID); err != nil {
		log.Printf("failed to set user team: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to add member")
		return
	}
	writeSuccess(c, http.StatusOK, gin.H{"team_id": teamID, "user_id": req.UserID})
}

// GetTeam returns one team roster.
func (s *Server) GetTeam(c *gin.Context) {
	team, err := s.repo.GetTeam(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repo.ErrNotFound) {
		writeError(c, http.StatusNotFound, "team not found")
		return
	}
	if err != nil {
		log.Printf("failed to load team: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to load team")
		return
	}
	writeSuccess(c, http.StatusOK, team)
}

// ListTeams returns all teams.
func (s *Server) ListTeams(c *gin.Context) {
	teams, err := s.repo.ListTeams(c.Request.Context())
	if err != nil {
		log.Printf("failed to list teams: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to list teams")
		return
	}
	writeSuccess(c, http.StatusOK, gin.H{"teams": teams})
}
