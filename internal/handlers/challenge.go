package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ctfquest07/ctf-server1-sub000/internal/middleware"
	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
	"github.com/ctfquest07/ctf-server1-sub000/internal/repo"
	"github.com/ctfquest07/ctf-server1-sub000/internal/scoring"
)

type challengeRequest struct {
	Title              string               `json:"title" binding:"required"`
	Description        string               `json:"description"`
	Category           model.Category       `json:"category" binding:"required"`
	Difficulty         model.Difficulty     `json:"difficulty" binding:"required"`
	Points             int                  `json:"points" binding:"required"`
	Flag               string               `json:"flag" binding:"required"`
	Dynamic            model.DynamicScoring `json:"dynamic"`
	IsVisible          bool                 `json:"is_visible"`
	SubmissionsAllowed bool                 `json:"submissions_allowed"`
}

// challengeView is the player-safe projection: no flag, no solver
// identities, but the live point value and solve count.
type challengeView struct {
	ID                 string           `json:"challenge_id"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Category           model.Category   `json:"category"`
	Difficulty         model.Difficulty `json:"difficulty"`
	CurrentValue       int              `json:"current_value"`
	SolveCount         int              `json:"solve_count"`
	SubmissionsAllowed bool             `json:"submissions_allowed"`
}

func toChallengeView(ch *model.Challenge) challengeView {
	return challengeView{
		ID:                 ch.ID,
		Title:              ch.Title,
		Description:        ch.Description,
		Category:           ch.Category,
		Difficulty:         ch.Difficulty,
		CurrentValue:       scoring.CurrentValue(ch),
		SolveCount:         ch.SolveCount(),
		SubmissionsAllowed: ch.SubmissionsAllowed,
	}
}

// ListChallenges returns visible challenges for players; admins see
// hidden ones too.
func (s *Server) ListChallenges(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	isAdmin := middleware.IsAdmin(c)
	challenges, err := s.repo.ListChallenges(c.Request.Context(), !isAdmin, page, pageSize)
	if err != nil {
		log.Printf("failed to list challenges: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to list challenges")
		return
	}

	if isAdmin {
		writeSuccess(c, http.StatusOK, gin.H{"challenges": challenges})
		return
	}
	views := make([]challengeView, 0, len(challenges))
	for i := range challenges {
		views = append(views, toChallengeView(&challenges[i]))
	}
	writeSuccess(c, http.StatusOK, gin.H{"challenges": views})
}

// GetChallenge returns one challenge. Players get the safe projection
// and cannot see hidden challenges; admins get the full document with
// the flag.
func (s *Server) GetChallenge(c *gin.Context) {
	ch, err := s.repo.GetChallenge(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repo.ErrNotFound) {
		writeError(c, http.StatusNotFound, "challenge not found")
		return
	}
	if err != nil {
		log.Printf("failed to load challenge: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to load challenge")
		return
	}

	if middleware.IsAdmin(c) {
		writeSuccess(c, http.StatusOK, adminChallengeView(ch))
		return
	}
	if !ch.IsVisible {
		writeError(c, http.StatusNotFound, "challenge not found")
		return
	}
	writeSuccess(c, http.StatusOK, toChallengeView(ch))
}

// adminChallengeView includes the secret flag; only ever sent to
// admins.
func adminChallengeView(ch *model.Challenge) gin.H {
	return gin.H{
		"challenge": ch,
		"flag":      ch.Flag,
		"solved_by": ch.SolvedBy,
		"current":   scoring.CurrentValue(ch),
		"solves":    ch.SolveCount(),
	}
}

// CreateChallenge inserts a new challenge. Admin only.
func (s *Server) CreateChallenge(c *gin.Context) {
	var req challengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid challenge payload")
		return
	}
	if req.Dynamic.Enabled && (req.Dynamic.Minimum > req.Dynamic.Initial || req.Dynamic.Decay < 1) {
		writeError(c, http.StatusBadRequest, "dynamic scoring requires minimum <= initial and decay >= 1")
		return
	}

	ch := &model.Challenge{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		Difficulty:         req.Difficulty,
		Points:             req.Points,
		Flag:               req.Flag,
		Dynamic:            req.Dynamic,
		IsVisible:          req.IsVisible,
		SubmissionsAllowed: req.SubmissionsAllowed,
	}
	err := s.repo.CreateChallenge(c.Request.Context(), ch)
	if errors.Is(err, repo.ErrDuplicateKey) {
		writeError(c, http.StatusConflict, "challenge title already in use")
		return
	}
	if err != nil {
		log.Printf("failed to create challenge: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to create challenge")
		return
	}
	writeSuccess(c, http.StatusCreated, gin.H{"challenge_id": ch.ID})
}

// UpdateChallenge applies an admin edit.
func (s *Server) UpdateChallenge(c *gin.Context) {
	var req challengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid challenge payload")
		return
	}

	ch := &model.Challenge{
		ID:                 c.Param("id"),
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		Difficulty:         req.Difficulty,
		Points:             req.Points,
		Flag:               req.Flag,
		Dynamic:            req.Dynamic,
		IsVisible:          req.IsVisible,
		SubmissionsAllowed: req.SubmissionsAllowed,
	}
	err := s.repo.UpdateChallenge(c.Request.Context(), ch)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeError(c, http.StatusNotFound, "challenge not found")
	case errors.Is(err, repo.ErrDuplicateKey):
		writeError(c, http.StatusConflict, "challenge title already in use")
	case err != nil:
		log.Printf("failed to update challenge: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to update challenge")
	default:
		writeSuccess(c, http.StatusOK, gin.H{"challenge_id": ch.ID})
	}
}

// DeleteChallenge removes a challenge. Admin only.
func (s *Server) DeleteChallenge(c *gin.Context) {
	err := s.repo.DeleteChallenge(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repo.ErrNotFound) {
		writeError(c, http.StatusNotFound, "challenge not found")
		return
	}
	if err != nil {
		log.Printf("failed to delete challenge: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to delete challenge")
		return
	}
	writeSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
