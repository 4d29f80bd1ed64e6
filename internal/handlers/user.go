package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
	"github.com/ctfquest07/ctf-server1-sub000/internal/repo"
)

const tokenLifetime = 12 * time.Hour

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a JWT. Users are provisioned
// by admins; there is no self-registration.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.repo.GetUserByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		log.Printf("login lookup failed: %v", err)
		writeError(c, http.StatusInternalServerError, "login failed")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if user.IsBlocked {
		writeError(c, http.StatusForbidden, "account is blocked")
		return
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Role, tokenLifetime)
	if err != nil {
		log.Printf("token generation failed: %v", err)
		writeError(c, http.StatusInternalServerError, "login failed")
		return
	}
	writeSuccess(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

type createUserRequest struct {
	Username         string     `json:"username" binding:"required"`
	Password         string     `json:"password" binding:"required,min=8"`
	Role             model.Role `json:"role"`
	TeamID           string     `json:"team_id"`
	ShowInScoreboard *bool      `json:"show_in_scoreboard"`
	CanSubmitFlags   *bool      `json:"can_submit_flags"`
}

// CreateUser provisions an account. Admin only.
func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid user payload")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	role := req.Role
	if role == "" {
		role = model.RolePlayer
	}
	user := &model.User{
		Username:         req.Username,
		PasswordHash:     string(hash),
		Role:             role,
		TeamID:           req.TeamID,
		CanSubmitFlags:   true,
		ShowInScoreboard: true,
	}
	if req.CanSubmitFlags != nil {
		user.CanSubmitFlags = *req.CanSubmitFlags
	}
	if req.ShowInScoreboard != nil {
		user.ShowInScoreboard = *req.ShowInScoreboard
	}

	err = s.repo.CreateUser(c.Request.Context(), user)
	if errors.Is(err, repo.ErrDuplicateKey) {
		writeError(c, http.StatusConflict, "username already in use")
		return
	}
	if err != nil {
		log.Printf("failed to create user: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to create user")
		return
	}
	writeSuccess(c, http.StatusCreated, gin.H{"user_id": user.ID})
}

type userFlagsRequest struct {
	IsBlocked      bool `json:"is_blocked"`
	CanSubmitFlags bool `json:"can_submit_flags"`
}

// SetUserFlags toggles the block and submission gates. Admin only.
func (s *Server) SetUserFlags(c *gin.Context) {
	var req userFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	err := s.repo.SetUserFlags(c.Request.Context(), c.Param("id"), req.IsBlocked, req.CanSubmitFlags)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		log.Printf("failed to update user flags: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to update user")
		return
	}
	writeSuccess(c, http.StatusOK, gin.H{"updated": true})
}

// ResetPlatform wipes submissions, solve state and points. The only
// operation that deletes audit rows; scoped to a full competition
// reset between cycles.
func (s *Server) ResetPlatform(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.repo.ResetSubmissions(ctx); err != nil {
		log.Printf("platform reset failed: %v", err)
		writeError(c, http.StatusInternalServerError, "reset failed")
		return
	}
	if err := s.repo.ResetUserProgress(ctx); err != nil {
		log.Printf("platform reset failed: %v", err)
		writeError(c, http.StatusInternalServerError, "reset failed")
		return
	}
	if err := s.repo.ResetSolveState(ctx); err != nil {
		log.Printf("platform reset failed: %v", err)
		writeError(c, http.StatusInternalServerError, "reset failed")
		return
	}
	if err := s.cache.InvalidateScoreboards(ctx); err != nil {
		log.Printf("scoreboard invalidation after reset failed: %v", err)
	}

	writeSuccess(c, http.StatusOK, gin.H{"reset": true})
}
