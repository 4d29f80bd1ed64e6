package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
)

// GetScoreboard returns ranked standings. The endpoint is public;
// admins presenting a valid token see hidden competitors too.
func (s *Server) GetScoreboard(c *gin.Context) {
	kind := model.ScoreboardKind(c.DefaultQuery("kind", string(model.ScoreboardTeams)))
	if kind != model.ScoreboardTeams && kind != model.ScoreboardUsers {
		writeError(c, http.StatusBadRequest, "kind must be teams or users")
		return
	}

	standings, err := s.scoreboard.GetStandings(c.Request.Context(), kind, s.requesterIsAdmin(c))
	if err != nil {
		log.Printf("failed to compute standings: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to compute standings")
		return
	}
	writeSuccess(c, http.StatusOK, standings)
}

// requesterIsAdmin does a best-effort token check on a public route;
// anonymous and invalid tokens fall back to the public view.
func (s *Server) requesterIsAdmin(c *gin.Context) bool {
	authHeader := c.Request.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(authHeader) <= len(prefix) || authHeader[:len(prefix)] != prefix {
		return false
	}
	claims, err := s.jwtManager.ValidateToken(authHeader[len(prefix):])
	if err != nil {
		return false
	}
	return claims.Role == model.RoleAdmin
}
