package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ctfquest07/ctf-server1-sub000/internal/event"
	"github.com/ctfquest07/ctf-server1-sub000/internal/middleware"
	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
)

// GetEventStatus returns the lifecycle state. Public endpoint.
func (s *Server) GetEventStatus(c *gin.Context) {
	state := s.events.GetState(c.Request.Context())
	writeSuccess(c, http.StatusOK, gin.H{
		"status":     state.Status,
		"started_at": state.StartedAt,
		"ended_at":   state.EndedAt,
	})
}

// StartEvent transitions the competition to started.
func (s *Server) StartEvent(c *gin.Context) {
	s.transition(c, model.EventStarted)
}

// EndEvent transitions the competition to ended and freezes standings.
func (s *Server) EndEvent(c *gin.Context) {
	s.transition(c, model.EventEnded)
}

func (s *Server) transition(c *gin.Context, target model.EventStatus) {
	actorID := middleware.UserID(c)

	state, err := s.events.Transition(c.Request.Context(), target, actorID)
	switch {
	case errors.Is(err, event.ErrAlreadyStarted):
		writeError(c, http.StatusBadRequest, "event already started")
		return
	case errors.Is(err, event.ErrAlreadyEnded):
		writeError(c, http.StatusBadRequest, "event already ended")
		return
	case errors.Is(err, event.ErrNeverStarted):
		writeError(c, http.StatusBadRequest, "event has not been started")
		return
	case err != nil:
		writeError(c, http.StatusInternalServerError, "failed to transition event state")
		return
	}

	// ending the event freezes the scoreboard at this instant
	if target == model.EventEnded {
		if err := s.cache.InvalidateScoreboards(c.Request.Context()); err != nil {
			writeError(c, http.StatusInternalServerError, "failed to refresh standings")
			return
		}
	}

	writeSuccess(c, http.StatusOK, state)
}
