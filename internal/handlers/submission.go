package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ctfquest07/ctf-server1-sub000/internal/middleware"
	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
	"github.com/ctfquest07/ctf-server1-sub000/internal/service"
)

type submitFlagRequest struct {
	Flag string `json:"flag" binding:"required"`
}

// SubmitFlag runs one flag attempt through the submission processor.
func (s *Server) SubmitFlag(c *gin.Context) {
	var req submitFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "flag is required")
		return
	}

	result, err := s.processor.Submit(c.Request.Context(), service.SubmitRequest{
		UserID:      middleware.UserID(c),
		ChallengeID: c.Param("id"),
		Flag:        req.Flag,
		IPAddress:   c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
	})
	if err != nil {
		log.Printf("submission failed: %v", err)
		writeError(c, http.StatusInternalServerError, "submission could not be processed")
		return
	}

	status := http.StatusOK
	switch result.Outcome {
	case model.OutcomeRejected:
		status = http.StatusBadRequest
	case model.OutcomeRateLimited:
		status = http.StatusTooManyRequests
	}
	writeSuccess(c, status, result)
}

// ListSubmissions pages the attempt audit log. Admin only.
func (s *Server) ListSubmissions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	subs, err := s.repo.ListSubmissions(c.Request.Context(), c.Query("user_id"), c.Query("challenge_id"), page, pageSize)
	if err != nil {
		log.Printf("failed to list submissions: %v", err)
		writeError(c, http.StatusInternalServerError, "failed to list submissions")
		return
	}
	writeSuccess(c, http.StatusOK, gin.H{
		"page":        page,
		"page_size":   pageSize,
		"submissions": subs,
	})
}
