package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vjc2026/EmissionSense/internal/models"
)

type sessionSelector struct {
	Name        string `json:"project_name" binding:"required"`
	Description string `json:"project_description" binding:"required"`
}

type stopSessionRequest struct {
	sessionSelector
	Stage          string `json:"stage" binding:"required"`
	ElapsedSeconds int64  `json:"elapsed_seconds"`
}

type emissionsRequest struct {
	ElapsedSeconds int64 `json:"elapsed_seconds"`
}

// handleStartSession seeds a client-side timer: an existing active record
// contributes its accumulated duration as the base, an unknown selection
// starts from zero.
func (s *Server) handleStartSession(c *gin.Context) {
	var req sessionSelector
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	seed, err := s.manager.StartSession(c.Request.Context(), currentUser(c), req.Name, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, seed)
}

// handleStopSession records a finished session. The reported elapsed seconds
// are the session's full total (base plus new time) and replace the stored
// duration and emission outright.
func (s *Server) handleStopSession(c *gin.Context) {
	var req stopSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}
	if req.ElapsedSeconds < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "elapsed_seconds must be non-negative"})
		return
	}

	stage, err := models.ParseStage(req.Stage)
	if err != nil {
		s.respondBadRequest(c, err)
		return
	}

	rec, err := s.manager.StopSession(c.Request.Context(), currentUser(c), req.Name, req.Description, stage, req.ElapsedSeconds)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"project": rec})
}

// handleCalculateEmissions converts elapsed seconds into kilograms of
// CO2-equivalent for the caller's device profile without touching any record.
func (s *Server) handleCalculateEmissions(c *gin.Context) {
	var req emissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}
	if req.ElapsedSeconds < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "elapsed_seconds must be non-negative"})
		return
	}

	kg, err := s.manager.CalculateEmissions(c.Request.Context(), currentUser(c), req.ElapsedSeconds)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"elapsed_seconds": req.ElapsedSeconds, "carbon_emit_kg": kg})
}
