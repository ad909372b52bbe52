package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vjc2026/EmissionSense/internal/models"
)

type createProjectRequest struct {
	Name         string `json:"project_name" binding:"required"`
	Description  string `json:"project_description" binding:"required"`
	Organization string `json:"organization"`
	Stage        string `json:"stage"`
}

// handleListProjects returns the caller's active project records.
func (s *Server) handleListProjects(c *gin.Context) {
	records, err := s.store.ListActive(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"projects": records})
}

// handleProjectHistory returns every record the caller owns, completed
// stages included, newest first.
func (s *Server) handleProjectHistory(c *gin.Context) {
	records, err := s.store.ListAll(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"projects": records})
}

// handleCreateProject creates a new in-progress project record. The stage
// defaults to the first of the fixed order when omitted.
func (s *Server) handleCreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	stage := models.StageDesign
	if req.Stage != "" {
		parsed, err := models.ParseStage(req.Stage)
		if err != nil {
			s.respondBadRequest(c, err)
			return
		}
		stage = parsed
	}

	org := req.Organization
	if org == "" {
		user, err := s.store.GetUser(c.Request.Context(), currentUser(c))
		if err != nil {
			s.respondError(c, err)
			return
		}
		org = user.Organization
	}

	rec, err := s.manager.CreateProject(c.Request.Context(), currentUser(c), org, req.Name, req.Description, stage)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"project": rec})
}

// handleFindProject looks up the caller's active record for a project name
// and description pair.
func (s *Server) handleFindProject(c *gin.Context) {
	name := c.Query("name")
	description := c.Query("description")
	if name == "" || description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and description query parameters are required"})
		return
	}

	rec, err := s.store.FindActive(c.Request.Context(), currentUser(c), name, description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if rec == nil {
		respondSuccess(c, http.StatusOK, gin.H{"found": false})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"found": true, "project": rec})
}

// handleCheckName reports whether a project name is already taken by the
// caller. Name uniqueness ignores descriptions and completed records.
func (s *Server) handleCheckName(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name query parameter is required"})
		return
	}

	exists, err := s.store.ExistsProjectName(c.Request.Context(), currentUser(c), name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"exists": exists})
}

// handleAdvanceStage completes the identified stage record and, below the
// terminal stage, opens the next one at zero.
func (s *Server) handleAdvanceStage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := s.manager.AdvanceStage(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, result)
}

// handleDeleteProject removes a single project record.
func (s *Server) handleDeleteProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.manager.DeleteProject(c.Request.Context(), currentUser(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleOrganizationProjects lists project records across an organization
// together with each record's owner.
func (s *Server) handleOrganizationProjects(c *gin.Context) {
	name := c.Param("name")
	projects, err := s.store.ListOrganization(c.Request.Context(), name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"organization": name, "projects": projects})
}
