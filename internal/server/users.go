package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vjc2026/EmissionSense/internal/models"
)

type createUserRequest struct {
	Name         string             `json:"name" binding:"required"`
	Email        string             `json:"email" binding:"required,email"`
	Organization string             `json:"organization"`
	Device       models.DeviceClass `json:"device" binding:"required"`
	CPU          string             `json:"cpu" binding:"required"`
	GPU          string             `json:"gpu" binding:"required"`
	RAM          string             `json:"ram" binding:"required"`
	PSUWatts     float64            `json:"psu"`
}

// handleCreateUser registers a user with their device profile. Every
// component is verified against the catalogs up front so later emission
// calculations cannot hit an unknown part.
func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}
	if req.Device != models.DeviceDesktop && req.Device != models.DeviceMobile {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device must be Desktop or Mobile"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Organization: req.Organization,
		Device:       req.Device,
		CPU:          req.CPU,
		GPU:          req.GPU,
		RAM:          req.RAM,
		PSUWatts:     req.PSUWatts,
	}
	if _, err := s.resolver.ResolveDraw(c.Request.Context(), user); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	if err := s.store.CreateUser(c.Request.Context(), &user); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"user": user})
}

// handleDeviceProfile returns the caller's stored device profile along with
// the resolved per-component wattages.
func (s *Server) handleDeviceProfile(c *gin.Context) {
	user, err := s.store.GetUser(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}

	draw, err := s.resolver.ResolveDraw(c.Request.Context(), *user)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": user, "draw": draw, "total_watts": draw.Total()})
}
