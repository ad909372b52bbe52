package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vjc2026/EmissionSense/internal/models"
)

// The option endpoints back the device-profile pickers; they list every
// catalog row with a display label and the lookup key clients should store.

func (s *Server) handleDesktopCPUs(c *gin.Context) {
	opts, err := s.store.DesktopCPUOptions(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"options": opts})
}

func (s *Server) handleDesktopGPUs(c *gin.Context) {
	opts, err := s.store.DesktopGPUOptions(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"options": opts})
}

func (s *Server) handleMobileCPUs(c *gin.Context) {
	opts, err := s.store.MobileCPUOptions(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"options": opts})
}

func (s *Server) handleMobileGPUs(c *gin.Context) {
	opts, err := s.store.MobileGPUOptions(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"options": opts})
}

func (s *Server) handleRAMOptions(c *gin.Context) {
	opts, err := s.store.RAMOptions(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"options": opts})
}

// handleWattsLookup resolves a single component's wattage for a device class.
func (s *Server) handleWattsLookup(c *gin.Context) {
	class := models.DeviceClass(c.Query("device"))
	kind := models.ComponentKind(c.Query("kind"))
	model := c.Query("model")
	if class == "" || kind == "" || model == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device, kind and model query parameters are required"})
		return
	}
	if _, err := s.resolver.ForClass(class); err != nil {
		s.respondBadRequest(c, err)
		return
	}
	switch kind {
	case models.ComponentCPU, models.ComponentGPU, models.ComponentRAM:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown component kind"})
		return
	}

	watts, err := s.resolver.Lookup(c.Request.Context(), class, kind, model)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"device": class, "kind": kind, "model": model, "watts": watts})
}
