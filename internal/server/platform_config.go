package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	configdomain "github.com/gshop/marketplace/internal/platformconfig/domain"
	"gorm.io/datatypes"
)

type setPlatformConfigRequest struct {
	Value       map[string]any `json:"value"`
	Description *string        `json:"description,omitempty"`
	Category    string         `json:"category,omitempty"`
	UpdatedBy   string         `json:"updated_by"`
}

func (s *Server) ListPlatformConfig(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))

	resp, err := s.configSvc.List(c.Request.Context(), category)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPlatformConfig(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))

	resp, err := s.configSvc.Get(c.Request.Context(), key)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetPlatformConfig(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))

	var req setPlatformConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.configSvc.Set(c.Request.Context(), configdomain.SetRequest{
		Key:         key,
		Value:       datatypes.JSONMap(req.Value),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		UpdatedBy:   strings.TrimSpace(req.UpdatedBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
