package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	transferdomain "github.com/gshop/marketplace/internal/transferlimit/domain"
)

type checkTransferRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

// CheckTransfer answers 200 for both allowed and denied transfers; a denial
// is a business outcome carried in the decision body, not an HTTP error.
func (s *Server) CheckTransfer(c *gin.Context) {
	var req checkTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.transferSvc.CheckAndReserve(c.Request.Context(), transferdomain.CheckRequest{
		UserID: strings.TrimSpace(req.UserID),
		Amount: req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTransferLimit(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))

	resp, err := s.transferSvc.GetByUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
