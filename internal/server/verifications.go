package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	verificationdomain "github.com/gshop/marketplace/internal/verification/domain"
)

type submitVerificationRequest struct {
	UserID         string `json:"user_id"`
	RequestedLevel string `json:"requested_level"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
}

type reviewVerificationRequest struct {
	ReviewedBy string `json:"reviewed_by"`
}

type downgradeVerificationRequest struct {
	Level      string `json:"level"`
	ReviewedBy string `json:"reviewed_by"`
	Reason     string `json:"reason,omitempty"`
}

func (s *Server) SubmitVerification(c *gin.Context) {
	var req submitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.verificationSvc.Submit(c.Request.Context(), verificationdomain.SubmitRequest{
		UserID:         strings.TrimSpace(req.UserID),
		RequestedLevel: verificationdomain.Level(strings.TrimSpace(req.RequestedLevel)),
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetVerification(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))

	resp, err := s.verificationSvc.GetByUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApproveVerification(c *gin.Context) {
	s.reviewVerification(c, true)
}

func (s *Server) RejectVerification(c *gin.Context) {
	s.reviewVerification(c, false)
}

func (s *Server) reviewVerification(c *gin.Context, approve bool) {
	userID := strings.TrimSpace(c.Param("user_id"))

	var req reviewVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	review := verificationdomain.ReviewRequest{
		UserID:     userID,
		ReviewedBy: strings.TrimSpace(req.ReviewedBy),
	}

	var resp *verificationdomain.UserVerification
	var err error
	if approve {
		resp, err = s.verificationSvc.Approve(c.Request.Context(), review)
	} else {
		resp, err = s.verificationSvc.Reject(c.Request.Context(), review)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DowngradeVerification(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))

	var req downgradeVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.verificationSvc.Downgrade(c.Request.Context(), verificationdomain.DowngradeRequest{
		UserID:     userID,
		Level:      verificationdomain.Level(strings.TrimSpace(req.Level)),
		ReviewedBy: strings.TrimSpace(req.ReviewedBy),
		Reason:     req.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
