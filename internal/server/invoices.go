package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/gshop/marketplace/internal/invoice/domain"
)

type voidInvoiceRequest struct {
	VoidedBy string `json:"voided_by"`
	Reason   string `json:"reason,omitempty"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		OrderID     string `form:"order_id"`
		SellerID    string `form:"seller_id"`
		InvoiceType string `form:"invoice_type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListRequest{
		OrderID:     strings.TrimSpace(query.OrderID),
		SellerID:    strings.TrimSpace(query.SellerID),
		InvoiceType: strings.TrimSpace(query.InvoiceType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VoidInvoice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req voidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.Void(c.Request.Context(), id, req.VoidedBy, req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
