package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/gshop/marketplace/internal/product/domain"
	"github.com/gshop/marketplace/internal/vat"
)

type createProductRequest struct {
	SellerID string `json:"seller_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	VatType  string `json:"vat_type"`
}

type updateProductPricingRequest struct {
	Price   *int64  `json:"price,omitempty"`
	VatType *string `json:"vat_type,omitempty"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), productdomain.CreateRequest{
		SellerID: strings.TrimSpace(req.SellerID),
		Name:     strings.TrimSpace(req.Name),
		Price:    req.Price,
		VatType:  vat.Category(strings.TrimSpace(req.VatType)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.productSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProductPricing(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updateProductPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var vatType *vat.Category
	if req.VatType != nil {
		trimmed := vat.Category(strings.TrimSpace(*req.VatType))
		vatType = &trimmed
	}

	resp, err := s.productSvc.UpdatePricing(c.Request.Context(), productdomain.UpdatePricingRequest{
		ID:      id,
		Price:   req.Price,
		VatType: vatType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
