package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/gshop/marketplace/internal/order/domain"
)

type createOrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type createOrderRequest struct {
	BuyerID  string                   `json:"buyer_id"`
	SellerID string                   `json:"seller_id"`
	Items    []createOrderItemRequest `json:"items"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	items := make([]orderdomain.CreateItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderdomain.CreateItem{
			ProductID: strings.TrimSpace(item.ProductID),
			Quantity:  item.Quantity,
		})
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateRequest{
		BuyerID:  strings.TrimSpace(req.BuyerID),
		SellerID: strings.TrimSpace(req.SellerID),
		Items:    items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrderByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.orderSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// MarkOrderDelivered triggers settlement. The call is idempotent; repeating
// it on an already settled order returns the same financial result.
func (s *Server) MarkOrderDelivered(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.settlementSvc.OnDelivered(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
