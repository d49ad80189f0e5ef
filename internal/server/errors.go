package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/gshop/marketplace/internal/audit/domain"
	invoicedomain "github.com/gshop/marketplace/internal/invoice/domain"
	orderdomain "github.com/gshop/marketplace/internal/order/domain"
	configdomain "github.com/gshop/marketplace/internal/platformconfig/domain"
	productdomain "github.com/gshop/marketplace/internal/product/domain"
	settlementdomain "github.com/gshop/marketplace/internal/settlement/domain"
	transferdomain "github.com/gshop/marketplace/internal/transferlimit/domain"
	verificationdomain "github.com/gshop/marketplace/internal/verification/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    err.Error(),
			Message: "validation error",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    err.Error(),
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Code:    err.Error(),
			Message: "conflict",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Code:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, configdomain.ErrInvalidKey),
		errors.Is(err, configdomain.ErrInvalidValue),
		errors.Is(err, configdomain.ErrInvalidRate),
		errors.Is(err, configdomain.ErrInvalidSequence),
		errors.Is(err, productdomain.ErrInvalidSeller),
		errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidPrice),
		errors.Is(err, productdomain.ErrInvalidVatType),
		errors.Is(err, orderdomain.ErrInvalidBuyer),
		errors.Is(err, orderdomain.ErrInvalidSeller),
		errors.Is(err, orderdomain.ErrEmptyOrder),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrSellerMismatch),
		errors.Is(err, orderdomain.ErrInactiveProduct),
		errors.Is(err, verificationdomain.ErrInvalidUser),
		errors.Is(err, verificationdomain.ErrInvalidLevel),
		errors.Is(err, verificationdomain.ErrInvalidDocument),
		errors.Is(err, transferdomain.ErrInvalidUser),
		errors.Is(err, transferdomain.ErrInvalidAmount),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, auditdomain.ErrInvalidAction):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, configdomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrProductNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrOrderNotFound),
		errors.Is(err, verificationdomain.ErrNotFound),
		errors.Is(err, transferdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, invoicedomain.ErrPrematureInvoice),
		errors.Is(err, invoicedomain.ErrAlreadyVoided),
		errors.Is(err, settlementdomain.ErrInvalidOrderState),
		errors.Is(err, verificationdomain.ErrNotPending),
		errors.Is(err, verificationdomain.ErrLevelRegression):
		return true
	default:
		return false
	}
}
