package handler

import (
	"time"

	billingapp "github.com/farmbook/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment recording and outstanding lookups
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// RecordPaymentRequest represents a request to record a customer payment
// @Description Request body for recording a payment against a customer's outstanding invoices
type RecordPaymentRequest struct {
	CustomerName string          `json:"customer_name" binding:"required,min=1,max=200" example:"Hillside Dairy"`
	Amount       decimal.Decimal `json:"amount" binding:"required" example:"5000.00"`
	Date         time.Time       `json:"date" binding:"required" example:"2026-03-15T00:00:00Z"`
	Method       string          `json:"method" binding:"required" example:"BANK_TRANSFER"`
	Remark       string          `json:"remark" binding:"max=500" example:"March settlement"`
	Simulate     bool            `json:"simulate" example:"false"`
}

// Record godoc
// @ID           recordPayment
// @Summary      Record a customer payment
// @Description  Allocate a payment across the customer's outstanding invoices oldest-first. With simulate set, the breakdown is returned and nothing is persisted. The call is not idempotent.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body RecordPaymentRequest true "Payment request"
// @Success      200 {object} APIResponse[billingapp.PaymentResultResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), accountID, billingapp.RecordPaymentRequest{
		CustomerName: req.CustomerName,
		Amount:       req.Amount,
		Date:         req.Date,
		Method:       req.Method,
		Remark:       req.Remark,
		Simulate:     req.Simulate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetOutstanding godoc
// @ID           getCustomerOutstanding
// @Summary      Get a customer's outstanding position
// @Description  Get the customer's outstanding invoices in settlement order with the total pending amount
// @Tags         payments
// @Produce      json
// @Param        name path string true "Customer name"
// @Success      200 {object} APIResponse[billingapp.OutstandingSummary]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/customers/{name}/outstanding [get]
func (h *PaymentHandler) GetOutstanding(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	customerName := c.Param("name")
	if customerName == "" {
		h.BadRequest(c, "Customer name is required")
		return
	}

	result, err := h.paymentService.GetOutstanding(c.Request.Context(), accountID, customerName)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
