package handler

import (
	"time"

	billingapp "github.com/farmbook/backend/internal/application/billing"
	"github.com/farmbook/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles sale invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// CreateInvoiceRequest represents a request to record a new sale invoice
// @Description Request body for recording a sale invoice
type CreateInvoiceRequest struct {
	InvoiceNumber string          `json:"invoice_number" binding:"required,min=1,max=50" example:"INV-2026-0001"`
	CustomerName  string          `json:"customer_name" binding:"required,min=1,max=200" example:"Hillside Dairy"`
	Channel       string          `json:"channel" binding:"required" example:"DIRECT"`
	ContractID    *uuid.UUID      `json:"contract_id" example:"a81bc81b-dead-4e5d-abff-90865d1e13b1"`
	TxnDate       time.Time       `json:"txn_date" binding:"required" example:"2026-03-01T00:00:00Z"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required" example:"120.5"`
	UnitRate      decimal.Decimal `json:"unit_rate" binding:"required" example:"42.00"`
	Surcharge     decimal.Decimal `json:"surcharge" example:"1.50"`
	InitialStatus *string         `json:"initial_status" binding:"omitempty,oneof=PENDING PARTIAL RECEIVED" example:"PENDING"`
	Remark        string          `json:"remark" binding:"max=500" example:"Morning collection"`
}

// OverrideStatusRequest represents a manual invoice status override
// @Description Request body for overriding an invoice's settlement status
type OverrideStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PARTIAL RECEIVED" example:"RECEIVED"`
}

// InvoiceListRequest represents query parameters for listing invoices
type InvoiceListRequest struct {
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Search       string `form:"search"`
	CustomerName string `form:"customer_name"`
	Status       string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL RECEIVED"`
	Channel      string `form:"channel"`
	ContractID   string `form:"contract_id" binding:"omitempty,uuid"`
	FromDate     string `form:"from_date" binding:"omitempty"`
	ToDate       string `form:"to_date" binding:"omitempty"`
}

func (r InvoiceListRequest) toFilter() (billing.InvoiceFilter, error) {
	filter := billing.InvoiceFilter{}
	filter.Page = r.Page
	filter.PageSize = r.PageSize
	filter.OrderBy = r.OrderBy
	filter.OrderDir = r.OrderDir
	filter.Search = r.Search

	if r.CustomerName != "" {
		filter.CustomerName = &r.CustomerName
	}
	if r.Status != "" {
		status := billing.InvoiceStatus(r.Status)
		filter.Status = &status
	}
	if r.Channel != "" {
		channel := billing.SaleChannel(r.Channel)
		filter.Channel = &channel
	}
	if r.ContractID != "" {
		contractID, err := uuid.Parse(r.ContractID)
		if err != nil {
			return filter, err
		}
		filter.ContractID = &contractID
	}
	if r.FromDate != "" {
		from, err := time.Parse(time.RFC3339, r.FromDate)
		if err != nil {
			return filter, err
		}
		filter.FromDate = &from
	}
	if r.ToDate != "" {
		to, err := time.Parse(time.RFC3339, r.ToDate)
		if err != nil {
			return filter, err
		}
		filter.ToDate = &to
	}
	return filter, nil
}

// Create godoc
// @ID           createInvoice
// @Summary      Record a sale invoice
// @Description  Record a new sale invoice. The total is computed from quantity, rate and surcharge and fixed at creation.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} APIResponse[billingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.invoiceService.CreateInvoice(c.Request.Context(), accountID, billingapp.CreateInvoiceRequest{
		InvoiceNumber: req.InvoiceNumber,
		CustomerName:  req.CustomerName,
		Channel:       req.Channel,
		ContractID:    req.ContractID,
		TxnDate:       req.TxnDate,
		Quantity:      req.Quantity,
		UnitRate:      req.UnitRate,
		Surcharge:     req.Surcharge,
		InitialStatus: req.InitialStatus,
		Remark:        req.Remark,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Get godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Description  Get a single invoice with its allocation history
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	result, err := h.invoiceService.GetInvoice(c.Request.Context(), accountID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  List invoices for the account with filtering and pagination
// @Tags         invoices
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        customer_name query string false "Filter by customer"
// @Param        status query string false "Filter by status" Enums(PENDING, PARTIAL, RECEIVED)
// @Success      200 {object} APIResponse[[]billingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req InvoiceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter, err := req.toFilter()
	if err != nil {
		h.BadRequest(c, "Invalid filter parameters")
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), accountID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// OverrideStatus godoc
// @ID           overrideInvoiceStatus
// @Summary      Override invoice status
// @Description  Manually override the settlement status. Paid and pending amounts are left untouched.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body OverrideStatusRequest true "Status override request"
// @Success      200 {object} APIResponse[billingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/invoices/{id}/status [put]
func (h *InvoiceHandler) OverrideStatus(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.invoiceService.OverrideStatus(c.Request.Context(), accountID, invoiceID, billingapp.OverrideStatusRequest{
		Status: req.Status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
