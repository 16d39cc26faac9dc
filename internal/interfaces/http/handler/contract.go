package handler

import (
	"time"

	billingapp "github.com/farmbook/backend/internal/application/billing"
	"github.com/farmbook/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractHandler handles vendor contract API endpoints
type ContractHandler struct {
	BaseHandler
	contractService *billingapp.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *billingapp.ContractService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
	}
}

// CreateContractRequest represents a request to open a vendor contract
// @Description Request body for opening a vendor contract with an advance held
type CreateContractRequest struct {
	ContractNumber string          `json:"contract_number" binding:"required,min=1,max=50" example:"CTR-2026-0001"`
	VendorName     string          `json:"vendor_name" binding:"required,min=1,max=200" example:"Green Valley Feeds"`
	AdvanceAmount  decimal.Decimal `json:"advance_amount" binding:"required" example:"25000.00"`
	StartDate      time.Time       `json:"start_date" binding:"required" example:"2026-01-01T00:00:00Z"`
	Remark         string          `json:"remark" binding:"max=500" example:"Season feed supply"`
}

// CancelContractRequest represents a request to cancel a contract
// @Description Request body for cancelling a contract
type CancelContractRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"Vendor ceased trading"`
}

// ContractListRequest represents query parameters for listing contracts
type ContractListRequest struct {
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
	OrderBy        string `form:"order_by"`
	OrderDir       string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Search         string `form:"search"`
	VendorName     string `form:"vendor_name"`
	ContractStatus string `form:"contract_status" binding:"omitempty,oneof=ACTIVE COMPLETED CANCELLED"`
	AdvanceStatus  string `form:"advance_status" binding:"omitempty,oneof=HELD RETURNED"`
}

func (r ContractListRequest) toFilter() billing.ContractFilter {
	filter := billing.ContractFilter{}
	filter.Page = r.Page
	filter.PageSize = r.PageSize
	filter.OrderBy = r.OrderBy
	filter.OrderDir = r.OrderDir
	filter.Search = r.Search

	if r.VendorName != "" {
		filter.VendorName = &r.VendorName
	}
	if r.ContractStatus != "" {
		status := billing.ContractStatus(r.ContractStatus)
		filter.ContractStatus = &status
	}
	if r.AdvanceStatus != "" {
		status := billing.AdvanceStatus(r.AdvanceStatus)
		filter.AdvanceStatus = &status
	}
	return filter
}

// Create godoc
// @ID           createContract
// @Summary      Open a vendor contract
// @Description  Open a new vendor contract. The advance amount is held from the moment the contract opens.
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        request body CreateContractRequest true "Contract creation request"
// @Success      201 {object} APIResponse[billingapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.contractService.CreateContract(c.Request.Context(), accountID, billingapp.CreateContractRequest{
		ContractNumber: req.ContractNumber,
		VendorName:     req.VendorName,
		AdvanceAmount:  req.AdvanceAmount,
		StartDate:      req.StartDate,
		Remark:         req.Remark,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Get godoc
// @ID           getContract
// @Summary      Get a contract
// @Description  Get a single vendor contract
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/contracts/{id} [get]
func (h *ContractHandler) Get(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	result, err := h.contractService.GetContract(c.Request.Context(), accountID, contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listContracts
// @Summary      List contracts
// @Description  List vendor contracts for the account with filtering and pagination
// @Tags         contracts
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        vendor_name query string false "Filter by vendor"
// @Param        contract_status query string false "Filter by contract status" Enums(ACTIVE, COMPLETED, CANCELLED)
// @Success      200 {object} APIResponse[[]billingapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/contracts [get]
func (h *ContractHandler) List(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ContractListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := req.toFilter()
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	contracts, total, err := h.contractService.ListContracts(c.Request.Context(), accountID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, contracts, total, filter.Page, filter.PageSize)
}

// ReturnAdvance godoc
// @ID           returnContractAdvance
// @Summary      Return a contract advance
// @Description  Return the held advance and complete the contract. Only valid while the contract is active with the advance held; the transition happens exactly once.
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/contracts/{id}/return-advance [post]
func (h *ContractHandler) ReturnAdvance(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	result, err := h.contractService.ReturnAdvance(c.Request.Context(), accountID, contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Cancel godoc
// @ID           cancelContract
// @Summary      Cancel a contract
// @Description  Cancel an active contract with a reason
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body CancelContractRequest true "Cancellation request"
// @Success      200 {object} APIResponse[billingapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/contracts/{id}/cancel [post]
func (h *ContractHandler) Cancel(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	var req CancelContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.contractService.CancelContract(c.Request.Context(), accountID, contractID, billingapp.CancelContractRequest{
		Reason: req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
